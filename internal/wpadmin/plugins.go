package wpadmin

import (
	"context"
	"fmt"
	"time"

	"github.com/chromedp/chromedp"
	"go.uber.org/zap"

	"github.com/MarkoPoloResearchLab/theme_e2e/internal/browser"
)

const (
	pluginsListingPath      = "plugins.php"
	activateControlFormat   = "#activate-%s"
	deactivateControlFormat = "#deactivate-%s"
	deleteControlFormat     = "#delete-%s"
	controlProbeTimeout     = 2 * time.Second

	logEventPluginAlreadyActive   = "plugin_already_active"
	logEventPluginAlreadyInactive = "plugin_already_inactive"
	logEventPluginActivated       = "plugin_activated"
	logEventPluginDeactivated     = "plugin_deactivated"
	logFieldPluginSlug            = "slug"
)

// deactivationQuirk describes an extra confirmation dialog a plugin
// interposes before its deactivation proceeds.
type deactivationQuirk struct {
	dialogSelector  string
	confirmSelector string
}

// Slugs whose deactivation needs extra dialog handling. Elementor shows
// a feedback dialog that must be skipped before the listing updates;
// every other slug deactivates directly.
var deactivationQuirks = map[string]deactivationQuirk{
	"elementor": {
		dialogSelector:  "#elementor-deactivate-feedback-dialog-wrapper",
		confirmSelector: "#elementor-deactivate-feedback-dialog-skip",
	},
}

// ActivatePlugin ensures the plugin identified by slug is active. A
// plugin whose deactivate control is already present is left untouched.
func (navigator *Navigator) ActivatePlugin(browserContext context.Context, pluginSlug string) error {
	if openErr := navigator.OpenAdminPage(browserContext, pluginsListingPath); openErr != nil {
		return openErr
	}

	deactivateControl := fmt.Sprintf(deactivateControlFormat, pluginSlug)
	alreadyActive, probeErr := browser.PollVisible(browserContext, deactivateControl, controlProbeTimeout)
	if probeErr != nil {
		return probeErr
	}
	if alreadyActive {
		navigator.logger.Info(logEventPluginAlreadyActive, zap.String(logFieldPluginSlug, pluginSlug))
		return nil
	}

	activateControl := fmt.Sprintf(activateControlFormat, pluginSlug)
	if clickErr := chromedp.Run(browserContext, chromedp.Click(activateControl, chromedp.ByQuery)); clickErr != nil {
		return clickErr
	}

	if waitErr := navigator.awaitControl(browserContext, deactivateControl); waitErr != nil {
		return waitErr
	}

	navigator.logger.Info(logEventPluginActivated, zap.String(logFieldPluginSlug, pluginSlug))
	return nil
}

// DeactivatePlugin ensures the plugin identified by slug is inactive.
// In the listing's semantics an inactive plugin shows a delete control,
// so its presence short-circuits the toggle.
func (navigator *Navigator) DeactivatePlugin(browserContext context.Context, pluginSlug string) error {
	if openErr := navigator.OpenAdminPage(browserContext, pluginsListingPath); openErr != nil {
		return openErr
	}

	deleteControl := fmt.Sprintf(deleteControlFormat, pluginSlug)
	alreadyInactive, probeErr := browser.PollVisible(browserContext, deleteControl, controlProbeTimeout)
	if probeErr != nil {
		return probeErr
	}
	if alreadyInactive {
		navigator.logger.Info(logEventPluginAlreadyInactive, zap.String(logFieldPluginSlug, pluginSlug))
		return nil
	}

	deactivateControl := fmt.Sprintf(deactivateControlFormat, pluginSlug)
	if clickErr := chromedp.Run(browserContext, chromedp.Click(deactivateControl, chromedp.ByQuery)); clickErr != nil {
		return clickErr
	}

	if quirk, hasQuirk := deactivationQuirks[pluginSlug]; hasQuirk {
		if dismissErr := navigator.dismissDeactivationDialog(browserContext, quirk); dismissErr != nil {
			return dismissErr
		}
	}

	if waitErr := navigator.awaitControl(browserContext, deleteControl); waitErr != nil {
		return waitErr
	}

	navigator.logger.Info(logEventPluginDeactivated, zap.String(logFieldPluginSlug, pluginSlug))
	return nil
}

func (navigator *Navigator) dismissDeactivationDialog(browserContext context.Context, quirk deactivationQuirk) error {
	if waitErr := navigator.awaitControl(browserContext, quirk.dialogSelector); waitErr != nil {
		return waitErr
	}
	return chromedp.Run(browserContext, chromedp.Click(quirk.confirmSelector, chromedp.ByQuery))
}

// awaitControl blocks until the selector is visible, bounded by the
// configured element wait. The deadline error propagates untouched so a
// stuck toggle fails the spec the way any framework timeout does.
func (navigator *Navigator) awaitControl(browserContext context.Context, cssSelector string) error {
	waitContext, cancelWait := context.WithTimeout(browserContext, navigator.configuration.ElementWaitTimeout)
	defer cancelWait()

	return chromedp.Run(waitContext, chromedp.WaitVisible(cssSelector, chromedp.ByQuery))
}
