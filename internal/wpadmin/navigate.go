// Package wpadmin provides the authenticated helpers the specs use to
// drive the WordPress admin area: navigation that re-establishes a
// session when needed, and idempotent plugin toggling.
package wpadmin

import (
	"context"

	"go.uber.org/zap"

	"github.com/MarkoPoloResearchLab/theme_e2e/internal/browser"
	"github.com/MarkoPoloResearchLab/theme_e2e/internal/config"
	"github.com/MarkoPoloResearchLab/theme_e2e/internal/session"
)

const (
	logEventAdminPageOpened = "admin_page_opened"
	logFieldAdminTargetURL  = "url"
)

// Navigator opens admin pages on a browser session, logging in first
// when the session is not authenticated.
type Navigator struct {
	configuration config.SiteConfiguration
	loginFlow     *session.Flow
	logger        *zap.Logger
}

// NewNavigator builds a Navigator over one site and login flow.
func NewNavigator(siteConfiguration config.SiteConfiguration, loginFlow *session.Flow, logger *zap.Logger) *Navigator {
	return &Navigator{
		configuration: siteConfiguration,
		loginFlow:     loginFlow,
		logger:        logger,
	}
}

// OpenAdminPage navigates to an admin-relative path (empty means the
// admin root) and waits for network idle. A session without the
// authenticated marker is logged in first; the login's own errors
// propagate unchanged.
func (navigator *Navigator) OpenAdminPage(browserContext context.Context, relativePath string) error {
	if !navigator.loginFlow.IsLoggedIn(browserContext) {
		if loginErr := navigator.loginFlow.Login(browserContext); loginErr != nil {
			return loginErr
		}
	}

	targetURL := navigator.configuration.AdminPathURL(relativePath)
	if navigateErr := browser.NavigateAndSettle(browserContext, targetURL, navigator.configuration.NetworkIdleWindow, navigator.configuration.NavigationTimeout); navigateErr != nil {
		return navigateErr
	}

	navigator.logger.Info(logEventAdminPageOpened, zap.String(logFieldAdminTargetURL, targetURL))
	return nil
}
