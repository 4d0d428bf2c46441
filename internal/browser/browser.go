// Package browser owns the headless Chromium lifecycle shared by the
// bootstrap, the admin helpers, and the specs: session construction,
// viewport emulation, bounded waiting primitives, and failure
// diagnostics.
package browser

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"strings"
	"time"

	"github.com/chromedp/cdproto/emulation"
	"github.com/chromedp/chromedp"
	"go.uber.org/zap"

	"github.com/MarkoPoloResearchLab/theme_e2e/internal/config"
)

const (
	// EnvironmentKeyChromedpBrowser overrides headless executable discovery.
	EnvironmentKeyChromedpBrowser = "CHROMEDP_BROWSER"
	// EnvironmentKeyChromePath is the conventional fallback override.
	EnvironmentKeyChromePath = "CHROME_PATH"

	locateExecutableErrorMessage  = "locate headless browser executable"
	launchSessionErrorMessage     = "launch browser session"
	applyViewportErrorMessage     = "apply viewport preset"
	logEventSessionStarted        = "browser_session_started"
	logFieldExecutablePath        = "executable"
	logFieldViewportName          = "viewport"
	defaultDeviceScaleFactor      = 1.0
)

var headlessExecutableNames = []string{
	"chromium",
	"chromium-browser",
	"google-chrome",
	"google-chrome-stable",
	"chrome",
	"headless-shell",
}

// ErrExecutableNotFound indicates no headless browser executable could be located.
var ErrExecutableNotFound = errors.New("headless browser executable not found")

// LocateExecutable resolves the headless browser binary from the
// override environment variables, then from well-known executable names.
func LocateExecutable() (string, error) {
	overrideEnvironmentKeys := []string{
		EnvironmentKeyChromedpBrowser,
		EnvironmentKeyChromePath,
	}

	for _, environmentKey := range overrideEnvironmentKeys {
		environmentValue := strings.TrimSpace(os.Getenv(environmentKey))
		if environmentValue != "" {
			return environmentValue, nil
		}
	}

	for _, executableName := range headlessExecutableNames {
		executablePath, lookupErr := exec.LookPath(executableName)
		if lookupErr == nil {
			return executablePath, nil
		}
	}

	return "", fmt.Errorf("%s: %w", locateExecutableErrorMessage, ErrExecutableNotFound)
}

// Session is one headless browser tab with its allocator lifecycle.
// All helper operations run against Context(); Close releases the
// browser and every derived context.
type Session struct {
	browserContext  context.Context
	cancelFunctions []context.CancelFunc
	logger          *zap.Logger
}

// NewSession launches a headless browser tab with the given viewport.
// A non-zero sessionTimeout bounds every operation run on the session.
func NewSession(parentContext context.Context, viewport config.ViewportPreset, sessionTimeout time.Duration, logger *zap.Logger) (*Session, error) {
	executablePath, locateErr := LocateExecutable()
	if locateErr != nil {
		return nil, locateErr
	}

	allocatorOptions := append(chromedp.DefaultExecAllocatorOptions[:],
		chromedp.ExecPath(executablePath),
		chromedp.Flag("headless", true),
		chromedp.Flag("disable-gpu", true),
		chromedp.Flag("no-sandbox", true),
		chromedp.Flag("disable-dev-shm-usage", true),
		chromedp.Flag("ignore-certificate-errors", true),
	)

	allocatorContext, allocatorCancel := chromedp.NewExecAllocator(parentContext, allocatorOptions...)
	browserContext, browserCancel := chromedp.NewContext(allocatorContext)
	cancelFunctions := []context.CancelFunc{browserCancel, allocatorCancel}

	if sessionTimeout > 0 {
		timeoutContext, timeoutCancel := context.WithTimeout(browserContext, sessionTimeout)
		browserContext = timeoutContext
		cancelFunctions = append([]context.CancelFunc{timeoutCancel}, cancelFunctions...)
	}

	session := &Session{
		browserContext:  browserContext,
		cancelFunctions: cancelFunctions,
		logger:          logger,
	}

	if viewportErr := session.applyViewport(viewport); viewportErr != nil {
		session.Close()
		return nil, fmt.Errorf("%s: %w", launchSessionErrorMessage, viewportErr)
	}

	logger.Info(logEventSessionStarted,
		zap.String(logFieldExecutablePath, executablePath),
		zap.String(logFieldViewportName, viewport.Name),
	)

	return session, nil
}

// Context returns the chromedp context all session operations run against.
func (session *Session) Context() context.Context {
	return session.browserContext
}

// Close tears the tab, browser, and allocator down.
func (session *Session) Close() {
	for _, cancelFunction := range session.cancelFunctions {
		cancelFunction()
	}
}

func (session *Session) applyViewport(viewport config.ViewportPreset) error {
	overrideAction := chromedp.ActionFunc(func(actionContext context.Context) error {
		return emulation.SetDeviceMetricsOverride(viewport.Width, viewport.Height, defaultDeviceScaleFactor, viewport.Mobile).
			Do(actionContext)
	})

	if runErr := chromedp.Run(session.browserContext, overrideAction); runErr != nil {
		return fmt.Errorf("%s: %w", applyViewportErrorMessage, runErr)
	}

	return nil
}
