package e2e

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/chromedp/chromedp"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/MarkoPoloResearchLab/theme_e2e/internal/browser"
	"github.com/MarkoPoloResearchLab/theme_e2e/internal/config"
	"github.com/MarkoPoloResearchLab/theme_e2e/internal/session"
)

const specSessionTimeout = 60 * time.Second

// requireSuiteReady gates every spec on the bootstrap: no browser means
// skip, a failed bootstrap blocks the dependent spec outright.
func requireSuiteReady(testingT *testing.T) {
	testingT.Helper()

	if suiteBrowserReason != "" {
		testingT.Skipf("headless browser not available: %s", suiteBrowserReason)
	}
	if suiteBootstrapErr != nil {
		testingT.Fatalf("authentication bootstrap failed, dependent specs blocked: %v", suiteBootstrapErr)
	}
}

func newSpecSession(testingT *testing.T, viewport config.ViewportPreset) *browser.Session {
	testingT.Helper()

	specSession, sessionErr := browser.NewSession(context.Background(), viewport, specSessionTimeout, zap.NewNop())
	require.NoError(testingT, sessionErr)
	testingT.Cleanup(specSession.Close)

	return specSession
}

// newAuthenticatedSession restores the bootstrap's persisted state into
// a fresh browser session, the way every admin-area spec begins.
func newAuthenticatedSession(testingT *testing.T, viewport config.ViewportPreset) *browser.Session {
	testingT.Helper()

	specSession := newSpecSession(testingT, viewport)

	persistedState, loadErr := session.LoadState(suiteConfiguration.SessionStatePath)
	require.NoError(testingT, loadErr)
	require.NoError(testingT, session.RestoreState(specSession.Context(), persistedState))

	return specSession
}

func suiteLoginFlow(testingT *testing.T) *session.Flow {
	testingT.Helper()

	return session.NewFlow(suiteConfiguration, config.Credentials{
		Username: suiteAdminUsername,
		Password: suiteAdminPassword,
	}, zap.NewNop())
}

func navigateAndSettle(testingT *testing.T, specSession *browser.Session, targetURL string) {
	testingT.Helper()

	require.NoError(testingT, browser.NavigateAndSettle(
		specSession.Context(),
		targetURL,
		suiteConfiguration.NetworkIdleWindow,
		suiteConfiguration.NavigationTimeout,
	))
}

// clickAndSettle clicks an element and waits for the network activity
// the click triggers (navigation or fetch) to go quiet.
func clickAndSettle(testingT *testing.T, specSession *browser.Session, cssSelector string) {
	testingT.Helper()

	require.NoError(testingT, browser.RunAndSettle(
		specSession.Context(),
		suiteConfiguration.NetworkIdleWindow,
		suiteConfiguration.NavigationTimeout,
		chromedp.Click(cssSelector, chromedp.ByQuery),
	))
}

func elementText(testingT *testing.T, specSession *browser.Session, cssSelector string) string {
	testingT.Helper()

	var textContent string
	require.NoError(testingT, chromedp.Run(specSession.Context(), chromedp.Text(cssSelector, &textContent, chromedp.ByQuery)))
	return textContent
}

func elementCount(testingT *testing.T, specSession *browser.Session, cssSelector string) int {
	testingT.Helper()

	var matchCount int
	countScript := fmt.Sprintf("document.querySelectorAll(%q).length", cssSelector)
	require.NoError(testingT, chromedp.Run(specSession.Context(), chromedp.Evaluate(countScript, &matchCount)))
	return matchCount
}

func currentLocation(testingT *testing.T, specSession *browser.Session) string {
	testingT.Helper()

	var pageURL string
	require.NoError(testingT, chromedp.Run(specSession.Context(), chromedp.Location(&pageURL)))
	return pageURL
}

func requireVisible(testingT *testing.T, specSession *browser.Session, cssSelector string) {
	testingT.Helper()

	elementVisible, pollErr := browser.PollVisible(specSession.Context(), cssSelector, suiteConfiguration.ElementWaitTimeout)
	require.NoError(testingT, pollErr)
	require.True(testingT, elementVisible, "expected %s to become visible", cssSelector)
}
