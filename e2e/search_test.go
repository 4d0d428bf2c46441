package e2e

import (
	"testing"

	"github.com/chromedp/chromedp"
	"github.com/stretchr/testify/require"

	"github.com/MarkoPoloResearchLab/theme_e2e/internal/config"
)

func TestSearchFormFiltersPostsByQuery(t *testing.T) {
	requireSuiteReady(t)

	specSession := newSpecSession(t, config.ViewportDesktop)
	navigateAndSettle(t, specSession, suiteConfiguration.BaseURL+"/")

	require.NoError(t, chromedp.Run(specSession.Context(),
		chromedp.SetValue(".search-field", "Shop", chromedp.ByQuery),
	))
	clickAndSettle(t, specSession, ".search-submit")

	requireVisible(t, specSession, ".page-title")
	require.Contains(t, elementText(t, specSession, ".page-title"), "Shop")
	require.Equal(t, 1, elementCount(t, specSession, "article.post"))
	require.Contains(t, elementText(t, specSession, "article.post .entry-title"), "Styling the Shop")
}

func TestSearchWithoutMatchesShowsNoResultsSection(t *testing.T) {
	requireSuiteReady(t)

	specSession := newSpecSession(t, config.ViewportDesktop)
	navigateAndSettle(t, specSession, suiteConfiguration.BaseURL+"/?s=zanzibar")

	requireVisible(t, specSession, ".no-results")
	require.Zero(t, elementCount(t, specSession, "article.post"))
	require.Contains(t, elementText(t, specSession, ".no-results"), "nothing matched")
}
