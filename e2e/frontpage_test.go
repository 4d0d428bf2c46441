package e2e

import (
	"encoding/json"
	"net/http"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/MarkoPoloResearchLab/theme_e2e/internal/config"
)

func TestFrontPageRendersThemeLayoutAcrossViewports(t *testing.T) {
	requireSuiteReady(t)

	viewportPresets := []config.ViewportPreset{
		config.ViewportDesktop,
		config.ViewportTablet,
		config.ViewportMobile,
	}

	for _, viewportPreset := range viewportPresets {
		t.Run(viewportPreset.Name, func(subTest *testing.T) {
			specSession := newSpecSession(subTest, viewportPreset)
			navigateAndSettle(subTest, specSession, suiteConfiguration.BaseURL+"/")

			requireVisible(subTest, specSession, "#site-navigation")
			requireVisible(subTest, specSession, ".search-form")
			requireVisible(subTest, specSession, ".site-footer")

			require.Equal(subTest, 3, elementCount(subTest, specSession, "#primary-menu .menu-item"))
			require.Equal(subTest, 3, elementCount(subTest, specSession, "article.post"))
		})
	}
}

func TestFrontPageNavigationReachesShop(t *testing.T) {
	requireSuiteReady(t)

	specSession := newSpecSession(t, config.ViewportDesktop)
	navigateAndSettle(t, specSession, suiteConfiguration.BaseURL+"/")

	clickAndSettle(t, specSession, `#primary-menu a[href="/shop"]`)

	requireVisible(t, specSession, "ul.products")
	require.Contains(t, currentLocation(t, specSession), "/shop")
}

func TestThemeSettingsEndpointServesPalette(t *testing.T) {
	requireSuiteReady(t)

	settingsResponse, requestErr := http.Get(suiteConfiguration.ThemeSettingsAPIURL)
	require.NoError(t, requestErr)
	defer settingsResponse.Body.Close()
	require.Equal(t, http.StatusOK, settingsResponse.StatusCode)

	var themeSettings map[string]any
	require.NoError(t, json.NewDecoder(settingsResponse.Body).Decode(&themeSettings))
	require.Equal(t, "#2563eb", themeSettings["primary_color"])
	require.NotEmpty(t, themeSettings["body_font"])
}
