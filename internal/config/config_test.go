package config_test

import (
	"testing"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/require"

	"github.com/MarkoPoloResearchLab/theme_e2e/internal/config"
)

const (
	testUsernameValue = "demo-admin"
	testPasswordValue = "demo-secret"
)

func TestLoadCredentialsReadsEnvironment(t *testing.T) {
	t.Setenv(config.EnvironmentKeyUsername, testUsernameValue)
	t.Setenv(config.EnvironmentKeyPassword, testPasswordValue)

	loadedCredentials, loadErr := config.LoadCredentials(config.NewEnvironmentLoader())
	require.NoError(t, loadErr)
	require.Equal(t, testUsernameValue, loadedCredentials.Username)
	require.Equal(t, testPasswordValue, loadedCredentials.Password)
}

func TestLoadCredentialsRejectsMissingValues(t *testing.T) {
	testCases := []struct {
		name          string
		usernameValue string
		passwordValue string
	}{
		{name: "missing username", usernameValue: "", passwordValue: testPasswordValue},
		{name: "missing password", usernameValue: testUsernameValue, passwordValue: ""},
		{name: "blank username", usernameValue: "   ", passwordValue: testPasswordValue},
		{name: "both missing", usernameValue: "", passwordValue: ""},
	}

	for _, testCase := range testCases {
		t.Run(testCase.name, func(t *testing.T) {
			environmentLoader := viper.New()
			environmentLoader.Set(config.EnvironmentKeyUsername, testCase.usernameValue)
			environmentLoader.Set(config.EnvironmentKeyPassword, testCase.passwordValue)

			_, loadErr := config.LoadCredentials(environmentLoader)
			require.ErrorIs(t, loadErr, config.ErrMissingCredentials)
		})
	}
}

func TestSiteConfigurationForBaseURLDerivesEndpoints(t *testing.T) {
	siteConfiguration := config.SiteConfigurationForBaseURL("http://127.0.0.1:8899/")

	require.Equal(t, "http://127.0.0.1:8899", siteConfiguration.BaseURL)
	require.Equal(t, "http://127.0.0.1:8899/wp-login.php", siteConfiguration.LoginURL)
	require.Equal(t, "http://127.0.0.1:8899/wp-admin/", siteConfiguration.AdminURL)
	require.Equal(t, "http://127.0.0.1:8899/wp-json/wp/v2", siteConfiguration.ContentAPIURL)
	require.Equal(t, "http://127.0.0.1:8899/wp-json/aurora/v1/settings", siteConfiguration.ThemeSettingsAPIURL)
}

func TestAdminPathURLResolvesRelativePaths(t *testing.T) {
	siteConfiguration := config.SiteConfigurationForBaseURL("http://127.0.0.1:8899")

	require.Equal(t, siteConfiguration.AdminURL, siteConfiguration.AdminPathURL(""))
	require.Equal(t, "http://127.0.0.1:8899/wp-admin/plugins.php", siteConfiguration.AdminPathURL("plugins.php"))
	require.Equal(t, "http://127.0.0.1:8899/wp-admin/plugins.php", siteConfiguration.AdminPathURL("/plugins.php"))
}
