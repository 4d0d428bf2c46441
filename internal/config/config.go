// Package config holds the fixed description of the theme demo
// deployment under test: site URLs, REST endpoints, viewport presets,
// artifact paths, and the environment-sourced admin credentials.
package config

import (
	"errors"
	"strings"
	"time"

	"github.com/spf13/viper"
)

const (
	// EnvironmentKeyUsername names the environment variable carrying the admin username.
	EnvironmentKeyUsername = "E2E_TESTS_USER"
	// EnvironmentKeyPassword names the environment variable carrying the admin password.
	EnvironmentKeyPassword = "E2E_TESTS_PASSWORD"

	defaultBaseURL            = "https://aurora-demo.mp-themes.dev"
	loginPagePath             = "/wp-login.php"
	adminRootPath             = "/wp-admin/"
	contentAPIPath            = "/wp-json/wp/v2"
	themeSettingsAPIPath      = "/wp-json/aurora/v1/settings"
	defaultSessionStatePath   = ".auth/user.json"
	defaultReportDirectory    = "report"
	defaultNavigationTimeout  = 30 * time.Second
	defaultElementWaitTimeout = 10 * time.Second
	defaultNetworkIdleWindow  = 500 * time.Millisecond

	errorMessageMissingCredentials = "config: missing E2E_TESTS_USER or E2E_TESTS_PASSWORD"
)

// ErrMissingCredentials indicates one or both credential environment variables were absent or empty.
var ErrMissingCredentials = errors.New(errorMessageMissingCredentials)

// ViewportPreset describes a named browser viewport used by the specs.
type ViewportPreset struct {
	Name   string
	Width  int64
	Height int64
	Mobile bool
}

// The three viewports every visual spec runs against.
var (
	ViewportDesktop = ViewportPreset{Name: "desktop", Width: 1440, Height: 900}
	ViewportTablet  = ViewportPreset{Name: "tablet", Width: 768, Height: 1024, Mobile: true}
	ViewportMobile  = ViewportPreset{Name: "mobile", Width: 375, Height: 667, Mobile: true}
)

// SiteConfiguration captures the immutable description of one demo deployment.
// Values are fixed at construction and shared read-only by every helper.
type SiteConfiguration struct {
	BaseURL             string
	LoginURL            string
	AdminURL            string
	ContentAPIURL       string
	ThemeSettingsAPIURL string
	SessionStatePath    string
	ReportDirectory     string
	NavigationTimeout   time.Duration
	ElementWaitTimeout  time.Duration
	NetworkIdleWindow   time.Duration
}

// DefaultSiteConfiguration returns the configuration for the hosted theme demo.
func DefaultSiteConfiguration() SiteConfiguration {
	return SiteConfigurationForBaseURL(defaultBaseURL)
}

// SiteConfigurationForBaseURL derives a full configuration from a base URL.
// Tests use this to point the suite at a local stand-in server.
func SiteConfigurationForBaseURL(baseURL string) SiteConfiguration {
	trimmedBaseURL := strings.TrimRight(strings.TrimSpace(baseURL), "/")
	return SiteConfiguration{
		BaseURL:             trimmedBaseURL,
		LoginURL:            trimmedBaseURL + loginPagePath,
		AdminURL:            trimmedBaseURL + adminRootPath,
		ContentAPIURL:       trimmedBaseURL + contentAPIPath,
		ThemeSettingsAPIURL: trimmedBaseURL + themeSettingsAPIPath,
		SessionStatePath:    defaultSessionStatePath,
		ReportDirectory:     defaultReportDirectory,
		NavigationTimeout:   defaultNavigationTimeout,
		ElementWaitTimeout:  defaultElementWaitTimeout,
		NetworkIdleWindow:   defaultNetworkIdleWindow,
	}
}

// AdminPathURL resolves an admin-relative path against the admin root.
// An empty path addresses the admin dashboard itself.
func (configuration SiteConfiguration) AdminPathURL(relativePath string) string {
	trimmedPath := strings.TrimLeft(strings.TrimSpace(relativePath), "/")
	if trimmedPath == "" {
		return configuration.AdminURL
	}
	return configuration.AdminURL + trimmedPath
}

// Credentials is the admin username/password pair read once at bootstrap.
// It is never persisted and never part of the session-state artifact.
type Credentials struct {
	Username string
	Password string
}

// NewEnvironmentLoader returns a viper instance bound to the process environment.
func NewEnvironmentLoader() *viper.Viper {
	environmentLoader := viper.New()
	environmentLoader.SetDefault(EnvironmentKeyUsername, "")
	environmentLoader.SetDefault(EnvironmentKeyPassword, "")
	environmentLoader.AutomaticEnv()
	return environmentLoader
}

// LoadCredentials reads both credential values from the supplied loader.
// Returns ErrMissingCredentials when either value is absent or blank.
func LoadCredentials(environmentLoader *viper.Viper) (Credentials, error) {
	loadedCredentials := Credentials{
		Username: strings.TrimSpace(environmentLoader.GetString(EnvironmentKeyUsername)),
		Password: strings.TrimSpace(environmentLoader.GetString(EnvironmentKeyPassword)),
	}

	if loadedCredentials.Username == "" || loadedCredentials.Password == "" {
		return Credentials{}, ErrMissingCredentials
	}

	return loadedCredentials, nil
}
