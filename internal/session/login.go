package session

import (
	"context"
	"fmt"
	"time"

	"github.com/chromedp/chromedp"
	"go.uber.org/zap"

	"github.com/MarkoPoloResearchLab/theme_e2e/internal/browser"
	"github.com/MarkoPoloResearchLab/theme_e2e/internal/config"
)

const (
	// AuthenticatedMarkerSelector is the admin toolbar, present only for
	// logged-in viewers. Its visibility is the single login-state signal
	// used everywhere in the suite.
	AuthenticatedMarkerSelector = "#wpadminbar"

	loginFormSelector     = "#loginform"
	usernameFieldSelector = "#user_login"
	passwordFieldSelector = "#user_pass"
	submitButtonSelector  = "#wp-submit"
	loginErrorSelector    = "#login_error"

	markerProbeTimeout     = 2 * time.Second
	failureProbeTimeout    = 1 * time.Second
	loginArtifactLabel     = "login-failure"
	navigationLabel        = "login-form-missing"
	submitLoginErrorFormat = "submit login form: %w"

	logEventAlreadyLoggedIn   = "already_logged_in"
	logEventLoginVerified     = "login_verified"
	logEventLoginFormReached  = "login_form_reached"
	logFieldLoginURL          = "login_url"
	logFieldAuthenticatedUser = "username"
)

// Flow drives the demo site's login form and verifies the outcome.
type Flow struct {
	configuration config.SiteConfiguration
	credentials   config.Credentials
	logger        *zap.Logger
}

// NewFlow builds a login flow for one site and credential pair.
func NewFlow(siteConfiguration config.SiteConfiguration, credentials config.Credentials, logger *zap.Logger) *Flow {
	return &Flow{
		configuration: siteConfiguration,
		credentials:   credentials,
		logger:        logger,
	}
}

// Login navigates to the login page and establishes an authenticated
// session. When the navigation already lands in an authenticated state
// (a live server session redirected past the form) it short-circuits
// without touching the form.
func (flow *Flow) Login(browserContext context.Context) error {
	if navigateErr := browser.NavigateAndSettle(browserContext, flow.configuration.LoginURL, flow.configuration.NetworkIdleWindow, flow.configuration.NavigationTimeout); navigateErr != nil {
		return navigateErr
	}

	markerVisible, markerErr := browser.PollVisible(browserContext, AuthenticatedMarkerSelector, markerProbeTimeout)
	if markerErr != nil {
		return markerErr
	}
	if markerVisible {
		flow.logger.Info(logEventAlreadyLoggedIn, zap.String(logFieldLoginURL, flow.configuration.LoginURL))
		return nil
	}

	return flow.SubmitCredentials(browserContext)
}

// SubmitCredentials runs the form portion of the login flow: wait for
// the form, fill, submit, verify. It assumes the browser is already on
// the login page.
func (flow *Flow) SubmitCredentials(browserContext context.Context) error {
	formVisible, formErr := browser.PollVisible(browserContext, loginFormSelector, flow.configuration.ElementWaitTimeout)
	if formErr != nil {
		return formErr
	}
	if !formVisible {
		capturedDiagnostics, _ := browser.CaptureDiagnostics(browserContext, flow.configuration.ReportDirectory, navigationLabel, flow.logger)
		return &NavigationError{
			TargetURL:       flow.configuration.LoginURL,
			MissingSelector: loginFormSelector,
			Diagnostics:     capturedDiagnostics,
		}
	}

	flow.logger.Info(logEventLoginFormReached, zap.String(logFieldLoginURL, flow.configuration.LoginURL))

	submitActions := []chromedp.Action{
		chromedp.SetValue(usernameFieldSelector, flow.credentials.Username, chromedp.ByQuery),
		chromedp.SetValue(passwordFieldSelector, flow.credentials.Password, chromedp.ByQuery),
		chromedp.Click(submitButtonSelector, chromedp.ByQuery),
	}
	if submitErr := browser.RunAndSettle(browserContext, flow.configuration.NetworkIdleWindow, flow.configuration.NavigationTimeout, submitActions...); submitErr != nil {
		return fmt.Errorf(submitLoginErrorFormat, submitErr)
	}

	markerVisible, markerErr := browser.PollVisible(browserContext, AuthenticatedMarkerSelector, flow.configuration.ElementWaitTimeout)
	if markerErr != nil {
		return markerErr
	}
	if markerVisible {
		flow.logger.Info(logEventLoginVerified, zap.String(logFieldAuthenticatedUser, flow.credentials.Username))
		return nil
	}

	return flow.classifyFailure(browserContext)
}

// IsLoggedIn reports whether the current page shows the authenticated
// marker. Lookup failures deliberately read as "not logged in": absence
// of the marker is meaningful, not exceptional.
func (flow *Flow) IsLoggedIn(browserContext context.Context) bool {
	markerVisible, markerErr := browser.PollVisible(browserContext, AuthenticatedMarkerSelector, markerProbeTimeout)
	if markerErr != nil {
		return false
	}
	return markerVisible
}

func (flow *Flow) classifyFailure(browserContext context.Context) error {
	capturedDiagnostics, _ := browser.CaptureDiagnostics(browserContext, flow.configuration.ReportDirectory, loginArtifactLabel, flow.logger)

	errorMessageVisible, _ := browser.PollVisible(browserContext, loginErrorSelector, failureProbeTimeout)
	if errorMessageVisible {
		var serverErrorMessage string
		if textErr := chromedp.Run(browserContext, chromedp.Text(loginErrorSelector, &serverErrorMessage, chromedp.ByQuery)); textErr == nil {
			return &AuthenticationError{
				Kind:          FailureServerMessage,
				ServerMessage: serverErrorMessage,
				Diagnostics:   capturedDiagnostics,
			}
		}
	}

	formStillVisible, _ := browser.PollVisible(browserContext, loginFormSelector, failureProbeTimeout)
	if formStillVisible {
		return &AuthenticationError{
			Kind:        FailureStillOnLoginPage,
			Diagnostics: capturedDiagnostics,
		}
	}

	var currentURL string
	_ = chromedp.Run(browserContext, chromedp.Location(&currentURL))
	return &AuthenticationError{
		Kind:        FailureAmbiguous,
		CurrentURL:  currentURL,
		Diagnostics: capturedDiagnostics,
	}
}
