// Package session implements the authentication bootstrap: the login
// flow against the demo site's form, the serialized session-state
// artifact reused by every dependent spec, and the typed failures the
// flow reports.
package session

import (
	"fmt"

	"github.com/MarkoPoloResearchLab/theme_e2e/internal/browser"
)

const (
	navigationErrorFormat = "navigation failed: %s never appeared at %s (page excerpt: %s)"

	authenticationServerMessageFormat = "authentication failed: %s"
	authenticationStillOnLoginFormat  = "authentication failed: still on login page after submitting credentials"
	authenticationAmbiguousFormat     = "authentication failed: no authenticated marker at %s"
)

// AuthenticationFailureKind distinguishes the three diagnosable
// outcomes of a rejected login.
type AuthenticationFailureKind string

const (
	// FailureServerMessage means the site rendered an explicit error message.
	FailureServerMessage AuthenticationFailureKind = "server_message"
	// FailureStillOnLoginPage means the login form survived the submit.
	FailureStillOnLoginPage AuthenticationFailureKind = "still_on_login_page"
	// FailureAmbiguous means neither a marker, a message, nor the form was found.
	FailureAmbiguous AuthenticationFailureKind = "ambiguous"
)

// NavigationError reports an expected page element that never became
// visible, with captured diagnostics for postmortem.
type NavigationError struct {
	TargetURL       string
	MissingSelector string
	Diagnostics     browser.Diagnostics
}

func (navigationErr *NavigationError) Error() string {
	return fmt.Sprintf(navigationErrorFormat, navigationErr.MissingSelector, navigationErr.TargetURL, navigationErr.Diagnostics.PageExcerpt)
}

// AuthenticationError reports a submitted login whose success could not
// be verified.
type AuthenticationError struct {
	Kind          AuthenticationFailureKind
	ServerMessage string
	CurrentURL    string
	Diagnostics   browser.Diagnostics
}

func (authenticationErr *AuthenticationError) Error() string {
	switch authenticationErr.Kind {
	case FailureServerMessage:
		return fmt.Sprintf(authenticationServerMessageFormat, authenticationErr.ServerMessage)
	case FailureStillOnLoginPage:
		return authenticationStillOnLoginFormat
	default:
		return fmt.Sprintf(authenticationAmbiguousFormat, authenticationErr.CurrentURL)
	}
}
