package session

import (
	"context"
	"time"

	"github.com/spf13/viper"
	"go.uber.org/zap"

	"github.com/MarkoPoloResearchLab/theme_e2e/internal/browser"
	"github.com/MarkoPoloResearchLab/theme_e2e/internal/config"
)

const (
	bootstrapSessionTimeout    = 90 * time.Second
	logEventBootstrapCompleted = "bootstrap_completed"
	logFieldStatePath          = "state_path"
)

// RunBootstrap establishes an authenticated session and persists its
// state artifact for every dependent spec. It runs exactly once per
// suite invocation, before any spec.
//
// Credential validation happens before any browser is launched or any
// navigation occurs; a missing credential aborts the whole run.
func RunBootstrap(parentContext context.Context, siteConfiguration config.SiteConfiguration, environmentLoader *viper.Viper, logger *zap.Logger) error {
	credentials, credentialsErr := config.LoadCredentials(environmentLoader)
	if credentialsErr != nil {
		return credentialsErr
	}

	browserSession, sessionErr := browser.NewSession(parentContext, config.ViewportDesktop, bootstrapSessionTimeout, logger)
	if sessionErr != nil {
		return sessionErr
	}
	defer browserSession.Close()

	loginFlow := NewFlow(siteConfiguration, credentials, logger)
	if loginErr := loginFlow.Login(browserSession.Context()); loginErr != nil {
		return loginErr
	}

	capturedState, captureErr := CaptureState(browserSession.Context())
	if captureErr != nil {
		return captureErr
	}

	if persistErr := capturedState.Persist(siteConfiguration.SessionStatePath); persistErr != nil {
		return persistErr
	}

	logger.Info(logEventBootstrapCompleted, zap.String(logFieldStatePath, siteConfiguration.SessionStatePath))
	return nil
}
