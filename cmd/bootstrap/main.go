// Command bootstrap performs the one-time authentication bootstrap
// against the theme demo site: it logs in with the environment-provided
// credentials and persists the session-state artifact the specs reuse.
package main

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
	"go.uber.org/zap"

	"github.com/MarkoPoloResearchLab/theme_e2e/internal/config"
	"github.com/MarkoPoloResearchLab/theme_e2e/internal/session"
)

const (
	commandUseName          = "bootstrap"
	commandShortDescription = "Establish and persist an authenticated demo-site session"
	commandLongDescription  = "Log in to the theme demo site with E2E_TESTS_USER/E2E_TESTS_PASSWORD and write the session-state artifact for the spec suite"

	flagNameBaseURL           = "base-url"
	flagNameStatePath         = "state-path"
	flagUsageBaseURL          = "base URL of the demo deployment under test"
	flagUsageStatePath        = "path of the session-state artifact to write"
	environmentKeyBaseURL     = "E2E_BASE_URL"
	environmentKeyStatePath   = "E2E_STATE_PATH"
	loggerCreationErrorFormat = "logger: %w"
	logEventBootstrapFailed   = "bootstrap_failed"

	unexpectedArgumentsMessage   = "unexpected command arguments"
	commandInitializationFailure = "failed to configure command"
	flagNotDefinedMessage        = "flag %s not defined"
	environmentApplyErrorMessage = "failed to apply environment configuration"
)

// BootstrapApplication constructs and executes the bootstrap command.
type BootstrapApplication struct {
	configurationLoader *viper.Viper
}

// NewBootstrapApplication creates a BootstrapApplication with default dependencies.
func NewBootstrapApplication() *BootstrapApplication {
	return &BootstrapApplication{
		configurationLoader: viper.New(),
	}
}

// Command builds the Cobra command for the bootstrap.
func (application *BootstrapApplication) Command() (*cobra.Command, error) {
	rootCommand := &cobra.Command{
		Use:   commandUseName,
		Short: commandShortDescription,
		Long:  commandLongDescription,
		RunE:  application.runCommand,
	}

	if configurationErr := application.configureCommand(rootCommand); configurationErr != nil {
		return nil, configurationErr
	}

	return rootCommand, nil
}

func (application *BootstrapApplication) configureCommand(command *cobra.Command) error {
	defaultConfiguration := config.DefaultSiteConfiguration()

	application.configurationLoader.SetDefault(environmentKeyBaseURL, defaultConfiguration.BaseURL)
	application.configurationLoader.SetDefault(environmentKeyStatePath, defaultConfiguration.SessionStatePath)
	application.configurationLoader.AutomaticEnv()

	commandFlags := command.Flags()
	commandFlags.String(flagNameBaseURL, defaultConfiguration.BaseURL, flagUsageBaseURL)
	commandFlags.String(flagNameStatePath, defaultConfiguration.SessionStatePath, flagUsageStatePath)

	if bindErr := application.bindFlag(commandFlags, environmentKeyBaseURL, flagNameBaseURL); bindErr != nil {
		return bindErr
	}

	if bindErr := application.bindFlag(commandFlags, environmentKeyStatePath, flagNameStatePath); bindErr != nil {
		return bindErr
	}

	if environmentErr := application.applyEnvironmentConfiguration(commandFlags, environmentKeyBaseURL, flagNameBaseURL); environmentErr != nil {
		return environmentErr
	}

	if environmentErr := application.applyEnvironmentConfiguration(commandFlags, environmentKeyStatePath, flagNameStatePath); environmentErr != nil {
		return environmentErr
	}

	return nil
}

func (application *BootstrapApplication) bindFlag(flagSet *pflag.FlagSet, environmentKey string, flagName string) error {
	flag := flagSet.Lookup(flagName)
	if flag == nil {
		return fmt.Errorf(flagNotDefinedMessage, flagName)
	}

	if bindErr := application.configurationLoader.BindPFlag(environmentKey, flag); bindErr != nil {
		return bindErr
	}

	return nil
}

func (application *BootstrapApplication) applyEnvironmentConfiguration(flagSet *pflag.FlagSet, environmentKey string, flagName string) error {
	environmentValue, environmentFound := os.LookupEnv(environmentKey)
	if !environmentFound {
		return nil
	}

	if setErr := flagSet.Set(flagName, environmentValue); setErr != nil {
		return fmt.Errorf("%s: %w", environmentApplyErrorMessage, setErr)
	}

	return nil
}

func (application *BootstrapApplication) runCommand(command *cobra.Command, arguments []string) error {
	if len(arguments) > 0 {
		return fmt.Errorf("%s: %s", unexpectedArgumentsMessage, strings.Join(arguments, " "))
	}

	logger, loggerErr := zap.NewProduction()
	if loggerErr != nil {
		return fmt.Errorf(loggerCreationErrorFormat, loggerErr)
	}
	defer func() {
		_ = logger.Sync()
	}()

	siteConfiguration := config.SiteConfigurationForBaseURL(application.configurationLoader.GetString(environmentKeyBaseURL))
	siteConfiguration.SessionStatePath = strings.TrimSpace(application.configurationLoader.GetString(environmentKeyStatePath))

	if bootstrapErr := session.RunBootstrap(command.Context(), siteConfiguration, config.NewEnvironmentLoader(), logger); bootstrapErr != nil {
		logger.Error(logEventBootstrapFailed, zap.Error(bootstrapErr))
		return bootstrapErr
	}

	return nil
}

func main() {
	application := NewBootstrapApplication()
	rootCommand, commandErr := application.Command()
	if commandErr != nil {
		fmt.Fprintf(os.Stderr, "%s: %v\n", commandInitializationFailure, commandErr)
		os.Exit(1)
	}

	if executeErr := rootCommand.ExecuteContext(context.Background()); executeErr != nil {
		os.Exit(1)
	}
}
