package deps

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/gitdeps/gitdeps/internal/gitrepo"
)

const (
	updateCommandUseConstant              = "update"
	updateCommandShortDescriptionConstant = "Synchronize all configured dependencies"
	updateCommandLongDescriptionConstant  = "update clones missing dependencies and brings existing ones to their configured versions, in declaration order."
	updateFailureTemplateConstant         = "dependency update failed: %w"
	updateUnexpectedArgumentsConstant     = "update does not accept positional arguments"
	flagEchoNameConstant                  = "echo"
	flagEchoDescriptionConstant           = "Relay git diagnostic output while commands run"
	flagContinueNameConstant              = "continue-on-failure"
	flagContinueDescriptionConstant       = "Keep synchronizing remaining dependencies after a failure"
	flagEchoConfigKeyConstant             = "echo"
	flagContinueConfigKeyConstant         = "continue_on_failure"
)

var errUpdateUnexpectedArguments = errors.New(updateUnexpectedArgumentsConstant)

// UpdateCommandConfiguration captures configuration values for the update
// command.
type UpdateCommandConfiguration struct {
	Echo              bool `mapstructure:"echo"`
	ContinueOnFailure bool `mapstructure:"continue_on_failure"`
}

// DefaultUpdateConfigurationValues provides baseline configuration values
// keyed under the supplied prefix.
func DefaultUpdateConfigurationValues(configurationPrefix string) map[string]any {
	return map[string]any{
		configurationPrefix + "." + flagEchoConfigKeyConstant:     false,
		configurationPrefix + "." + flagContinueConfigKeyConstant: false,
	}
}

// UpdateCommandBuilder assembles the Cobra command that synchronizes all
// dependencies.
type UpdateCommandBuilder struct {
	LoggerProvider        LoggerProvider
	Executor              GitExecutor
	WorkingDirectory      string
	ConfigurationProvider func() UpdateCommandConfiguration
}

// Build constructs the update command.
func (builder *UpdateCommandBuilder) Build() (*cobra.Command, error) {
	command := &cobra.Command{
		Use:   updateCommandUseConstant,
		Short: updateCommandShortDescriptionConstant,
		Long:  updateCommandLongDescriptionConstant,
		RunE:  builder.run,
	}

	command.Flags().Bool(flagEchoNameConstant, false, flagEchoDescriptionConstant)
	command.Flags().Bool(flagContinueNameConstant, false, flagContinueDescriptionConstant)

	return command, nil
}

func (builder *UpdateCommandBuilder) run(command *cobra.Command, arguments []string) error {
	if len(arguments) > 0 {
		return errUpdateUnexpectedArguments
	}

	echoOutput, continueOnFailure := builder.resolveOptions(command)

	hostDirectory, directoryError := resolveHostDirectory(builder.WorkingDirectory, command.Context())
	if directoryError != nil {
		return directoryError
	}

	runLock, lockError := AcquireRunLock(hostDirectory)
	if lockError != nil {
		return lockError
	}
	defer runLock.Release()

	loadedManifest, resolvedRepositories, loadError := loadResolvedRepositories(hostDirectory)
	if loadError != nil {
		return loadError
	}

	logger := resolveLogger(builder.LoggerProvider)
	gitExecutor, executorError := resolveInteractiveExecutor(builder.Executor, logger)
	if executorError != nil {
		return executorError
	}

	repositoryManager, managerError := gitrepo.NewRepositoryManager(gitExecutor)
	if managerError != nil {
		return managerError
	}

	synchronizationService, serviceError := NewService(logger, repositoryManager, nil)
	if serviceError != nil {
		return serviceError
	}

	// Resolution preserves declaration order, so repositories and manifest
	// dependencies align by index.
	ignorePathsByDirectory := map[string]string{}
	for dependencyIndex, declaredDependency := range loadedManifest.Dependencies {
		ignorePathsByDirectory[resolvedRepositories[dependencyIndex].Directory] = declaredDependency.Path
	}

	failurePolicy := FailurePolicyAbort
	if continueOnFailure {
		failurePolicy = FailurePolicyContinue
	}

	syncError := synchronizationService.SyncAll(command.Context(), resolvedRepositories, SyncOptions{
		Policy:     failurePolicy,
		EchoOutput: echoOutput,
		Synchronized: func(repository Repository) error {
			return EnsureIgnored(hostDirectory, ignorePathsByDirectory[repository.Directory])
		},
	})
	if syncError != nil {
		return fmt.Errorf(updateFailureTemplateConstant, syncError)
	}

	return nil
}

// resolveOptions starts from configured values and lets changed flags win.
func (builder *UpdateCommandBuilder) resolveOptions(command *cobra.Command) (bool, bool) {
	var configuredValues UpdateCommandConfiguration
	if builder.ConfigurationProvider != nil {
		configuredValues = builder.ConfigurationProvider()
	}

	echoOutput := configuredValues.Echo
	if command.Flags().Changed(flagEchoNameConstant) {
		echoOutput, _ = command.Flags().GetBool(flagEchoNameConstant)
	}

	continueOnFailure := configuredValues.ContinueOnFailure
	if command.Flags().Changed(flagContinueNameConstant) {
		continueOnFailure, _ = command.Flags().GetBool(flagContinueNameConstant)
	}

	return echoOutput, continueOnFailure
}
