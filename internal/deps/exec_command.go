package deps

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/gitdeps/gitdeps/internal/execshell"
)

const (
	execCommandUseConstant              = "exec -- <git arguments>"
	execCommandShortDescriptionConstant = "Run a git command inside every dependency"
	execCommandLongDescriptionConstant  = "exec runs the given git command sequentially inside each dependency's directory, echoing output."
	execMissingArgumentsConstant        = "exec requires git arguments to run"
	argumentSeparatorConstant           = "--"
	execFailureTemplateConstant         = "exec in %s failed: %w"
	execOutputTemplateConstant          = "%s"
)

var errExecMissingArguments = errors.New(execMissingArgumentsConstant)

// ExecCommandBuilder assembles the pass-through Cobra command.
type ExecCommandBuilder struct {
	LoggerProvider   LoggerProvider
	Executor         GitExecutor
	WorkingDirectory string
}

// Build constructs the exec command.
func (builder *ExecCommandBuilder) Build() (*cobra.Command, error) {
	command := &cobra.Command{
		Use:   execCommandUseConstant,
		Short: execCommandShortDescriptionConstant,
		Long:  execCommandLongDescriptionConstant,
		RunE:  builder.run,
		// Arguments belong to git, not to this command.
		DisableFlagParsing: true,
	}

	return command, nil
}

func (builder *ExecCommandBuilder) run(command *cobra.Command, arguments []string) error {
	if len(arguments) > 0 && arguments[0] == argumentSeparatorConstant {
		arguments = arguments[1:]
	}
	if len(arguments) == 0 {
		return errExecMissingArguments
	}

	hostDirectory, directoryError := resolveHostDirectory(builder.WorkingDirectory, command.Context())
	if directoryError != nil {
		return directoryError
	}

	runLock, lockError := AcquireRunLock(hostDirectory)
	if lockError != nil {
		return lockError
	}
	defer runLock.Release()

	_, resolvedRepositories, loadError := loadResolvedRepositories(hostDirectory)
	if loadError != nil {
		return loadError
	}

	logger := resolveLogger(builder.LoggerProvider)
	gitExecutor, executorError := resolvePassthroughExecutor(builder.Executor, logger)
	if executorError != nil {
		return executorError
	}

	for _, dependencyRepository := range resolvedRepositories {
		executionResult, executionError := gitExecutor.ExecuteGit(command.Context(), execshell.CommandDetails{
			Arguments:        arguments,
			WorkingDirectory: dependencyRepository.Directory,
		})
		if executionError != nil {
			return fmt.Errorf(execFailureTemplateConstant, dependencyRepository.Directory, executionError)
		}
		if len(executionResult.StandardOutput) > 0 {
			fmt.Fprintf(command.OutOrStdout(), execOutputTemplateConstant, executionResult.StandardOutput)
		}
	}

	return nil
}
