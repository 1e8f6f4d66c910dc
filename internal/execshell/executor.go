package execshell

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"
)

const (
	gitToolNameConstant                       = "git"
	loggerNotConfiguredMessageConstant        = "logger not configured"
	commandRunnerNotConfiguredMessageConstant = "command runner not configured"
	commandFailedTemplateConstant             = "%s failed with exit code %d%s"
	commandExecutionFailureTemplateConstant   = "%s failed: %v"
	commandTimeoutTemplateConstant            = "%s produced no output for %s and was terminated"
	capturedOutputSuffixTemplateConstant      = ": %s"
	commandLabelSeparatorConstant             = " "
	logMessageCommandStartingConstant         = "executing command"
	logMessageCommandCompletedConstant        = "command completed"
	logFieldCommandConstant                   = "command"
	logFieldArgumentsConstant                 = "arguments"
	logFieldWorkingDirectoryConstant          = "working_directory"
	logFieldExitCodeConstant                  = "exit_code"
)

// CommandName identifies a supported executable.
type CommandName string

// CommandGit is the external version-control executable driven by gitdeps.
const CommandGit CommandName = CommandName(gitToolNameConstant)

// CommandDetails describes one tool invocation.
type CommandDetails struct {
	Arguments            []string
	WorkingDirectory     string
	EnvironmentVariables map[string]string
	// KeyfilePath names a private key whose ephemeral transport wrapper is
	// installed for the lifetime of the invocation.
	KeyfilePath string
	// EchoOutput relays non-blank diagnostic output to the configured
	// diagnostic writer while the command runs.
	EchoOutput bool
}

// ShellCommand combines a CommandName with invocation details.
type ShellCommand struct {
	Name    CommandName
	Details CommandDetails
}

// ExecutionResult captures the observable results of executing a command.
type ExecutionResult struct {
	StandardOutput string
	StandardError  string
	ExitCode       int
}

// CommandRunner represents the ability to run shell commands.
type CommandRunner interface {
	Run(executionContext context.Context, command ShellCommand) (ExecutionResult, error)
}

// ErrLoggerNotConfigured indicates the executor was built without a logger.
var ErrLoggerNotConfigured = errors.New(loggerNotConfiguredMessageConstant)

// ErrCommandRunnerNotConfigured indicates the executor was built without a runner.
var ErrCommandRunnerNotConfigured = errors.New(commandRunnerNotConfiguredMessageConstant)

// CommandFailedError reports an external tool that terminated with a non-zero
// exit status. The captured output is preserved verbatim because it usually
// carries the most actionable explanation.
type CommandFailedError struct {
	Command ShellCommand
	Result  ExecutionResult
}

// Error describes the failure including the tool's own diagnostic text.
func (failedError CommandFailedError) Error() string {
	return fmt.Sprintf(
		commandFailedTemplateConstant,
		formatCommandLabel(failedError.Command),
		failedError.Result.ExitCode,
		formatCapturedOutputSuffix(failedError.Result),
	)
}

// CommandExecutionError reports a command that could not be executed at all.
type CommandExecutionError struct {
	Command ShellCommand
	Cause   error
}

// Error describes the execution failure.
func (executionError CommandExecutionError) Error() string {
	return fmt.Sprintf(commandExecutionFailureTemplateConstant, formatCommandLabel(executionError.Command), executionError.Cause)
}

// Unwrap exposes the underlying cause.
func (executionError CommandExecutionError) Unwrap() error {
	return executionError.Cause
}

// CommandTimeoutError reports a command terminated after exceeding the idle bound.
type CommandTimeoutError struct {
	Command        ShellCommand
	IdleTimeout    time.Duration
	CapturedOutput string
}

// Error describes the timeout.
func (timeoutError CommandTimeoutError) Error() string {
	return fmt.Sprintf(commandTimeoutTemplateConstant, formatCommandLabel(timeoutError.Command), timeoutError.IdleTimeout)
}

// ShellExecutor wraps a CommandRunner with structured logging and lifecycle events.
type ShellExecutor struct {
	logger        *zap.Logger
	commandRunner CommandRunner
	eventObserver CommandEventObserver
}

// NewShellExecutor constructs a ShellExecutor from the supplied collaborators.
func NewShellExecutor(logger *zap.Logger, commandRunner CommandRunner) (*ShellExecutor, error) {
	if logger == nil {
		return nil, ErrLoggerNotConfigured
	}
	if commandRunner == nil {
		return nil, ErrCommandRunnerNotConfigured
	}
	return &ShellExecutor{
		logger:        logger,
		commandRunner: commandRunner,
		eventObserver: noopCommandEventObserver{},
	}, nil
}

// SetCommandEventObserver installs an observer notified of command lifecycle events.
func (executor *ShellExecutor) SetCommandEventObserver(eventObserver CommandEventObserver) {
	if eventObserver == nil {
		executor.eventObserver = noopCommandEventObserver{}
		return
	}
	executor.eventObserver = eventObserver
}

// ExecuteGit runs the git executable with the provided details.
func (executor *ShellExecutor) ExecuteGit(executionContext context.Context, details CommandDetails) (ExecutionResult, error) {
	return executor.execute(executionContext, ShellCommand{Name: CommandGit, Details: details})
}

func (executor *ShellExecutor) execute(executionContext context.Context, command ShellCommand) (ExecutionResult, error) {
	executor.logger.Debug(
		logMessageCommandStartingConstant,
		zap.String(logFieldCommandConstant, string(command.Name)),
		zap.Strings(logFieldArgumentsConstant, command.Details.Arguments),
		zap.String(logFieldWorkingDirectoryConstant, command.Details.WorkingDirectory),
	)
	executor.eventObserver.CommandStarted(command)

	executionResult, runError := executor.commandRunner.Run(executionContext, command)
	if runError != nil {
		timeoutError := CommandTimeoutError{}
		if errors.As(runError, &timeoutError) {
			executor.eventObserver.CommandExecutionFailed(command, runError)
			return ExecutionResult{}, runError
		}
		executor.eventObserver.CommandExecutionFailed(command, runError)
		return ExecutionResult{}, CommandExecutionError{Command: command, Cause: runError}
	}

	executor.logger.Debug(
		logMessageCommandCompletedConstant,
		zap.String(logFieldCommandConstant, string(command.Name)),
		zap.Int(logFieldExitCodeConstant, executionResult.ExitCode),
	)
	executor.eventObserver.CommandCompleted(command, executionResult)

	if executionResult.ExitCode != 0 {
		return ExecutionResult{}, CommandFailedError{Command: command, Result: executionResult}
	}

	return executionResult, nil
}

func formatCommandLabel(command ShellCommand) string {
	labelParts := []string{string(command.Name)}
	labelParts = append(labelParts, command.Details.Arguments...)
	return strings.Join(labelParts, commandLabelSeparatorConstant)
}

func formatCapturedOutputSuffix(result ExecutionResult) string {
	capturedOutput := strings.TrimSpace(result.StandardError)
	if len(capturedOutput) == 0 {
		capturedOutput = strings.TrimSpace(result.StandardOutput)
	}
	if len(capturedOutput) == 0 {
		return ""
	}
	return fmt.Sprintf(capturedOutputSuffixTemplateConstant, capturedOutput)
}
