package utils

import "context"

const (
	configurationFilePathContextKeyConstant = commandContextKey("configurationFilePath")
	workingDirectoryContextKeyConstant      = commandContextKey("workingDirectory")
)

type commandContextKey string

// CommandContextAccessor manages values stored in command execution contexts.
type CommandContextAccessor struct{}

// NewCommandContextAccessor constructs a CommandContextAccessor instance.
func NewCommandContextAccessor() CommandContextAccessor {
	return CommandContextAccessor{}
}

// WithConfigurationFilePath attaches the configuration file path to the provided context.
func (accessor CommandContextAccessor) WithConfigurationFilePath(parentContext context.Context, configurationFilePath string) context.Context {
	return accessor.withValue(parentContext, configurationFilePathContextKeyConstant, configurationFilePath)
}

// ConfigurationFilePath extracts the configuration file path from the provided context.
func (accessor CommandContextAccessor) ConfigurationFilePath(executionContext context.Context) (string, bool) {
	return accessor.value(executionContext, configurationFilePathContextKeyConstant)
}

// WithWorkingDirectory attaches the resolved host working directory to the provided context.
func (accessor CommandContextAccessor) WithWorkingDirectory(parentContext context.Context, workingDirectory string) context.Context {
	return accessor.withValue(parentContext, workingDirectoryContextKeyConstant, workingDirectory)
}

// WorkingDirectory extracts the host working directory from the provided context.
func (accessor CommandContextAccessor) WorkingDirectory(executionContext context.Context) (string, bool) {
	return accessor.value(executionContext, workingDirectoryContextKeyConstant)
}

func (accessor CommandContextAccessor) withValue(parentContext context.Context, contextKey commandContextKey, contextValue string) context.Context {
	if parentContext == nil {
		parentContext = context.Background()
	}
	return context.WithValue(parentContext, contextKey, contextValue)
}

func (accessor CommandContextAccessor) value(executionContext context.Context, contextKey commandContextKey) (string, bool) {
	if executionContext == nil {
		return "", false
	}
	storedValue, valueAvailable := executionContext.Value(contextKey).(string)
	if !valueAvailable || len(storedValue) == 0 {
		return "", false
	}
	return storedValue, true
}
