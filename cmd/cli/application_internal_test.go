package cli

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/gitdeps/gitdeps/internal/utils"
)

const (
	testConfigurationFileNameConstant = "config.yaml"
	testConfigurationContentConstant  = "common:\n" +
		"  log_level: debug\n" +
		"  log_format: console\n" +
		"commands:\n" +
		"  update:\n" +
		"    echo: true\n" +
		"    continue_on_failure: true\n"
	testHostDirectoryConstant = "/srv/host-repository"
)

func writeTestConfigurationFile(testInstance *testing.T) string {
	testInstance.Helper()

	configurationPath := filepath.Join(testInstance.TempDir(), testConfigurationFileNameConstant)
	require.NoError(testInstance, os.WriteFile(configurationPath, []byte(testConfigurationContentConstant), 0o644))

	return configurationPath
}

func TestNewApplicationRegistersSubcommands(testInstance *testing.T) {
	application := NewApplication()

	registeredCommandNames := map[string]bool{}
	for _, registeredCommand := range application.rootCommand.Commands() {
		registeredCommandNames[registeredCommand.Name()] = true
	}

	expectedCommandNames := []string{"update", "list", "exec"}
	for _, expectedCommandName := range expectedCommandNames {
		require.True(testInstance, registeredCommandNames[expectedCommandName], "command %s not registered", expectedCommandName)
	}
}

func TestInitializeConfigurationLoadsFileValues(testInstance *testing.T) {
	application := NewApplication()
	application.configurationFilePath = writeTestConfigurationFile(testInstance)

	require.NoError(testInstance, application.initializeConfiguration(application.rootCommand))

	require.Equal(testInstance, string(utils.LogLevelDebug), application.configuration.Common.LogLevel)
	require.Equal(testInstance, string(utils.LogFormatConsole), application.configuration.Common.LogFormat)
	require.True(testInstance, application.configuration.Commands.Update.Echo)
	require.True(testInstance, application.configuration.Commands.Update.ContinueOnFailure)
}

func TestInitializeConfigurationAppliesDefaults(testInstance *testing.T) {
	application := NewApplication()

	require.NoError(testInstance, application.initializeConfiguration(application.rootCommand))

	require.Equal(testInstance, string(utils.LogLevelInfo), application.configuration.Common.LogLevel)
	require.Equal(testInstance, string(utils.LogFormatStructured), application.configuration.Common.LogFormat)
	require.False(testInstance, application.configuration.Commands.Update.Echo)
	require.False(testInstance, application.configuration.Commands.Update.ContinueOnFailure)
}

func TestInitializeConfigurationPrefersChangedFlags(testInstance *testing.T) {
	application := NewApplication()
	application.configurationFilePath = writeTestConfigurationFile(testInstance)

	require.NoError(testInstance, application.rootCommand.PersistentFlags().Set(logLevelFlagNameConstant, string(utils.LogLevelError)))
	require.NoError(testInstance, application.rootCommand.PersistentFlags().Set(logFormatFlagNameConstant, string(utils.LogFormatStructured)))

	require.NoError(testInstance, application.initializeConfiguration(application.rootCommand))

	require.Equal(testInstance, string(utils.LogLevelError), application.configuration.Common.LogLevel)
	require.Equal(testInstance, string(utils.LogFormatStructured), application.configuration.Common.LogFormat)
}

func TestInitializeConfigurationStashesWorkingDirectory(testInstance *testing.T) {
	application := NewApplication()
	application.workingDirectoryValue = testHostDirectoryConstant

	require.NoError(testInstance, application.initializeConfiguration(application.rootCommand))

	storedDirectory, directoryAvailable := application.commandContextAccessor.WorkingDirectory(application.rootCommand.Context())
	require.True(testInstance, directoryAvailable)
	require.Equal(testInstance, testHostDirectoryConstant, storedDirectory)
}

func TestRootCommandPrintsHelpWithoutArguments(testInstance *testing.T) {
	application := NewApplication()

	outputBuffer := &bytes.Buffer{}
	application.rootCommand.SetOut(outputBuffer)
	application.rootCommand.SetErr(outputBuffer)
	application.rootCommand.SetArgs([]string{})

	require.NoError(testInstance, application.Execute())
	require.Contains(testInstance, outputBuffer.String(), "Usage:")
}
