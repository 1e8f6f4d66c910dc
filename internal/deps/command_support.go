package deps

import (
	"context"
	"os"
	"strings"

	"go.uber.org/zap"

	"github.com/gitdeps/gitdeps/internal/execshell"
	"github.com/gitdeps/gitdeps/internal/gitrepo"
	"github.com/gitdeps/gitdeps/internal/ui"
	"github.com/gitdeps/gitdeps/internal/utils"
)

// LoggerProvider supplies a zap logger instance.
type LoggerProvider func() *zap.Logger

// GitExecutor mirrors the execution surface command builders may have
// injected for tests.
type GitExecutor = gitrepo.GitExecutor

func resolveLogger(loggerProvider LoggerProvider) *zap.Logger {
	if loggerProvider == nil {
		return zap.NewNop()
	}
	logger := loggerProvider()
	if logger == nil {
		return zap.NewNop()
	}
	return logger
}

// resolveHostDirectory prefers the builder's explicit directory, then the
// directory stashed in the command context by the root command, then the
// process working directory.
func resolveHostDirectory(configuredDirectory string, executionContext context.Context) (string, error) {
	trimmedDirectory := strings.TrimSpace(configuredDirectory)
	if len(trimmedDirectory) > 0 {
		return trimmedDirectory, nil
	}
	if contextDirectory, directoryAvailable := utils.NewCommandContextAccessor().WorkingDirectory(executionContext); directoryAvailable {
		return contextDirectory, nil
	}
	return os.Getwd()
}

// resolveInteractiveExecutor builds the pty-backed executor used for
// network-bound commands that may prompt for credentials.
func resolveInteractiveExecutor(injectedExecutor GitExecutor, logger *zap.Logger) (GitExecutor, error) {
	if injectedExecutor != nil {
		return injectedExecutor, nil
	}

	interactiveRunner := execshell.NewInteractiveRunner(execshell.InteractiveRunnerDependencies{})
	shellExecutor, creationError := execshell.NewShellExecutor(logger, interactiveRunner)
	if creationError != nil {
		return nil, creationError
	}
	shellExecutor.SetCommandEventObserver(ui.NewConsoleCommandEventLogger(logger))
	return shellExecutor, nil
}

// resolvePassthroughExecutor builds the plain executor used when no
// credential interaction is expected.
func resolvePassthroughExecutor(injectedExecutor GitExecutor, logger *zap.Logger) (GitExecutor, error) {
	if injectedExecutor != nil {
		return injectedExecutor, nil
	}

	shellExecutor, creationError := execshell.NewShellExecutor(logger, execshell.NewOSCommandRunner())
	if creationError != nil {
		return nil, creationError
	}
	shellExecutor.SetCommandEventObserver(ui.NewConsoleCommandEventLogger(logger))
	return shellExecutor, nil
}

func loadResolvedRepositories(hostDirectory string) (Manifest, []Repository, error) {
	loadedManifest, manifestError := LoadManifest(hostDirectory)
	if manifestError != nil {
		return Manifest{}, nil, manifestError
	}
	resolvedRepositories, resolveError := ResolveRepositories(loadedManifest, hostDirectory)
	if resolveError != nil {
		return Manifest{}, nil, resolveError
	}
	return loadedManifest, resolvedRepositories, nil
}
