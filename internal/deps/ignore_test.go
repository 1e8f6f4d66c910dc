package deps_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/gitdeps/gitdeps/internal/deps"
)

func readIgnoreFile(testInstance *testing.T, hostDirectory string) string {
	ignoreContent, readError := os.ReadFile(filepath.Join(hostDirectory, ".gitignore"))
	require.NoError(testInstance, readError)
	return string(ignoreContent)
}

func TestEnsureIgnoredCreatesFileWhenAbsent(testInstance *testing.T) {
	hostDirectory := testInstance.TempDir()

	require.NoError(testInstance, deps.EnsureIgnored(hostDirectory, "/vendor/library"))
	require.Equal(testInstance, "/vendor/library\n", readIgnoreFile(testInstance, hostDirectory))
}

func TestEnsureIgnoredAppendsWithoutDuplicating(testInstance *testing.T) {
	hostDirectory := testInstance.TempDir()
	existingContent := "*.log\n/vendor/library\n"
	require.NoError(testInstance, os.WriteFile(filepath.Join(hostDirectory, ".gitignore"), []byte(existingContent), 0o644))

	require.NoError(testInstance, deps.EnsureIgnored(hostDirectory, "/vendor/library"))
	require.Equal(testInstance, existingContent, readIgnoreFile(testInstance, hostDirectory))

	require.NoError(testInstance, deps.EnsureIgnored(hostDirectory, "vendor/tooling"))
	require.Equal(testInstance, existingContent+"/vendor/tooling\n", readIgnoreFile(testInstance, hostDirectory))
}

func TestEnsureIgnoredTerminatesUnterminatedFile(testInstance *testing.T) {
	hostDirectory := testInstance.TempDir()
	require.NoError(testInstance, os.WriteFile(filepath.Join(hostDirectory, ".gitignore"), []byte("*.log"), 0o644))

	require.NoError(testInstance, deps.EnsureIgnored(hostDirectory, "/vendor/library"))
	require.Equal(testInstance, "*.log\n/vendor/library\n", readIgnoreFile(testInstance, hostDirectory))
}
