package docs_test

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"

	"github.com/gitdeps/gitdeps/internal/deps"
)

const (
	readmeFileNameConstant           = "README.md"
	yamlFenceStartConstant           = "```yaml"
	yamlFenceEndConstant             = "```"
	manifestHeaderMarkerConstant     = "# dependencies.yml"
	configHeaderMarkerConstant       = "# config.yaml"
	manifestFileNameConstant         = "dependencies.yml"
	parentDirectoryReferenceConstant = ".."
	missingHeaderMessageTemplate     = "README example missing header marker %s"
	missingStartFenceMessageConstant = "README example missing yaml fence start"
	missingEndFenceMessageConstant   = "README example missing yaml fence end"
)

type readmeSettingsConfiguration struct {
	Common struct {
		LogLevel  string `yaml:"log_level"`
		LogFormat string `yaml:"log_format"`
	} `yaml:"common"`
	Commands struct {
		Update struct {
			Echo              bool `yaml:"echo"`
			ContinueOnFailure bool `yaml:"continue_on_failure"`
		} `yaml:"update"`
	} `yaml:"commands"`
}

func extractReadmeSnippet(testInstance *testing.T, headerMarker string) string {
	testInstance.Helper()

	workingDirectory, workingDirectoryError := os.Getwd()
	require.NoError(testInstance, workingDirectoryError)

	readmePath := filepath.Join(workingDirectory, parentDirectoryReferenceConstant, readmeFileNameConstant)
	contentBytes, readError := os.ReadFile(readmePath)
	require.NoError(testInstance, readError)

	contentText := string(contentBytes)
	headerIndex := strings.Index(contentText, headerMarker)
	require.NotEqualf(testInstance, -1, headerIndex, missingHeaderMessageTemplate, headerMarker)

	fenceStartIndex := strings.LastIndex(contentText[:headerIndex], yamlFenceStartConstant)
	require.NotEqual(testInstance, -1, fenceStartIndex, missingStartFenceMessageConstant)

	remainingText := contentText[headerIndex:]
	fenceEndRelativeIndex := strings.Index(remainingText, yamlFenceEndConstant)
	require.NotEqual(testInstance, -1, fenceEndRelativeIndex, missingEndFenceMessageConstant)
	fenceEndIndex := headerIndex + fenceEndRelativeIndex

	return strings.TrimSpace(contentText[fenceStartIndex+len(yamlFenceStartConstant) : fenceEndIndex])
}

func TestReadmeManifestExampleLoads(testInstance *testing.T) {
	snippetContent := extractReadmeSnippet(testInstance, manifestHeaderMarkerConstant)

	hostDirectory := testInstance.TempDir()
	manifestPath := filepath.Join(hostDirectory, manifestFileNameConstant)
	require.NoError(testInstance, os.WriteFile(manifestPath, []byte(snippetContent), 0o644))

	manifest, loadError := deps.LoadManifest(hostDirectory)
	require.NoError(testInstance, loadError)
	require.Len(testInstance, manifest.Remotes, 2)
	require.Len(testInstance, manifest.Dependencies, 2)

	repositories, resolveError := deps.ResolveRepositories(manifest, hostDirectory)
	require.NoError(testInstance, resolveError)
	require.Len(testInstance, repositories, 2)

	repositoriesByDirectory := make(map[string]deps.Repository, len(repositories))
	for _, resolvedRepository := range repositories {
		repositoriesByDirectory[resolvedRepository.Directory] = resolvedRepository
	}

	sharedLibrary, sharedLibraryFound := repositoriesByDirectory[filepath.Join(hostDirectory, "vendor/shared-library")]
	require.True(testInstance, sharedLibraryFound)
	require.Equal(testInstance, "git@github.com:acme/shared-library", sharedLibrary.URL)
	require.Equal(testInstance, "release/2.4", sharedLibrary.Version)
	require.True(testInstance, strings.HasSuffix(sharedLibrary.Keyfile, ".ssh/id_ed25519"))

	tooling, toolingFound := repositoriesByDirectory[filepath.Join(hostDirectory, "vendor/tooling")]
	require.True(testInstance, toolingFound)
	require.Equal(testInstance, "https://git.example.com/vendor/tooling", tooling.URL)
	require.Equal(testInstance, "v1.9.0", tooling.Version)
}

func TestReadmeSettingsExampleParses(testInstance *testing.T) {
	snippetContent := extractReadmeSnippet(testInstance, configHeaderMarkerConstant)

	var settingsConfiguration readmeSettingsConfiguration
	require.NoError(testInstance, yaml.Unmarshal([]byte(snippetContent), &settingsConfiguration))

	require.Equal(testInstance, "info", settingsConfiguration.Common.LogLevel)
	require.Equal(testInstance, "structured", settingsConfiguration.Common.LogFormat)
	require.False(testInstance, settingsConfiguration.Commands.Update.Echo)
	require.False(testInstance, settingsConfiguration.Commands.Update.ContinueOnFailure)
}
