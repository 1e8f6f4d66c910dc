package deps_test

import (
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/gitdeps/gitdeps/internal/deps"
)

func TestRemoteNameForURL(testInstance *testing.T) {
	firstName := deps.RemoteNameForURL("https://github.com/example/library.git")
	secondName := deps.RemoteNameForURL("https://github.com/example/library.git")
	differentName := deps.RemoteNameForURL("https://github.com/example/other.git")

	require.Equal(testInstance, firstName, secondName)
	require.NotEqual(testInstance, firstName, differentName)
	require.True(testInstance, strings.HasPrefix(firstName, "dependency-mgmnt_"))
	require.Len(testInstance, strings.TrimPrefix(firstName, "dependency-mgmnt_"), 10)
	require.NotContains(testInstance, firstName, "github.com")
}

func TestResolveRepositories(testInstance *testing.T) {
	manifest := deps.Manifest{
		Remotes: map[string]deps.Remote{
			"github": {URL: "git@github.com:example", Keyfile: "/keys/deploy"},
			"mirror": {URL: "https://git.internal/mirrors", UseTargetAsRemotePath: true},
		},
		Dependencies: []deps.Dependency{
			{Remote: "github", Version: "release/2.0", RemotePath: "library.git", Path: "/vendor/library"},
			{Remote: "mirror", Version: "master", Path: "/vendor/tooling"},
		},
	}

	resolvedRepositories, resolveError := deps.ResolveRepositories(manifest, "/work/host")
	require.NoError(testInstance, resolveError)
	require.Len(testInstance, resolvedRepositories, 2)

	require.Equal(testInstance, "git@github.com:example/library.git", resolvedRepositories[0].URL)
	require.Equal(testInstance, "release/2.0", resolvedRepositories[0].Version)
	require.Equal(testInstance, filepath.Join("/work/host", "vendor", "library"), resolvedRepositories[0].Directory)
	require.Equal(testInstance, "/keys/deploy", resolvedRepositories[0].Keyfile)

	require.Equal(testInstance, "https://git.internal/mirrors/vendor/tooling", resolvedRepositories[1].URL)
	require.Empty(testInstance, resolvedRepositories[1].Keyfile)
}

func TestResolveRepositoriesRejectsUnparsableRemote(testInstance *testing.T) {
	manifest := deps.Manifest{
		Remotes: map[string]deps.Remote{
			"broken": {URL: "not-a-remote"},
		},
		Dependencies: []deps.Dependency{
			{Remote: "broken", Version: "master", Path: "/vendor/library"},
		},
	}

	_, resolveError := deps.ResolveRepositories(manifest, "/work/host")
	require.Error(testInstance, resolveError)
	require.Contains(testInstance, resolveError.Error(), "/vendor/library")
}
