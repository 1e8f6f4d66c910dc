package deps

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/gitdeps/gitdeps/internal/gitrepo"
	pathutils "github.com/gitdeps/gitdeps/internal/utils/path"
)

const (
	remoteNamePrefixConstant     = "dependency-mgmnt_"
	remoteNameHashLengthConstant = 10
)

// Repository is one dependency resolved against its remote: the full URL to
// fetch from, the version to synchronize, and the absolute local directory.
// Derived per dependency at the start of a sync and never persisted.
type Repository struct {
	URL       string
	Version   string
	Directory string
	Keyfile   string
}

// RemoteNameForURL derives a deterministic remote name from a content hash of
// the URL. The name is stable across runs and avoids leaking the full URL
// into generated ref names.
func RemoteNameForURL(remoteURL string) string {
	urlDigest := sha256.Sum256([]byte(remoteURL))
	return remoteNamePrefixConstant + hex.EncodeToString(urlDigest[:])[:remoteNameHashLengthConstant]
}

// ResolveRepositories expands manifest dependencies into Repository values
// rooted at hostDirectory, in declaration order.
func ResolveRepositories(manifest Manifest, hostDirectory string) ([]Repository, error) {
	keyfileExpander := pathutils.NewHomeExpander()
	resolvedRepositories := make([]Repository, 0, len(manifest.Dependencies))
	for _, declaredDependency := range manifest.Dependencies {
		dependencyRemote := manifest.Remotes[declaredDependency.Remote]

		remotePath := declaredDependency.RemotePath
		if dependencyRemote.UseTargetAsRemotePath {
			remotePath = strings.TrimPrefix(declaredDependency.Path, "/")
		}

		repositoryURL, joinError := gitrepo.JoinRemotePath(dependencyRemote.URL, remotePath)
		if joinError != nil {
			return nil, fmt.Errorf("dependency %q: %w", declaredDependency.Path, joinError)
		}

		resolvedRepositories = append(resolvedRepositories, Repository{
			URL:       repositoryURL,
			Version:   declaredDependency.Version,
			Directory: filepath.Join(hostDirectory, strings.TrimPrefix(declaredDependency.Path, "/")),
			Keyfile:   keyfileExpander.Expand(dependencyRemote.Keyfile),
		})
	}
	return resolvedRepositories, nil
}
