package deps

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

const (
	manifestFileNameConstant           = "dependencies.yml"
	overrideFileNameConstant           = ".dependencies.override.yml"
	defaultVersionConstant             = "master"
	manifestReadErrorTemplateConstant  = "unable to read manifest %s: %w"
	manifestParseErrorTemplateConstant = "unable to parse manifest %s: %w"
	manifestMissingMessageConstant     = "dependency manifest not found"
	remoteURLMissingTemplateConstant   = "remote %q has no url"
	unknownRemoteTemplateConstant      = "dependency %q references unknown remote %q"
	dependencyPathMissingConstant      = "dependency %q has no path"
	duplicatePathTemplateConstant      = "dependency path %q declared more than once"
)

// ErrManifestNotFound indicates the host repository carries no manifest file.
var ErrManifestNotFound = errors.New(manifestMissingMessageConstant)

// Remote describes one named upstream source of dependencies.
type Remote struct {
	URL                   string `yaml:"url" mapstructure:"url"`
	Keyfile               string `yaml:"keyfile" mapstructure:"keyfile"`
	UseTargetAsRemotePath bool   `yaml:"use_target_as_remote_path" mapstructure:"use_target_as_remote_path"`
}

// Dependency describes one external repository mounted into the host tree.
type Dependency struct {
	Remote     string `yaml:"remote" mapstructure:"remote"`
	Version    string `yaml:"version" mapstructure:"version"`
	RemotePath string `yaml:"remote_path" mapstructure:"remote_path"`
	Path       string `yaml:"path" mapstructure:"path"`
}

// Manifest is the parsed dependency configuration of one host repository.
type Manifest struct {
	Remotes      map[string]Remote `yaml:"remotes" mapstructure:"remotes"`
	Dependencies []Dependency      `yaml:"dependencies" mapstructure:"dependencies"`
}

// LoadManifest reads the manifest from hostDirectory, merges the optional
// override file on top, applies defaults, and validates the result.
func LoadManifest(hostDirectory string) (Manifest, error) {
	manifestPath := filepath.Join(hostDirectory, manifestFileNameConstant)
	loadedManifest, loadError := readManifestFile(manifestPath)
	if loadError != nil {
		if errors.Is(loadError, os.ErrNotExist) {
			return Manifest{}, ErrManifestNotFound
		}
		return Manifest{}, loadError
	}

	overridePath := filepath.Join(hostDirectory, overrideFileNameConstant)
	overrideManifest, overrideError := readManifestFile(overridePath)
	if overrideError == nil {
		loadedManifest = mergeManifests(loadedManifest, overrideManifest)
	} else if !errors.Is(overrideError, os.ErrNotExist) {
		return Manifest{}, overrideError
	}

	normalizedManifest := applyDefaults(loadedManifest)
	if validationError := validateManifest(normalizedManifest); validationError != nil {
		return Manifest{}, validationError
	}

	return normalizedManifest, nil
}

func readManifestFile(manifestPath string) (Manifest, error) {
	manifestBytes, readError := os.ReadFile(manifestPath)
	if readError != nil {
		return Manifest{}, fmt.Errorf(manifestReadErrorTemplateConstant, manifestPath, readError)
	}

	var parsedManifest Manifest
	if parseError := yaml.Unmarshal(manifestBytes, &parsedManifest); parseError != nil {
		return Manifest{}, fmt.Errorf(manifestParseErrorTemplateConstant, manifestPath, parseError)
	}

	return parsedManifest, nil
}

// mergeManifests layers override on top of base. Remotes replace by name;
// dependencies replace by path.
func mergeManifests(base Manifest, override Manifest) Manifest {
	merged := Manifest{
		Remotes:      map[string]Remote{},
		Dependencies: append([]Dependency(nil), base.Dependencies...),
	}
	for remoteName, remoteDefinition := range base.Remotes {
		merged.Remotes[remoteName] = remoteDefinition
	}
	for remoteName, remoteDefinition := range override.Remotes {
		merged.Remotes[remoteName] = remoteDefinition
	}

	for _, overrideDependency := range override.Dependencies {
		replaced := false
		for dependencyIndex, baseDependency := range merged.Dependencies {
			if baseDependency.Path == overrideDependency.Path {
				merged.Dependencies[dependencyIndex] = overrideDependency
				replaced = true
				break
			}
		}
		if !replaced {
			merged.Dependencies = append(merged.Dependencies, overrideDependency)
		}
	}

	return merged
}

func applyDefaults(manifest Manifest) Manifest {
	normalized := manifest
	normalized.Dependencies = append([]Dependency(nil), manifest.Dependencies...)
	for dependencyIndex, declaredDependency := range normalized.Dependencies {
		if len(strings.TrimSpace(declaredDependency.Version)) == 0 {
			normalized.Dependencies[dependencyIndex].Version = defaultVersionConstant
		}
	}
	return normalized
}

func validateManifest(manifest Manifest) error {
	for remoteName, remoteDefinition := range manifest.Remotes {
		if len(strings.TrimSpace(remoteDefinition.URL)) == 0 {
			return fmt.Errorf(remoteURLMissingTemplateConstant, remoteName)
		}
	}

	seenPaths := map[string]bool{}
	for _, declaredDependency := range manifest.Dependencies {
		if len(strings.TrimSpace(declaredDependency.Path)) == 0 {
			return fmt.Errorf(dependencyPathMissingConstant, declaredDependency.Remote)
		}
		if _, remoteKnown := manifest.Remotes[declaredDependency.Remote]; !remoteKnown {
			return fmt.Errorf(unknownRemoteTemplateConstant, declaredDependency.Path, declaredDependency.Remote)
		}
		if seenPaths[declaredDependency.Path] {
			return fmt.Errorf(duplicatePathTemplateConstant, declaredDependency.Path)
		}
		seenPaths[declaredDependency.Path] = true
	}

	return nil
}
