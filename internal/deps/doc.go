// Package deps implements dependency synchronization for a host repository.
//
// It loads the dependency manifest, resolves each declared dependency into a
// concrete repository URL, version, and local directory, and brings every
// directory to its configured version by cloning or updating through the git
// command line. The package also provides the update, list, and exec Cobra
// commands built on that engine.
package deps
