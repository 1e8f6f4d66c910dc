// Package gitrepo contains helpers for interrogating and manipulating Git
// repositories through the git command line.
//
// It exposes RepositoryManager for cloning, fetching, and branch operations,
// parsers that turn git's textual remote and branch listings into typed
// records, and remote URL utilities used when composing dependency URLs.
package gitrepo
