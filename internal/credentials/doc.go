// Package credentials provides the in-memory credential cache consulted by the
// interactive git driver when authentication prompts are detected.
//
// Credentials live only for the duration of one gitdeps invocation and are
// never written to disk.
package credentials
