// Package cli assembles the gitdeps command-line application. It wires the
// Cobra root command, the Viper-backed configuration loader, and the zap
// logger, and registers the dependency update, list, and exec subcommands.
package cli
