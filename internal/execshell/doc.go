// Package execshell drives the external git executable.
//
// ShellExecutor wraps a CommandRunner with logging and lifecycle events.
// InteractiveRunner is the production runner: it attaches git to a
// pseudo-terminal, classifies output into credential prompt events, answers
// them from the credential store or the operator, and enforces an idle
// timeout. OSCommandRunner remains for invocations that must not allocate a
// terminal.
package execshell
