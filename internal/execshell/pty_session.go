package execshell

import (
	"context"
	"errors"
	"os"
	"os/exec"

	"github.com/creack/pty"
)

// PTYSessionStarter spawns commands attached to a pseudo-terminal so that
// interactive credential prompts surface on the output stream.
type PTYSessionStarter struct{}

type ptySession struct {
	process  *exec.Cmd
	terminal *os.File
}

// Start launches the command under a new pseudo-terminal.
func (starter *PTYSessionStarter) Start(executionContext context.Context, command ShellCommand, environment []string) (InteractiveSession, error) {
	process := exec.CommandContext(executionContext, string(command.Name), command.Details.Arguments...)
	if len(command.Details.WorkingDirectory) > 0 {
		process.Dir = command.Details.WorkingDirectory
	}
	process.Env = environment

	terminal, startError := pty.Start(process)
	if startError != nil {
		return nil, startError
	}

	return &ptySession{process: process, terminal: terminal}, nil
}

// Read reads subprocess output from the terminal master.
func (session *ptySession) Read(buffer []byte) (int, error) {
	return session.terminal.Read(buffer)
}

// SendLine writes one line of input to the subprocess.
func (session *ptySession) SendLine(line string) error {
	_, writeError := session.terminal.WriteString(line + "\n")
	return writeError
}

// Terminate forcibly kills the subprocess.
func (session *ptySession) Terminate() error {
	if session.process.Process == nil {
		return nil
	}
	return session.process.Process.Kill()
}

// Wait collects the subprocess exit status and releases the terminal.
func (session *ptySession) Wait() (int, error) {
	waitError := session.process.Wait()
	_ = session.terminal.Close()

	if waitError != nil {
		exitError := &exec.ExitError{}
		if errors.As(waitError, &exitError) {
			return exitError.ExitCode(), nil
		}
		return 0, waitError
	}
	return 0, nil
}
