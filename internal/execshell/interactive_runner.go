package execshell

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/gitdeps/gitdeps/internal/credentials"
	"github.com/gitdeps/gitdeps/internal/prompt"
)

const (
	defaultIdleTimeoutConstant              = 10 * time.Minute
	sessionReadBufferSizeConstant           = 4096
	localeEnvironmentAssignmentConstant     = "LC_ALL=C"
	pagerEnvironmentAssignmentConstant      = "GIT_PAGER=cat"
	sshEnvironmentNameConstant              = "GIT_SSH"
	environmentAssignmentSeparatorConstant  = "="
	credentialPromptFailureTemplateConstant = "collecting credentials for %s: %w"
)

// CredentialPrompter collects credentials from the operator when the store has
// no cached entry for a remote identifier.
type CredentialPrompter interface {
	PromptUsername(remoteIdentifier string) (string, error)
	PromptPassword(remoteIdentifier string) (string, error)
}

// InteractiveSession is one live subprocess attached to a pseudo-terminal.
type InteractiveSession interface {
	Read(buffer []byte) (int, error)
	SendLine(line string) error
	Terminate() error
	Wait() (int, error)
}

// SessionStarter spawns interactive sessions for shell commands.
type SessionStarter interface {
	Start(executionContext context.Context, command ShellCommand, environment []string) (InteractiveSession, error)
}

// InteractiveRunnerDependencies enumerates the collaborators of the runner.
// Zero values select production defaults.
type InteractiveRunnerDependencies struct {
	SessionStarter     SessionStarter
	Classifier         prompt.Classifier
	CredentialStore    *credentials.Store
	CredentialPrompter CredentialPrompter
	DiagnosticOutput   io.Writer
	IdleTimeout        time.Duration
}

// InteractiveRunner executes git under a pseudo-terminal, classifies its
// output into credential prompt events, and answers them from the credential
// store or the operator. It implements CommandRunner.
//
// A single runner never has more than one subprocess in flight; invocations
// are strictly sequential because the credential store and the controlling
// terminal are shared, unsynchronized resources.
type InteractiveRunner struct {
	sessionStarter     SessionStarter
	classifier         prompt.Classifier
	credentialStore    *credentials.Store
	credentialPrompter CredentialPrompter
	diagnosticOutput   io.Writer
	idleTimeout        time.Duration
}

// NewInteractiveRunner constructs a runner, substituting defaults for any
// dependency left unset.
func NewInteractiveRunner(dependencies InteractiveRunnerDependencies) *InteractiveRunner {
	runner := &InteractiveRunner{
		sessionStarter:     dependencies.SessionStarter,
		classifier:         dependencies.Classifier,
		credentialStore:    dependencies.CredentialStore,
		credentialPrompter: dependencies.CredentialPrompter,
		diagnosticOutput:   dependencies.DiagnosticOutput,
		idleTimeout:        dependencies.IdleTimeout,
	}
	if runner.sessionStarter == nil {
		runner.sessionStarter = &PTYSessionStarter{}
	}
	if runner.classifier == nil {
		runner.classifier = prompt.NewGitPromptClassifier()
	}
	if runner.credentialStore == nil {
		runner.credentialStore = credentials.NewStore()
	}
	if runner.credentialPrompter == nil {
		runner.credentialPrompter = credentials.NewTerminalPrompter()
	}
	if runner.diagnosticOutput == nil {
		runner.diagnosticOutput = os.Stdout
	}
	if runner.idleTimeout <= 0 {
		runner.idleTimeout = defaultIdleTimeoutConstant
	}
	return runner
}

type sessionChunk struct {
	data        []byte
	readFailure error
}

// Run drives one command to completion.
//
// The transport wrapper for a keyfile is removed on every exit path,
// including timeouts and panics, via the deferred removal below.
func (runner *InteractiveRunner) Run(executionContext context.Context, command ShellCommand) (ExecutionResult, error) {
	environment := runner.buildEnvironment(command)

	if len(command.Details.KeyfilePath) > 0 {
		wrapper, wrapperError := newTransportWrapper(command.Details.KeyfilePath)
		if wrapperError != nil {
			return ExecutionResult{}, wrapperError
		}
		defer wrapper.Remove()
		environment = append(environment, sshEnvironmentNameConstant+environmentAssignmentSeparatorConstant+wrapper.Path())
	}

	session, startError := runner.sessionStarter.Start(executionContext, command, environment)
	if startError != nil {
		return ExecutionResult{}, startError
	}

	capturedOutput, driveError := runner.driveSession(executionContext, command, session)
	if driveError != nil {
		return ExecutionResult{StandardOutput: capturedOutput}, driveError
	}

	exitCode, waitError := session.Wait()
	if waitError != nil {
		return ExecutionResult{StandardOutput: capturedOutput}, waitError
	}

	return ExecutionResult{StandardOutput: capturedOutput, ExitCode: exitCode}, nil
}

// driveSession reads output until end-of-stream, answering credential prompts
// as they are classified. Returned text is everything captured so far.
func (runner *InteractiveRunner) driveSession(executionContext context.Context, command ShellCommand, session InteractiveSession) (string, error) {
	chunkChannel := make(chan sessionChunk)
	go func() {
		for {
			readBuffer := make([]byte, sessionReadBufferSizeConstant)
			bytesRead, readError := session.Read(readBuffer)
			chunkChannel <- sessionChunk{data: readBuffer[:bytesRead], readFailure: readError}
			if readError != nil {
				return
			}
		}
	}()

	idleTimer := time.NewTimer(runner.idleTimeout)
	defer idleTimer.Stop()

	var capturedBuilder strings.Builder
	consumedOffset := 0

	for {
		select {
		case <-executionContext.Done():
			_ = session.Terminate()
			drainSessionOutput(chunkChannel)
			_, _ = session.Wait()
			return capturedBuilder.String(), executionContext.Err()

		case <-idleTimer.C:
			_ = session.Terminate()
			drainSessionOutput(chunkChannel)
			_, _ = session.Wait()
			return capturedBuilder.String(), CommandTimeoutError{
				Command:        command,
				IdleTimeout:    runner.idleTimeout,
				CapturedOutput: capturedBuilder.String(),
			}

		case chunk := <-chunkChannel:
			if len(chunk.data) > 0 {
				capturedBuilder.Write(chunk.data)
				runner.resetIdleTimer(idleTimer)
			}

			capturedText := capturedBuilder.String()
			var promptFailure error
			consumedOffset, promptFailure = runner.answerPrompts(command, session, capturedText, consumedOffset)
			if promptFailure != nil {
				// The subprocess is still waiting at its prompt and will
				// never make progress without input.
				_ = session.Terminate()
				drainSessionOutput(chunkChannel)
				_, _ = session.Wait()
				return capturedText, promptFailure
			}

			if chunk.readFailure != nil {
				// Any read failure marks end-of-stream: a pseudo-terminal
				// reports the child's exit as an I/O error rather than EOF.
				runner.relayDiagnostics(command, capturedText[consumedOffset:])
				return capturedText, nil
			}
		}
	}
}

// answerPrompts classifies the unconsumed output tail and answers every
// credential prompt found there, returning the new consumed offset. A failed
// credential resolution is returned to the caller; leaving the prompt
// unanswered would stall the subprocess until the idle timeout.
func (runner *InteractiveRunner) answerPrompts(command ShellCommand, session InteractiveSession, capturedText string, consumedOffset int) (int, error) {
	for {
		unconsumedSegment := capturedText[consumedOffset:]
		classification := runner.classifier.Classify(unconsumedSegment)
		if classification.Kind == prompt.KindNoMatch {
			return consumedOffset, nil
		}

		runner.relayDiagnostics(command, unconsumedSegment[:classification.MatchStart])

		credentialValue, credentialError := runner.resolveCredential(classification)
		if credentialError != nil {
			return consumedOffset, fmt.Errorf(credentialPromptFailureTemplateConstant, classification.RemoteIdentifier, credentialError)
		}
		_ = session.SendLine(credentialValue)

		consumedOffset += classification.MatchEnd
	}
}

func (runner *InteractiveRunner) resolveCredential(classification prompt.Classification) (string, error) {
	remoteIdentifier := runner.credentialStore.NormalizeIdentifier(classification.RemoteIdentifier)

	switch classification.Kind {
	case prompt.KindUsernameRequest:
		if cachedUsername, exists := runner.credentialStore.LookupUsername(remoteIdentifier); exists {
			return cachedUsername, nil
		}
		enteredUsername, promptError := runner.credentialPrompter.PromptUsername(remoteIdentifier)
		if promptError != nil {
			return "", promptError
		}
		runner.credentialStore.BindUsername(remoteIdentifier, enteredUsername)
		return enteredUsername, nil

	default:
		if cachedPassword, exists := runner.credentialStore.LookupPassword(remoteIdentifier); exists {
			return cachedPassword, nil
		}
		enteredPassword, promptError := runner.credentialPrompter.PromptPassword(remoteIdentifier)
		if promptError != nil {
			return "", promptError
		}
		runner.credentialStore.BindPassword(remoteIdentifier, enteredPassword)
		return enteredPassword, nil
	}
}

func (runner *InteractiveRunner) relayDiagnostics(command ShellCommand, diagnosticText string) {
	if !command.Details.EchoOutput {
		return
	}
	if len(strings.TrimSpace(diagnosticText)) == 0 {
		return
	}
	_, _ = io.WriteString(runner.diagnosticOutput, diagnosticText)
}

// drainSessionOutput unblocks the session reader goroutine after a forced
// termination. The reader always finishes with a read-failure chunk once the
// subprocess is gone.
func drainSessionOutput(chunkChannel <-chan sessionChunk) {
	go func() {
		for chunk := range chunkChannel {
			if chunk.readFailure != nil {
				return
			}
		}
	}()
}

func (runner *InteractiveRunner) resetIdleTimer(idleTimer *time.Timer) {
	if !idleTimer.Stop() {
		select {
		case <-idleTimer.C:
		default:
		}
	}
	idleTimer.Reset(runner.idleTimeout)
}

func (runner *InteractiveRunner) buildEnvironment(command ShellCommand) []string {
	environment := append([]string{}, os.Environ()...)
	environment = append(environment, localeEnvironmentAssignmentConstant, pagerEnvironmentAssignmentConstant)
	for environmentKey, environmentValue := range command.Details.EnvironmentVariables {
		environment = append(environment, environmentKey+environmentAssignmentSeparatorConstant+environmentValue)
	}
	return environment
}
