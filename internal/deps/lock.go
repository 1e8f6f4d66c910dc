package deps

import (
	"fmt"
	"path/filepath"

	"github.com/gofrs/flock"
)

const (
	lockFileNameConstant              = ".gitdeps.lock"
	lockAcquireErrorTemplateConstant  = "unable to acquire run lock %s: %w"
	lockContendedMessageTemplateConst = "another gitdeps run holds the lock %s"
)

// RunLock serializes whole-tool invocations against one host repository.
// Credential prompts and the interactive terminal are shared resources, so
// overlapping runs are refused rather than interleaved.
type RunLock struct {
	fileLock *flock.Flock
}

// AcquireRunLock takes the host repository's run lock without blocking,
// failing when another invocation already holds it.
func AcquireRunLock(hostDirectory string) (*RunLock, error) {
	lockFilePath := filepath.Join(hostDirectory, lockFileNameConstant)
	fileLock := flock.New(lockFilePath)

	lockAcquired, lockError := fileLock.TryLock()
	if lockError != nil {
		return nil, fmt.Errorf(lockAcquireErrorTemplateConstant, lockFilePath, lockError)
	}
	if !lockAcquired {
		return nil, fmt.Errorf(lockContendedMessageTemplateConst, lockFilePath)
	}

	return &RunLock{fileLock: fileLock}, nil
}

// Release returns the lock. Safe to call on a nil receiver.
func (runLock *RunLock) Release() error {
	if runLock == nil || runLock.fileLock == nil {
		return nil
	}
	return runLock.fileLock.Unlock()
}
