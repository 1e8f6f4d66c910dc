package execshell

import (
	"fmt"
	"os"
)

const (
	wrapperFilePatternConstant         = "gitdeps-ssh-*"
	wrapperScriptTemplateConstant      = "#!/bin/sh\nexec ssh -i %q \"$@\"\n"
	wrapperFileModeConstant            = os.FileMode(0o700)
	wrapperCreateErrorTemplateConstant = "unable to create transport wrapper: %w"
	wrapperWriteErrorTemplateConstant  = "unable to write transport wrapper: %w"
)

// transportWrapper is the ephemeral executable script that points the git SSH
// transport at a specific private key. It exists only for the duration of one
// driver invocation and must be removed on every exit path.
type transportWrapper struct {
	scriptPath string
}

// newTransportWrapper atomically creates the wrapper script for the keyfile.
func newTransportWrapper(keyfilePath string) (*transportWrapper, error) {
	scriptFile, createError := os.CreateTemp("", wrapperFilePatternConstant)
	if createError != nil {
		return nil, fmt.Errorf(wrapperCreateErrorTemplateConstant, createError)
	}

	wrapper := &transportWrapper{scriptPath: scriptFile.Name()}

	scriptContents := fmt.Sprintf(wrapperScriptTemplateConstant, keyfilePath)
	if _, writeError := scriptFile.WriteString(scriptContents); writeError != nil {
		scriptFile.Close()
		wrapper.Remove()
		return nil, fmt.Errorf(wrapperWriteErrorTemplateConstant, writeError)
	}
	if closeError := scriptFile.Close(); closeError != nil {
		wrapper.Remove()
		return nil, fmt.Errorf(wrapperWriteErrorTemplateConstant, closeError)
	}
	if chmodError := os.Chmod(wrapper.scriptPath, wrapperFileModeConstant); chmodError != nil {
		wrapper.Remove()
		return nil, fmt.Errorf(wrapperCreateErrorTemplateConstant, chmodError)
	}

	return wrapper, nil
}

// Path returns the location of the wrapper script.
func (wrapper *transportWrapper) Path() string {
	return wrapper.scriptPath
}

// Remove deletes the wrapper script. Removal is idempotent.
func (wrapper *transportWrapper) Remove() {
	if wrapper == nil || len(wrapper.scriptPath) == 0 {
		return
	}
	_ = os.Remove(wrapper.scriptPath)
	wrapper.scriptPath = ""
}
