package credentials

import (
	"fmt"

	"github.com/AlecAivazis/survey/v2"
)

const (
	usernamePromptTemplateConstant = "Username for '%s':"
	passwordPromptTemplateConstant = "Password for '%s':"
)

// TerminalPrompter collects credentials interactively from the controlling terminal.
type TerminalPrompter struct{}

// NewTerminalPrompter constructs a prompter backed by the controlling terminal.
func NewTerminalPrompter() *TerminalPrompter {
	return &TerminalPrompter{}
}

// PromptUsername asks the operator for a username, echoing input.
func (prompter *TerminalPrompter) PromptUsername(remoteIdentifier string) (string, error) {
	usernamePrompt := &survey.Input{
		Message: fmt.Sprintf(usernamePromptTemplateConstant, remoteIdentifier),
	}
	var enteredUsername string
	if askError := survey.AskOne(usernamePrompt, &enteredUsername); askError != nil {
		return "", askError
	}
	return enteredUsername, nil
}

// PromptPassword asks the operator for a password without echoing input.
func (prompter *TerminalPrompter) PromptPassword(remoteIdentifier string) (string, error) {
	passwordPrompt := &survey.Password{
		Message: fmt.Sprintf(passwordPromptTemplateConstant, remoteIdentifier),
	}
	var enteredPassword string
	if askError := survey.AskOne(passwordPrompt, &enteredPassword); askError != nil {
		return "", askError
	}
	return enteredPassword, nil
}
