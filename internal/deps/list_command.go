package deps

import (
	"errors"
	"io"

	"github.com/rodaine/table"
	"github.com/spf13/cobra"
)

const (
	listCommandUseConstant              = "list"
	listCommandShortDescriptionConstant = "Show configured dependencies"
	listCommandLongDescriptionConstant  = "list prints every configured dependency with its remote, version, resolved URL, and local path."
	listUnexpectedArgumentsConstant     = "list does not accept positional arguments"
	listPathHeaderConstant              = "PATH"
	listRemoteHeaderConstant            = "REMOTE"
	listVersionHeaderConstant           = "VERSION"
	listURLHeaderConstant               = "URL"
)

var errListUnexpectedArguments = errors.New(listUnexpectedArgumentsConstant)

// ListCommandBuilder assembles the Cobra command that prints the dependency
// table.
type ListCommandBuilder struct {
	WorkingDirectory string
	Output           io.Writer
}

// Build constructs the list command.
func (builder *ListCommandBuilder) Build() (*cobra.Command, error) {
	command := &cobra.Command{
		Use:   listCommandUseConstant,
		Short: listCommandShortDescriptionConstant,
		Long:  listCommandLongDescriptionConstant,
		RunE:  builder.run,
	}

	return command, nil
}

func (builder *ListCommandBuilder) run(command *cobra.Command, arguments []string) error {
	if len(arguments) > 0 {
		return errListUnexpectedArguments
	}

	hostDirectory, directoryError := resolveHostDirectory(builder.WorkingDirectory, command.Context())
	if directoryError != nil {
		return directoryError
	}

	loadedManifest, resolvedRepositories, loadError := loadResolvedRepositories(hostDirectory)
	if loadError != nil {
		return loadError
	}

	tableOutput := builder.Output
	if tableOutput == nil {
		tableOutput = command.OutOrStdout()
	}

	dependencyTable := table.New(listPathHeaderConstant, listRemoteHeaderConstant, listVersionHeaderConstant, listURLHeaderConstant)
	dependencyTable.WithWriter(tableOutput)
	for dependencyIndex, declaredDependency := range loadedManifest.Dependencies {
		dependencyTable.AddRow(
			declaredDependency.Path,
			declaredDependency.Remote,
			declaredDependency.Version,
			resolvedRepositories[dependencyIndex].URL,
		)
	}
	dependencyTable.Print()

	return nil
}
