package gitrepo

import (
	"context"
	"errors"

	"github.com/gitdeps/gitdeps/internal/execshell"
)

const (
	gitExecutorMissingMessageConstant = "git executor not configured"
	gitCloneSubcommandConstant        = "clone"
	gitCloneBranchFlagConstant        = "--branch"
	gitRemoteSubcommandConstant       = "remote"
	gitRemoteVerboseFlagConstant      = "-v"
	gitRemoteAddSubcommandConstant    = "add"
	gitBranchSubcommandConstant       = "branch"
	gitBranchAllFlagConstant          = "--all"
	gitBranchVerboseFlagConstant      = "-vv"
	gitFetchSubcommandConstant        = "fetch"
	gitFetchTagsFlagConstant          = "--tags"
	gitCheckoutSubcommandConstant     = "checkout"
	gitCheckoutNewBranchFlagConstant  = "-b"
	gitCheckoutTrackFlagConstant      = "--track"
	gitMergeSubcommandConstant        = "merge"
)

// ErrGitExecutorNotConfigured indicates the repository manager was built
// without an executor.
var ErrGitExecutorNotConfigured = errors.New(gitExecutorMissingMessageConstant)

// GitExecutor exposes the subset of shell execution used by the manager.
type GitExecutor interface {
	ExecuteGit(executionContext context.Context, details execshell.CommandDetails) (execshell.ExecutionResult, error)
}

// TransportOptions carries the per-invocation settings forwarded to the
// interactive driver for network-bound git calls.
type TransportOptions struct {
	KeyfilePath string
	EchoOutput  bool
}

// RepositoryManager issues git commands against one working tree and parses
// their textual output into typed records.
type RepositoryManager struct {
	executor GitExecutor
}

// NewRepositoryManager constructs a manager around the provided executor.
func NewRepositoryManager(executor GitExecutor) (*RepositoryManager, error) {
	if executor == nil {
		return nil, ErrGitExecutorNotConfigured
	}
	return &RepositoryManager{executor: executor}, nil
}

// Clone clones the repository at remoteURL into targetDirectory, checking out
// the named version when one is supplied.
func (manager *RepositoryManager) Clone(executionContext context.Context, remoteURL string, version string, targetDirectory string, transport TransportOptions) error {
	cloneArguments := []string{gitCloneSubcommandConstant}
	if len(version) > 0 {
		cloneArguments = append(cloneArguments, gitCloneBranchFlagConstant, version)
	}
	cloneArguments = append(cloneArguments, remoteURL, targetDirectory)

	_, executionError := manager.executor.ExecuteGit(executionContext, execshell.CommandDetails{
		Arguments:   cloneArguments,
		KeyfilePath: transport.KeyfilePath,
		EchoOutput:  transport.EchoOutput,
	})
	return executionError
}

// ListRemotes returns the configured remotes as a name to fetch-URL mapping.
func (manager *RepositoryManager) ListRemotes(executionContext context.Context, repositoryDirectory string) (map[string]string, error) {
	executionResult, executionError := manager.executor.ExecuteGit(executionContext, execshell.CommandDetails{
		Arguments:        []string{gitRemoteSubcommandConstant, gitRemoteVerboseFlagConstant},
		WorkingDirectory: repositoryDirectory,
	})
	if executionError != nil {
		return nil, executionError
	}
	return ParseRemoteListing(executionResult.StandardOutput), nil
}

// AddRemote registers a new remote under the supplied name.
func (manager *RepositoryManager) AddRemote(executionContext context.Context, repositoryDirectory string, remoteName string, remoteURL string) error {
	_, executionError := manager.executor.ExecuteGit(executionContext, execshell.CommandDetails{
		Arguments:        []string{gitRemoteSubcommandConstant, gitRemoteAddSubcommandConstant, remoteName, remoteURL},
		WorkingDirectory: repositoryDirectory,
	})
	return executionError
}

// Fetch retrieves refs and tags from the named remote. This is the
// network-bound call, so transport options apply.
func (manager *RepositoryManager) Fetch(executionContext context.Context, repositoryDirectory string, remoteName string, transport TransportOptions) error {
	_, executionError := manager.executor.ExecuteGit(executionContext, execshell.CommandDetails{
		Arguments:        []string{gitFetchSubcommandConstant, gitFetchTagsFlagConstant, remoteName},
		WorkingDirectory: repositoryDirectory,
		KeyfilePath:      transport.KeyfilePath,
		EchoOutput:       transport.EchoOutput,
	})
	return executionError
}

// ListBranches snapshots local and remote-tracking branches.
func (manager *RepositoryManager) ListBranches(executionContext context.Context, repositoryDirectory string) ([]Branch, error) {
	executionResult, executionError := manager.executor.ExecuteGit(executionContext, execshell.CommandDetails{
		Arguments:        []string{gitBranchSubcommandConstant, gitBranchAllFlagConstant, gitBranchVerboseFlagConstant},
		WorkingDirectory: repositoryDirectory,
	})
	if executionError != nil {
		return nil, executionError
	}
	return ParseBranchListing(executionResult.StandardOutput), nil
}

// Checkout switches the working tree to the named reference.
func (manager *RepositoryManager) Checkout(executionContext context.Context, repositoryDirectory string, reference string) error {
	_, executionError := manager.executor.ExecuteGit(executionContext, execshell.CommandDetails{
		Arguments:        []string{gitCheckoutSubcommandConstant, reference},
		WorkingDirectory: repositoryDirectory,
	})
	return executionError
}

// CreateTrackingBranch creates branchName tracking remoteBranch and checks it
// out in a single compound step.
func (manager *RepositoryManager) CreateTrackingBranch(executionContext context.Context, repositoryDirectory string, branchName string, remoteBranch string) error {
	_, executionError := manager.executor.ExecuteGit(executionContext, execshell.CommandDetails{
		Arguments:        []string{gitCheckoutSubcommandConstant, gitCheckoutNewBranchFlagConstant, branchName, gitCheckoutTrackFlagConstant, remoteBranch},
		WorkingDirectory: repositoryDirectory,
	})
	return executionError
}

// Merge merges the named reference into the current branch. Conflicts and
// non-fast-forward failures surface as command failures.
func (manager *RepositoryManager) Merge(executionContext context.Context, repositoryDirectory string, reference string) error {
	_, executionError := manager.executor.ExecuteGit(executionContext, execshell.CommandDetails{
		Arguments:        []string{gitMergeSubcommandConstant, reference},
		WorkingDirectory: repositoryDirectory,
	})
	return executionError
}
