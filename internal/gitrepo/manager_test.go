package gitrepo_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/gitdeps/gitdeps/internal/execshell"
	"github.com/gitdeps/gitdeps/internal/gitrepo"
)

type recordingGitExecutor struct {
	recordedDetails []execshell.CommandDetails
	standardOutput  string
	executionError  error
}

func (executor *recordingGitExecutor) ExecuteGit(_ context.Context, details execshell.CommandDetails) (execshell.ExecutionResult, error) {
	executor.recordedDetails = append(executor.recordedDetails, details)
	if executor.executionError != nil {
		return execshell.ExecutionResult{}, executor.executionError
	}
	return execshell.ExecutionResult{StandardOutput: executor.standardOutput}, nil
}

func TestNewRepositoryManagerValidation(testInstance *testing.T) {
	_, constructionError := gitrepo.NewRepositoryManager(nil)
	require.ErrorIs(testInstance, constructionError, gitrepo.ErrGitExecutorNotConfigured)

	repositoryManager, constructionError := gitrepo.NewRepositoryManager(&recordingGitExecutor{})
	require.NoError(testInstance, constructionError)
	require.NotNil(testInstance, repositoryManager)
}

func TestRepositoryManagerCommandComposition(testInstance *testing.T) {
	testCases := []struct {
		name              string
		invoke            func(manager *gitrepo.RepositoryManager, executionContext context.Context) error
		expectedArguments []string
		expectedDirectory string
		expectedKeyfile   string
		expectedEcho      bool
	}{
		{
			name: "clone_with_version",
			invoke: func(manager *gitrepo.RepositoryManager, executionContext context.Context) error {
				return manager.Clone(executionContext, "https://github.com/example/library.git", "v2.1.0", "/tmp/library", gitrepo.TransportOptions{KeyfilePath: "/keys/deploy", EchoOutput: true})
			},
			expectedArguments: []string{"clone", "--branch", "v2.1.0", "https://github.com/example/library.git", "/tmp/library"},
			expectedKeyfile:   "/keys/deploy",
			expectedEcho:      true,
		},
		{
			name: "clone_without_version",
			invoke: func(manager *gitrepo.RepositoryManager, executionContext context.Context) error {
				return manager.Clone(executionContext, "https://github.com/example/library.git", "", "/tmp/library", gitrepo.TransportOptions{})
			},
			expectedArguments: []string{"clone", "https://github.com/example/library.git", "/tmp/library"},
		},
		{
			name: "add_remote",
			invoke: func(manager *gitrepo.RepositoryManager, executionContext context.Context) error {
				return manager.AddRemote(executionContext, "/tmp/library", "dependency-mgmnt_ab12cd34ef", "git@github.com:example/library.git")
			},
			expectedArguments: []string{"remote", "add", "dependency-mgmnt_ab12cd34ef", "git@github.com:example/library.git"},
			expectedDirectory: "/tmp/library",
		},
		{
			name: "fetch_with_tags",
			invoke: func(manager *gitrepo.RepositoryManager, executionContext context.Context) error {
				return manager.Fetch(executionContext, "/tmp/library", "origin", gitrepo.TransportOptions{KeyfilePath: "/keys/deploy"})
			},
			expectedArguments: []string{"fetch", "--tags", "origin"},
			expectedDirectory: "/tmp/library",
			expectedKeyfile:   "/keys/deploy",
		},
		{
			name: "checkout_reference",
			invoke: func(manager *gitrepo.RepositoryManager, executionContext context.Context) error {
				return manager.Checkout(executionContext, "/tmp/library", "v2.1.0")
			},
			expectedArguments: []string{"checkout", "v2.1.0"},
			expectedDirectory: "/tmp/library",
		},
		{
			name: "create_tracking_branch",
			invoke: func(manager *gitrepo.RepositoryManager, executionContext context.Context) error {
				return manager.CreateTrackingBranch(executionContext, "/tmp/library", "release", "origin/release")
			},
			expectedArguments: []string{"checkout", "-b", "release", "--track", "origin/release"},
			expectedDirectory: "/tmp/library",
		},
		{
			name: "merge_reference",
			invoke: func(manager *gitrepo.RepositoryManager, executionContext context.Context) error {
				return manager.Merge(executionContext, "/tmp/library", "origin/master")
			},
			expectedArguments: []string{"merge", "origin/master"},
			expectedDirectory: "/tmp/library",
		},
	}

	for _, testCase := range testCases {
		testInstance.Run(testCase.name, func(subtestInstance *testing.T) {
			recordingExecutor := &recordingGitExecutor{}
			repositoryManager, constructionError := gitrepo.NewRepositoryManager(recordingExecutor)
			require.NoError(subtestInstance, constructionError)

			invocationError := testCase.invoke(repositoryManager, context.Background())
			require.NoError(subtestInstance, invocationError)
			require.Len(subtestInstance, recordingExecutor.recordedDetails, 1)

			recordedDetails := recordingExecutor.recordedDetails[0]
			require.Equal(subtestInstance, testCase.expectedArguments, recordedDetails.Arguments)
			require.Equal(subtestInstance, testCase.expectedDirectory, recordedDetails.WorkingDirectory)
			require.Equal(subtestInstance, testCase.expectedKeyfile, recordedDetails.KeyfilePath)
			require.Equal(subtestInstance, testCase.expectedEcho, recordedDetails.EchoOutput)
		})
	}
}

func TestRepositoryManagerParsesListings(testInstance *testing.T) {
	remoteExecutor := &recordingGitExecutor{standardOutput: remoteListingFixtureConstant}
	repositoryManager, constructionError := gitrepo.NewRepositoryManager(remoteExecutor)
	require.NoError(testInstance, constructionError)

	listedRemotes, listError := repositoryManager.ListRemotes(context.Background(), "/tmp/library")
	require.NoError(testInstance, listError)
	require.Equal(testInstance, "https://github.com/example/service.git", listedRemotes["origin"])

	branchExecutor := &recordingGitExecutor{standardOutput: branchListingFixtureConstant}
	repositoryManager, constructionError = gitrepo.NewRepositoryManager(branchExecutor)
	require.NoError(testInstance, constructionError)

	listedBranches, branchError := repositoryManager.ListBranches(context.Background(), "/tmp/library")
	require.NoError(testInstance, branchError)
	require.NotEmpty(testInstance, listedBranches)
	require.Equal(testInstance, []string{"branch", "--all", "-vv"}, branchExecutor.recordedDetails[0].Arguments)
}
