package deps

import (
	"context"
	"errors"
	"fmt"

	gogit "github.com/go-git/go-git/v5"
	"go.uber.org/zap"

	"github.com/gitdeps/gitdeps/internal/gitrepo"
)

const (
	serviceLoggerMissingMessageConstant     = "logger not configured"
	serviceOperationsMissingMessageConstant = "repository operations not configured"
	syncFailureTemplateConstant             = "synchronization of %s failed: %w"
	remoteSeparatorConstant                 = "/"
	cloneLogMessageConstant                 = "cloning dependency"
	updateLogMessageConstant                = "updating dependency"
	remoteRegisteredLogMessageConstant      = "registered dependency remote"
	remoteReusedLogMessageConstant          = "reusing existing remote"
	trackingMergeLogMessageConstant         = "merging into tracking branch"
	namedMergeLogMessageConstant            = "merging into same-named branch"
	trackingCreateLogMessageConstant        = "creating tracking branch"
	detachedCheckoutLogMessageConstant      = "checking out non-branch version"
	dependencyFailedLogMessageConstant      = "dependency synchronization failed"
	directoryFieldNameConstant              = "directory"
	versionFieldNameConstant                = "version"
	remoteFieldNameConstant                 = "remote"
	branchFieldNameConstant                 = "branch"
)

// Sentinel errors raised when the service is constructed without its
// collaborators.
var (
	ErrLoggerNotConfigured               = errors.New(serviceLoggerMissingMessageConstant)
	ErrRepositoryOperationsNotConfigured = errors.New(serviceOperationsMissingMessageConstant)
)

// FailurePolicy decides whether a batch continues past a failed dependency.
type FailurePolicy string

// Supported failure policies.
const (
	FailurePolicyAbort    FailurePolicy = FailurePolicy("abort")
	FailurePolicyContinue FailurePolicy = FailurePolicy("continue")
)

// RepositoryOperations is the git surface the engine drives. It is satisfied
// by gitrepo.RepositoryManager.
type RepositoryOperations interface {
	Clone(executionContext context.Context, remoteURL string, version string, targetDirectory string, transport gitrepo.TransportOptions) error
	ListRemotes(executionContext context.Context, repositoryDirectory string) (map[string]string, error)
	AddRemote(executionContext context.Context, repositoryDirectory string, remoteName string, remoteURL string) error
	Fetch(executionContext context.Context, repositoryDirectory string, remoteName string, transport gitrepo.TransportOptions) error
	ListBranches(executionContext context.Context, repositoryDirectory string) ([]gitrepo.Branch, error)
	Checkout(executionContext context.Context, repositoryDirectory string, reference string) error
	CreateTrackingBranch(executionContext context.Context, repositoryDirectory string, branchName string, remoteBranch string) error
	Merge(executionContext context.Context, repositoryDirectory string, reference string) error
}

// RepositoryExistenceChecker reports whether a directory already holds a git
// repository.
type RepositoryExistenceChecker func(directory string) bool

// Service synchronizes resolved dependency repositories one at a time, in
// declaration order.
type Service struct {
	logger           *zap.Logger
	operations       RepositoryOperations
	existenceChecker RepositoryExistenceChecker
}

// NewService validates collaborators and constructs a Service. A nil
// existence checker falls back to opening the directory as a repository.
func NewService(logger *zap.Logger, operations RepositoryOperations, existenceChecker RepositoryExistenceChecker) (*Service, error) {
	if logger == nil {
		return nil, ErrLoggerNotConfigured
	}
	if operations == nil {
		return nil, ErrRepositoryOperationsNotConfigured
	}
	if existenceChecker == nil {
		existenceChecker = defaultExistenceChecker
	}

	return &Service{logger: logger, operations: operations, existenceChecker: existenceChecker}, nil
}

func defaultExistenceChecker(directory string) bool {
	_, openError := gogit.PlainOpen(directory)
	return openError == nil
}

// SyncOptions configures one batch synchronization run.
type SyncOptions struct {
	Policy     FailurePolicy
	EchoOutput bool
	// Synchronized is notified after each successful sync; a returned error
	// counts as that dependency's failure.
	Synchronized func(repository Repository) error
}

// SyncAll synchronizes every repository in order. Under the abort policy the
// first failure stops the batch; under the continue policy failures are
// collected and reported together after all repositories were attempted.
func (service *Service) SyncAll(executionContext context.Context, repositories []Repository, options SyncOptions) error {
	var collectedFailures []error
	for _, dependencyRepository := range repositories {
		syncError := service.Sync(executionContext, dependencyRepository, options.EchoOutput)
		if syncError == nil && options.Synchronized != nil {
			syncError = options.Synchronized(dependencyRepository)
		}
		if syncError == nil {
			continue
		}

		wrappedFailure := fmt.Errorf(syncFailureTemplateConstant, dependencyRepository.Directory, syncError)
		if options.Policy != FailurePolicyContinue {
			return wrappedFailure
		}
		service.logger.Error(dependencyFailedLogMessageConstant,
			zap.String(directoryFieldNameConstant, dependencyRepository.Directory),
			zap.Error(syncError),
		)
		collectedFailures = append(collectedFailures, wrappedFailure)
	}
	return errors.Join(collectedFailures...)
}

// Sync brings one repository to its configured version, cloning when the
// directory holds no repository yet and updating otherwise.
func (service *Service) Sync(executionContext context.Context, repository Repository, echoOutput bool) error {
	transport := gitrepo.TransportOptions{KeyfilePath: repository.Keyfile, EchoOutput: echoOutput}

	if !service.existenceChecker(repository.Directory) {
		service.logger.Info(cloneLogMessageConstant,
			zap.String(directoryFieldNameConstant, repository.Directory),
			zap.String(versionFieldNameConstant, repository.Version),
		)
		return service.operations.Clone(executionContext, repository.URL, repository.Version, repository.Directory, transport)
	}

	service.logger.Info(updateLogMessageConstant,
		zap.String(directoryFieldNameConstant, repository.Directory),
		zap.String(versionFieldNameConstant, repository.Version),
	)
	return service.update(executionContext, repository, transport)
}

func (service *Service) update(executionContext context.Context, repository Repository, transport gitrepo.TransportOptions) error {
	remoteName, remoteError := service.resolveRemote(executionContext, repository)
	if remoteError != nil {
		return remoteError
	}

	if fetchError := service.operations.Fetch(executionContext, repository.Directory, remoteName, transport); fetchError != nil {
		return fetchError
	}

	// Branch topology is snapshotted strictly after the fetch; earlier
	// listings are stale.
	branchSnapshot, listError := service.operations.ListBranches(executionContext, repository.Directory)
	if listError != nil {
		return listError
	}

	return service.applyVersion(executionContext, repository, remoteName, branchSnapshot)
}

// resolveRemote reuses a configured remote already mapping to the dependency
// URL and registers a deterministically named one otherwise. The count of
// configured remotes never grows on re-runs.
func (service *Service) resolveRemote(executionContext context.Context, repository Repository) (string, error) {
	configuredRemotes, listError := service.operations.ListRemotes(executionContext, repository.Directory)
	if listError != nil {
		return "", listError
	}

	for existingName, existingURL := range configuredRemotes {
		if existingURL == repository.URL {
			service.logger.Debug(remoteReusedLogMessageConstant,
				zap.String(remoteFieldNameConstant, existingName),
				zap.String(directoryFieldNameConstant, repository.Directory),
			)
			return existingName, nil
		}
	}

	generatedName := RemoteNameForURL(repository.URL)
	if addError := service.operations.AddRemote(executionContext, repository.Directory, generatedName, repository.URL); addError != nil {
		return "", addError
	}
	service.logger.Debug(remoteRegisteredLogMessageConstant,
		zap.String(remoteFieldNameConstant, generatedName),
		zap.String(directoryFieldNameConstant, repository.Directory),
	)
	return generatedName, nil
}

// applyVersion evaluates the update decision table in order; the first
// matching case wins.
func (service *Service) applyVersion(executionContext context.Context, repository Repository, remoteName string, branchSnapshot []gitrepo.Branch) error {
	remoteBranch := remoteName + remoteSeparatorConstant + repository.Version
	remoteBranchExists := false
	var trackingBranch *gitrepo.Branch
	var sameNamedBranch *gitrepo.Branch

	for branchIndex, snapshotBranch := range branchSnapshot {
		if snapshotBranch.IsRemote {
			if snapshotBranch.Name == remoteBranch {
				remoteBranchExists = true
			}
			continue
		}
		if snapshotBranch.Tracks == remoteBranch && trackingBranch == nil {
			trackingBranch = &branchSnapshot[branchIndex]
		}
		if snapshotBranch.Name == repository.Version && sameNamedBranch == nil {
			sameNamedBranch = &branchSnapshot[branchIndex]
		}
	}

	switch {
	case remoteBranchExists && trackingBranch != nil:
		// A recorded upstream alone is not enough: a pruned remote leaves
		// the branch marked gone, and the version is then treated as a
		// tag or commit.
		service.logger.Debug(trackingMergeLogMessageConstant,
			zap.String(branchFieldNameConstant, trackingBranch.Name),
			zap.String(remoteFieldNameConstant, remoteBranch),
		)
		if checkoutError := service.checkoutUnlessCurrent(executionContext, repository.Directory, *trackingBranch); checkoutError != nil {
			return checkoutError
		}
		return service.operations.Merge(executionContext, repository.Directory, remoteBranch)

	case remoteBranchExists && sameNamedBranch != nil:
		// The local branch may track something else entirely; the merge
		// proceeds anyway and no tracking is established.
		service.logger.Debug(namedMergeLogMessageConstant,
			zap.String(branchFieldNameConstant, sameNamedBranch.Name),
			zap.String(remoteFieldNameConstant, remoteBranch),
		)
		if checkoutError := service.checkoutUnlessCurrent(executionContext, repository.Directory, *sameNamedBranch); checkoutError != nil {
			return checkoutError
		}
		return service.operations.Merge(executionContext, repository.Directory, remoteBranch)

	case remoteBranchExists:
		service.logger.Debug(trackingCreateLogMessageConstant,
			zap.String(branchFieldNameConstant, repository.Version),
			zap.String(remoteFieldNameConstant, remoteBranch),
		)
		return service.operations.CreateTrackingBranch(executionContext, repository.Directory, repository.Version, remoteBranch)

	default:
		// Tags and commit hashes have no remote-tracking ref; a direct
		// checkout may leave the tree detached and no merge is attempted.
		service.logger.Debug(detachedCheckoutLogMessageConstant,
			zap.String(versionFieldNameConstant, repository.Version),
			zap.String(directoryFieldNameConstant, repository.Directory),
		)
		return service.operations.Checkout(executionContext, repository.Directory, repository.Version)
	}
}

func (service *Service) checkoutUnlessCurrent(executionContext context.Context, repositoryDirectory string, targetBranch gitrepo.Branch) error {
	if targetBranch.IsCurrent {
		return nil
	}
	return service.operations.Checkout(executionContext, repositoryDirectory, targetBranch.Name)
}
