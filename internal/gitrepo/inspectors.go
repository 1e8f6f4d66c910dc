package gitrepo

import (
	"regexp"
	"strings"
)

const (
	currentBranchMarkerConstant         = "*"
	remoteFetchDirectionLabelConstant   = "(fetch)"
	remoteNamespacePrefixConstant       = "remotes/"
	detachedEntryPrefixConstant         = "("
	symbolicReferenceArrowConstant      = "->"
	upstreamDivergenceSeparatorConstant = ":"
	// The bracket group must contain a slash: upstream references are always
	// remote/branch, while a commit subject starting with "[WIP]" or similar
	// would otherwise be misread as a tracking reference.
	branchEntryPatternConstant = `^(\S+)(?:\s+([0-9a-f]{4,40}))?(?:\s+\[([^\]]*/[^\]]*)\])?`
)

var branchEntryPattern = regexp.MustCompile(branchEntryPatternConstant)

// Branch is one entry of a verbose branch listing. Branch records are
// ephemeral: they are recomputed from tool output on every inspection because
// a fetch invalidates any earlier snapshot.
type Branch struct {
	Name       string
	IsCurrent  bool
	CommitHash string
	// Tracks names the upstream reference the branch is configured to
	// follow, when the listing reports one.
	Tracks string
	// IsRemote marks references that live under a remote namespace.
	IsRemote bool
}

// ParseRemoteListing extracts the name to URL mapping from remote listing
// output. Only fetch-direction entries are authoritative.
func ParseRemoteListing(listingOutput string) map[string]string {
	remoteURLsByName := map[string]string{}
	for _, listingLine := range strings.Split(listingOutput, "\n") {
		lineFields := strings.Fields(listingLine)
		if len(lineFields) != 3 {
			continue
		}
		if lineFields[2] != remoteFetchDirectionLabelConstant {
			continue
		}
		remoteURLsByName[lineFields[0]] = lineFields[1]
	}
	return remoteURLsByName
}

// ParseBranchListing converts verbose branch listing output into Branch
// records. Detached HEAD entries and symbolic references are skipped.
func ParseBranchListing(listingOutput string) []Branch {
	branches := []Branch{}
	for _, listingLine := range strings.Split(listingOutput, "\n") {
		if len(strings.TrimSpace(listingLine)) == 0 {
			continue
		}

		isCurrent := strings.HasPrefix(listingLine, currentBranchMarkerConstant)
		entryContent := strings.TrimSpace(strings.TrimPrefix(listingLine, currentBranchMarkerConstant))

		if strings.HasPrefix(entryContent, detachedEntryPrefixConstant) {
			continue
		}

		entryMatch := branchEntryPattern.FindStringSubmatch(entryContent)
		if entryMatch == nil {
			continue
		}

		branchName := entryMatch[1]
		remainderAfterName := strings.TrimSpace(strings.TrimPrefix(entryContent, branchName))
		if strings.HasPrefix(remainderAfterName, symbolicReferenceArrowConstant) {
			continue
		}

		parsedBranch := Branch{
			Name:       branchName,
			IsCurrent:  isCurrent,
			CommitHash: entryMatch[2],
			Tracks:     normalizeTrackingReference(entryMatch[3]),
		}
		if strings.HasPrefix(parsedBranch.Name, remoteNamespacePrefixConstant) {
			parsedBranch.Name = strings.TrimPrefix(parsedBranch.Name, remoteNamespacePrefixConstant)
			parsedBranch.IsRemote = true
		}
		branches = append(branches, parsedBranch)
	}
	return branches
}

// normalizeTrackingReference strips ahead/behind annotations from a bracketed
// upstream reference, e.g. "origin/main: ahead 2" becomes "origin/main".
func normalizeTrackingReference(trackingReference string) string {
	separatorIndex := strings.Index(trackingReference, upstreamDivergenceSeparatorConstant)
	if separatorIndex == -1 {
		return trackingReference
	}
	return trackingReference[:separatorIndex]
}
