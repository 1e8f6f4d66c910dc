package prompt

import (
	"regexp"
)

const (
	usernamePromptPatternConstant = `Username for '([^']*)':`
	passwordPromptPatternConstant = `Password for '([^']*)':`
)

// Kind identifies the classification assigned to a chunk of subprocess output.
type Kind int

// Classification outcomes.
const (
	KindNoMatch Kind = iota
	KindUsernameRequest
	KindPasswordRequest
)

// Classification is the tagged result of classifying an output segment.
type Classification struct {
	Kind Kind
	// RemoteIdentifier carries the host text captured from the prompt for
	// username and password requests; empty otherwise.
	RemoteIdentifier string
	// MatchStart and MatchEnd delimit the matched prompt within the
	// classified segment so callers can separate preceding diagnostic text
	// from the prompt itself.
	MatchStart int
	MatchEnd   int
}

// Classifier turns the freshest unconsumed subprocess output segment into a
// tagged classification. Implementations must be pure text matching so that
// alternate prompt dialects can be added without touching the driver loop.
type Classifier interface {
	Classify(outputSegment string) Classification
}

// GitPromptClassifier recognizes the credential prompts emitted by the git
// credential subsystem under the C locale.
type GitPromptClassifier struct {
	usernamePattern *regexp.Regexp
	passwordPattern *regexp.Regexp
}

// NewGitPromptClassifier constructs the default classifier.
func NewGitPromptClassifier() *GitPromptClassifier {
	return &GitPromptClassifier{
		usernamePattern: regexp.MustCompile(usernamePromptPatternConstant),
		passwordPattern: regexp.MustCompile(passwordPromptPatternConstant),
	}
}

// Classify reports whether the segment contains a credential prompt.
func (classifier *GitPromptClassifier) Classify(outputSegment string) Classification {
	if matchIndexes := classifier.usernamePattern.FindStringSubmatchIndex(outputSegment); matchIndexes != nil {
		return buildClassification(KindUsernameRequest, outputSegment, matchIndexes)
	}
	if matchIndexes := classifier.passwordPattern.FindStringSubmatchIndex(outputSegment); matchIndexes != nil {
		return buildClassification(KindPasswordRequest, outputSegment, matchIndexes)
	}
	return Classification{Kind: KindNoMatch}
}

func buildClassification(kind Kind, outputSegment string, matchIndexes []int) Classification {
	return Classification{
		Kind:             kind,
		RemoteIdentifier: outputSegment[matchIndexes[2]:matchIndexes[3]],
		MatchStart:       matchIndexes[0],
		MatchEnd:         matchIndexes[1],
	}
}
