package deps

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

const (
	ignoreFileNameConstant           = ".gitignore"
	ignoreFilePermissionsConstant    = 0o644
	ignoreWriteErrorTemplateConstant = "unable to update %s: %w"
	ignoreEntryPrefixConstant        = "/"
	lineSeparatorConstant            = "\n"
)

// EnsureIgnored guarantees the dependency path appears in the host
// repository's ignore file, creating the file when absent and never
// duplicating entries.
func EnsureIgnored(hostDirectory string, dependencyPath string) error {
	ignoreEntry := ignoreEntryPrefixConstant + strings.TrimPrefix(dependencyPath, ignoreEntryPrefixConstant)
	ignoreFilePath := filepath.Join(hostDirectory, ignoreFileNameConstant)

	existingContent, readError := os.ReadFile(ignoreFilePath)
	if readError != nil && !os.IsNotExist(readError) {
		return fmt.Errorf(ignoreWriteErrorTemplateConstant, ignoreFilePath, readError)
	}

	for _, existingLine := range strings.Split(string(existingContent), lineSeparatorConstant) {
		if strings.TrimSpace(existingLine) == ignoreEntry {
			return nil
		}
	}

	updatedContent := string(existingContent)
	if len(updatedContent) > 0 && !strings.HasSuffix(updatedContent, lineSeparatorConstant) {
		updatedContent += lineSeparatorConstant
	}
	updatedContent += ignoreEntry + lineSeparatorConstant

	if writeError := os.WriteFile(ignoreFilePath, []byte(updatedContent), ignoreFilePermissionsConstant); writeError != nil {
		return fmt.Errorf(ignoreWriteErrorTemplateConstant, ignoreFilePath, writeError)
	}
	return nil
}
