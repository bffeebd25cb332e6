package runner

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
)

// stagingFileName builds the scratchpad name for a staged copy of the
// source. The uuid keeps concurrent and repeated runs of the same file from
// colliding in a shared scratchpad.
func stagingFileName(sourcePath string) string {
	base := filepath.Base(sourcePath)
	ext := filepath.Ext(base)
	stem := strings.TrimSuffix(base, ext)
	return fmt.Sprintf("%s-%s%s", stem, uuid.New().String(), ext)
}

// outputFileName derives the task output name from the staged input name by
// inserting ".out" before the extension. Each task writing to the output
// path replaces the staged input for the next task.
func outputFileName(stagedName string) string {
	ext := filepath.Ext(stagedName)
	stem := strings.TrimSuffix(stagedName, ext)
	return stem + ".out" + ext
}
