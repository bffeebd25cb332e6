package workflow

import (
	"path/filepath"
	"strings"
)

// Workflow describes what should happen to a file once a library monitor
// picks it up: an ordered list of tasks plus the scratchpad directory the
// runner stages files into.
type Workflow struct {
	Name               string
	ScratchpadDir      string
	IncludedExtensions []string
	Tasks              []Task
}

// IncludesPath reports whether the file's extension matches the workflow's
// included extension list. Matching is case-insensitive and ignores a
// leading dot on either side.
func (w Workflow) IncludesPath(path string) bool {
	ext := strings.ToLower(strings.TrimPrefix(filepath.Ext(path), "."))
	if ext == "" {
		return false
	}
	for _, candidate := range w.IncludedExtensions {
		if strings.ToLower(strings.TrimPrefix(candidate, ".")) == ext {
			return true
		}
	}
	return false
}

// Clone returns a deep copy so per-job mutation can never leak back into
// the shared configuration value.
func (w Workflow) Clone() Workflow {
	out := w
	out.IncludedExtensions = append([]string(nil), w.IncludedExtensions...)
	out.Tasks = append([]Task(nil), w.Tasks...)
	return out
}
