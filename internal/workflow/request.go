package workflow

// JobRequest asks the orchestrator to run a workflow against one file. A
// library monitor emits one per matched file per scan tick; the orchestrator
// deduplicates structurally equal requests.
type JobRequest struct {
	Library  string
	FilePath string
	Workflow Workflow
}

// Equal reports structural equality for deduplication: same library, same
// file, same workflow identity. Workflows are compared by name because they
// are loaded once at startup and shared read-only.
func (r JobRequest) Equal(other JobRequest) bool {
	return r.Library == other.Library &&
		r.FilePath == other.FilePath &&
		r.Workflow.Name == other.Workflow.Name
}
