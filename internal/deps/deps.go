package deps

import (
	"fmt"
	"os/exec"
	"strings"
)

// Requirement defines an external binary omzet relies on.
type Requirement struct {
	Name        string
	Command     string
	Description string
	Optional    bool
}

// Status reports the availability of a dependency.
type Status struct {
	Name        string
	Command     string
	Description string
	Optional    bool
	Available   bool
	Detail      string
}

// Defaults returns the requirement set for the configured binaries. The
// shell is mandatory (custom probes and commands run through it); ffmpeg and
// ffprobe are only exercised by workflows containing builtin tasks, so they
// are optional at the daemon level.
func Defaults(shell, ffmpeg, ffprobe string) []Requirement {
	return []Requirement{
		{
			Name:        "Shell",
			Command:     shell,
			Description: "Executes custom task probes and commands",
		},
		{
			Name:        "FFmpeg",
			Command:     ffmpeg,
			Description: "Required by the builtin transcode task",
			Optional:    true,
		},
		{
			Name:        "FFprobe",
			Command:     ffprobe,
			Description: "Required for builtin codec probing",
			Optional:    true,
		},
	}
}

// CheckBinaries evaluates the provided requirements and reports availability.
func CheckBinaries(requirements []Requirement) []Status {
	results := make([]Status, 0, len(requirements))
	for _, req := range requirements {
		cmd := strings.TrimSpace(req.Command)
		status := Status{
			Name:        req.Name,
			Command:     cmd,
			Description: strings.TrimSpace(req.Description),
			Optional:    req.Optional,
		}
		if cmd == "" {
			status.Available = false
			status.Detail = "command not configured"
			results = append(results, status)
			continue
		}
		if _, err := exec.LookPath(cmd); err != nil {
			status.Available = false
			status.Detail = fmt.Sprintf("binary %q not found", cmd)
			results = append(results, status)
			continue
		}
		status.Available = true
		results = append(results, status)
	}
	return results
}
