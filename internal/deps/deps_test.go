package deps_test

import (
	"testing"

	"omzet/internal/deps"
)

func TestCheckBinariesReportsMissing(t *testing.T) {
	statuses := deps.CheckBinaries([]deps.Requirement{
		{Name: "Nope", Command: "omzet-definitely-not-a-binary"},
	})
	if len(statuses) != 1 {
		t.Fatalf("expected 1 status, got %d", len(statuses))
	}
	if statuses[0].Available {
		t.Fatal("expected binary to be unavailable")
	}
	if statuses[0].Detail == "" {
		t.Fatal("expected a detail message")
	}
}

func TestCheckBinariesFindsShell(t *testing.T) {
	statuses := deps.CheckBinaries([]deps.Requirement{
		{Name: "Shell", Command: "sh"},
	})
	if !statuses[0].Available {
		t.Fatalf("sh should be available: %+v", statuses[0])
	}
}

func TestCheckBinariesEmptyCommand(t *testing.T) {
	statuses := deps.CheckBinaries([]deps.Requirement{{Name: "Blank"}})
	if statuses[0].Available {
		t.Fatal("blank command should be unavailable")
	}
	if statuses[0].Detail != "command not configured" {
		t.Fatalf("unexpected detail: %q", statuses[0].Detail)
	}
}

func TestDefaultsMarksShellMandatory(t *testing.T) {
	reqs := deps.Defaults("sh", "ffmpeg", "ffprobe")
	if len(reqs) != 3 {
		t.Fatalf("expected 3 requirements, got %d", len(reqs))
	}
	if reqs[0].Optional {
		t.Fatal("shell must be mandatory")
	}
	if !reqs[1].Optional || !reqs[2].Optional {
		t.Fatal("ffmpeg/ffprobe should be optional")
	}
}
