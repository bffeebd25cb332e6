package main

import (
	"os"
	"path/filepath"
	"testing"
)

func TestWorkflowsCommandListsConfigured(t *testing.T) {
	env := setupCLITestEnv(t)

	out, _, err := runCLI(t, []string{"workflows"}, env.configPath)
	if err != nil {
		t.Fatalf("workflows: %v", err)
	}
	requireContains(t, out, "Copythrough")
	requireContains(t, out, "mkv")
	requireContains(t, out, "copy")
}

func TestLibrariesCommandCountsMatches(t *testing.T) {
	env := setupCLITestEnv(t)
	for _, name := range []string{"a.mkv", "b.mkv", "ignored.txt"} {
		if err := os.WriteFile(filepath.Join(env.libraryDir, name), []byte("x"), 0o644); err != nil {
			t.Fatal(err)
		}
	}

	out, _, err := runCLI(t, []string{"libraries"}, env.configPath)
	if err != nil {
		t.Fatalf("libraries: %v", err)
	}
	requireContains(t, out, "Movies")
	requireContains(t, out, "2")
}

func TestRunCommandCommitsFile(t *testing.T) {
	env := setupCLITestEnv(t)
	source := filepath.Join(env.libraryDir, "clip.mkv")
	if err := os.WriteFile(source, []byte("payload\n"), 0o644); err != nil {
		t.Fatal(err)
	}

	out, _, err := runCLI(t, []string{"run", "copythrough", source}, env.configPath)
	if err != nil {
		t.Fatalf("run: %v", err)
	}
	requireContains(t, out, "Committed")

	data, err := os.ReadFile(source)
	if err != nil {
		t.Fatal(err)
	}
	if string(data) != "payload\n" {
		t.Fatalf("copy-through run must preserve content: %q", data)
	}
}

func TestRunCommandUnknownWorkflow(t *testing.T) {
	env := setupCLITestEnv(t)
	if _, _, err := runCLI(t, []string{"run", "nope", "/tmp/x.mkv"}, env.configPath); err == nil {
		t.Fatal("expected error for unknown workflow")
	}
}

func TestHistoryCommandEmpty(t *testing.T) {
	env := setupCLITestEnv(t)

	out, _, err := runCLI(t, []string{"history"}, env.configPath)
	if err != nil {
		t.Fatalf("history: %v", err)
	}
	requireContains(t, out, "No runs recorded yet")
}
