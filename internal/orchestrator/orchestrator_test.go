package orchestrator

import (
	"context"
	"sync"
	"testing"
	"time"

	"omzet/internal/logging"
	"omzet/internal/runner"
	"omzet/internal/state"
	"omzet/internal/workflow"
)

// fakeRunner blocks each run until release is closed, recording every
// source path it was asked to process.
type fakeRunner struct {
	mu      sync.Mutex
	started []string
	release chan struct{}
	err     error
}

func newFakeRunner() *fakeRunner {
	return &fakeRunner{release: make(chan struct{})}
}

func (f *fakeRunner) RunWorkflow(ctx context.Context, wf workflow.Workflow, sourcePath string) (*runner.WorkflowReport, error) {
	f.mu.Lock()
	f.started = append(f.started, sourcePath)
	f.mu.Unlock()
	<-f.release
	if f.err != nil {
		return nil, f.err
	}
	return &runner.WorkflowReport{
		Workflow:   wf.Name,
		SourcePath: sourcePath,
		StartedAt:  time.Now(),
		FinishedAt: time.Now(),
	}, nil
}

func (f *fakeRunner) startedPaths() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.started...)
}

type fakeStore struct {
	mu      sync.Mutex
	records []state.RunRecord
}

func (f *fakeStore) RecordRun(ctx context.Context, record state.RunRecord) (int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.records = append(f.records, record)
	return int64(len(f.records)), nil
}

func request(path string) workflow.JobRequest {
	return workflow.JobRequest{
		Library:  "movies",
		FilePath: path,
		Workflow: workflow.Workflow{Name: "wf"},
	}
}

func TestDrainRequestsDeduplicatesQueue(t *testing.T) {
	o, requests := New(newFakeRunner(), nil, logging.NewNop(), Options{})

	requests <- request("/a.mkv")
	requests <- request("/a.mkv")
	requests <- request("/b.mkv")
	o.drainRequests()

	if len(o.queue) != 2 {
		t.Fatalf("expected 2 queued jobs, got %d", len(o.queue))
	}
	if o.queue[0].FilePath != "/a.mkv" || o.queue[1].FilePath != "/b.mkv" {
		t.Fatalf("unexpected queue order: %+v", o.queue)
	}
}

func TestDrainRequestsToleratesClosedChannel(t *testing.T) {
	o, requests := New(newFakeRunner(), nil, logging.NewNop(), Options{})

	requests <- request("/a.mkv")
	close(requests)
	o.drainRequests()
	o.drainRequests() // must not panic or receive phantom requests

	if len(o.queue) != 1 {
		t.Fatalf("expected 1 queued job, got %d", len(o.queue))
	}
}

func TestSingleWorkerConcurrency(t *testing.T) {
	fr := newFakeRunner()
	o, requests := New(fr, nil, logging.NewNop(), Options{})

	requests <- request("/a.mkv")
	requests <- request("/b.mkv")
	o.drainRequests()

	ctx := context.Background()
	o.stepRunner(ctx)
	o.stepRunner(ctx)

	waitFor(t, func() bool { return len(fr.startedPaths()) == 1 })
	if len(o.queue) != 1 {
		t.Fatalf("second job must stay queued while first runs, queue=%d", len(o.queue))
	}

	close(fr.release)
	waitFor(t, func() bool { return o.running.finished() })

	o.stepRunner(ctx)
	waitFor(t, func() bool { return len(fr.startedPaths()) == 2 })
	if got := fr.startedPaths(); got[0] != "/a.mkv" || got[1] != "/b.mkv" {
		t.Fatalf("jobs ran out of order: %v", got)
	}
}

func TestDedupInFlight(t *testing.T) {
	fr := newFakeRunner()
	o, requests := New(fr, nil, logging.NewNop(), Options{DedupInFlight: true})

	requests <- request("/a.mkv")
	o.drainRequests()
	o.stepRunner(context.Background())
	waitFor(t, func() bool { return len(fr.startedPaths()) == 1 })

	// The same file arrives again while its job is still running.
	requests <- request("/a.mkv")
	o.drainRequests()
	if len(o.queue) != 0 {
		t.Fatalf("in-flight duplicate must be dropped, queue=%d", len(o.queue))
	}

	close(fr.release)
}

func TestDedupInFlightDisabledRequeues(t *testing.T) {
	fr := newFakeRunner()
	o, requests := New(fr, nil, logging.NewNop(), Options{DedupInFlight: false})

	requests <- request("/a.mkv")
	o.drainRequests()
	o.stepRunner(context.Background())
	waitFor(t, func() bool { return len(fr.startedPaths()) == 1 })

	requests <- request("/a.mkv")
	o.drainRequests()
	if len(o.queue) != 1 {
		t.Fatalf("with dedup_in_flight off the request must queue, queue=%d", len(o.queue))
	}

	close(fr.release)
}

func TestFinishJobRecordsHistory(t *testing.T) {
	fr := newFakeRunner()
	close(fr.release)
	store := &fakeStore{}
	o, requests := New(fr, store, logging.NewNop(), Options{})

	requests <- request("/a.mkv")
	o.drainRequests()

	ctx := context.Background()
	o.stepRunner(ctx)
	o.running.wait()
	o.stepRunner(ctx)

	store.mu.Lock()
	defer store.mu.Unlock()
	if len(store.records) != 1 {
		t.Fatalf("expected 1 history record, got %d", len(store.records))
	}
	if store.records[0].Workflow != "wf" || store.records[0].SourcePath != "/a.mkv" {
		t.Fatalf("unexpected record: %+v", store.records[0])
	}
}

func TestStartJoinsInFlightJobOnShutdown(t *testing.T) {
	fr := newFakeRunner()
	o, requests := New(fr, nil, logging.NewNop(), Options{Tick: 5 * time.Millisecond})

	requests <- request("/a.mkv")

	ctx, cancel := context.WithCancel(context.Background())
	stopped := make(chan struct{})
	go func() {
		o.Start(ctx)
		close(stopped)
	}()

	waitFor(t, func() bool { return len(fr.startedPaths()) == 1 })
	cancel()

	select {
	case <-stopped:
		t.Fatal("Start returned while a job was still running")
	case <-time.After(50 * time.Millisecond):
	}

	close(fr.release)
	select {
	case <-stopped:
	case <-time.After(2 * time.Second):
		t.Fatal("Start did not return after the job finished")
	}
}

func waitFor(t *testing.T, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if cond() {
			return
		}
		time.Sleep(5 * time.Millisecond)
	}
	t.Fatal("condition not met in time")
}
