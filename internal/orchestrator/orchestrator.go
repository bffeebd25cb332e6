package orchestrator

import (
	"context"
	"log/slog"
	"time"

	"omzet/internal/fileutil"
	"omzet/internal/logging"
	"omzet/internal/runner"
	"omzet/internal/state"
	"omzet/internal/workflow"
)

const defaultRequestBuffer = 256

// WorkflowRunner executes a workflow against one source file.
type WorkflowRunner interface {
	RunWorkflow(ctx context.Context, wf workflow.Workflow, sourcePath string) (*runner.WorkflowReport, error)
}

// HistoryStore records committed runs. Satisfied by *state.Store.
type HistoryStore interface {
	RecordRun(ctx context.Context, record state.RunRecord) (int64, error)
}

// Options tunes orchestrator behavior.
type Options struct {
	// Tick is how often the queue is polled for work. Zero means 5s.
	Tick time.Duration
	// RequestBuffer sizes the inbound request channel. Zero means 256.
	RequestBuffer int
	// DedupInFlight extends deduplication to the currently running job,
	// not just the pending queue.
	DedupInFlight bool
}

// Orchestrator owns the pending queue and the single worker slot. All
// fields are confined to the Start goroutine; only the requests channel is
// touched from outside.
type Orchestrator struct {
	runner  WorkflowRunner
	store   HistoryStore
	logger  *slog.Logger
	tick    time.Duration
	dedup   bool
	reqs    <-chan workflow.JobRequest
	queue   []workflow.JobRequest
	running *runningJob
}

// New builds an orchestrator and returns the channel monitors submit
// requests on. Closing the channel stops intake; queued work still drains.
func New(r WorkflowRunner, store HistoryStore, logger *slog.Logger, opts Options) (*Orchestrator, chan<- workflow.JobRequest) {
	tick := opts.Tick
	if tick <= 0 {
		tick = 5 * time.Second
	}
	buffer := opts.RequestBuffer
	if buffer <= 0 {
		buffer = defaultRequestBuffer
	}
	requests := make(chan workflow.JobRequest, buffer)
	o := &Orchestrator{
		runner: r,
		store:  store,
		logger: logging.NewComponentLogger(logger, "orchestrator"),
		tick:   tick,
		dedup:  opts.DedupInFlight,
		reqs:   requests,
	}
	return o, requests
}

// Start runs the dispatch loop until ctx is canceled. An in-flight job is
// joined before returning so a shutdown never abandons a half-finished run;
// the run itself observes ctx and winds down its subprocesses.
func (o *Orchestrator) Start(ctx context.Context) {
	o.logger.Info("orchestrator started",
		logging.Duration("tick", o.tick),
		logging.Bool("dedup_in_flight", o.dedup))

	ticker := time.NewTicker(o.tick)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			if o.running != nil {
				o.logger.Info("waiting for in-flight job before shutdown",
					logging.String(logging.FieldSourceFile, o.running.req.FilePath))
				o.running.wait()
				// The loop context is gone; don't let it cancel
				// the history write.
				o.finishJob(context.Background())
			}
			o.logger.Info("orchestrator stopped", logging.Int("pending_jobs", len(o.queue)))
			return
		case <-ticker.C:
			o.drainRequests()
			o.stepRunner(ctx)
		}
	}
}

// drainRequests moves every buffered request into the pending queue,
// dropping duplicates of already-queued work.
func (o *Orchestrator) drainRequests() {
	for {
		select {
		case req, ok := <-o.reqs:
			if !ok {
				// Intake closed; keep draining the queue but stop
				// selecting on the channel.
				o.reqs = nil
				return
			}
			if o.isDuplicate(req) {
				o.logger.Debug("dropping duplicate request",
					logging.String(logging.FieldSourceFile, req.FilePath),
					logging.String(logging.FieldWorkflow, req.Workflow.Name))
				continue
			}
			o.queue = append(o.queue, req)
			o.logger.Info("job queued",
				logging.String(logging.FieldLibrary, req.Library),
				logging.String(logging.FieldSourceFile, req.FilePath),
				logging.String(logging.FieldWorkflow, req.Workflow.Name),
				logging.Int("queue_depth", len(o.queue)))
		default:
			return
		}
	}
}

func (o *Orchestrator) isDuplicate(req workflow.JobRequest) bool {
	for _, queued := range o.queue {
		if queued.Equal(req) {
			return true
		}
	}
	if o.dedup && o.running != nil && o.running.req.Equal(req) {
		return true
	}
	return false
}

// stepRunner reaps a finished worker and starts the next job when the
// worker slot is free.
func (o *Orchestrator) stepRunner(ctx context.Context) {
	if o.running != nil {
		if !o.running.finished() {
			return
		}
		o.finishJob(ctx)
	}
	if len(o.queue) == 0 {
		return
	}
	next := o.queue[0]
	o.queue = o.queue[1:]
	o.startJob(ctx, next)
}

// startJob launches the worker goroutine for req. Only called with a free
// worker slot.
func (o *Orchestrator) startJob(ctx context.Context, req workflow.JobRequest) {
	job := &runningJob{req: req, done: make(chan struct{})}
	o.running = job
	o.logger.Info("job started",
		logging.String(logging.FieldLibrary, req.Library),
		logging.String(logging.FieldSourceFile, req.FilePath),
		logging.String(logging.FieldWorkflow, req.Workflow.Name))

	go func() {
		defer close(job.done)
		job.report, job.err = o.runner.RunWorkflow(ctx, req.Workflow, req.FilePath)
	}()
}

// finishJob reaps the completed worker, logs the outcome, and records
// successful runs in the history store.
func (o *Orchestrator) finishJob(ctx context.Context) {
	job := o.running
	o.running = nil

	if job.err != nil {
		o.logger.Error("job failed",
			logging.String(logging.FieldSourceFile, job.req.FilePath),
			logging.String(logging.FieldWorkflow, job.req.Workflow.Name),
			logging.Error(job.err))
		return
	}

	o.logger.Info("job completed",
		logging.String(logging.FieldSourceFile, job.req.FilePath),
		logging.String(logging.FieldWorkflow, job.req.Workflow.Name),
		logging.Duration("duration", job.report.Duration()))
	o.recordRun(ctx, job)
}

// recordRun persists the run outcome. History failures are logged, never
// fatal; the file itself committed fine.
func (o *Orchestrator) recordRun(ctx context.Context, job *runningJob) {
	if o.store == nil {
		return
	}
	fingerprint, err := fileutil.HashFile(job.req.FilePath)
	if err != nil {
		o.logger.Warn("failed to fingerprint committed file",
			logging.String(logging.FieldSourceFile, job.req.FilePath),
			logging.Error(err))
	}
	record := state.RunRecord{
		Library:      job.req.Library,
		SourcePath:   job.req.FilePath,
		Workflow:     job.req.Workflow.Name,
		Fingerprint:  fingerprint,
		TasksRun:     len(job.report.Tasks),
		TasksSkipped: len(job.report.SkippedTasks),
		CompletedAt:  job.report.FinishedAt,
	}
	if _, err := o.store.RecordRun(ctx, record); err != nil {
		o.logger.Warn("failed to record run history",
			logging.String(logging.FieldSourceFile, job.req.FilePath),
			logging.Error(err))
	}
}
