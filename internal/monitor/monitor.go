package monitor

import (
	"context"
	"io/fs"
	"log/slog"
	"path/filepath"
	"sort"
	"sync"
	"time"

	"omzet/internal/logging"
	"omzet/internal/workflow"
)

// Library pairs a directory with the workflow applied to its files.
type Library struct {
	Name      string
	Directory string
	Workflow  workflow.Workflow
}

// Monitor scans libraries and submits job requests.
type Monitor struct {
	libraries []Library
	requests  chan<- workflow.JobRequest
	interval  time.Duration
	logger    *slog.Logger
	wg        sync.WaitGroup
}

// New builds a monitor for the given libraries. Requests are sent on the
// provided channel without blocking; when the orchestrator falls behind,
// requests are dropped and rediscovered on a later scan.
func New(libraries []Library, requests chan<- workflow.JobRequest, interval time.Duration, logger *slog.Logger) *Monitor {
	if interval <= 0 {
		interval = time.Minute
	}
	return &Monitor{
		libraries: libraries,
		requests:  requests,
		interval:  interval,
		logger:    logging.NewComponentLogger(logger, "monitor"),
	}
}

// Start launches one scan goroutine per library. It returns immediately;
// call Wait to block until all scanners observe ctx cancellation.
func (m *Monitor) Start(ctx context.Context) {
	for _, library := range m.libraries {
		m.wg.Add(1)
		go func(lib Library) {
			defer m.wg.Done()
			m.watch(ctx, lib)
		}(library)
	}
}

// Wait blocks until every scan goroutine has exited.
func (m *Monitor) Wait() {
	m.wg.Wait()
}

func (m *Monitor) watch(ctx context.Context, lib Library) {
	logger := m.logger.With(
		logging.String(logging.FieldLibrary, lib.Name),
		logging.String(logging.FieldWorkflow, lib.Workflow.Name),
	)
	logger.Info("watching library",
		logging.String("directory", lib.Directory),
		logging.Duration("scan_interval", m.interval))

	// Scan immediately, then on the interval.
	m.scan(ctx, lib, logger)
	ticker := time.NewTicker(m.interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			logger.Info("library watch stopped")
			return
		case <-ticker.C:
			m.scan(ctx, lib, logger)
		}
	}
}

// scan walks the library tree and submits a request for every matching
// file.
func (m *Monitor) scan(ctx context.Context, lib Library, logger *slog.Logger) {
	matches, err := Discover(lib.Directory, lib.Workflow)
	if err != nil {
		logger.Warn("library scan failed", logging.Error(err))
		return
	}
	for _, path := range matches {
		if ctx.Err() != nil {
			return
		}
		req := workflow.JobRequest{
			Library:  lib.Name,
			FilePath: path,
			Workflow: lib.Workflow,
		}
		select {
		case m.requests <- req:
		default:
			logger.Warn("request buffer full, dropping until next scan",
				logging.String(logging.FieldSourceFile, path))
			return
		}
	}
}

// Discover returns the sorted paths under dir whose extensions the workflow
// includes.
func Discover(dir string, wf workflow.Workflow) ([]string, error) {
	var matches []string
	err := filepath.WalkDir(dir, func(path string, entry fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if entry.IsDir() {
			return nil
		}
		if wf.IncludesPath(path) {
			matches = append(matches, path)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	sort.Strings(matches)
	return matches, nil
}
