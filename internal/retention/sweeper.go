// Package retention garbage-collects expired job records and their
// stored documents. Everything here is best-effort: a sweep that cannot
// run folds into a zero-count result instead of raising.
package retention

import (
	"context"
	"log/slog"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/printdesk/printd/internal/store"
)

// DefaultWindow is the fixed retention period after which job rows and
// document files become eligible for deletion.
const DefaultWindow = 24 * time.Hour

type Sweeper struct {
	jobs      *store.JobStore
	uploadDir string
	scanDir   string
	window    time.Duration
	dailyAt   string
	log       *slog.Logger
	stopCh    chan struct{}
	mu        sync.Mutex
}

type Config struct {
	UploadDir string
	ScanDir   string
	Window    time.Duration
	DailyAt   string
}

// Result aggregates one full sweep run.
type Result struct {
	UploadedDeleted int
	ScannedDeleted  int
	JobsDeleted     int64
}

func NewSweeper(jobs *store.JobStore, cfg Config, log *slog.Logger) *Sweeper {
	if cfg.Window <= 0 {
		cfg.Window = DefaultWindow
	}
	if cfg.DailyAt == "" {
		cfg.DailyAt = "03:00"
	}
	if log == nil {
		log = slog.Default()
	}
	return &Sweeper{
		jobs:      jobs,
		uploadDir: cfg.UploadDir,
		scanDir:   cfg.ScanDir,
		window:    cfg.Window,
		dailyAt:   cfg.DailyAt,
		log:       log,
		stopCh:    make(chan struct{}),
	}
}

// Start schedules RunAll at the configured wall-clock time and every 24
// hours thereafter, until Stop is called.
func (s *Sweeper) Start() {
	go s.run()
}

func (s *Sweeper) Stop() {
	close(s.stopCh)
}

func (s *Sweeper) run() {
	timer := time.NewTimer(untilNext(s.dailyAt, time.Now()))
	defer timer.Stop()

	for {
		select {
		case <-s.stopCh:
			return
		case <-timer.C:
			s.RunAll(context.Background())
			timer.Reset(24 * time.Hour)
		}
	}
}

// untilNext returns the duration until the next occurrence of the given
// HH:MM wall-clock time.
func untilNext(dailyAt string, now time.Time) time.Duration {
	at, err := time.Parse("15:04", dailyAt)
	if err != nil {
		return 24 * time.Hour
	}
	next := time.Date(now.Year(), now.Month(), now.Day(), at.Hour(), at.Minute(), 0, 0, now.Location())
	if !next.After(now) {
		next = next.AddDate(0, 0, 1)
	}
	return next.Sub(now)
}

// SweepDocuments deletes every file in dir whose last-modified time is
// older than the retention window. Per-file failures are logged and
// skipped; the sweep itself never aborts.
func (s *Sweeper) SweepDocuments(dir string) int {
	if dir == "" {
		return 0
	}

	entries, err := os.ReadDir(dir)
	if err != nil {
		s.log.Warn("document sweep skipped", "dir", dir, "error", err)
		return 0
	}

	cutoff := time.Now().Add(-s.window)
	deleted := 0
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		info, err := entry.Info()
		if err != nil {
			s.log.Warn("failed to stat file during sweep", "file", entry.Name(), "error", err)
			continue
		}
		if !info.ModTime().Before(cutoff) {
			continue
		}
		path := filepath.Join(dir, entry.Name())
		if err := os.Remove(path); err != nil {
			s.log.Warn("failed to delete expired file", "file", path, "error", err)
			continue
		}
		deleted++
	}

	if deleted > 0 {
		s.log.Info("swept expired documents", "dir", dir, "deleted", deleted)
	}
	return deleted
}

// SweepJobs deletes every job row submitted before the retention cutoff,
// regardless of status. A job still in-progress past the window is
// deleted anyway; this is cleanup, not a correctness path.
func (s *Sweeper) SweepJobs(ctx context.Context) int64 {
	cutoff := time.Now().UTC().Add(-s.window)
	n, err := s.jobs.DeleteSubmittedBefore(ctx, cutoff)
	if err != nil {
		s.log.Warn("job sweep failed", "error", err)
		return 0
	}
	if n > 0 {
		s.log.Info("swept expired jobs", "deleted", n)
	}
	return n
}

// RunAll runs both document sweeps and the job sweep, aggregating
// counts. Concurrent runs are serialized; each sub-sweep is idempotent
// so an overlapping on-demand run is harmless either way.
func (s *Sweeper) RunAll(ctx context.Context) Result {
	s.mu.Lock()
	defer s.mu.Unlock()

	return Result{
		UploadedDeleted: s.SweepDocuments(s.uploadDir),
		ScannedDeleted:  s.SweepDocuments(s.scanDir),
		JobsDeleted:     s.SweepJobs(ctx),
	}
}
