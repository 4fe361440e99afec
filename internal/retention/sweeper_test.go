package retention

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/printdesk/printd/internal/store"
)

func newTestJobStore(t *testing.T) *store.JobStore {
	t.Helper()
	path := filepath.Join(t.TempDir(), "sweeper_test.db")
	db, err := store.Open(path)
	if err != nil {
		t.Fatalf("failed to open test database: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	return store.NewJobStore(db)
}

func writeFileAged(t *testing.T, dir, name string, age time.Duration) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, []byte("x"), 0o644); err != nil {
		t.Fatalf("failed to write %s: %v", name, err)
	}
	mtime := time.Now().Add(-age)
	if err := os.Chtimes(path, mtime, mtime); err != nil {
		t.Fatalf("failed to age %s: %v", name, err)
	}
	return path
}

func TestSweepDocumentsDeletesOnlyExpiredFiles(t *testing.T) {
	dir := t.TempDir()
	old := writeFileAged(t, dir, "old.pdf", 25*time.Hour)
	fresh := writeFileAged(t, dir, "fresh.pdf", time.Minute)

	s := NewSweeper(newTestJobStore(t), Config{UploadDir: dir}, nil)
	deleted := s.SweepDocuments(dir)

	if deleted != 1 {
		t.Fatalf("deleted %d files, want 1", deleted)
	}
	if _, err := os.Stat(old); !os.IsNotExist(err) {
		t.Fatal("expired file should be gone")
	}
	if _, err := os.Stat(fresh); err != nil {
		t.Fatalf("fresh file should survive: %v", err)
	}
}

func TestSweepDocumentsMissingDirIsZeroCount(t *testing.T) {
	s := NewSweeper(newTestJobStore(t), Config{}, nil)
	if n := s.SweepDocuments("/nonexistent/dir"); n != 0 {
		t.Fatalf("got %d, want 0", n)
	}
}

func TestSweepJobsAgeBoundary(t *testing.T) {
	jobs := newTestJobStore(t)
	ctx := context.Background()
	now := time.Now().UTC()

	expired := &store.Job{
		UserID: 1, DocumentName: "old.pdf", DocumentPath: "/x/old.pdf",
		PaperType: "PlainPaper", PrintQuality: 600, ColorMode: "Grayscale", PaperSize: "A4",
		Status: store.StatusInProgress, SubmittedAt: now.Add(-25 * time.Hour),
	}
	fresh := &store.Job{
		UserID: 1, DocumentName: "new.pdf", DocumentPath: "/x/new.pdf",
		PaperType: "PlainPaper", PrintQuality: 600, ColorMode: "Grayscale", PaperSize: "A4",
		SubmittedAt: now.Add(-time.Minute),
	}
	for _, j := range []*store.Job{expired, fresh} {
		if err := jobs.Create(ctx, j); err != nil {
			t.Fatalf("create failed: %v", err)
		}
	}

	s := NewSweeper(jobs, Config{}, nil)
	if n := s.SweepJobs(ctx); n != 1 {
		t.Fatalf("swept %d jobs, want 1", n)
	}

	if _, err := jobs.GetByID(ctx, expired.ID); err != store.ErrNotFound {
		t.Fatal("expired in-progress job should be swept regardless of status")
	}
	if _, err := jobs.GetByID(ctx, fresh.ID); err != nil {
		t.Fatalf("minute-old job must never be swept: %v", err)
	}
}

func TestRunAllAggregatesCounts(t *testing.T) {
	uploadDir := t.TempDir()
	scanDir := t.TempDir()
	writeFileAged(t, uploadDir, "u.pdf", 48*time.Hour)
	writeFileAged(t, scanDir, "s1.png", 48*time.Hour)
	writeFileAged(t, scanDir, "s2.png", 48*time.Hour)

	s := NewSweeper(newTestJobStore(t), Config{UploadDir: uploadDir, ScanDir: scanDir}, nil)
	res := s.RunAll(context.Background())

	if res.UploadedDeleted != 1 || res.ScannedDeleted != 2 || res.JobsDeleted != 0 {
		t.Fatalf("unexpected result: %+v", res)
	}
}

func TestUntilNextWallClock(t *testing.T) {
	now := time.Date(2024, 5, 10, 2, 0, 0, 0, time.UTC)

	if d := untilNext("03:00", now); d != time.Hour {
		t.Errorf("before today's slot: got %v, want 1h", d)
	}
	if d := untilNext("01:00", now); d != 23*time.Hour {
		t.Errorf("after today's slot: got %v, want 23h", d)
	}
	if d := untilNext("garbage", now); d != 24*time.Hour {
		t.Errorf("unparseable time: got %v, want 24h", d)
	}
}
