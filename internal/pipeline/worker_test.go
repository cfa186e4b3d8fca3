package pipeline

import (
	"context"
	"io"
	"log/slog"
	"strings"
	"testing"
	"time"

	"github.com/myst-ext/myst-ext-points/internal/worksheet"
)

func newTestWorker() *Worker {
	renderer := worksheet.NewRenderer(nil, worksheet.NewRenderStats(time.Hour))
	log := slog.New(slog.NewTextHandler(io.Discard, nil))
	return NewWorker(renderer, false, log)
}

func TestWorker_ProcessTextUpload(t *testing.T) {
	w := newTestWorker()

	job := &Job{
		ID:        NewJobID("quiz.txt", nil),
		Status:    StatusQueued,
		Filename:  "quiz.txt",
		CreatedAt: time.Now(),
		UpdatedAt: time.Now(),
	}
	job.SetFileData([]byte("Solve for x. (2 points)\n\nGraph the result. (3 points)\n"))

	w.Process(context.Background(), job)

	if job.Status != StatusCompleted {
		t.Fatalf("expected completed, got %q (errors: %v)", job.Status, job.Snapshot().Progress.Errors)
	}
	draft, ok := job.Draft()
	if !ok {
		t.Fatal("expected draft after completion")
	}
	if !strings.Contains(draft.Markdown, "{points}`2`") {
		t.Errorf("expected rewritten annotation in draft:\n%s", draft.Markdown)
	}
	if !strings.HasSuffix(draft.Markdown, "{points-total}\n") {
		t.Errorf("expected trailing totals directive:\n%s", draft.Markdown)
	}
	if draft.GrandTotal != 5 {
		t.Errorf("expected grand total 5, got %d", draft.GrandTotal)
	}
	if draft.ContentHash == "" {
		t.Error("expected a content hash on the draft")
	}
	if got := job.Snapshot().Progress.Rewrites; got != 2 {
		t.Errorf("expected 2 rewrites, got %d", got)
	}
	if got := job.Snapshot().Progress.GrandTotal; got != 5 {
		t.Errorf("expected provisional grand total 5, got %d", got)
	}
}

func TestWorker_ProcessUnsupportedExtension(t *testing.T) {
	w := newTestWorker()

	job := &Job{ID: "bad-ext", Filename: "quiz.xlsx", UpdatedAt: time.Now()}
	job.SetFileData([]byte("irrelevant"))

	w.Process(context.Background(), job)

	if job.Status != StatusFailed {
		t.Fatalf("expected failed, got %q", job.Status)
	}
	if len(job.Snapshot().Progress.Errors) == 0 {
		t.Error("expected an error message on the job")
	}
	if _, ok := job.Draft(); ok {
		t.Error("failed job should not expose a draft")
	}
}

func TestWorker_ProcessCanceledContext(t *testing.T) {
	w := newTestWorker()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	job := &Job{ID: "canceled", Filename: "quiz.txt", UpdatedAt: time.Now()}
	job.SetFileData([]byte("Problem. (1 point)\n"))

	w.Process(ctx, job)

	if job.Status != StatusFailed {
		t.Fatalf("expected failed, got %q", job.Status)
	}
}
