package pipeline

import (
	"bytes"
	"context"
	"fmt"
	"log/slog"

	"github.com/myst-ext/myst-ext-points/internal/importer"
	"github.com/myst-ext/myst-ext-points/internal/worksheet"
)

// Worker processes a single import job.
type Worker struct {
	renderer    *worksheet.Renderer
	pdfFallback bool
	log         *slog.Logger
}

func NewWorker(renderer *worksheet.Renderer, pdfFallback bool, log *slog.Logger) *Worker {
	return &Worker{
		renderer:    renderer,
		pdfFallback: pdfFallback,
		log:         log,
	}
}

// Process runs the full import pipeline for a job.
func (w *Worker) Process(ctx context.Context, job *Job) {
	log := w.log.With("job_id", job.ID, "filename", job.Filename)

	if ctx.Err() != nil {
		job.AddError(ctx.Err().Error())
		job.SetStatus(StatusFailed, "canceled")
		return
	}

	// Phase 1: Convert
	job.SetStatus(StatusConverting, "converting")
	conv, err := importer.ForFile(job.Filename)
	if err != nil {
		log.Error("unsupported format", "error", err)
		job.AddError(err.Error())
		job.SetStatus(StatusFailed, "converting")
		return
	}
	if pdf, ok := conv.(*importer.PDFConverter); ok {
		pdf.FallbackPdftotext = w.pdfFallback
	}

	draft, err := conv.Convert(bytes.NewReader(job.FileData()), job.Filename)
	if err != nil {
		log.Error("conversion failed", "error", err)
		job.AddError(fmt.Sprintf("convert: %s", err))
		job.SetStatus(StatusFailed, "converting")
		return
	}
	job.SetRewrites(draft.Rewrites)
	log.Info("converted upload", "sections", len(draft.Sections), "rewrites", draft.Rewrites)

	// Phase 2: Render
	job.SetStatus(StatusRendering, "rendering")
	src := draft.Markdown()
	res, err := w.renderer.Render(src)
	if err != nil {
		log.Error("render failed", "error", err)
		job.AddError(fmt.Sprintf("render: %s", err))
		job.SetStatus(StatusFailed, "rendering")
		return
	}

	title := res.Title
	if title == "" {
		title = draft.Title
	}

	// The draft waits for grader review; the job never writes to the
	// gradebook itself.
	job.SetDraft(DraftResult{
		Markdown:    string(src),
		Title:       title,
		ContentHash: worksheet.Hash(src),
		GrandTotal:  res.Totals.Grand(),
		Categories:  res.Totals.Categories(),
		Diagnostics: res.Diagnostics,
		Rewrites:    draft.Rewrites,
	})
	job.SetStatus(StatusCompleted, "done")
	log.Info("import complete", "grand_total", res.Totals.Grand(), "diagnostics", len(res.Diagnostics))
}
