package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/myst-ext/myst-ext-points/internal/events"
	"github.com/myst-ext/myst-ext-points/internal/gradebook"
	"github.com/myst-ext/myst-ext-points/internal/points"
	"github.com/myst-ext/myst-ext-points/internal/worksheet"
)

type recordRequest struct {
	Markdown string `json:"markdown"`
	// Title overrides the title derived from the first heading.
	Title string `json:"title,omitempty"`
}

// handleRecordWorksheet renders a worksheet and stores its totals in
// the gradebook. Worksheets with identical content are deduplicated by
// hash.
func (s *Server) handleRecordWorksheet(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, s.cfg.MaxUploadBytes)

	var req recordRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		jsonError(w, "invalid request body: "+err.Error(), http.StatusBadRequest)
		return
	}
	if req.Markdown == "" {
		jsonError(w, "markdown is required", http.StatusBadRequest)
		return
	}

	src := []byte(req.Markdown)
	res, err := s.renderer.Render(src)
	if err != nil {
		jsonError(w, "render failed: "+err.Error(), http.StatusInternalServerError)
		return
	}

	// Worksheets with parse errors are not gradeable as written.
	if errs := diagErrors(res); len(errs) > 0 {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusUnprocessableEntity)
		json.NewEncoder(w).Encode(map[string]any{
			"error":       "worksheet has annotation errors",
			"diagnostics": errs,
		})
		return
	}

	hash := worksheet.Hash(src)
	if existing, err := s.store.FindByHash(r.Context(), hash); err == nil {
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(map[string]any{
			"duplicate": true,
			"worksheet": existing,
		})
		return
	} else if !errors.Is(err, gradebook.ErrNotFound) {
		jsonError(w, "gradebook lookup failed: "+err.Error(), http.StatusInternalServerError)
		return
	}

	title := req.Title
	if title == "" {
		title = res.Title
	}
	if title == "" {
		title = "Untitled worksheet"
	}

	rec := &gradebook.Record{
		ID:          hash[:16],
		Title:       title,
		ContentHash: hash,
		GrandTotal:  res.Totals.Grand(),
		Categories:  res.Totals.Categories(),
		RenderedAt:  time.Now(),
	}
	if err := s.store.Put(r.Context(), rec); err != nil {
		jsonError(w, "gradebook write failed: "+err.Error(), http.StatusInternalServerError)
		return
	}
	s.publishRecorded(rec)

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusCreated)
	json.NewEncoder(w).Encode(map[string]any{
		"duplicate": false,
		"worksheet": rec,
	})
}

func (s *Server) handleListWorksheets(w http.ResponseWriter, r *http.Request) {
	limit := 0
	if v := r.URL.Query().Get("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 0 {
			jsonError(w, "limit must be a non-negative integer", http.StatusBadRequest)
			return
		}
		limit = n
	}

	recs, err := s.store.List(r.Context(), limit)
	if err != nil {
		jsonError(w, "gradebook list failed: "+err.Error(), http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]any{
		"worksheets": recs,
		"count":      len(recs),
	})
}

func (s *Server) handleGetWorksheet(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "worksheetID")
	rec, err := s.store.Get(r.Context(), id)
	if err != nil {
		if errors.Is(err, gradebook.ErrNotFound) {
			jsonError(w, "worksheet not found", http.StatusNotFound)
			return
		}
		jsonError(w, "gradebook read failed: "+err.Error(), http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(rec)
}

func (s *Server) handleDeleteWorksheet(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "worksheetID")
	if err := s.store.Delete(r.Context(), id); err != nil {
		if errors.Is(err, gradebook.ErrNotFound) {
			jsonError(w, "worksheet not found", http.StatusNotFound)
			return
		}
		jsonError(w, "gradebook delete failed: "+err.Error(), http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]any{"deleted": true, "id": id})
}

// handleExportWorksheet appends a recorded worksheet to the configured
// spreadsheet.
func (s *Server) handleExportWorksheet(w http.ResponseWriter, r *http.Request) {
	if s.exporter == nil {
		jsonError(w, "sheets export is not configured", http.StatusServiceUnavailable)
		return
	}

	id := chi.URLParam(r, "worksheetID")
	rec, err := s.store.Get(r.Context(), id)
	if err != nil {
		if errors.Is(err, gradebook.ErrNotFound) {
			jsonError(w, "worksheet not found", http.StatusNotFound)
			return
		}
		jsonError(w, "gradebook read failed: "+err.Error(), http.StatusInternalServerError)
		return
	}

	if err := s.exporter.AppendWorksheet(r.Context(), *rec); err != nil {
		jsonError(w, "sheets export failed: "+err.Error(), http.StatusBadGateway)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]any{"exported": true, "id": id})
}

// publishRecorded fires the gradebook event in the background. Publish
// failures are logged, never surfaced to the caller.
func (s *Server) publishRecorded(rec *gradebook.Record) {
	if s.publisher == nil {
		return
	}
	ev := events.WorksheetRecorded{
		ID:          rec.ID,
		Title:       rec.Title,
		ContentHash: rec.ContentHash,
		GrandTotal:  rec.GrandTotal,
		Categories:  rec.Categories,
		RecordedAt:  rec.RenderedAt,
	}
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()
		if err := s.publisher.PublishWorksheetRecorded(ctx, ev); err != nil {
			s.log.Error("worksheet event publish failed", "worksheet_id", ev.ID, "error", err)
		}
	}()
}

// diagErrors returns only error-level diagnostics from a render.
func diagErrors(res *worksheet.Result) []points.Diagnostic {
	var errs []points.Diagnostic
	for _, d := range res.Diagnostics {
		if d.Severity == points.SeverityError {
			errs = append(errs, d)
		}
	}
	return errs
}
