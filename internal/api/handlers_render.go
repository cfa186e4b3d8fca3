package api

import (
	"encoding/json"
	"net/http"

	"github.com/myst-ext/myst-ext-points/internal/points"
	"github.com/myst-ext/myst-ext-points/internal/worksheet"
)

type renderRequest struct {
	Markdown string `json:"markdown"`
}

type renderResponse struct {
	Title       string                 `json:"title"`
	HTML        string                 `json:"html"`
	ContentHash string                 `json:"content_hash"`
	GrandTotal  int                    `json:"grand_total"`
	Categories  []points.CategoryTotal `json:"categories"`
	Diagnostics []points.Diagnostic    `json:"diagnostics"`
}

// handleRender renders worksheet Markdown without recording anything.
func (s *Server) handleRender(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, s.cfg.MaxUploadBytes)

	var req renderRequest
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

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(renderResponse{
		Title:       res.Title,
		HTML:        string(res.HTML),
		ContentHash: worksheet.Hash(src),
		GrandTotal:  res.Totals.Grand(),
		Categories:  res.Totals.Categories(),
		Diagnostics: nonNilDiags(res.Diagnostics),
	})
}

// nonNilDiags keeps diagnostics encoding as [] instead of null.
func nonNilDiags(diags []points.Diagnostic) []points.Diagnostic {
	if diags == nil {
		return []points.Diagnostic{}
	}
	return diags
}
