package api

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/myst-ext/myst-ext-points/internal/config"
	"github.com/myst-ext/myst-ext-points/internal/events"
	"github.com/myst-ext/myst-ext-points/internal/gradebook"
	"github.com/myst-ext/myst-ext-points/internal/pipeline"
	"github.com/myst-ext/myst-ext-points/internal/sheets"
	"github.com/myst-ext/myst-ext-points/internal/worksheet"
)

// Server is the HTTP API server for the points service.
type Server struct {
	router       chi.Router
	orchestrator *pipeline.Orchestrator
	renderer     *worksheet.Renderer
	stats        *worksheet.RenderStats
	store        *gradebook.Store
	publisher    *events.Publisher
	exporter     *sheets.Client
	log          *slog.Logger
	cfg          config.Config
}

// NewServer creates and configures the HTTP server. publisher and
// exporter may be nil when the matching backends are not configured.
func NewServer(orch *pipeline.Orchestrator, renderer *worksheet.Renderer, stats *worksheet.RenderStats,
	store *gradebook.Store, publisher *events.Publisher, exporter *sheets.Client,
	log *slog.Logger, cfg config.Config) *Server {
	s := &Server{
		orchestrator: orch,
		renderer:     renderer,
		stats:        stats,
		store:        store,
		publisher:    publisher,
		exporter:     exporter,
		log:          log,
		cfg:          cfg,
	}
	s.setupRoutes()
	return s
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

func (s *Server) setupRoutes() {
	r := chi.NewRouter()
	r.Use(middleware.Recoverer)
	r.Use(middleware.RequestID)
	r.Use(RequestLogger(s.log))

	// Public endpoints.
	r.Get("/health", s.handleHealth)

	// Authenticated endpoints.
	r.Group(func(r chi.Router) {
		r.Use(AuthMiddleware(s.cfg.APIKey, s.log))

		r.Post("/api/render", s.handleRender)

		r.Post("/api/worksheets", s.handleRecordWorksheet)
		r.Get("/api/worksheets", s.handleListWorksheets)
		r.Get("/api/worksheets/{worksheetID}", s.handleGetWorksheet)
		r.Delete("/api/worksheets/{worksheetID}", s.handleDeleteWorksheet)
		r.Post("/api/worksheets/{worksheetID}/export", s.handleExportWorksheet)

		r.Post("/api/import", s.handleImport)
		r.Post("/api/import/batch", s.handleBatchImport)
		r.Get("/api/import/{jobID}/status", s.handleImportStatus)
		r.Get("/api/import/{jobID}/draft", s.handleImportDraft)

		r.Get("/api/stats/render", s.handleRenderStats)
	})

	s.router = r
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.Write([]byte(`{"status":"ok"}`))
}
