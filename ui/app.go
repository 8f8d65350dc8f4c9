// Package ui serves the explanation report for the session's current page
package ui

import (
	"encoding/json"
	"net/http"
	"strconv"

	"goinsight/domain/dataset"
	"goinsight/domain/insight"
	"goinsight/internal"
	"goinsight/internal/session"
	"goinsight/ports"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
)

// Session is the part of the recommendation session the UI reads
type Session interface {
	Snapshot() session.Snapshot
	Summaries() insight.SummarySet
	CurrentSubspace() (insight.Subspace, bool)
	PageData() ([]dataset.Record, error)
	GotoPage(n int) (session.Snapshot, error)
}

// Config holds UI application configuration
type Config struct {
	Port string
}

// App represents the UI application
type App struct {
	config   Config
	router   *chi.Mux
	session  Session
	renderer ports.RendererPort
	logger   *internal.Logger
}

// PageResponse is the current page handed to a chart renderer
type PageResponse struct {
	Snapshot session.Snapshot `json:"snapshot"`
	Data     []dataset.Record `json:"data"`
}

// NewApp creates a new UI application
func NewApp(config Config, sess Session, renderer ports.RendererPort, logger *internal.Logger) *App {
	if config.Port == "" {
		config.Port = "8090"
	}
	app := &App{
		config:   config,
		router:   chi.NewRouter(),
		session:  sess,
		renderer: renderer,
		logger:   logger.Named("ui"),
	}
	app.setupMiddleware()
	app.setupRoutes()
	return app
}

func (a *App) setupMiddleware() {
	a.router.Use(middleware.RequestID)
	a.router.Use(middleware.Recoverer)
	a.router.Use(middleware.Compress(5))
}

func (a *App) setupRoutes() {
	a.router.Get("/", a.handleIndex)
	a.router.Get("/report.md", a.handleMarkdown)
	a.router.Get("/page", a.handlePage)
	a.router.Get("/pages/{page}", a.handleGotoPage)
}

// Router exposes the handler for servers and tests
func (a *App) Router() http.Handler {
	return a.router
}

// Start starts the HTTP server
func (a *App) Start() error {
	addr := ":" + a.config.Port
	a.logger.Info("serving explanation UI on %s", addr)
	return http.ListenAndServe(addr, a.router)
}

func (a *App) reportInput() ports.ReportInput {
	snap := a.session.Snapshot()
	in := ports.ReportInput{
		DatasetName: snap.Dataset,
		PageLabel:   snap.PageLabel,
		Summaries:   a.session.Summaries(),
		Synthesis:   &snap.Synthesis,
		Notice:      snap.Notice,
	}
	if sub, ok := a.session.CurrentSubspace(); ok {
		in.Subspace = &sub
	}
	return in
}

func (a *App) handleIndex(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.Write(a.renderer.HTML(a.reportInput()))
}

func (a *App) handleMarkdown(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/markdown; charset=utf-8")
	w.Write([]byte(a.renderer.Markdown(a.reportInput())))
}

func (a *App) handlePage(w http.ResponseWriter, r *http.Request) {
	rows, err := a.session.PageData()
	if err != nil {
		a.logger.Error("page data: %v", err)
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusOK, PageResponse{Snapshot: a.session.Snapshot(), Data: rows})
}

// handleGotoPage selects a page (1-based, as shown in the page label) and redirects to the report
func (a *App) handleGotoPage(w http.ResponseWriter, r *http.Request) {
	n, err := strconv.Atoi(chi.URLParam(r, "page"))
	if err != nil {
		http.Error(w, "page must be an integer", http.StatusBadRequest)
		return
	}
	if _, err := a.session.GotoPage(n - 1); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	http.Redirect(w, r, "/", http.StatusSeeOther)
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		internal.DefaultLogger.Error("encode response: %v", err)
	}
}
