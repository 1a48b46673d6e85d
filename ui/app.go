package ui

import (
	"bytes"
	"embed"
	"fmt"
	"html/template"
	"log"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"surveyinsight/app"
	"surveyinsight/internal/errors"
	"surveyinsight/internal/report"
	"surveyinsight/internal/segment"
)

//go:embed templates/*.html
var embeddedFiles embed.FS

// App is the read-only HTML report browser
type App struct {
	router         *chi.Mux
	service        *app.SegmentExplorerService
	templates      *template.Template
	maxUploadBytes int64
}

// Config holds UI application configuration
type Config struct {
	Port        string
	MaxUploadMB int
}

// NewApp creates the report browser over the given service
func NewApp(service *app.SegmentExplorerService, config Config) (*App, error) {
	funcMap := template.FuncMap{
		"pretty": segment.Prettify,
	}
	templates, err := template.New("").Funcs(funcMap).ParseFS(embeddedFiles, "templates/*.html")
	if err != nil {
		return nil, fmt.Errorf("failed to parse templates: %w", err)
	}

	maxUpload := config.MaxUploadMB
	if maxUpload <= 0 {
		maxUpload = 32
	}

	a := &App{
		router:         chi.NewRouter(),
		service:        service,
		templates:      templates,
		maxUploadBytes: int64(maxUpload) << 20,
	}

	a.setupMiddleware()
	a.setupRoutes()

	return a, nil
}

// setupMiddleware configures HTTP middleware
func (a *App) setupMiddleware() {
	a.router.Use(middleware.Logger)
	a.router.Use(middleware.Recoverer)
	a.router.Use(middleware.Compress(5))
}

// setupRoutes configures the application routes
func (a *App) setupRoutes() {
	a.router.Get("/", a.handleIndex)
	a.router.Post("/upload", a.handleUpload)
	a.router.Get("/datasets/{id}", a.handleDataset)
}

// ServeHTTP implements http.Handler
func (a *App) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	a.router.ServeHTTP(w, r)
}

// Start starts the HTTP server
func (a *App) Start(addr string) error {
	log.Printf("[ReportBrowser] serving on http://%s", addr)
	return http.ListenAndServe(addr, a.router)
}

func (a *App) handleIndex(w http.ResponseWriter, r *http.Request) {
	summaries, err := a.service.List(r.Context())
	if err != nil {
		a.renderError(w, err)
		return
	}
	a.render(w, http.StatusOK, "index.html", map[string]interface{}{
		"Title":    "Survey datasets",
		"Datasets": summaries,
	})
}

func (a *App) handleUpload(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, a.maxUploadBytes)
	file, header, err := r.FormFile("file")
	if err != nil {
		a.renderError(w, errors.InvalidInput("choose a CSV or XLSX file to upload"))
		return
	}
	defer file.Close()

	record, err := a.service.Upload(r.Context(), header.Filename, file)
	if err != nil {
		a.renderError(w, err)
		return
	}
	http.Redirect(w, r, "/datasets/"+record.ID.String(), http.StatusSeeOther)
}

func (a *App) handleDataset(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	record, err := a.service.Get(r.Context(), id)
	if err != nil {
		a.renderError(w, err)
		return
	}

	md, err := a.service.Report(r.Context(), id, report.FormatMarkdown)
	if err != nil {
		a.renderError(w, err)
		return
	}

	a.render(w, http.StatusOK, "dataset.html", map[string]interface{}{
		"Title":   record.Name,
		"Dataset": record.Summary(),
		"Report":  template.HTML(report.HTML(string(md))),
	})
}

func (a *App) renderError(w http.ResponseWriter, err error) {
	status := statusFor(err)
	message := err.Error()
	if status == http.StatusInternalServerError {
		log.Printf("[ReportBrowser] %v", err)
		message = "Something went wrong while preparing this page."
	}
	a.render(w, status, "error.html", map[string]interface{}{
		"Title":   http.StatusText(status),
		"Status":  status,
		"Message": message,
	})
}

// render executes into a buffer first so a template error never leaves a half written page
func (a *App) render(w http.ResponseWriter, status int, name string, data interface{}) {
	var buf bytes.Buffer
	if err := a.templates.ExecuteTemplate(&buf, name, data); err != nil {
		log.Printf("[ReportBrowser] template %s: %v", name, err)
		http.Error(w, "template rendering failed", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	if _, err := buf.WriteTo(w); err != nil {
		log.Printf("[ReportBrowser] write %s: %v", name, err)
	}
}
