package ui

import (
	"embed"
	"fmt"
	"html/template"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/gomarkdown/markdown"
	mdhtml "github.com/gomarkdown/markdown/html"
	"github.com/gomarkdown/markdown/parser"

	"github.com/seanwkelley/belief-sensitivity-explorer/domain/core"
	"github.com/seanwkelley/belief-sensitivity-explorer/internal"
	"github.com/seanwkelley/belief-sensitivity-explorer/ports"
)

//go:embed templates/*
var embeddedFiles embed.FS

// App is the report viewer: a read-only HTML surface over stored question
// results
type App struct {
	router     *chi.Mux
	repository ports.ResultRepository
	templates  *template.Template
	logger     *internal.Logger
}

// NewApp creates the report viewer over a result repository
func NewApp(repository ports.ResultRepository) (*App, error) {
	funcMap := template.FuncMap{
		"pct": func(v float64) string { return fmt.Sprintf("%.1f%%", v*100) },
		"f3":  func(v float64) string { return fmt.Sprintf("%.3f", v) },
		"deref": func(v *float64) string {
			if v == nil {
				return "n/a"
			}
			return fmt.Sprintf("%.3f", *v)
		},
		"renderMarkdown": renderMarkdown,
	}

	templates, err := template.New("").Funcs(funcMap).ParseFS(embeddedFiles, "templates/*.html")
	if err != nil {
		return nil, fmt.Errorf("failed to parse templates: %w", err)
	}

	app := &App{
		router:     chi.NewRouter(),
		repository: repository,
		templates:  templates,
		logger:     internal.NewDefaultLogger(),
	}

	app.router.Use(middleware.Logger)
	app.router.Use(middleware.Recoverer)
	app.router.Use(middleware.Compress(5))

	app.router.Get("/", app.handleIndex)
	app.router.Get("/reports/{id}", app.handleReport)

	return app, nil
}

// Router returns the chi mux for mounting or serving
func (a *App) Router() *chi.Mux {
	return a.router
}

// Start serves the viewer on addr
func (a *App) Start(addr string) error {
	a.logger.Info("[UI] report viewer listening on %s", addr)
	return http.ListenAndServe(addr, a.router)
}

func (a *App) handleIndex(w http.ResponseWriter, r *http.Request) {
	results, err := a.repository.List(r.Context())
	if err != nil {
		a.logger.Error("[UI] failed to list results: %v", err)
		http.Error(w, "failed to load reports", http.StatusInternalServerError)
		return
	}

	if err := a.templates.ExecuteTemplate(w, "index.html", results); err != nil {
		a.logger.Error("[UI] failed to render index: %v", err)
	}
}

func (a *App) handleReport(w http.ResponseWriter, r *http.Request) {
	id, err := core.ParseQuestionID(chi.URLParam(r, "id"))
	if err != nil {
		http.Error(w, "invalid question id", http.StatusBadRequest)
		return
	}

	result, err := a.repository.Get(r.Context(), id)
	if err != nil {
		a.logger.Warn("[UI] report %s not found: %v", id, err)
		http.Error(w, "report not found", http.StatusNotFound)
		return
	}

	if err := a.templates.ExecuteTemplate(w, "report.html", result); err != nil {
		a.logger.Error("[UI] failed to render report %s: %v", id, err)
	}
}

// renderMarkdown converts model reasoning from markdown to HTML. The output
// is marked safe because the renderer escapes raw HTML in the source.
func renderMarkdown(source string) template.HTML {
	p := parser.NewWithExtensions(parser.CommonExtensions | parser.NoEmptyLineBeforeBlock)
	doc := p.Parse([]byte(source))

	renderer := mdhtml.NewRenderer(mdhtml.RendererOptions{
		Flags: mdhtml.CommonFlags | mdhtml.SkipHTML,
	})
	return template.HTML(markdown.Render(doc, renderer))
}
