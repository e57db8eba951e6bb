// Package handler contains the HTTP page handlers for the task tracker.
//
// Handlers parse the request, call a service, and render a template or issue
// a redirect. Business rules live in internal/service; handlers only
// translate between HTTP and the services' domain errors.
package handler

import (
	"errors"
	"fmt"
	"html/template"
	"log/slog"
	"net/http"
	"path/filepath"

	"github.com/YashchenkoBV/gogitracker/internal/apperror"
)

// pages are the content templates; each is parsed together with base.html so
// it can fill the base layout's "content" block.
var pages = []string{
	"welcome",
	"index",
	"signup",
	"login",
	"tasks",
	"link_github",
	"github_assignments",
	"rep_date",
	"error",
}

// Renderer holds the parsed templates and renders pages.
//
// Templates are parsed ONCE at startup — parsing on every request would work
// but wastes time, and a broken template should stop the server from
// starting rather than 500 on first visit.
type Renderer struct {
	templates map[string]*template.Template
	logger    *slog.Logger
}

// NewRenderer parses every page template against the base layout.
//
// The "dateKey" function builds the YYYY-MM-DD map key the index template
// needs to look up a calendar cell's tasks — string formatting belongs here,
// not spread through template pipelines.
func NewRenderer(templateDir string, logger *slog.Logger) (*Renderer, error) {
	funcs := template.FuncMap{
		"dateKey": func(year, month, day int) string {
			return fmt.Sprintf("%04d-%02d-%02d", year, month, day)
		},
	}

	templates := make(map[string]*template.Template, len(pages))
	for _, page := range pages {
		tmpl, err := template.New("base.html").Funcs(funcs).ParseFiles(
			filepath.Join(templateDir, "base.html"),
			filepath.Join(templateDir, page+".html"),
		)
		if err != nil {
			return nil, fmt.Errorf("handler: parsing %s template: %w", page, err)
		}
		templates[page] = tmpl
	}

	return &Renderer{templates: templates, logger: logger}, nil
}

// Render writes a page with the given status. data is whatever the page's
// content template expects.
func (rn *Renderer) Render(w http.ResponseWriter, status int, page string, data any) {
	tmpl, ok := rn.templates[page]
	if !ok {
		rn.logger.Error("unknown template requested", slog.String("page", page))
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	if err := tmpl.ExecuteTemplate(w, "base", data); err != nil {
		// Headers are already gone; all we can do is log.
		rn.logger.Error("failed to render template",
			slog.String("page", page),
			slog.String("error", err.Error()),
		)
	}
}

// RenderError maps a domain error onto the generic error page.
//
// Validation and upstream errors carry user-safe messages, so those are
// shown. Anything else renders as a generic 500 line — raw errors can leak
// SQL, tokens, or file paths and never reach a page.
func (rn *Renderer) RenderError(w http.ResponseWriter, err error) {
	status := http.StatusInternalServerError
	message := "An internal error occurred."

	var appErr *apperror.AppError
	if errors.As(err, &appErr) {
		switch {
		case errors.Is(err, apperror.ErrValidation):
			status = http.StatusBadRequest
			message = appErr.Message
		case errors.Is(err, apperror.ErrNotFound):
			status = http.StatusNotFound
			message = appErr.Message
		case errors.Is(err, apperror.ErrUpstream):
			status = http.StatusBadRequest
			message = appErr.Message
		}
	}

	if status == http.StatusInternalServerError {
		rn.logger.Error("request failed", slog.String("error", err.Error()))
	}

	rn.Render(w, status, "error", map[string]any{"ErrorMessage": message})
}
