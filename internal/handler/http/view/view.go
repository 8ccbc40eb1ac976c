package view

import (
	"bytes"
	"embed"
	"fmt"
	"html/template"
	"io/fs"
	"log/slog"
	"net/http"
	"path"
	"strings"
	"time"

	"github.com/cmlabs-hris/activity-report/internal/domain/auth"
	"github.com/cmlabs-hris/activity-report/internal/domain/kpi"
	"github.com/cmlabs-hris/activity-report/internal/pkg/validator"
)

//go:embed templates/*.html
var templateFS embed.FS

const layoutFile = "templates/layout.html"

// Page carries what the layout needs. Page data structs embed it.
type Page struct {
	Title  string
	Role   auth.Role
	Flash  string
	Errors validator.ValidationErrors
}

// Renderer executes one parsed template set per page.
type Renderer struct {
	pages map[string]*template.Template
}

func Funcs() template.FuncMap {
	return template.FuncMap{
		"thousands": kpi.FormatThousands,
		"yen":       kpi.FormatYen,
		"date": func(t time.Time) string {
			if t.IsZero() {
				return ""
			}
			return t.Format("2006-01-02")
		},
		"month": func(t time.Time) string {
			return t.Format("2006-01")
		},
		"clock": func(t time.Time) string {
			return t.Format("2006-01-02 15:04")
		},
		"has": func(values []string, v string) bool {
			for _, s := range values {
				if s == v {
					return true
				}
			}
			return false
		},
		"deref": func(s *string) string {
			if s == nil {
				return ""
			}
			return *s
		},
		"join": strings.Join,
	}
}

func New() (*Renderer, error) {
	files, err := fs.Glob(templateFS, "templates/*.html")
	if err != nil {
		return nil, err
	}

	pages := make(map[string]*template.Template, len(files))
	for _, file := range files {
		if file == layoutFile {
			continue
		}
		name := strings.TrimSuffix(path.Base(file), ".html")
		t, err := template.New(name).Funcs(Funcs()).ParseFS(templateFS, layoutFile, file)
		if err != nil {
			return nil, fmt.Errorf("failed to parse template %s: %w", name, err)
		}
		pages[name] = t
	}
	return &Renderer{pages: pages}, nil
}

// Render writes page name wrapped in the layout with the given status.
func (r *Renderer) Render(w http.ResponseWriter, status int, name string, data any) {
	t, ok := r.pages[name]
	if !ok {
		slog.Error("unknown page template", "page", name)
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	var buf bytes.Buffer
	if err := t.ExecuteTemplate(&buf, "layout", data); err != nil {
		slog.Error("failed to render page", "page", name, "error", err)
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	_, _ = buf.WriteTo(w)
}

// NotFound renders the shared 404 page.
func (r *Renderer) NotFound(w http.ResponseWriter, role auth.Role) {
	r.Render(w, http.StatusNotFound, "not_found", Page{Title: "Not found", Role: role})
}

// Error logs err and renders the shared 500 page.
func (r *Renderer) Error(w http.ResponseWriter, role auth.Role, err error) {
	slog.Error("request failed", "error", err)
	r.Render(w, http.StatusInternalServerError, "error", Page{Title: "Error", Role: role})
}
