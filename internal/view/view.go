// Package view renders the server-side HTML pages.
package view

import (
	"embed"
	"fmt"
	"html/template"
	"io"
	"strconv"
	"sync"

	"pdf-quiz/internal/dto"
)

//go:embed templates/*.html
var templateFS embed.FS

// Flash is a one-shot message shown at the top of the page.
type Flash struct {
	Kind    string // "error" or "info"
	Message string
}

// Page is the data bound to the index template.
type Page struct {
	Title          string
	Flash          *Flash
	State          *dto.PracticeResponse
	Attempts       *dto.AttemptsResponse
	AttemptsError  string
	MaxUploadLabel string
}

// Engine implements fiber.Views over the embedded templates.
type Engine struct {
	mu        sync.RWMutex
	templates *template.Template
}

// New creates an Engine. Templates are parsed on Load.
func New() *Engine {
	return &Engine{}
}

var funcs = template.FuncMap{
	"number": func(f float64) string {
		return strconv.FormatFloat(f, 'f', -1, 64)
	},
	"percent": func(f float64) string {
		return fmt.Sprintf("%.0f", f)
	},
}

// Load parses the templates. fiber calls it once on startup.
func (e *Engine) Load() error {
	tmpl, err := template.New("").Funcs(funcs).ParseFS(templateFS, "templates/*.html")
	if err != nil {
		return fmt.Errorf("failed to parse templates: %w", err)
	}
	e.mu.Lock()
	e.templates = tmpl
	e.mu.Unlock()
	return nil
}

// Render executes the named template. Layouts are part of the template set, so
// the layout argument is ignored.
func (e *Engine) Render(w io.Writer, name string, binding interface{}, _ ...string) error {
	e.mu.RLock()
	tmpl := e.templates
	e.mu.RUnlock()
	if tmpl == nil {
		if err := e.Load(); err != nil {
			return err
		}
		e.mu.RLock()
		tmpl = e.templates
		e.mu.RUnlock()
	}
	t := tmpl.Lookup(name)
	if t == nil {
		return fmt.Errorf("template %q not found", name)
	}
	return t.Execute(w, binding)
}
