package view

import (
	"embed"
	"fmt"
	"html/template"
	"io"
	"io/fs"
)

//go:embed templates/*.html
var templateFiles embed.FS

//go:embed static
var staticFiles embed.FS

var pages = []string{"home", "secrets", "submit", "register", "login"}

// Base carries the fields every page template needs.
type Base struct {
	Authed   bool
	Username string
}

// Renderer holds the parsed page templates, each paired with the shared
// layout.
type Renderer struct {
	templates map[string]*template.Template
}

// New parses the embedded templates into a Renderer.
func New() (*Renderer, error) {
	templates := make(map[string]*template.Template, len(pages))
	for _, page := range pages {
		tmpl, err := template.ParseFS(templateFiles, "templates/layout.html", "templates/"+page+".html")
		if err != nil {
			return nil, fmt.Errorf("parsing %s template: %w", page, err)
		}
		templates[page] = tmpl
	}
	return &Renderer{templates: templates}, nil
}

// Render executes the named page template into w.
func (r *Renderer) Render(w io.Writer, page string, data any) error {
	tmpl, ok := r.templates[page]
	if !ok {
		return fmt.Errorf("unknown page %q", page)
	}
	if err := tmpl.ExecuteTemplate(w, "layout", data); err != nil {
		return fmt.Errorf("rendering %s page: %w", page, err)
	}
	return nil
}

// Static returns the embedded static asset tree rooted at its contents.
func Static() fs.FS {
	sub, err := fs.Sub(staticFiles, "static")
	if err != nil {
		panic(err)
	}
	return sub
}
