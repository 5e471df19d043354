// Package web renders the server-side pages from embedded html/template files.
package web

import (
	"embed"
	"fmt"
	"html/template"
	"io"
	"io/fs"
	"strings"
	"sync"
	"time"
)

//go:embed templates/*.html
var templateFS embed.FS

// DefaultLayout wraps every page unless another layout is requested.
const DefaultLayout = "layout"

// Views implements fiber.Views. Each page is parsed together with the layout
// so that pages only define their own blocks.
type Views struct {
	fsys  fs.FS
	funcs template.FuncMap

	mu    sync.RWMutex
	pages map[string]*template.Template
}

// NewViews returns views over the embedded templates.
func NewViews() *Views {
	return NewViewsFS(templateFS)
}

// NewViewsFS returns views over fsys, which must contain templates/*.html.
func NewViewsFS(fsys fs.FS) *Views {
	return &Views{
		fsys: fsys,
		funcs: template.FuncMap{
			"date": func(t time.Time) string {
				if t.IsZero() {
					return ""
				}
				return t.Format("Jan 2, 2006")
			},
			"join": strings.Join,
		},
	}
}

// Load parses every page. It is called by fiber when the app starts.
func (v *Views) Load() error {
	names, err := fs.Glob(v.fsys, "templates/*.html")
	if err != nil {
		return err
	}

	pages := make(map[string]*template.Template, len(names))
	layoutFile := "templates/" + DefaultLayout + ".html"
	for _, file := range names {
		if file == layoutFile {
			continue
		}
		name := strings.TrimSuffix(strings.TrimPrefix(file, "templates/"), ".html")
		tmpl, err := template.New(name).Funcs(v.funcs).ParseFS(v.fsys, layoutFile, file)
		if err != nil {
			return fmt.Errorf("parse template %s: %w", name, err)
		}
		pages[name] = tmpl
	}

	v.mu.Lock()
	v.pages = pages
	v.mu.Unlock()
	return nil
}

// Render executes page name inside the first given layout.
func (v *Views) Render(w io.Writer, name string, data interface{}, layouts ...string) error {
	v.mu.RLock()
	loaded := v.pages != nil
	v.mu.RUnlock()
	if !loaded {
		if err := v.Load(); err != nil {
			return err
		}
	}

	v.mu.RLock()
	tmpl, ok := v.pages[name]
	v.mu.RUnlock()
	if !ok {
		return fmt.Errorf("template %q not found", name)
	}

	layout := DefaultLayout
	if len(layouts) > 0 && layouts[0] != "" {
		layout = layouts[0]
	}
	return tmpl.ExecuteTemplate(w, layout, data)
}
