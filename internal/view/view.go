// Package view renders the server-side pages from embedded templates.
package view

import (
	"embed"
	"fmt"
	"html/template"
	"io"

	"github.com/labstack/echo/v4"
)

//go:embed templates/*.html
var templateFS embed.FS

// Page names accepted by Renderer.
const (
	Index       = "index.html"
	Login       = "login.html"
	ProductList = "product_list.html"
	ProductAdd  = "product_form.html"
	ProductEdit = "product_edit_form.html"
)

// Page is the data every template receives.
type Page struct {
	Title     string
	Error     string
	ProductID uint64
}

// Renderer implements echo.Renderer. Each page is parsed together with the
// shared layout.
type Renderer struct {
	pages map[string]*template.Template
}

// NewRenderer parses all pages.
func NewRenderer() (*Renderer, error) {
	r := &Renderer{pages: make(map[string]*template.Template)}
	for _, name := range []string{Index, Login, ProductList, ProductAdd, ProductEdit} {
		t, err := template.ParseFS(templateFS, "templates/layout.html", "templates/"+name)
		if err != nil {
			return nil, fmt.Errorf("parse %s: %w", name, err)
		}
		r.pages[name] = t
	}
	return r, nil
}

// Render executes the named page through the layout.
func (r *Renderer) Render(w io.Writer, name string, data interface{}, _ echo.Context) error {
	t, ok := r.pages[name]
	if !ok {
		return fmt.Errorf("unknown page %q", name)
	}
	return t.ExecuteTemplate(w, "layout", data)
}
