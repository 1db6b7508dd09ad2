package web

import (
	"bytes"
	"fmt"
	"html/template"
	"io"
	"io/fs"
	"log/slog"
	"net/http"

	"github.com/shopspring/decimal"

	webembed "github.com/welwishers/weldshop/web"
)

// Templates holds parsed HTML templates.
type Templates struct {
	templates map[string]*template.Template
	css       template.CSS
}

// FuncMap returns the template function map.
func FuncMap() template.FuncMap {
	return template.FuncMap{
		"money": func(currency string, d decimal.Decimal) string {
			return currency + " " + d.StringFixed(2)
		},
	}
}

// LoadTemplates parses all page templates with the layout.
func LoadTemplates() (*Templates, error) {
	tfs := webembed.TemplatesFS()

	layoutBytes, err := fs.ReadFile(tfs, "layout.html")
	if err != nil {
		return nil, fmt.Errorf("reading layout template: %w", err)
	}
	css, err := webembed.Stylesheet()
	if err != nil {
		return nil, fmt.Errorf("reading stylesheet: %w", err)
	}

	pages := []string{
		"inventory.html",
		"invoice_new.html",
		"invoices.html",
	}

	ts := &Templates{
		templates: make(map[string]*template.Template),
		css:       template.CSS(css),
	}

	for _, page := range pages {
		pageBytes, err := fs.ReadFile(tfs, page)
		if err != nil {
			return nil, fmt.Errorf("reading template %s: %w", page, err)
		}

		tmpl := template.New(page).Funcs(FuncMap())
		tmpl, err = tmpl.Parse(string(layoutBytes))
		if err != nil {
			return nil, fmt.Errorf("parsing layout for %s: %w", page, err)
		}
		tmpl, err = tmpl.Parse(string(pageBytes))
		if err != nil {
			return nil, fmt.Errorf("parsing template %s: %w", page, err)
		}

		ts.templates[page] = tmpl
	}

	return ts, nil
}

// Execute renders the named page into w.
func (ts *Templates) Execute(w io.Writer, name string, data any) error {
	tmpl, ok := ts.templates[name]
	if !ok {
		return fmt.Errorf("template %s not found", name)
	}
	return tmpl.ExecuteTemplate(w, "layout", data)
}

// Render renders a template with the given status. The page is buffered so
// a template error still produces a clean 500.
func (ts *Templates) Render(w http.ResponseWriter, status int, name string, data any) {
	var buf bytes.Buffer
	if err := ts.Execute(&buf, name, data); err != nil {
		slog.Error("failed to render template", "template", name, "error", err)
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	if _, err := buf.WriteTo(w); err != nil {
		slog.Error("failed to write page", "template", name, "error", err)
	}
}

// PageData is the base data passed to all templates.
type PageData struct {
	Title    string
	ShopName string
	Currency string
	Active   string
	Error    string
	Success  string
	Fields   map[string]string
	// Snapshot renders a self-contained page with inline CSS and no forms
	// that need the server.
	Snapshot  bool
	InlineCSS template.CSS
}
