package compose

import (
	"embed"
	"fmt"
	"html/template"
	"io"
	"sync"

	"certificate-generator/internal/domain"
)

// Logical size of every certificate layout, roughly A4 landscape at 96dpi.
const (
	LogicalWidth  = 1122
	LogicalHeight = 794
)

//go:embed templates/*.html
var templateFS embed.FS

// Template is one entry of the closed layout catalogue.
type Template struct {
	Style       domain.TemplateStyle `json:"id"`
	Name        string               `json:"name"`
	Description string               `json:"description"`

	// honorsCustomMessage lets the organiser's message replace the computed
	// achievement text. Only the minimal layout does this.
	honorsCustomMessage bool
	tpl                 *template.Template
}

// Render writes the full HTML document for v.
func (t *Template) Render(w io.Writer, v View) error {
	return t.tpl.ExecuteTemplate(w, "document", v)
}

// HonorsCustomMessage reports whether the template prints customMessage.
func (t *Template) HonorsCustomMessage() bool { return t.honorsCustomMessage }

var catalogue = []Template{
	{Style: domain.Template1, Name: "Recognition Blue", Description: "Ribbon badge with deep blue curves"},
	{Style: domain.Template2, Name: "Minimal Achievement", Description: "Clean blue gradient header", honorsCustomMessage: true},
	{Style: domain.Template3, Name: "Playful Participation", Description: "Teal playful shapes"},
	{Style: domain.Template4, Name: "Bold Modern", Description: "Geometric blocks and accents"},
}

// Registry maps template styles to parsed layouts.
type Registry struct {
	byStyle map[domain.TemplateStyle]*Template
	order   []*Template
}

// NewRegistry parses every embedded layout against the shared base document.
func NewRegistry() (*Registry, error) {
	r := &Registry{byStyle: make(map[domain.TemplateStyle]*Template, len(catalogue))}
	for _, entry := range catalogue {
		tpl, err := template.New("base.html").ParseFS(templateFS,
			"templates/base.html",
			fmt.Sprintf("templates/%s.html", entry.Style),
		)
		if err != nil {
			return nil, fmt.Errorf("parse template %s: %w", entry.Style, err)
		}
		t := entry
		t.tpl = tpl
		r.byStyle[t.Style] = &t
		r.order = append(r.order, &t)
	}
	if _, ok := r.byStyle[domain.DefaultTemplate]; !ok {
		return nil, fmt.Errorf("default template %s not registered", domain.DefaultTemplate)
	}
	return r, nil
}

var (
	defaultRegistry     *Registry
	defaultRegistryErr  error
	defaultRegistryOnce sync.Once
)

// DefaultRegistry returns the process-wide registry built from the embedded
// templates. The templates ship with the binary, so a parse failure is a
// build defect and panics.
func DefaultRegistry() *Registry {
	defaultRegistryOnce.Do(func() {
		defaultRegistry, defaultRegistryErr = NewRegistry()
	})
	if defaultRegistryErr != nil {
		panic(defaultRegistryErr)
	}
	return defaultRegistry
}

// Lookup returns the layout for style, falling back to template1 for
// anything unknown.
func (r *Registry) Lookup(style domain.TemplateStyle) *Template {
	return r.byStyle[domain.ResolveTemplateStyle(style)]
}

// List returns the catalogue in display order.
func (r *Registry) List() []Template {
	out := make([]Template, 0, len(r.order))
	for _, t := range r.order {
		out = append(out, *t)
	}
	return out
}
