// Package render produces static HTML snapshots of a refreshed layout. The
// snapshot mirrors exactly what the engine computed: hidden and empty
// sections are elided, collapsed sections render closed, and each column
// carries its share of the 12-unit grid. Rendering never re-evaluates
// dependencies; callers refresh the layout first.
package render

import (
	"embed"
	"errors"
	"fmt"
	"io/fs"
	"sort"
	"strings"
	"sync"

	"github.com/flosch/pongo2/v6"
	theme "github.com/goliatone/go-theme"

	"github.com/goliatone/go-formlayout/pkg/layout"
)

//go:embed templates
var templatesFS embed.FS

const formTemplate = "templates/form.tpl"

// Option configures a Renderer.
type Option func(*Renderer)

// WithTemplateFS overrides the embedded template set. The filesystem must
// contain templates/form.tpl.
func WithTemplateFS(fsys fs.FS) Option {
	return func(r *Renderer) {
		if fsys != nil {
			r.templates = fsys
		}
	}
}

// WithTheme attaches a go-theme renderer configuration whose tokens and CSS
// variables are exposed to the template.
func WithTheme(cfg *theme.RendererConfig) Option {
	return func(r *Renderer) {
		r.theme = cfg
	}
}

// Renderer renders layout snapshots to HTML.
type Renderer struct {
	templates fs.FS
	theme     *theme.RendererConfig

	mu       sync.Mutex
	set      *pongo2.TemplateSet
	compiled *pongo2.Template
}

// New constructs a Renderer.
func New(options ...Option) *Renderer {
	r := &Renderer{templates: templatesFS}
	for _, opt := range options {
		if opt != nil {
			opt(r)
		}
	}
	return r
}

// Render produces the HTML snapshot for l with an optional form title.
func (r *Renderer) Render(l *layout.Layout, title string) (string, error) {
	if l == nil {
		return "", errors.New("render: layout is nil")
	}
	tmpl, err := r.template()
	if err != nil {
		return "", err
	}

	ctx := pongo2.Context{
		"title": title,
		"pages": r.pageContexts(l.Snapshot()),
		"theme": buildThemeContext(r.theme),
	}
	out, err := tmpl.Execute(ctx)
	if err != nil {
		return "", fmt.Errorf("render: execute template: %w", err)
	}
	return out, nil
}

func (r *Renderer) template() (*pongo2.Template, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.compiled != nil {
		return r.compiled, nil
	}
	if r.set == nil {
		r.set = pongo2.NewSet("formlayout", pongo2.NewFSLoader(r.templates))
	}
	tmpl, err := r.set.FromFile(formTemplate)
	if err != nil {
		return nil, fmt.Errorf("render: load template %q: %w", formTemplate, err)
	}
	r.compiled = tmpl
	return tmpl, nil
}

// pageContext flattens the engine's view types into the plain maps pongo2
// handles most predictably.
func (r *Renderer) pageContexts(pages []layout.PageView) []pongo2.Context {
	out := make([]pongo2.Context, 0, len(pages))
	for _, page := range pages {
		sections := make([]pongo2.Context, 0, len(page.Sections))
		for _, section := range page.Sections {
			if section.Empty {
				continue
			}
			columns := make([]pongo2.Context, 0, len(section.Columns))
			for _, column := range section.Columns {
				fields := make([]pongo2.Context, 0, len(column.Fields))
				for _, field := range column.Fields {
					if !field.State.Visible || field.Status == layout.StatusNone {
						continue
					}
					fields = append(fields, pongo2.Context{
						"fieldname":   field.Field.Fieldname,
						"fieldtype":   string(field.Field.Fieldtype),
						"label":       field.Field.Label,
						"description": field.Field.Description,
						"required":    field.State.Required,
						"read_only":   field.State.ReadOnly,
						"status":      string(field.Status),
					})
				}
				columns = append(columns, pongo2.Context{
					"span":   column.Span,
					"fields": fields,
				})
			}
			sections = append(sections, pongo2.Context{
				"label":       section.Label,
				"description": section.Description,
				"collapsible": section.Collapsible,
				"collapsed":   section.Collapsed,
				"columns":     columns,
			})
		}
		out = append(out, pongo2.Context{
			"fold":     page.Fold,
			"folded":   page.Folded,
			"sections": sections,
		})
	}
	return out
}

// rendererTheme is the theme payload exposed to templates.
type rendererTheme struct {
	Name         string
	Variant      string
	Tokens       map[string]string
	CSSVars      map[string]string
	CSSVarsStyle string
}

func buildThemeContext(cfg *theme.RendererConfig) rendererTheme {
	if cfg == nil {
		return rendererTheme{}
	}
	ctx := rendererTheme{
		Name:    cfg.Theme,
		Variant: cfg.Variant,
		Tokens:  copyStringMap(cfg.Tokens),
		CSSVars: copyStringMap(cfg.CSSVars),
	}
	ctx.CSSVarsStyle = cssVarsStyle(ctx.CSSVars)
	return ctx
}

func cssVarsStyle(vars map[string]string) string {
	if len(vars) == 0 {
		return ""
	}
	names := make([]string, 0, len(vars))
	for name := range vars {
		names = append(names, name)
	}
	sort.Strings(names)
	parts := make([]string, 0, len(names))
	for _, name := range names {
		trimmed := strings.TrimSpace(name)
		if trimmed == "" {
			continue
		}
		if !strings.HasPrefix(trimmed, "--") {
			trimmed = "--" + trimmed
		}
		parts = append(parts, trimmed+": "+strings.TrimSpace(vars[name]))
	}
	if len(parts) == 0 {
		return ""
	}
	return strings.Join(parts, "; ")
}

func copyStringMap(in map[string]string) map[string]string {
	if len(in) == 0 {
		return nil
	}
	out := make(map[string]string, len(in))
	for key, value := range in {
		out[key] = value
	}
	return out
}
