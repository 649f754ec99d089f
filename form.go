// Package formlayout couples the descriptor schema, the live document, and
// the layout engine behind one facade. Most callers build a Form, bind a
// document, and let Refresh/Advance keep field state and keyboard focus in
// sync; the sub-packages stay available for embedders that need the pieces
// individually.
package formlayout

import (
	"fmt"

	"github.com/goliatone/go-formlayout/pkg/depends"
	"github.com/goliatone/go-formlayout/pkg/descriptor"
	"github.com/goliatone/go-formlayout/pkg/document"
	"github.com/goliatone/go-formlayout/pkg/layout"
	"github.com/goliatone/go-formlayout/pkg/render"
)

// Option configures a Form.
type Option func(*config)

type config struct {
	layoutOptions []layout.Option
	evalOptions   []depends.Option
	renderer      *render.Renderer
}

// WithPermissionGate attaches the form-permission collaborator.
func WithPermissionGate(gate layout.PermissionGate) Option {
	return func(c *config) {
		c.layoutOptions = append(c.layoutOptions, layout.WithPermissionGate(gate))
	}
}

// WithNotifier attaches the invalid-condition notice sink.
func WithNotifier(notify layout.Notifier) Option {
	return func(c *config) {
		c.layoutOptions = append(c.layoutOptions, layout.WithNotifier(notify))
	}
}

// WithNamingRule sets the synthetic name-field policy.
func WithNamingRule(rule layout.NamingRule) Option {
	return func(c *config) {
		c.layoutOptions = append(c.layoutOptions, layout.WithNamingRule(rule))
	}
}

// WithControlFactory overrides the widget factory.
func WithControlFactory(factory layout.ControlFactory) Option {
	return func(c *config) {
		c.layoutOptions = append(c.layoutOptions, layout.WithControlFactory(factory))
	}
}

// WithTriggerHandler wires the scripted-trigger collaborator that resolves
// "fn:" conditions.
func WithTriggerHandler(handler depends.TriggerHandler) Option {
	return func(c *config) {
		c.evalOptions = append(c.evalOptions, depends.WithTriggerHandler(handler))
	}
}

// WithRenderer overrides the HTML snapshot renderer.
func WithRenderer(renderer *render.Renderer) Option {
	return func(c *config) {
		c.renderer = renderer
	}
}

// Form is the assembled engine for one schema bound to one document at a
// time. The layout tree is built once and reused across document loads.
type Form struct {
	schema   descriptor.Schema
	layout   *layout.Layout
	renderer *render.Renderer
}

// New builds a Form over schema, bound to doc, and runs the initial refresh
// pass so computed state is available immediately.
func New(schema descriptor.Schema, doc document.Document, options ...Option) (*Form, error) {
	cfg := &config{}
	for _, opt := range options {
		if opt != nil {
			opt(cfg)
		}
	}

	layoutOptions := cfg.layoutOptions
	if len(cfg.evalOptions) > 0 {
		eval := depends.NewEvaluator(cfg.evalOptions...)
		layoutOptions = append(layoutOptions, layout.WithEvaluator(eval))
	}

	built, err := layout.Build(schema.Fields, doc, layoutOptions...)
	if err != nil {
		return nil, fmt.Errorf("formlayout: build layout: %w", err)
	}
	built.Refresh(nil)

	renderer := cfg.renderer
	if renderer == nil {
		renderer = render.New()
	}
	return &Form{schema: schema, layout: built, renderer: renderer}, nil
}

// Layout exposes the underlying engine.
func (f *Form) Layout() *layout.Layout { return f.layout }

// Refresh re-evaluates every field, optionally rebinding to a new document.
func (f *Form) Refresh(doc document.Document) { f.layout.Refresh(doc) }

// Advance computes the next focus target from the field currently holding
// focus.
func (f *Form) Advance(current string, dir layout.Direction) layout.FocusTarget {
	return f.layout.Advance(current, dir)
}

// AddFields appends descriptors to the live layout without rebuilding it.
func (f *Form) AddFields(fields []descriptor.Field) error {
	if err := f.layout.Append(fields); err != nil {
		return fmt.Errorf("formlayout: add fields: %w", err)
	}
	return nil
}

// RenderHTML produces the HTML snapshot of the current computed state.
func (f *Form) RenderHTML() (string, error) {
	return f.renderer.Render(f.layout, f.schema.Title)
}
