// Package depends interprets the declarative conditions that drive field
// visibility, required-ness, read-only state, and section collapse. A raw
// condition can arrive in five shapes; Parse classifies it exactly once into
// a closed Condition variant so evaluation is an exhaustive switch rather
// than string sniffing at every call site.
package depends

import (
	"strings"

	"github.com/goliatone/go-formlayout/pkg/depends/expr"
	"github.com/goliatone/go-formlayout/pkg/document"
)

// Kind identifies the shape of a parsed condition.
type Kind int

const (
	// KindNone means no condition was supplied.
	KindNone Kind = iota
	// KindBool is a literal boolean outcome.
	KindBool
	// KindFunc is a Go predicate invoked with the document.
	KindFunc
	// KindEval is a sandboxed "eval:" expression over doc and parent.
	KindEval
	// KindTrigger is an "fn:" delegate handled by the owning form's
	// scripted-trigger collaborator.
	KindTrigger
	// KindFieldname is a plain fieldname looked up in the document.
	KindFieldname
)

// Predicate is the callable condition shape.
type Predicate func(doc document.Document) bool

// Condition is the parsed, immutable form of a raw condition value.
type Condition struct {
	kind    Kind
	boolean bool
	fn      Predicate
	text    string
}

// Parse classifies raw into a Condition. Strings are dispatched on their
// prefix: "eval:" marks a sandboxed expression, "fn:" a trigger delegate, and
// anything else is treated as a fieldname lookup. Unknown non-string shapes
// degrade to their truthiness so a malformed schema cannot panic the engine.
func Parse(raw any) Condition {
	switch v := raw.(type) {
	case nil:
		return Condition{}
	case bool:
		return Condition{kind: KindBool, boolean: v}
	case Predicate:
		return Condition{kind: KindFunc, fn: v}
	case func(document.Document) bool:
		return Condition{kind: KindFunc, fn: v}
	case string:
		trimmed := strings.TrimSpace(v)
		if trimmed == "" {
			return Condition{}
		}
		if rest, ok := strings.CutPrefix(trimmed, "eval:"); ok {
			return Condition{kind: KindEval, text: strings.TrimSpace(rest)}
		}
		if rest, ok := strings.CutPrefix(trimmed, "fn:"); ok {
			return Condition{kind: KindTrigger, text: strings.TrimSpace(rest)}
		}
		return Condition{kind: KindFieldname, text: trimmed}
	default:
		return Condition{kind: KindBool, boolean: expr.Truthy(raw)}
	}
}

// Kind returns the condition variant.
func (c Condition) Kind() Kind { return c.kind }

// IsZero reports whether no condition was supplied.
func (c Condition) IsZero() bool { return c.kind == KindNone }

// Text returns the expression body, trigger name, or fieldname for the
// string-backed variants.
func (c Condition) Text() string { return c.text }
