package depends

import (
	"strings"

	"github.com/goliatone/go-formlayout/pkg/depends/expr"
	"github.com/goliatone/go-formlayout/pkg/document"
)

// TriggerHandler is the scripted-trigger collaborator "fn:" conditions
// delegate to. It is scoped to the owning form; evaluators built without one
// have no form context.
type TriggerHandler interface {
	Trigger(event, doctype, docname string) bool
}

// Option configures an Evaluator.
type Option func(*Evaluator)

// WithTriggerHandler attaches the form-scoped trigger collaborator that
// resolves "fn:" conditions.
func WithTriggerHandler(handler TriggerHandler) Option {
	return func(e *Evaluator) {
		e.triggers = handler
	}
}

// WithLogger installs a sink for non-fatal evaluation notices such as
// unknown fieldname references.
func WithLogger(logf func(format string, args ...any)) Option {
	return func(e *Evaluator) {
		e.logf = logf
	}
}

// Evaluator resolves Conditions against a document and its optional parent.
type Evaluator struct {
	expr     *expr.Evaluator
	triggers TriggerHandler
	logf     func(format string, args ...any)
}

// NewEvaluator constructs an Evaluator.
func NewEvaluator(options ...Option) *Evaluator {
	eval := &Evaluator{expr: expr.New()}
	for _, opt := range options {
		if opt != nil {
			opt(eval)
		}
	}
	return eval
}

// Evaluate resolves cond against doc. The only error it returns is
// *EvalError for a malformed or failing "eval:" expression; every other
// degraded case (missing trigger scope, unknown fieldname) resolves to false
// without error, matching the containment contract.
func (e *Evaluator) Evaluate(cond Condition, doc document.Document) (bool, error) {
	switch cond.kind {
	case KindNone:
		return true, nil
	case KindBool:
		return cond.boolean, nil
	case KindFunc:
		if cond.fn == nil || doc == nil {
			return false, nil
		}
		return cond.fn(doc), nil
	case KindEval:
		return e.evalExpression(cond.text, doc)
	case KindTrigger:
		if e.triggers == nil || doc == nil {
			e.logfIfSet("depends: %v (condition %q)", ErrMissingScope, cond.text)
			return false, nil
		}
		return e.triggers.Trigger(cond.text, doc.Doctype(), doc.Name()), nil
	case KindFieldname:
		if doc == nil {
			return false, nil
		}
		value, ok := doc.Get(cond.text)
		if !ok {
			e.logfIfSet("depends: unknown field %q referenced by condition", cond.text)
			return false, nil
		}
		return expr.Truthy(value), nil
	default:
		return false, nil
	}
}

func (e *Evaluator) evalExpression(text string, doc document.Document) (bool, error) {
	// Compatibility carve-out: submittable checks inside child-table rows are
	// forced true. Row documents carry no submission lifecycle of their own.
	if doc != nil && doc.IsChildRow() && strings.Contains(text, "is_submittable") {
		return true, nil
	}

	ctx := expr.Context{}
	if doc != nil {
		ctx.Doc = doc.Get
		if parent := doc.Parent(); parent != nil {
			ctx.Parent = parent.Get
		}
	}

	outcome, err := e.expr.Eval(text, ctx)
	if err != nil {
		return false, &EvalError{Expr: text, Err: err}
	}
	return outcome, nil
}

func (e *Evaluator) logfIfSet(format string, args ...any) {
	if e.logf != nil {
		e.logf(format, args...)
	}
}
