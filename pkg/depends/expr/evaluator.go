// Package expr implements the sandboxed condition language used by "eval:"
// dependency expressions. The interpreter exposes exactly two bindings, doc
// and parent, plus a fixed allow-list of pure helpers; there is no ambient
// application state, no mutation, and no I/O.
//
// Supported grammar:
//   - truthiness checks: `doc.status`, `!doc.archived`
//   - comparisons: `doc.status == "Open"`, `doc.qty >= 10`, `parent.type != null`
//   - helpers: `in_list(doc.status, "Open", "Pending")`, `is_empty(doc.items)`
//   - composition: `a && (b || !c)`
//
// Bare identifiers resolve against doc, so `status == "Open"` and
// `doc.status == "Open"` are equivalent.
package expr

import (
	"fmt"
	"strconv"
	"strings"
)

// Lookup resolves a fieldname to a value. A false second return means the
// field does not exist in the bound document.
type Lookup func(fieldname string) (any, bool)

// Context carries the two bindings an expression may reference. Parent may be
// nil for top-level documents; `parent.x` then resolves to null.
type Context struct {
	Doc    Lookup
	Parent Lookup
}

// Evaluator parses and evaluates condition expressions. The zero value is
// ready to use.
type Evaluator struct{}

func New() *Evaluator { return &Evaluator{} }

// Eval evaluates rule against ctx and returns its boolean outcome. An empty
// rule is vacuously true.
func (e *Evaluator) Eval(rule string, ctx Context) (bool, error) {
	trimmed := strings.TrimSpace(rule)
	if trimmed == "" {
		return true, nil
	}

	tokens, err := tokenize(trimmed)
	if err != nil {
		return false, err
	}
	if len(tokens) == 0 {
		return true, nil
	}

	node, err := parseExpression(tokens)
	if err != nil {
		return false, err
	}
	return node.eval(ctx)
}

// boolNode is an expression position that yields a boolean.
type boolNode interface {
	eval(ctx Context) (bool, error)
}

// valueNode is an operand position that yields an arbitrary value.
type valueNode interface {
	value(ctx Context) (any, error)
}

type orNode struct {
	left  boolNode
	right boolNode
}

func (n orNode) eval(ctx Context) (bool, error) {
	ok, err := n.left.eval(ctx)
	if err != nil {
		return false, err
	}
	if ok {
		return true, nil
	}
	return n.right.eval(ctx)
}

type andNode struct {
	left  boolNode
	right boolNode
}

func (n andNode) eval(ctx Context) (bool, error) {
	ok, err := n.left.eval(ctx)
	if err != nil {
		return false, err
	}
	if !ok {
		return false, nil
	}
	return n.right.eval(ctx)
}

type notNode struct {
	inner boolNode
}

func (n notNode) eval(ctx Context) (bool, error) {
	ok, err := n.inner.eval(ctx)
	if err != nil {
		return false, err
	}
	return !ok, nil
}

type truthyNode struct {
	operand valueNode
}

func (n truthyNode) eval(ctx Context) (bool, error) {
	value, err := n.operand.value(ctx)
	if err != nil {
		return false, err
	}
	return Truthy(value), nil
}

type compareNode struct {
	left  valueNode
	op    tokenKind
	right valueNode
}

func (n compareNode) eval(ctx Context) (bool, error) {
	left, err := n.left.value(ctx)
	if err != nil {
		return false, err
	}
	right, err := n.right.value(ctx)
	if err != nil {
		return false, err
	}

	switch n.op {
	case tokenEq:
		return equal(left, right), nil
	case tokenNeq:
		return !equal(left, right), nil
	}

	leftNum, leftOK := coerceNumber(left)
	rightNum, rightOK := coerceNumber(right)
	if leftOK && rightOK {
		switch n.op {
		case tokenLt:
			return leftNum < rightNum, nil
		case tokenLte:
			return leftNum <= rightNum, nil
		case tokenGt:
			return leftNum > rightNum, nil
		case tokenGte:
			return leftNum >= rightNum, nil
		}
	}

	leftStr := coerceString(left)
	rightStr := coerceString(right)
	switch n.op {
	case tokenLt:
		return leftStr < rightStr, nil
	case tokenLte:
		return leftStr <= rightStr, nil
	case tokenGt:
		return leftStr > rightStr, nil
	case tokenGte:
		return leftStr >= rightStr, nil
	}
	return false, fmt.Errorf("depends/expr: unsupported comparison operator")
}

type literalNode struct {
	val any
}

func (n literalNode) value(Context) (any, error) { return n.val, nil }

type pathNode struct {
	path string
}

func (n pathNode) value(ctx Context) (any, error) {
	path := n.path
	lookup := ctx.Doc
	switch {
	case strings.HasPrefix(path, "doc."):
		path = path[len("doc."):]
	case path == "doc":
		return nil, fmt.Errorf("depends/expr: bare doc binding is not a value")
	case strings.HasPrefix(path, "parent."):
		path = path[len("parent."):]
		lookup = ctx.Parent
	case path == "parent":
		// `parent` alone is a null check on the binding itself.
		if ctx.Parent == nil {
			return nil, nil
		}
		return true, nil
	}
	if lookup == nil {
		return nil, nil
	}
	value, ok := lookup(path)
	if !ok {
		return nil, nil
	}
	return value, nil
}

type callNode struct {
	name string
	args []valueNode
}

func (n callNode) value(ctx Context) (any, error) {
	helper, ok := helpers[n.name]
	if !ok {
		return nil, fmt.Errorf("depends/expr: unknown helper %q", n.name)
	}
	args := make([]any, len(n.args))
	for idx, arg := range n.args {
		value, err := arg.value(ctx)
		if err != nil {
			return nil, err
		}
		args[idx] = value
	}
	return helper(args)
}

// helpers is the fixed allow-list of pure functions expressions may call.
var helpers = map[string]func(args []any) (any, error){
	"in_list": func(args []any) (any, error) {
		if len(args) < 2 {
			return nil, fmt.Errorf("depends/expr: in_list needs a value and at least one candidate")
		}
		needle := coerceString(args[0])
		for _, candidate := range args[1:] {
			if coerceString(candidate) == needle {
				return true, nil
			}
		}
		return false, nil
	},
	"is_empty": func(args []any) (any, error) {
		if len(args) != 1 {
			return nil, fmt.Errorf("depends/expr: is_empty takes exactly one argument")
		}
		return !Truthy(args[0]), nil
	},
}

func equal(left, right any) bool {
	if left == nil || right == nil {
		return left == nil && right == nil
	}
	if leftNum, ok := coerceNumber(left); ok {
		if rightNum, rightOK := coerceNumber(right); rightOK {
			return leftNum == rightNum
		}
	}
	if leftBool, ok := left.(bool); ok {
		rightBool, _ := coerceBool(right)
		return leftBool == rightBool
	}
	if rightBool, ok := right.(bool); ok {
		leftBool, _ := coerceBool(left)
		return leftBool == rightBool
	}
	return coerceString(left) == coerceString(right)
}

// Truthy applies the engine-wide truthiness rules: nil, empty strings, zero
// numbers, and empty collections are false; everything else is true.
func Truthy(value any) bool {
	if value == nil {
		return false
	}
	switch v := value.(type) {
	case bool:
		return v
	case string:
		return strings.TrimSpace(v) != ""
	case int:
		return v != 0
	case int32:
		return v != 0
	case int64:
		return v != 0
	case float32:
		return v != 0
	case float64:
		return v != 0
	case []any:
		return len(v) > 0
	case []string:
		return len(v) > 0
	case map[string]any:
		return len(v) > 0
	default:
		return true
	}
}

func coerceBool(value any) (bool, bool) {
	if value == nil {
		return false, false
	}
	switch v := value.(type) {
	case bool:
		return v, true
	case string:
		parsed, err := strconv.ParseBool(strings.TrimSpace(v))
		if err == nil {
			return parsed, true
		}
		return strings.TrimSpace(v) != "", true
	default:
		return Truthy(value), true
	}
}

func coerceNumber(value any) (float64, bool) {
	switch v := value.(type) {
	case float64:
		return v, true
	case float32:
		return float64(v), true
	case int:
		return float64(v), true
	case int32:
		return float64(v), true
	case int64:
		return float64(v), true
	case uint:
		return float64(v), true
	case uint64:
		return float64(v), true
	case string:
		f, err := strconv.ParseFloat(strings.TrimSpace(v), 64)
		return f, err == nil
	default:
		return 0, false
	}
}

func coerceString(value any) string {
	if value == nil {
		return ""
	}
	switch v := value.(type) {
	case string:
		return v
	case []byte:
		return string(v)
	case bool:
		if v {
			return "true"
		}
		return "false"
	case float64:
		return strconv.FormatFloat(v, 'f', -1, 64)
	default:
		return fmt.Sprint(value)
	}
}
