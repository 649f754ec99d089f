package depends

import (
	"errors"
	"strings"
	"testing"

	"github.com/goliatone/go-formlayout/pkg/document"
)

func TestParseClassifiesShapes(t *testing.T) {
	t.Parallel()

	if got := Parse(nil); !got.IsZero() {
		t.Fatalf("Parse(nil) should be zero, got kind %v", got.Kind())
	}
	if got := Parse("  "); !got.IsZero() {
		t.Fatalf("Parse(blank) should be zero, got kind %v", got.Kind())
	}
	if got := Parse(true); got.Kind() != KindBool {
		t.Fatalf("Parse(bool) kind = %v, want KindBool", got.Kind())
	}
	if got := Parse(func(document.Document) bool { return true }); got.Kind() != KindFunc {
		t.Fatalf("Parse(func) kind = %v, want KindFunc", got.Kind())
	}
	if got := Parse("eval: doc.status == 'Open'"); got.Kind() != KindEval || got.Text() != "doc.status == 'Open'" {
		t.Fatalf("Parse(eval) = kind %v text %q", got.Kind(), got.Text())
	}
	if got := Parse("fn:is_opportunity"); got.Kind() != KindTrigger || got.Text() != "is_opportunity" {
		t.Fatalf("Parse(fn) = kind %v text %q", got.Kind(), got.Text())
	}
	if got := Parse("status"); got.Kind() != KindFieldname || got.Text() != "status" {
		t.Fatalf("Parse(fieldname) = kind %v text %q", got.Kind(), got.Text())
	}
}

func TestEvaluateZeroConditionIsTrue(t *testing.T) {
	t.Parallel()

	eval := NewEvaluator()
	ok, err := eval.Evaluate(Condition{}, document.NewMap("Task", "TASK-1"))
	if err != nil {
		t.Fatalf("Evaluate returned error: %v", err)
	}
	if !ok {
		t.Fatalf("no condition should evaluate true")
	}
}

func TestEvaluateFieldnameTruthiness(t *testing.T) {
	t.Parallel()

	eval := NewEvaluator()
	doc := document.NewMap("Task", "TASK-1")
	doc.Set("priority", "High")
	doc.Set("archived", 0)

	ok, err := eval.Evaluate(Parse("priority"), doc)
	if err != nil {
		t.Fatalf("Evaluate returned error: %v", err)
	}
	if !ok {
		t.Fatalf("non-empty field should be truthy")
	}

	ok, err = eval.Evaluate(Parse("archived"), doc)
	if err != nil {
		t.Fatalf("Evaluate returned error: %v", err)
	}
	if ok {
		t.Fatalf("zero field should be falsy")
	}
}

func TestEvaluateUnknownFieldnameIsFalseAndLogged(t *testing.T) {
	t.Parallel()

	var logged []string
	eval := NewEvaluator(WithLogger(func(format string, args ...any) {
		logged = append(logged, format)
	}))

	ok, err := eval.Evaluate(Parse("no_such_field"), document.NewMap("Task", "TASK-1"))
	if err != nil {
		t.Fatalf("Evaluate returned error: %v", err)
	}
	if ok {
		t.Fatalf("unknown field should resolve false, not error")
	}
	if len(logged) != 1 {
		t.Fatalf("expected one log notice, got %d", len(logged))
	}
}

func TestEvaluateFuncCondition(t *testing.T) {
	t.Parallel()

	eval := NewEvaluator()
	doc := document.NewMap("Task", "TASK-1")
	doc.Set("status", "Open")

	cond := Parse(Predicate(func(d document.Document) bool {
		value, _ := d.Get("status")
		return value == "Open"
	}))

	ok, err := eval.Evaluate(cond, doc)
	if err != nil {
		t.Fatalf("Evaluate returned error: %v", err)
	}
	if !ok {
		t.Fatalf("predicate should see the bound document")
	}
}

func TestEvaluateEvalExpression(t *testing.T) {
	t.Parallel()

	eval := NewEvaluator()
	doc := document.NewMap("Task", "TASK-1")
	doc.Set("status", "Open")

	ok, err := eval.Evaluate(Parse("eval: doc.status == 'Open'"), doc)
	if err != nil {
		t.Fatalf("Evaluate returned error: %v", err)
	}
	if !ok {
		t.Fatalf("expected expression to be true")
	}

	doc.Set("status", "Closed")
	ok, err = eval.Evaluate(Parse("eval: doc.status == 'Open'"), doc)
	if err != nil {
		t.Fatalf("Evaluate returned error: %v", err)
	}
	if ok {
		t.Fatalf("expected expression to flip false")
	}
}

func TestEvaluateMalformedEvalReturnsEvalError(t *testing.T) {
	t.Parallel()

	eval := NewEvaluator()
	_, err := eval.Evaluate(Parse("eval: doc.status =="), document.NewMap("Task", "TASK-1"))
	if err == nil {
		t.Fatalf("expected error for malformed expression")
	}
	var evalErr *EvalError
	if !errors.As(err, &evalErr) {
		t.Fatalf("expected *EvalError, got %T", err)
	}
	if !strings.Contains(evalErr.Error(), "doc.status ==") {
		t.Fatalf("error should carry the expression, got %q", evalErr.Error())
	}
}

func TestEvaluateChildRowSubmittableCarveOut(t *testing.T) {
	t.Parallel()

	eval := NewEvaluator()
	parent := document.NewMap("Order", "ORD-1")
	row := document.NewChildRow(parent, "Order Item")

	// submittable checks are meaningless at row level and always pass
	ok, err := eval.Evaluate(Parse("eval: parent.is_submittable == 1"), row)
	if err != nil {
		t.Fatalf("Evaluate returned error: %v", err)
	}
	if !ok {
		t.Fatalf("expected submittable check to be forced true in child rows")
	}
}

func TestEvaluateParentBindingInChildRow(t *testing.T) {
	t.Parallel()

	eval := NewEvaluator()
	parent := document.NewMap("Order", "ORD-1")
	parent.Set("currency", "EUR")
	row := document.NewChildRow(parent, "Order Item")
	row.Set("qty", 2)

	ok, err := eval.Evaluate(Parse("eval: parent.currency == 'EUR' && doc.qty > 1"), row)
	if err != nil {
		t.Fatalf("Evaluate returned error: %v", err)
	}
	if !ok {
		t.Fatalf("expected parent binding to resolve the owning document")
	}
}

type recordingTriggers struct {
	events []string
	result bool
}

func (r *recordingTriggers) Trigger(event, doctype, docname string) bool {
	r.events = append(r.events, event+"/"+doctype+"/"+docname)
	return r.result
}

func TestEvaluateTriggerCondition(t *testing.T) {
	t.Parallel()

	triggers := &recordingTriggers{result: true}
	eval := NewEvaluator(WithTriggerHandler(triggers))
	doc := document.NewMap("Lead", "LEAD-7")

	ok, err := eval.Evaluate(Parse("fn:is_opportunity"), doc)
	if err != nil {
		t.Fatalf("Evaluate returned error: %v", err)
	}
	if !ok {
		t.Fatalf("expected trigger outcome to pass through")
	}
	if len(triggers.events) != 1 || triggers.events[0] != "is_opportunity/Lead/LEAD-7" {
		t.Fatalf("unexpected trigger invocation: %v", triggers.events)
	}
}

func TestEvaluateTriggerWithoutScopeIsFalse(t *testing.T) {
	t.Parallel()

	var logged int
	eval := NewEvaluator(WithLogger(func(string, ...any) { logged++ }))

	ok, err := eval.Evaluate(Parse("fn:is_opportunity"), document.NewMap("Lead", "LEAD-7"))
	if err != nil {
		t.Fatalf("Evaluate returned error: %v", err)
	}
	if ok {
		t.Fatalf("fn condition without a handler must degrade to false")
	}
	if logged != 1 {
		t.Fatalf("expected one scope notice, got %d", logged)
	}
}
