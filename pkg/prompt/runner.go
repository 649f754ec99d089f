package prompt

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/goliatone/go-formlayout/pkg/descriptor"
	"github.com/goliatone/go-formlayout/pkg/layout"
)

// Option configures a Runner.
type Option func(*Runner)

// WithDriver overrides the terminal driver. The default talks to the real
// terminal through survey.
func WithDriver(driver Driver) Option {
	return func(r *Runner) {
		if driver != nil {
			r.driver = driver
		}
	}
}

// Runner fills a form by walking the engine's tab order. Each answer is
// written through the field's control and followed by a refresh pass, so a
// value that reveals or hides other fields changes the remaining walk.
type Runner struct {
	layout *layout.Layout
	driver Driver
}

// NewRunner constructs a Runner over a built layout.
func NewRunner(l *layout.Layout, options ...Option) *Runner {
	r := &Runner{layout: l, driver: NewSurveyDriver()}
	for _, opt := range options {
		if opt != nil {
			opt(r)
		}
	}
	return r
}

// Run walks the form until the primary action is reached, then confirms
// submission. It reports whether the user confirmed.
func (r *Runner) Run(ctx context.Context) (bool, error) {
	r.layout.Refresh(nil)

	target := r.layout.FirstFocusable()
	for !target.PrimaryAction {
		if target.None() {
			break
		}
		if err := r.ask(ctx, target); err != nil {
			return false, err
		}
		target.Layout.RefreshWithContext(layout.RefreshContext{FocusedField: target.Fieldname}, nil)
		if target.Layout != r.layout {
			r.layout.Refresh(nil)
		}
		target = r.layout.Advance(target.Fieldname, layout.Forward)
	}

	return r.driver.Confirm(ctx, ConfirmConfig{Message: "Submit?", Default: true})
}

func (r *Runner) ask(ctx context.Context, target layout.FocusTarget) error {
	control, ok := target.Layout.Control(target.Fieldname)
	if !ok {
		return fmt.Errorf("prompt: unknown field %q", target.Fieldname)
	}
	basic, ok := control.(*layout.BasicControl)
	if !ok {
		// tables and custom controls prompt through their own row walk
		return nil
	}
	field := basic.Field()

	state, _ := target.Layout.FieldState(target.Fieldname)
	message := field.Label
	if message == "" {
		message = field.Fieldname
	}
	if state.Required {
		message += " *"
	}

	switch field.Fieldtype {
	case descriptor.TypeCheck:
		current, _ := basic.Value().(bool)
		answer, err := r.driver.Confirm(ctx, ConfirmConfig{Message: message, Default: current, Help: field.Description})
		if err != nil {
			return err
		}
		return basic.SetValue(answer)
	case descriptor.TypeSelect:
		options := field.SelectOptions()
		if len(options) == 0 {
			return nil
		}
		defaultIndex := 0
		if current, ok := basic.Value().(string); ok {
			for idx, option := range options {
				if option == current {
					defaultIndex = idx
					break
				}
			}
		}
		choice, err := r.driver.Select(ctx, SelectConfig{Message: message, Options: options, DefaultIndex: defaultIndex, Help: field.Description})
		if err != nil {
			return err
		}
		return basic.SetValue(options[choice])
	default:
		answer, err := r.driver.Input(ctx, InputConfig{Message: message, Default: currentText(basic), Help: field.Description})
		if err != nil {
			return err
		}
		return basic.SetValue(coerceAnswer(field.Fieldtype, answer))
	}
}

func currentText(control *layout.BasicControl) string {
	value := control.Value()
	if value == nil {
		return ""
	}
	return fmt.Sprint(value)
}

// coerceAnswer converts terminal input into the value type the field expects.
// Unparseable numbers degrade to the raw string so the answer is not lost.
func coerceAnswer(fieldtype descriptor.FieldType, answer string) any {
	trimmed := strings.TrimSpace(answer)
	switch fieldtype {
	case descriptor.TypeInt:
		if parsed, err := strconv.ParseInt(trimmed, 10, 64); err == nil {
			return parsed
		}
	case descriptor.TypeFloat, descriptor.TypeCurrency:
		if parsed, err := strconv.ParseFloat(trimmed, 64); err == nil {
			return parsed
		}
	}
	return answer
}
