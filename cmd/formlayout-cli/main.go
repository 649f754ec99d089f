package main

import (
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"log"
	"os"
	"strings"

	formlayout "github.com/goliatone/go-formlayout"
	"github.com/goliatone/go-formlayout/pkg/descriptor"
	"github.com/goliatone/go-formlayout/pkg/document"
	"github.com/goliatone/go-formlayout/pkg/layout"
	"github.com/goliatone/go-formlayout/pkg/openapi"
	"github.com/goliatone/go-formlayout/pkg/prompt"
)

func main() {
	schemaPath := flag.String("schema", "", "descriptor schema path (JSON or YAML)")
	openapiPath := flag.String("openapi", "", "OpenAPI document path (alternative to -schema)")
	operation := flag.String("operation", "", "operation ID when loading from OpenAPI")
	doctype := flag.String("doctype", "Document", "doctype name for the bound document")
	mode := flag.String("mode", "html", "output mode: html, state, or interactive")
	output := flag.String("output", "", "output file (stdout if empty)")
	flag.Parse()

	ctx := context.Background()

	schema, err := loadSchema(ctx, *schemaPath, *openapiPath, *operation)
	if err != nil {
		log.Fatalf("Failed to load schema: %v", err)
	}

	doc := document.NewMap(*doctype, "")
	doc.MarkNew(true)

	form, err := formlayout.New(schema, doc,
		formlayout.WithNotifier(layout.NotifierFunc(func(fieldname string, err error) {
			log.Printf("invalid condition on %q: %v", fieldname, err)
		})),
	)
	if err != nil {
		log.Fatalf("Failed to build form: %v", err)
	}

	switch *mode {
	case "html":
		html, err := form.RenderHTML()
		if err != nil {
			log.Fatalf("Failed to render form: %v", err)
		}
		emit(*output, []byte(html))
	case "state":
		state := fieldStates(form)
		payload, err := json.MarshalIndent(state, "", "  ")
		if err != nil {
			log.Fatalf("Failed to encode state: %v", err)
		}
		emit(*output, payload)
	case "interactive":
		runner := prompt.NewRunner(form.Layout())
		submitted, err := runner.Run(ctx)
		if err != nil {
			if errors.Is(err, prompt.ErrAborted) {
				fmt.Println("aborted")
				return
			}
			log.Fatalf("Prompt walk failed: %v", err)
		}
		if !submitted {
			fmt.Println("discarded")
			return
		}
		payload, err := json.MarshalIndent(doc.Values(), "", "  ")
		if err != nil {
			log.Fatalf("Failed to encode values: %v", err)
		}
		emit(*output, payload)
	default:
		log.Fatalf("Unknown mode %q (want html, state, or interactive)", *mode)
	}
}

func loadSchema(ctx context.Context, schemaPath, openapiPath, operation string) (descriptor.Schema, error) {
	switch {
	case schemaPath != "":
		file, err := os.Open(schemaPath)
		if err != nil {
			return descriptor.Schema{}, err
		}
		defer file.Close()
		return descriptor.Load(file)
	case openapiPath != "":
		if strings.TrimSpace(operation) == "" {
			return descriptor.Schema{}, fmt.Errorf("-operation is required with -openapi")
		}
		raw, err := os.ReadFile(openapiPath)
		if err != nil {
			return descriptor.Schema{}, err
		}
		fields, err := openapi.Fields(ctx, raw, operation)
		if err != nil {
			return descriptor.Schema{}, err
		}
		return descriptor.Schema{Title: operation, Fields: fields}, nil
	default:
		return descriptor.Schema{}, fmt.Errorf("one of -schema or -openapi is required")
	}
}

type fieldState struct {
	Fieldname string `json:"fieldname"`
	Visible   bool   `json:"visible"`
	Required  bool   `json:"required"`
	ReadOnly  bool   `json:"read_only"`
	Status    string `json:"status"`
}

func fieldStates(form *formlayout.Form) []fieldState {
	l := form.Layout()
	var out []fieldState
	for _, fieldname := range l.Fieldnames() {
		state, _ := l.FieldState(fieldname)
		control, _ := l.Control(fieldname)
		status := ""
		if control != nil {
			status = string(control.Status())
		}
		out = append(out, fieldState{
			Fieldname: fieldname,
			Visible:   state.Visible,
			Required:  state.Required,
			ReadOnly:  state.ReadOnly,
			Status:    status,
		})
	}
	return out
}

func emit(path string, payload []byte) {
	if path != "" {
		if err := os.WriteFile(path, payload, 0o644); err != nil {
			log.Fatalf("Failed to write output: %v", err)
		}
		fmt.Printf("Written to %s\n", path)
		return
	}
	fmt.Println(string(payload))
}
