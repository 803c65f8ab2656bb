package engine

import (
	"context"
	"fmt"
	"sort"

	"github.com/xeipuuv/gojsonschema"
)

// ToolFunc executes a tool with validated arguments and returns the result
// content fed back to the model.
type ToolFunc func(ctx context.Context, args map[string]any) (string, error)

// Tool is one operation the model may invoke.
type Tool struct {
	Name        string
	Description string
	SchemaJSON  string // JSON Schema for the arguments
	Fn          ToolFunc
}

// ValidateArgs checks the call arguments against the tool's JSON Schema.
func (t Tool) ValidateArgs(args map[string]any) error {
	if t.SchemaJSON == "" {
		return nil
	}
	schemaLoader := gojsonschema.NewStringLoader(t.SchemaJSON)
	docLoader := gojsonschema.NewGoLoader(args)

	result, err := gojsonschema.Validate(schemaLoader, docLoader)
	if err != nil {
		return fmt.Errorf("schema validation failed for %s: %w", t.Name, err)
	}
	if !result.Valid() {
		verr := &ToolValidationError{ToolName: t.Name}
		for _, e := range result.Errors() {
			verr.Problems = append(verr.Problems, e.String())
		}
		return verr
	}
	return nil
}

// ToolRegistry is the fixed set of tools exposed to the model, keyed by
// name. The set is closed for the lifetime of a run.
type ToolRegistry map[string]Tool

// Schemas returns the tool descriptions sent with every request, in stable
// name order.
func (r ToolRegistry) Schemas() []ToolSchema {
	names := make([]string, 0, len(r))
	for name := range r {
		names = append(names, name)
	}
	sort.Strings(names)

	schemas := make([]ToolSchema, 0, len(names))
	for _, name := range names {
		t := r[name]
		schemas = append(schemas, ToolSchema{
			Name:        t.Name,
			Description: t.Description,
			JSONSchema:  t.SchemaJSON,
		})
	}
	return schemas
}
