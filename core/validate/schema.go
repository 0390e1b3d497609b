package validate

import (
	"bytes"
	"encoding/json"
	"fmt"
	"sync"

	"github.com/santhosh-tekuri/jsonschema/v5"
)

// extractionSchema describes the low-level extractor's cache file.
// Unknown keys (such as "md" or "name") are allowed.
var extractionSchema = map[string]any{
	"$schema":  "http://json-schema.org/draft-07/schema#",
	"type":     "object",
	"required": []any{"paragraphs", "images"},
	"properties": map[string]any{
		"paragraphs": map[string]any{
			"type": "array",
			"items": map[string]any{
				"type":     "object",
				"required": []any{"page_num", "y0", "text"},
				"properties": map[string]any{
					"page_num": map[string]any{"type": "integer", "minimum": 1},
					"y0":       map[string]any{"type": "number"},
					"text":     map[string]any{"type": "string"},
				},
			},
		},
		"images": map[string]any{
			"type": "array",
			"items": map[string]any{
				"type":     "object",
				"required": []any{"page_num", "y0", "path"},
				"properties": map[string]any{
					"page_num": map[string]any{"type": "integer", "minimum": 1},
					"y0":       map[string]any{"type": "number"},
					"path":     map[string]any{"type": "string", "minLength": 1},
				},
			},
		},
	},
}

// compiledSchema compiles the extraction schema once per process.
var compiledSchema = sync.OnceValues(func() (*jsonschema.Schema, error) {
	b, err := json.Marshal(extractionSchema)
	if err != nil {
		return nil, fmt.Errorf("marshal schema: %w", err)
	}
	compiler := jsonschema.NewCompiler()
	if err := compiler.AddResource("extraction.json", bytes.NewReader(b)); err != nil {
		return nil, fmt.Errorf("add schema: %w", err)
	}
	schema, err := compiler.Compile("extraction.json")
	if err != nil {
		return nil, fmt.Errorf("compile schema: %w", err)
	}
	return schema, nil
})

// Warmup compiles the extraction schema ahead of the first document.
func Warmup() error {
	_, err := compiledSchema()
	return err
}

// ExtractionJSON validates raw extraction-cache bytes against the schema.
// Schema violations are reported as *Error.
func ExtractionJSON(data []byte) error {
	schema, err := compiledSchema()
	if err != nil {
		return err
	}

	var v any
	if err := json.Unmarshal(data, &v); err != nil {
		return &Error{Fields: []FieldError{{Field: "$", Message: "malformed JSON: " + err.Error()}}}
	}

	if err := schema.Validate(v); err != nil {
		return schemaError(err)
	}
	return nil
}

// schemaError flattens jsonschema's nested causes into field errors.
func schemaError(err error) error {
	ve, ok := err.(*jsonschema.ValidationError)
	if !ok {
		return fmt.Errorf("json does not match schema: %w", err)
	}

	var fields []FieldError
	var walk func(e *jsonschema.ValidationError)
	walk = func(e *jsonschema.ValidationError) {
		if len(e.Causes) == 0 {
			loc := e.InstanceLocation
			if loc == "" {
				loc = "$"
			}
			fields = append(fields, FieldError{Field: loc, Message: e.Message})
			return
		}
		for _, c := range e.Causes {
			walk(c)
		}
	}
	walk(ve)
	return &Error{Fields: fields}
}
