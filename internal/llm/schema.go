package llm

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/tidwall/gjson"
)

// Schema declares the JSON object a backend call must return. Properties
// holds standard JSON-schema property definitions; every property listed in
// Required must be present and non-null in the response.
type Schema struct {
	Name        string
	Description string
	Properties  map[string]any
	Required    []string
}

// Definition renders the schema as a strict JSON-schema object.
func (s Schema) Definition() map[string]any {
	return map[string]any{
		"type":                 "object",
		"properties":           s.Properties,
		"required":             s.Required,
		"additionalProperties": false,
	}
}

// decodeInto validates raw against the schema and unmarshals it into out.
// Models occasionally wrap JSON in a markdown code fence; tolerate that.
func decodeInto(raw string, schema Schema, out any) error {
	raw = stripFences(raw)
	if !gjson.Valid(raw) {
		return fmt.Errorf("%w (%s): response is not valid JSON", ErrSchemaValidation, schema.Name)
	}
	for _, field := range schema.Required {
		v := gjson.Get(raw, field)
		if !v.Exists() || v.Type == gjson.Null {
			return fmt.Errorf("%w (%s): missing required field %q", ErrSchemaValidation, schema.Name, field)
		}
	}
	if err := json.Unmarshal([]byte(raw), out); err != nil {
		return fmt.Errorf("%w (%s): %v", ErrSchemaValidation, schema.Name, err)
	}
	return nil
}

func stripFences(raw string) string {
	raw = strings.TrimSpace(raw)
	if !strings.HasPrefix(raw, "```") {
		return raw
	}
	raw = strings.TrimPrefix(raw, "```json")
	raw = strings.TrimPrefix(raw, "```")
	raw = strings.TrimSuffix(strings.TrimSpace(raw), "```")
	return strings.TrimSpace(raw)
}
