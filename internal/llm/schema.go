package llm

import (
	"bytes"
	"encoding/json"
	"fmt"

	"github.com/santhosh-tekuri/jsonschema/v5"
)

// BuildShortlistJSONSchema returns a JSON-Schema (draft 2020-12 subset) as a
// generic map. We embed it in the prompt and also use it locally to validate.
func BuildShortlistJSONSchema(cap int) map[string]any {
	item := map[string]any{
		"type":                 "object",
		"additionalProperties": false,
		"properties": map[string]any{
			"filename": map[string]any{"type": "string", "minLength": 1},
			"name":     map[string]any{"type": "string"},
			"email":    map[string]any{"type": "string"},
			"phone":    map[string]any{"type": "string"},
			"reason":   map[string]any{"type": "string", "minLength": 1},
		},
		"required": []string{"filename", "reason"},
	}
	out := map[string]any{
		"type":  "array",
		"items": item,
	}
	if cap > 0 {
		out["maxItems"] = cap
	}
	return out
}

// BuildQuestionsJSONSchema constrains the per-candidate screening question list.
func BuildQuestionsJSONSchema(min int) map[string]any {
	item := map[string]any{
		"type":                 "object",
		"additionalProperties": false,
		"properties": map[string]any{
			"question":        map[string]any{"type": "string", "minLength": 1},
			"expected_answer": map[string]any{"type": "string"},
		},
		"required": []string{"question"},
	}
	out := map[string]any{
		"type":  "array",
		"items": item,
	}
	if min > 0 {
		out["minItems"] = min
	}
	return out
}

// BuildScoreJSONSchema constrains the evaluation verdict for one candidate.
func BuildScoreJSONSchema() map[string]any {
	return map[string]any{
		"type":                 "object",
		"additionalProperties": false,
		"properties": map[string]any{
			"filename": map[string]any{"type": "string", "minLength": 1},
			"score":    map[string]any{"type": "integer", "minimum": 0, "maximum": 100},
			"reason":   map[string]any{"type": "string", "minLength": 1},
		},
		"required": []string{"filename", "score", "reason"},
	}
}

// ValidateJSONAgainstSchema validates doc against the given schema map.
func ValidateJSONAgainstSchema(schema map[string]any, doc []byte) error {
	sb, err := json.Marshal(schema)
	if err != nil {
		return fmt.Errorf("encode schema: %w", err)
	}
	c := jsonschema.NewCompiler()
	if err := c.AddResource("schema.json", bytes.NewReader(sb)); err != nil {
		return fmt.Errorf("add schema resource: %w", err)
	}
	sch, err := c.Compile("schema.json")
	if err != nil {
		return fmt.Errorf("compile schema: %w", err)
	}
	var v any
	if err := json.Unmarshal(doc, &v); err != nil {
		return fmt.Errorf("decode document: %w", err)
	}
	return sch.Validate(v)
}
