package rules

import (
	"fmt"

	"github.com/xeipuuv/gojsonschema"
)

// sourceSchema is the JSON Schema every JSON rule source must satisfy.
// Correction action types are deliberately not an enum here: an unknown type
// loads fine and is skipped at correction time.
const sourceSchema = `{
  "$schema": "http://json-schema.org/draft-07/schema#",
  "type": "object",
  "required": ["version", "rules"],
  "properties": {
    "version": {"type": "string"},
    "metadata": {"type": "object"},
    "categories": {
      "type": "object",
      "additionalProperties": {"type": "object"}
    },
    "rules": {
      "type": "array",
      "items": {
        "type": "object",
        "required": ["rule_id", "category", "validation", "correction_action"],
        "properties": {
          "rule_id": {"type": "string", "minLength": 1},
          "category": {"type": "string", "minLength": 1},
          "severity": {"enum": ["high", "medium", "low"]},
          "priority": {"type": "integer"},
          "enabled": {"type": "boolean"},
          "description": {"type": "string"},
          "location": {
            "type": "object",
            "properties": {
              "row_from_top": {"type": ["integer", "string"]},
              "table": {"type": "integer"},
              "row": {"type": "integer"},
              "column": {"type": "integer"}
            }
          },
          "validation": {"type": "object"},
          "correction_action": {
            "type": "object",
            "required": ["type"],
            "properties": {
              "type": {"type": "string"},
              "properties": {"type": "object"}
            }
          }
        }
      }
    }
  }
}`

// validateJSONSource checks raw JSON against sourceSchema and converts the
// results into field errors with JSON paths.
func validateJSONSource(data []byte) ([]FieldError, error) {
	result, err := gojsonschema.Validate(
		gojsonschema.NewStringLoader(sourceSchema),
		gojsonschema.NewBytesLoader(data),
	)
	if err != nil {
		return nil, fmt.Errorf("schema validation failed to run: %w", err)
	}

	if result.Valid() {
		return nil, nil
	}

	errs := make([]FieldError, 0, len(result.Errors()))
	for _, desc := range result.Errors() {
		field := desc.Field()
		if field == "" {
			field = "(root)"
		}
		errs = append(errs, FieldError{Field: field, Message: desc.Description()})
	}
	return errs, nil
}
