package analysis

import (
	"fmt"

	"github.com/xeipuuv/gojsonschema"
)

// resultSchema type-checks the repaired model reply before it is decoded.
// It is deliberately loose: every property is optional (defaults backfill
// later) and confidence is only required to be a number, since out-of-range
// values get clamped rather than rejected.
const resultSchema = `{
  "type": "object",
  "properties": {
    "selectors": {
      "type": "object",
      "additionalProperties": {
        "type": ["array", "null"],
        "items": {"type": "string"}
      }
    },
    "data_fields": {
      "type": "object",
      "additionalProperties": {
        "type": "object",
        "properties": {
          "selector": {"type": ["string", "null"]},
          "type": {"type": ["string", "null"]},
          "attribute": {"type": ["string", "null"]},
          "fallback_patterns": {
            "type": ["array", "null"],
            "items": {"type": "string"}
          }
        }
      }
    },
    "interactions": {"type": "object"},
    "input_fields": {"type": "object"},
    "extraction": {
      "type": "object",
      "additionalProperties": {
        "type": ["array", "null"],
        "items": {"type": "string"}
      }
    },
    "confidence": {"type": "number"},
    "notes": {"type": ["string", "null"]}
  }
}`

var resultSchemaLoader = gojsonschema.NewStringLoader(resultSchema)

// checkResultSchema validates the raw JSON document against resultSchema.
func checkResultSchema(document string) error {
	result, err := gojsonschema.Validate(resultSchemaLoader, gojsonschema.NewStringLoader(document))
	if err != nil {
		return &ParseError{Message: "schema validation failed", Cause: err}
	}
	if !result.Valid() {
		first := ""
		if errs := result.Errors(); len(errs) > 0 {
			first = errs[0].String()
		}
		return &ParseError{Message: fmt.Sprintf("reply does not match analysis schema: %s", first)}
	}
	return nil
}
