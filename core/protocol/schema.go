package protocol

import (
	"fmt"
	"strings"

	"github.com/xeipuuv/gojsonschema"
)

// planSchema describes the reconcile plan response.
const planSchema = `{
  "$schema": "http://json-schema.org/draft-07/schema#",
  "type": "object",
  "required": ["downloadIds", "uploadIds", "conflicts"],
  "properties": {
    "summary": {"type": ["object", "null"]},
    "downloadIds": {"type": "array", "items": {"type": "string"}},
    "uploadIds": {"type": "array", "items": {"type": "string"}},
    "deleteLocalIds": {"type": ["array", "null"], "items": {"type": "string"}},
    "conflicts": {
      "type": "array",
      "items": {
        "type": "object",
        "required": ["id"],
        "properties": {
          "id": {"type": "string"},
          "reason": {"type": ["string", "null"]},
          "localTimestamp": {"type": ["string", "null"]},
          "serverTimestamp": {"type": ["string", "null"]}
        }
      }
    }
  }
}`

func compilePlanSchema() (*gojsonschema.Schema, error) {
	schema, err := gojsonschema.NewSchema(gojsonschema.NewStringLoader(planSchema))
	if err != nil {
		return nil, fmt.Errorf("failed to compile plan schema: %w", err)
	}
	return schema, nil
}

// validate checks body against schema and joins every violation into one error.
func validate(schema *gojsonschema.Schema, body []byte) error {
	result, err := schema.Validate(gojsonschema.NewBytesLoader(body))
	if err != nil {
		return fmt.Errorf("malformed JSON: %w", err)
	}
	if result.Valid() {
		return nil
	}
	msgs := make([]string, 0, len(result.Errors()))
	for _, e := range result.Errors() {
		msgs = append(msgs, e.String())
	}
	return fmt.Errorf("schema violation: %s", strings.Join(msgs, "; "))
}
