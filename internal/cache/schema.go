package cache

import (
	"encoding/json"
	"fmt"
	"strings"
	"sync"

	"github.com/santhosh-tekuri/jsonschema/v5"
)

// entrySchema describes a persisted ExtractionResult.
const entrySchema = `{
  "$schema": "http://json-schema.org/draft-07/schema#",
  "type": "object",
  "required": ["year_headers", "rows", "unit_label"],
  "properties": {
    "year_headers": {"type": "array", "items": {"type": "string"}},
    "unit_label": {"type": "string"},
    "method": {"type": "string"},
    "pages": {"type": "integer", "minimum": 0},
    "rows": {
      "type": "array",
      "items": {
        "type": "object",
        "required": ["label", "values"],
        "properties": {
          "label": {"type": "string", "minLength": 1},
          "values": {"type": "array", "items": {"type": ["number", "string", "null"]}},
          "indent": {"type": "integer", "minimum": 0},
          "section_hint": {"type": "string"},
          "is_section_header": {"type": "boolean"}
        }
      }
    }
  }
}`

var (
	schemaOnce sync.Once
	schema     *jsonschema.Schema
	schemaErr  error
)

func compiledSchema() (*jsonschema.Schema, error) {
	schemaOnce.Do(func() {
		compiler := jsonschema.NewCompiler()
		if err := compiler.AddResource("entry.json", strings.NewReader(entrySchema)); err != nil {
			schemaErr = fmt.Errorf("add schema: %w", err)
			return
		}
		schema, schemaErr = compiler.Compile("entry.json")
		if schemaErr != nil {
			schemaErr = fmt.Errorf("compile schema: %w", schemaErr)
		}
	})
	return schema, schemaErr
}

// ValidateEntry checks a raw cache payload before it is decoded.
func ValidateEntry(payload []byte) error {
	s, err := compiledSchema()
	if err != nil {
		return err
	}
	var v any
	if err := json.Unmarshal(payload, &v); err != nil {
		return fmt.Errorf("unmarshal entry: %w", err)
	}
	if err := s.Validate(v); err != nil {
		return fmt.Errorf("entry does not match schema: %w", err)
	}
	return nil
}
