package blocks

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"
	"sync"

	"github.com/santhosh-tekuri/jsonschema/v5"
)

const defsSchema = `{
  "$schema": "http://json-schema.org/draft-07/schema#",
  "type": "array",
  "items": {
    "type": "object",
    "required": ["id", "name", "solid", "color"],
    "additionalProperties": false,
    "properties": {
      "id": {"type": "integer", "minimum": 0, "maximum": 65535},
      "name": {"type": "string", "minLength": 1},
      "solid": {"type": "boolean"},
      "transparent": {"type": "boolean"},
      "gravity": {"type": "boolean"},
      "hardness": {"type": "number"},
      "color": {
        "type": "array",
        "minItems": 4,
        "maxItems": 4,
        "items": {"type": "number", "minimum": 0, "maximum": 1}
      },
      "texture": {"type": "string"}
    }
  }
}`

var (
	schemaOnce sync.Once
	schema     *jsonschema.Schema
	schemaErr  error
)

func defsValidator() (*jsonschema.Schema, error) {
	schemaOnce.Do(func() {
		schema, schemaErr = jsonschema.CompileString("blocks.schema.json", defsSchema)
	})
	return schema, schemaErr
}

// Parse validates raw blocks.json content and builds a registry from it.
func Parse(raw []byte) (*Registry, error) {
	s, err := defsValidator()
	if err != nil {
		return nil, fmt.Errorf("blocks schema: %w", err)
	}
	var doc any
	if err := json.Unmarshal(raw, &doc); err != nil {
		return nil, fmt.Errorf("blocks.json: %w", err)
	}
	if err := s.Validate(doc); err != nil {
		return nil, fmt.Errorf("blocks.json: %w", err)
	}

	var defs []Def
	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.DisallowUnknownFields()
	if err := dec.Decode(&defs); err != nil {
		return nil, fmt.Errorf("blocks.json: %w", err)
	}
	r, err := NewRegistry(defs)
	if err != nil {
		return nil, fmt.Errorf("blocks.json: %w", err)
	}
	return r, nil
}

func Load(path string) (*Registry, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return Parse(raw)
}
