package protocol

import (
	"bytes"
	"embed"
	"encoding/json"
	"fmt"
	"sync"

	"github.com/santhosh-tekuri/jsonschema/v5"
)

//go:embed schemas/*.schema.json
var schemaFS embed.FS

var schemaFiles = map[string]string{
	TypeHello:     "hello.schema.json",
	TypeWelcome:   "welcome.schema.json",
	TypeFrame:     "frame.schema.json",
	TypeAct:       "act.schema.json",
	TypeActResult: "act_result.schema.json",
}

var (
	schemasOnce sync.Once
	schemas     map[string]*jsonschema.Schema
	schemasErr  error
)

func compileSchemas() {
	c := jsonschema.NewCompiler()
	for _, name := range schemaFiles {
		raw, err := schemaFS.ReadFile("schemas/" + name)
		if err != nil {
			schemasErr = err
			return
		}
		if err := c.AddResource(name, bytes.NewReader(raw)); err != nil {
			schemasErr = fmt.Errorf("schema %s: %w", name, err)
			return
		}
	}
	out := make(map[string]*jsonschema.Schema, len(schemaFiles))
	for kind, name := range schemaFiles {
		s, err := c.Compile(name)
		if err != nil {
			schemasErr = fmt.Errorf("compile %s: %w", name, err)
			return
		}
		out[kind] = s
	}
	schemas = out
}

// Schema returns the raw JSON schema for a message type.
func Schema(kind string) ([]byte, bool) {
	name, ok := schemaFiles[kind]
	if !ok {
		return nil, false
	}
	raw, err := schemaFS.ReadFile("schemas/" + name)
	return raw, err == nil
}

// Validate checks raw against the schema of the given message type.
func Validate(kind string, raw []byte) error {
	schemasOnce.Do(compileSchemas)
	if schemasErr != nil {
		return schemasErr
	}
	s, ok := schemas[kind]
	if !ok {
		return fmt.Errorf("protocol: no schema for %q", kind)
	}
	var doc any
	if err := json.Unmarshal(raw, &doc); err != nil {
		return fmt.Errorf("%s: %w", kind, err)
	}
	if err := s.Validate(doc); err != nil {
		return fmt.Errorf("%s: %w", kind, err)
	}
	return nil
}
