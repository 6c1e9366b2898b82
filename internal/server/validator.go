package server

import (
	"bytes"
	"embed"
	"encoding/json"
	"fmt"

	"github.com/santhosh-tekuri/jsonschema/v5"
)

//go:embed schemas/*.json
var schemaFiles embed.FS

// Validator checks inbound frames against the embedded JSON schemas.
type Validator struct {
	base    *jsonschema.Schema
	schemas map[MessageType]*jsonschema.Schema
}

// NewValidator compiles the embedded schemas.
func NewValidator() (*Validator, error) {
	compiler := jsonschema.NewCompiler()
	compiler.Draft = jsonschema.Draft2020

	compile := func(name string) (*jsonschema.Schema, error) {
		data, err := schemaFiles.ReadFile("schemas/" + name)
		if err != nil {
			return nil, fmt.Errorf("failed to read schema %s: %w", name, err)
		}
		url := "https://buckshot.dev/schemas/" + name
		if err := compiler.AddResource(url, bytes.NewReader(data)); err != nil {
			return nil, fmt.Errorf("failed to add schema %s: %w", name, err)
		}
		schema, err := compiler.Compile(url)
		if err != nil {
			return nil, fmt.Errorf("failed to compile schema %s: %w", name, err)
		}
		return schema, nil
	}

	base, err := compile("message.json")
	if err != nil {
		return nil, err
	}
	v := &Validator{base: base, schemas: make(map[MessageType]*jsonschema.Schema)}
	for t, name := range map[MessageType]string{
		MessageTypeReset:   "reset.json",
		MessageTypeStep:    "step.json",
		MessageTypeEpisode: "episode.json",
	} {
		if v.schemas[t], err = compile(name); err != nil {
			return nil, err
		}
	}
	return v, nil
}

// Validate checks the envelope and, for message types that carry data, the
// payload. Unknown types pass; the session rejects them itself.
func (v *Validator) Validate(raw []byte) error {
	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.UseNumber()
	var doc any
	if err := dec.Decode(&doc); err != nil {
		return fmt.Errorf("invalid JSON: %w", err)
	}
	if err := v.base.Validate(doc); err != nil {
		return err
	}

	obj := doc.(map[string]any)
	t, _ := obj["type"].(string)
	if schema, ok := v.schemas[MessageType(t)]; ok {
		return schema.Validate(doc)
	}
	return nil
}
