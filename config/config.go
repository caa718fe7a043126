// Package config loads the compiler's tunable constants (cell width,
// temp-cell base address, the set-value decomposition threshold) from
// an optional JSON document, validated against an embedded JSON
// Schema.
package config

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"

	"github.com/santhosh-tekuri/jsonschema/v5"
)

// DefaultCellWidth is the assumed number of distinct values a target
// Brainfuck cell holds (256 for an 8-bit cell). The generator itself
// does not need this to emit correct instructions (Brainfuck cells wrap
// at runtime regardless of what the generator assumes); it is loaded
// and validated but not read by any other package.
const DefaultCellWidth = 256

// DefaultTempBase mirrors codegen.DefaultTempBase; duplicated here
// rather than imported so that config has no dependency on codegen.
const DefaultTempBase = 100

// DefaultSqrtThreshold is the literal value at or above which
// set_value switches from a flat run of '+' to the square-root
// decomposition. The code generator uses this threshold as a fixed
// value; a SqrtThreshold loaded from a config document does not change
// it.
const DefaultSqrtThreshold = 10

// Config holds every tunable a config document may set. Only TempBase
// is passed on to the code generator; CellWidth and SqrtThreshold are
// validated and loaded but do not affect the emitted Brainfuck.
type Config struct {
	CellWidth     int `json:"cellWidth"`
	TempBase      int `json:"tempBase"`
	SqrtThreshold int `json:"sqrtThreshold"`
}

// Default returns the built-in configuration.
func Default() *Config {
	return &Config{
		CellWidth:     DefaultCellWidth,
		TempBase:      DefaultTempBase,
		SqrtThreshold: DefaultSqrtThreshold,
	}
}

// schemaDocument is the embedded JSON Schema every loaded config is
// validated against.
const schemaDocument = `{
	"$schema": "https://json-schema.org/draft/2020-12/schema",
	"$id": "https://bfc.akramoo.dev/schemas/config.json",
	"type": "object",
	"properties": {
		"cellWidth": {"type": "integer", "minimum": 2},
		"tempBase": {"type": "integer", "minimum": 0},
		"sqrtThreshold": {"type": "integer", "minimum": 1}
	},
	"additionalProperties": false
}`

const schemaID = "https://bfc.akramoo.dev/schemas/config.json"

func compileSchema() (*jsonschema.Schema, error) {
	compiler := jsonschema.NewCompiler()
	compiler.Draft = jsonschema.Draft2020

	if err := compiler.AddResource(schemaID, bytes.NewReader([]byte(schemaDocument))); err != nil {
		return nil, fmt.Errorf("config: add schema resource: %w", err)
	}

	schema, err := compiler.Compile(schemaID)
	if err != nil {
		return nil, fmt.Errorf("config: compile schema: %w", err)
	}
	return schema, nil
}

// Load reads and validates a config document from path. An empty path
// returns Default() unchanged.
func Load(path string) (*Config, error) {
	if path == "" {
		return Default(), nil
	}

	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("config: read %s: %w", path, err)
	}

	schema, err := compileSchema()
	if err != nil {
		return nil, err
	}

	var doc interface{}
	if err := json.Unmarshal(raw, &doc); err != nil {
		return nil, fmt.Errorf("config: %s is not valid JSON: %w", path, err)
	}

	if err := schema.Validate(doc); err != nil {
		return nil, fmt.Errorf("config: %s failed schema validation: %w", path, err)
	}

	cfg := Default()
	if err := json.Unmarshal(raw, cfg); err != nil {
		return nil, fmt.Errorf("config: decode %s: %w", path, err)
	}

	return cfg, nil
}
