package api

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/santhosh-tekuri/jsonschema/v5"
)

// Request bodies are validated against compiled JSON Schemas before any
// engine work, so malformed input fails with field-level detail and never
// reaches the scorer or matcher.

const predictSingleSchema = `{
	"$schema": "https://json-schema.org/draft/2020-12/schema",
	"type": "object",
	"required": ["features"],
	"properties": {
		"features": {
			"type": "array",
			"items": {"type": "number"},
			"minItems": 6,
			"maxItems": 6
		},
		"product_id": {"type": "string"}
	},
	"additionalProperties": false
}`

const checkComplianceSchema = `{
	"$schema": "https://json-schema.org/draft/2020-12/schema",
	"type": "array",
	"items": {
		"type": "object",
		"required": ["id", "component", "description", "proposed_action", "timestamp"],
		"properties": {
			"id": {"type": "string", "minLength": 1},
			"component": {"type": "string", "minLength": 1},
			"description": {"type": "string", "minLength": 1},
			"proposed_action": {"type": "string", "minLength": 1},
			"timestamp": {"type": "string", "format": "date-time"}
		},
		"additionalProperties": false
	}
}`

type requestSchemas struct {
	predictSingle   *jsonschema.Schema
	checkCompliance *jsonschema.Schema
}

func compileSchemas() (*requestSchemas, error) {
	compile := func(name, body string) (*jsonschema.Schema, error) {
		c := jsonschema.NewCompiler()
		c.Draft = jsonschema.Draft2020
		url := fmt.Sprintf("https://sentinel.plantops.dev/schemas/%s.schema.json", name)
		if err := c.AddResource(url, strings.NewReader(body)); err != nil {
			return nil, fmt.Errorf("schema %s load failed: %w", name, err)
		}
		compiled, err := c.Compile(url)
		if err != nil {
			return nil, fmt.Errorf("schema %s compile failed: %w", name, err)
		}
		return compiled, nil
	}

	ps, err := compile("predict-single", predictSingleSchema)
	if err != nil {
		return nil, err
	}
	cc, err := compile("check-compliance", checkComplianceSchema)
	if err != nil {
		return nil, err
	}
	return &requestSchemas{predictSingle: ps, checkCompliance: cc}, nil
}

// validateJSON parses raw against the schema and returns the decoded value.
func validateJSON(schema *jsonschema.Schema, raw []byte) (any, error) {
	var value any
	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.UseNumber()
	if err := dec.Decode(&value); err != nil {
		return nil, fmt.Errorf("invalid JSON: %w", err)
	}
	if err := schema.Validate(value); err != nil {
		return nil, err
	}
	return value, nil
}
