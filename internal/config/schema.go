package config

import (
	"encoding/json"
	"fmt"
	"sync"

	"github.com/santhosh-tekuri/jsonschema/v5"
)

const schemaURL = "modelcore://config.schema.json"

const schemaJSON = `{
  "$schema": "https://json-schema.org/draft/2020-12/schema",
  "type": "object",
  "additionalProperties": false,
  "properties": {
    "addr": {"type": "string"},
    "grpc_addr": {"type": "string"},
    "models_dir": {"type": "string"},
    "preload": {"type": "array", "items": {"type": "string", "minLength": 1, "maxLength": 31}},
    "stat_artifacts": {"type": "boolean"},
    "audit": {
      "type": "object",
      "additionalProperties": false,
      "properties": {
        "capacity_bytes": {"type": "integer", "minimum": 1},
        "policy": {"enum": ["drop-oldest", "reject"]}
      }
    },
    "compute": {
      "type": "object",
      "additionalProperties": false,
      "properties": {
        "backend": {"enum": ["none", "ollama"]},
        "ollama_url": {"type": "string"},
        "timeout_seconds": {"type": "integer", "minimum": 1}
      }
    },
    "log": {
      "type": "object",
      "additionalProperties": false,
      "properties": {
        "level": {"enum": ["trace", "debug", "info", "warn", "error", "off"]},
        "format": {"enum": ["console", "json"]},
        "file": {"type": "string"}
      }
    },
    "http": {
      "type": "object",
      "additionalProperties": false,
      "properties": {
        "max_body_bytes": {"type": "integer", "minimum": 1},
        "request_log": {"enum": ["off", "error", "info", "debug"]},
        "cors": {
          "type": "object",
          "additionalProperties": false,
          "properties": {
            "enabled": {"type": "boolean"},
            "allowed_origins": {"type": "array", "items": {"type": "string"}},
            "allowed_methods": {"type": "array", "items": {"type": "string"}},
            "allowed_headers": {"type": "array", "items": {"type": "string"}}
          }
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
		schema, schemaErr = jsonschema.CompileString(schemaURL, schemaJSON)
	})
	return schema, schemaErr
}

// Validate checks a decoded config document against the embedded schema.
// The document is normalized through JSON first so YAML and TOML numbers
// validate the same way as JSON ones.
func Validate(doc any) error {
	s, err := compiledSchema()
	if err != nil {
		return fmt.Errorf("compile schema: %w", err)
	}
	b, err := json.Marshal(doc)
	if err != nil {
		return fmt.Errorf("normalize config: %w", err)
	}
	var v any
	if err := json.Unmarshal(b, &v); err != nil {
		return fmt.Errorf("normalize config: %w", err)
	}
	if err := s.Validate(v); err != nil {
		return fmt.Errorf("config validation failed: %w", err)
	}
	return nil
}
