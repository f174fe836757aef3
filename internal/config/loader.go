package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	toml "github.com/pelletier/go-toml/v2"
	"gopkg.in/yaml.v3"
)

// Environment overrides.
const (
	EnvAddr   = "MODELCORE_ADDR"
	EnvConfig = "MODELCORE_CONFIG"
)

// Defaults applied by WithDefaults.
const (
	DefaultAddr           = ":8080"
	DefaultGRPCAddr       = ":9090"
	DefaultAuditCapacity  = 4096
	DefaultAuditPolicy    = "drop-oldest"
	DefaultComputeBackend = "none"
	DefaultOllamaURL      = "http://localhost:11434"
	DefaultComputeTimeout = 60
	DefaultLogLevel       = "info"
	DefaultLogFormat      = "console"
	DefaultMaxBodyBytes   = 1 << 20
)

// Config holds runtime parameters for the daemon.
// Zero values mean "unspecified" and are replaced by WithDefaults.
type Config struct {
	Addr          string   `json:"addr" yaml:"addr" toml:"addr"`
	GRPCAddr      string   `json:"grpc_addr" yaml:"grpc_addr" toml:"grpc_addr"`
	ModelsDir     string   `json:"models_dir" yaml:"models_dir" toml:"models_dir"`
	Preload       []string `json:"preload" yaml:"preload" toml:"preload"`
	StatArtifacts bool     `json:"stat_artifacts" yaml:"stat_artifacts" toml:"stat_artifacts"`

	Audit   AuditConfig   `json:"audit" yaml:"audit" toml:"audit"`
	Compute ComputeConfig `json:"compute" yaml:"compute" toml:"compute"`
	Log     LogConfig     `json:"log" yaml:"log" toml:"log"`
	HTTP    HTTPConfig    `json:"http" yaml:"http" toml:"http"`
}

type AuditConfig struct {
	CapacityBytes int    `json:"capacity_bytes" yaml:"capacity_bytes" toml:"capacity_bytes"`
	Policy        string `json:"policy" yaml:"policy" toml:"policy"`
}

// ComputeConfig selects the inference backend behind the gateway.
// Backend "none" keeps the accepted-but-unimplemented behavior.
type ComputeConfig struct {
	Backend        string `json:"backend" yaml:"backend" toml:"backend"`
	OllamaURL      string `json:"ollama_url" yaml:"ollama_url" toml:"ollama_url"`
	TimeoutSeconds int    `json:"timeout_seconds" yaml:"timeout_seconds" toml:"timeout_seconds"`
}

type LogConfig struct {
	Level  string `json:"level" yaml:"level" toml:"level"`
	Format string `json:"format" yaml:"format" toml:"format"`
	File   string `json:"file" yaml:"file" toml:"file"`
}

type HTTPConfig struct {
	MaxBodyBytes int64 `json:"max_body_bytes" yaml:"max_body_bytes" toml:"max_body_bytes"`
	// RequestLog is the per-request log level used when a request names
	// none. Empty keeps MODELCORE_REQUEST_LOG.
	RequestLog string     `json:"request_log" yaml:"request_log" toml:"request_log"`
	CORS       CORSConfig `json:"cors" yaml:"cors" toml:"cors"`
}

type CORSConfig struct {
	Enabled        bool     `json:"enabled" yaml:"enabled" toml:"enabled"`
	AllowedOrigins []string `json:"allowed_origins" yaml:"allowed_origins" toml:"allowed_origins"`
	AllowedMethods []string `json:"allowed_methods" yaml:"allowed_methods" toml:"allowed_methods"`
	AllowedHeaders []string `json:"allowed_headers" yaml:"allowed_headers" toml:"allowed_headers"`
}

// WithDefaults returns a copy of c with unspecified fields filled in.
func (c Config) WithDefaults() Config {
	if c.Addr == "" {
		c.Addr = DefaultAddr
	}
	if c.GRPCAddr == "" {
		c.GRPCAddr = DefaultGRPCAddr
	}
	if c.Audit.CapacityBytes <= 0 {
		c.Audit.CapacityBytes = DefaultAuditCapacity
	}
	if c.Audit.Policy == "" {
		c.Audit.Policy = DefaultAuditPolicy
	}
	if c.Compute.Backend == "" {
		c.Compute.Backend = DefaultComputeBackend
	}
	if c.Compute.OllamaURL == "" {
		c.Compute.OllamaURL = DefaultOllamaURL
	}
	if c.Compute.TimeoutSeconds <= 0 {
		c.Compute.TimeoutSeconds = DefaultComputeTimeout
	}
	if c.Log.Level == "" {
		c.Log.Level = DefaultLogLevel
	}
	if c.Log.Format == "" {
		c.Log.Format = DefaultLogFormat
	}
	if c.HTTP.MaxBodyBytes <= 0 {
		c.HTTP.MaxBodyBytes = DefaultMaxBodyBytes
	}
	return c
}

// ApplyEnv overrides fields from the environment.
func (c Config) ApplyEnv(getenv func(string) string) Config {
	if getenv == nil {
		getenv = os.Getenv
	}
	if v := strings.TrimSpace(getenv(EnvAddr)); v != "" {
		c.Addr = v
	}
	return c
}

// Load reads a configuration file based on its extension and validates it
// against the embedded schema.
// Supports: .yaml/.yml, .json, .toml
func Load(path string) (Config, error) {
	var cfg Config
	if path == "" {
		return cfg, fmt.Errorf("empty config path")
	}
	b, err := os.ReadFile(path)
	if err != nil {
		return cfg, err
	}
	raw, err := decode(path, b)
	if err != nil {
		return cfg, err
	}
	if err := Validate(raw); err != nil {
		return cfg, err
	}
	// Round-trip through JSON so every format lands on the same struct tags.
	norm, err := json.Marshal(raw)
	if err != nil {
		return cfg, fmt.Errorf("normalize config: %w", err)
	}
	if err := json.Unmarshal(norm, &cfg); err != nil {
		return cfg, fmt.Errorf("decode config: %w", err)
	}
	return cfg, nil
}

// decode parses b into a generic document whose maps are keyed by string.
func decode(path string, b []byte) (any, error) {
	var raw any
	switch ext := strings.ToLower(filepath.Ext(path)); ext {
	case ".yaml", ".yml":
		if err := yaml.Unmarshal(b, &raw); err != nil {
			return nil, fmt.Errorf("invalid YAML: %w", err)
		}
	case ".json":
		if err := json.Unmarshal(b, &raw); err != nil {
			return nil, fmt.Errorf("invalid JSON: %w", err)
		}
	case ".toml":
		var m map[string]any
		if err := toml.Unmarshal(b, &m); err != nil {
			return nil, fmt.Errorf("invalid TOML: %w", err)
		}
		raw = m
	default:
		return nil, fmt.Errorf("unsupported config extension: %s", ext)
	}
	if raw == nil {
		raw = map[string]any{}
	}
	return raw, nil
}
