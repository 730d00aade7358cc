// Package config loads boqmatch settings from a YAML (or JSON) file with
// environment overrides, plus the optional rules and layer-mapping files.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"

	"yashubustudio/boqmatch/boqio"
	"yashubustudio/boqmatch/gates"
	"yashubustudio/boqmatch/geometry"
	"yashubustudio/boqmatch/match"
	"yashubustudio/boqmatch/quantity"
	"yashubustudio/boqmatch/reconcile"
)

// DefaultFile is the config file looked up when no path is given.
const DefaultFile = "boqmatch.yaml"

// Environment overrides.
const (
	EnvAcceptThreshold = "BOQMATCH_ACCEPT_THRESHOLD"
	EnvWorkers         = "BOQMATCH_WORKERS"
	EnvMaxDepth        = "BOQMATCH_MAX_DEPTH"
	EnvLayerMapping    = "BOQMATCH_LAYER_MAPPING"
	EnvRules           = "BOQMATCH_RULES"
	EnvAddr            = "BOQMATCH_ADDR"
)

// Config is the full runtime configuration.
type Config struct {
	Workers     int                `yaml:"workers" json:"workers"`
	MaxDepth    int                `yaml:"max_depth" json:"max_depth"`
	ArcSegments int                `yaml:"arc_segments" json:"arc_segments"`
	UnitScale   geometry.UnitScale `yaml:"unit_scale" json:"unit_scale"`

	RulesFile   string             `yaml:"rules_file" json:"rules_file"`
	MappingFile string             `yaml:"layer_mapping_file" json:"layer_mapping_file"`
	Mapping     match.LayerMapping `yaml:"layer_mapping,omitempty" json:"layer_mapping,omitempty"`

	Scoring  match.Scoring          `yaml:"scoring" json:"scoring"`
	Quantity quantity.Options       `yaml:"quantity" json:"quantity"`
	Gates    gates.Options          `yaml:"gates" json:"gates"`
	Columns  boqio.ColumnCandidates `yaml:"columns" json:"columns"`

	Server  ServerConfig  `yaml:"server" json:"server"`
	Logging LoggingConfig `yaml:"logging" json:"logging"`
}

// ServerConfig configures the HTTP surface.
type ServerConfig struct {
	Addr         string `yaml:"addr" json:"addr"`
	MaxBodyBytes int64  `yaml:"max_body_bytes" json:"max_body_bytes"`
}

// LoggingConfig selects the log level.
type LoggingConfig struct {
	Level string `yaml:"level" json:"level"`
}

// DefaultConfig returns the built-in settings.
func DefaultConfig() *Config {
	return &Config{
		MaxDepth:    geometry.DefaultMaxDepth,
		ArcSegments: geometry.DefaultArcSegments,
		Scoring:     match.DefaultScoring(),
		Quantity:    quantity.DefaultOptions(),
		Gates:       gates.DefaultOptions(),
		Columns:     boqio.DefaultColumnCandidates(),
		Server:      ServerConfig{Addr: ":8080", MaxBodyBytes: 64 << 20},
		Logging:     LoggingConfig{Level: "info"},
	}
}

// Load reads path over the defaults. A missing file yields the defaults;
// environment overrides are applied either way. YAML is a superset of JSON,
// so both formats are accepted.
func Load(path string) (*Config, error) {
	cfg := DefaultConfig()
	if path == "" {
		path = DefaultFile
	}
	data, err := os.ReadFile(path)
	switch {
	case os.IsNotExist(err):
	case err != nil:
		return nil, fmt.Errorf("read config: %w", err)
	default:
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parse config %s: %w", filepath.Base(path), err)
		}
	}
	cfg.applyEnvOverrides()
	cfg.ApplyDefaults()
	return cfg, nil
}

// Save writes c as YAML.
func (c *Config) Save(path string) error {
	if dir := filepath.Dir(path); dir != "" && dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create config dir: %w", err)
		}
	}
	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("encode config: %w", err)
	}
	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return fmt.Errorf("write temp config: %w", err)
	}
	if err := os.Rename(tmp, path); err != nil {
		return fmt.Errorf("rename config: %w", err)
	}
	return nil
}

// ApplyDefaults fills zero values.
func (c *Config) ApplyDefaults() {
	d := DefaultConfig()
	if c.Workers < 0 {
		c.Workers = 0
	}
	if c.MaxDepth <= 0 {
		c.MaxDepth = d.MaxDepth
	}
	if c.ArcSegments <= 0 {
		c.ArcSegments = d.ArcSegments
	}
	c.Scoring = c.Scoring.ApplyDefaults()
	c.Quantity = c.Quantity.ApplyDefaults()
	c.Gates = c.Gates.ApplyDefaults()
	if c.Server.Addr == "" {
		c.Server.Addr = d.Server.Addr
	}
	if c.Server.MaxBodyBytes <= 0 {
		c.Server.MaxBodyBytes = d.Server.MaxBodyBytes
	}
	if c.Logging.Level == "" {
		c.Logging.Level = d.Logging.Level
	}
}

func (c *Config) applyEnvOverrides() {
	if v, ok := envFloat(EnvAcceptThreshold); ok {
		c.Scoring.AcceptThreshold = v
	}
	c.Workers = envInt(EnvWorkers, c.Workers)
	c.MaxDepth = envInt(EnvMaxDepth, c.MaxDepth)
	c.MappingFile = envOr(EnvLayerMapping, c.MappingFile)
	c.RulesFile = envOr(EnvRules, c.RulesFile)
	c.Server.Addr = envOr(EnvAddr, c.Server.Addr)
}

// ServiceOptions loads the rules and mapping files and assembles the
// pipeline options. Inline mapping entries win over the mapping file.
func (c *Config) ServiceOptions() (reconcile.Options, error) {
	rules, _, err := LoadRules(c.RulesFile)
	if err != nil {
		return reconcile.Options{}, err
	}
	mapping, err := LoadMapping(c.MappingFile)
	if err != nil {
		return reconcile.Options{}, err
	}
	for k, v := range c.Mapping {
		mapping[k] = append([]string(nil), v...)
	}
	return reconcile.Options{
		Workers:     c.Workers,
		MaxDepth:    c.MaxDepth,
		ArcSegments: c.ArcSegments,
		UnitScale:   c.UnitScale,
		Rules:       rules,
		Mapping:     mapping,
		Scoring:     c.Scoring,
		Quantity:    c.Quantity,
		Gates:       c.Gates,
	}, nil
}

// ItemOptions returns the line-item reader options with the configured
// column names.
func (c *Config) ItemOptions() boqio.ItemOptions {
	return boqio.ItemOptions{Columns: c.Columns}
}

func envOr(key, fallback string) string {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		return v
	}
	return fallback
}

func envInt(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(strings.TrimSpace(v)); err == nil {
			return n
		}
	}
	return fallback
}

func envFloat(key string) (float64, bool) {
	v := os.Getenv(key)
	if v == "" {
		return 0, false
	}
	f, err := strconv.ParseFloat(strings.TrimSpace(v), 64)
	if err != nil {
		return 0, false
	}
	return f, true
}
