package main

import (
	"encoding/json"
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// AppConfig is the process-level configuration: NATS connection, the
// metrics listener and per-stage component settings.
type AppConfig struct {
	NATS    NATSConfig             `yaml:"nats"`
	Metrics MetricsConfig          `yaml:"metrics"`
	Stages  map[string]StageConfig `yaml:"stages"`
}

// NATSConfig holds the NATS connection settings.
type NATSConfig struct {
	URL           string        `yaml:"url"`
	MaxReconnects int           `yaml:"maxReconnects"`
	ReconnectWait time.Duration `yaml:"reconnectWait"`
}

// MetricsConfig holds the Prometheus listener settings.
type MetricsConfig struct {
	Addr string `yaml:"addr"`
}

// StageConfig enables one pipeline stage and carries its component config.
type StageConfig struct {
	Enabled bool           `yaml:"enabled"`
	Config  map[string]any `yaml:"config"`
}

// RawConfig returns the stage's component config as JSON for the
// component factory.
func (s StageConfig) RawConfig() (json.RawMessage, error) {
	if s.Config == nil {
		return json.RawMessage("{}"), nil
	}
	data, err := json.Marshal(s.Config)
	if err != nil {
		return nil, fmt.Errorf("encode stage config: %w", err)
	}
	return data, nil
}

// defaultConfig runs every stage on local infrastructure with in-memory
// graph and search backends.
func defaultConfig() *AppConfig {
	return &AppConfig{
		NATS: NATSConfig{
			URL:           "nats://localhost:4222",
			MaxReconnects: -1,
			ReconnectWait: 2 * time.Second,
		},
		Metrics: MetricsConfig{Addr: ":9090"},
		Stages: map[string]StageConfig{
			"ingestor": {Enabled: true, Config: map[string]any{
				"ontology_id": 1,
				"watch_dir":   "./ontologies",
			}},
			"validator":    {Enabled: true},
			"parser":       {Enabled: true},
			"modeller":     {Enabled: true},
			"graph-loader": {Enabled: true},
			"indexer":      {Enabled: true},
			"triple-loader": {Enabled: false, Config: map[string]any{
				"graph_store_url": "http://localhost:3030/ontoflow/data",
			}},
		},
	}
}

// loadConfig reads a YAML config file, expanding ${VAR} environment
// references before parsing. An empty path returns the defaults.
func loadConfig(path string) (*AppConfig, error) {
	cfg := defaultConfig()
	if path == "" {
		return cfg, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config file: %w", err)
	}

	expanded := os.Expand(string(data), func(key string) string {
		return os.Getenv(key)
	})

	if err := yaml.Unmarshal([]byte(expanded), cfg); err != nil {
		return nil, fmt.Errorf("parse config file: %w", err)
	}
	if cfg.NATS.URL == "" {
		cfg.NATS.URL = "nats://localhost:4222"
	}
	return cfg, nil
}
