package indexer

import (
	"fmt"
	"reflect"

	"github.com/c360studio/semstreams/component"

	"github.com/ontoflow/ontoflow/pipeline"
)

// indexerSchema defines the configuration schema.
var indexerSchema = component.GenerateConfigSchema(reflect.TypeOf(Config{}))

// Search backends.
const (
	BackendMemory  = "memory"
	BackendElastic = "elastic"
)

// DefaultIndex is the search index holding vertex documents.
const DefaultIndex = "ontoflow-vertices"

// Config holds configuration for the indexing stage.
type Config struct {
	Ports *component.PortConfig `json:"ports" schema:"type:ports,description:Port configuration,category:basic"`

	// Backend selects the search implementation.
	Backend string `json:"backend" schema:"type:string,description:Search backend (memory or elastic),category:basic,default:memory"`

	// Index is the search index vertex documents are written to.
	Index string `json:"index" schema:"type:string,description:Search index name,category:basic,default:ontoflow-vertices"`

	// BaseURL is the Elasticsearch endpoint for the elastic backend.
	BaseURL  string `json:"base_url" schema:"type:string,description:Search cluster endpoint,category:advanced"`
	Username string `json:"username" schema:"type:string,description:Search cluster username,category:advanced"`
	Password string `json:"password" schema:"type:string,description:Search cluster password,category:advanced"`
}

// Validate checks the configuration for errors.
func (c *Config) Validate() error {
	switch c.Backend {
	case "", BackendMemory:
	case BackendElastic:
		if c.BaseURL == "" {
			return fmt.Errorf("base_url is required for the elastic backend")
		}
	default:
		return fmt.Errorf("unknown backend %q", c.Backend)
	}
	return nil
}

// GetBackend returns the configured backend, defaulting to memory.
func (c *Config) GetBackend() string {
	if c.Backend == "" {
		return BackendMemory
	}
	return c.Backend
}

// GetIndex returns the configured index name, defaulting to DefaultIndex.
func (c *Config) GetIndex() string {
	if c.Index == "" {
		return DefaultIndex
	}
	return c.Index
}

// DefaultConfig returns the default configuration for the indexer.
func DefaultConfig() Config {
	return Config{
		Ports: &component.PortConfig{
			Inputs: []component.PortDefinition{
				{
					Name:        "loaded_in",
					Type:        "jetstream",
					Subject:     pipeline.SubjectGraphLoaded,
					StreamName:  pipeline.StreamName,
					Required:    true,
					Description: "Revision events whose property graph has been loaded",
				},
			},
			Outputs: []component.PortDefinition{
				{
					Name:        "indexed_out",
					Type:        "jetstream",
					Subject:     pipeline.SubjectIndexed,
					StreamName:  pipeline.StreamName,
					Required:    true,
					Description: "Revision events whose vertices have been indexed",
				},
			},
		},
		Backend: BackendMemory,
		Index:   DefaultIndex,
	}
}
