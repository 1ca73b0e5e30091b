package graphloader

import (
	"fmt"
	"reflect"

	"github.com/c360studio/semstreams/component"

	"github.com/ontoflow/ontoflow/pipeline"
)

// graphloaderSchema defines the configuration schema.
var graphloaderSchema = component.GenerateConfigSchema(reflect.TypeOf(Config{}))

// Graph store backends.
const (
	BackendMemory  = "memory"
	BackendNeo4j   = "neo4j"
	BackendGremlin = "gremlin"
)

// Config holds configuration for the graph loading stage.
type Config struct {
	Ports *component.PortConfig `json:"ports" schema:"type:ports,description:Port configuration,category:basic"`

	// Backend selects the graph store implementation.
	Backend string `json:"backend" schema:"type:string,description:Graph store backend (memory or neo4j or gremlin),category:basic,default:memory"`

	// URI is the backend endpoint. Neo4j bolt URI or Gremlin websocket URL.
	URI      string `json:"uri" schema:"type:string,description:Graph store endpoint,category:basic"`
	Username string `json:"username" schema:"type:string,description:Graph store username,category:advanced"`
	Password string `json:"password" schema:"type:string,description:Graph store password,category:advanced"`

	// FlushPath is where the memory backend serializes its contents.
	FlushPath string `json:"flush_path" schema:"type:string,description:Snapshot path for the memory backend,category:advanced"`
}

// Validate checks the configuration for errors.
func (c *Config) Validate() error {
	switch c.Backend {
	case "", BackendMemory:
	case BackendNeo4j, BackendGremlin:
		if c.URI == "" {
			return fmt.Errorf("uri is required for the %s backend", c.Backend)
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

// DefaultConfig returns the default configuration for the graph loader.
func DefaultConfig() Config {
	return Config{
		Ports: &component.PortConfig{
			Inputs: []component.PortDefinition{
				{
					Name:        "modelled_in",
					Type:        "jetstream",
					Subject:     pipeline.SubjectModelled,
					StreamName:  pipeline.StreamName,
					Required:    true,
					Description: "Revision events whose property graph has been modelled",
				},
			},
			Outputs: []component.PortDefinition{
				{
					Name:        "loaded_out",
					Type:        "jetstream",
					Subject:     pipeline.SubjectGraphLoaded,
					StreamName:  pipeline.StreamName,
					Required:    true,
					Description: "Revision events whose property graph has been loaded",
				},
			},
		},
		Backend: BackendMemory,
	}
}
