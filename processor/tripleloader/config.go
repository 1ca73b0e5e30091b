package tripleloader

import (
	"fmt"
	"reflect"
	"time"

	"github.com/c360studio/semstreams/component"

	"github.com/ontoflow/ontoflow/pipeline"
)

// tripleloaderSchema defines the configuration schema.
var tripleloaderSchema = component.GenerateConfigSchema(reflect.TypeOf(Config{}))

// Config holds configuration for the triplestore loading stage.
type Config struct {
	Ports *component.PortConfig `json:"ports" schema:"type:ports,description:Port configuration,category:basic"`

	// GraphStoreURL is the SPARQL Graph Store endpoint documents are
	// written to, e.g. http://localhost:3030/ontoflow/data.
	GraphStoreURL string `json:"graph_store_url" schema:"type:string,description:SPARQL graph store endpoint,category:basic"`

	// QueryURL is the SPARQL query endpoint.
	QueryURL string `json:"query_url" schema:"type:string,description:SPARQL query endpoint,category:advanced"`

	// Timeout bounds each triplestore request.
	Timeout string `json:"timeout" schema:"type:string,description:Request timeout,category:advanced,default:30s"`
}

// Validate checks the configuration for errors.
func (c *Config) Validate() error {
	if c.GraphStoreURL == "" {
		return fmt.Errorf("graph_store_url is required")
	}
	if c.Timeout != "" {
		if _, err := time.ParseDuration(c.Timeout); err != nil {
			return fmt.Errorf("invalid timeout: %w", err)
		}
	}
	return nil
}

// GetTimeout returns the request timeout as a duration.
func (c *Config) GetTimeout() time.Duration {
	if c.Timeout == "" {
		return 30 * time.Second
	}
	d, err := time.ParseDuration(c.Timeout)
	if err != nil {
		return 30 * time.Second
	}
	return d
}

// DefaultConfig returns the default configuration for the triple loader.
func DefaultConfig() Config {
	return Config{
		Ports: &component.PortConfig{
			Inputs: []component.PortDefinition{
				{
					Name:        "validated_in",
					Type:        "jetstream",
					Subject:     pipeline.SubjectValidated,
					StreamName:  pipeline.StreamName,
					Required:    true,
					Description: "Revision events whose source document passed validation",
				},
			},
			Outputs: []component.PortDefinition{
				{
					Name:        "loaded_out",
					Type:        "jetstream",
					Subject:     pipeline.SubjectTriplestoreLoaded,
					StreamName:  pipeline.StreamName,
					Required:    true,
					Description: "Revision events whose document has been loaded into the triplestore",
				},
			},
		},
		Timeout: "30s",
	}
}
