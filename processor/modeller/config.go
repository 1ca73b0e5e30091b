package modeller

import (
	"reflect"

	"github.com/c360studio/semstreams/component"

	"github.com/ontoflow/ontoflow/pipeline"
)

// modellerSchema defines the configuration schema.
var modellerSchema = component.GenerateConfigSchema(reflect.TypeOf(Config{}))

// Config holds configuration for the modelling stage.
type Config struct {
	Ports *component.PortConfig `json:"ports" schema:"type:ports,description:Port configuration,category:basic"`
}

// Validate checks the configuration for errors.
func (c *Config) Validate() error {
	return nil
}

// DefaultConfig returns the default configuration for the modeller.
func DefaultConfig() Config {
	return Config{
		Ports: &component.PortConfig{
			Inputs: []component.PortDefinition{
				{
					Name:        "parsed_in",
					Type:        "jetstream",
					Subject:     pipeline.SubjectParsed,
					StreamName:  pipeline.StreamName,
					Required:    true,
					Description: "Revision events whose source document has been parsed",
				},
			},
			Outputs: []component.PortDefinition{
				{
					Name:        "modelled_out",
					Type:        "jetstream",
					Subject:     pipeline.SubjectModelled,
					StreamName:  pipeline.StreamName,
					Required:    true,
					Description: "Revision events whose property graph has been modelled",
				},
			},
		},
	}
}
