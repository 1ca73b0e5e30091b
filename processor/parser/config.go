package parser

import (
	"reflect"

	"github.com/c360studio/semstreams/component"

	"github.com/ontoflow/ontoflow/pipeline"
)

// parserSchema defines the configuration schema.
var parserSchema = component.GenerateConfigSchema(reflect.TypeOf(Config{}))

// Config holds configuration for the parsing stage.
type Config struct {
	Ports *component.PortConfig `json:"ports" schema:"type:ports,description:Port configuration,category:basic"`
}

// Validate checks the configuration for errors.
func (c *Config) Validate() error {
	return nil
}

// DefaultConfig returns the default configuration for the parser.
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
					Name:        "parsed_out",
					Type:        "jetstream",
					Subject:     pipeline.SubjectParsed,
					StreamName:  pipeline.StreamName,
					Required:    true,
					Description: "Revision events whose source document has been parsed",
				},
			},
		},
	}
}
