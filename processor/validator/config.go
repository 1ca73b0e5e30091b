package validator

import (
	"reflect"

	"github.com/c360studio/semstreams/component"

	"github.com/ontoflow/ontoflow/pipeline"
)

// validatorSchema defines the configuration schema.
var validatorSchema = component.GenerateConfigSchema(reflect.TypeOf(Config{}))

// Config holds configuration for the validation stage.
type Config struct {
	Ports *component.PortConfig `json:"ports" schema:"type:ports,description:Port configuration,category:basic"`
}

// Validate checks the configuration for errors.
func (c *Config) Validate() error {
	return nil
}

// DefaultConfig returns the default configuration for the validator.
func DefaultConfig() Config {
	return Config{
		Ports: &component.PortConfig{
			Inputs: []component.PortDefinition{
				{
					Name:        "ingested_in",
					Type:        "jetstream",
					Subject:     pipeline.SubjectIngested,
					StreamName:  pipeline.StreamName,
					Required:    true,
					Description: "Revision events for newly ingested ontology documents",
				},
			},
			Outputs: []component.PortDefinition{
				{
					Name:        "validated_out",
					Type:        "jetstream",
					Subject:     pipeline.SubjectValidated,
					StreamName:  pipeline.StreamName,
					Required:    true,
					Description: "Revision events whose source document passed validation",
				},
			},
		},
	}
}
