package ingestor

import (
	"fmt"
	"reflect"
	"time"

	"github.com/c360studio/semstreams/component"

	"github.com/ontoflow/ontoflow/pipeline"
)

// ingestorSchema defines the configuration schema.
var ingestorSchema = component.GenerateConfigSchema(reflect.TypeOf(Config{}))

// Config holds configuration for the ingest input component.
type Config struct {
	Ports      *component.PortConfig `json:"ports" schema:"type:ports,description:Port configuration,category:basic"`
	OntologyID int64                 `json:"ontology_id" schema:"type:number,description:Ontology id the watched directory belongs to,category:basic"`
	WatchDir   string                `json:"watch_dir" schema:"type:string,description:Directory watched for ontology documents,category:basic,default:./ontologies"`
	Include    []string              `json:"include" schema:"type:array,description:Doublestar patterns selecting ontology documents,category:advanced"`
	Debounce   string                `json:"debounce" schema:"type:string,description:Debounce delay before ingesting a change,category:advanced,default:500ms"`
}

// Validate checks the configuration for errors.
func (c *Config) Validate() error {
	if c.OntologyID <= 0 {
		return fmt.Errorf("ontology_id is required")
	}
	if c.WatchDir == "" {
		return fmt.Errorf("watch_dir is required")
	}
	if c.Debounce != "" {
		if _, err := time.ParseDuration(c.Debounce); err != nil {
			return fmt.Errorf("invalid debounce: %w", err)
		}
	}
	return nil
}

// GetDebounce returns the debounce delay as a duration.
func (c *Config) GetDebounce() time.Duration {
	if c.Debounce == "" {
		return 500 * time.Millisecond
	}
	d, err := time.ParseDuration(c.Debounce)
	if err != nil {
		return 500 * time.Millisecond
	}
	return d
}

// DefaultConfig returns the default configuration for the ingestor.
func DefaultConfig() Config {
	return Config{
		Ports: &component.PortConfig{
			Outputs: []component.PortDefinition{
				{
					Name:        "ingested_out",
					Type:        "jetstream",
					Subject:     pipeline.SubjectIngested,
					StreamName:  pipeline.StreamName,
					Required:    true,
					Description: "Revision events for newly ingested ontology documents",
				},
			},
		},
		WatchDir: "./ontologies",
		Debounce: "500ms",
	}
}
