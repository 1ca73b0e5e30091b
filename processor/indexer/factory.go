package indexer

import (
	"fmt"

	"github.com/c360studio/semstreams/component"
)

// RegistryInterface defines the minimal interface needed for registration.
type RegistryInterface interface {
	RegisterWithConfig(component.RegistrationConfig) error
}

// Register registers the indexer processor with the given registry.
func Register(registry RegistryInterface) error {
	if registry == nil {
		return fmt.Errorf("registry cannot be nil")
	}
	return registry.RegisterWithConfig(component.RegistrationConfig{
		Name:        "indexer",
		Factory:     NewComponent,
		Schema:      indexerSchema,
		Type:        "processor",
		Protocol:    "jetstream",
		Domain:      "ontology",
		Description: "Indexes loaded graph vertices for search and publishes the revision",
		Version:     "1.0.0",
	})
}
