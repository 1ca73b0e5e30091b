package ingestor

import (
	"fmt"

	"github.com/c360studio/semstreams/component"
)

// RegistryInterface defines the minimal interface needed for registration.
type RegistryInterface interface {
	RegisterWithConfig(component.RegistrationConfig) error
}

// Register registers the ingestor input component with the given registry.
func Register(registry RegistryInterface) error {
	if registry == nil {
		return fmt.Errorf("registry cannot be nil")
	}
	return registry.RegisterWithConfig(component.RegistrationConfig{
		Name:        "ingestor",
		Factory:     NewComponent,
		Schema:      ingestorSchema,
		Type:        "input",
		Protocol:    "fs",
		Domain:      "ontology",
		Description: "Watches a directory for ontology documents and emits revision events",
		Version:     "1.0.0",
	})
}
