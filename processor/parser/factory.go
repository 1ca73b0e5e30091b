package parser

import (
	"fmt"

	"github.com/c360studio/semstreams/component"
)

// RegistryInterface defines the minimal interface needed for registration.
type RegistryInterface interface {
	RegisterWithConfig(component.RegistrationConfig) error
}

// Register registers the parser processor with the given registry.
func Register(registry RegistryInterface) error {
	if registry == nil {
		return fmt.Errorf("registry cannot be nil")
	}
	return registry.RegisterWithConfig(component.RegistrationConfig{
		Name:        "parser",
		Factory:     NewComponent,
		Schema:      parserSchema,
		Type:        "processor",
		Protocol:    "jetstream",
		Domain:      "ontology",
		Description: "Parses validated ontology documents into structured declarations",
		Version:     "1.0.0",
	})
}
