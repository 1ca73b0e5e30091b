package tripleloader

import (
	"fmt"

	"github.com/c360studio/semstreams/component"
)

// RegistryInterface defines the minimal interface needed for registration.
type RegistryInterface interface {
	RegisterWithConfig(component.RegistrationConfig) error
}

// Register registers the triple loader processor with the given registry.
func Register(registry RegistryInterface) error {
	if registry == nil {
		return fmt.Errorf("registry cannot be nil")
	}
	return registry.RegisterWithConfig(component.RegistrationConfig{
		Name:        "triple-loader",
		Factory:     NewComponent,
		Schema:      tripleloaderSchema,
		Type:        "processor",
		Protocol:    "jetstream",
		Domain:      "ontology",
		Description: "Loads validated ontology documents into the RDF triplestore",
		Version:     "1.0.0",
	})
}
