package graphloader

import (
	"fmt"

	"github.com/c360studio/semstreams/component"
)

// RegistryInterface defines the minimal interface needed for registration.
type RegistryInterface interface {
	RegisterWithConfig(component.RegistrationConfig) error
}

// Register registers the graph loader processor with the given registry.
func Register(registry RegistryInterface) error {
	if registry == nil {
		return fmt.Errorf("registry cannot be nil")
	}
	return registry.RegisterWithConfig(component.RegistrationConfig{
		Name:        "graph-loader",
		Factory:     NewComponent,
		Schema:      graphloaderSchema,
		Type:        "processor",
		Protocol:    "jetstream",
		Domain:      "ontology",
		Description: "Loads modelled property graphs into the configured graph store",
		Version:     "1.0.0",
	})
}
