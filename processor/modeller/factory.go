package modeller

import (
	"fmt"

	"github.com/c360studio/semstreams/component"
)

// RegistryInterface defines the minimal interface needed for registration.
type RegistryInterface interface {
	RegisterWithConfig(component.RegistrationConfig) error
}

// Register registers the modeller processor with the given registry.
func Register(registry RegistryInterface) error {
	if registry == nil {
		return fmt.Errorf("registry cannot be nil")
	}
	return registry.RegisterWithConfig(component.RegistrationConfig{
		Name:        "modeller",
		Factory:     NewComponent,
		Schema:      modellerSchema,
		Type:        "processor",
		Protocol:    "jetstream",
		Domain:      "ontology",
		Description: "Models parsed ontology declarations as a directed property graph",
		Version:     "1.0.0",
	})
}
