package pipeline

import "github.com/c360studio/semstreams/component"

// BuildPort creates a component.Port from a port definition, choosing a
// JetStream or core NATS binding by the definition's type.
func BuildPort(def component.PortDefinition, direction component.Direction) component.Port {
	port := component.Port{
		Name:        def.Name,
		Direction:   direction,
		Required:    def.Required,
		Description: def.Description,
	}
	if def.Type == "jetstream" {
		port.Config = component.JetStreamPort{
			StreamName: def.StreamName,
			Subjects:   []string{def.Subject},
		}
	} else {
		port.Config = component.NATSPort{Subject: def.Subject}
	}
	return port
}

// InputPorts maps a port config's inputs to component ports.
func InputPorts(cfg *component.PortConfig) []component.Port {
	if cfg == nil {
		return []component.Port{}
	}
	ports := make([]component.Port, len(cfg.Inputs))
	for i, def := range cfg.Inputs {
		ports[i] = BuildPort(def, component.DirectionInput)
	}
	return ports
}

// OutputPorts maps a port config's outputs to component ports.
func OutputPorts(cfg *component.PortConfig) []component.Port {
	if cfg == nil {
		return []component.Port{}
	}
	ports := make([]component.Port, len(cfg.Outputs))
	for i, def := range cfg.Outputs {
		ports[i] = BuildPort(def, component.DirectionOutput)
	}
	return ports
}

// ResolveInput returns the first configured input subject and stream,
// falling back to the given defaults.
func ResolveInput(cfg *component.PortConfig, defaultSubject, defaultStream string) (subject, stream string) {
	subject, stream = defaultSubject, defaultStream
	if cfg != nil && len(cfg.Inputs) > 0 {
		subject = cfg.Inputs[0].Subject
		if cfg.Inputs[0].StreamName != "" {
			stream = cfg.Inputs[0].StreamName
		}
	}
	return subject, stream
}

// ResolveOutput returns the first configured output subject, falling back
// to the given default.
func ResolveOutput(cfg *component.PortConfig, defaultSubject string) string {
	if cfg != nil && len(cfg.Outputs) > 0 {
		return cfg.Outputs[0].Subject
	}
	return defaultSubject
}
