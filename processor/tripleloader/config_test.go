package tripleloader

import (
	"testing"
	"time"

	"github.com/c360studio/semstreams/component"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ontoflow/ontoflow/pipeline"
)

func TestConfigValidate(t *testing.T) {
	tests := []struct {
		name    string
		config  Config
		wantErr string
	}{
		{
			name:   "valid",
			config: Config{GraphStoreURL: "http://localhost:3030/ontoflow/data"},
		},
		{
			name:    "missing graph store url",
			config:  Config{},
			wantErr: "graph_store_url",
		},
		{
			name:    "bad timeout",
			config:  Config{GraphStoreURL: "http://localhost:3030/ontoflow/data", Timeout: "later"},
			wantErr: "timeout",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.config.Validate()
			if tt.wantErr == "" {
				assert.NoError(t, err)
			} else {
				require.Error(t, err)
				assert.Contains(t, err.Error(), tt.wantErr)
			}
		})
	}
}

func TestGetTimeout(t *testing.T) {
	assert.Equal(t, 30*time.Second, (&Config{}).GetTimeout())
	assert.Equal(t, time.Minute, (&Config{Timeout: "1m"}).GetTimeout())
}

func TestDefaultConfig(t *testing.T) {
	c := DefaultConfig()
	require.NotNil(t, c.Ports)
	require.Len(t, c.Ports.Inputs, 1)
	require.Len(t, c.Ports.Outputs, 1)
	assert.Equal(t, pipeline.SubjectValidated, c.Ports.Inputs[0].Subject)
	assert.Equal(t, pipeline.SubjectTriplestoreLoaded, c.Ports.Outputs[0].Subject)
}

type fakeRegistry struct {
	registered []component.RegistrationConfig
}

func (f *fakeRegistry) RegisterWithConfig(cfg component.RegistrationConfig) error {
	f.registered = append(f.registered, cfg)
	return nil
}

func TestRegister(t *testing.T) {
	registry := &fakeRegistry{}
	require.NoError(t, Register(registry))
	require.Len(t, registry.registered, 1)
	assert.Equal(t, "triple-loader", registry.registered[0].Name)

	assert.Error(t, Register(nil))
}
