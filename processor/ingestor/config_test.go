package ingestor

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
			config: Config{OntologyID: 1, WatchDir: "./ontologies"},
		},
		{
			name:    "missing ontology id",
			config:  Config{WatchDir: "./ontologies"},
			wantErr: "ontology_id",
		},
		{
			name:    "missing watch dir",
			config:  Config{OntologyID: 1},
			wantErr: "watch_dir",
		},
		{
			name:    "bad debounce",
			config:  Config{OntologyID: 1, WatchDir: ".", Debounce: "soon"},
			wantErr: "debounce",
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

func TestGetDebounce(t *testing.T) {
	c := Config{Debounce: "2s"}
	assert.Equal(t, 2*time.Second, c.GetDebounce())

	c = Config{}
	assert.Equal(t, 500*time.Millisecond, c.GetDebounce())
}

func TestDefaultConfig(t *testing.T) {
	c := DefaultConfig()
	require.NotNil(t, c.Ports)
	require.Len(t, c.Ports.Outputs, 1)
	assert.Equal(t, pipeline.SubjectIngested, c.Ports.Outputs[0].Subject)
	assert.Equal(t, pipeline.StreamName, c.Ports.Outputs[0].StreamName)
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
	assert.Equal(t, "ingestor", registry.registered[0].Name)
	assert.Equal(t, "input", registry.registered[0].Type)

	assert.Error(t, Register(nil))
}
