package graph

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNormaliseValue(t *testing.T) {
	tests := []struct {
		name  string
		key   string
		value string
		want  any
	}{
		{
			name:  "single valued passthrough",
			key:   "description",
			value: "A set of linked nodes, possibly nested",
			want:  "A set of linked nodes, possibly nested",
		},
		{
			name:  "synonym split on comma",
			key:   "synonym",
			value: "Network, Transport Network",
			want:  []string{"Network", "Transport Network"},
		},
		{
			name:  "synonym duplicates collapse",
			key:   "synonym",
			value: "LAN, WAN, LAN",
			want:  []string{"LAN", "WAN"},
		},
		{
			name:  "business area splits on whitespace too",
			key:   "businessArea",
			value: "Network Security",
			want:  []string{"Network", "Security"},
		},
		{
			name:  "subdomain mixed separators",
			key:   "subdomain",
			value: "Core Network, Access",
			want:  []string{"Access", "Core", "Network"},
		},
		{
			name:  "empty tokens dropped",
			key:   "relatedTerm",
			value: "Firewall, , Proxy",
			want:  []string{"Firewall", "Proxy"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, NormaliseValue(tt.key, tt.value))
		})
	}
}

func TestIsMultiValued(t *testing.T) {
	assert.True(t, IsMultiValued("synonym"))
	assert.True(t, IsMultiValued("businessArea"))
	assert.False(t, IsMultiValued("definition"))
	assert.False(t, IsMultiValued("relationship"))
}
