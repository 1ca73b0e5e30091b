package vocabulary

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultCatalogue(t *testing.T) {
	c := Default()
	require.NotNil(t, c)

	// Default is cached per process.
	assert.Same(t, c, Default())

	prop, ok := c.ResolveIRI(SKOSPrefLabel)
	require.True(t, ok)
	assert.Equal(t, "Preferred Label", prop.Label)
	assert.True(t, prop.Standard)
	assert.Equal(t, "preferredLabel", prop.Key())
}

func TestResolveLabelCaseInsensitive(t *testing.T) {
	c := Default()

	for _, label := range []string{"definition", "Definition", "DEFINITION"} {
		prop, ok := c.ResolveLabel(label)
		require.True(t, ok, "label %q should resolve", label)
		assert.Equal(t, SKOSDefinition, prop.IRI)
	}
}

func TestLaterSourcesOverrideOnLabelCollision(t *testing.T) {
	first := []AnnotationProperty{{IRI: "http://a#p", Label: "Comment"}}
	second := []AnnotationProperty{{IRI: "http://b#p", Label: "comment"}}

	c := NewCatalogue(first, second)

	prop, ok := c.ResolveLabel("Comment")
	require.True(t, ok)
	assert.Equal(t, "http://b#p", prop.IRI)

	// Both IRIs remain resolvable.
	_, ok = c.ResolveIRI("http://a#p")
	assert.True(t, ok)
}

func TestDefaultMergeOrder(t *testing.T) {
	c := Default()

	// "Comment" collides between RDFS and SKOS; SKOS is merged later.
	prop, ok := c.ResolveLabel("Comment")
	require.True(t, ok)
	assert.Equal(t, SKOSComment, prop.IRI)

	// "Description" collides between dcterms and dc/elements; the
	// elements entry is listed later within the DCMI source.
	prop, ok = c.ResolveLabel("Description")
	require.True(t, ok)
	assert.Equal(t, DCElementsDescription, prop.IRI)
}

func TestCamelCase(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"Label", "label"},
		{"Preferred Label", "preferredLabel"},
		{"See Also", "seeAlso"},
		{"  spaced   out  ", "spacedOut"},
		{"", ""},
	}
	for _, tc := range tests {
		assert.Equal(t, tc.want, CamelCase(tc.in), "CamelCase(%q)", tc.in)
	}
}
