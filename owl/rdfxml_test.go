package owl

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// Subclass restrictions nest a typed owl:Restriction node inside the
// property element; the decoder must produce the blank node triples the
// assembler joins on.
func TestDecodeNestedRestriction(t *testing.T) {
	doc := `<?xml version="1.0"?>
<rdf:RDF xmlns:rdf="http://www.w3.org/1999/02/22-rdf-syntax-ns#"
         xmlns:rdfs="http://www.w3.org/2000/01/rdf-schema#"
         xmlns:owl="http://www.w3.org/2002/07/owl#">
  <owl:Class rdf:about="http://example.com/net#Router">
    <rdfs:subClassOf>
      <owl:Restriction>
        <owl:onProperty rdf:resource="http://example.com/net#connectsTo"/>
        <owl:someValuesFrom rdf:resource="http://example.com/net#Switch"/>
      </owl:Restriction>
    </rdfs:subClassOf>
  </owl:Class>
  <owl:Class rdf:about="http://example.com/net#Switch"/>
</rdf:RDF>`

	ont, err := Parse(strings.NewReader(doc))
	require.NoError(t, err)

	router := ont.Classes["http://example.com/net#Router"]
	require.NotNil(t, router)
	property, ok := router.Parents["http://example.com/net#Switch"]
	require.True(t, ok)
	assert.Equal(t, "http://example.com/net#connectsTo", property)
}

func TestDecodeLangAndTypedLiterals(t *testing.T) {
	doc := `<?xml version="1.0"?>
<rdf:RDF xmlns:rdf="http://www.w3.org/1999/02/22-rdf-syntax-ns#"
         xmlns:rdfs="http://www.w3.org/2000/01/rdf-schema#"
         xmlns:owl="http://www.w3.org/2002/07/owl#"
         xmlns:skos="http://www.w3.org/2004/02/skos/core#">
  <owl:Class rdf:about="http://example.com/net#Network">
    <rdfs:label xml:lang="en">Network</rdfs:label>
    <skos:definition rdf:datatype="http://www.w3.org/2001/XMLSchema#string">A set of linked nodes.</skos:definition>
  </owl:Class>
</rdf:RDF>`

	ont, err := Parse(strings.NewReader(doc))
	require.NoError(t, err)

	network := ont.Classes["http://example.com/net#Network"]
	require.NotNil(t, network)
	assert.Equal(t, "Network", network.Label)
	assert.Equal(t, "A set of linked nodes.",
		network.Annotations["http://www.w3.org/2004/02/skos/core#definition"])
}

// owl:unionOf carries an rdf:parseType="Collection" list; the decoder must
// consume it without error even though the assembler ignores list members.
func TestDecodeCollection(t *testing.T) {
	doc := `<?xml version="1.0"?>
<rdf:RDF xmlns:rdf="http://www.w3.org/1999/02/22-rdf-syntax-ns#"
         xmlns:rdfs="http://www.w3.org/2000/01/rdf-schema#"
         xmlns:owl="http://www.w3.org/2002/07/owl#">
  <owl:Class rdf:about="http://example.com/net#Device">
    <rdfs:label>Device</rdfs:label>
    <owl:unionOf rdf:parseType="Collection">
      <owl:Class rdf:about="http://example.com/net#Switch"/>
      <owl:Class rdf:about="http://example.com/net#Router"/>
    </owl:unionOf>
  </owl:Class>
</rdf:RDF>`

	ont, err := Parse(strings.NewReader(doc))
	require.NoError(t, err)

	device := ont.Classes["http://example.com/net#Device"]
	require.NotNil(t, device)
	assert.Equal(t, "Device", device.Label)
	assert.Contains(t, ont.Classes, "http://example.com/net#Switch")
	assert.Contains(t, ont.Classes, "http://example.com/net#Router")
}

func TestDecodeNodeIDReference(t *testing.T) {
	doc := `<?xml version="1.0"?>
<rdf:RDF xmlns:rdf="http://www.w3.org/1999/02/22-rdf-syntax-ns#"
         xmlns:rdfs="http://www.w3.org/2000/01/rdf-schema#"
         xmlns:owl="http://www.w3.org/2002/07/owl#">
  <owl:Class rdf:about="http://example.com/net#Router">
    <rdfs:subClassOf rdf:nodeID="r1"/>
  </owl:Class>
  <owl:Restriction rdf:nodeID="r1">
    <owl:onProperty rdf:resource="http://example.com/net#connectsTo"/>
    <owl:someValuesFrom rdf:resource="http://example.com/net#Switch"/>
  </owl:Restriction>
  <owl:Class rdf:about="http://example.com/net#Switch"/>
</rdf:RDF>`

	ont, err := Parse(strings.NewReader(doc))
	require.NoError(t, err)

	router := ont.Classes["http://example.com/net#Router"]
	require.NotNil(t, router)
	property, ok := router.Parents["http://example.com/net#Switch"]
	require.True(t, ok)
	assert.Equal(t, "http://example.com/net#connectsTo", property)
}
