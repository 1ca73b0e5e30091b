package vocabulary

import (
	"strings"
	"sync"
	"unicode"
)

// AnnotationProperty describes a single resolvable annotation property.
type AnnotationProperty struct {
	// IRI is the full property IRI.
	IRI string `json:"iri"`

	// Label is the human-readable label, e.g. "Preferred Label".
	Label string `json:"label"`

	// Standard reports whether the property comes from one of the standard
	// vocabulary sources rather than the ontology under processing.
	Standard bool `json:"isStandard"`
}

// Key returns the canonical property key used in modelled graphs,
// a camelCased form of the label ("Preferred Label" -> "preferredLabel").
func (p AnnotationProperty) Key() string {
	return CamelCase(p.Label)
}

// Catalogue is a merged, case-insensitive lookup of annotation properties.
// It is immutable after construction and safe for concurrent use.
type Catalogue struct {
	byIRI   map[string]AnnotationProperty
	byLabel map[string]AnnotationProperty
}

// NewCatalogue merges the given sources in order. Later sources override
// earlier ones when labels collide, matching the layering of the standard
// vocabularies (RDFS, then SKOS, then DCMI).
func NewCatalogue(sources ...[]AnnotationProperty) *Catalogue {
	c := &Catalogue{
		byIRI:   make(map[string]AnnotationProperty),
		byLabel: make(map[string]AnnotationProperty),
	}
	for _, source := range sources {
		for _, prop := range source {
			c.byIRI[prop.IRI] = prop
			c.byLabel[strings.ToLower(prop.Label)] = prop
		}
	}
	return c
}

var (
	defaultOnce      sync.Once
	defaultCatalogue *Catalogue
)

// Default returns the process-wide catalogue of standard annotation
// properties. The merge is performed once and cached for the process
// lifetime; the result is read-only.
func Default() *Catalogue {
	defaultOnce.Do(func() {
		defaultCatalogue = NewCatalogue(
			rdfSchemaSource(),
			skosSource(),
			dcmiSource(),
		)
	})
	return defaultCatalogue
}

// ResolveIRI looks up a property by its full IRI.
func (c *Catalogue) ResolveIRI(iri string) (AnnotationProperty, bool) {
	prop, ok := c.byIRI[iri]
	return prop, ok
}

// ResolveLabel looks up a property by label, case-insensitively.
func (c *Catalogue) ResolveLabel(label string) (AnnotationProperty, bool) {
	prop, ok := c.byLabel[strings.ToLower(label)]
	return prop, ok
}

// Len returns the number of distinct IRIs in the catalogue.
func (c *Catalogue) Len() int {
	return len(c.byIRI)
}

// CamelCase converts a space-delimited label into a camelCased property key.
// Empty input yields an empty string.
func CamelCase(label string) string {
	fields := strings.Fields(label)
	if len(fields) == 0 {
		return ""
	}
	var b strings.Builder
	for i, field := range fields {
		runes := []rune(strings.ToLower(field))
		if i > 0 {
			runes[0] = unicode.ToUpper(runes[0])
		}
		b.WriteString(string(runes))
	}
	return b.String()
}
