// Package vocabulary provides the standard schema catalogue used to resolve
// ontology annotation properties during property-graph modelling.
//
// The catalogue merges three ordered vocabulary sources:
//   - RDF Schema (rdfs:label, rdfs:comment, rdfs:seeAlso, ...)
//   - SKOS (skos:prefLabel, skos:altLabel, skos:definition, ...)
//   - Dublin Core Metadata Terms (dcterms:description, dcterms:source, ...)
//
// Later sources override earlier ones on label collision. Lookup is keyed by
// lower-cased label and by IRI. The merged catalogue is pure data, built once
// per process via Default().
package vocabulary
