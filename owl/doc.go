// Package owl parses OWL/RDF ontology documents into an in-memory model of
// classes, object properties, annotation properties and named individuals.
//
// Parsing is triple-based: the RDF/XML (or Turtle/N-Triples) payload is
// decoded into triples and assembled into the model in a single pass plus a
// resolution pass for OWL restrictions. No OWL inference is performed; the
// model reflects only asserted axioms.
package owl
