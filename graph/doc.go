// Package graph models a parsed ontology as a directed property graph.
//
// The modeller is a pure function: given the same parsed ontology and schema
// catalogue it produces a byte-identical PropertyGraph, which is what makes
// re-processing a revision idempotent. Vertices are OWL classes and named
// individuals; edges are subclass, instance-of and linked-individual
// relationships. Annotations are resolved against the vocabulary catalogue
// and normalised (multi-value splitting, token splitting) before they become
// vertex properties.
package graph
