package graph

import (
	"fmt"
	"sort"
	"strings"

	"github.com/ontoflow/ontoflow/owl"
	"github.com/ontoflow/ontoflow/vocabulary"
)

// Model transforms a parsed ontology into a property graph, resolving
// annotations against the schema catalogue. It performs no I/O and is
// deterministic: class IRIs are walked in sorted order and ids are assigned
// from monotonic counters scoped to this pass, so modelling the same
// revision twice yields identical output.
//
// The returned graph has passed referential-integrity validation; a dangling
// edge reference aborts modelling with an error and no graph is returned.
func Model(ontologyID, revisionID int64, ont *owl.Ontology, catalogue *vocabulary.Catalogue) (*PropertyGraph, error) {
	if ont == nil {
		return nil, fmt.Errorf("nil ontology")
	}
	if catalogue == nil {
		catalogue = vocabulary.Default()
	}

	m := &modeller{
		ont:       ont,
		catalogue: catalogue,
		graph:     NewPropertyGraph(ontologyID, revisionID),
		idByIRI:   make(map[string]uint64),
	}

	m.addClassVertices()
	m.addIndividualVertices()
	m.addClassEdges()
	m.addIndividualEdges()

	if err := m.graph.Validate(); err != nil {
		return nil, fmt.Errorf("modelled graph failed validation: %w", err)
	}
	return m.graph, nil
}

type modeller struct {
	ont       *owl.Ontology
	catalogue *vocabulary.Catalogue
	graph     *PropertyGraph

	nextVertexID uint64
	nextEdgeID   uint64
	idByIRI      map[string]uint64
}

func (m *modeller) addClassVertices() {
	for _, iri := range sortedKeys(m.ont.Classes) {
		class := m.ont.Classes[iri]
		m.addVertex(iri, class.DisplayLabel(), KindClass, class.Annotations)
	}
}

func (m *modeller) addIndividualVertices() {
	for _, iri := range sortedKeys(m.ont.Individuals) {
		individual := m.ont.Individuals[iri]
		m.addVertex(iri, individual.DisplayLabel(), KindNamedIndividual, individual.Annotations)
	}
}

func (m *modeller) addVertex(iri, label, kind string, annotations map[string]string) {
	m.nextVertexID++
	v := &Vertex{
		ID:         m.nextVertexID,
		IRI:        iri,
		Label:      label,
		Kind:       kind,
		Properties: m.resolveAnnotations(annotations),
	}
	m.graph.Vertices[v.ID] = v
	m.idByIRI[iri] = v.ID
}

// resolveAnnotations maps raw annotation assertions to canonical property
// keys. Known properties are stored under their catalogue key; unknown ones
// are kept verbatim under their raw IRI - the schema is additive and never
// rejects an annotation.
func (m *modeller) resolveAnnotations(annotations map[string]string) map[string]any {
	if len(annotations) == 0 {
		return nil
	}
	properties := make(map[string]any, len(annotations))
	for _, annotationIRI := range sortedKeys(annotations) {
		value := annotations[annotationIRI]
		key := annotationIRI
		if prop, ok := m.catalogue.ResolveIRI(annotationIRI); ok {
			key = prop.Key()
		} else if declared, ok := m.ont.AnnotationProperties[annotationIRI]; ok && declared.Label != "" {
			key = vocabulary.CamelCase(declared.Label)
		}
		properties[key] = NormaliseValue(key, value)
	}
	return properties
}

func (m *modeller) addClassEdges() {
	for _, iri := range sortedKeys(m.ont.Classes) {
		class := m.ont.Classes[iri]
		sourceID, ok := m.idByIRI[iri]
		if !ok {
			continue
		}
		for _, parentIRI := range sortedKeys(class.Parents) {
			targetID, ok := m.idByIRI[parentIRI]
			if !ok {
				// Parent outside the ontology (e.g. owl:Thing); no vertex,
				// no edge.
				continue
			}
			label := m.resolveRelationship(class.Parents[parentIRI], EdgeSubClassOf)
			m.addEdge(sourceID, targetID, label, nil)
		}
	}
}

func (m *modeller) addIndividualEdges() {
	for _, iri := range sortedKeys(m.ont.Individuals) {
		individual := m.ont.Individuals[iri]
		sourceID, ok := m.idByIRI[iri]
		if !ok {
			continue
		}

		classIRIs := append([]string(nil), individual.InstanceOf...)
		sort.Strings(classIRIs)
		for _, classIRI := range classIRIs {
			if targetID, ok := m.idByIRI[classIRI]; ok {
				m.addEdge(sourceID, targetID, EdgeInstanceOf, nil)
			}
		}

		for _, targetIRI := range sortedKeys(individual.Linked) {
			targetID, ok := m.idByIRI[targetIRI]
			if !ok {
				continue
			}
			label := m.resolveRelationship(individual.Linked[targetIRI], EdgeLinkedTo)
			m.addEdge(sourceID, targetID, label, nil)
		}
	}
}

// resolveRelationship turns one or more object-property IRIs (joined with
// the parent-property delimiter) into a display label, falling back to the
// given edge kind when nothing is asserted.
func (m *modeller) resolveRelationship(propertyIRIs, fallback string) string {
	if propertyIRIs == "" {
		return fallback
	}
	parts := strings.Split(propertyIRIs, owl.ParentPropertyDelimiter)
	labels := make([]string, 0, len(parts))
	for _, propertyIRI := range parts {
		if prop, ok := m.ont.ObjectProperties[propertyIRI]; ok {
			labels = append(labels, prop.DisplayLabel())
			continue
		}
		labels = append(labels, owl.LocalName(propertyIRI))
	}
	return strings.Join(labels, owl.ParentPropertyDelimiter)
}

func (m *modeller) addEdge(sourceID, targetID uint64, label string, properties map[string]any) {
	m.nextEdgeID++
	if properties == nil {
		properties = make(map[string]any, 1)
	}
	properties[RelationshipKey] = label
	m.graph.Edges = append(m.graph.Edges, &Edge{
		ID:         m.nextEdgeID,
		SourceID:   sourceID,
		TargetID:   targetID,
		Label:      label,
		Properties: properties,
	})
}

func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
