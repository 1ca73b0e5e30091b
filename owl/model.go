package owl

import "strings"

// Well-known IRIs used during parsing.
const (
	RDFType            = "http://www.w3.org/1999/02/22-rdf-syntax-ns#type"
	RDFSLabel          = "http://www.w3.org/2000/01/rdf-schema#label"
	RDFSSubClassOf     = "http://www.w3.org/2000/01/rdf-schema#subClassOf"
	OWLClass           = "http://www.w3.org/2002/07/owl#Class"
	OWLObjectProp      = "http://www.w3.org/2002/07/owl#ObjectProperty"
	OWLAnnotationProp  = "http://www.w3.org/2002/07/owl#AnnotationProperty"
	OWLNamedIndividual = "http://www.w3.org/2002/07/owl#NamedIndividual"
	OWLOntology        = "http://www.w3.org/2002/07/owl#Ontology"
	OWLRestriction     = "http://www.w3.org/2002/07/owl#Restriction"
	OWLOnProperty      = "http://www.w3.org/2002/07/owl#onProperty"
	OWLSomeValuesFrom  = "http://www.w3.org/2002/07/owl#someValuesFrom"
	OWLAllValuesFrom   = "http://www.w3.org/2002/07/owl#allValuesFrom"
	OWLThing           = "http://www.w3.org/2002/07/owl#Thing"
)

// ParentPropertyDelimiter separates multiple object-property IRIs asserted
// on the same subclass relationship.
const ParentPropertyDelimiter = " | "

// Ontology is the parsed in-memory model of one OWL document.
type Ontology struct {
	// IRI is the ontology IRI, empty if the document does not declare one.
	IRI string `json:"iri,omitempty"`

	// Classes maps class IRI to its parsed representation.
	Classes map[string]*Class `json:"classes"`

	// ObjectProperties maps object property IRI to its representation.
	ObjectProperties map[string]*ObjectProperty `json:"objectProperties"`

	// AnnotationProperties maps annotation property IRI to its
	// representation, covering properties declared by the ontology itself.
	AnnotationProperties map[string]*AnnotationProperty `json:"annotationProperties"`

	// Individuals maps named individual IRI to its representation.
	Individuals map[string]*NamedIndividual `json:"namedIndividuals"`
}

// Class is one OWL class.
type Class struct {
	IRI   string `json:"iri"`
	Label string `json:"label,omitempty"`

	// Annotations maps annotation property IRI to the asserted value.
	Annotations map[string]string `json:"annotations,omitempty"`

	// Parents maps parent class IRI to the object property IRI(s) carried
	// by the subclass axiom. The value is empty for a plain rdfs:subClassOf
	// assertion; multiple restriction properties are joined with
	// ParentPropertyDelimiter.
	Parents map[string]string `json:"parents,omitempty"`
}

// ObjectProperty is one OWL object property.
type ObjectProperty struct {
	IRI         string            `json:"iri"`
	Label       string            `json:"label,omitempty"`
	Annotations map[string]string `json:"annotations,omitempty"`
}

// AnnotationProperty is an annotation property declared by the ontology.
type AnnotationProperty struct {
	IRI   string `json:"iri"`
	Label string `json:"label,omitempty"`
}

// NamedIndividual is one OWL named individual.
type NamedIndividual struct {
	IRI         string            `json:"iri"`
	Label       string            `json:"label,omitempty"`
	Annotations map[string]string `json:"annotations,omitempty"`

	// InstanceOf lists the class IRIs the individual is typed with.
	InstanceOf []string `json:"instanceOf,omitempty"`

	// Linked maps target individual IRI to the linking object property IRI.
	Linked map[string]string `json:"linked,omitempty"`
}

// DisplayLabel returns the class label, falling back to the IRI local name.
func (c *Class) DisplayLabel() string {
	if c.Label != "" {
		return c.Label
	}
	return LocalName(c.IRI)
}

// DisplayLabel returns the property label, falling back to the local name.
func (p *ObjectProperty) DisplayLabel() string {
	if p.Label != "" {
		return p.Label
	}
	return LocalName(p.IRI)
}

// DisplayLabel returns the individual label, falling back to the local name.
func (n *NamedIndividual) DisplayLabel() string {
	if n.Label != "" {
		return n.Label
	}
	return LocalName(n.IRI)
}

// LocalName extracts the local name of an IRI: the fragment after '#' when
// present, otherwise the last path segment.
func LocalName(iri string) string {
	if i := strings.LastIndex(iri, "#"); i >= 0 && i < len(iri)-1 {
		return iri[i+1:]
	}
	trimmed := strings.TrimRight(iri, "/")
	if i := strings.LastIndex(trimmed, "/"); i >= 0 {
		return trimmed[i+1:]
	}
	return iri
}
