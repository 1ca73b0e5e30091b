package owl

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/knakk/rdf"
)

// FormatForPath guesses the RDF serialization from a file extension,
// defaulting to RDF/XML which is what ontology editors emit.
func FormatForPath(path string) rdf.Format {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".ttl":
		return rdf.Turtle
	case ".nt":
		return rdf.NTriples
	default:
		return rdf.RDFXML
	}
}

// Parse decodes an RDF/XML ontology document from r.
func Parse(r io.Reader) (*Ontology, error) {
	return ParseFormat(r, rdf.RDFXML)
}

// ParseFile decodes the ontology document at path, picking the
// serialization from the file extension.
func ParseFile(path string) (*Ontology, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open ontology file: %w", err)
	}
	defer f.Close()
	return ParseFormat(f, FormatForPath(path))
}

// ParseFormat decodes an ontology document in the given RDF serialization
// and assembles the in-memory ontology model.
func ParseFormat(r io.Reader, format rdf.Format) (*Ontology, error) {
	var triples []rdf.Triple
	var err error
	if format == rdf.RDFXML {
		triples, err = decodeRDFXML(r)
	} else {
		triples, err = rdf.NewTripleDecoder(r, format).DecodeAll()
	}
	if err != nil {
		return nil, fmt.Errorf("decode rdf: %w", err)
	}
	if len(triples) == 0 {
		return nil, fmt.Errorf("document contains no rdf statements")
	}
	return assemble(triples), nil
}

// restriction captures an owl:Restriction blank node while its onProperty
// and filler class are being collected.
type restriction struct {
	onProperty string
	filler     string
}

func assemble(triples []rdf.Triple) *Ontology {
	ont := &Ontology{
		Classes:              make(map[string]*Class),
		ObjectProperties:     make(map[string]*ObjectProperty),
		AnnotationProperties: make(map[string]*AnnotationProperty),
		Individuals:          make(map[string]*NamedIndividual),
	}

	types := make(map[string][]string)
	labels := make(map[string]string)
	annotations := make(map[string]map[string]string)
	subClassOf := make(map[string][]string)
	restrictions := make(map[string]*restriction)
	objectLinks := make(map[string]map[string]string)

	for _, t := range triples {
		subj := t.Subj.String()
		pred := t.Pred.String()

		switch pred {
		case RDFType:
			if obj, ok := t.Obj.(rdf.IRI); ok {
				types[subj] = append(types[subj], obj.String())
			}
			continue
		case RDFSLabel:
			if obj, ok := t.Obj.(rdf.Literal); ok {
				labels[subj] = obj.String()
			}
			continue
		case RDFSSubClassOf:
			subClassOf[subj] = append(subClassOf[subj], t.Obj.String())
			continue
		case OWLOnProperty:
			if obj, ok := t.Obj.(rdf.IRI); ok {
				restrictionFor(restrictions, subj).onProperty = obj.String()
			}
			continue
		case OWLSomeValuesFrom, OWLAllValuesFrom:
			if obj, ok := t.Obj.(rdf.IRI); ok {
				restrictionFor(restrictions, subj).filler = obj.String()
			}
			continue
		}

		switch obj := t.Obj.(type) {
		case rdf.Literal:
			if annotations[subj] == nil {
				annotations[subj] = make(map[string]string)
			}
			annotations[subj][pred] = obj.String()
		case rdf.IRI:
			// Candidate object-property link between named individuals,
			// resolved once property declarations are known.
			if objectLinks[subj] == nil {
				objectLinks[subj] = make(map[string]string)
			}
			objectLinks[subj][obj.String()] = pred
		}
	}

	// Declarations first, so individual links can be filtered by the
	// declared object properties.
	for subj, subjTypes := range types {
		for _, typ := range subjTypes {
			switch typ {
			case OWLOntology:
				ont.IRI = subj
			case OWLClass:
				if !strings.HasPrefix(subj, "_:") {
					ont.Classes[subj] = &Class{
						IRI:         subj,
						Label:       labels[subj],
						Annotations: annotations[subj],
						Parents:     make(map[string]string),
					}
				}
			case OWLObjectProp:
				ont.ObjectProperties[subj] = &ObjectProperty{
					IRI:         subj,
					Label:       labels[subj],
					Annotations: annotations[subj],
				}
			case OWLAnnotationProp:
				ont.AnnotationProperties[subj] = &AnnotationProperty{
					IRI:   subj,
					Label: labels[subj],
				}
			case OWLNamedIndividual:
				ont.Individuals[subj] = &NamedIndividual{
					IRI:         subj,
					Label:       labels[subj],
					Annotations: annotations[subj],
					Linked:      make(map[string]string),
				}
			}
		}
	}

	// Subclass axioms: direct parents and parents reached through
	// owl:Restriction blank nodes carrying an object property.
	for subj, parents := range subClassOf {
		class, ok := ont.Classes[subj]
		if !ok {
			continue
		}
		for _, parent := range parents {
			if rest, isBlank := restrictions[parent]; isBlank {
				if rest.filler == "" {
					continue
				}
				appendParentProperty(class, rest.filler, rest.onProperty)
				continue
			}
			if _, exists := class.Parents[parent]; !exists {
				class.Parents[parent] = ""
			}
		}
	}

	// Named individual typing and links.
	for subj, individual := range ont.Individuals {
		for _, typ := range types[subj] {
			if typ == OWLNamedIndividual || strings.HasPrefix(typ, "http://www.w3.org/2002/07/owl#") {
				continue
			}
			individual.InstanceOf = append(individual.InstanceOf, typ)
		}
		for target, pred := range objectLinks[subj] {
			if _, isIndividual := ont.Individuals[target]; !isIndividual {
				continue
			}
			if _, declared := ont.ObjectProperties[pred]; declared {
				individual.Linked[target] = pred
			}
		}
	}

	return ont
}

func restrictionFor(m map[string]*restriction, key string) *restriction {
	if r, ok := m[key]; ok {
		return r
	}
	r := &restriction{}
	m[key] = r
	return r
}

func appendParentProperty(class *Class, parent, property string) {
	existing, ok := class.Parents[parent]
	switch {
	case !ok, existing == "":
		class.Parents[parent] = property
	case property != "" && !strings.Contains(existing, property):
		class.Parents[parent] = existing + ParentPropertyDelimiter + property
	}
}
