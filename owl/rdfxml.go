package owl

import (
	"encoding/xml"
	"fmt"
	"io"
	"net/url"
	"strings"

	"github.com/knakk/rdf"
)

const (
	rdfNamespace = "http://www.w3.org/1999/02/22-rdf-syntax-ns#"
	xmlNamespace = "http://www.w3.org/XML/1998/namespace"
)

// decodeRDFXML parses an RDF/XML document into triples. knakk/rdf's own
// RDF/XML decoder rejects typed node elements nested inside property
// elements (the owl:Restriction pattern every subclass restriction uses),
// so RDF/XML takes this path; Turtle and N-Triples stay on knakk/rdf.
func decodeRDFXML(r io.Reader) ([]rdf.Triple, error) {
	d := &rdfxmlDecoder{dec: xml.NewDecoder(r)}
	for {
		tok, err := d.dec.Token()
		if err == io.EOF {
			return d.triples, nil
		}
		if err != nil {
			return nil, fmt.Errorf("rdf/xml: %w", err)
		}
		start, ok := tok.(xml.StartElement)
		if !ok {
			continue
		}
		if start.Name.Space == rdfNamespace && start.Name.Local == "RDF" {
			d.setBase(start)
			if err := d.parseChildren(start.Name); err != nil {
				return nil, err
			}
			continue
		}
		if _, err := d.parseNode(start); err != nil {
			return nil, err
		}
	}
}

type rdfxmlDecoder struct {
	dec     *xml.Decoder
	base    *url.URL
	triples []rdf.Triple
	blankN  int
}

func (d *rdfxmlDecoder) setBase(start xml.StartElement) {
	for _, attr := range start.Attr {
		if isXMLAttr(attr.Name) && attr.Name.Local == "base" {
			if u, err := url.Parse(attr.Value); err == nil {
				d.base = u
			}
		}
	}
}

// parseChildren consumes node elements until the matching end element.
func (d *rdfxmlDecoder) parseChildren(parent xml.Name) error {
	for {
		tok, err := d.dec.Token()
		if err != nil {
			return fmt.Errorf("rdf/xml: %w", err)
		}
		switch elem := tok.(type) {
		case xml.StartElement:
			if _, err := d.parseNode(elem); err != nil {
				return err
			}
		case xml.EndElement:
			if elem.Name == parent {
				return nil
			}
		}
	}
}

// parseNode parses one node element, consuming through its end element,
// and returns its subject.
func (d *rdfxmlDecoder) parseNode(start xml.StartElement) (rdf.Subject, error) {
	subj, err := d.subjectFor(start)
	if err != nil {
		return nil, err
	}

	if !(start.Name.Space == rdfNamespace && start.Name.Local == "Description") {
		typeIRI, err := rdf.NewIRI(start.Name.Space + start.Name.Local)
		if err != nil {
			return nil, fmt.Errorf("rdf/xml: node type: %w", err)
		}
		if err := d.emit(subj, RDFType, typeIRI); err != nil {
			return nil, err
		}
	}

	// Property attributes assert literal values directly on the node.
	for _, attr := range start.Attr {
		if isSyntaxAttr(attr.Name) {
			continue
		}
		lit, err := rdf.NewLiteral(attr.Value)
		if err != nil {
			return nil, fmt.Errorf("rdf/xml: attribute literal: %w", err)
		}
		if err := d.emit(subj, attr.Name.Space+attr.Name.Local, lit); err != nil {
			return nil, err
		}
	}

	for {
		tok, err := d.dec.Token()
		if err != nil {
			return nil, fmt.Errorf("rdf/xml: %w", err)
		}
		switch elem := tok.(type) {
		case xml.StartElement:
			if err := d.parseProperty(subj, elem); err != nil {
				return nil, err
			}
		case xml.EndElement:
			return subj, nil
		}
	}
}

// parseProperty parses one property element of subj, consuming through its
// end element.
func (d *rdfxmlDecoder) parseProperty(subj rdf.Subject, start xml.StartElement) error {
	pred := start.Name.Space + start.Name.Local

	var resource, nodeID, datatype, parseType, lang string
	var propAttrs []xml.Attr
	for _, attr := range start.Attr {
		switch {
		case attr.Name.Space == rdfNamespace && attr.Name.Local == "resource":
			resource = attr.Value
		case attr.Name.Space == rdfNamespace && attr.Name.Local == "nodeID":
			nodeID = attr.Value
		case attr.Name.Space == rdfNamespace && attr.Name.Local == "datatype":
			datatype = attr.Value
		case attr.Name.Space == rdfNamespace && attr.Name.Local == "parseType":
			parseType = attr.Value
		case isXMLAttr(attr.Name) && attr.Name.Local == "lang":
			lang = attr.Value
		case isXMLAttr(attr.Name) || attr.Name.Local == "xmlns" || attr.Name.Space == "xmlns":
			// Namespace machinery, no triple.
		default:
			propAttrs = append(propAttrs, attr)
		}
	}

	switch parseType {
	case "Resource":
		blank, err := d.newBlank()
		if err != nil {
			return err
		}
		if err := d.emit(subj, pred, blank); err != nil {
			return err
		}
		for {
			tok, err := d.dec.Token()
			if err != nil {
				return fmt.Errorf("rdf/xml: %w", err)
			}
			switch elem := tok.(type) {
			case xml.StartElement:
				if err := d.parseProperty(blank, elem); err != nil {
					return err
				}
			case xml.EndElement:
				return nil
			}
		}
	case "Collection":
		return d.parseCollection(subj, pred)
	case "Literal":
		return d.parseXMLLiteral(subj, pred)
	}

	if resource != "" {
		obj, err := rdf.NewIRI(d.resolve(resource))
		if err != nil {
			return fmt.Errorf("rdf/xml: resource %q: %w", resource, err)
		}
		if err := d.emitWithAttrs(subj, pred, obj, propAttrs); err != nil {
			return err
		}
		return d.skip()
	}
	if nodeID != "" {
		obj, err := rdf.NewBlank(nodeID)
		if err != nil {
			return fmt.Errorf("rdf/xml: nodeID %q: %w", nodeID, err)
		}
		if err := d.emitWithAttrs(subj, pred, obj, propAttrs); err != nil {
			return err
		}
		return d.skip()
	}

	// The element holds either a nested node element or a text literal.
	var text strings.Builder
	sawNode := false
	for {
		tok, err := d.dec.Token()
		if err != nil {
			return fmt.Errorf("rdf/xml: %w", err)
		}
		switch elem := tok.(type) {
		case xml.CharData:
			text.Write(elem)
		case xml.StartElement:
			sawNode = true
			objSubj, err := d.parseNode(elem)
			if err != nil {
				return err
			}
			if err := d.emit(subj, pred, objSubj.(rdf.Object)); err != nil {
				return err
			}
		case xml.EndElement:
			if sawNode {
				return nil
			}
			lit, err := d.literalFor(text.String(), lang, datatype)
			if err != nil {
				return err
			}
			return d.emit(subj, pred, lit)
		}
	}
}

func (d *rdfxmlDecoder) parseCollection(subj rdf.Subject, pred string) error {
	var items []rdf.Subject
	for {
		tok, err := d.dec.Token()
		if err != nil {
			return fmt.Errorf("rdf/xml: %w", err)
		}
		switch elem := tok.(type) {
		case xml.StartElement:
			item, err := d.parseNode(elem)
			if err != nil {
				return err
			}
			items = append(items, item)
		case xml.EndElement:
			return d.emitList(subj, pred, items)
		}
	}
}

// emitList links items with rdf:first/rdf:rest, terminated by rdf:nil.
func (d *rdfxmlDecoder) emitList(subj rdf.Subject, pred string, items []rdf.Subject) error {
	nilIRI, err := rdf.NewIRI(rdfNamespace + "nil")
	if err != nil {
		return err
	}
	if len(items) == 0 {
		return d.emit(subj, pred, nilIRI)
	}

	cells := make([]rdf.Blank, len(items))
	for i := range items {
		blank, err := d.newBlank()
		if err != nil {
			return err
		}
		cells[i] = blank
	}
	if err := d.emit(subj, pred, cells[0]); err != nil {
		return err
	}
	for i, item := range items {
		if err := d.emit(cells[i], rdfNamespace+"first", item.(rdf.Object)); err != nil {
			return err
		}
		var rest rdf.Object = nilIRI
		if i < len(items)-1 {
			rest = cells[i+1]
		}
		if err := d.emit(cells[i], rdfNamespace+"rest", rest); err != nil {
			return err
		}
	}
	return nil
}

// parseXMLLiteral flattens embedded markup to its character data.
func (d *rdfxmlDecoder) parseXMLLiteral(subj rdf.Subject, pred string) error {
	var text strings.Builder
	depth := 0
	for {
		tok, err := d.dec.Token()
		if err != nil {
			return fmt.Errorf("rdf/xml: %w", err)
		}
		switch elem := tok.(type) {
		case xml.StartElement:
			depth++
		case xml.CharData:
			text.Write(elem)
		case xml.EndElement:
			if depth == 0 {
				dt, err := rdf.NewIRI(rdfNamespace + "XMLLiteral")
				if err != nil {
					return err
				}
				return d.emit(subj, pred, rdf.NewTypedLiteral(text.String(), dt))
			}
			depth--
		}
	}
}

func (d *rdfxmlDecoder) subjectFor(start xml.StartElement) (rdf.Subject, error) {
	for _, attr := range start.Attr {
		if attr.Name.Space != rdfNamespace {
			continue
		}
		switch attr.Name.Local {
		case "about":
			return rdf.NewIRI(d.resolve(attr.Value))
		case "ID":
			return rdf.NewIRI(d.resolve("#" + attr.Value))
		case "nodeID":
			return rdf.NewBlank(attr.Value)
		}
	}
	return d.newBlank()
}

func (d *rdfxmlDecoder) literalFor(text, lang, datatype string) (rdf.Literal, error) {
	switch {
	case lang != "":
		return rdf.NewLangLiteral(text, lang)
	case datatype != "":
		dt, err := rdf.NewIRI(d.resolve(datatype))
		if err != nil {
			return rdf.Literal{}, fmt.Errorf("rdf/xml: datatype: %w", err)
		}
		return rdf.NewTypedLiteral(text, dt), nil
	default:
		return rdf.NewLiteral(text)
	}
}

func (d *rdfxmlDecoder) emit(subj rdf.Subject, pred string, obj rdf.Object) error {
	p, err := rdf.NewIRI(pred)
	if err != nil {
		return fmt.Errorf("rdf/xml: predicate %q: %w", pred, err)
	}
	d.triples = append(d.triples, rdf.Triple{Subj: subj, Pred: p, Obj: obj})
	return nil
}

// emitWithAttrs emits the main triple plus literal triples about the object
// for any property attributes carried by the property element.
func (d *rdfxmlDecoder) emitWithAttrs(subj rdf.Subject, pred string, obj rdf.Object, attrs []xml.Attr) error {
	if err := d.emit(subj, pred, obj); err != nil {
		return err
	}
	objSubj, ok := obj.(rdf.Subject)
	if !ok {
		return nil
	}
	for _, attr := range attrs {
		lit, err := rdf.NewLiteral(attr.Value)
		if err != nil {
			return fmt.Errorf("rdf/xml: attribute literal: %w", err)
		}
		if err := d.emit(objSubj, attr.Name.Space+attr.Name.Local, lit); err != nil {
			return err
		}
	}
	return nil
}

func (d *rdfxmlDecoder) newBlank() (rdf.Blank, error) {
	d.blankN++
	return rdf.NewBlank(fmt.Sprintf("b%d", d.blankN))
}

func (d *rdfxmlDecoder) resolve(ref string) string {
	if d.base == nil {
		return ref
	}
	u, err := url.Parse(ref)
	if err != nil {
		return ref
	}
	return d.base.ResolveReference(u).String()
}

// skip consumes tokens through the current element's end element.
func (d *rdfxmlDecoder) skip() error {
	if err := d.dec.Skip(); err != nil {
		return fmt.Errorf("rdf/xml: %w", err)
	}
	return nil
}

func isXMLAttr(name xml.Name) bool {
	return name.Space == "xml" || name.Space == xmlNamespace
}

func isSyntaxAttr(name xml.Name) bool {
	if name.Space == rdfNamespace {
		switch name.Local {
		case "about", "ID", "nodeID", "resource", "datatype", "parseType":
			return true
		}
	}
	if isXMLAttr(name) || name.Local == "xmlns" || name.Space == "xmlns" {
		return true
	}
	return false
}
