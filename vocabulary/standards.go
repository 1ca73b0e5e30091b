package vocabulary

// Standard vocabulary IRIs resolved by the catalogue.
//
// References:
// - RDF Schema: https://www.w3.org/TR/rdf-schema/
// - SKOS: https://www.w3.org/TR/skos-reference/
// - Dublin Core: https://www.dublincore.org/specifications/dublin-core/dcmi-terms/

// RDF Schema annotation property IRIs.
const (
	RDFSLabel       = "http://www.w3.org/2000/01/rdf-schema#label"
	RDFSComment     = "http://www.w3.org/2000/01/rdf-schema#comment"
	RDFSSeeAlso     = "http://www.w3.org/2000/01/rdf-schema#seeAlso"
	RDFSIsDefinedBy = "http://www.w3.org/2000/01/rdf-schema#isDefinedBy"
)

// SKOS annotation property IRIs.
const (
	SKOSPrefLabel     = "http://www.w3.org/2004/02/skos/core#prefLabel"
	SKOSAltLabel      = "http://www.w3.org/2004/02/skos/core#altLabel"
	SKOSHiddenLabel   = "http://www.w3.org/2004/02/skos/core#hiddenLabel"
	SKOSDefinition    = "http://www.w3.org/2004/02/skos/core#definition"
	SKOSExample       = "http://www.w3.org/2004/02/skos/core#example"
	SKOSNote          = "http://www.w3.org/2004/02/skos/core#note"
	SKOSScopeNote     = "http://www.w3.org/2004/02/skos/core#scopeNote"
	SKOSEditorialNote = "http://www.w3.org/2004/02/skos/core#editorialNote"
	SKOSChangeNote    = "http://www.w3.org/2004/02/skos/core#changeNote"
	SKOSHistoryNote   = "http://www.w3.org/2004/02/skos/core#historyNote"
	SKOSNotation      = "http://www.w3.org/2004/02/skos/core#notation"

	// skos:comment is not part of the SKOS core schema but appears in
	// ontologies authored against older SKOS drafts, so the catalogue
	// carries an explicit entry for it.
	SKOSComment = "http://www.w3.org/2004/02/skos/core#comment"
)

// Dublin Core annotation property IRIs.
const (
	DCTermsTitle       = "http://purl.org/dc/terms/title"
	DCTermsDescription = "http://purl.org/dc/terms/description"
	DCTermsIdentifier  = "http://purl.org/dc/terms/identifier"
	DCTermsSource      = "http://purl.org/dc/terms/source"
	DCTermsCreator     = "http://purl.org/dc/terms/creator"
	DCTermsContributor = "http://purl.org/dc/terms/contributor"
	DCTermsAlternative = "http://purl.org/dc/terms/alternative"
	DCTermsSubject     = "http://purl.org/dc/terms/subject"

	// Legacy Dublin Core elements namespace, still common in the wild.
	DCElementsDescription = "http://purl.org/dc/elements/1.1/description"
)

// rdfSchemaSource returns the RDF Schema annotation properties.
func rdfSchemaSource() []AnnotationProperty {
	return []AnnotationProperty{
		{IRI: RDFSLabel, Label: "Label", Standard: true},
		{IRI: RDFSComment, Label: "Comment", Standard: true},
		{IRI: RDFSSeeAlso, Label: "See Also", Standard: true},
		{IRI: RDFSIsDefinedBy, Label: "Is Defined By", Standard: true},
	}
}

// skosSource returns the SKOS annotation properties.
func skosSource() []AnnotationProperty {
	return []AnnotationProperty{
		{IRI: SKOSPrefLabel, Label: "Preferred Label", Standard: true},
		{IRI: SKOSAltLabel, Label: "Alternative Label", Standard: true},
		{IRI: SKOSHiddenLabel, Label: "Hidden Label", Standard: true},
		{IRI: SKOSDefinition, Label: "Definition", Standard: true},
		{IRI: SKOSExample, Label: "Example", Standard: true},
		{IRI: SKOSNote, Label: "Note", Standard: true},
		{IRI: SKOSScopeNote, Label: "Scope Note", Standard: true},
		{IRI: SKOSEditorialNote, Label: "Editorial Note", Standard: true},
		{IRI: SKOSChangeNote, Label: "Change Note", Standard: true},
		{IRI: SKOSHistoryNote, Label: "History Note", Standard: true},
		{IRI: SKOSNotation, Label: "Notation", Standard: true},
		{IRI: SKOSComment, Label: "Comment", Standard: true},
	}
}

// dcmiSource returns the Dublin Core annotation properties.
func dcmiSource() []AnnotationProperty {
	return []AnnotationProperty{
		{IRI: DCTermsTitle, Label: "Title", Standard: true},
		{IRI: DCTermsDescription, Label: "Description", Standard: true},
		{IRI: DCTermsIdentifier, Label: "Identifier", Standard: true},
		{IRI: DCTermsSource, Label: "Source", Standard: true},
		{IRI: DCTermsCreator, Label: "Creator", Standard: true},
		{IRI: DCTermsContributor, Label: "Contributor", Standard: true},
		{IRI: DCTermsAlternative, Label: "Alternative", Standard: true},
		{IRI: DCTermsSubject, Label: "Subject", Standard: true},
		{IRI: DCElementsDescription, Label: "Description", Standard: true},
	}
}
