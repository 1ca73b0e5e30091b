// Package export translates a modelled PropertyGraph into its interchange
// representations: the native structural JSON, a vendor-neutral interchange
// graph document, and a lightweight visualisation dataset.
//
// Exporters are stateless and never mutate the graph; exporting the same
// graph twice produces identical output.
package export
