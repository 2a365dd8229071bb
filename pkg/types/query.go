// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package types

// Route identifies which knowledge source(s) to consult for a query.
type Route string

const (
	// RouteStructured consults only the legislative registry.
	RouteStructured Route = "structured"

	// RouteVector consults only the similarity-indexed document corpus.
	RouteVector Route = "vector"

	// RouteBoth consults both sources and merges the evidence.
	RouteBoth Route = "both"
)

// Valid reports whether the route is one of the three known values.
func (r Route) Valid() bool {
	return r == RouteStructured || r == RouteVector || r == RouteBoth
}

// RouteDecision is the classification outcome for one query. Exactly one
// decision is produced per query.
type RouteDecision struct {
	// Route selects the source(s) to consult.
	Route Route `json:"route" yaml:"route"`

	// Rationale records why this route was chosen, including fallback
	// reasons when the classifier was unavailable.
	Rationale string `json:"rationale" yaml:"rationale"`
}

// Query is one natural-language legal question. Queries are ephemeral:
// created per request and never persisted.
type Query struct {
	// Text is the question as the researcher phrased it.
	Text string `json:"text" yaml:"text"`

	// Language is an optional hint for the preferred answer and full-text
	// language. Empty means the registry default applies.
	Language Language `json:"language,omitempty" yaml:"language,omitempty"`

	// Jurisdiction is an optional hint naming the jurisdiction the
	// question concerns (e.g. "Switzerland").
	Jurisdiction string `json:"jurisdiction,omitempty" yaml:"jurisdiction,omitempty"`
}

// IsEmpty reports whether the query contains no question text.
func (q Query) IsEmpty() bool {
	return q.Text == ""
}

// FormalQuery is a generated SPARQL query against the legislative
// registry. It is created by the synthesizer and consumed once by the
// registry client; standard prefixes are not included and are prepended
// at execution time.
type FormalQuery struct {
	// Text is the SPARQL query body, without PREFIX declarations.
	Text string `json:"text" yaml:"text"`

	// Language is the expression language the query filters on.
	Language Language `json:"language" yaml:"language"`

	// Keywords are the normalized search terms encoded in the query's
	// title filters, kept for auditing and tests.
	Keywords []string `json:"keywords,omitempty" yaml:"keywords,omitempty"`
}
