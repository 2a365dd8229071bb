// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package types

// Citation is a verified verbatim quotation from a legislative text.
// A citation only surfaces after its quote has been checked for exact
// substring containment in the referenced full text.
type Citation struct {
	// WorkURI references the cited LegislativeRecord.
	WorkURI string `json:"work_uri" yaml:"work_uri"`

	// SRNumber is the registry number of the cited act, for display.
	SRNumber string `json:"sr_number,omitempty" yaml:"sr_number,omitempty"`

	// Title is the cited act's title, for display.
	Title string `json:"title,omitempty" yaml:"title,omitempty"`

	// ArticleID is the stable node identifier the quote was taken from.
	ArticleID string `json:"article_id" yaml:"article_id"`

	// Quote is the verbatim quoted span.
	Quote string `json:"quote" yaml:"quote"`

	// Language is the language of the quoted text.
	Language Language `json:"language" yaml:"language"`
}

// BibliographyKind distinguishes legislative references from general
// corpus references.
type BibliographyKind string

const (
	BibLegislative BibliographyKind = "legislative"
	BibGeneral     BibliographyKind = "general"
)

// BibliographyEntry is one reference in the merged bibliography.
type BibliographyEntry struct {
	// Kind is legislative or general.
	Kind BibliographyKind `json:"kind" yaml:"kind"`

	// Reference is the inline label (e.g. "[L1]" for legislation, "[1]"
	// for general documents).
	Reference string `json:"reference" yaml:"reference"`

	// Title is the act title or document name.
	Title string `json:"title" yaml:"title"`

	// SRNumber is set on legislative entries.
	SRNumber string `json:"sr_number,omitempty" yaml:"sr_number,omitempty"`

	// RecordID is the work URI for legislative entries or the corpus
	// document id for general entries.
	RecordID string `json:"record_id" yaml:"record_id"`

	// Language is set on legislative entries: the language variant the
	// evidence was read in.
	Language Language `json:"language,omitempty" yaml:"language,omitempty"`

	// Excerpt is a short evidence snippet, set on general entries.
	Excerpt string `json:"excerpt,omitempty" yaml:"excerpt,omitempty"`

	// Links maps publication languages to canonical document URLs, set
	// on legislative entries.
	Links map[Language]string `json:"links,omitempty" yaml:"links,omitempty"`

	// Applicability is the window status of a legislative entry at
	// analysis time.
	Applicability ApplicabilityStatus `json:"applicability,omitempty" yaml:"applicability,omitempty"`

	// Score is the retrieval relevance for general entries.
	Score float64 `json:"score,omitempty" yaml:"score,omitempty"`
}

// AnalysisResult is the final output handed to the caller. It is
// transient: the engine keeps no copy once returned.
type AnalysisResult struct {
	// ID is a unique identifier for this analysis run.
	ID string `json:"id" yaml:"id"`

	// Query echoes the question that was analyzed.
	Query string `json:"query" yaml:"query"`

	// Answer is the synthesized analysis text.
	Answer string `json:"answer" yaml:"answer"`

	// RouteRequested is the route the classifier decided on.
	RouteRequested Route `json:"route_requested" yaml:"route_requested"`

	// RouteUsed is the route that actually produced evidence. It differs
	// from RouteRequested when a path degraded.
	RouteUsed Route `json:"route_used" yaml:"route_used"`

	// Rationale is the classifier's routing rationale.
	Rationale string `json:"rationale,omitempty" yaml:"rationale,omitempty"`

	// Citations are the verified verbatim quotations.
	Citations []Citation `json:"citations" yaml:"citations"`

	// Bibliography is the merged, deduplicated reference list.
	Bibliography []BibliographyEntry `json:"bibliography" yaml:"bibliography"`

	// RecordIDs lists the work URIs of all legislative records that
	// contributed evidence.
	RecordIDs []string `json:"record_ids,omitempty" yaml:"record_ids,omitempty"`

	// Warnings records non-fatal degradations (skipped paths, dropped
	// citations) for the caller's audit trail.
	Warnings []string `json:"warnings,omitempty" yaml:"warnings,omitempty"`
}
