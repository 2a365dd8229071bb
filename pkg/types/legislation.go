// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package types

import "time"

// Language is a two-letter code for one of the four official Swiss
// publication languages.
type Language string

const (
	LangGerman  Language = "de"
	LangFrench  Language = "fr"
	LangItalian Language = "it"
	LangRomansh Language = "rm"
)

// Valid reports whether the language is one of the four registry languages.
func (l Language) Valid() bool {
	return l == LangGerman || l == LangFrench || l == LangItalian || l == LangRomansh
}

// Name returns the English display name of the language.
func (l Language) Name() string {
	switch l {
	case LangGerman:
		return "German"
	case LangFrench:
		return "French"
	case LangItalian:
		return "Italian"
	case LangRomansh:
		return "Romansh"
	}
	return string(l)
}

// ApplicabilityStatus classifies a record's position relative to its
// applicability window at a reference time.
type ApplicabilityStatus string

const (
	StatusApplicable       ApplicabilityStatus = "currently_applicable"
	StatusNotYetApplicable ApplicabilityStatus = "not_yet_applicable"
	StatusExpired          ApplicabilityStatus = "expired"
	StatusNoDates          ApplicabilityStatus = "no_dates_available"
)

// LegislativeRecord is one consolidated act returned by the registry.
// Records are fetched per query and held only in a bounded TTL cache,
// never persisted.
type LegislativeRecord struct {
	// WorkURI identifies the abstract work (the SR entry). Used as the
	// record identity for deduplication and citation references.
	WorkURI string `json:"work_uri" yaml:"work_uri"`

	// ConsolidationURI identifies the specific dated consolidation the
	// applicability dates belong to. Required for full-text fetching.
	ConsolidationURI string `json:"consolidation_uri" yaml:"consolidation_uri"`

	// Title is the act title in the expression language of the query.
	Title string `json:"title" yaml:"title"`

	// SRNumber is the systematic collection number used for citation
	// (e.g. "142.31"). Empty when the taxonomy entry is missing.
	SRNumber string `json:"sr_number,omitempty" yaml:"sr_number,omitempty"`

	// DateDocument is the document date of the work.
	DateDocument time.Time `json:"date_document,omitempty" yaml:"date_document,omitempty"`

	// DateApplicability is the first day the consolidation is in force.
	DateApplicability time.Time `json:"date_applicability" yaml:"date_applicability"`

	// DateEndApplicability is the last day the consolidation remains in
	// force. The zero value means the window is open-ended.
	DateEndApplicability time.Time `json:"date_end_applicability,omitempty" yaml:"date_end_applicability,omitempty"`

	// Language is the expression language the record was matched in.
	Language Language `json:"language" yaml:"language"`

	// DocumentURLs maps each publication language to the canonical
	// browser URL of the act.
	DocumentURLs map[Language]string `json:"document_urls,omitempty" yaml:"document_urls,omitempty"`
}

// IsApplicable reports whether the record's applicability window covers
// the reference time. Records without a start date are never applicable.
func (r LegislativeRecord) IsApplicable(now time.Time) bool {
	if r.DateApplicability.IsZero() {
		return false
	}
	if now.Before(r.DateApplicability) {
		return false
	}
	if !r.DateEndApplicability.IsZero() && now.After(r.DateEndApplicability) {
		return false
	}
	return true
}

// Applicability classifies the record's window relative to now.
func (r LegislativeRecord) Applicability(now time.Time) ApplicabilityStatus {
	switch {
	case r.DateApplicability.IsZero():
		return StatusNoDates
	case now.Before(r.DateApplicability):
		return StatusNotYetApplicable
	case !r.DateEndApplicability.IsZero() && now.After(r.DateEndApplicability):
		return StatusExpired
	}
	return StatusApplicable
}

// ArticleNode is one addressable unit of a parsed legal text: an article
// or numbered paragraph with a stable identifier.
type ArticleNode struct {
	// ID is the stable node identifier from the source markup
	// (e.g. "art_3", "art_3/para_2").
	ID string `json:"id" yaml:"id"`

	// Heading is the article heading, when present.
	Heading string `json:"heading,omitempty" yaml:"heading,omitempty"`

	// Text is the plain text content of the node.
	Text string `json:"text" yaml:"text"`
}

// FullText is the parsed body of one legislative record in one language,
// addressable by article node identifiers.
type FullText struct {
	// WorkURI ties the text to its LegislativeRecord.
	WorkURI string `json:"work_uri" yaml:"work_uri"`

	// ConsolidationURI identifies the consolidation the text realizes.
	ConsolidationURI string `json:"consolidation_uri" yaml:"consolidation_uri"`

	// Language is the language variant that was actually fetched, which
	// may differ from the requested one after fallback.
	Language Language `json:"language" yaml:"language"`

	// SourceURL is the manifestation URL the text was downloaded from.
	SourceURL string `json:"source_url" yaml:"source_url"`

	// Articles are the addressable nodes in document order.
	Articles []ArticleNode `json:"articles" yaml:"articles"`
}

// Article returns the node with the given identifier.
func (ft *FullText) Article(id string) (ArticleNode, bool) {
	for _, a := range ft.Articles {
		if a.ID == id {
			return a, true
		}
	}
	return ArticleNode{}, false
}
