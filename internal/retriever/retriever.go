// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package retriever supplies general-corpus evidence for the vector
// analysis path. The pipeline depends only on the Retriever contract;
// the bundled Store is a full-text adapter over an ingested corpus of
// commentary, doctrine and case-law documents.
package retriever

import "context"

// Excerpt is one retrieved passage of a corpus document.
type Excerpt struct {
	// DocID identifies the source document.
	DocID string `json:"doc_id" yaml:"doc_id"`

	// Title is the document title, when known.
	Title string `json:"title,omitempty" yaml:"title,omitempty"`

	// Text is the passage content.
	Text string `json:"text" yaml:"text"`

	// Score is the retrieval relevance, higher is better.
	Score float64 `json:"score" yaml:"score"`
}

// Retriever returns the k most relevant excerpts for a query.
type Retriever interface {
	Retrieve(ctx context.Context, query string, k int) ([]Excerpt, error)
}
