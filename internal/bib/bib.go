// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package bib assembles the reference list of an analysis: legislative
// sources from the registry first, then general corpus documents.
package bib

import (
	"fmt"
	"sort"
	"time"

	"github.com/pdiddy/lex-engine/internal/retriever"
	"github.com/pdiddy/lex-engine/pkg/types"
)

// Build merges legislative records and corpus excerpts into one ordered
// bibliography. Legislative entries come first, newest applicability
// first, labeled [L1], [L2], ...; general entries follow by descending
// retrieval score, labeled [1], [2], ... Duplicate works (same work URI
// and language) and duplicate documents collapse to one entry.
func Build(records []types.LegislativeRecord, fulltexts map[string]*types.FullText, excerpts []retriever.Excerpt, now time.Time) []types.BibliographyEntry {
	entries := legislative(records, fulltexts, now)
	entries = append(entries, general(excerpts)...)
	return entries
}

func legislative(records []types.LegislativeRecord, fulltexts map[string]*types.FullText, now time.Time) []types.BibliographyEntry {
	type keyed struct {
		rec  types.LegislativeRecord
		lang types.Language
	}

	seen := make(map[string]bool, len(records))
	var kept []keyed
	for _, r := range records {
		lang := r.Language
		if ft, ok := fulltexts[r.WorkURI]; ok {
			lang = ft.Language
		}
		key := r.WorkURI + "|" + string(lang)
		if seen[key] {
			continue
		}
		seen[key] = true
		kept = append(kept, keyed{rec: r, lang: lang})
	}

	sort.SliceStable(kept, func(i, j int) bool {
		return kept[i].rec.DateApplicability.After(kept[j].rec.DateApplicability)
	})

	entries := make([]types.BibliographyEntry, 0, len(kept))
	for i, k := range kept {
		entries = append(entries, types.BibliographyEntry{
			Kind:          types.BibLegislative,
			Reference:     fmt.Sprintf("[L%d]", i+1),
			Title:         k.rec.Title,
			SRNumber:      k.rec.SRNumber,
			RecordID:      k.rec.WorkURI,
			Language:      k.lang,
			Links:         k.rec.DocumentURLs,
			Applicability: k.rec.Applicability(now),
		})
	}
	return entries
}

func general(excerpts []retriever.Excerpt) []types.BibliographyEntry {
	seen := make(map[string]bool, len(excerpts))
	var kept []retriever.Excerpt
	for _, e := range excerpts {
		if seen[e.DocID] {
			continue
		}
		seen[e.DocID] = true
		kept = append(kept, e)
	}

	sort.SliceStable(kept, func(i, j int) bool {
		return kept[i].Score > kept[j].Score
	})

	entries := make([]types.BibliographyEntry, 0, len(kept))
	for i, e := range kept {
		title := e.Title
		if title == "" {
			title = e.DocID
		}
		entries = append(entries, types.BibliographyEntry{
			Kind:      types.BibGeneral,
			Reference: fmt.Sprintf("[%d]", i+1),
			Title:     title,
			RecordID:  e.DocID,
			Excerpt:   snippet(e.Text),
			Score:     e.Score,
		})
	}
	return entries
}

// snippet bounds the evidence excerpt carried in the bibliography.
func snippet(s string) string {
	const max = 200
	if len(s) <= max {
		return s
	}
	cut := s[:max]
	for i := len(cut) - 1; i > 0; i-- {
		if cut[i] == ' ' {
			return cut[:i] + "..."
		}
	}
	return cut + "..."
}
