// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package cite

import (
	"strings"

	"github.com/sirupsen/logrus"

	"github.com/pdiddy/lex-engine/pkg/types"
)

// Verify checks each citation's quote against the fetched full texts
// and returns only the citations that pass, with per-drop reasons for
// the caller's warning list. A quote passes when it appears verbatim,
// modulo whitespace, in the cited article; when the article reference
// is missing or wrong the whole document is searched before giving up.
// Citations of works without a fetched text are dropped: an unverifiable
// quote must never surface as verified.
func Verify(citations []types.Citation, fulltexts map[string]*types.FullText, log *logrus.Logger) ([]types.Citation, []string) {
	if log == nil {
		log = logrus.New()
	}

	var (
		kept     []types.Citation
		warnings []string
	)
	for _, c := range citations {
		reason, ok := verifyOne(c, fulltexts)
		if ok {
			kept = append(kept, c)
			continue
		}
		warnings = append(warnings, reason)
		log.WithFields(logrus.Fields{
			"work":    c.WorkURI,
			"article": c.ArticleID,
		}).Warn(reason)
	}
	return kept, warnings
}

func verifyOne(c types.Citation, fulltexts map[string]*types.FullText) (string, bool) {
	if c.WorkURI == "" {
		return "citation dropped: no work reference for quote " + abbrev(c.Quote), false
	}
	ft, ok := fulltexts[c.WorkURI]
	if !ok {
		return "citation dropped: no fetched text for " + c.WorkURI, false
	}
	if strings.TrimSpace(c.Quote) == "" {
		return "citation dropped: empty quote for " + c.WorkURI, false
	}

	quote := normalize(c.Quote)

	if art, ok := ft.Article(c.ArticleID); ok {
		if articleContains(art, quote) {
			return "", true
		}
	}

	// The model sometimes mislabels the article; accept the quote if it
	// appears anywhere in the document.
	for _, art := range ft.Articles {
		if articleContains(art, quote) {
			return "", true
		}
	}

	return "citation dropped: quote not found in " + c.WorkURI + ": " + abbrev(c.Quote), false
}

// articleContains checks the quote against the article body and its
// heading; the heading is quotable material too.
func articleContains(art types.ArticleNode, quote string) bool {
	if strings.Contains(normalize(art.Text), quote) {
		return true
	}
	return art.Heading != "" && strings.Contains(normalize(art.Heading), quote)
}

// normalize collapses whitespace so formatting differences between the
// model's quote and the parsed text do not fail verification.
func normalize(s string) string {
	return strings.Join(strings.Fields(s), " ")
}

func abbrev(s string) string {
	s = normalize(s)
	if len(s) > 60 {
		return s[:60] + "..."
	}
	return s
}
