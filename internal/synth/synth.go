// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package synth translates natural-language legal questions into SPARQL
// queries against the legislative registry. Generated queries pass a
// syntactic well-formedness check before they are handed to the registry
// client; a malformed query earns exactly one corrective retry.
package synth

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"strings"

	"github.com/pdiddy/lex-engine/internal/ai"
	"github.com/pdiddy/lex-engine/internal/jolux"
	"github.com/pdiddy/lex-engine/pkg/types"
)

// ErrSynthesis marks a query that was still malformed after a corrective
// retry. The structured path is skipped when this surfaces.
var ErrSynthesis = errors.New("formal query synthesis failed")

const defaultLimit = 10

// fenceRe strips markdown code fences the model sometimes wraps the
// query in despite instructions.
var fenceRe = regexp.MustCompile("(?m)^```(?:sparql)?\\s*$")

// keywordRe extracts the lowercase terms inside CONTAINS(LCASE(?title), "...")
// filters, kept on the FormalQuery for auditing and tests.
var keywordRe = regexp.MustCompile(`CONTAINS\(LCASE\(\?title\),\s*"([^"]+)"\)`)

// Synthesize generates a well-formed FormalQuery for the question in the
// given expression language. On a failed well-formedness check it retries
// once with corrective feedback; a second failure wraps ErrSynthesis.
func Synthesize(ctx context.Context, backend ai.Backend, q types.Query, lang types.Language, cfg types.SynthesizerConfig, maxRetries int) (types.FormalQuery, error) {
	limit := cfg.MaxResults
	if limit <= 0 {
		limit = defaultLimit
	}
	langURI := jolux.LanguageURI(lang)

	prompt, err := renderGenerationPrompt(questionText(q), langURI, limit)
	if err != nil {
		return types.FormalQuery{}, fmt.Errorf("rendering synthesis prompt: %w", err)
	}

	raw, err := ai.CallWithRetry(ctx, backend, prompt, maxRetries)
	if err != nil {
		return types.FormalQuery{}, fmt.Errorf("%w: %v", ErrSynthesis, err)
	}

	query := Sanitize(raw)
	violations := Validate(query, langURI)
	if len(violations) == 0 {
		return buildFormalQuery(query, lang), nil
	}

	// One corrective retry with the concrete violations.
	prompt, err = renderCorrectionPrompt(query, violations, langURI, limit)
	if err != nil {
		return types.FormalQuery{}, fmt.Errorf("rendering correction prompt: %w", err)
	}

	raw, err = ai.CallWithRetry(ctx, backend, prompt, maxRetries)
	if err != nil {
		return types.FormalQuery{}, fmt.Errorf("%w: %v", ErrSynthesis, err)
	}

	query = Sanitize(raw)
	if violations = Validate(query, langURI); len(violations) > 0 {
		return types.FormalQuery{}, fmt.Errorf("%w: still malformed after retry: %s",
			ErrSynthesis, strings.Join(violations, "; "))
	}
	return buildFormalQuery(query, lang), nil
}

// Sanitize strips markdown fences and PREFIX declarations from a raw
// model response. Prefixes are prepended centrally at execution time.
func Sanitize(raw string) string {
	raw = fenceRe.ReplaceAllString(raw, "")

	var lines []string
	for _, line := range strings.Split(raw, "\n") {
		if strings.HasPrefix(strings.TrimSpace(line), "PREFIX") {
			continue
		}
		lines = append(lines, line)
	}
	return strings.TrimSpace(strings.Join(lines, "\n"))
}

// Validate performs the syntactic well-formedness check and returns a
// list of violations, empty when the query is acceptable. It is not a
// SPARQL parser: it enforces the query pattern the registry client and
// the applicability filter depend on.
func Validate(query, languageURI string) []string {
	var violations []string

	if strings.TrimSpace(query) == "" {
		return []string{"query is empty"}
	}

	upper := strings.ToUpper(query)
	if !strings.Contains(upper, "SELECT") {
		violations = append(violations, "missing SELECT clause")
	}
	if !strings.Contains(upper, "WHERE") {
		violations = append(violations, "missing WHERE clause")
	}
	if open, close := strings.Count(query, "{"), strings.Count(query, "}"); open != close {
		violations = append(violations, fmt.Sprintf("unbalanced braces: %d opening, %d closing", open, close))
	}
	if !strings.Contains(query, "jolux:ConsolidationAbstract") {
		violations = append(violations, "missing jolux:ConsolidationAbstract class pattern")
	}
	if !strings.Contains(query, "jolux:isMemberOf") {
		violations = append(violations, "missing consolidation link (jolux:isMemberOf)")
	}
	if !strings.Contains(query, "?dateApplicability") {
		violations = append(violations, "missing applicability date variable ?dateApplicability")
	}
	if !strings.Contains(query, languageURI) {
		violations = append(violations, "missing language filter "+languageURI)
	}
	if len(keywordRe.FindStringSubmatch(query)) == 0 {
		violations = append(violations, `missing keyword filter CONTAINS(LCASE(?title), "...")`)
	}
	if !strings.Contains(upper, "LIMIT") {
		violations = append(violations, "missing LIMIT clause")
	}

	return violations
}

// buildFormalQuery assembles the FormalQuery, pulling the keyword terms
// out of the validated query text.
func buildFormalQuery(query string, lang types.Language) types.FormalQuery {
	var keywords []string
	for _, m := range keywordRe.FindAllStringSubmatch(query, -1) {
		keywords = append(keywords, m[1])
	}
	return types.FormalQuery{
		Text:     query,
		Language: lang,
		Keywords: keywords,
	}
}
