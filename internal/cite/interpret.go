// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package cite turns gathered evidence into a grounded answer: the
// interpreter asks the model for an analysis with machine-readable
// citations, and the verifier keeps only citations whose quotes appear
// in the fetched legal texts.
package cite

import (
	"context"
	"encoding/json"
	"fmt"
	"regexp"
	"strings"
	"text/template"

	"github.com/pdiddy/lex-engine/internal/ai"
	"github.com/pdiddy/lex-engine/internal/retriever"
	"github.com/pdiddy/lex-engine/pkg/types"
)

// Evidence is the merged material an interpretation call works from.
// Structured registry evidence always precedes general excerpts in the
// rendered prompt.
type Evidence struct {
	Records   []types.LegislativeRecord
	FullTexts map[string]*types.FullText // by work URI
	Excerpts  []retriever.Excerpt
}

// IsEmpty reports whether there is nothing to interpret.
func (e Evidence) IsEmpty() bool {
	return len(e.Records) == 0 && len(e.Excerpts) == 0
}

const interpretPromptTmpl = `You are a Swiss legal analyst answering a lawyer's question from the
provided material only. Do not use outside knowledge; if the material
does not answer the question, say so explicitly.

CITATION REQUIREMENTS:
- Cite exact articles with SR numbers and verbatim quotes from the
  legislation texts when available.
- For general documents, cite the specific document and passage.
- Only cite the relevant parts, never an entire document.
- Note the language version of each quoted provision.

Respond with a single JSON object, no surrounding prose:
{
  "answer": "the analysis, clear and concise, lawyer-to-lawyer",
  "citations": [
    {
      "work_uri": "data URI of the cited act, empty for general documents",
      "sr_number": "systematic number, e.g. SR 142.31",
      "title": "act or document title",
      "article_id": "cited article node, e.g. art_3",
      "quote": "verbatim quoted passage",
      "language": "de|fr|it|rm"
    }
  ]
}
{{if .Legislation}}
SWISS FEDERAL LEGISLATION:
<legislation>
{{.Legislation}}</legislation>
{{end}}{{if .General}}
GENERAL LEGAL DOCUMENTS:
<general_documents>
{{.General}}</general_documents>
{{end}}
LAWYER'S QUESTION:
{{.Question}}
`

var interpretTmpl = template.Must(template.New("interpret").Parse(interpretPromptTmpl))

// Interpreter produces a grounded analysis from evidence.
type Interpreter struct {
	Backend    ai.Backend
	MaxRetries int
}

// Interpret runs one interpretation call and parses the structured
// response. Citations are returned unverified.
func (in *Interpreter) Interpret(ctx context.Context, q types.Query, ev Evidence) (string, []types.Citation, error) {
	var buf strings.Builder
	err := interpretTmpl.Execute(&buf, map[string]string{
		"Legislation": renderLegislation(ev),
		"General":     renderExcerpts(ev.Excerpts),
		"Question":    q.Text,
	})
	if err != nil {
		return "", nil, fmt.Errorf("rendering interpretation prompt: %w", err)
	}

	raw, err := ai.CallWithRetry(ctx, in.Backend, buf.String(), in.MaxRetries)
	if err != nil {
		return "", nil, fmt.Errorf("interpretation call: %w", err)
	}

	return parseInterpretation(raw)
}

// renderLegislation formats registry records and their fetched texts.
// Every record shows its applicability dates so the model can
// distinguish consolidation states explicitly.
func renderLegislation(ev Evidence) string {
	var b strings.Builder
	for _, r := range ev.Records {
		fmt.Fprintf(&b, "ACT: %s (%s)\n", r.Title, r.SRNumber)
		fmt.Fprintf(&b, "  work_uri: %s\n", r.WorkURI)
		if !r.DateApplicability.IsZero() {
			fmt.Fprintf(&b, "  applicable since: %s\n", r.DateApplicability.Format("2006-01-02"))
		}
		ft, ok := ev.FullTexts[r.WorkURI]
		if !ok {
			b.WriteString("  full text: unavailable, metadata only\n\n")
			continue
		}
		fmt.Fprintf(&b, "  language: %s\n", ft.Language.Name())
		for _, art := range ft.Articles {
			fmt.Fprintf(&b, "  [%s] %s\n", art.ID, art.Heading)
			fmt.Fprintf(&b, "  %s\n", art.Text)
		}
		b.WriteString("\n")
	}
	return b.String()
}

func renderExcerpts(excerpts []retriever.Excerpt) string {
	var b strings.Builder
	for _, e := range excerpts {
		fmt.Fprintf(&b, "DOCUMENT: %s (%s)\n%s\n\n", e.Title, e.DocID, e.Text)
	}
	return b.String()
}

var jsonFenceRe = regexp.MustCompile("(?s)```(?:json)?\\s*(.*?)```")

type interpretation struct {
	Answer    string           `json:"answer"`
	Citations []types.Citation `json:"citations"`
}

// parseInterpretation decodes the model's JSON response, tolerating a
// surrounding code fence.
func parseInterpretation(raw string) (string, []types.Citation, error) {
	body := strings.TrimSpace(raw)
	if m := jsonFenceRe.FindStringSubmatch(body); m != nil {
		body = strings.TrimSpace(m[1])
	}

	var out interpretation
	if err := json.Unmarshal([]byte(body), &out); err != nil {
		return "", nil, fmt.Errorf("parsing interpretation response: %w", err)
	}
	if out.Answer == "" {
		return "", nil, fmt.Errorf("interpretation response has no answer")
	}
	return out.Answer, out.Citations, nil
}
