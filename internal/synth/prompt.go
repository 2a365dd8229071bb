// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package synth

import (
	"bytes"
	"text/template"

	"github.com/pdiddy/lex-engine/pkg/types"
)

// schemaGuide describes the registry's JOLux schema to the model. The
// query pattern at the end is the shape every generated query must take.
const schemaGuide = `REGISTRY SCHEMA (JOLux ontology):

CRITICAL CLASSES:
- jolux:ConsolidationAbstract: SR entries (systematic collection) - the main class for searching laws
- jolux:Consolidation: specific dated versions of SR entries (linked via jolux:isMemberOf)
- jolux:Expression: language-specific versions (German, French, Italian, Romansh)
- jolux:Manifestation: file formats (XML, PDF, HTML)

CRITICAL PROPERTIES:
- jolux:isMemberOf: links Consolidation to ConsolidationAbstract (required for document fetching)
- jolux:isRealizedBy: links Work to Expression (language versions)
- jolux:title: title of the document (on Expression level, multilingual)
- jolux:language: language authority URI
- jolux:dateDocument: date of the document
- jolux:dateApplicability: date from which a law becomes applicable
- jolux:dateEndApplicability: last day on which a law remains applicable
- jolux:classifiedByTaxonomyEntry: links to the taxonomy entry carrying the SR number
- skos:notation: SR number (on TaxonomyEntry)

QUERY PATTERN (always follow this structure):
1. ?work a jolux:ConsolidationAbstract ; jolux:dateDocument ?date ; jolux:isRealizedBy ?expression .
2. ?consolidation jolux:isMemberOf ?work ; jolux:dateApplicability ?dateApplicability .
3. ?expression jolux:language <language_uri> ; jolux:title ?title .
4. OPTIONAL { ?work jolux:classifiedByTaxonomyEntry ?taxonomy . ?taxonomy skos:notation ?sr_number . }
5. OPTIONAL { ?consolidation jolux:dateEndApplicability ?dateEndApplicability }
6. FILTER( CONTAINS(LCASE(?title), "keyword") || ... )

NOTES:
- jolux:title lives on the Expression, never on the Work
- always project ?work ?consolidation ?title ?sr_number ?date ?dateApplicability ?dateEndApplicability
- search keywords in the language of the requested expression, including common synonyms
- keywords must be lowercase; broaden stems (e.g. "asyl" matches Asylgesetz and Asylverordnung)`

// generationPromptTmpl is the first-attempt synthesis prompt.
var generationPromptTmpl = template.Must(template.New("generate").Parse(`You are a SPARQL expert for a legislative registry using the JOLux ontology.

Generate a valid SPARQL query answering the question below.

RULES:
1. Use jolux:ConsolidationAbstract as the main class.
2. Include jolux:dateApplicability and OPTIONAL jolux:dateEndApplicability so applicable laws can be filtered.
3. Include the consolidation via jolux:isMemberOf so full texts can be fetched.
4. Filter the expression language with: jolux:language {{.LanguageURI}}
5. Use CONTAINS with LCASE for case-insensitive keyword filters on ?title, combined with ||.
6. Always end with ORDER BY DESC(?date) and LIMIT {{.Limit}}.
7. Return ONLY the SPARQL query, without PREFIX declarations (they are added automatically) and without markdown fences.

{{.Schema}}

Question: {{.Question}}

SPARQL query (without prefixes):
`))

// correctionPromptTmpl is the single retry prompt, fed with the rejected
// query and the well-formedness violations found in it.
var correctionPromptTmpl = template.Must(template.New("correct").Parse(`The SPARQL query you generated was rejected by a syntax check.

Rejected query:
{{.Query}}

Violations:
{{range .Violations}}- {{.}}
{{end}}
Regenerate the query, fixing every violation. Follow the same rules as
before: jolux:ConsolidationAbstract, applicability dates, consolidation
via jolux:isMemberOf, language filter {{.LanguageURI}}, lowercase keyword
filters, ORDER BY DESC(?date), LIMIT {{.Limit}}. Return ONLY the query,
without PREFIX declarations or markdown fences.
`))

type promptData struct {
	Question    string
	LanguageURI string
	Schema      string
	Limit       int
}

type correctionData struct {
	Query       string
	Violations  []string
	LanguageURI string
	Limit       int
}

func renderGenerationPrompt(question, languageURI string, limit int) (string, error) {
	var buf bytes.Buffer
	err := generationPromptTmpl.Execute(&buf, promptData{
		Question:    question,
		LanguageURI: languageURI,
		Schema:      schemaGuide,
		Limit:       limit,
	})
	return buf.String(), err
}

func renderCorrectionPrompt(query string, violations []string, languageURI string, limit int) (string, error) {
	var buf bytes.Buffer
	err := correctionPromptTmpl.Execute(&buf, correctionData{
		Query:       query,
		Violations:  violations,
		LanguageURI: languageURI,
		Limit:       limit,
	})
	return buf.String(), err
}

// questionText combines the query text with its jurisdiction hint so the
// model sees the full intent.
func questionText(q types.Query) string {
	if q.Jurisdiction == "" {
		return q.Text
	}
	return q.Text + " (jurisdiction: " + q.Jurisdiction + ")"
}
