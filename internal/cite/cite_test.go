// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package cite

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pdiddy/lex-engine/internal/retriever"
	"github.com/pdiddy/lex-engine/pkg/types"
)

// fixedBackend returns a canned completion and records the prompt.
type fixedBackend struct {
	response string
	err      error
	prompt   string
}

func (f *fixedBackend) Complete(_ context.Context, prompt string) (string, error) {
	f.prompt = prompt
	return f.response, f.err
}

const workURI = "https://fedlex.data.admin.ch/eli/cc/1999/1"

func testEvidence() Evidence {
	return Evidence{
		Records: []types.LegislativeRecord{{
			WorkURI:  workURI,
			Title:    "Asylgesetz",
			SRNumber: "SR 142.31",
			Language: types.LangGerman,
		}},
		FullTexts: map[string]*types.FullText{
			workURI: {
				WorkURI:  workURI,
				Language: types.LangGerman,
				Articles: []types.ArticleNode{
					{ID: "art_2", Heading: "Art. 2 Asyl", Text: "Die Schweiz gewährt Flüchtlingen auf Gesuch hin Asyl."},
					{ID: "art_3", Heading: "Art. 3 Flüchtlingsbegriff", Text: "Flüchtlinge sind Personen, die ernsthaften Nachteilen ausgesetzt sind."},
				},
			},
		},
		Excerpts: []retriever.Excerpt{
			{DocID: "emrk-kommentar", Title: "EMRK Kommentar", Text: "Artikel 3 EMRK verbietet Folter.", Score: 2.5},
		},
	}
}

func TestInterpret(t *testing.T) {
	backend := &fixedBackend{response: "```json\n" + `{
		"answer": "Die Schweiz gewährt Asyl auf Gesuch hin.",
		"citations": [{
			"work_uri": "` + workURI + `",
			"sr_number": "SR 142.31",
			"title": "Asylgesetz",
			"article_id": "art_2",
			"quote": "gewährt Flüchtlingen auf Gesuch hin Asyl",
			"language": "de"
		}]
	}` + "\n```"}

	in := &Interpreter{Backend: backend}
	q := types.Query{Text: "Wann gewährt die Schweiz Asyl?"}

	answer, citations, err := in.Interpret(context.Background(), q, testEvidence())
	require.NoError(t, err)
	assert.Equal(t, "Die Schweiz gewährt Asyl auf Gesuch hin.", answer)
	require.Len(t, citations, 1)
	assert.Equal(t, "art_2", citations[0].ArticleID)
	assert.Equal(t, types.LangGerman, citations[0].Language)

	// Structured evidence renders before the general corpus, and both
	// carry their identifying metadata.
	legIdx := strings.Index(backend.prompt, "SWISS FEDERAL LEGISLATION")
	genIdx := strings.Index(backend.prompt, "GENERAL LEGAL DOCUMENTS")
	require.True(t, legIdx >= 0 && genIdx >= 0)
	assert.Less(t, legIdx, genIdx)
	assert.Contains(t, backend.prompt, "SR 142.31")
	assert.Contains(t, backend.prompt, "[art_3] Art. 3 Flüchtlingsbegriff")
	assert.Contains(t, backend.prompt, "emrk-kommentar")
	assert.Contains(t, backend.prompt, "Wann gewährt die Schweiz Asyl?")
}

func TestInterpretMetadataOnlyRecord(t *testing.T) {
	ev := testEvidence()
	delete(ev.FullTexts, workURI)

	backend := &fixedBackend{response: `{"answer": "ok", "citations": []}`}
	in := &Interpreter{Backend: backend}

	_, _, err := in.Interpret(context.Background(), types.Query{Text: "q"}, ev)
	require.NoError(t, err)
	assert.Contains(t, backend.prompt, "metadata only")
}

func TestInterpretMalformedResponse(t *testing.T) {
	tests := []struct {
		name     string
		response string
	}{
		{"not json", "Here is my analysis: the law says..."},
		{"empty answer", `{"answer": "", "citations": []}`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			in := &Interpreter{Backend: &fixedBackend{response: tt.response}}
			_, _, err := in.Interpret(context.Background(), types.Query{Text: "q"}, testEvidence())
			assert.Error(t, err)
		})
	}
}

func TestVerify(t *testing.T) {
	fulltexts := testEvidence().FullTexts

	cite := func(article, quote string) types.Citation {
		return types.Citation{WorkURI: workURI, ArticleID: article, Quote: quote, Language: types.LangGerman}
	}

	tests := []struct {
		name string
		in   types.Citation
		kept bool
	}{
		{"exact quote", cite("art_2", "gewährt Flüchtlingen auf Gesuch hin Asyl"), true},
		{"whitespace tolerated", cite("art_2", "gewährt  Flüchtlingen\nauf Gesuch hin Asyl"), true},
		{"mislabeled article falls back to document", cite("art_9", "ernsthaften Nachteilen"), true},
		{"quote from heading", cite("art_3", "Art. 3 Flüchtlingsbegriff"), true},
		{"heading quote with mislabeled article", cite("art_9", "Flüchtlingsbegriff"), true},
		{"fabricated quote", cite("art_2", "Asyl wird niemals gewährt"), false},
		{"empty quote", cite("art_2", "   "), false},
		{"unknown work", types.Citation{WorkURI: "https://fedlex.data.admin.ch/eli/cc/0000/0", ArticleID: "art_1", Quote: "Asyl"}, false},
		{"no work reference", types.Citation{Quote: "Asyl"}, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			kept, warnings := Verify([]types.Citation{tt.in}, fulltexts, nil)
			if tt.kept {
				require.Len(t, kept, 1)
				assert.Empty(t, warnings)
			} else {
				assert.Empty(t, kept)
				require.Len(t, warnings, 1)
				assert.Contains(t, warnings[0], "citation dropped")
			}
		})
	}
}

func TestVerifyKeepsOrder(t *testing.T) {
	fulltexts := testEvidence().FullTexts
	citations := []types.Citation{
		{WorkURI: workURI, ArticleID: "art_3", Quote: "ernsthaften Nachteilen", Language: types.LangGerman},
		{WorkURI: workURI, ArticleID: "art_2", Quote: "nicht vorhanden", Language: types.LangGerman},
		{WorkURI: workURI, ArticleID: "art_2", Quote: "auf Gesuch hin", Language: types.LangGerman},
	}

	kept, warnings := Verify(citations, fulltexts, nil)
	require.Len(t, kept, 2)
	assert.Equal(t, "art_3", kept[0].ArticleID)
	assert.Equal(t, "art_2", kept[1].ArticleID)
	assert.Len(t, warnings, 1)
}
