// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package pipeline

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pdiddy/lex-engine/internal/ai"
	"github.com/pdiddy/lex-engine/internal/cite"
	"github.com/pdiddy/lex-engine/internal/retriever"
	"github.com/pdiddy/lex-engine/internal/synth"
	"github.com/pdiddy/lex-engine/pkg/types"
)

const workURI = "https://fedlex.data.admin.ch/eli/cc/1999/1"

// fixedRouter returns a canned decision.
type fixedRouter struct{ decision types.RouteDecision }

func (f fixedRouter) Classify(context.Context, types.Query) types.RouteDecision {
	return f.decision
}

// stubRegistry serves canned records and texts.
type stubRegistry struct {
	records  []types.LegislativeRecord
	execErr  error
	fetchErr error
}

func (s *stubRegistry) Execute(context.Context, types.FormalQuery) ([]types.LegislativeRecord, error) {
	return s.records, s.execErr
}

func (s *stubRegistry) FetchFullText(_ context.Context, rec types.LegislativeRecord, _ types.Language) (*types.FullText, error) {
	if s.fetchErr != nil {
		return nil, s.fetchErr
	}
	return &types.FullText{
		WorkURI:  rec.WorkURI,
		Language: types.LangGerman,
		Articles: []types.ArticleNode{
			{ID: "art_2", Text: "Die Schweiz gewährt Flüchtlingen auf Gesuch hin Asyl."},
		},
	}, nil
}

type stubRetriever struct {
	excerpts []retriever.Excerpt
	err      error
}

func (s *stubRetriever) Retrieve(context.Context, string, int) ([]retriever.Excerpt, error) {
	return s.excerpts, s.err
}

// stubInterpreter returns a canned answer with one citation per record.
type stubInterpreter struct {
	err      error
	evidence cite.Evidence
}

func (s *stubInterpreter) Interpret(_ context.Context, _ types.Query, ev cite.Evidence) (string, []types.Citation, error) {
	s.evidence = ev
	if s.err != nil {
		return "", nil, s.err
	}
	var citations []types.Citation
	for _, r := range ev.Records {
		citations = append(citations, types.Citation{
			WorkURI:   r.WorkURI,
			ArticleID: "art_2",
			Quote:     "auf Gesuch hin Asyl",
			Language:  types.LangGerman,
		})
	}
	return "answer text", citations, nil
}

func testRecord() types.LegislativeRecord {
	return types.LegislativeRecord{
		WorkURI:  workURI,
		Title:    "Asylgesetz",
		SRNumber: "SR 142.31",
		Language: types.LangGerman,
	}
}

// newTestAnalyzer wires the analyzer around stubs. The returned
// interpreter pointer exposes the evidence the analyzer handed over.
func newTestAnalyzer(route types.Route, reg RegistrySource, retr retriever.Retriever) (*Analyzer, *stubInterpreter) {
	interp := &stubInterpreter{}
	a := NewAnalyzer(types.PipelineConfig{}, nil, reg, retr, nil)
	a.router = fixedRouter{decision: types.RouteDecision{Route: route, Rationale: "test"}}
	a.interp = interp
	a.synthesize = func(context.Context, ai.Backend, types.Query, types.Language, types.SynthesizerConfig, int) (types.FormalQuery, error) {
		return types.FormalQuery{Text: "SELECT ?work WHERE { }", Language: types.LangGerman}, nil
	}
	return a, interp
}

func query() types.Query {
	return types.Query{Text: "Wann gewährt die Schweiz Asyl?", Language: types.LangGerman}
}

func TestAnalyzeBothPaths(t *testing.T) {
	reg := &stubRegistry{records: []types.LegislativeRecord{testRecord()}}
	retr := &stubRetriever{excerpts: []retriever.Excerpt{
		{DocID: "emrk-kommentar", Title: "EMRK Kommentar", Text: "Artikel 3 EMRK", Score: 2.0},
	}}
	a, interp := newTestAnalyzer(types.RouteBoth, reg, retr)

	result, err := a.Analyze(context.Background(), query())
	require.NoError(t, err)

	assert.NotEmpty(t, result.ID)
	assert.Equal(t, types.RouteBoth, result.RouteRequested)
	assert.Equal(t, types.RouteBoth, result.RouteUsed)
	assert.Equal(t, "answer text", result.Answer)
	assert.Equal(t, []string{workURI}, result.RecordIDs)

	// Both evidence kinds reached the interpreter.
	assert.Len(t, interp.evidence.Records, 1)
	assert.Len(t, interp.evidence.Excerpts, 1)

	// The citation survived verification against the fetched text.
	require.Len(t, result.Citations, 1)
	assert.Equal(t, workURI, result.Citations[0].WorkURI)

	// Legislative bibliography entries precede general ones.
	require.Len(t, result.Bibliography, 2)
	assert.Equal(t, types.BibLegislative, result.Bibliography[0].Kind)
	assert.Equal(t, types.BibGeneral, result.Bibliography[1].Kind)
}

func TestAnalyzeStructuredDegradesOnBoth(t *testing.T) {
	reg := &stubRegistry{execErr: fmt.Errorf("endpoint down")}
	retr := &stubRetriever{excerpts: []retriever.Excerpt{
		{DocID: "doc", Text: "text", Score: 1.0},
	}}
	a, _ := newTestAnalyzer(types.RouteBoth, reg, retr)

	result, err := a.Analyze(context.Background(), query())
	require.NoError(t, err)

	assert.Equal(t, types.RouteBoth, result.RouteRequested)
	assert.Equal(t, types.RouteVector, result.RouteUsed)
	assert.Empty(t, result.RecordIDs)
	require.NotEmpty(t, result.Warnings)
	assert.Contains(t, result.Warnings[0], "structured path skipped")
}

func TestAnalyzeVectorDegradesOnBoth(t *testing.T) {
	reg := &stubRegistry{records: []types.LegislativeRecord{testRecord()}}
	retr := &stubRetriever{err: fmt.Errorf("index corrupt")}
	a, _ := newTestAnalyzer(types.RouteBoth, reg, retr)

	result, err := a.Analyze(context.Background(), query())
	require.NoError(t, err)
	assert.Equal(t, types.RouteStructured, result.RouteUsed)
	assert.Len(t, result.Citations, 1)
}

func TestAnalyzeAllPathsFail(t *testing.T) {
	reg := &stubRegistry{execErr: fmt.Errorf("endpoint down")}
	retr := &stubRetriever{err: fmt.Errorf("index corrupt")}
	a, _ := newTestAnalyzer(types.RouteBoth, reg, retr)

	_, err := a.Analyze(context.Background(), query())
	assert.ErrorIs(t, err, ErrAnalysisUnavailable)
}

func TestAnalyzeStructuredOnlyFailureSurfaces(t *testing.T) {
	reg := &stubRegistry{}
	a, _ := newTestAnalyzer(types.RouteStructured, reg, &stubRetriever{})
	a.synthesize = func(context.Context, ai.Backend, types.Query, types.Language, types.SynthesizerConfig, int) (types.FormalQuery, error) {
		return types.FormalQuery{}, fmt.Errorf("%w: still malformed", synth.ErrSynthesis)
	}

	_, err := a.Analyze(context.Background(), query())
	assert.ErrorIs(t, err, synth.ErrSynthesis)
}

func TestAnalyzeNoEvidence(t *testing.T) {
	// A path that succeeds with nothing found still yields an answer:
	// the interpretation runs on empty evidence and a warning records
	// that the answer is ungrounded.
	a, interp := newTestAnalyzer(types.RouteVector, &stubRegistry{}, &stubRetriever{})

	result, err := a.Analyze(context.Background(), query())
	require.NoError(t, err)
	assert.True(t, interp.evidence.IsEmpty())
	assert.Equal(t, "answer text", result.Answer)
	assert.Empty(t, result.Citations)
	assert.Empty(t, result.Bibliography)
	require.Len(t, result.Warnings, 1)
	assert.Contains(t, result.Warnings[0], "no evidence gathered")
}

func TestAnalyzeBothPathsEmptyButSuccessful(t *testing.T) {
	a, _ := newTestAnalyzer(types.RouteBoth, &stubRegistry{}, &stubRetriever{})

	result, err := a.Analyze(context.Background(), query())
	require.NoError(t, err)
	assert.NotErrorIs(t, err, ErrAnalysisUnavailable)
	assert.Equal(t, types.RouteBoth, result.RouteUsed)
	assert.Equal(t, "answer text", result.Answer)
}

func TestAnalyzeEmptyQuery(t *testing.T) {
	a, _ := newTestAnalyzer(types.RouteBoth, &stubRegistry{}, &stubRetriever{})
	_, err := a.Analyze(context.Background(), types.Query{})
	assert.Error(t, err)
}

func TestAnalyzeContextCancellation(t *testing.T) {
	reg := &stubRegistry{records: []types.LegislativeRecord{testRecord()}}
	retr := &stubRetriever{excerpts: []retriever.Excerpt{{DocID: "doc", Text: "t", Score: 1}}}
	a, _ := newTestAnalyzer(types.RouteBoth, reg, retr)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := a.Analyze(ctx, query())
	require.Error(t, err)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestAnalyzeMetadataOnlyRecord(t *testing.T) {
	reg := &stubRegistry{
		records:  []types.LegislativeRecord{testRecord()},
		fetchErr: fmt.Errorf("no XML manifestation"),
	}
	a, interp := newTestAnalyzer(types.RouteStructured, reg, &stubRetriever{})

	result, err := a.Analyze(context.Background(), query())
	require.NoError(t, err)

	// The record stays in the evidence and bibliography without a text;
	// its unverifiable citation is dropped.
	assert.Len(t, interp.evidence.Records, 1)
	assert.Empty(t, interp.evidence.FullTexts)
	assert.Empty(t, result.Citations)
	require.Len(t, result.Bibliography, 1)

	var sawMetadataWarning bool
	for _, w := range result.Warnings {
		if strings.Contains(w, "metadata only") {
			sawMetadataWarning = true
		}
	}
	assert.True(t, sawMetadataWarning)
}

func TestInterpretationFailureSurfaces(t *testing.T) {
	reg := &stubRegistry{records: []types.LegislativeRecord{testRecord()}}
	a, interp := newTestAnalyzer(types.RouteStructured, reg, &stubRetriever{})
	interp.err = errors.New("backend unavailable")

	_, err := a.Analyze(context.Background(), query())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "interpreting evidence")
}
