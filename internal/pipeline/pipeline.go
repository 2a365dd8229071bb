// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package pipeline orchestrates one analysis run: route the question,
// gather evidence over the requested paths, interpret it into a grounded
// answer, verify the citations, and assemble the bibliography.
package pipeline

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/pdiddy/lex-engine/internal/ai"
	"github.com/pdiddy/lex-engine/internal/bib"
	"github.com/pdiddy/lex-engine/internal/cite"
	"github.com/pdiddy/lex-engine/internal/retriever"
	"github.com/pdiddy/lex-engine/internal/router"
	"github.com/pdiddy/lex-engine/internal/synth"
	"github.com/pdiddy/lex-engine/pkg/types"
)

// ErrAnalysisUnavailable marks a run where every requested evidence path
// failed. Paths that succeed without finding anything do not raise it;
// no partial result accompanies it.
var ErrAnalysisUnavailable = errors.New("analysis unavailable: all evidence paths failed")

// nowFunc is overridable in tests.
var nowFunc = time.Now

// RegistrySource is the structured-path dependency. *registry.Client
// implements it; tests substitute stubs.
type RegistrySource interface {
	Execute(ctx context.Context, fq types.FormalQuery) ([]types.LegislativeRecord, error)
	FetchFullText(ctx context.Context, rec types.LegislativeRecord, preferred types.Language) (*types.FullText, error)
}

// routeClassifier is satisfied by *router.Router.
type routeClassifier interface {
	Classify(ctx context.Context, q types.Query) types.RouteDecision
}

// interpreter is satisfied by *cite.Interpreter.
type interpreter interface {
	Interpret(ctx context.Context, q types.Query, ev cite.Evidence) (string, []types.Citation, error)
}

// Analyzer runs the full analysis pipeline. Construct with NewAnalyzer.
type Analyzer struct {
	cfg       types.PipelineConfig
	backend   ai.Backend
	router    routeClassifier
	registry  RegistrySource
	retriever retriever.Retriever
	interp    interpreter
	log       *logrus.Logger

	// synthesize is swappable in tests.
	synthesize func(ctx context.Context, backend ai.Backend, q types.Query, lang types.Language, cfg types.SynthesizerConfig, maxRetries int) (types.FormalQuery, error)
}

// NewAnalyzer wires the pipeline stages around one AI backend.
func NewAnalyzer(cfg types.PipelineConfig, backend ai.Backend, registry RegistrySource, retr retriever.Retriever, log *logrus.Logger) *Analyzer {
	if log == nil {
		log = logrus.New()
	}
	return &Analyzer{
		cfg:     cfg,
		backend: backend,
		router: &router.Router{
			Backend:    backend,
			Config:     cfg.Router,
			MaxRetries: cfg.AI.MaxRetries,
			Log:        log,
		},
		registry:   registry,
		retriever:  retr,
		interp:     &cite.Interpreter{Backend: backend, MaxRetries: cfg.AI.MaxRetries},
		log:        log,
		synthesize: synth.Synthesize,
	}
}

// structuredEvidence is the output of the registry path.
type structuredEvidence struct {
	records   []types.LegislativeRecord
	fulltexts map[string]*types.FullText
	warnings  []string
}

// Analyze answers one legal question. The returned result is transient;
// the engine keeps no copy. When every requested evidence path fails the
// error wraps ErrAnalysisUnavailable and no partial result is returned.
func (a *Analyzer) Analyze(ctx context.Context, q types.Query) (*types.AnalysisResult, error) {
	if q.IsEmpty() {
		return nil, fmt.Errorf("query is empty")
	}
	lang := q.Language
	if !lang.Valid() {
		lang = types.LangGerman
	}

	decision := a.router.Classify(ctx, q)
	a.log.WithFields(logrus.Fields{
		"route":     decision.Route,
		"rationale": decision.Rationale,
	}).Info("query routed")

	var (
		structured structuredEvidence
		excerpts   []retriever.Excerpt
		structErr  error
		vectorErr  error
	)

	switch decision.Route {
	case types.RouteStructured:
		structured, structErr = a.runStructured(ctx, q, lang)
	case types.RouteVector:
		excerpts, vectorErr = a.runVector(ctx, q)
	case types.RouteBoth:
		// Both paths run concurrently and join on the channel; a failed
		// path degrades the run instead of aborting it.
		type pathResult struct {
			name       string
			structured structuredEvidence
			excerpts   []retriever.Excerpt
			err        error
		}

		ch := make(chan pathResult, 2)
		var wg sync.WaitGroup
		wg.Add(2)
		go func() {
			defer wg.Done()
			s, err := a.runStructured(ctx, q, lang)
			ch <- pathResult{name: "structured", structured: s, err: err}
		}()
		go func() {
			defer wg.Done()
			e, err := a.runVector(ctx, q)
			ch <- pathResult{name: "vector", excerpts: e, err: err}
		}()
		go func() {
			wg.Wait()
			close(ch)
		}()

		for pr := range ch {
			switch pr.name {
			case "structured":
				structured, structErr = pr.structured, pr.err
			case "vector":
				excerpts, vectorErr = pr.excerpts, pr.err
			}
		}
	default:
		return nil, fmt.Errorf("unknown route %q", decision.Route)
	}

	if ctx.Err() != nil {
		return nil, ctx.Err()
	}

	result := &types.AnalysisResult{
		ID:             uuid.NewString(),
		Query:          q.Text,
		RouteRequested: decision.Route,
		RouteUsed:      decision.Route,
		Rationale:      decision.Rationale,
		Warnings:       structured.warnings,
	}

	switch decision.Route {
	case types.RouteStructured:
		if structErr != nil {
			return nil, structErr
		}
	case types.RouteVector:
		if vectorErr != nil {
			return nil, vectorErr
		}
	case types.RouteBoth:
		if structErr != nil && vectorErr != nil {
			return nil, fmt.Errorf("%w: structured: %v; vector: %v", ErrAnalysisUnavailable, structErr, vectorErr)
		}
		if structErr != nil {
			a.log.Warnf("structured path degraded: %v", structErr)
			result.Warnings = append(result.Warnings, fmt.Sprintf("structured path skipped: %v", structErr))
			result.RouteUsed = types.RouteVector
			structured = structuredEvidence{}
		}
		if vectorErr != nil {
			a.log.Warnf("vector path degraded: %v", vectorErr)
			result.Warnings = append(result.Warnings, fmt.Sprintf("vector path skipped: %v", vectorErr))
			result.RouteUsed = types.RouteStructured
			excerpts = nil
		}
	}

	ev := cite.Evidence{
		Records:   structured.records,
		FullTexts: structured.fulltexts,
		Excerpts:  excerpts,
	}
	if ev.IsEmpty() {
		// A path that succeeded with nothing found is not a failure; the
		// interpretation still runs and the answer states what is missing.
		a.log.Warn("no evidence gathered, interpreting without source material")
		result.Warnings = append(result.Warnings, "no evidence gathered; answer is not grounded in any source")
	}

	answer, citations, err := a.interp.Interpret(ctx, q, ev)
	if err != nil {
		return nil, fmt.Errorf("interpreting evidence: %w", err)
	}

	verified, dropWarnings := cite.Verify(citations, ev.FullTexts, a.log)
	result.Answer = answer
	result.Citations = verified
	result.Warnings = append(result.Warnings, dropWarnings...)
	result.Bibliography = bib.Build(structured.records, structured.fulltexts, excerpts, nowFunc())
	for _, r := range structured.records {
		result.RecordIDs = append(result.RecordIDs, r.WorkURI)
	}

	return result, nil
}

// runStructured synthesizes a formal query, executes it, and fetches the
// full text of each applicable record. A record whose text cannot be
// fetched stays in the evidence as metadata only, with a warning.
func (a *Analyzer) runStructured(ctx context.Context, q types.Query, lang types.Language) (structuredEvidence, error) {
	fq, err := a.synthesize(ctx, a.backend, q, lang, a.cfg.Synthesizer, a.cfg.AI.MaxRetries)
	if err != nil {
		return structuredEvidence{}, err
	}

	records, err := a.registry.Execute(ctx, fq)
	if err != nil {
		return structuredEvidence{}, err
	}

	ev := structuredEvidence{
		records:   records,
		fulltexts: make(map[string]*types.FullText, len(records)),
	}
	for _, rec := range records {
		ft, err := a.registry.FetchFullText(ctx, rec, lang)
		if err != nil {
			if ctx.Err() != nil {
				return structuredEvidence{}, ctx.Err()
			}
			a.log.WithField("work", rec.WorkURI).Warnf("full text unavailable: %v", err)
			ev.warnings = append(ev.warnings, fmt.Sprintf("full text unavailable for %s, metadata only", rec.WorkURI))
			continue
		}
		ev.fulltexts[rec.WorkURI] = ft
	}
	return ev, nil
}

func (a *Analyzer) runVector(ctx context.Context, q types.Query) ([]retriever.Excerpt, error) {
	excerpts, err := a.retriever.Retrieve(ctx, q.Text, a.cfg.Retriever.TopK)
	if err != nil {
		return nil, fmt.Errorf("corpus retrieval: %w", err)
	}
	return excerpts, nil
}
