// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package router classifies a legal question into the knowledge source(s)
// to consult: the legislative registry, the general document corpus, or
// both.
package router

import (
	"bytes"
	"context"
	"fmt"
	"strings"
	"text/template"

	"github.com/sirupsen/logrus"

	"github.com/pdiddy/lex-engine/internal/ai"
	"github.com/pdiddy/lex-engine/pkg/types"
)

// routePromptTmpl asks the model for a one-word routing decision.
// Jurisdiction cues bias toward the structured registry; comparative or
// generic legal phrasing biases toward both sources.
var routePromptTmpl = template.Must(template.New("route").Parse(`You are routing legal research questions between two data sources.

DATA SOURCES:
1. "STRUCTURED" - Swiss federal legislation registry (Fedlex). Use when the
   question names a specific Swiss statute, SR number, or asks what Swiss
   law currently requires, and general documents would add nothing.
2. "VECTOR" - General legal document corpus (European and international
   legal documents). Use when the question is exclusively about general
   legal principles, international refugee law, European directives, or
   countries other than Switzerland.
3. "BOTH" - Consult both sources. Use for comparative questions, questions
   that involve Switzerland alongside international context, and whenever
   the Swiss relevance is possible but not certain.

DECISION GUIDELINES:
- Explicit Swiss jurisdiction with a concrete statutory question -> STRUCTURED
- General international law with zero Swiss connection -> VECTOR
- Comparative, mixed, or ambiguous questions -> BOTH
{{if .Jurisdiction}}
The researcher supplied a jurisdiction hint: {{.Jurisdiction}}. A hint
naming Switzerland is a strong signal for STRUCTURED.{{end}}

Question: {{.Text}}

Respond with ONLY one word: STRUCTURED, VECTOR, or BOTH.
`))

// Router decides which source(s) to consult for a query.
type Router struct {
	Backend    ai.Backend
	Config     types.RouterConfig
	MaxRetries int
	Log        *logrus.Logger
}

// Classify produces exactly one RouteDecision for the query. A failing or
// unintelligible classification call never drops a path: it falls back to
// the configured default route with a rationale saying so.
func (r *Router) Classify(ctx context.Context, q types.Query) types.RouteDecision {
	prompt, err := renderRoutePrompt(q)
	if err != nil {
		return r.fallback(fmt.Sprintf("prompt rendering failed: %v", err))
	}

	resp, err := ai.CallWithRetry(ctx, r.Backend, prompt, r.MaxRetries)
	if err != nil {
		return r.fallback(fmt.Sprintf("classifier unavailable: %v", err))
	}

	route, ok := parseRoute(resp)
	if !ok {
		return r.fallback(fmt.Sprintf("ambiguous classifier output %q", firstLine(resp)))
	}

	return types.RouteDecision{
		Route:     route,
		Rationale: fmt.Sprintf("classifier selected %s", route),
	}
}

// fallback returns the configured default route, logging why the
// classifier answer was not usable.
func (r *Router) fallback(reason string) types.RouteDecision {
	route := r.Config.DefaultRoute
	if !route.Valid() {
		route = types.RouteBoth
	}
	if r.Log != nil {
		r.Log.WithField("route", route).Warnf("routing fallback: %s", reason)
	}
	return types.RouteDecision{
		Route:     route,
		Rationale: fmt.Sprintf("fallback to %s: %s", route, reason),
	}
}

// parseRoute extracts the routing keyword from the model response. Only
// the first word counts; anything else is treated as an ambiguous signal.
func parseRoute(resp string) (types.Route, bool) {
	word := strings.ToUpper(strings.Trim(firstWord(resp), ".,:;\"'`"))
	switch word {
	case "STRUCTURED":
		return types.RouteStructured, true
	case "VECTOR":
		return types.RouteVector, true
	case "BOTH":
		return types.RouteBoth, true
	}
	return "", false
}

func renderRoutePrompt(q types.Query) (string, error) {
	var buf bytes.Buffer
	if err := routePromptTmpl.Execute(&buf, q); err != nil {
		return "", err
	}
	return buf.String(), nil
}

func firstWord(s string) string {
	fields := strings.Fields(s)
	if len(fields) == 0 {
		return ""
	}
	return fields[0]
}

func firstLine(s string) string {
	s = strings.TrimSpace(s)
	if i := strings.IndexByte(s, '\n'); i >= 0 {
		s = s[:i]
	}
	if len(s) > 80 {
		s = s[:80]
	}
	return s
}
