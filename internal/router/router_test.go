// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package router

import (
	"context"
	"fmt"
	"strings"
	"testing"

	"github.com/pdiddy/lex-engine/pkg/types"
)

// fixedBackend returns a canned response or error.
type fixedBackend struct {
	response string
	err      error
	prompts  []string
}

func (f *fixedBackend) Complete(_ context.Context, prompt string) (string, error) {
	f.prompts = append(f.prompts, prompt)
	if f.err != nil {
		return "", f.err
	}
	return f.response, nil
}

func TestClassify(t *testing.T) {
	tests := []struct {
		name     string
		response string
		err      error
		dflt     types.Route
		want     types.Route
	}{
		{"structured", "STRUCTURED", nil, types.RouteBoth, types.RouteStructured},
		{"vector", "VECTOR", nil, types.RouteBoth, types.RouteVector},
		{"both", "BOTH", nil, types.RouteBoth, types.RouteBoth},
		{"lowercase with period", "both.", nil, types.RouteBoth, types.RouteBoth},
		{"keyword with trailing prose", "STRUCTURED\nbecause the question names an SR number", nil, types.RouteBoth, types.RouteStructured},
		{"ambiguous output falls back", "maybe both, maybe not", nil, types.RouteVector, types.RouteVector},
		{"classifier error falls back", "", fmt.Errorf("model overloaded"), types.RouteStructured, types.RouteStructured},
		{"invalid default becomes both", "", fmt.Errorf("model overloaded"), types.Route("everything"), types.RouteBoth},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := &Router{
				Backend:    &fixedBackend{response: tt.response, err: tt.err},
				Config:     types.RouterConfig{DefaultRoute: tt.dflt},
				MaxRetries: 1,
			}
			got := r.Classify(context.Background(), types.Query{Text: "What are the requirements for asylum?"})

			if got.Route != tt.want {
				t.Errorf("Route = %q, want %q", got.Route, tt.want)
			}
			if !got.Route.Valid() {
				t.Errorf("Route %q is not a valid route", got.Route)
			}
			if got.Rationale == "" {
				t.Error("Rationale is empty")
			}
		})
	}
}

func TestClassifyIncludesJurisdictionHint(t *testing.T) {
	backend := &fixedBackend{response: "STRUCTURED"}
	r := &Router{Backend: backend, Config: types.RouterConfig{DefaultRoute: types.RouteBoth}, MaxRetries: 1}

	q := types.Query{
		Text:         "What are the requirements for asylum in Switzerland?",
		Jurisdiction: "Switzerland",
	}
	r.Classify(context.Background(), q)

	if len(backend.prompts) != 1 {
		t.Fatalf("prompts sent = %d, want 1", len(backend.prompts))
	}
	if !strings.Contains(backend.prompts[0], "jurisdiction hint: Switzerland") {
		t.Error("prompt does not carry the jurisdiction hint")
	}
	if !strings.Contains(backend.prompts[0], q.Text) {
		t.Error("prompt does not carry the question text")
	}
}
