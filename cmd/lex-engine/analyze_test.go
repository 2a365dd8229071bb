// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"bytes"
	"encoding/json"
	"testing"

	"github.com/spf13/cobra"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pdiddy/lex-engine/pkg/types"
)

// newFormatCmd builds a command with the analyze output flags and
// buffered writers, so formatting is checked without running a pipeline.
func newFormatCmd() (*cobra.Command, *bytes.Buffer, *bytes.Buffer) {
	cmd := &cobra.Command{Use: "analyze"}
	cmd.Flags().Bool("json", false, "")
	cmd.Flags().Bool("yaml", false, "")
	out := &bytes.Buffer{}
	errOut := &bytes.Buffer{}
	cmd.SetOut(out)
	cmd.SetErr(errOut)
	return cmd, out, errOut
}

func testResult() *types.AnalysisResult {
	return &types.AnalysisResult{
		ID:             "run-1",
		Query:          "Wann gewährt die Schweiz Asyl?",
		Answer:         "Die Schweiz gewährt Asyl auf Gesuch hin.",
		RouteRequested: types.RouteBoth,
		RouteUsed:      types.RouteVector,
		Citations: []types.Citation{{
			Title:     "Asylgesetz",
			SRNumber:  "SR 142.31",
			ArticleID: "art_2",
			Quote:     "auf Gesuch hin Asyl",
			Language:  types.LangGerman,
		}},
		Bibliography: []types.BibliographyEntry{
			{
				Kind:          types.BibLegislative,
				Reference:     "[L1]",
				Title:         "Asylgesetz",
				SRNumber:      "SR 142.31",
				Language:      types.LangGerman,
				Links:         map[types.Language]string{types.LangGerman: "https://www.fedlex.admin.ch/eli/cc/1999/1/de"},
				Applicability: types.StatusApplicable,
			},
			{Kind: types.BibGeneral, Reference: "[1]", Title: "EMRK Kommentar"},
		},
		Warnings: []string{"structured path skipped: registry query execution failed"},
	}
}

func TestFormatAnalysisText(t *testing.T) {
	cmd, out, errOut := newFormatCmd()

	require.NoError(t, formatAnalysis(cmd, testResult()))

	text := out.String()
	assert.Contains(t, text, "Route: vector (degraded from both)")
	assert.Contains(t, text, "Die Schweiz gewährt Asyl auf Gesuch hin.")
	assert.Contains(t, text, `Asylgesetz, SR 142.31 [art_2]: "auf Gesuch hin Asyl"`)
	assert.Contains(t, text, "[L1] Asylgesetz (SR 142.31, currently_applicable) https://www.fedlex.admin.ch/eli/cc/1999/1/de")
	assert.Contains(t, text, "[1] EMRK Kommentar")

	// Warnings stay off stdout.
	assert.NotContains(t, text, "warning:")
	assert.Contains(t, errOut.String(), "warning: structured path skipped")
}

func TestFormatAnalysisJSON(t *testing.T) {
	cmd, out, errOut := newFormatCmd()
	require.NoError(t, cmd.Flags().Set("json", "true"))

	require.NoError(t, formatAnalysis(cmd, testResult()))
	assert.Empty(t, errOut.String())

	var decoded types.AnalysisResult
	require.NoError(t, json.Unmarshal(out.Bytes(), &decoded))
	assert.Equal(t, "run-1", decoded.ID)
	assert.Equal(t, types.RouteVector, decoded.RouteUsed)
	require.Len(t, decoded.Citations, 1)
	assert.Equal(t, "art_2", decoded.Citations[0].ArticleID)
}
