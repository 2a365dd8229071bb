// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/pdiddy/lex-engine/internal/synth"
	"github.com/pdiddy/lex-engine/pkg/types"
)

var synthesizeCmd = &cobra.Command{
	Use:   "synthesize [question]",
	Short: "Generate the registry query for a question",
	Long: `Synthesize runs only the query synthesis stage: it translates the
question into a SPARQL query against the legislative registry and prints
it without executing it. Useful for inspecting what the structured path
would ask.`,
	RunE: runSynthesize,
}

func runSynthesize(cmd *cobra.Command, args []string) error {
	question, err := readQuestion(cmd, args)
	if err != nil {
		return err
	}
	lang, _ := cmd.Flags().GetString("lang")
	jurisdiction, _ := cmd.Flags().GetString("jurisdiction")

	cfg := pipelineConfig()
	backend, err := buildBackend(cmd.Context(), cfg.AI)
	if err != nil {
		return err
	}

	q := types.Query{
		Text:         question,
		Language:     queryLanguage(lang),
		Jurisdiction: jurisdiction,
	}
	fq, err := synth.Synthesize(cmd.Context(), backend, q, q.Language, cfg.Synthesizer, cfg.AI.MaxRetries)
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	fmt.Fprintln(out, fq.Text)
	if len(fq.Keywords) > 0 {
		fmt.Fprintf(out, "\n# keywords: %s\n", strings.Join(fq.Keywords, ", "))
	}
	return nil
}

func init() {
	synthesizeCmd.Flags().String("file", "", "read the question from a file")
	synthesizeCmd.Flags().String("lang", "de", "question language: de, fr, it, rm")
	synthesizeCmd.Flags().String("jurisdiction", "", "jurisdiction hint")

	rootCmd.AddCommand(synthesizeCmd)
}
