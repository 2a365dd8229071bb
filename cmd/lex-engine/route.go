// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/pdiddy/lex-engine/internal/router"
	"github.com/pdiddy/lex-engine/pkg/types"
)

var routeCmd = &cobra.Command{
	Use:   "route [question]",
	Short: "Classify a question into an evidence route",
	Long: `Route runs only the classification stage and prints which evidence
source(s) the question would be sent to: structured (legislative
registry), vector (document corpus), or both.`,
	RunE: runRoute,
}

func runRoute(cmd *cobra.Command, args []string) error {
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

	r := &router.Router{Backend: backend, Config: cfg.Router, MaxRetries: cfg.AI.MaxRetries}
	decision := r.Classify(cmd.Context(), types.Query{
		Text:         question,
		Language:     queryLanguage(lang),
		Jurisdiction: jurisdiction,
	})

	out := cmd.OutOrStdout()
	if jsonOut, _ := cmd.Flags().GetBool("json"); jsonOut {
		enc := json.NewEncoder(out)
		enc.SetIndent("", "  ")
		return enc.Encode(decision)
	}

	fmt.Fprintf(out, "Route:     %s\n", decision.Route)
	if decision.Rationale != "" {
		fmt.Fprintf(out, "Rationale: %s\n", strings.TrimSpace(decision.Rationale))
	}
	return nil
}

func init() {
	routeCmd.Flags().String("file", "", "read the question from a file")
	routeCmd.Flags().String("lang", "de", "question language: de, fr, it, rm")
	routeCmd.Flags().String("jurisdiction", "", "jurisdiction hint")
	routeCmd.Flags().Bool("json", false, "output the decision as JSON")

	rootCmd.AddCommand(routeCmd)
}
