// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/pdiddy/lex-engine/internal/registry"
	"github.com/pdiddy/lex-engine/internal/synth"
	"github.com/pdiddy/lex-engine/pkg/types"
)

var registryCmd = &cobra.Command{
	Use:   "registry",
	Short: "Query the legislative registry directly",
	Long: `Registry exposes the structured evidence path on its own. Use search to
find currently applicable acts for a question, and fetch to download the
full text of one act.`,
}

// --- search subcommand ---

var registrySearchCmd = &cobra.Command{
	Use:   "search [question]",
	Short: "Find applicable legislation for a question",
	Long: `Search synthesizes a registry query from the question, executes it, and
lists the matching, currently applicable acts. Pass --sparql to run a
raw SPARQL query from a file instead of synthesizing one.`,
	RunE: runRegistrySearch,
}

func runRegistrySearch(cmd *cobra.Command, args []string) error {
	lang, _ := cmd.Flags().GetString("lang")
	cfg := pipelineConfig()
	ctx := cmd.Context()

	var fq types.FormalQuery
	if sparqlFile, _ := cmd.Flags().GetString("sparql"); sparqlFile != "" {
		data, err := os.ReadFile(sparqlFile)
		if err != nil {
			return fmt.Errorf("reading SPARQL file: %w", err)
		}
		fq = types.FormalQuery{Text: string(data), Language: queryLanguage(lang)}
	} else {
		question, err := readQuestion(cmd, args)
		if err != nil {
			return err
		}
		backend, err := buildBackend(ctx, cfg.AI)
		if err != nil {
			return err
		}
		q := types.Query{Text: question, Language: queryLanguage(lang)}
		fq, err = synth.Synthesize(ctx, backend, q, q.Language, cfg.Synthesizer, cfg.AI.MaxRetries)
		if err != nil {
			return err
		}
	}

	client := registry.NewClient(cfg.Registry, nil)
	records, err := client.Execute(ctx, fq)
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	if jsonOut, _ := cmd.Flags().GetBool("json"); jsonOut {
		enc := json.NewEncoder(out)
		enc.SetIndent("", "  ")
		return enc.Encode(records)
	}

	if len(records) == 0 {
		fmt.Fprintln(out, "No applicable legislation found.")
		return nil
	}

	fmt.Fprintf(out, "%-12s  %-50s  %-12s  %s\n", "SR", "Title", "Applicable", "Work")
	fmt.Fprintln(out, strings.Repeat("-", 110))
	for _, r := range records {
		title := r.Title
		if len(title) > 50 {
			title = title[:47] + "..."
		}
		applicable := ""
		if !r.DateApplicability.IsZero() {
			applicable = r.DateApplicability.Format("2006-01-02")
		}
		fmt.Fprintf(out, "%-12s  %-50s  %-12s  %s\n", r.SRNumber, title, applicable, r.WorkURI)
	}
	fmt.Fprintf(out, "\n%d records\n", len(records))
	return nil
}

// --- fetch subcommand ---

var registryFetchCmd = &cobra.Command{
	Use:   "fetch [work-uri]",
	Short: "Fetch the full text of one act",
	Long: `Fetch downloads and parses the full text of the act identified by its
work URI, in the requested language when available. Falls back through
the other official languages otherwise.`,
	Args: cobra.ExactArgs(1),
	RunE: runRegistryFetch,
}

func runRegistryFetch(cmd *cobra.Command, args []string) error {
	lang, _ := cmd.Flags().GetString("lang")
	consolidation, _ := cmd.Flags().GetString("consolidation")
	if consolidation == "" {
		// The current consolidation lives under the work URI.
		consolidation = args[0]
	}

	cfg := pipelineConfig()
	client := registry.NewClient(cfg.Registry, nil)

	rec := types.LegislativeRecord{WorkURI: args[0], ConsolidationURI: consolidation}
	ft, err := client.FetchFullText(cmd.Context(), rec, queryLanguage(lang))
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	if jsonOut, _ := cmd.Flags().GetBool("json"); jsonOut {
		enc := json.NewEncoder(out)
		enc.SetIndent("", "  ")
		return enc.Encode(ft)
	}

	fmt.Fprintf(out, "Language: %s\nSource:   %s\n\n", ft.Language.Name(), ft.SourceURL)
	for _, art := range ft.Articles {
		if art.Heading != "" {
			fmt.Fprintf(out, "[%s] %s\n", art.ID, art.Heading)
		} else {
			fmt.Fprintf(out, "[%s]\n", art.ID)
		}
		fmt.Fprintf(out, "%s\n\n", art.Text)
	}
	return nil
}

func init() {
	registryCmd.PersistentFlags().String("lang", "de", "preferred language: de, fr, it, rm")

	registrySearchCmd.Flags().String("file", "", "read the question from a file")
	registrySearchCmd.Flags().String("sparql", "", "run a raw SPARQL query from this file")
	registrySearchCmd.Flags().Bool("json", false, "output records as JSON")

	registryFetchCmd.Flags().String("consolidation", "", "consolidation URI (default: the work URI)")
	registryFetchCmd.Flags().Bool("json", false, "output the full text as JSON")

	registryCmd.AddCommand(registrySearchCmd)
	registryCmd.AddCommand(registryFetchCmd)

	rootCmd.AddCommand(registryCmd)
}
