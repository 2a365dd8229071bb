// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/pdiddy/lex-engine/internal/retriever"
)

var corpusCmd = &cobra.Command{
	Use:   "corpus",
	Short: "Manage the general legal document corpus",
	Long: `Corpus manages the local index of general legal documents (commentary,
doctrine, international material) that serves the vector evidence path.
Use ingest to index documents and search to query the index directly.`,
}

// --- ingest subcommand ---

var corpusIngestCmd = &cobra.Command{
	Use:   "ingest [dir]",
	Short: "Index corpus documents",
	Long: `Ingest reads Markdown and plain-text documents from the given directory
(default corpus/documents), chunks them, and indexes them with FTS5.
Unchanged documents are skipped on subsequent runs.`,
	Args: cobra.MaximumNArgs(1),
	RunE: runCorpusIngest,
}

func runCorpusIngest(cmd *cobra.Command, args []string) error {
	corpusDir := "corpus/documents"
	if len(args) > 0 {
		corpusDir = args[0]
	}

	cfg := pipelineConfig()
	store, err := retriever.NewStore(cfg.Retriever)
	if err != nil {
		return err
	}
	defer store.Close()

	summary, err := store.Ingest(cmd.Context(), corpusDir, cmd.OutOrStdout())
	if err != nil {
		return err
	}
	if summary.Failed > 0 {
		return fmt.Errorf("%d document(s) failed indexing", summary.Failed)
	}
	return nil
}

// --- search subcommand ---

var corpusSearchCmd = &cobra.Command{
	Use:   "search [query]",
	Short: "Query the corpus index",
	RunE:  runCorpusSearch,
}

func runCorpusSearch(cmd *cobra.Command, args []string) error {
	if len(args) == 0 {
		return fmt.Errorf("query required")
	}
	query := strings.Join(args, " ")
	limit, _ := cmd.Flags().GetInt("limit")

	cfg := pipelineConfig()
	store, err := retriever.NewStore(cfg.Retriever)
	if err != nil {
		return err
	}
	defer store.Close()

	excerpts, err := store.Retrieve(cmd.Context(), query, limit)
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	if jsonOut, _ := cmd.Flags().GetBool("json"); jsonOut {
		enc := json.NewEncoder(out)
		enc.SetIndent("", "  ")
		return enc.Encode(excerpts)
	}

	if len(excerpts) == 0 {
		fmt.Fprintln(out, "No results found.")
		return nil
	}
	for i, e := range excerpts {
		fmt.Fprintf(out, "%d. %s (%s, score %.2f)\n", i+1, e.Title, e.DocID, e.Score)
		text := e.Text
		if len(text) > 200 {
			text = text[:197] + "..."
		}
		fmt.Fprintf(out, "   %s\n\n", text)
	}
	return nil
}

func init() {
	corpusSearchCmd.Flags().Int("limit", 0, "maximum excerpts (0 = use default)")
	corpusSearchCmd.Flags().Bool("json", false, "output excerpts as JSON")

	corpusCmd.AddCommand(corpusIngestCmd)
	corpusCmd.AddCommand(corpusSearchCmd)

	rootCmd.AddCommand(corpusCmd)
}
