// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"go.yaml.in/yaml/v3"

	"github.com/pdiddy/lex-engine/internal/pipeline"
	"github.com/pdiddy/lex-engine/internal/registry"
	"github.com/pdiddy/lex-engine/internal/retriever"
	"github.com/pdiddy/lex-engine/pkg/types"
)

var analyzeCmd = &cobra.Command{
	Use:   "analyze [question]",
	Short: "Answer a legal question with verified citations",
	Long: `Analyze routes a legal question to the legislative registry, the local
document corpus, or both, gathers the evidence, and produces an answer
with verified citations and a bibliography.

The question comes from the arguments, from --file, or from stdin when
neither is given.`,
	RunE: runAnalyze,
}

func runAnalyze(cmd *cobra.Command, args []string) error {
	question, err := readQuestion(cmd, args)
	if err != nil {
		return err
	}

	lang, _ := cmd.Flags().GetString("lang")
	jurisdiction, _ := cmd.Flags().GetString("jurisdiction")
	q := types.Query{
		Text:         question,
		Language:     queryLanguage(lang),
		Jurisdiction: jurisdiction,
	}

	cfg := pipelineConfig()
	ctx := cmd.Context()

	backend, err := buildBackend(ctx, cfg.AI)
	if err != nil {
		return err
	}

	store, err := retriever.NewStore(cfg.Retriever)
	if err != nil {
		return err
	}
	defer store.Close()

	analyzer := pipeline.NewAnalyzer(cfg, backend, registry.NewClient(cfg.Registry, nil), store, nil)
	result, err := analyzer.Analyze(ctx, q)
	if err != nil {
		return err
	}

	return formatAnalysis(cmd, result)
}

// readQuestion resolves the question text from args, --file, or stdin.
func readQuestion(cmd *cobra.Command, args []string) (string, error) {
	if file, _ := cmd.Flags().GetString("file"); file != "" {
		data, err := os.ReadFile(file)
		if err != nil {
			return "", fmt.Errorf("reading question file: %w", err)
		}
		return strings.TrimSpace(string(data)), nil
	}
	if len(args) > 0 {
		return strings.Join(args, " "), nil
	}
	data, err := io.ReadAll(os.Stdin)
	if err != nil {
		return "", fmt.Errorf("reading question from stdin: %w", err)
	}
	question := strings.TrimSpace(string(data))
	if question == "" {
		return "", fmt.Errorf("question required: pass it as an argument, via --file, or on stdin")
	}
	return question, nil
}

func formatAnalysis(cmd *cobra.Command, result *types.AnalysisResult) error {
	out := cmd.OutOrStdout()

	if jsonOut, _ := cmd.Flags().GetBool("json"); jsonOut {
		enc := json.NewEncoder(out)
		enc.SetIndent("", "  ")
		return enc.Encode(result)
	}
	if yamlOut, _ := cmd.Flags().GetBool("yaml"); yamlOut {
		return yaml.NewEncoder(out).Encode(result)
	}

	fmt.Fprintf(out, "Route: %s", result.RouteUsed)
	if result.RouteUsed != result.RouteRequested {
		fmt.Fprintf(out, " (degraded from %s)", result.RouteRequested)
	}
	fmt.Fprintf(out, "\n\n%s\n", result.Answer)

	if len(result.Citations) > 0 {
		fmt.Fprintln(out, "\nCitations:")
		for _, c := range result.Citations {
			fmt.Fprintf(out, "  %s, %s [%s]: %q\n", c.Title, c.SRNumber, c.ArticleID, c.Quote)
		}
	}

	if len(result.Bibliography) > 0 {
		fmt.Fprintln(out, "\nSources:")
		for _, e := range result.Bibliography {
			switch e.Kind {
			case types.BibLegislative:
				fmt.Fprintf(out, "  %s %s (%s, %s)", e.Reference, e.Title, e.SRNumber, e.Applicability)
				if link, ok := e.Links[e.Language]; ok {
					fmt.Fprintf(out, " %s", link)
				}
				fmt.Fprintln(out)
			default:
				fmt.Fprintf(out, "  %s %s\n", e.Reference, e.Title)
			}
		}
	}

	for _, w := range result.Warnings {
		fmt.Fprintf(cmd.ErrOrStderr(), "warning: %s\n", w)
	}
	return nil
}

func init() {
	analyzeCmd.Flags().String("file", "", "read the question from a file")
	analyzeCmd.Flags().String("lang", "de", "question language: de, fr, it, rm")
	analyzeCmd.Flags().String("jurisdiction", "", "jurisdiction hint for routing and synthesis")
	analyzeCmd.Flags().Bool("json", false, "output the result as JSON")
	analyzeCmd.Flags().Bool("yaml", false, "output the result as YAML")

	rootCmd.AddCommand(analyzeCmd)
}
