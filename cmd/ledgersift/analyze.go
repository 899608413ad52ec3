package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/schollz/progressbar/v3"
	"github.com/spf13/cobra"

	"github.com/ledgersift/ledgersift/internal/importer"
	"github.com/ledgersift/ledgersift/internal/model"
	"github.com/ledgersift/ledgersift/internal/ofx"
	"github.com/ledgersift/ledgersift/internal/reconcile"
)

func analyzeCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "analyze [files...]",
		Short: "Analyze bank exports for import conflicts",
		Long: `Parse CSV or OFX/QFX files, compare the candidates against the existing
ledger, and report duplicates and transfer conflicts for review.

Examples:
  # Analyze one export
  ledgersift analyze --account checking ~/Downloads/january.qfx

  # Analyze several CSVs and write a decisions file to edit
  ledgersift analyze --account checking --decisions-out review.json ~/Downloads/*.csv`,
		Args: cobra.MinimumNArgs(1),
		RunE: runAnalyze,
	}

	cmd.Flags().String("account", "", "ledger account id to reconcile against (required)")
	cmd.Flags().String("user", "", "user id scoping the existing-transaction fetch")
	cmd.Flags().String("format", "", "CSV format (generic, chase); OFX/QFX detected by extension")
	cmd.Flags().String("decisions-out", "", "write a decisions file skeleton to this path")
	_ = cmd.MarkFlagRequired("account")

	return cmd
}

func runAnalyze(cmd *cobra.Command, args []string) error {
	accountID, _ := cmd.Flags().GetString("account")
	userID, _ := cmd.Flags().GetString("user")
	format, _ := cmd.Flags().GetString("format")
	decisionsOut, _ := cmd.Flags().GetString("decisions-out")

	ctx := cmd.Context()

	candidates, err := collectCandidates(ctx, args, format)
	if err != nil {
		return err
	}

	store, err := initStorage(ctx)
	if err != nil {
		return err
	}
	defer func() { _ = store.Close() }()

	opts, err := loadOptions()
	if err != nil {
		return err
	}

	analyzer := reconcile.NewAnalyzer(store, reconcile.NewAnalysisCache(0, 0), opts)
	result, err := analyzer.Analyze(ctx, candidates, accountID, userID)
	if err != nil {
		return fmt.Errorf("analysis failed: %w", err)
	}

	printAnalysis(result)

	if decisionsOut != "" {
		if err := writeDecisionsSkeleton(decisionsOut, result); err != nil {
			return err
		}
		fmt.Printf("\nDecisions skeleton written to %s; edit it and run `ledgersift execute --decisions %s`\n",
			decisionsOut, decisionsOut)
	}

	return nil
}

// collectCandidates parses every file into candidates, dispatching on
// extension and the --format flag.
func collectCandidates(ctx context.Context, patterns []string, format string) ([]model.ImportCandidate, error) {
	var allFiles []string
	for _, pattern := range patterns {
		matches, err := filepath.Glob(pattern)
		if err != nil {
			return nil, fmt.Errorf("invalid pattern %s: %w", pattern, err)
		}
		if len(matches) == 0 {
			// If no glob matches, check if it's a direct file
			if _, err := os.Stat(pattern); err == nil {
				allFiles = append(allFiles, pattern)
			} else {
				slog.Warn("No files found matching pattern", "pattern", pattern)
			}
		} else {
			allFiles = append(allFiles, matches...)
		}
	}

	if len(allFiles) == 0 {
		return nil, fmt.Errorf("no files found to analyze")
	}

	registry := importer.DefaultRegistry()
	ofxParser := ofx.NewParser()

	bar := progressbar.Default(int64(len(allFiles)), "parsing files")

	var candidates []model.ImportCandidate
	for _, filePath := range allFiles {
		parsed, err := parseFile(ctx, filePath, format, registry, ofxParser)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", filePath, err)
		}

		// Re-base row indexes so they stay unique across files
		for i := range parsed {
			parsed[i].RowIndex += len(candidates)
		}
		candidates = append(candidates, parsed...)
		_ = bar.Add(1)
	}

	slog.Info("Parsed import files", "files", len(allFiles), "candidates", len(candidates))
	return candidates, nil
}

func parseFile(ctx context.Context, filePath, format string, registry *importer.Registry, ofxParser *ofx.Parser) ([]model.ImportCandidate, error) {
	f, err := os.Open(filePath)
	if err != nil {
		return nil, fmt.Errorf("failed to open file: %w", err)
	}
	defer func() { _ = f.Close() }()

	switch strings.ToLower(filepath.Ext(filePath)) {
	case ".ofx", ".qfx":
		return ofxParser.ParseFile(ctx, f)
	default:
		name := format
		if name == "" {
			name = "generic"
		}
		parser := registry.Get(name)
		if parser == nil {
			return nil, fmt.Errorf("unknown CSV format %q (available: %s)", name, strings.Join(registry.Formats(), ", "))
		}
		return parser.Parse(f)
	}
}
