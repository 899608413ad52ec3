package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"

	"github.com/shopspring/decimal"
	"github.com/spf13/viper"

	"github.com/ledgersift/ledgersift/internal/config"
	"github.com/ledgersift/ledgersift/internal/model"
	"github.com/ledgersift/ledgersift/internal/reconcile"
	"github.com/ledgersift/ledgersift/internal/storage"
)

// initStorage initializes the storage service with proper path expansion.
func initStorage(ctx context.Context) (*storage.SQLiteStorage, error) {
	// Get database path from config
	dbPath := viper.GetString("database.path")
	if dbPath == "" {
		dbPath = "$HOME/.local/share/ledgersift/ledger.db"
	}

	// Expand tilde and environment variables
	dbPath = config.ExpandPath(dbPath)

	store, err := storage.NewSQLiteStorage(dbPath)
	if err != nil {
		return nil, err
	}

	// Run migrations
	if err := store.Migrate(ctx); err != nil {
		return nil, fmt.Errorf("failed to run migrations: %w", err)
	}

	return store, nil
}

// loadOptions reads the tolerance settings from config.
func loadOptions() (reconcile.Options, error) {
	amountTolerance, err := decimal.NewFromString(viper.GetString("import.amount_tolerance"))
	if err != nil {
		return reconcile.Options{}, fmt.Errorf("invalid import.amount_tolerance: %w", err)
	}

	return reconcile.Options{
		DateToleranceDays:              viper.GetInt("import.date_tolerance_days"),
		AmountTolerance:                amountTolerance,
		DescriptionSimilarityThreshold: viper.GetFloat64("import.similarity_threshold"),
	}, nil
}

// decisionsFile is the JSON document exchanged between analyze and execute.
// analyze writes a skeleton with the default decision and an embedded
// candidate per item; the reviewer edits the decisions and feeds the file
// to execute. Embedded candidates keep execution working after the
// analysis cache expires.
type decisionsFile struct {
	AnalysisID string                 `json:"analysisId"`
	AccountID  string                 `json:"accountId"`
	Decisions  []model.ImportDecision `json:"decisions"`
}

func writeDecisionsSkeleton(path string, result *model.ImportAnalysisResult) error {
	doc := decisionsFile{
		AnalysisID: result.AnalysisID,
		AccountID:  result.AccountID,
	}
	for i := range result.Items {
		item := &result.Items[i]
		candidate := item.Candidate
		doc.Decisions = append(doc.Decisions, model.ImportDecision{
			ItemID:    item.ID,
			Decision:  item.Decision,
			Candidate: &candidate,
		})
	}

	data, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal decisions: %w", err)
	}
	if err := os.WriteFile(path, data, 0600); err != nil {
		return fmt.Errorf("failed to write decisions file: %w", err)
	}
	return nil
}

func readDecisionsFile(path string) (*decisionsFile, error) {
	data, err := os.ReadFile(config.ExpandPath(path))
	if err != nil {
		return nil, fmt.Errorf("failed to read decisions file: %w", err)
	}

	var doc decisionsFile
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("failed to parse decisions file: %w", err)
	}
	return &doc, nil
}

// printAnalysis renders the review items and summary for the terminal.
func printAnalysis(result *model.ImportAnalysisResult) {
	fmt.Printf("\nAnalysis %s (account %s)\n", result.AnalysisID, result.AccountID)
	fmt.Printf("  %d candidate(s): %d clean, %d need review\n",
		result.Summary.TotalCandidates,
		result.Summary.CleanCandidates,
		result.Summary.RequiresReview)

	if result.Summary.ExactDuplicates > 0 {
		fmt.Printf("  exact duplicates:     %d\n", result.Summary.ExactDuplicates)
	}
	if result.Summary.PotentialDuplicates > 0 {
		fmt.Printf("  potential duplicates: %d\n", result.Summary.PotentialDuplicates)
	}
	if result.Summary.TransferConflicts > 0 {
		fmt.Printf("  transfer conflicts:   %d\n", result.Summary.TransferConflicts)
	}

	for i := range result.Items {
		item := &result.Items[i]
		if !item.HasConflicts() {
			continue
		}
		fmt.Printf("\n  [%s] %s  %s  %q\n",
			item.Decision,
			item.Candidate.Date.Format("2006-01-02"),
			item.Candidate.Amount.StringFixed(2),
			item.Candidate.Description)
		for _, c := range item.Conflicts {
			fmt.Printf("    %s (%s, confidence %.2f): %s\n", c.Type, c.Severity, c.Confidence, c.Message)
		}
	}

	for _, note := range result.Notes {
		fmt.Printf("\n  note: %s\n", note)
	}
	for _, warning := range result.Warnings {
		fmt.Printf("  warning: %s\n", warning)
	}
}
