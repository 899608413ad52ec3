package reconcile

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/ledgersift/ledgersift/internal/model"
	"github.com/ledgersift/ledgersift/internal/service"
)

// Warning thresholds used while generating advisory output.
var (
	largeAmountThreshold = decimal.NewFromInt(10000)
	wideAmountTolerance  = decimal.NewFromInt(1)
)

const (
	wideDateToleranceDays = 7
	veryOldYears          = 5
)

// Analyzer runs conflict detection across an import batch and caches the
// result for later execution.
type Analyzer struct {
	storage service.Storage
	store   service.AnalysisStore
	opts    Options
}

// NewAnalyzer creates an analyzer with the given collaborators.
func NewAnalyzer(storage service.Storage, store service.AnalysisStore, opts Options) *Analyzer {
	return &Analyzer{
		storage: storage,
		store:   store,
		opts:    opts.sanitized(),
	}
}

// Analyze normalizes every candidate, detects conflicts against the
// account's existing transactions in the tolerance window, and returns a
// review result cached under a fresh analysis id. Any storage failure
// propagates to the caller and nothing is cached.
func (a *Analyzer) Analyze(ctx context.Context, candidates []model.ImportCandidate, accountID, userID string) (*model.ImportAnalysisResult, error) {
	analysisID := uuid.NewString()

	result := &model.ImportAnalysisResult{
		AnalysisID: analysisID,
		AccountID:  accountID,
		AnalyzedAt: time.Now().UTC(),
	}

	if len(candidates) == 0 {
		result.Warnings = append(result.Warnings, "import appears to be empty: no candidates to analyze")
		slog.Info("Analysis skipped, empty candidate list", "analysis_id", analysisID, "account_id", accountID)
		return result, nil
	}

	normalized := make([]model.ImportCandidate, len(candidates))
	for i, c := range candidates {
		normalized[i] = NormalizeCandidate(c)
	}

	start, end := fetchWindow(normalized, a.opts.DateToleranceDays)
	existing, err := a.storage.GetTransactionsByDateRange(ctx, accountID, userID, start, end)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch existing transactions: %w", err)
	}

	slog.Info("Analyzing import batch",
		"analysis_id", analysisID,
		"account_id", accountID,
		"candidates", len(normalized),
		"existing_in_window", len(existing),
		"window_start", start.Format("2006-01-02"),
		"window_end", end.Format("2006-01-02"))

	result.Items = make([]model.ImportReviewItem, 0, len(normalized))
	for _, cand := range normalized {
		conflicts := Detect(cand, existing, a.opts)

		decision := model.DecisionImport
		if len(conflicts) > 0 {
			decision = model.DecisionPending
		}

		result.Items = append(result.Items, model.ImportReviewItem{
			ID:        uuid.NewString(),
			Candidate: cand,
			Conflicts: conflicts,
			Decision:  decision,
		})
	}

	result.Summary = summarize(result.Items)
	result.Notes = a.advisoryNotes(result.Items)
	result.Warnings = append(result.Warnings, a.batchWarnings(normalized)...)

	a.store.Put(analysisID, result)

	slog.Info("Analysis complete",
		"analysis_id", analysisID,
		"requires_review", result.Summary.RequiresReview,
		"clean", result.Summary.CleanCandidates)

	return result, nil
}

// fetchWindow computes the existing-transaction window spanning every
// candidate date, padded by the date tolerance on both sides.
func fetchWindow(candidates []model.ImportCandidate, toleranceDays int) (time.Time, time.Time) {
	minDate := candidates[0].Date
	maxDate := candidates[0].Date
	for _, c := range candidates[1:] {
		if c.Date.Before(minDate) {
			minDate = c.Date
		}
		if c.Date.After(maxDate) {
			maxDate = c.Date
		}
	}
	return minDate.AddDate(0, 0, -toleranceDays), maxDate.AddDate(0, 0, toleranceDays)
}

func summarize(items []model.ImportReviewItem) model.ImportSummary {
	summary := model.ImportSummary{TotalCandidates: len(items)}

	for i := range items {
		item := &items[i]
		if !item.HasConflicts() {
			summary.CleanCandidates++
			continue
		}

		seen := make(map[model.ConflictType]bool, len(item.Conflicts))
		for _, c := range item.Conflicts {
			if seen[c.Type] {
				continue
			}
			seen[c.Type] = true
			switch c.Type {
			case model.ConflictExactDuplicate:
				summary.ExactDuplicates++
			case model.ConflictPotentialDuplicate:
				summary.PotentialDuplicates++
			case model.ConflictTransfer:
				summary.TransferConflicts++
			case model.ConflictManualReview:
				summary.ManualConflicts++
			}
		}
	}

	summary.RequiresReview = summary.TotalCandidates - summary.CleanCandidates
	return summary
}

// advisoryNotes points the reviewer at batch-level signals that are not
// problems in themselves.
func (a *Analyzer) advisoryNotes(items []model.ImportReviewItem) []string {
	var notes []string

	highConfidence := 0
	for i := range items {
		for _, c := range items[i].Conflicts {
			if c.Confidence >= 0.9 {
				highConfidence++
				break
			}
		}
	}
	if highConfidence > 0 {
		notes = append(notes, fmt.Sprintf("%d candidate(s) have high-confidence matches; review carefully before importing", highConfidence))
	}

	if a.opts.DateToleranceDays > wideDateToleranceDays || a.opts.AmountTolerance.GreaterThan(wideAmountTolerance) {
		notes = append(notes, "wide tolerance settings may flag unrelated transactions as potential duplicates")
	}

	return notes
}

// batchWarnings flags suspicious candidate data before anything is imported.
func (a *Analyzer) batchWarnings(candidates []model.ImportCandidate) []string {
	var warnings []string
	now := time.Now().UTC()

	externalIDs := make(map[string]int, len(candidates))
	missingDescriptions := 0

	for _, c := range candidates {
		if c.ExternalID != "" {
			externalIDs[c.ExternalID]++
		}
		if c.Description == "" {
			missingDescriptions++
		}
		if c.Amount.Abs().GreaterThanOrEqual(largeAmountThreshold) {
			warnings = append(warnings, fmt.Sprintf("row %d: unusually large amount %s", c.RowIndex, c.Amount.StringFixed(2)))
		}
		if c.Date.After(now.Add(24 * time.Hour)) {
			warnings = append(warnings, fmt.Sprintf("row %d: transaction is future-dated (%s)", c.RowIndex, c.Date.Format("2006-01-02")))
		}
		if c.Date.Before(now.AddDate(-veryOldYears, 0, 0)) {
			warnings = append(warnings, fmt.Sprintf("row %d: transaction is more than %d years old (%s)", c.RowIndex, veryOldYears, c.Date.Format("2006-01-02")))
		}
	}

	for id, count := range externalIDs {
		if count > 1 {
			warnings = append(warnings, fmt.Sprintf("external reference id %q appears %d times in this import", id, count))
		}
	}
	if missingDescriptions > 0 {
		warnings = append(warnings, fmt.Sprintf("%d candidate(s) have no description", missingDescriptions))
	}
	if a.opts.DateToleranceDays > wideDateToleranceDays {
		warnings = append(warnings, fmt.Sprintf("date tolerance of %d days is unusually wide", a.opts.DateToleranceDays))
	}
	if a.opts.AmountTolerance.GreaterThan(wideAmountTolerance) {
		warnings = append(warnings, fmt.Sprintf("amount tolerance of %s is unusually wide", a.opts.AmountTolerance.StringFixed(2)))
	}

	return warnings
}
