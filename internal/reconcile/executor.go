package reconcile

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/google/uuid"

	"github.com/ledgersift/ledgersift/internal/common"
	"github.com/ledgersift/ledgersift/internal/model"
	"github.com/ledgersift/ledgersift/internal/service"
)

// mergedMarker is appended to a transaction's description when an import
// candidate is merged into it.
const mergedMarker = "(merged from import)"

// fallbackWindowDays is the re-detection window used to locate a merge or
// replace target when the cached analysis is gone.
const fallbackWindowDays = 3

// Executor applies reviewer decisions from a prior analysis to the ledger.
type Executor struct {
	storage service.Storage
	store   service.AnalysisStore
	opts    Options
}

// NewExecutor creates an executor with the given collaborators.
func NewExecutor(storage service.Storage, store service.AnalysisStore, opts Options) *Executor {
	return &Executor{
		storage: storage,
		store:   store,
		opts:    opts.sanitized(),
	}
}

// Execute replays the reviewer's decisions against the cached analysis,
// or in degraded mode from decision-embedded candidates when the cache has
// expired. Item-level failures are recorded and counted, never fatal; only
// an unresolvable account id aborts the batch. The cached analysis is
// consumed: a second call with the same id runs fully degraded.
func (e *Executor) Execute(ctx context.Context, analysisID, accountID, userID string, decisions []model.ImportDecision) (*model.ImportExecutionResult, error) {
	result := &model.ImportExecutionResult{AnalysisID: analysisID}

	cached, ok := e.store.Get(analysisID)
	if !ok {
		slog.Warn("Analysis not found in cache, executing in degraded mode", "analysis_id", analysisID)
		result.Warnings = append(result.Warnings,
			"analysis not found in cache; executed from candidate data embedded in decisions")
	}

	effectiveAccount := accountID
	if effectiveAccount == "" && cached != nil {
		effectiveAccount = cached.AccountID
	}
	if effectiveAccount == "" {
		return nil, fmt.Errorf("%w: neither request nor cached analysis carries an account id", common.ErrNoAccount)
	}
	result.AccountID = effectiveAccount

	itemsByID := make(map[string]*model.ImportReviewItem)
	if cached != nil {
		for i := range cached.Items {
			itemsByID[cached.Items[i].ID] = &cached.Items[i]
		}
	}

	for _, decision := range decisions {
		outcome := e.executeDecision(ctx, decision, itemsByID[decision.ItemID], effectiveAccount, userID, result)
		if !outcome.Success {
			result.ErrorCount++
			result.Errors = append(result.Errors, fmt.Sprintf("item %s: %s", decision.ItemID, outcome.Error))
		}
		result.Outcomes = append(result.Outcomes, outcome)
	}

	e.store.Remove(analysisID)

	result.IsSuccess = result.ErrorCount == 0

	slog.Info("Execution complete",
		"analysis_id", analysisID,
		"account_id", effectiveAccount,
		"imported", result.ImportedCount,
		"skipped", result.SkippedCount,
		"merged", result.MergedCount,
		"replaced", result.ReplacedCount,
		"errors", result.ErrorCount)

	return result, nil
}

func (e *Executor) executeDecision(ctx context.Context, decision model.ImportDecision, item *model.ImportReviewItem, accountID, userID string, result *model.ImportExecutionResult) model.ItemOutcome {
	outcome := model.ItemOutcome{ItemID: decision.ItemID, Decision: decision.Decision}

	if item != nil && item.Processed {
		outcome.Error = "item already processed in a previous execution"
		return outcome
	}

	candidate, err := resolveCandidate(decision, item)
	if err != nil {
		outcome.Error = err.Error()
		return outcome
	}

	switch decision.Decision {
	case model.DecisionImport:
		txn := candidate.ToTransaction(uuid.NewString(), accountID)
		txn.UserID = userID
		txn.Amount = NormalizeAmount(txn.Amount, txn.Type)
		if err := e.storage.CreateTransaction(ctx, &txn); err != nil {
			outcome.Error = fmt.Sprintf("failed to create transaction: %v", err)
			return outcome
		}
		result.ImportedCount++
		outcome.TransactionID = txn.ID

	case model.DecisionSkip:
		result.SkippedCount++

	case model.DecisionMergeWithExisting:
		target, err := e.findTarget(ctx, item, candidate, accountID, userID)
		if err != nil {
			outcome.Error = err.Error()
			return outcome
		}
		e.mergeInto(target, candidate)
		if err := e.storage.UpdateTransaction(ctx, target); err != nil {
			outcome.Error = fmt.Sprintf("failed to update transaction %s: %v", target.ID, err)
			return outcome
		}
		result.MergedCount++
		outcome.TransactionID = target.ID

	case model.DecisionReplaceExisting:
		target, err := e.findTarget(ctx, item, candidate, accountID, userID)
		if err != nil {
			outcome.Error = err.Error()
			return outcome
		}
		e.replaceWith(target, candidate)
		if err := e.storage.UpdateTransaction(ctx, target); err != nil {
			outcome.Error = fmt.Sprintf("failed to update transaction %s: %v", target.ID, err)
			return outcome
		}
		result.ReplacedCount++
		outcome.TransactionID = target.ID

	default:
		outcome.Error = fmt.Sprintf("unknown decision %q", decision.Decision)
		return outcome
	}

	if item != nil {
		item.Decision = decision.Decision
		item.Processed = true
	}
	outcome.Success = true
	return outcome
}

// resolveCandidate prefers the cached review item's candidate, then the
// copy embedded in the decision.
func resolveCandidate(decision model.ImportDecision, item *model.ImportReviewItem) (model.ImportCandidate, error) {
	if item != nil {
		return item.Candidate, nil
	}
	if decision.Candidate != nil {
		return NormalizeCandidate(*decision.Candidate), nil
	}
	return model.ImportCandidate{}, fmt.Errorf("candidate data unavailable: analysis expired and decision carries no candidate")
}

// findTarget locates the existing transaction a merge or replace applies
// to. Cached conflict data is preferred; with a cold cache the executor
// re-fetches a narrow window around the candidate date and re-runs
// detection. The live row is always re-fetched so execution never writes
// over a stale snapshot.
func (e *Executor) findTarget(ctx context.Context, item *model.ImportReviewItem, candidate model.ImportCandidate, accountID, userID string) (*model.Transaction, error) {
	var targetID string

	if item != nil {
		if best := bestDuplicate(item.Conflicts); best != nil {
			targetID = best.Existing.ID
		}
	}

	if targetID == "" {
		start := candidate.Date.AddDate(0, 0, -fallbackWindowDays)
		end := candidate.Date.AddDate(0, 0, fallbackWindowDays)
		existing, err := e.storage.GetTransactionsByDateRange(ctx, accountID, userID, start, end)
		if err != nil {
			return nil, fmt.Errorf("fallback detection failed: %w", err)
		}
		conflicts := Detect(candidate, existing, e.opts)
		if best := bestDuplicate(conflicts); best != nil {
			targetID = best.Existing.ID
		}
	}

	if targetID == "" {
		return nil, fmt.Errorf("no conflicting transaction found to merge or replace")
	}

	target, err := e.storage.GetTransactionByID(ctx, targetID)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch target transaction %s: %w", targetID, err)
	}
	return target, nil
}

// bestDuplicate returns the highest-confidence duplicate-type conflict.
// Transfer conflicts are never merge targets.
func bestDuplicate(conflicts []model.ConflictInfo) *model.ConflictInfo {
	var best *model.ConflictInfo
	for i := range conflicts {
		c := &conflicts[i]
		if !c.IsDuplicate() || c.Existing == nil {
			continue
		}
		if best == nil || c.Confidence > best.Confidence {
			best = c
		}
	}
	return best
}

// mergeInto backfills identifying data from the candidate without touching
// the target's amount or date.
func (e *Executor) mergeInto(target *model.Transaction, candidate model.ImportCandidate) {
	if target.ExternalID == "" && candidate.ExternalID != "" {
		target.ExternalID = candidate.ExternalID
	}
	if target.ReferenceNumber == "" && candidate.ReferenceNumber != "" {
		target.ReferenceNumber = candidate.ReferenceNumber
	}
	if !strings.Contains(target.Description, mergedMarker) {
		target.Description = strings.TrimSpace(target.Description + " " + mergedMarker)
	}
	target.Reviewed = true
	target.Status = model.StatusReviewed
}

// replaceWith overwrites the target with the candidate's data.
func (e *Executor) replaceWith(target *model.Transaction, candidate model.ImportCandidate) {
	target.Amount = NormalizeAmount(candidate.Amount, candidate.Type)
	target.Date = candidate.Date
	target.Description = candidate.Description
	target.MerchantName = candidate.MerchantName
	target.ExternalID = candidate.ExternalID
	target.ReferenceNumber = candidate.ReferenceNumber
	target.Type = candidate.Type
	target.Source = model.SourceImport
	target.Reviewed = true
	target.Status = model.StatusReviewed
}
