package model

import "time"

// ReviewDecision is the reviewer's resolution for one import candidate.
type ReviewDecision string

// Review decision constants. An item starts Pending and transitions to
// exactly one of the other decisions during execution.
const (
	DecisionPending           ReviewDecision = "PENDING"
	DecisionImport            ReviewDecision = "IMPORT"
	DecisionSkip              ReviewDecision = "SKIP"
	DecisionMergeWithExisting ReviewDecision = "MERGE_WITH_EXISTING"
	DecisionReplaceExisting   ReviewDecision = "REPLACE_EXISTING"
)

// IsValid reports whether d is a known review decision.
func (d ReviewDecision) IsValid() bool {
	switch d {
	case DecisionPending, DecisionImport, DecisionSkip, DecisionMergeWithExisting, DecisionReplaceExisting:
		return true
	}
	return false
}

// ImportReviewItem pairs one candidate with its detected conflicts and the
// reviewer's decision. The id is opaque and unique within one analysis.
type ImportReviewItem struct {
	ID        string
	Candidate ImportCandidate
	Conflicts []ConflictInfo
	Decision  ReviewDecision
	Processed bool
}

// HasConflicts reports whether any conflict was detected for the item.
func (i *ImportReviewItem) HasConflicts() bool {
	return len(i.Conflicts) > 0
}

// ImportSummary aggregates per-analysis conflict statistics.
type ImportSummary struct {
	TotalCandidates     int
	CleanCandidates     int
	ExactDuplicates     int
	PotentialDuplicates int
	TransferConflicts   int
	ManualConflicts     int
	RequiresReview      int
}

// ImportAnalysisResult is the outcome of one analysis batch. It is cached
// server-side under AnalysisID so a later execution call can replay the
// reviewer's decisions against it.
type ImportAnalysisResult struct {
	AnalyzedAt time.Time
	AnalysisID string
	AccountID  string
	Items      []ImportReviewItem
	Notes      []string
	Warnings   []string
	Errors     []string
	Summary    ImportSummary
}

// ImportDecision carries the reviewer's resolution for one review item.
// Candidate is an optional copy of the item's candidate so execution can
// proceed even after the cached analysis has expired.
type ImportDecision struct {
	Candidate *ImportCandidate `json:"candidate,omitempty"`
	ItemID    string           `json:"itemId"`
	Decision  ReviewDecision   `json:"decision"`
}

// ItemOutcome records what execution did with a single review item.
type ItemOutcome struct {
	ItemID   string
	Decision ReviewDecision
	// TransactionID is the created, merged, or replaced ledger transaction,
	// empty for skips and failures.
	TransactionID string
	Error         string
	Success       bool
}

// ImportExecutionResult aggregates the outcome of applying a batch of
// decisions. Partial success is representable: IsSuccess reflects only
// whether every item succeeded.
type ImportExecutionResult struct {
	AnalysisID    string
	AccountID     string
	Outcomes      []ItemOutcome
	Warnings      []string
	Errors        []string
	ImportedCount int
	SkippedCount  int
	MergedCount   int
	ReplacedCount int
	ErrorCount    int
	IsSuccess     bool
}
