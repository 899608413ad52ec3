// Package service defines the interfaces for all application services.
package service

import (
	"context"
	"time"

	"github.com/ledgersift/ledgersift/internal/model"
)

// Storage defines the contract for the ledger persistence layer.
type Storage interface {
	// Transaction operations
	GetTransactionsByDateRange(ctx context.Context, accountID, userID string, start, end time.Time) ([]model.Transaction, error)
	GetTransactionByID(ctx context.Context, id string) (*model.Transaction, error)
	CreateTransaction(ctx context.Context, txn *model.Transaction) error
	UpdateTransaction(ctx context.Context, txn *model.Transaction) error
	SaveTransactions(ctx context.Context, transactions []model.Transaction) error

	// Database management
	Migrate(ctx context.Context) error
	Close() error
}

// AnalysisStore is the server-side cache of completed analyses, keyed by
// analysis id. Implementations must be safe for concurrent use across
// requests. A missing key is not an error; execution falls back to the
// candidate data embedded in each decision.
type AnalysisStore interface {
	Put(analysisID string, result *model.ImportAnalysisResult)
	Get(analysisID string) (*model.ImportAnalysisResult, bool)
	Remove(analysisID string)
}

// CandidateFetcher defines the contract for bank-sync sources that produce
// import candidates for a date range.
type CandidateFetcher interface {
	GetCandidates(ctx context.Context, startDate, endDate time.Time) ([]model.ImportCandidate, error)
	GetAccounts(ctx context.Context) ([]string, error)
}

// RetryOptions configures retry behavior for external calls.
type RetryOptions struct {
	MaxAttempts  int
	InitialDelay time.Duration
	MaxDelay     time.Duration
	Multiplier   float64
}
