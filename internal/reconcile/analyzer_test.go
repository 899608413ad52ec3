package reconcile

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ledgersift/ledgersift/internal/model"
)

func newTestAnalyzer(storage *mockStorage, opts Options) (*Analyzer, *AnalysisCache) {
	cache := NewAnalysisCache(DefaultCacheTTL, DefaultCacheMaxEntries)
	return NewAnalyzer(storage, cache, opts), cache
}

func TestAnalyze_EmptyBatch(t *testing.T) {
	storage := &mockStorage{}
	analyzer, cache := newTestAnalyzer(storage, DefaultOptions())

	result, err := analyzer.Analyze(context.Background(), nil, "acc-1", "user-1")
	require.NoError(t, err)
	require.NotNil(t, result)

	assert.NotEmpty(t, result.AnalysisID)
	assert.Empty(t, result.Items)
	require.Len(t, result.Warnings, 1)
	assert.Contains(t, result.Warnings[0], "empty")

	assert.Empty(t, storage.RangeCalls, "empty batches must not hit storage")
	assert.Equal(t, 0, cache.Len(), "empty batches must not be cached")
}

func TestAnalyze_CleanBatch(t *testing.T) {
	storage := &mockStorage{}
	analyzer, cache := newTestAnalyzer(storage, DefaultOptions())

	candidates := []model.ImportCandidate{
		{Amount: dec("25.50"), Date: day(2024, 1, 1), Description: "Coffee", Type: model.TypeExpense, RowIndex: 1},
		{Amount: dec("1200.00"), Date: day(2024, 1, 2), Description: "Paycheck", Type: model.TypeIncome, RowIndex: 2},
	}

	result, err := analyzer.Analyze(context.Background(), candidates, "acc-1", "user-1")
	require.NoError(t, err)
	require.Len(t, result.Items, 2)

	// Amounts are normalized to the sign the type implies.
	assert.True(t, result.Items[0].Candidate.Amount.Equal(dec("-25.50")))
	assert.True(t, result.Items[1].Candidate.Amount.Equal(dec("1200.00")))

	for _, item := range result.Items {
		assert.NotEmpty(t, item.ID)
		assert.Empty(t, item.Conflicts)
		assert.Equal(t, model.DecisionImport, item.Decision)
	}

	assert.Equal(t, 2, result.Summary.TotalCandidates)
	assert.Equal(t, 2, result.Summary.CleanCandidates)
	assert.Equal(t, 0, result.Summary.RequiresReview)
	assert.Empty(t, result.Warnings)

	cached, ok := cache.Get(result.AnalysisID)
	require.True(t, ok)
	assert.Equal(t, result, cached)
}

func TestAnalyze_FetchWindowSpansCandidates(t *testing.T) {
	storage := &mockStorage{}
	analyzer, _ := newTestAnalyzer(storage, Options{
		DateToleranceDays:              3,
		AmountTolerance:                dec("0.01"),
		DescriptionSimilarityThreshold: 0.6,
	})

	candidates := []model.ImportCandidate{
		{Amount: dec("-10.00"), Date: day(2024, 3, 15), Description: "b", Type: model.TypeExpense},
		{Amount: dec("-10.00"), Date: day(2024, 3, 5), Description: "a", Type: model.TypeExpense},
		{Amount: dec("-10.00"), Date: day(2024, 3, 20), Description: "c", Type: model.TypeExpense},
	}

	_, err := analyzer.Analyze(context.Background(), candidates, "acc-1", "user-1")
	require.NoError(t, err)

	require.Len(t, storage.RangeCalls, 1)
	call := storage.RangeCalls[0]
	assert.Equal(t, "acc-1", call.AccountID)
	assert.Equal(t, "user-1", call.UserID)
	assert.Equal(t, day(2024, 3, 2), call.Start)
	assert.Equal(t, day(2024, 3, 23), call.End)
}

func TestAnalyze_ConflictsDefaultToPending(t *testing.T) {
	existing := existingTxn("e1", "-50.00", day(2024, 3, 10), "Electric Bill")
	storage := &mockStorage{
		GetTransactionsByDateRangeFn: func(context.Context, string, string, time.Time, time.Time) ([]model.Transaction, error) {
			return []model.Transaction{existing}, nil
		},
	}
	analyzer, _ := newTestAnalyzer(storage, DefaultOptions())

	candidates := []model.ImportCandidate{
		{Amount: dec("-50.00"), Date: day(2024, 3, 10), Description: "Electric Bill", Type: model.TypeExpense, RowIndex: 1},
		{Amount: dec("-8.25"), Date: day(2024, 3, 12), Description: "Lunch", Type: model.TypeExpense, RowIndex: 2},
	}

	result, err := analyzer.Analyze(context.Background(), candidates, "acc-1", "")
	require.NoError(t, err)
	require.Len(t, result.Items, 2)

	assert.Equal(t, model.DecisionPending, result.Items[0].Decision)
	assert.Equal(t, model.DecisionImport, result.Items[1].Decision)

	assert.Equal(t, 1, result.Summary.PotentialDuplicates)
	assert.Equal(t, 1, result.Summary.CleanCandidates)
	assert.Equal(t, 1, result.Summary.RequiresReview)
}

func TestAnalyze_SummaryCountsItemsOncePerConflictType(t *testing.T) {
	// Two similar transfer legs in the window give the candidate two
	// potential-duplicate and two transfer conflicts; the summary still
	// counts the candidate once per type.
	storage := &mockStorage{
		GetTransactionsByDateRangeFn: func(context.Context, string, string, time.Time, time.Time) ([]model.Transaction, error) {
			return []model.Transaction{
				transferTxn("e1", "-75.00", day(2024, 3, 10), "Credit Card Payment"),
				transferTxn("e2", "-75.00", day(2024, 3, 10), "Credit Card Payment"),
			}, nil
		},
	}
	analyzer, _ := newTestAnalyzer(storage, DefaultOptions())

	candidates := []model.ImportCandidate{
		{Amount: dec("-75.00"), Date: day(2024, 3, 10), Description: "Credit Card Payment", Type: model.TypeExpense},
	}

	result, err := analyzer.Analyze(context.Background(), candidates, "acc-1", "")
	require.NoError(t, err)

	require.Len(t, result.Items, 1)
	assert.Len(t, result.Items[0].Conflicts, 4)
	assert.Equal(t, 1, result.Summary.PotentialDuplicates)
	assert.Equal(t, 1, result.Summary.TransferConflicts)
	assert.Equal(t, 1, result.Summary.RequiresReview)
}

func TestAnalyze_StorageErrorCachesNothing(t *testing.T) {
	storageErr := errors.New("disk unavailable")
	storage := &mockStorage{
		GetTransactionsByDateRangeFn: func(context.Context, string, string, time.Time, time.Time) ([]model.Transaction, error) {
			return nil, storageErr
		},
	}
	analyzer, cache := newTestAnalyzer(storage, DefaultOptions())

	candidates := []model.ImportCandidate{
		{Amount: dec("-10.00"), Date: day(2024, 3, 10), Description: "x", Type: model.TypeExpense},
	}

	result, err := analyzer.Analyze(context.Background(), candidates, "acc-1", "")
	require.Error(t, err)
	assert.ErrorIs(t, err, storageErr)
	assert.Nil(t, result)
	assert.Equal(t, 0, cache.Len())
}

func TestAnalyze_BatchWarnings(t *testing.T) {
	storage := &mockStorage{}
	analyzer, _ := newTestAnalyzer(storage, DefaultOptions())

	now := time.Now().UTC()
	candidates := []model.ImportCandidate{
		{Amount: dec("-15000.00"), Date: day(2024, 3, 10), Description: "Wire", ExternalID: "DUP", Type: model.TypeExpense, RowIndex: 1},
		{Amount: dec("-20.00"), Date: now.Add(72 * time.Hour), Description: "Future", ExternalID: "DUP", Type: model.TypeExpense, RowIndex: 2},
		{Amount: dec("-20.00"), Date: day(2015, 1, 1), Type: model.TypeExpense, RowIndex: 3},
	}

	result, err := analyzer.Analyze(context.Background(), candidates, "acc-1", "")
	require.NoError(t, err)

	joined := strings.Join(result.Warnings, "\n")
	assert.Contains(t, joined, "row 1: unusually large amount")
	assert.Contains(t, joined, "row 2: transaction is future-dated")
	assert.Contains(t, joined, "row 3: transaction is more than 5 years old")
	assert.Contains(t, joined, `external reference id "DUP" appears 2 times`)
	assert.Contains(t, joined, "1 candidate(s) have no description")
}

func TestAnalyze_WideToleranceAdvisories(t *testing.T) {
	storage := &mockStorage{}
	analyzer, _ := newTestAnalyzer(storage, Options{
		DateToleranceDays:              14,
		AmountTolerance:                dec("5.00"),
		DescriptionSimilarityThreshold: 0.6,
	})

	candidates := []model.ImportCandidate{
		{Amount: dec("-10.00"), Date: day(2024, 3, 10), Description: "x", Type: model.TypeExpense, RowIndex: 1},
	}

	result, err := analyzer.Analyze(context.Background(), candidates, "acc-1", "")
	require.NoError(t, err)

	notes := strings.Join(result.Notes, "\n")
	assert.Contains(t, notes, "wide tolerance settings")

	warnings := strings.Join(result.Warnings, "\n")
	assert.Contains(t, warnings, "date tolerance of 14 days is unusually wide")
	assert.Contains(t, warnings, "amount tolerance of 5.00 is unusually wide")
}

func TestAnalyze_HighConfidenceNote(t *testing.T) {
	storage := &mockStorage{
		GetTransactionsByDateRangeFn: func(context.Context, string, string, time.Time, time.Time) ([]model.Transaction, error) {
			return []model.Transaction{existingTxn("e1", "-50.00", day(2024, 3, 10), "Electric Bill")}, nil
		},
	}
	analyzer, _ := newTestAnalyzer(storage, DefaultOptions())

	candidates := []model.ImportCandidate{
		{Amount: dec("-50.00"), Date: day(2024, 3, 10), Description: "Electric Bill", Type: model.TypeExpense},
	}

	result, err := analyzer.Analyze(context.Background(), candidates, "acc-1", "")
	require.NoError(t, err)

	require.NotEmpty(t, result.Notes)
	assert.Contains(t, result.Notes[0], "1 candidate(s) have high-confidence matches")
}
