package reconcile

import (
	"context"
	"sync"
	"time"

	"github.com/ledgersift/ledgersift/internal/common"
	"github.com/ledgersift/ledgersift/internal/model"
	"github.com/ledgersift/ledgersift/internal/service"
)

// mockStorage is a hand-rolled service.Storage for tests. Set the Fn fields
// to control behavior; calls are recorded for assertions.
type mockStorage struct {
	mu sync.Mutex

	GetTransactionsByDateRangeFn func(ctx context.Context, accountID, userID string, start, end time.Time) ([]model.Transaction, error)
	GetTransactionByIDFn         func(ctx context.Context, id string) (*model.Transaction, error)
	CreateTransactionFn          func(ctx context.Context, txn *model.Transaction) error
	UpdateTransactionFn          func(ctx context.Context, txn *model.Transaction) error
	SaveTransactionsFn           func(ctx context.Context, transactions []model.Transaction) error

	RangeCalls   []rangeCall
	Created      []model.Transaction
	Updated      []model.Transaction
	LookedUpIDs  []string
	SavedBatches [][]model.Transaction
}

type rangeCall struct {
	AccountID string
	UserID    string
	Start     time.Time
	End       time.Time
}

var _ service.Storage = (*mockStorage)(nil)

func (m *mockStorage) GetTransactionsByDateRange(ctx context.Context, accountID, userID string, start, end time.Time) ([]model.Transaction, error) {
	m.mu.Lock()
	m.RangeCalls = append(m.RangeCalls, rangeCall{AccountID: accountID, UserID: userID, Start: start, End: end})
	m.mu.Unlock()
	if m.GetTransactionsByDateRangeFn != nil {
		return m.GetTransactionsByDateRangeFn(ctx, accountID, userID, start, end)
	}
	return nil, nil
}

func (m *mockStorage) GetTransactionByID(ctx context.Context, id string) (*model.Transaction, error) {
	m.mu.Lock()
	m.LookedUpIDs = append(m.LookedUpIDs, id)
	m.mu.Unlock()
	if m.GetTransactionByIDFn != nil {
		return m.GetTransactionByIDFn(ctx, id)
	}
	return nil, common.ErrNotFound
}

func (m *mockStorage) CreateTransaction(ctx context.Context, txn *model.Transaction) error {
	m.mu.Lock()
	m.Created = append(m.Created, *txn)
	m.mu.Unlock()
	if m.CreateTransactionFn != nil {
		return m.CreateTransactionFn(ctx, txn)
	}
	return nil
}

func (m *mockStorage) UpdateTransaction(ctx context.Context, txn *model.Transaction) error {
	m.mu.Lock()
	m.Updated = append(m.Updated, *txn)
	m.mu.Unlock()
	if m.UpdateTransactionFn != nil {
		return m.UpdateTransactionFn(ctx, txn)
	}
	return nil
}

func (m *mockStorage) SaveTransactions(ctx context.Context, transactions []model.Transaction) error {
	m.mu.Lock()
	m.SavedBatches = append(m.SavedBatches, transactions)
	m.mu.Unlock()
	if m.SaveTransactionsFn != nil {
		return m.SaveTransactionsFn(ctx, transactions)
	}
	return nil
}

func (m *mockStorage) Migrate(ctx context.Context) error { return nil }

func (m *mockStorage) Close() error { return nil }
