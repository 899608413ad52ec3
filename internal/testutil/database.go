// Package testutil provides test utilities for ledgersift: in-memory
// database fixtures with proper isolation and cleanup.
package testutil

import (
	"context"
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"github.com/ledgersift/ledgersift/internal/model"
	"github.com/ledgersift/ledgersift/internal/storage"
)

// TestDB represents a migrated in-memory test database.
type TestDB struct {
	Storage *storage.SQLiteStorage
	t       *testing.T
}

// SetupTestDB creates a new in-memory SQLite database, migrated and
// registered for cleanup.
func SetupTestDB(t *testing.T) *TestDB {
	t.Helper()

	store, err := storage.NewSQLiteStorage(":memory:")
	if err != nil {
		t.Fatalf("failed to create test database: %v", err)
	}

	if err := store.Migrate(context.Background()); err != nil {
		t.Fatalf("failed to run migrations: %v", err)
	}

	t.Cleanup(func() {
		_ = store.Close()
	})

	return &TestDB{Storage: store, t: t}
}

// SeedTransaction inserts a ledger transaction, filling required fields
// with sensible defaults.
func (db *TestDB) SeedTransaction(txn model.Transaction) model.Transaction {
	db.t.Helper()

	if txn.Source == "" {
		txn.Source = model.SourceManual
	}
	if txn.Type == "" {
		if txn.Amount.IsNegative() {
			txn.Type = model.TypeExpense
		} else {
			txn.Type = model.TypeIncome
		}
	}
	if txn.Status == "" {
		txn.Status = model.StatusUnreviewed
	}
	if txn.CreatedAt.IsZero() {
		txn.CreatedAt = time.Now().UTC()
	}

	if err := db.Storage.CreateTransaction(context.Background(), &txn); err != nil {
		db.t.Fatalf("failed to seed transaction %s: %v", txn.ID, err)
	}
	return txn
}

// Expense builds an expense transaction for the given account.
func Expense(id, accountID string, amount float64, date time.Time, description string) model.Transaction {
	return model.Transaction{
		ID:          id,
		AccountID:   accountID,
		Amount:      decimal.NewFromFloat(amount).Abs().Neg(),
		Date:        date,
		Description: description,
		Source:      model.SourceManual,
		Type:        model.TypeExpense,
		Status:      model.StatusUnreviewed,
	}
}
