// Package model defines the core domain models used throughout the application.
package model

import (
	"crypto/sha256"
	"fmt"
	"time"

	"github.com/shopspring/decimal"
)

// TransactionType distinguishes money coming in from money going out.
type TransactionType string

// Transaction type constants.
const (
	TypeIncome  TransactionType = "INCOME"
	TypeExpense TransactionType = "EXPENSE"
)

// IsValid reports whether t is a known transaction type.
func (t TransactionType) IsValid() bool {
	switch t {
	case TypeIncome, TypeExpense:
		return true
	}
	return false
}

// TransactionStatus indicates whether a transaction has been reviewed.
type TransactionStatus string

// Transaction status constants.
const (
	StatusUnreviewed TransactionStatus = "UNREVIEWED"
	StatusReviewed   TransactionStatus = "REVIEWED"
)

// TransactionSource identifies where a transaction originated.
type TransactionSource string

// Transaction source constants.
const (
	SourceManual    TransactionSource = "MANUAL"
	SourceCSVImport TransactionSource = "CSV_IMPORT"
	SourceOFXImport TransactionSource = "OFX_IMPORT"
	SourceBankSync  TransactionSource = "BANK_SYNC"
	SourceImport    TransactionSource = "IMPORT"
)

// Transaction represents a persisted ledger entry. During analysis it is used
// as an immutable read projection; the live row may change between analysis
// and execution, which the executor handles by re-fetching.
type Transaction struct {
	Date            time.Time
	CreatedAt       time.Time
	TransferGroupID *string
	ID              string
	AccountID       string
	UserID          string
	Hash            string
	Description     string
	MerchantName    string
	ExternalID      string
	ReferenceNumber string
	Source          TransactionSource
	Type            TransactionType
	Status          TransactionStatus
	Amount          decimal.Decimal
	Reviewed        bool
}

// IsTransfer reports whether the transaction belongs to a transfer pair.
func (t *Transaction) IsTransfer() bool {
	return t.TransferGroupID != nil && *t.TransferGroupID != ""
}

// GenerateHash creates a unique hash for storage-level duplicate detection.
func (t *Transaction) GenerateHash() string {
	data := fmt.Sprintf("%s:%s:%s:%s",
		t.Date.Format("2006-01-02"),
		t.Amount.StringFixed(2),
		t.Description,
		t.AccountID)
	hash := sha256.Sum256([]byte(data))
	return fmt.Sprintf("%x", hash)
}
