package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// ImportCandidate is a proposed transaction that has not been persisted yet.
// Candidates are ephemeral; they exist only within one analysis call and the
// decisions that reference it.
type ImportCandidate struct {
	Date            time.Time
	Description     string
	MerchantName    string
	ExternalID      string
	ReferenceNumber string
	Category        string
	Source          TransactionSource
	Type            TransactionType
	Amount          decimal.Decimal
	Confidence      float64
	RowIndex        int
}

// ToTransaction builds a new ledger transaction from the candidate. The
// caller assigns the id; source is tagged as import-derived and the
// transaction starts unreviewed.
func (c *ImportCandidate) ToTransaction(id, accountID string) Transaction {
	return Transaction{
		ID:              id,
		AccountID:       accountID,
		Amount:          c.Amount,
		Date:            c.Date,
		Description:     c.Description,
		MerchantName:    c.MerchantName,
		ExternalID:      c.ExternalID,
		ReferenceNumber: c.ReferenceNumber,
		Source:          SourceImport,
		Type:            c.Type,
		Status:          StatusUnreviewed,
		CreatedAt:       time.Now().UTC(),
	}
}
