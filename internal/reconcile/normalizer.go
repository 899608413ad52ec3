package reconcile

import (
	"github.com/shopspring/decimal"

	"github.com/ledgersift/ledgersift/internal/model"
)

// NormalizeCandidate canonicalizes a candidate's amount sign by its
// transaction type: expenses are negative, everything else positive. It is
// pure and idempotent, and must run before any duplicate comparison so
// candidate amounts line up with normalized ledger amounts.
func NormalizeCandidate(c model.ImportCandidate) model.ImportCandidate {
	c.Amount = NormalizeAmount(c.Amount, c.Type)
	return c
}

// NormalizeAmount returns amount with the sign convention for the given
// transaction type.
func NormalizeAmount(amount decimal.Decimal, txnType model.TransactionType) decimal.Decimal {
	if txnType == model.TypeExpense {
		return amount.Abs().Neg()
	}
	return amount.Abs()
}
