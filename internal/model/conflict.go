package model

// ConflictType classifies the relationship between a candidate and an
// existing transaction.
type ConflictType string

// Conflict type constants.
const (
	ConflictExactDuplicate     ConflictType = "EXACT_DUPLICATE"
	ConflictPotentialDuplicate ConflictType = "POTENTIAL_DUPLICATE"
	ConflictTransfer           ConflictType = "TRANSFER_CONFLICT"
	ConflictManualReview       ConflictType = "MANUAL_REVIEW"
)

// IsValid reports whether t is a known conflict type.
func (t ConflictType) IsValid() bool {
	switch t {
	case ConflictExactDuplicate, ConflictPotentialDuplicate, ConflictTransfer, ConflictManualReview:
		return true
	}
	return false
}

// ConflictSeverity ranks how strongly a conflict suggests the candidate
// should not be imported as-is.
type ConflictSeverity string

// Conflict severity constants.
const (
	SeverityLow    ConflictSeverity = "LOW"
	SeverityMedium ConflictSeverity = "MEDIUM"
	SeverityHigh   ConflictSeverity = "HIGH"
)

// ConflictInfo describes one detected conflict between a candidate and an
// existing ledger transaction. Confidence is always within [0,1]. A candidate
// may carry zero, one, or many conflicts, listed in detection order.
type ConflictInfo struct {
	Existing   *Transaction
	Type       ConflictType
	Severity   ConflictSeverity
	Message    string
	Confidence float64
}

// IsDuplicate reports whether the conflict marks the candidate as a likely
// duplicate of the existing transaction, as opposed to a transfer collision.
func (c *ConflictInfo) IsDuplicate() bool {
	return c.Type == ConflictExactDuplicate || c.Type == ConflictPotentialDuplicate
}
