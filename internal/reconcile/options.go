// Package reconcile implements import conflict detection and resolution:
// matching externally-sourced transactions against existing ledger entries,
// classifying conflicts, and applying reviewer decisions.
package reconcile

import "github.com/shopspring/decimal"

// Options holds the tolerance settings for conflict detection.
type Options struct {
	// DateToleranceDays bounds how far apart (in days) a candidate and an
	// existing transaction may be and still be compared. Inclusive.
	DateToleranceDays int
	// AmountTolerance bounds the absolute amount difference for comparison.
	// Inclusive.
	AmountTolerance decimal.Decimal
	// DescriptionSimilarityThreshold is the minimum word-set similarity
	// (0..1) that makes two descriptions count as a match on their own.
	DescriptionSimilarityThreshold float64
}

// DefaultOptions returns the suggested tolerance settings.
func DefaultOptions() Options {
	return Options{
		DateToleranceDays:              3,
		AmountTolerance:                decimal.NewFromFloat(0.01),
		DescriptionSimilarityThreshold: 0.6,
	}
}

// sanitized clamps invalid option values to their nearest legal setting.
func (o Options) sanitized() Options {
	if o.DateToleranceDays < 0 {
		o.DateToleranceDays = 0
	}
	if o.AmountTolerance.IsNegative() {
		o.AmountTolerance = decimal.Zero
	}
	if o.DescriptionSimilarityThreshold < 0 {
		o.DescriptionSimilarityThreshold = 0
	}
	if o.DescriptionSimilarityThreshold > 1 {
		o.DescriptionSimilarityThreshold = 1
	}
	return o
}
