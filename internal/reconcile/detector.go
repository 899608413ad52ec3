package reconcile

import (
	"fmt"
	"math"

	"github.com/shopspring/decimal"

	"github.com/ledgersift/ledgersift/internal/model"
)

// closeMatchAmount is the amount difference under which a candidate and an
// existing transaction one day apart still count as a close match.
var closeMatchAmount = decimal.NewFromFloat(0.01)

// Detect compares a normalized candidate against every existing transaction
// in the window and returns all detected conflicts, in detection order. It
// performs no I/O.
func Detect(candidate model.ImportCandidate, existing []model.Transaction, opts Options) []model.ConflictInfo {
	opts = opts.sanitized()

	var conflicts []model.ConflictInfo
	for i := range existing {
		conflicts = append(conflicts, detectPair(candidate, &existing[i], opts)...)
	}
	return conflicts
}

// detectPair runs the per-pair checks in order. An exact duplicate
// short-circuits the remaining checks for that pair.
func detectPair(candidate model.ImportCandidate, existing *model.Transaction, opts Options) []model.ConflictInfo {
	if candidate.ExternalID != "" && candidate.ExternalID == existing.ExternalID {
		return []model.ConflictInfo{{
			Type:       model.ConflictExactDuplicate,
			Severity:   model.SeverityHigh,
			Message:    fmt.Sprintf("External reference id %q already exists in the ledger", candidate.ExternalID),
			Confidence: 1.0,
			Existing:   existing,
		}}
	}

	daysDiff := math.Abs(candidate.Date.Sub(existing.Date).Hours() / 24)
	amountDiff := candidate.Amount.Sub(existing.Amount).Abs()
	withinWindow := daysDiff <= float64(opts.DateToleranceDays) &&
		amountDiff.LessThanOrEqual(opts.AmountTolerance)

	var conflicts []model.ConflictInfo

	if withinWindow {
		if c, ok := detectPotentialDuplicate(candidate, existing, daysDiff, amountDiff, opts); ok {
			conflicts = append(conflicts, c)
		}
	}

	if existing.IsTransfer() && withinWindow {
		conflicts = append(conflicts, detectTransferConflict(existing, daysDiff, amountDiff, opts))
	}

	return conflicts
}

func detectPotentialDuplicate(candidate model.ImportCandidate, existing *model.Transaction, daysDiff float64, amountDiff decimal.Decimal, opts Options) (model.ConflictInfo, bool) {
	similarity := descriptionSimilarity(candidate.Description, existing.Description)

	isExactAmountAndDate := amountDiff.IsZero() && daysDiff == 0
	isCloseMatch := daysDiff <= 1 && amountDiff.LessThanOrEqual(closeMatchAmount)

	if !isExactAmountAndDate && !isCloseMatch && similarity < opts.DescriptionSimilarityThreshold {
		return model.ConflictInfo{}, false
	}

	dateConfidence := 1.0
	if opts.DateToleranceDays > 0 {
		dateConfidence = 1 - daysDiff/float64(opts.DateToleranceDays)
	}
	amountConfidence := 1.0
	if !amountDiff.IsZero() {
		amountConfidence = 1 - amountDiff.Div(opts.AmountTolerance).InexactFloat64()
	}

	confidence := clamp01(0.8*(0.5*dateConfidence+0.5*amountConfidence) + 0.2*similarity)

	severity := model.SeverityLow
	switch {
	case isExactAmountAndDate:
		severity = model.SeverityHigh
	case confidence > 0.7:
		severity = model.SeverityMedium
	}

	msg := fmt.Sprintf("Similar transaction %.1f day(s) away", daysDiff)
	switch {
	case candidate.Description == "" || existing.Description == "":
		msg += " (empty description)"
	default:
		msg += fmt.Sprintf(", descriptions %.0f%% similar", similarity*100)
	}

	return model.ConflictInfo{
		Type:       model.ConflictPotentialDuplicate,
		Severity:   severity,
		Message:    msg,
		Confidence: confidence,
		Existing:   existing,
	}, true
}

func detectTransferConflict(existing *model.Transaction, daysDiff float64, amountDiff decimal.Decimal, opts Options) model.ConflictInfo {
	severity := model.SeverityMedium
	if amountDiff.IsZero() && daysDiff <= 1 {
		severity = model.SeverityHigh
	}

	confidence := 0.7
	if amountDiff.IsZero() {
		confidence = 1.0
		if opts.DateToleranceDays > 0 {
			confidence = 1 - daysDiff/float64(opts.DateToleranceDays)
		}
	}

	return model.ConflictInfo{
		Type:       model.ConflictTransfer,
		Severity:   severity,
		Message:    fmt.Sprintf("Matches a transfer leg %.1f day(s) away", daysDiff),
		Confidence: clamp01(confidence),
		Existing:   existing,
	}
}

func clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}
