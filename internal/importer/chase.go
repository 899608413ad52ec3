package importer

import (
	"encoding/csv"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/ledgersift/ledgersift/internal/model"
)

// ChaseParser parses Chase bank checking CSV exports.
type ChaseParser struct{}

const (
	chaseDateFormat = "01/02/2006"
	chaseNumFields  = 7
	chaseColDate    = 1
	chaseColDesc    = 2
	chaseColAmount  = 3
	chaseColType    = 4
	chaseColCheck   = 6
)

// Format returns the parser name.
func (p *ChaseParser) Format() string { return "chase" }

// Parse reads a Chase CSV and returns import candidates.
func (p *ChaseParser) Parse(r io.Reader) ([]model.ImportCandidate, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = chaseNumFields

	records, err := cr.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("reading chase CSV: %w", err)
	}

	if len(records) <= 1 {
		return nil, nil
	}

	var candidates []model.ImportCandidate
	for i, rec := range records[1:] {
		candidate, err := parseChaseRow(rec, i+1)
		if err != nil {
			return nil, fmt.Errorf("row %d: %w", i+2, err)
		}
		candidates = append(candidates, candidate)
	}
	return candidates, nil
}

func parseChaseRow(rec []string, rowIndex int) (model.ImportCandidate, error) {
	date, err := time.Parse(chaseDateFormat, rec[chaseColDate])
	if err != nil {
		return model.ImportCandidate{}, fmt.Errorf("parsing date %q: %w", rec[chaseColDate], err)
	}

	amount, err := parseAmount(rec[chaseColAmount])
	if err != nil {
		return model.ImportCandidate{}, err
	}

	txnType := model.TypeExpense
	if strings.EqualFold(rec[chaseColType], "CREDIT") || amount.IsPositive() {
		txnType = model.TypeIncome
	}

	return model.ImportCandidate{
		Date:            date,
		Description:     strings.TrimSpace(rec[chaseColDesc]),
		Amount:          amount,
		ReferenceNumber: strings.TrimSpace(rec[chaseColCheck]),
		Source:          model.SourceCSVImport,
		Type:            txnType,
		RowIndex:        rowIndex,
	}, nil
}
