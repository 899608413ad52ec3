package importer

import (
	"encoding/csv"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/ledgersift/ledgersift/internal/model"
)

// genericDateFormats are tried in order when parsing dates.
var genericDateFormats = []string{
	"2006-01-02",
	"01/02/2006",
	"1/2/2006",
	"02 Jan 2006",
}

// GenericParser parses header-driven CSVs with Date, Description, and Amount
// columns. Optional columns: Reference, External Id, Category.
type GenericParser struct{}

// Format returns the parser name.
func (p *GenericParser) Format() string { return "generic" }

// Parse reads the CSV and returns one candidate per data row. Row indexes
// are 1-based data-row positions, matching what a reviewer sees in a
// spreadsheet minus the header.
func (p *GenericParser) Parse(r io.Reader) ([]model.ImportCandidate, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1

	records, err := cr.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("reading CSV: %w", err)
	}
	if len(records) <= 1 {
		return nil, nil
	}

	columns, err := mapHeader(records[0])
	if err != nil {
		return nil, err
	}

	var candidates []model.ImportCandidate
	for i, rec := range records[1:] {
		candidate, err := parseGenericRow(rec, columns, i+1)
		if err != nil {
			return nil, fmt.Errorf("row %d: %w", i+2, err)
		}
		candidates = append(candidates, candidate)
	}
	return candidates, nil
}

type columnMap struct {
	date        int
	description int
	amount      int
	reference   int
	externalID  int
	category    int
}

func mapHeader(header []string) (columnMap, error) {
	columns := columnMap{date: -1, description: -1, amount: -1, reference: -1, externalID: -1, category: -1}

	for i, h := range header {
		switch strings.ToLower(strings.TrimSpace(h)) {
		case "date", "transaction date", "posting date":
			columns.date = i
		case "description", "payee", "name", "memo":
			if columns.description == -1 {
				columns.description = i
			}
		case "amount":
			columns.amount = i
		case "reference", "check number", "check #":
			columns.reference = i
		case "external id", "externalid", "id", "fitid":
			columns.externalID = i
		case "category":
			columns.category = i
		}
	}

	if columns.date == -1 || columns.description == -1 || columns.amount == -1 {
		return columns, fmt.Errorf("CSV header must include Date, Description, and Amount columns, got %v", header)
	}
	return columns, nil
}

func parseGenericRow(rec []string, columns columnMap, rowIndex int) (model.ImportCandidate, error) {
	get := func(col int) string {
		if col < 0 || col >= len(rec) {
			return ""
		}
		return strings.TrimSpace(rec[col])
	}

	date, err := parseDate(get(columns.date))
	if err != nil {
		return model.ImportCandidate{}, err
	}

	amount, err := parseAmount(get(columns.amount))
	if err != nil {
		return model.ImportCandidate{}, err
	}

	txnType := model.TypeIncome
	if amount.IsNegative() {
		txnType = model.TypeExpense
	}

	return model.ImportCandidate{
		Date:            date,
		Description:     get(columns.description),
		Amount:          amount,
		ReferenceNumber: get(columns.reference),
		ExternalID:      get(columns.externalID),
		Category:        get(columns.category),
		Source:          model.SourceCSVImport,
		Type:            txnType,
		RowIndex:        rowIndex,
	}, nil
}

func parseDate(value string) (time.Time, error) {
	for _, format := range genericDateFormats {
		if date, err := time.Parse(format, value); err == nil {
			return date, nil
		}
	}
	return time.Time{}, fmt.Errorf("unparseable date %q", value)
}

func parseAmount(value string) (decimal.Decimal, error) {
	cleaned := strings.ReplaceAll(value, ",", "")
	cleaned = strings.TrimPrefix(cleaned, "$")

	// Accounting notation: (12.34) means -12.34
	if strings.HasPrefix(cleaned, "(") && strings.HasSuffix(cleaned, ")") {
		cleaned = "-" + strings.Trim(cleaned, "()")
	}

	amount, err := decimal.NewFromString(cleaned)
	if err != nil {
		return decimal.Zero, fmt.Errorf("unparseable amount %q: %w", value, err)
	}
	return amount, nil
}
