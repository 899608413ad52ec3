package importer

import (
	"strings"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ledgersift/ledgersift/internal/model"
)

func TestGenericParser_Parse(t *testing.T) {
	input := `Date,Description,Amount,Check Number,External Id,Category
2024-01-15,Grocery Store,-54.20,,GRO-1,Food
2024-01-16,Paycheck,"2,500.00",,PAY-1,Income
2024-01-17,Returned Item,(12.34),104,,
`

	parser := &GenericParser{}
	candidates, err := parser.Parse(strings.NewReader(input))
	require.NoError(t, err)
	require.Len(t, candidates, 3)

	first := candidates[0]
	assert.Equal(t, time.Date(2024, 1, 15, 0, 0, 0, 0, time.UTC), first.Date)
	assert.Equal(t, "Grocery Store", first.Description)
	assert.True(t, first.Amount.Equal(decimal.RequireFromString("-54.20")))
	assert.Equal(t, "GRO-1", first.ExternalID)
	assert.Equal(t, "Food", first.Category)
	assert.Equal(t, model.TypeExpense, first.Type)
	assert.Equal(t, model.SourceCSVImport, first.Source)
	assert.Equal(t, 1, first.RowIndex)

	second := candidates[1]
	assert.True(t, second.Amount.Equal(decimal.RequireFromString("2500.00")), "thousands separators are stripped, got %s", second.Amount)
	assert.Equal(t, model.TypeIncome, second.Type)
	assert.Equal(t, 2, second.RowIndex)

	third := candidates[2]
	assert.True(t, third.Amount.Equal(decimal.RequireFromString("-12.34")), "accounting parentheses mean negative, got %s", third.Amount)
	assert.Equal(t, "104", third.ReferenceNumber)
	assert.Equal(t, 3, third.RowIndex)
}

func TestGenericParser_AlternateHeaders(t *testing.T) {
	input := `Posting Date,Payee,Amount
01/15/2024,Coffee Shop,$-4.50
`

	parser := &GenericParser{}
	candidates, err := parser.Parse(strings.NewReader(input))
	require.NoError(t, err)
	require.Len(t, candidates, 1)

	assert.Equal(t, time.Date(2024, 1, 15, 0, 0, 0, 0, time.UTC), candidates[0].Date)
	assert.Equal(t, "Coffee Shop", candidates[0].Description)
	assert.True(t, candidates[0].Amount.Equal(decimal.RequireFromString("-4.50")))
}

func TestGenericParser_MissingRequiredColumns(t *testing.T) {
	input := `Date,Amount
2024-01-15,-54.20
`

	parser := &GenericParser{}
	_, err := parser.Parse(strings.NewReader(input))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "Date, Description, and Amount")
}

func TestGenericParser_BadRowReportsFileLine(t *testing.T) {
	input := `Date,Description,Amount
2024-01-15,ok,-1.00
not-a-date,bad,-2.00
`

	parser := &GenericParser{}
	_, err := parser.Parse(strings.NewReader(input))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "row 3")
	assert.Contains(t, err.Error(), `unparseable date "not-a-date"`)
}

func TestGenericParser_HeaderOnly(t *testing.T) {
	parser := &GenericParser{}
	candidates, err := parser.Parse(strings.NewReader("Date,Description,Amount\n"))
	require.NoError(t, err)
	assert.Empty(t, candidates)
}

func TestParseAmount(t *testing.T) {
	tests := []struct {
		input string
		want  string
		ok    bool
	}{
		{input: "12.34", want: "12.34", ok: true},
		{input: "-12.34", want: "-12.34", ok: true},
		{input: "$1,234.56", want: "1234.56", ok: true},
		{input: "(99.00)", want: "-99.00", ok: true},
		{input: "abc", ok: false},
		{input: "", ok: false},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got, err := parseAmount(tt.input)
			if !tt.ok {
				require.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.True(t, got.Equal(decimal.RequireFromString(tt.want)), "got %s", got)
		})
	}
}

func TestRegistry(t *testing.T) {
	registry := DefaultRegistry()

	formats := registry.Formats()
	assert.Contains(t, formats, "generic")
	assert.Contains(t, formats, "chase")

	parser := registry.Get("Chase")
	require.NotNil(t, parser, "lookup is case-insensitive")
	assert.Equal(t, "chase", parser.Format())

	assert.Nil(t, registry.Get("unknown"))
}
