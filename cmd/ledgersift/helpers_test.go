package main

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ledgersift/ledgersift/internal/model"
)

func TestDecisionsFileRoundTrip(t *testing.T) {
	result := &model.ImportAnalysisResult{
		AnalysisID: "analysis-1",
		AccountID:  "acc-1",
		Items: []model.ImportReviewItem{
			{
				ID:       "item-1",
				Decision: model.DecisionImport,
				Candidate: model.ImportCandidate{
					Date:        time.Date(2024, 3, 10, 0, 0, 0, 0, time.UTC),
					Description: "Coffee",
					Amount:      decimal.RequireFromString("-4.50"),
					Type:        model.TypeExpense,
				},
			},
			{
				ID:       "item-2",
				Decision: model.DecisionPending,
				Candidate: model.ImportCandidate{
					Date:        time.Date(2024, 3, 11, 0, 0, 0, 0, time.UTC),
					Description: "Electric Bill",
					Amount:      decimal.RequireFromString("-50.00"),
					Type:        model.TypeExpense,
				},
			},
		},
	}

	path := filepath.Join(t.TempDir(), "decisions.json")
	require.NoError(t, writeDecisionsSkeleton(path, result))

	doc, err := readDecisionsFile(path)
	require.NoError(t, err)

	assert.Equal(t, "analysis-1", doc.AnalysisID)
	assert.Equal(t, "acc-1", doc.AccountID)
	require.Len(t, doc.Decisions, 2)

	first := doc.Decisions[0]
	assert.Equal(t, "item-1", first.ItemID)
	assert.Equal(t, model.DecisionImport, first.Decision)
	require.NotNil(t, first.Candidate, "skeleton embeds the candidate for degraded execution")
	assert.Equal(t, "Coffee", first.Candidate.Description)
	assert.True(t, first.Candidate.Amount.Equal(decimal.RequireFromString("-4.50")))

	assert.Equal(t, model.DecisionPending, doc.Decisions[1].Decision)
}

func TestReadDecisionsFile_Missing(t *testing.T) {
	_, err := readDecisionsFile(filepath.Join(t.TempDir(), "absent.json"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to read decisions file")
}

func TestReadDecisionsFile_BadJSON(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bad.json")
	require.NoError(t, os.WriteFile(path, []byte("{not json"), 0600))

	_, err := readDecisionsFile(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to parse decisions file")
}

func TestLoadOptions(t *testing.T) {
	viper.Reset()
	t.Cleanup(viper.Reset)

	viper.Set("import.date_tolerance_days", 5)
	viper.Set("import.amount_tolerance", "0.05")
	viper.Set("import.similarity_threshold", 0.75)

	opts, err := loadOptions()
	require.NoError(t, err)

	assert.Equal(t, 5, opts.DateToleranceDays)
	assert.True(t, opts.AmountTolerance.Equal(decimal.RequireFromString("0.05")))
	assert.Equal(t, 0.75, opts.DescriptionSimilarityThreshold)
}

func TestLoadOptions_BadTolerance(t *testing.T) {
	viper.Reset()
	t.Cleanup(viper.Reset)

	viper.Set("import.amount_tolerance", "a penny")

	_, err := loadOptions()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid import.amount_tolerance")
}
