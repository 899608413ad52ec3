package banksync

import (
	"context"
	"time"

	"github.com/ledgersift/ledgersift/internal/model"
	"github.com/ledgersift/ledgersift/internal/service"
)

// MockClient is a mock implementation of CandidateFetcher for testing.
type MockClient struct {
	// Functions that can be set by tests to control behavior
	GetCandidatesFn func(ctx context.Context, startDate, endDate time.Time) ([]model.ImportCandidate, error)
	GetAccountsFn   func(ctx context.Context) ([]string, error)

	// Call tracking
	GetCandidatesCalls []GetCandidatesCall
	GetAccountsCalls   int
}

// GetCandidatesCall records the parameters of a GetCandidates call.
type GetCandidatesCall struct {
	StartDate time.Time
	EndDate   time.Time
}

// NewMockClient creates a new mock bank-sync client.
func NewMockClient() *MockClient {
	return &MockClient{
		GetCandidatesCalls: []GetCandidatesCall{},
	}
}

// GetCandidates implements CandidateFetcher.GetCandidates.
func (m *MockClient) GetCandidates(ctx context.Context, startDate, endDate time.Time) ([]model.ImportCandidate, error) {
	m.GetCandidatesCalls = append(m.GetCandidatesCalls, GetCandidatesCall{
		StartDate: startDate,
		EndDate:   endDate,
	})

	if m.GetCandidatesFn != nil {
		return m.GetCandidatesFn(ctx, startDate, endDate)
	}
	return []model.ImportCandidate{}, nil
}

// GetAccounts implements CandidateFetcher.GetAccounts.
func (m *MockClient) GetAccounts(ctx context.Context) ([]string, error) {
	m.GetAccountsCalls++

	if m.GetAccountsFn != nil {
		return m.GetAccountsFn(ctx)
	}
	return []string{}, nil
}

// Reset clears all call tracking.
func (m *MockClient) Reset() {
	m.GetCandidatesCalls = []GetCandidatesCall{}
	m.GetAccountsCalls = 0
}

// Ensure MockClient implements CandidateFetcher interface.
var _ service.CandidateFetcher = (*MockClient)(nil)
