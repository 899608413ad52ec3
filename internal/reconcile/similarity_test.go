package reconcile

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDescriptionSimilarity(t *testing.T) {
	tests := []struct {
		name string
		a    string
		b    string
		want float64
	}{
		{name: "identical strings", a: "Restaurant Purchase", b: "Restaurant Purchase", want: 1.0},
		{name: "identical ignoring case and padding", a: "  STARBUCKS STORE  ", b: "starbucks store", want: 1.0},
		{name: "both empty", a: "", b: "", want: 0},
		{name: "one empty", a: "Groceries", b: "", want: 0},
		{name: "whitespace only counts as empty", a: "   ", b: "Groceries", want: 0},
		{name: "no shared words", a: "Rent Payment", b: "Coffee Shop", want: 0},
		{name: "half overlap", a: "whole foods", b: "whole paycheck", want: 1.0 / 3.0},
		{name: "subset", a: "amazon", b: "amazon marketplace", want: 0.5},
		{name: "duplicate words collapse", a: "uber uber trip", b: "uber trip", want: 1.0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.InDelta(t, tt.want, descriptionSimilarity(tt.a, tt.b), 1e-9)
			// Symmetry
			assert.InDelta(t, tt.want, descriptionSimilarity(tt.b, tt.a), 1e-9)
		})
	}
}
