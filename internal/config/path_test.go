package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExpandPath(t *testing.T) {
	home, err := os.UserHomeDir()
	require.NoError(t, err)

	t.Setenv("LEDGERSIFT_TEST_DIR", "/var/data")

	tests := []struct {
		name  string
		input string
		want  string
	}{
		{name: "empty", input: "", want: ""},
		{name: "plain path untouched", input: "/etc/ledger.db", want: "/etc/ledger.db"},
		{name: "tilde alone", input: "~", want: home},
		{name: "tilde prefix", input: "~/ledger.db", want: filepath.Join(home, "ledger.db")},
		{name: "env var", input: "$LEDGERSIFT_TEST_DIR/ledger.db", want: "/var/data/ledger.db"},
		{name: "home env var", input: "$HOME/ledger.db", want: filepath.Join(home, "ledger.db")},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ExpandPath(tt.input))
		})
	}
}
