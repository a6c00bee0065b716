package common

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestParseUint64(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		want    uint64
		wantErr bool
	}{
		{
			name:  "decimal confirmation depth",
			input: "5",
			want:  5,
		},
		{
			name:  "zero buffer slack",
			input: "0",
			want:  0,
		},
		{
			name:  "hex block height",
			input: "0x15f8d22",
			want:  0x15f8d22,
		},
		{
			name:  "uppercase hex digits",
			input: "0xDEADBEEF",
			want:  0xDEADBEEF,
		},
		{
			name:    "spelled-out number",
			input:   "five",
			wantErr: true,
		},
		{
			name:    "negative value",
			input:   "-3",
			wantErr: true,
		},
		{
			name:    "hex prefix without digits",
			input:   "0x",
			wantErr: true,
		},
		{
			name:    "empty string",
			input:   "",
			wantErr: true,
		},
		{
			name:    "overflows uint64",
			input:   "18446744073709551616",
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseUint64(tt.input)
			if tt.wantErr {
				require.Error(t, err)
				return
			}
			require.NoError(t, err)
			require.Equal(t, tt.want, got)
		})
	}
}

func TestToLowerWithTrim(t *testing.T) {
	tests := []struct {
		input string
		want  string
	}{
		{"  Ledger ", "ledger"},
		{"REORG-HANDLER", "reorg-handler"},
		{"watcher", "watcher"},
		{"\tInfo\n", "info"},
		{"", ""},
	}

	for _, tt := range tests {
		require.Equal(t, tt.want, ToLowerWithTrim(tt.input))
	}
}
