package common

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"
)

// backoffBlock mirrors the shape of the watcher retry section so the three
// config formats exercise Duration exactly the way the loader does.
type backoffBlock struct {
	InitialBackoff Duration `yaml:"initial_backoff" json:"initial_backoff" toml:"initial_backoff"`
	MaxBackoff     Duration `yaml:"max_backoff" json:"max_backoff" toml:"max_backoff"`
}

func TestDuration_UnmarshalText(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		want    time.Duration
		wantErr bool
	}{
		{
			name:  "seconds",
			input: "30s",
			want:  30 * time.Second,
		},
		{
			name:  "milliseconds",
			input: "250ms",
			want:  250 * time.Millisecond,
		},
		{
			name:  "compound",
			input: "1m30s",
			want:  90 * time.Second,
		},
		{
			name:  "fractional",
			input: "1.5s",
			want:  1500 * time.Millisecond,
		},
		{
			name:    "bare number",
			input:   "30",
			wantErr: true,
		},
		{
			name:    "unknown unit",
			input:   "5 blocks",
			wantErr: true,
		},
		{
			name:    "empty",
			input:   "",
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var d Duration
			err := d.UnmarshalText([]byte(tt.input))
			if tt.wantErr {
				require.Error(t, err)
				require.Contains(t, err.Error(), "invalid duration")
				return
			}
			require.NoError(t, err)
			require.Equal(t, tt.want, d.Duration)
		})
	}
}

func TestDuration_YAMLRetryBlock(t *testing.T) {
	input := `
initial_backoff: "1s"
max_backoff: "30s"
`

	var block backoffBlock
	require.NoError(t, yaml.Unmarshal([]byte(input), &block))
	require.Equal(t, time.Second, block.InitialBackoff.Duration)
	require.Equal(t, 30*time.Second, block.MaxBackoff.Duration)
}

func TestDuration_YAMLRejectsMapping(t *testing.T) {
	var d Duration
	err := yaml.Unmarshal([]byte("seconds: 30"), &d)
	require.Error(t, err)
}

func TestDuration_JSONRetryBlock(t *testing.T) {
	input := `{"initial_backoff": "500ms", "max_backoff": "1m"}`

	var block backoffBlock
	require.NoError(t, json.Unmarshal([]byte(input), &block))
	require.Equal(t, 500*time.Millisecond, block.InitialBackoff.Duration)
	require.Equal(t, time.Minute, block.MaxBackoff.Duration)
}

func TestDuration_JSONRejectsNumber(t *testing.T) {
	var d Duration
	err := json.Unmarshal([]byte("1000000000"), &d)
	require.Error(t, err)
	require.Contains(t, err.Error(), "duration must be a string")
}

func TestDuration_TOMLRetryBlock(t *testing.T) {
	input := `
initial_backoff = "2s"
max_backoff = "1h30m"
`

	var block backoffBlock
	require.NoError(t, toml.Unmarshal([]byte(input), &block))
	require.Equal(t, 2*time.Second, block.InitialBackoff.Duration)
	require.Equal(t, 90*time.Minute, block.MaxBackoff.Duration)
}

func TestDuration_MarshalRoundTrip(t *testing.T) {
	original := backoffBlock{
		InitialBackoff: NewDuration(1500 * time.Millisecond),
		MaxBackoff:     NewDuration(30 * time.Second),
	}

	data, err := json.Marshal(original)
	require.NoError(t, err)
	require.JSONEq(t, `{"initial_backoff": "1.5s", "max_backoff": "30s"}`, string(data))

	var decoded backoffBlock
	require.NoError(t, json.Unmarshal(data, &decoded))
	require.Equal(t, original, decoded)
}

func TestDuration_YAMLMarshal(t *testing.T) {
	out, err := yaml.Marshal(NewDuration(45 * time.Second))
	require.NoError(t, err)
	require.Equal(t, "45s\n", string(out))
}

func TestDuration_JSONSchema(t *testing.T) {
	schema := Duration{}.JSONSchema()

	require.Equal(t, "string", schema.Type)
	require.Equal(t, "Duration", schema.Title)
	require.NotEmpty(t, schema.Examples)
}
