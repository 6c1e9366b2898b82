package server

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValidator(t *testing.T) {
	t.Parallel()

	v, err := NewValidator()
	require.NoError(t, err)

	tests := []struct {
		name  string
		raw   string
		valid bool
	}{
		{"reset with seed", `{"type":"reset","data":{"seed":12}}`, true},
		{"reset without data", `{"type":"reset","requestId":"a"}`, true},
		{"step by name", `{"type":"step","data":{"action":"use-glass"}}`, true},
		{"step by index", `{"type":"step","data":{"index":3}}`, true},
		{"observe", `{"type":"observe","timestamp":"2026-01-01T00:00:00Z"}`, true},
		{"unknown type passes", `{"type":"deal"}`, true},
		{"not json", `{"type":`, false},
		{"missing type", `{"data":{}}`, false},
		{"empty type", `{"type":""}`, false},
		{"extra envelope field", `{"type":"observe","player":"x"}`, false},
		{"fractional seed", `{"type":"reset","data":{"seed":1.5}}`, false},
		{"step without data", `{"type":"step"}`, false},
		{"empty step", `{"type":"step","data":{}}`, false},
		{"step with stray field", `{"type":"step","data":{"action":"use-saw","amount":3}}`, false},
		{"action not a string", `{"type":"step","data":{"action":7}}`, false},
		{"episode for a game", `{"type":"episode","data":{"gameId":"01h5n0et5q6mt3v7ms1234abcd"}}`, true},
		{"episode with stray field", `{"type":"episode","data":{"seed":1}}`, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := v.Validate([]byte(tt.raw))
			if tt.valid {
				assert.NoError(t, err)
			} else {
				assert.Error(t, err)
			}
		})
	}
}
