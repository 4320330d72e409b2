package notes_test

import (
	"testing"

	"github.com/aretw0/patchbay/pkg/notes"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParse(t *testing.T) {
	tests := []struct {
		note string
		want float64
	}{
		{"a4", 0},
		{"A4", 0},
		{"a5", 12.0 / 120},
		{"a3", -12.0 / 120},
		{"c4", -9.0 / 120},
		{"c#4", -8.0 / 120},
		{"b4", 2.0 / 120},
		{"g#2", (-2 + 1 - 24) / 120.0},
	}
	for _, tt := range tests {
		t.Run(tt.note, func(t *testing.T) {
			got, err := notes.Parse(tt.note)
			require.NoError(t, err)
			assert.InDelta(t, tt.want, got, 1e-12)
		})
	}
}

func TestParse_Rejects(t *testing.T) {
	for _, s := range []string{"", "h4", "a", "4", "a#", "ab4", "a4 ", "a-1"} {
		_, err := notes.Parse(s)
		assert.ErrorIs(t, err, notes.ErrNotANote, s)
	}
}

func TestParseValue(t *testing.T) {
	v, isNote, err := notes.ParseValue(" e4 ")
	require.NoError(t, err)
	assert.True(t, isNote)
	assert.InDelta(t, -5.0/120, v, 1e-12)

	v, isNote, err = notes.ParseValue("0.25")
	require.NoError(t, err)
	assert.False(t, isNote)
	assert.Equal(t, 0.25, v)

	_, _, err = notes.ParseValue("loud")
	assert.Error(t, err)
}
