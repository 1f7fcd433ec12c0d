package grammar

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRealize(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		key      string
		expected []string
	}{
		{"C major", "I@1,IV@1,V7@2", "C", []string{"C@1", "F@1", "G7@2"}},
		{"flat spelling in flat keys", "III@1", "Gb", []string{"Bb@1"}},
		{"accidentals", "bII@1,#IVm7@1", "Db", []string{"D@1", "Gm7@1"}},
		{"sharp keys", "III,VII°7", "E", []string{"G#@1", "D#°7@1"}},
		{"F uses flats", "IV,bVII7", "F", []string{"Bb@1", "Eb7@1"}},
		{"unicode accidentals", "I,V7", "B♭", []string{"Bb@1", "F7@1"}},
		{"lowercase key", "IIm7,V7,I", "g", []string{"Am7@1", "D7@1", "G@1"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			realized, err := Realize(mustParse(t, tt.input), tt.key, true)
			require.NoError(t, err)
			assert.Equal(t, tt.expected, realized)
		})
	}
}

func TestRealize_HidesUnitDurations(t *testing.T) {
	realized, err := Realize(mustParse(t, "I,V7@2"), "C", false)
	require.NoError(t, err)
	assert.Equal(t, []string{"C", "G7@2"}, realized)
}

func TestParseKey_Invalid(t *testing.T) {
	for _, key := range []string{"H", "", "C##", "Cm"} {
		t.Run(key, func(t *testing.T) {
			_, err := ParseKey(key)
			assert.ErrorIs(t, err, ErrUnknownKey)
			assert.Equal(t, "unknown_key", Kind(err))
		})
	}
}
