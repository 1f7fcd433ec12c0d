package grammar

import (
	"slices"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// matchesOf runs a single rule and returns each match's replacement and
// result tokens.
func ruleByID(id RuleID) (Rule, bool) {
	for _, r := range Rules() {
		if r.ID() == id {
			return r, true
		}
	}
	return nil, false
}

func matchesOf(t *testing.T, id RuleID, input string) []Suggestion {
	t.Helper()
	p, err := Parse(input)
	require.NoError(t, err)

	rule, ok := ruleByID(id)
	require.True(t, ok)

	var out []Suggestion
	for m := range rule.Match(p) {
		assert.Equal(t, id, m.Rule)
		out = append(out, newSuggestion(p, m))
	}
	return out
}

func resultsOf(suggestions []Suggestion) [][]string {
	out := make([][]string, len(suggestions))
	for i, s := range suggestions {
		out[i] = s.Result.FullTokens()
	}
	return out
}

func TestRule1_SplitsIntoDominantSeventh(t *testing.T) {
	got := matchesOf(t, Rule1, "I@4")
	require.Len(t, got, 1)
	assert.Equal(t, []string{"I@2", "I7@2"}, got[0].Result.FullTokens())
	assert.Equal(t, Span{0, 1}, got[0].Span)
	assert.Equal(t, Span{0, 2}, got[0].ReplacementSpan)

	got = matchesOf(t, Rule1, "IIm7@3")
	require.Len(t, got, 1)
	assert.Equal(t, []string{"IIm@3/2", "IIm7@3/2"}, got[0].Result.FullTokens())

	assert.Empty(t, matchesOf(t, Rule1, "#I°7@2"))
}

func TestRule1_PreservesTotalDuration(t *testing.T) {
	for _, input := range []string{"I@4", "V7@3", "IIm@1/3", "bVIIm7@5/7"} {
		p, err := Parse(input)
		require.NoError(t, err)
		want, err := p.Total()
		require.NoError(t, err)
		for _, s := range matchesOf(t, Rule1, input) {
			got, err := s.Result.Total()
			require.NoError(t, err)
			assert.Equal(t, want, got, input)
		}
	}
}

func TestSplitRules_SkipUnhalvableDurations(t *testing.T) {
	assert.Empty(t, matchesOf(t, Rule1, "I@1/2147483647"))
	assert.Empty(t, matchesOf(t, Rule2, "I@1/2147483647"))

	assert.Empty(t, matchesOf(t, Rule1, "I@1/1073741824"))

	got := matchesOf(t, Rule1, "I@1/1073741823")
	require.Len(t, got, 1)
	assert.Equal(t, []string{"I@1/2147483646", "I7@1/2147483646"}, got[0].Result.FullTokens())
}

func TestRule2_SplitsIntoSubdominant(t *testing.T) {
	got := matchesOf(t, Rule2, "I@3")
	require.Len(t, got, 1)
	assert.Equal(t, []string{"I@3/2", "IV@3/2"}, got[0].Result.FullTokens())

	got = matchesOf(t, Rule2, "IIm7@2")
	require.Len(t, got, 1)
	assert.Equal(t, []string{"IIm7@1", "Vm@1"}, got[0].Result.FullTokens())

	got = matchesOf(t, Rule2, "I,V7")
	assert.Equal(t, [][]string{
		{"I@1/2", "IV@1/2", "V7@1"},
		{"I@1", "V7@1/2", "I@1/2"},
	}, resultsOf(got))
}

func TestRule3a_SecondaryDominant(t *testing.T) {
	got := matchesOf(t, Rule3a, "ii@2,V7@2")
	assert.Equal(t, [][]string{
		{"II7@2", "V7@2"},
		{"IIm7@2", "V7@2"},
	}, resultsOf(got))
	for _, s := range got {
		assert.Equal(t, Span{0, 2}, s.Span)
		assert.Equal(t, "V7@2", s.Result[1].FullToken(), "the dominant itself is untouched")
	}

	got = matchesOf(t, Rule3a, "I@3,V7")
	assert.Equal(t, []string{"II7@3", "V7"}, got[0].Replacement.Tokens())
	assert.Equal(t, []string{"IIm7@3", "V7"}, got[1].Replacement.Tokens())

	assert.Empty(t, matchesOf(t, Rule3a, "I7,V7"), "w must be plain")
	assert.Empty(t, matchesOf(t, Rule3a, "I,Vm7"), "x must be a major dominant seventh")
}

func TestRule3b_DominantOfMinorSeventh(t *testing.T) {
	got := matchesOf(t, Rule3b, "I@2,IIm7@2")
	require.Len(t, got, 1)
	assert.Equal(t, []string{"VI7@2", "IIm7@2"}, got[0].Result.FullTokens())

	assert.Empty(t, matchesOf(t, Rule3b, "I,V7"))
	assert.Empty(t, matchesOf(t, Rule3b, "I°7,IIm7"))
}

func TestRule4_TritoneSubstitution(t *testing.T) {
	got := matchesOf(t, Rule4, "V7@2,I@4")
	require.Len(t, got, 1)
	assert.Equal(t, []string{"bII7@2", "I@4"}, got[0].Result.FullTokens())

	got = matchesOf(t, Rule4, "II7,Vm")
	require.Len(t, got, 1)
	assert.Equal(t, []string{"bVIm7@1", "Vm@1"}, got[0].Result.FullTokens())

	assert.Empty(t, matchesOf(t, Rule4, "IV7,I"), "IV is not the dominant of I")
	assert.Empty(t, matchesOf(t, Rule4, "Vm7,I"), "minor dominant sevenths do not trigger")
	assert.Empty(t, matchesOf(t, Rule4, "V7,I°7"))
}

func TestRule5_DiatonicAscent(t *testing.T) {
	got := matchesOf(t, Rule5, "I@1,I@1,I@1")
	require.Len(t, got, 1)
	assert.Equal(t, []string{"I@1", "IIm@1", "IIIm@1"}, got[0].Result.FullTokens())

	got = matchesOf(t, Rule5, "IV@2,IV@2,IV@2")
	require.Len(t, got, 1)
	assert.Equal(t, []string{"IV@2", "Vm@2", "VIm@2"}, got[0].Result.FullTokens())

	for _, input := range []string{"I,I,Im", "I,I7,I", "Im,Im,Im", "I,I,II"} {
		assert.Empty(t, matchesOf(t, Rule5, input), input)
	}

	got = matchesOf(t, Rule5, "I,I,I,I")
	assert.Equal(t, [][]string{
		{"I@1", "IIm@1", "IIIm@1", "I@1"},
		{"I@1", "I@1", "IIm@1", "IIIm@1"},
	}, resultsOf(got))
}

func TestRule6_PassingDiminished(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected []string
	}{
		{"supertonic minor", "I@2,I@2,IIm7@2", []string{"I@2", "#I°7@2", "IIm7@2"}},
		{"supertonic minor triad", "I@2,I@2,IIm@2", []string{"I@2", "#I°7@2", "IIm@2"}},
		{"leading tone", "I@2,I@2,VII@2", []string{"I@2", "#I°7@2", "VII@2"}},
		{"dominant", "I@2,I@2,V7@2", []string{"I@2", "#I°7@2", "V7@2"}},
		{"minor tonic", "Im@4,Im@2,V7", []string{"Im@4", "#I°7@2", "V7@1"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := matchesOf(t, Rule6, tt.input)
			require.Len(t, got, 1)
			assert.Equal(t, tt.expected, got[0].Replacement.FullTokens())
			assert.Equal(t, Span{0, 3}, got[0].Span)
		})
	}

	for _, input := range []string{"I,I,II", "I,IV,V7", "I7,I7,V7", "I,I,V°7", "I,I,IV"} {
		assert.Empty(t, matchesOf(t, Rule6, input), input)
	}
}

func TestRules_AreRestartableAndPure(t *testing.T) {
	p, err := Parse("I@2,I@2,I@2,V7@2,I@4")
	require.NoError(t, err)
	before := p.Key()

	for _, rule := range Rules() {
		seq := rule.Match(p)
		first := slices.Collect(seq)
		second := slices.Collect(seq)
		assert.Equal(t, len(first), len(second), "rule %s", rule.ID())
		for i := range first {
			assert.True(t, first[i].Replacement.Equal(second[i].Replacement))
		}

		for range seq {
			break
		}
	}
	assert.Equal(t, before, p.Key())
}

func TestRules_RegistryOrder(t *testing.T) {
	var ids []string
	for _, r := range Rules() {
		ids = append(ids, r.ID().String())
		assert.NotEmpty(t, r.Description())
	}
	assert.Equal(t, []string{"1", "2", "3a", "3b", "4", "5", "6"}, ids)

	_, ok := ruleByID(RuleID(99))
	assert.False(t, ok)
	assert.Equal(t, "?", RuleID(99).String())
}
