package grammar

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func mustParse(t *testing.T, input string) Progression {
	t.Helper()
	p, err := Parse(input)
	require.NoError(t, err)
	return p
}

func TestExpand_SingleChord(t *testing.T) {
	suggestions, err := Expand(mustParse(t, "I@4"), DefaultDepth)
	require.NoError(t, err)

	assert.Equal(t, [][]string{
		{"I@2", "I7@2"},
		{"I@2", "IV@2"},
	}, resultsOf(suggestions))
	assert.Equal(t, Rule1, suggestions[0].Rule)
	assert.Equal(t, Rule2, suggestions[1].Rule)
	assert.Equal(t, "Rule 1 on slots 1-1", suggestions[0].Summary())
	assert.Nil(t, suggestions[0].Next)
}

func TestExpand_OrderIsRuleThenSpan(t *testing.T) {
	suggestions, err := Expand(mustParse(t, "ii@2,V7@2"), DefaultDepth)
	require.NoError(t, err)

	assert.Equal(t, [][]string{
		{"IIm@1", "IIm7@1", "V7@2"},
		{"IIm@2", "V@1", "V7@1"},
		{"IIm@1", "Vm@1", "V7@2"},
		{"IIm@2", "V7@1", "I@1"},
		{"II7@2", "V7@2"},
		{"IIm7@2", "V7@2"},
	}, resultsOf(suggestions))

	var rules []RuleID
	for _, s := range suggestions {
		rules = append(rules, s.Rule)
	}
	assert.Equal(t, []RuleID{Rule1, Rule1, Rule2, Rule2, Rule3a, Rule3a}, rules)
}

func TestExpand_SuggestionFields(t *testing.T) {
	suggestions, err := Expand(mustParse(t, "I@2,I@2,V7@2,I@4"), DefaultDepth)
	require.NoError(t, err)

	var rule6 *Suggestion
	for i := range suggestions {
		if suggestions[i].Rule == Rule6 {
			rule6 = &suggestions[i]
		}
	}
	require.NotNil(t, rule6)
	assert.Equal(t, Span{0, 3}, rule6.Span)
	assert.Equal(t, Span{0, 3}, rule6.ReplacementSpan)
	assert.Equal(t, []string{"I@2", "I@2", "V7@2"}, rule6.Before.FullTokens())
	assert.Equal(t, []string{"I@2", "#I°7@2", "V7@2", "I@4"}, rule6.Result.FullTokens())
	assert.Equal(t, "Rule 6 on slots 1-3", rule6.Summary())
	assert.Equal(t, "[I@2 / #I°7@2 / V7@2] / I@4", rule6.MarkedResult())
}

func TestExpand_NeverReturnsDuplicateResults(t *testing.T) {
	inputs := []string{
		"I@4",
		"I,I,I,I",
		"I@2,I@2,V7@2,I@4",
		"ii@2,V7@2,I@4",
		"I,VIm,IIm7,V7,I,I,IIm,V7",
		"#I°7,IIm7,V7,bII7,I",
	}

	for _, input := range inputs {
		t.Run(input, func(t *testing.T) {
			suggestions, err := Expand(mustParse(t, input), 2)
			require.NoError(t, err)
			assertUnique(t, suggestions)
			for _, s := range suggestions {
				assertUnique(t, s.Next)
			}
		})
	}
}

func assertUnique(t *testing.T, suggestions []Suggestion) {
	t.Helper()
	seen := map[string]bool{}
	for _, s := range suggestions {
		key := s.Result.Key()
		assert.False(t, seen[key], "duplicate result %s", key)
		seen[key] = true
	}
}

func TestMerge_KeepsFirstDuplicate(t *testing.T) {
	p := mustParse(t, "I@2")
	same := mustParse(t, "I@1,IV@1")
	other := mustParse(t, "I@1,I7@1")

	out, err := merge(p, [][]Match{
		{{Rule: Rule1, Span: Span{0, 1}, Replacement: other}},
		{{Rule: Rule2, Span: Span{0, 1}, Replacement: same}},
		{{Rule: Rule5, Span: Span{0, 1}, Replacement: same}},
	}, 1, nil)
	require.NoError(t, err)

	require.Len(t, out, 2)
	assert.Equal(t, Rule1, out[0].Rule)
	assert.Equal(t, Rule2, out[1].Rule)
}

func TestExpand_Errors(t *testing.T) {
	_, err := Expand(nil, DefaultDepth)
	assert.ErrorIs(t, err, ErrEmptyProgression)
	assert.Equal(t, "empty_progression", Kind(err))

	_, err = Expand(Progression{}, 3)
	assert.ErrorIs(t, err, ErrEmptyProgression)

	_, err = Expand(mustParse(t, "I"), 0)
	assert.ErrorIs(t, err, ErrInvalidDepth)
}

func TestExpand_NoMatchIsNotAnError(t *testing.T) {
	suggestions, err := Expand(mustParse(t, "#I°7,#IV°7"), DefaultDepth)
	require.NoError(t, err)
	assert.Empty(t, suggestions)
}

func TestExpand_DepthTwo(t *testing.T) {
	suggestions, err := Expand(mustParse(t, "I@2"), 2)
	require.NoError(t, err)
	require.Len(t, suggestions, 2)

	first := suggestions[0]
	assert.Equal(t, []string{"I@1", "I7@1"}, first.Result.FullTokens())
	require.NotEmpty(t, first.Next)
	for _, child := range first.Next {
		assert.Nil(t, child.Next)
	}

	again, err := Expand(first.Result, 1)
	require.NoError(t, err)
	assert.Equal(t, resultsOf(again), resultsOf(first.Next))
}

func TestExpandParallel_MatchesSequential(t *testing.T) {
	for _, input := range []string{"I@4", "I@2,I@2,V7@2,I@4", "I,VIm,IIm7,V7,I,I,IIm,V7"} {
		t.Run(input, func(t *testing.T) {
			p := mustParse(t, input)
			sequential, err := Expand(p, 2)
			require.NoError(t, err)

			parallel, err := ExpandParallel(context.Background(), p, 2)
			require.NoError(t, err)

			require.Equal(t, len(sequential), len(parallel))
			for i := range sequential {
				assert.Equal(t, sequential[i].Rule, parallel[i].Rule)
				assert.Equal(t, sequential[i].Span, parallel[i].Span)
				assert.True(t, sequential[i].Result.Equal(parallel[i].Result))
				assert.Equal(t, resultsOf(sequential[i].Next), resultsOf(parallel[i].Next))
			}
		})
	}

	_, err := ExpandParallel(context.Background(), nil, 1)
	assert.ErrorIs(t, err, ErrEmptyProgression)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err = ExpandParallel(ctx, mustParse(t, "I"), 1)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestExplore_Levels(t *testing.T) {
	levels, err := Explore(mustParse(t, "I@2"), 2)
	require.NoError(t, err)
	require.Len(t, levels, 3)

	assert.Equal(t, 0, levels[0].Depth)
	require.Len(t, levels[0].Progressions, 1)
	assert.Equal(t, []string{"I@2"}, levels[0].Progressions[0].Tokens())

	var first [][]string
	for _, p := range levels[1].Progressions {
		first = append(first, p.Tokens())
	}
	assert.Equal(t, [][]string{{"I", "I7"}, {"I", "IV"}}, first)
	assert.NotEmpty(t, levels[2].Progressions)
}

func TestExplore_LevelsAreDisjointAndUnique(t *testing.T) {
	levels, err := Explore(mustParse(t, "I@2"), 3)
	require.NoError(t, err)

	seen := map[string]int{}
	for _, level := range levels {
		for _, p := range level.Progressions {
			prev, dup := seen[p.Key()]
			assert.False(t, dup, "%s first seen at level %d, repeated at %d", p.Key(), prev, level.Depth)
			seen[p.Key()] = level.Depth
		}
	}
}

func TestExplore_Errors(t *testing.T) {
	levels, err := Explore(mustParse(t, "I"), 0)
	require.NoError(t, err)
	assert.Len(t, levels, 1)

	_, err = Explore(mustParse(t, "I"), -1)
	assert.ErrorIs(t, err, ErrInvalidDepth)

	_, err = Explore(nil, 1)
	assert.ErrorIs(t, err, ErrEmptyProgression)
}
