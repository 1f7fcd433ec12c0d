package grammar

import (
	"context"
	"fmt"
	"slices"
	"strings"

	"golang.org/x/sync/errgroup"
)

// DefaultDepth is the number of generations Expand explores when callers
// have no preference.
const DefaultDepth = 1

// Suggestion is one deduplicated rewrite of a progression.
type Suggestion struct {
	Rule            RuleID
	Span            Span
	ReplacementSpan Span
	Before          Progression
	Replacement     Progression
	Result          Progression
	// Next holds the following generation when Expand ran with depth > 1.
	Next []Suggestion
}

// Summary is a one-line human description, slots counted from 1.
func (s Suggestion) Summary() string {
	return fmt.Sprintf("Rule %s on slots %d-%d", s.Rule, s.Span.Start+1, s.Span.End)
}

// MarkedResult renders the result with the replacement span in brackets,
// e.g. "I / [II7@3 / V7]".
func (s Suggestion) MarkedResult() string {
	tokens := s.Result.Tokens()
	start, end := s.ReplacementSpan.Start, s.ReplacementSpan.End
	if start >= 0 && start < end && end <= len(tokens) {
		tokens[start] = "[" + tokens[start]
		tokens[end-1] += "]"
	}
	return strings.Join(tokens, " / ")
}

func newSuggestion(p Progression, m Match) Suggestion {
	return Suggestion{
		Rule:            m.Rule,
		Span:            m.Span,
		ReplacementSpan: Span{m.Span.Start, m.Span.Start + len(m.Replacement)},
		Before:          p.Slice(m.Span.Start, m.Span.End),
		Replacement:     m.Replacement,
		Result:          p.Replace(m.Span.Start, m.Span.End, m.Replacement),
	}
}

func checkInput(p Progression, depth int) error {
	if len(p) == 0 {
		return ErrEmptyProgression
	}
	if depth < 1 {
		return fmt.Errorf("%w: %d (must be at least 1)", ErrInvalidDepth, depth)
	}
	return nil
}

// Expand runs every rule over p and returns the distinct results in rule
// order, then leftmost span. With depth > 1 each suggestion's Next is the
// expansion of its result.
func Expand(p Progression, depth int) ([]Suggestion, error) {
	if err := checkInput(p, depth); err != nil {
		return nil, err
	}

	matches := make([][]Match, len(registry))
	for i, r := range registry {
		matches[i] = slices.Collect(r.Match(p))
	}
	return merge(p, matches, depth, func(next Progression) ([]Suggestion, error) {
		return Expand(next, depth-1)
	})
}

// ExpandParallel is Expand with each rule, and each next generation,
// evaluated on its own goroutine. The output is identical to Expand.
func ExpandParallel(ctx context.Context, p Progression, depth int) ([]Suggestion, error) {
	if err := checkInput(p, depth); err != nil {
		return nil, err
	}

	matches := make([][]Match, len(registry))
	rules, rctx := errgroup.WithContext(ctx)
	for i, r := range registry {
		rules.Go(func() error {
			if err := rctx.Err(); err != nil {
				return err
			}
			matches[i] = slices.Collect(r.Match(p))
			return nil
		})
	}
	if err := rules.Wait(); err != nil {
		return nil, err
	}

	suggestions, err := merge(p, matches, 1, nil)
	if err != nil || depth == 1 {
		return suggestions, err
	}

	g, gctx := errgroup.WithContext(ctx)
	for i := range suggestions {
		g.Go(func() error {
			next, err := ExpandParallel(gctx, suggestions[i].Result, depth-1)
			if err != nil {
				return err
			}
			suggestions[i].Next = next
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return suggestions, nil
}

// merge dedups matches by result, keeping the first seen in registry order.
func merge(p Progression, matches [][]Match, depth int, expandNext func(Progression) ([]Suggestion, error)) ([]Suggestion, error) {
	seen := make(map[string]struct{})
	var out []Suggestion
	for _, ruleMatches := range matches {
		for _, m := range ruleMatches {
			s := newSuggestion(p, m)
			key := s.Result.Key()
			if _, dup := seen[key]; dup {
				continue
			}
			seen[key] = struct{}{}
			out = append(out, s)
		}
	}

	if depth > 1 && expandNext != nil {
		for i := range out {
			next, err := expandNext(out[i].Result)
			if err != nil {
				return nil, err
			}
			out[i].Next = next
		}
	}
	return out, nil
}

// Level is the set of progressions first reached after Depth generations.
type Level struct {
	Depth        int
	Progressions []Progression
}

// Explore walks generations breadth-first from p. Level 0 holds p itself;
// level k holds every progression first reached at generation k, sorted by
// token sequence. Progressions already seen at an earlier level are not
// repeated.
func Explore(p Progression, depth int) ([]Level, error) {
	if len(p) == 0 {
		return nil, ErrEmptyProgression
	}
	if depth < 0 {
		return nil, fmt.Errorf("%w: %d (must not be negative)", ErrInvalidDepth, depth)
	}

	levels := []Level{{Depth: 0, Progressions: []Progression{p}}}
	seen := map[string]struct{}{p.Key(): {}}
	frontier := []Progression{p}

	for level := 1; level <= depth; level++ {
		var next []Progression
		for _, current := range frontier {
			suggestions, err := Expand(current, 1)
			if err != nil {
				return nil, err
			}
			for _, s := range suggestions {
				key := s.Result.Key()
				if _, ok := seen[key]; ok {
					continue
				}
				seen[key] = struct{}{}
				next = append(next, s.Result)
			}
		}
		slices.SortFunc(next, func(a, b Progression) int {
			return slices.Compare(a.Tokens(), b.Tokens())
		})
		levels = append(levels, Level{Depth: level, Progressions: next})
		frontier = next
	}
	return levels, nil
}
