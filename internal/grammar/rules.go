package grammar

import (
	"encoding/json"
	"iter"
)

// RuleID identifies a rewrite rule. Values sort in registry order.
type RuleID int

const (
	Rule1 RuleID = iota + 1
	Rule2
	Rule3a
	Rule3b
	Rule4
	Rule5
	Rule6
)

var ruleLabels = map[RuleID]string{
	Rule1: "1", Rule2: "2", Rule3a: "3a", Rule3b: "3b", Rule4: "4", Rule5: "5", Rule6: "6",
}

func (id RuleID) String() string {
	if label, ok := ruleLabels[id]; ok {
		return label
	}
	return "?"
}

// MarshalJSON writes the rule label, e.g. "3a".
func (id RuleID) MarshalJSON() ([]byte, error) {
	return json.Marshal(id.String())
}

// Span is a half-open index range [Start, End).
type Span struct {
	Start int
	End   int
}

func (s Span) Len() int { return s.End - s.Start }

// MarshalJSON writes [start, end].
func (s Span) MarshalJSON() ([]byte, error) {
	return json.Marshal([2]int{s.Start, s.End})
}

// Match is one rewrite found by a rule: Span of the source is replaced by
// Replacement.
type Match struct {
	Rule        RuleID
	Span        Span
	Replacement Progression
}

// Rule finds every place its trigger shape occurs. The returned sequence
// can be iterated any number of times and never modifies p.
type Rule interface {
	ID() RuleID
	Description() string
	Match(p Progression) iter.Seq[Match]
}

var registry = []Rule{
	splitDominant{},
	splitSubdominant{},
	secondaryDominant{},
	secondaryDominantOfMinor{},
	tritoneSubstitution{},
	diatonicAscent{},
	passingDiminished{},
}

// Rules returns the registered rules in id order.
func Rules() []Rule {
	out := make([]Rule, len(registry))
	copy(out, registry)
	return out
}

// window yields every start index i where p[i:i+size] exists, stopping
// early when the consumer does.
func window(p Progression, size int, fn func(i int, yield func(Match) bool) bool) iter.Seq[Match] {
	return func(yield func(Match) bool) {
		for i := 0; i+size <= len(p); i++ {
			if !fn(i, yield) {
				return
			}
		}
	}
}

// x(m)(7) -> x(m) x(m)7
type splitDominant struct{}

func (splitDominant) ID() RuleID { return Rule1 }

func (splitDominant) Description() string {
	return "x(m)(7) -> x(m) x(m)7: split a chord and lead into it with its own dominant-seventh form"
}

func (splitDominant) Match(p Progression) iter.Seq[Match] {
	return window(p, 1, func(i int, yield func(Match) bool) bool {
		t := p[i]
		if t.Chord.IsDiminished7() {
			return true
		}
		half, err := t.Duration.Half()
		if err != nil {
			return true
		}
		minor := t.Chord.IsMinor()
		return yield(Match{
			Rule: Rule1,
			Span: Span{i, i + 1},
			Replacement: Progression{
				Timed(t.Chord.WithQuality(qualityOf(minor, false)), half),
				Timed(t.Chord.WithQuality(qualityOf(minor, true)), half),
			},
		})
	})
}

// x(m)(7) -> x(m)(7) Sd(x)(m)
type splitSubdominant struct{}

func (splitSubdominant) ID() RuleID { return Rule2 }

func (splitSubdominant) Description() string {
	return "x(m)(7) -> x(m)(7) Sdx(m): split a chord and continue to its subdominant"
}

func (splitSubdominant) Match(p Progression) iter.Seq[Match] {
	return window(p, 1, func(i int, yield func(Match) bool) bool {
		t := p[i]
		if t.Chord.IsDiminished7() {
			return true
		}
		half, err := t.Duration.Half()
		if err != nil {
			return true
		}
		sub := NewChord(t.Chord.Root().Subdominant(), qualityOf(t.Chord.IsMinor(), false))
		return yield(Match{
			Rule:        Rule2,
			Span:        Span{i, i + 1},
			Replacement: Progression{Timed(t.Chord, half), Timed(sub, half)},
		})
	})
}

// w x7 -> Dx7 x7 | Dxm7 x7
type secondaryDominant struct{}

func (secondaryDominant) ID() RuleID { return Rule3a }

func (secondaryDominant) Description() string {
	return "w x7 -> Dx(m)7 x7: replace the chord before a dominant seventh with that chord's own dominant"
}

func (secondaryDominant) Match(p Progression) iter.Seq[Match] {
	return window(p, 2, func(i int, yield func(Match) bool) bool {
		w, x := p[i], p[i+1]
		if !w.Chord.IsPlain() || !x.Chord.IsMajorDominant7() {
			return true
		}
		dominant := x.Chord.Root().Dominant()
		for _, q := range []Quality{Dominant7, MinorDominant7} {
			m := Match{
				Rule:        Rule3a,
				Span:        Span{i, i + 2},
				Replacement: Progression{Timed(NewChord(dominant, q), w.Duration), x},
			}
			if !yield(m) {
				return false
			}
		}
		return true
	})
}

// w xm7 -> Dx7 xm7
type secondaryDominantOfMinor struct{}

func (secondaryDominantOfMinor) ID() RuleID { return Rule3b }

func (secondaryDominantOfMinor) Description() string {
	return "w xm7 -> Dx7 xm7: replace the chord before a minor seventh with that chord's dominant"
}

func (secondaryDominantOfMinor) Match(p Progression) iter.Seq[Match] {
	return window(p, 2, func(i int, yield func(Match) bool) bool {
		w, x := p[i], p[i+1]
		if !w.Chord.IsPlain() || !x.Chord.IsMinorDominant7() {
			return true
		}
		dominant := NewChord(x.Chord.Root().Dominant(), Dominant7)
		return yield(Match{
			Rule:        Rule3b,
			Span:        Span{i, i + 2},
			Replacement: Progression{Timed(dominant, w.Duration), x},
		})
	})
}

// Dx7 x(m)(7) -> bStx(m)7 x(m)(7)
type tritoneSubstitution struct{}

func (tritoneSubstitution) ID() RuleID { return Rule4 }

func (tritoneSubstitution) Description() string {
	return "Dx7 x(m)(7) -> bStx(m)7 x(m)(7): tritone substitution of a resolving dominant"
}

func (tritoneSubstitution) Match(p Progression) iter.Seq[Match] {
	return window(p, 2, func(i int, yield func(Match) bool) bool {
		d, x := p[i], p[i+1]
		if !d.Chord.IsMajorDominant7() || x.Chord.IsDiminished7() {
			return true
		}
		if d.Chord.Root() != x.Chord.Root().Dominant() {
			return true
		}
		sub := NewChord(x.Chord.Root().FlatSupertonic(), qualityOf(x.Chord.IsMinor(), true))
		return yield(Match{
			Rule:        Rule4,
			Span:        Span{i, i + 2},
			Replacement: Progression{Timed(sub, d.Duration), x},
		})
	})
}

// x x x -> x Stxm Mxm
type diatonicAscent struct{}

func (diatonicAscent) ID() RuleID { return Rule5 }

func (diatonicAscent) Description() string {
	return "x x x -> x Stxm Mxm: walk a held major chord up through its supertonic and mediant minors"
}

func (diatonicAscent) Match(p Progression) iter.Seq[Match] {
	return window(p, 3, func(i int, yield func(Match) bool) bool {
		a, b, c := p[i], p[i+1], p[i+2]
		if a.Chord != b.Chord || b.Chord != c.Chord || !a.Chord.IsPlainMajor() {
			return true
		}
		root := a.Chord.Root()
		return yield(Match{
			Rule: Rule5,
			Span: Span{i, i + 3},
			Replacement: Progression{
				a,
				Timed(NewChord(root.Supertonic(), Minor), b.Duration),
				Timed(NewChord(root.Mediant(), Minor), c.Duration),
			},
		})
	})
}

// x(m) x(m) y -> x(m) #x°7 y, where y is Stxm(7), on the leading tone of x,
// or on the dominant of x.
type passingDiminished struct{}

func (passingDiminished) ID() RuleID { return Rule6 }

func (passingDiminished) Description() string {
	return "x(m) x(m) y -> x(m) #x°7 y: passing diminished seventh before a supertonic minor, leading tone or dominant"
}

func (passingDiminished) Match(p Progression) iter.Seq[Match] {
	return window(p, 3, func(i int, yield func(Match) bool) bool {
		first, second, y := p[i], p[i+1], p[i+2]
		if first.Chord != second.Chord || !first.Chord.IsPlain() || y.Chord.IsDiminished7() {
			return true
		}
		x := first.Chord.Root()
		target := y.Chord.Root()
		supertonicMinor := target == x.Supertonic() && y.Chord.IsMinor()
		if !supertonicMinor && target != x.LeadingTone() && target != x.Dominant() {
			return true
		}
		return yield(Match{
			Rule: Rule6,
			Span: Span{i, i + 3},
			Replacement: Progression{
				first,
				Timed(NewChord(x.Sharpened(), Diminished7), second.Duration),
				y,
			},
		})
	})
}
