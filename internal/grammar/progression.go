package grammar

import "strings"

// TimedChord is a chord held for a duration.
type TimedChord struct {
	Chord    Chord
	Duration Duration
}

// Timed pairs a chord with a duration.
func Timed(c Chord, d Duration) TimedChord {
	return TimedChord{Chord: c, Duration: d}
}

// Token renders the chord, adding "@duration" unless the duration is 1.
func (t TimedChord) Token() string {
	if t.Duration == One {
		return t.Chord.String()
	}
	return t.FullToken()
}

// FullToken always renders "@duration".
func (t TimedChord) FullToken() string {
	return t.Chord.String() + "@" + t.Duration.String()
}

func (t TimedChord) String() string { return t.Token() }

// Progression is an ordered sequence of timed chords. Methods never modify
// the receiver; rewrites build new slices.
type Progression []TimedChord

// Tokens renders every slot with Token.
func (p Progression) Tokens() []string {
	out := make([]string, len(p))
	for i, t := range p {
		out[i] = t.Token()
	}
	return out
}

// FullTokens renders every slot with FullToken.
func (p Progression) FullTokens() []string {
	out := make([]string, len(p))
	for i, t := range p {
		out[i] = t.FullToken()
	}
	return out
}

// Equal reports element-wise equality.
func (p Progression) Equal(o Progression) bool {
	if len(p) != len(o) {
		return false
	}
	for i := range p {
		if p[i] != o[i] {
			return false
		}
	}
	return true
}

// Key is a string that is equal for two progressions iff they are Equal.
func (p Progression) Key() string {
	return strings.Join(p.FullTokens(), ",")
}

// Total is the summed duration of all slots.
func (p Progression) Total() (Duration, error) {
	total := Whole(0)
	for _, t := range p {
		var err error
		if total, err = total.Add(t.Duration); err != nil {
			return Duration{}, err
		}
	}
	return total, nil
}

// Slice copies p[start:end].
func (p Progression) Slice(start, end int) Progression {
	out := make(Progression, end-start)
	copy(out, p[start:end])
	return out
}

// Replace returns a new progression with p[start:end] swapped for repl.
func (p Progression) Replace(start, end int, repl Progression) Progression {
	out := make(Progression, 0, len(p)-(end-start)+len(repl))
	out = append(out, p[:start]...)
	out = append(out, repl...)
	out = append(out, p[end:]...)
	return out
}

func (p Progression) String() string {
	return strings.Join(p.Tokens(), " / ")
}
