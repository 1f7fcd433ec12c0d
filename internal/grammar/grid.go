package grammar

import (
	"fmt"
	"regexp"
	"strings"
)

const (
	DefaultBeatsPerBar     = 4
	DefaultMaxSubdivisions = 4
	DefaultMaxBars         = 64

	// MaxBeatsPerBar bounds the bar length RenderGrid will lay out.
	MaxBeatsPerBar = 64
)

var gridBarPattern = regexp.MustCompile(`\|([^|]*)\|`)

// Notation selects how ParseText reads its input.
type Notation string

const (
	NotationAuto     Notation = "auto"
	NotationDuration Notation = "duration"
	NotationGrid     Notation = "grid"
)

// ParseNotation validates a notation mode name.
func ParseNotation(s string) (Notation, error) {
	switch n := Notation(strings.ToLower(strings.TrimSpace(s))); n {
	case NotationAuto, NotationDuration, NotationGrid:
		return n, nil
	case "":
		return NotationAuto, nil
	}
	return "", parseErr(ErrMalformedToken, s, `notation must be "auto", "duration", or "grid"`)
}

// GridOptions controls grid parsing and rendering.
type GridOptions struct {
	BeatsPerBar     int
	MaxSubdivisions int
	// MaxBars caps the rendered length, padding included.
	MaxBars int
	// UnitsPerBeat converts grid beats into duration units. Zero means 1.
	UnitsPerBeat Duration
	// NoPad disables filling the last bar with the last chord when rendering.
	NoPad bool
}

// DefaultGridOptions is four beats per bar, at most four chords per beat.
func DefaultGridOptions() GridOptions {
	return GridOptions{
		BeatsPerBar:     DefaultBeatsPerBar,
		MaxSubdivisions: DefaultMaxSubdivisions,
		MaxBars:         DefaultMaxBars,
		UnitsPerBeat:    One,
	}
}

func (o GridOptions) withDefaults() GridOptions {
	if o.BeatsPerBar == 0 {
		o.BeatsPerBar = DefaultBeatsPerBar
	}
	if o.MaxSubdivisions == 0 {
		o.MaxSubdivisions = DefaultMaxSubdivisions
	}
	if o.MaxBars == 0 {
		o.MaxBars = DefaultMaxBars
	}
	if !o.UnitsPerBeat.IsValid() {
		o.UnitsPerBeat = One
	}
	return o
}

// LooksLikeGrid reports whether raw contains a "|...|" bar with beats.
func LooksLikeGrid(raw string) bool {
	text := strings.TrimSpace(raw)
	return text != "" && strings.Contains(text, "/") && gridBarPattern.MatchString(text)
}

// ParseText parses raw in the requested notation and returns the notation
// actually used.
func ParseText(raw string, mode Notation, opts GridOptions) (Progression, Notation, error) {
	switch mode {
	case NotationGrid:
		p, err := ParseGrid(raw, opts)
		return p, NotationGrid, err
	case NotationDuration:
		p, err := Parse(raw)
		return p, NotationDuration, err
	case NotationAuto, "":
		if LooksLikeGrid(raw) {
			p, err := ParseGrid(raw, opts)
			return p, NotationGrid, err
		}
		p, err := Parse(raw)
		return p, NotationDuration, err
	}
	return nil, "", parseErr(ErrMalformedToken, string(mode), "unknown notation mode")
}

type gridSlot struct {
	chord    Chord
	duration Duration
}

// ParseGrid parses bar/beat notation: "| I / I,ii / ii / ii |". Bars are
// delimited by '|', beats by '/', and chords sharing a beat by ','.
// Consecutive identical chords merge into one slot.
func ParseGrid(raw string, opts GridOptions) (Progression, error) {
	opts = opts.withDefaults()
	text := strings.TrimSpace(raw)
	if text == "" {
		return nil, parseErr(ErrMalformedGrid, raw, "grid notation is empty")
	}
	if opts.BeatsPerBar < 0 {
		return nil, parseErr(ErrMalformedGrid, "", "beats per bar must be positive")
	}
	if !strings.HasPrefix(text, "|") || !strings.HasSuffix(text, "|") || len(text) < 2 {
		return nil, parseErr(ErrMalformedGrid, text, "unexpected text outside bar delimiters '|'")
	}

	var (
		slots        []gridSlot
		subdivisions []int
		barIndex     int
	)
	for _, body := range strings.Split(text[1:len(text)-1], "|") {
		if strings.TrimSpace(body) == "" {
			continue
		}
		barIndex++

		beats := strings.Split(body, "/")
		if len(beats) != opts.BeatsPerBar {
			return nil, parseErr(ErrMalformedGrid, strings.TrimSpace(body),
				fmt.Sprintf("bar %d must contain exactly %d beats separated by '/'", barIndex, opts.BeatsPerBar))
		}

		for beatIndex, beat := range beats {
			beat = strings.TrimSpace(beat)
			if beat == "" {
				return nil, parseErr(ErrMalformedGrid, strings.TrimSpace(body),
					fmt.Sprintf("bar %d, beat %d cannot be empty", barIndex, beatIndex+1))
			}
			parts := strings.Split(beat, ",")
			subdivisions = append(subdivisions, len(parts))
			share, err := NewDuration(1, int64(len(parts)))
			if err == nil {
				share, err = share.Mul(opts.UnitsPerBeat)
			}
			if err != nil {
				return nil, err
			}
			for _, part := range parts {
				if strings.TrimSpace(part) == "" {
					return nil, parseErr(ErrMalformedGrid, beat,
						fmt.Sprintf("bar %d, beat %d has an empty subdivision", barIndex, beatIndex+1))
				}
				chord, err := ParseChord(part)
				if err != nil {
					return nil, err
				}
				slots = append(slots, gridSlot{chord: chord, duration: share})
			}
		}
	}
	if len(slots) == 0 {
		return nil, parseErr(ErrMalformedGrid, text, "grid notation does not contain any chords")
	}

	required := 1
	for _, n := range subdivisions {
		required = int(lcm(int64(required), int64(n)))
	}
	if required > opts.MaxSubdivisions {
		return nil, parseErr(ErrMalformedGrid, text,
			fmt.Sprintf("grid requires %d subdivisions per beat, exceeding the max %d", required, opts.MaxSubdivisions))
	}

	out := Progression{Timed(slots[0].chord, slots[0].duration)}
	for _, s := range slots[1:] {
		last := &out[len(out)-1]
		if s.chord == last.Chord {
			merged, err := last.Duration.Add(s.duration)
			if err != nil {
				return nil, err
			}
			last.Duration = merged
			continue
		}
		out = append(out, Timed(s.chord, s.duration))
	}
	return out, nil
}

// RenderGrid writes p as grid rows, one bar per line. Cell counts are
// checked against MaxBars before anything is laid out, so oversized
// progressions fail with ErrGridOverflow instead of allocating.
func RenderGrid(p Progression, opts GridOptions) (string, error) {
	opts = opts.withDefaults()
	if len(p) == 0 {
		return "", nil
	}
	if opts.BeatsPerBar < 1 || opts.BeatsPerBar > MaxBeatsPerBar {
		return "", fmt.Errorf("%w: %d beats per bar is outside 1..%d", ErrGridOverflow, opts.BeatsPerBar, MaxBeatsPerBar)
	}
	if opts.MaxSubdivisions < 1 || opts.MaxBars < 1 {
		return "", fmt.Errorf("%w: grid limits must be positive", ErrGridOverflow)
	}

	beats := make([]Duration, len(p))
	required := int64(1)
	for i, t := range p {
		b, err := t.Duration.Div(opts.UnitsPerBeat)
		if err != nil {
			return "", fmt.Errorf("%w: %v", ErrGridOverflow, err)
		}
		if !b.IsPositive() {
			return "", fmt.Errorf("%w: slot %d has no length", ErrGridOverflow, i+1)
		}
		beats[i] = b
		required = lcm(required, b.den)
		if required > int64(opts.MaxSubdivisions) {
			return "", fmt.Errorf("%w: progression requires %d subdivisions per beat, exceeding the max %d",
				ErrGridOverflow, required, opts.MaxSubdivisions)
		}
	}

	perBar := int64(opts.BeatsPerBar) * required
	maxCells := int64(opts.MaxBars) * perBar
	counts := make([]int64, len(p))
	var cells int64
	for i, b := range beats {
		n := b.num * (required / b.den)
		if n > maxCells-cells {
			return "", fmt.Errorf("%w: progression spans more than %d bars", ErrGridOverflow, opts.MaxBars)
		}
		counts[i] = n
		cells += n
	}

	padded := cells
	if rem := cells % perBar; rem != 0 {
		if opts.NoPad {
			return "", fmt.Errorf("%w: progression does not fill complete bars", ErrGridOverflow)
		}
		padded += perBar - rem
	}

	slots := make([]string, 0, padded)
	for i, t := range p {
		name := t.Chord.String()
		for range counts[i] {
			slots = append(slots, name)
		}
	}
	last := slots[len(slots)-1]
	for int64(len(slots)) < padded {
		slots = append(slots, last)
	}

	width := int(perBar)
	bars := make([]string, 0, len(slots)/width)
	for start := 0; start < len(slots); start += width {
		bar := slots[start : start+width]
		cellsPerBeat := int(required)
		row := make([]string, 0, opts.BeatsPerBar)
		for b := range opts.BeatsPerBar {
			beat := bar[b*cellsPerBeat : (b+1)*cellsPerBeat]
			row = append(row, strings.Join(collapseBeat(beat), ","))
		}
		bars = append(bars, "| "+strings.Join(row, " / ")+" |")
	}
	return strings.Join(bars, "\n"), nil
}

// collapseBeat merges repeated adjacent chords when every run has the same
// length, so the beat still divides evenly when parsed back.
func collapseBeat(beat []string) []string {
	segments := []string{beat[0]}
	runs := []int{1}
	for _, token := range beat[1:] {
		if token == segments[len(segments)-1] {
			runs[len(runs)-1]++
			continue
		}
		segments = append(segments, token)
		runs = append(runs, 1)
	}
	for _, n := range runs[1:] {
		if n != runs[0] {
			return beat
		}
	}
	return segments
}
