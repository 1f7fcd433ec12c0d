package grammar

import "strings"

// Degree is a scale-degree index, I = 0 through VII = 6.
type Degree int

const (
	DegreeI Degree = iota
	DegreeII
	DegreeIII
	DegreeIV
	DegreeV
	DegreeVI
	DegreeVII
	degreeCount
)

var degreeNumerals = [degreeCount]string{"I", "II", "III", "IV", "V", "VI", "VII"}

// Semitone offsets of the natural degrees in a major scale.
var majorScaleSemitones = [degreeCount]int{0, 2, 4, 5, 7, 9, 11}

func (d Degree) String() string {
	if d < 0 || d >= degreeCount {
		return "?"
	}
	return degreeNumerals[d]
}

// Root is a Roman-numeral root: a degree plus an accidental count
// (positive = sharps, negative = flats).
type Root struct {
	Degree     Degree
	Accidental int
}

// Semitone returns the root's pitch class relative to the tonic.
func (r Root) Semitone() int {
	return mod(majorScaleSemitones[r.Degree]+r.Accidental, 12)
}

// Shift moves the root by a diatonic degree interval and an exact semitone
// interval, picking the accidental that makes both hold.
func (r Root) Shift(degreeSteps, semitoneSteps int) Root {
	degree := Degree(mod(int(r.Degree)+degreeSteps, int(degreeCount)))
	target := mod(r.Semitone()+semitoneSteps, 12)
	accidental := mod(target-majorScaleSemitones[degree], 12)
	if accidental > 6 {
		accidental -= 12
	}
	return Root{Degree: degree, Accidental: accidental}
}

// Dominant is the root a fifth above.
func (r Root) Dominant() Root { return r.Shift(4, 7) }

// Subdominant is the root a fourth above.
func (r Root) Subdominant() Root { return r.Shift(3, 5) }

// Supertonic is the root a major second above.
func (r Root) Supertonic() Root { return r.Shift(1, 2) }

// Mediant is the root a major third above.
func (r Root) Mediant() Root { return r.Shift(2, 4) }

// FlatSupertonic is the root a minor second above (tritone substitute of
// the dominant).
func (r Root) FlatSupertonic() Root { return r.Shift(1, 1) }

// Sharpened is the same degree raised a semitone.
func (r Root) Sharpened() Root { return r.Shift(0, 1) }

// LeadingTone is the root a minor second below.
func (r Root) LeadingTone() Root { return r.Shift(6, -1) }

func (r Root) String() string {
	var b strings.Builder
	switch {
	case r.Accidental > 0:
		b.WriteString(strings.Repeat("#", r.Accidental))
	case r.Accidental < 0:
		b.WriteString(strings.Repeat("b", -r.Accidental))
	}
	b.WriteString(r.Degree.String())
	return b.String()
}

// Quality is the harmonic category of a chord. A chord has exactly one.
type Quality int

const (
	Major Quality = iota
	Minor
	Dominant7
	MinorDominant7
	Diminished7
)

var qualitySuffixes = map[Quality]string{
	Major:          "",
	Minor:          "m",
	Dominant7:      "7",
	MinorDominant7: "m7",
	Diminished7:    "°7",
}

var qualityNames = map[Quality]string{
	Major:          "major",
	Minor:          "minor",
	Dominant7:      "dominant7",
	MinorDominant7: "minor-dominant7",
	Diminished7:    "diminished7",
}

func (q Quality) String() string { return qualityNames[q] }

// Suffix is the token suffix for q, e.g. "m7".
func (q Quality) Suffix() string { return qualitySuffixes[q] }

// IsMinor reports whether q carries the minor flag.
func (q Quality) IsMinor() bool { return q == Minor || q == MinorDominant7 }

// IsDominant7 reports whether q carries a dominant seventh.
func (q Quality) IsDominant7() bool { return q == Dominant7 || q == MinorDominant7 }

// qualityOf builds the non-diminished quality from its flags.
func qualityOf(minor, dominant7 bool) Quality {
	switch {
	case minor && dominant7:
		return MinorDominant7
	case dominant7:
		return Dominant7
	case minor:
		return Minor
	}
	return Major
}

// Chord is an immutable root + quality value.
type Chord struct {
	root    Root
	quality Quality
}

// NewChord builds a chord.
func NewChord(root Root, quality Quality) Chord {
	return Chord{root: root, quality: quality}
}

func (c Chord) Root() Root { return c.root }

// Classify returns the chord's harmonic category.
func (c Chord) Classify() Quality { return c.quality }

// WithQuality returns a copy of c with quality q.
func (c Chord) WithQuality(q Quality) Chord {
	return Chord{root: c.root, quality: q}
}

// RootDistance is the diatonic interval from c up to other, 0..6.
func (c Chord) RootDistance(other Chord) int {
	return mod(int(other.root.Degree)-int(c.root.Degree), int(degreeCount))
}

func (c Chord) IsMinor() bool       { return c.quality.IsMinor() }
func (c Chord) IsDominant7() bool   { return c.quality.IsDominant7() }
func (c Chord) IsDiminished7() bool { return c.quality == Diminished7 }

// IsPlain reports a chord without seventh: major or minor triad.
func (c Chord) IsPlain() bool { return c.quality == Major || c.quality == Minor }

func (c Chord) IsPlainMajor() bool     { return c.quality == Major }
func (c Chord) IsMajorDominant7() bool { return c.quality == Dominant7 }
func (c Chord) IsMinorDominant7() bool { return c.quality == MinorDominant7 }

func (c Chord) String() string {
	return c.root.String() + c.quality.Suffix()
}

func mod(a, n int) int {
	a %= n
	if a < 0 {
		a += n
	}
	return a
}
