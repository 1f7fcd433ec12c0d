package grammar

import (
	"regexp"
	"strings"
)

var (
	keyPattern      = regexp.MustCompile(`^([A-Ga-g])([#b]?)$`)
	letterSemitones = map[byte]int{'C': 0, 'D': 2, 'E': 4, 'F': 5, 'G': 7, 'A': 9, 'B': 11}
	sharpPitchNames = [12]string{"C", "C#", "D", "D#", "E", "F", "F#", "G", "G#", "A", "A#", "B"}
	flatPitchNames  = [12]string{"C", "Db", "D", "Eb", "E", "F", "Gb", "G", "Ab", "A", "Bb", "B"}
)

// Key is a major key used to spell Roman numerals as concrete chords.
type Key struct {
	Name  string
	Tonic int
	Flats bool
}

// ParseKey accepts "C", "F#", "Bb", "Gb", with ♭/♯ allowed.
func ParseKey(name string) (Key, error) {
	text := accidentalReplacer.Replace(strings.TrimSpace(name))
	m := keyPattern.FindStringSubmatch(text)
	if m == nil {
		return Key{}, &ParseError{Token: name, Reason: "key must be a letter A-G with optional # or b", Err: ErrUnknownKey}
	}
	letter := strings.ToUpper(m[1])
	tonic := letterSemitones[letter[0]]
	switch m[2] {
	case "#":
		tonic++
	case "b":
		tonic--
	}
	return Key{
		Name:  letter + m[2],
		Tonic: mod(tonic, 12),
		Flats: m[2] == "b" || letter == "F",
	}, nil
}

// Spell returns the concrete chord symbol for c in k, e.g. IV7 in C is F7.
func (k Key) Spell(c Chord) string {
	pitch := mod(k.Tonic+c.Root().Semitone(), 12)
	names := sharpPitchNames
	if k.Flats {
		names = flatPitchNames
	}
	return names[pitch] + c.Classify().Suffix()
}

// Realize spells every slot of p in key. Durations of 1 are omitted unless
// showUnitOne is set.
func Realize(p Progression, key string, showUnitOne bool) ([]string, error) {
	k, err := ParseKey(key)
	if err != nil {
		return nil, err
	}
	out := make([]string, len(p))
	for i, t := range p {
		token := k.Spell(t.Chord)
		if showUnitOne || t.Duration != One {
			token += "@" + t.Duration.String()
		}
		out[i] = token
	}
	return out, nil
}
