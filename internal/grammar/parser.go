package grammar

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"regexp"
	"strings"
)

var (
	rootPattern       = regexp.MustCompile(`^([b#]*)(VII|VI|IV|V|III|II|I)$`)
	lowerChordPattern = regexp.MustCompile(`^([b#]*)(vii|vi|iv|v|iii|ii|i)(m?)(7?)$`)
	numeralDegrees    = map[string]Degree{
		"I": DegreeI, "II": DegreeII, "III": DegreeIII, "IV": DegreeIV,
		"V": DegreeV, "VI": DegreeVI, "VII": DegreeVII,
	}
	accidentalReplacer = strings.NewReplacer("♭", "b", "♯", "#")
)

// Record is the structured form of one slot, as sent in JSON arrays:
// {"chord": "V7", "duration": "3/2"}. "dur" is accepted as an alias.
type Record struct {
	Chord    string    `json:"chord"`
	Duration *Duration `json:"duration,omitempty"`
	Dur      *Duration `json:"dur,omitempty"`
}

// ParseRoot parses an accidental-prefixed Roman numeral such as "bII".
func ParseRoot(token string) (Root, error) {
	m := rootPattern.FindStringSubmatch(accidentalReplacer.Replace(token))
	if m == nil {
		return Root{}, parseErr(ErrUnknownRoot, token, "not a Roman numeral root")
	}
	accidental := strings.Count(m[1], "#") - strings.Count(m[1], "b")
	return Root{Degree: numeralDegrees[m[2]], Accidental: accidental}, nil
}

// ParseChord parses a chord token without duration, e.g. "bIIm7", "#I°7",
// or lowercase minor shorthand "ii7".
func ParseChord(token string) (Chord, error) {
	text := strings.TrimSpace(token)
	if text == "" {
		return Chord{}, parseErr(ErrMalformedToken, token, "empty chord token")
	}
	text = accidentalReplacer.Replace(text)

	if m := lowerChordPattern.FindStringSubmatch(text); m != nil {
		root, err := ParseRoot(m[1] + strings.ToUpper(m[2]))
		if err != nil {
			return Chord{}, err
		}
		return NewChord(root, qualityOf(true, m[4] != "")), nil
	}

	quality := Major
	rootText := text
	switch {
	case strings.HasSuffix(text, "°7"):
		quality, rootText = Diminished7, strings.TrimSuffix(text, "°7")
	case strings.HasSuffix(text, "m7"):
		quality, rootText = MinorDominant7, strings.TrimSuffix(text, "m7")
	case strings.HasSuffix(text, "7"):
		quality, rootText = Dominant7, strings.TrimSuffix(text, "7")
	case strings.HasSuffix(text, "m"):
		quality, rootText = Minor, strings.TrimSuffix(text, "m")
	}

	root, err := ParseRoot(rootText)
	if err != nil {
		return Chord{}, parseErr(ErrUnknownRoot, token, fmt.Sprintf("invalid Roman numeral root %q", rootText))
	}
	return NewChord(root, quality), nil
}

// ParseToken parses "Root[Quality][@Duration]". Duration defaults to 1.
func ParseToken(token string) (TimedChord, error) {
	text := strings.TrimSpace(token)
	if text == "" {
		return TimedChord{}, parseErr(ErrMalformedToken, token, "empty chord token")
	}

	chordText, durationText, hasDuration := cutLast(text, "@")
	chord, err := ParseChord(chordText)
	if err != nil {
		if hasDuration && strings.TrimSpace(chordText) == "" {
			return TimedChord{}, parseErr(ErrMalformedToken, token, "missing chord before '@'")
		}
		var pe *ParseError
		if errors.As(err, &pe) {
			return TimedChord{}, parseErr(pe.Err, text, pe.Reason)
		}
		return TimedChord{}, err
	}
	if !hasDuration {
		return Timed(chord, One), nil
	}

	duration, err := parsePositiveDuration(durationText)
	if err != nil {
		return TimedChord{}, err
	}
	return Timed(chord, duration), nil
}

// ParseTokens parses a list of token strings.
func ParseTokens(tokens []string) (Progression, error) {
	out := make(Progression, 0, len(tokens))
	for _, token := range tokens {
		t, err := ParseToken(token)
		if err != nil {
			return nil, err
		}
		out = append(out, t)
	}
	return out, nil
}

// ParseRecords parses structured {chord, duration} records.
func ParseRecords(records []Record) (Progression, error) {
	out := make(Progression, 0, len(records))
	for _, r := range records {
		t, err := r.timed()
		if err != nil {
			return nil, err
		}
		out = append(out, t)
	}
	return out, nil
}

func (r Record) timed() (TimedChord, error) {
	duration := r.Duration
	if duration == nil {
		duration = r.Dur
	}
	if duration == nil {
		return ParseToken(r.Chord)
	}
	if !duration.IsPositive() {
		return TimedChord{}, parseErr(ErrInvalidDuration, duration.String(), "duration must be positive")
	}
	chord, err := ParseChord(r.Chord)
	if err != nil {
		return TimedChord{}, err
	}
	return Timed(chord, *duration), nil
}

// Parse accepts a comma-separated token list ("I@4,IV@2,V7@2") or a JSON
// array of token strings or records.
func Parse(input string) (Progression, error) {
	text := strings.TrimSpace(input)
	if strings.HasPrefix(text, "[") {
		return ParseJSON([]byte(text))
	}

	parts := strings.Split(text, ",")
	tokens := make([]string, 0, len(parts))
	for _, part := range parts {
		if strings.TrimSpace(part) == "" {
			continue
		}
		tokens = append(tokens, part)
	}
	return ParseTokens(tokens)
}

// ParseJSON parses a JSON array whose elements are token strings or records.
func ParseJSON(data []byte) (Progression, error) {
	var items []json.RawMessage
	if err := json.Unmarshal(data, &items); err != nil {
		return nil, parseErr(ErrMalformedToken, string(data), "JSON progression must be an array")
	}

	out := make(Progression, 0, len(items))
	for _, item := range items {
		t, err := parseJSONItem(item)
		if err != nil {
			return nil, err
		}
		out = append(out, t)
	}
	return out, nil
}

func parseJSONItem(item json.RawMessage) (TimedChord, error) {
	trimmed := bytes.TrimSpace(item)
	switch {
	case len(trimmed) > 0 && trimmed[0] == '"':
		var token string
		if err := json.Unmarshal(trimmed, &token); err != nil {
			return TimedChord{}, parseErr(ErrMalformedToken, string(item), "invalid JSON string")
		}
		return ParseToken(token)
	case len(trimmed) > 0 && trimmed[0] == '{':
		var record Record
		if err := json.Unmarshal(trimmed, &record); err != nil {
			return TimedChord{}, wrapJSONError(string(item), err)
		}
		if strings.TrimSpace(record.Chord) == "" {
			return TimedChord{}, parseErr(ErrMalformedToken, string(item), `JSON object entries must include string key "chord"`)
		}
		return record.timed()
	}
	return TimedChord{}, parseErr(ErrMalformedToken, string(item), "JSON progression elements must be strings or objects")
}

// wrapJSONError keeps a ParseError raised by Duration.UnmarshalJSON and
// classifies anything else as a malformed token.
func wrapJSONError(item string, err error) error {
	var pe *ParseError
	if errors.As(err, &pe) {
		return pe
	}
	return parseErr(ErrMalformedToken, item, err.Error())
}

func parsePositiveDuration(text string) (Duration, error) {
	d, err := ParseDuration(text)
	if err != nil {
		return Duration{}, err
	}
	if !d.IsPositive() {
		return Duration{}, parseErr(ErrInvalidDuration, text, "duration must be positive")
	}
	return d, nil
}

func cutLast(s, sep string) (before, after string, found bool) {
	if i := strings.LastIndex(s, sep); i >= 0 {
		return s[:i], s[i+len(sep):], true
	}
	return s, "", false
}
