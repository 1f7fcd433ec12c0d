package grammar

import (
	"encoding/json"
	"fmt"
	"math"
	"strconv"
	"strings"
)

// MaxDurationTerm bounds the reduced numerator and denominator of every
// Duration. Products of two terms then fit in an int64, and so does the sum
// of two such products.
const MaxDurationTerm = 1<<31 - 1

// Duration is an exact rational length in time units (beats by default).
// The zero value is not valid; use Whole, NewDuration or ParseDuration.
// Values are always kept reduced with a positive denominator, so == compares
// values.
type Duration struct {
	num int64
	den int64
}

// One is the default slot length.
var One = Duration{num: 1, den: 1}

// Whole returns n/1. n is clamped to ±MaxDurationTerm.
func Whole(n int64) Duration {
	return Duration{num: max(-MaxDurationTerm, min(n, MaxDurationTerm)), den: 1}
}

// NewDuration returns num/den in lowest terms.
func NewDuration(num, den int64) (Duration, error) {
	token := fmt.Sprintf("%d/%d", num, den)
	if den == 0 {
		return Duration{}, parseErr(ErrInvalidDuration, token, "denominator must be positive")
	}
	return bounded(num, den, token)
}

// bounded reduces num/den and rejects values whose terms exceed
// MaxDurationTerm.
func bounded(num, den int64, token string) (Duration, error) {
	if num == math.MinInt64 || den == math.MinInt64 {
		return Duration{}, parseErr(ErrInvalidDuration, token, "duration is out of range")
	}
	d := normalize(num, den)
	if abs(d.num) > MaxDurationTerm || d.den > MaxDurationTerm {
		return Duration{}, parseErr(ErrInvalidDuration, token,
			fmt.Sprintf("numerator and denominator must not exceed %d", MaxDurationTerm))
	}
	return d, nil
}

func normalize(num, den int64) Duration {
	if den < 0 {
		num, den = -num, -den
	}
	if g := gcd(abs(num), den); g > 1 {
		num /= g
		den /= g
	}
	if num == 0 {
		den = 1
	}
	return Duration{num: num, den: den}
}

// ParseDuration accepts "4" or "3/2".
func ParseDuration(text string) (Duration, error) {
	s := strings.TrimSpace(text)
	if s == "" {
		return Duration{}, parseErr(ErrInvalidDuration, text, "duration cannot be empty")
	}

	numText, denText, isFraction := strings.Cut(s, "/")
	num, err := strconv.ParseInt(strings.TrimSpace(numText), 10, 64)
	if err != nil {
		return Duration{}, parseErr(ErrInvalidDuration, text, "numerator is not a decimal integer")
	}
	if !isFraction {
		return bounded(num, 1, text)
	}

	den, err := strconv.ParseInt(strings.TrimSpace(denText), 10, 64)
	if err != nil {
		return Duration{}, parseErr(ErrInvalidDuration, text, "denominator is not a decimal integer")
	}
	if den <= 0 {
		return Duration{}, parseErr(ErrInvalidDuration, text, "denominator must be positive")
	}
	return bounded(num, den, text)
}

// parseDecimal turns an exact decimal literal such as "1.5" into 3/2. It is
// only used for JSON numbers.
func parseDecimal(text string) (Duration, error) {
	intPart, fracPart, hasFrac := strings.Cut(text, ".")
	if !hasFrac {
		return ParseDuration(text)
	}
	if strings.ContainsAny(text, "eE") || len(fracPart) == 0 || len(fracPart) > 9 {
		return Duration{}, parseErr(ErrInvalidDuration, text, "unsupported decimal duration")
	}
	den := int64(1)
	for range fracPart {
		den *= 10
	}
	num, err := strconv.ParseInt(intPart+fracPart, 10, 64)
	if err != nil {
		return Duration{}, parseErr(ErrInvalidDuration, text, "duration is not a decimal number")
	}
	return bounded(num, den, text)
}

// Num returns the reduced numerator.
func (d Duration) Num() int64 { return d.num }

// Den returns the reduced denominator.
func (d Duration) Den() int64 { return d.den }

// IsValid reports whether d was built through a constructor.
func (d Duration) IsValid() bool { return d.den > 0 }

// IsPositive reports whether d > 0.
func (d Duration) IsPositive() bool { return d.den > 0 && d.num > 0 }

// The arithmetic below relies on both operands being bounded: every
// intermediate product stays below 2^62 and every sum below 2^63. A result
// whose reduced terms leave the bound is an ErrInvalidDuration.

// Half returns d/2 exactly.
func (d Duration) Half() (Duration, error) {
	return bounded(d.num, d.den*2, d.String()+" / 2")
}

// Add returns d + o.
func (d Duration) Add(o Duration) (Duration, error) {
	l := lcm(d.den, o.den)
	return bounded(d.num*(l/d.den)+o.num*(l/o.den), l, d.String()+" + "+o.String())
}

// Mul returns d * o.
func (d Duration) Mul(o Duration) (Duration, error) {
	return bounded(d.num*o.num, d.den*o.den, d.String()+" * "+o.String())
}

// Div returns d / o.
func (d Duration) Div(o Duration) (Duration, error) {
	token := d.String() + " / " + o.String()
	if o.num == 0 {
		return Duration{}, parseErr(ErrInvalidDuration, token, "division by zero")
	}
	return bounded(d.num*o.den, d.den*o.num, token)
}

// Cmp returns -1, 0 or +1.
func (d Duration) Cmp(o Duration) int {
	l, r := d.num*o.den, o.num*d.den
	switch {
	case l < r:
		return -1
	case l > r:
		return 1
	}
	return 0
}

func (d Duration) String() string {
	if d.den == 1 {
		return strconv.FormatInt(d.num, 10)
	}
	return fmt.Sprintf("%d/%d", d.num, d.den)
}

// MarshalJSON writes the formatted text form, e.g. "3/2".
func (d Duration) MarshalJSON() ([]byte, error) {
	return json.Marshal(d.String())
}

// UnmarshalJSON accepts a JSON string ("3/2", "4") or number (4, 1.5).
func (d *Duration) UnmarshalJSON(data []byte) error {
	var text string
	if err := json.Unmarshal(data, &text); err == nil {
		parsed, err := ParseDuration(text)
		if err != nil {
			return err
		}
		*d = parsed
		return nil
	}

	var num json.Number
	if err := json.Unmarshal(data, &num); err != nil {
		return parseErr(ErrInvalidDuration, string(data), "duration must be a number or string")
	}
	parsed, err := parseDecimal(num.String())
	if err != nil {
		return err
	}
	*d = parsed
	return nil
}

func gcd(a, b int64) int64 {
	for b != 0 {
		a, b = b, a%b
	}
	return a
}

func lcm(a, b int64) int64 {
	return a / gcd(a, b) * b
}

func abs(n int64) int64 {
	if n < 0 {
		return -n
	}
	return n
}
