package grammar

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseDuration_Canonical(t *testing.T) {
	tests := []struct {
		input    string
		expected string
	}{
		{"4", "4"},
		{"2/4", "1/2"},
		{"3/2", "3/2"},
		{"6/3", "2"},
		{" 5 / 10 ", "1/2"},
		{"-2/4", "-1/2"},
		{"0/7", "0"},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			d, err := ParseDuration(tt.input)
			require.NoError(t, err)
			assert.Equal(t, tt.expected, d.String())

			again, err := ParseDuration(d.String())
			require.NoError(t, err)
			assert.Equal(t, d, again)
		})
	}
}

func TestParseDuration_Invalid(t *testing.T) {
	for _, input := range []string{"", "x", "1/0", "1/-2", "1.5", "3/", "/2", "1/2/3"} {
		t.Run(input, func(t *testing.T) {
			_, err := ParseDuration(input)
			require.Error(t, err)
			assert.ErrorIs(t, err, ErrInvalidDuration)

			var pe *ParseError
			require.ErrorAs(t, err, &pe)
			assert.Equal(t, input, pe.Token)
		})
	}
}

func TestDuration_Half(t *testing.T) {
	tests := []struct {
		input    Duration
		expected string
	}{
		{Whole(4), "2"},
		{Whole(3), "3/2"},
		{Whole(1), "1/2"},
		{mustDuration(t, "3/2"), "3/4"},
		{mustDuration(t, "2/3"), "1/3"},
	}

	for _, tt := range tests {
		t.Run(tt.input.String(), func(t *testing.T) {
			half, err := tt.input.Half()
			require.NoError(t, err)
			assert.Equal(t, tt.expected, half.String())

			sum, err := half.Add(half)
			require.NoError(t, err)
			assert.Equal(t, tt.input, sum, "two halves must sum to the original")
		})
	}
}

func TestDuration_Arithmetic(t *testing.T) {
	a := mustDuration(t, "1/2")
	b := mustDuration(t, "1/3")

	sum, err := a.Add(b)
	require.NoError(t, err)
	assert.Equal(t, "5/6", sum.String())

	product, err := a.Mul(b)
	require.NoError(t, err)
	assert.Equal(t, "1/6", product.String())

	quotient, err := a.Div(b)
	require.NoError(t, err)
	assert.Equal(t, "3/2", quotient.String())

	_, err = a.Div(Whole(0))
	assert.ErrorIs(t, err, ErrInvalidDuration)
	assert.Equal(t, 1, a.Cmp(b))
	assert.Equal(t, -1, b.Cmp(a))
	assert.Equal(t, 0, a.Cmp(mustDuration(t, "2/4")))
	assert.True(t, a.IsPositive())
	assert.False(t, Whole(0).IsPositive())
	assert.False(t, Duration{}.IsValid())
}

func TestParseDuration_Bounds(t *testing.T) {
	tests := []struct {
		input    string
		expected string
	}{
		{"2147483647", "2147483647"},
		{"1/2147483647", "1/2147483647"},
		{"4294967294/2", "2147483647"},
		{"-2147483647", "-2147483647"},
	}
	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			d, err := ParseDuration(tt.input)
			require.NoError(t, err)
			assert.Equal(t, tt.expected, d.String())
		})
	}

	for _, input := range []string{
		"2147483648",
		"1/2147483648",
		"1/5000000000000000000",
		"10000000000",
		"-9223372036854775808",
	} {
		t.Run(input, func(t *testing.T) {
			_, err := ParseDuration(input)
			assert.ErrorIs(t, err, ErrInvalidDuration)
		})
	}
}

func TestDuration_ArithmeticOutOfRange(t *testing.T) {
	tiny, err := NewDuration(1, MaxDurationTerm)
	require.NoError(t, err)
	_, err = tiny.Half()
	assert.ErrorIs(t, err, ErrInvalidDuration)

	huge := Whole(MaxDurationTerm)
	_, err = huge.Add(One)
	assert.ErrorIs(t, err, ErrInvalidDuration)
	_, err = huge.Mul(Whole(2))
	assert.ErrorIs(t, err, ErrInvalidDuration)
	_, err = tiny.Div(Whole(2))
	assert.ErrorIs(t, err, ErrInvalidDuration)

	back, err := One.Div(tiny)
	require.NoError(t, err)
	assert.Equal(t, huge, back)

	assert.Equal(t, huge, Whole(1<<40), "Whole clamps to the representable range")
}

func TestNewDuration(t *testing.T) {
	d, err := NewDuration(6, -4)
	require.NoError(t, err)
	assert.Equal(t, int64(-3), d.Num())
	assert.Equal(t, int64(2), d.Den())

	_, err = NewDuration(1, 0)
	assert.ErrorIs(t, err, ErrInvalidDuration)
}

func TestDuration_JSON(t *testing.T) {
	tests := []struct {
		raw      string
		expected string
	}{
		{`"3/2"`, "3/2"},
		{`4`, "4"},
		{`1.5`, "3/2"},
		{`0.25`, "1/4"},
		{`"8/4"`, "2"},
	}

	for _, tt := range tests {
		t.Run(tt.raw, func(t *testing.T) {
			var d Duration
			require.NoError(t, json.Unmarshal([]byte(tt.raw), &d))
			assert.Equal(t, tt.expected, d.String())
		})
	}

	out, err := json.Marshal(mustDuration(t, "6/4"))
	require.NoError(t, err)
	assert.JSONEq(t, `"3/2"`, string(out))

	var d Duration
	assert.Error(t, json.Unmarshal([]byte(`true`), &d))
	assert.Error(t, json.Unmarshal([]byte(`"1/0"`), &d))
}

func mustDuration(t *testing.T, text string) Duration {
	t.Helper()
	d, err := ParseDuration(text)
	require.NoError(t, err)
	return d
}
