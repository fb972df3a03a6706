package builtins

import (
	"errors"
	"math"
	"strconv"
	"strings"
	"unicode"
)

// Atoi leniently parses the leading integer of s.
//
// It takes the first whitespace-delimited token, cuts it at the first
// letter, then cuts it at the first non-alphanumeric character after the
// sign position. Out of range values clamp to the int64 extrema. A token
// that still is not an integer is parsed as a float and rounded. Anything
// else yields 0.
//
//	Atoi(" 42 apples") == 42
//	Atoi("42.42")      == 42
//	Atoi("-7px")       == -7
//	Atoi(".5")         == 1
//	Atoi("n/a")        == 0
func Atoi(s string) int64 {
	token := strings.TrimSpace(s)
	if i := strings.IndexFunc(token, unicode.IsSpace); i >= 0 {
		token = token[:i]
	}
	if i := strings.IndexFunc(token, unicode.IsLetter); i >= 0 {
		token = token[:i]
	}
	for i, r := range token {
		if i == 0 {
			continue
		}
		if !unicode.IsLetter(r) && !unicode.IsDigit(r) {
			token = token[:i]
			break
		}
	}
	if token == "" {
		return 0
	}

	n, err := strconv.ParseInt(token, 10, 64)
	if err == nil {
		return n
	}
	if errors.Is(err, strconv.ErrRange) {
		// ParseInt already clamped to the nearest extreme.
		return n
	}

	f, err := strconv.ParseFloat(token, 64)
	if err != nil {
		return 0
	}
	return saturate(math.Round(f))
}

// saturate converts f to int64, truncating toward zero and clamping at
// the int64 extrema. NaN converts to 0.
func saturate(f float64) int64 {
	switch {
	case math.IsNaN(f):
		return 0
	case f >= math.MaxInt64:
		return math.MaxInt64
	case f <= math.MinInt64:
		return math.MinInt64
	default:
		return int64(f)
	}
}
