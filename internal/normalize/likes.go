package normalize

import (
	"encoding/json"
	"math"
	"regexp"
	"strconv"
	"strings"
)

var leadingNumber = regexp.MustCompile(`^(\d*)(?:\.(\d+))?`)

// ParseLikes converts a like count that may be numeric or a human-readable magnitude
// ("1.2k", "3m") into an exact non-negative integer. Unparseable values yield 0.
func ParseLikes(v interface{}) int {
	switch val := v.(type) {
	case nil:
		return 0
	case int:
		return nonNegative(int64(val))
	case int32:
		return nonNegative(int64(val))
	case int64:
		return nonNegative(val)
	case float32:
		return fromFloat(float64(val))
	case float64:
		return fromFloat(val)
	case json.Number:
		if n, err := val.Int64(); err == nil {
			return nonNegative(n)
		}
		if f, err := val.Float64(); err == nil {
			return fromFloat(f)
		}
		return 0
	case string:
		return parseLikesString(val)
	default:
		return 0
	}
}

func parseLikesString(s string) int {
	s = strings.ToLower(strings.TrimSpace(s))
	if s == "" {
		return 0
	}

	switch {
	case strings.Contains(s, "k"):
		return scaleDecimal(s, 3)
	case strings.Contains(s, "m"):
		return scaleDecimal(s, 6)
	}

	n, err := strconv.ParseInt(s, 10, 64)
	if err != nil {
		return 0
	}
	return nonNegative(n)
}

// scaleDecimal multiplies the leading decimal number of s by 10^exp using digit
// arithmetic, so "1.2" with exp 3 is exactly 1200. Extra fraction digits are truncated.
func scaleDecimal(s string, exp int) int {
	m := leadingNumber.FindStringSubmatch(s)
	if m == nil || (m[1] == "" && m[2] == "") {
		return 0
	}
	intPart, frac := m[1], m[2]
	if len(frac) > exp {
		frac = frac[:exp]
	}
	frac += strings.Repeat("0", exp-len(frac))

	digits := strings.TrimLeft(intPart+frac, "0")
	if digits == "" {
		return 0
	}
	n, err := strconv.ParseInt(digits, 10, 64)
	if err != nil {
		return 0
	}
	return nonNegative(n)
}

func fromFloat(f float64) int {
	if math.IsNaN(f) || math.IsInf(f, 0) || f <= 0 {
		return 0
	}
	if f >= math.MaxInt64 {
		return math.MaxInt
	}
	return int(f)
}

func nonNegative(n int64) int {
	if n < 0 {
		return 0
	}
	if n > math.MaxInt {
		return math.MaxInt
	}
	return int(n)
}
