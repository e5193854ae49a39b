package summary

import (
	"strings"
)

// ExtractJSON returns the text from the first '{' to the last '}' inclusive. Without a
// closing brace it returns everything from the first '{'. ok is false when there is
// no '{' at all.
func ExtractJSON(raw string) (candidate string, ok bool) {
	start := strings.Index(raw, "{")
	if start < 0 {
		return "", false
	}
	end := strings.LastIndex(raw, "}")
	if end < start {
		return raw[start:], true
	}
	return raw[start : end+1], true
}

// RepairJSON closes a truncated JSON document. An odd number of double quotes means
// the tail is an unterminated string, which is cut at the last quote. A dangling
// trailing comma or object key is dropped, then unclosed '{' and '[' are closed in
// reverse order of opening.
func RepairJSON(s string) string {
	s = strings.TrimSpace(s)

	if strings.Count(s, `"`)%2 != 0 {
		s = strings.TrimSpace(s[:strings.LastIndex(s, `"`)])
	}

	s = dropDanglingKey(s)
	s = strings.TrimSuffix(s, ",")

	var closers []byte
	for i := 0; i < len(s); i++ {
		switch s[i] {
		case '{':
			closers = append(closers, '}')
		case '[':
			closers = append(closers, ']')
		case '}', ']':
			if n := len(closers); n > 0 && closers[n-1] == s[i] {
				closers = closers[:n-1]
			}
		}
	}

	var b strings.Builder
	b.Grow(len(s) + len(closers))
	b.WriteString(s)
	for i := len(closers) - 1; i >= 0; i-- {
		b.WriteByte(closers[i])
	}
	return b.String()
}

// dropDanglingKey removes a trailing `"key":` left behind when a value was cut off
func dropDanglingKey(s string) string {
	if !strings.HasSuffix(s, ":") {
		return s
	}
	key := strings.TrimSpace(strings.TrimSuffix(s, ":"))
	if !strings.HasSuffix(key, `"`) {
		return s
	}
	open := strings.LastIndex(key[:len(key)-1], `"`)
	if open < 0 {
		return s
	}
	return strings.TrimSpace(key[:open])
}
