package util

import (
	"regexp"
	"strings"
	"unicode/utf8"
)

var ansiEscape = regexp.MustCompile(`\x1b\[[0-9;?]*[ -/]*[@-~]`)

// SplitCommaSeparated splits a comma-separated string and trims whitespace from each element.
// Empty input returns nil.
func SplitCommaSeparated(s string) []string {
	if s == "" {
		return nil
	}
	parts := strings.Split(s, ",")
	result := make([]string, 0, len(parts))
	for _, p := range parts {
		p = strings.TrimSpace(p)
		if p != "" {
			result = append(result, p)
		}
	}
	return result
}

// CutLabel reports whether s starts with label and, if so, returns the rest
// with surrounding whitespace removed.
func CutLabel(s, label string) (string, bool) {
	rest, ok := strings.CutPrefix(s, label)
	if !ok {
		return "", false
	}
	return strings.TrimSpace(rest), true
}

// AfterColon returns the trimmed text after the first colon in s, or "" when
// s has no colon.
func AfterColon(s string) string {
	_, after, ok := strings.Cut(s, ":")
	if !ok {
		return ""
	}
	return strings.TrimSpace(after)
}

// IsBlank reports whether s contains only whitespace.
func IsBlank(s string) bool {
	return strings.TrimSpace(s) == ""
}

// StripANSI removes terminal escape sequences (colours, cursor movement).
func StripANSI(s string) string {
	return ansiEscape.ReplaceAllString(s, "")
}

// VisibleWidth is the number of runes s occupies on a terminal, ignoring
// escape sequences.
func VisibleWidth(s string) int {
	return utf8.RuneCountInString(StripANSI(s))
}
