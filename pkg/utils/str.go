package utils

import (
	"regexp"
	"strings"
)

// FirstNonEmpty returns the first non-empty string of the two
func FirstNonEmpty(str1, str2 string) string {
	if str1 != "" {
		return str1
	}
	return str2
}

// SplitAndTrim splits s by any of the given delimiters and drops empty parts
func SplitAndTrim(s string, delimiters ...string) []string {
	if s == "" {
		return nil
	}
	if len(delimiters) == 0 {
		return []string{s}
	}
	delimiterPattern := "[" + regexp.QuoteMeta(strings.Join(delimiters, "")) + "]"
	re := regexp.MustCompile(delimiterPattern)
	parts := re.Split(s, -1)
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}
