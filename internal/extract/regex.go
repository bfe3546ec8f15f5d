package extract

import (
	"regexp"
	"strings"
)

// FindLast scans text for all matches of pattern and keeps only the last one.
// Forms sometimes repeat a marker and the final occurrence is the
// authoritative one, so earlier matches are discarded. The first occurrence
// of trimPrefix is stripped from the retained match and surrounding
// whitespace is trimmed. Returns an empty string when nothing matches.
func FindLast(text string, pattern, trimPrefix *regexp.Regexp) string {
	matches := pattern.FindAllString(text, -1)
	if len(matches) == 0 {
		return ""
	}
	return StripPrefix(matches[len(matches)-1], trimPrefix)
}

// StripPrefix removes the first occurrence of prefix from s and trims
// whitespace. If prefix does not match, s is returned trimmed.
func StripPrefix(s string, prefix *regexp.Regexp) string {
	if loc := prefix.FindStringIndex(s); loc != nil {
		s = s[:loc[0]] + s[loc[1]:]
	}
	return strings.TrimSpace(s)
}
