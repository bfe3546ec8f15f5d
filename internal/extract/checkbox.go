package extract

import (
	"regexp"
	"strings"
)

// dateLine matches lines that are exactly a form timestamp, which OCR places
// inside the checkbox region but which never carry option text.
var dateLine = regexp.MustCompile(`^\d{1,2}/\d{1,2}/\d{4}$`)

// markerPrefixes are the short tokens OCR recovers in place of a marked
// checkbox glyph. Ordered most specific first so that a candidate starting
// with "wy" is never classified under "w" or "y".
var markerPrefixes = []string{"wy", "w", "y", "Y", "Cf", "&"}

// Candidate is a text fragment cut from a checkbox region, tagged with the
// marker prefix it starts with.
type Candidate struct {
	Text   string
	Marker string
}

// Resolve recovers which single option was marked within the span delimited
// by startTag and endTag. The boundary expression locates marker tokens in a
// line; its first capture group must cover the token so the line can be cut
// immediately before it. Duplicated candidate text is collapsed to its first
// occurrence and the first surviving candidate in reading order wins. The
// result is the candidate with its marker prefix stripped and trimmed, or an
// empty string when no option was marked. Resolve never fails: malformed
// text, absent tags and unmarked regions all yield the empty string.
func Resolve(text, startTag, endTag string, boundary *regexp.Regexp) string {
	candidates := Candidates(text, startTag, endTag, boundary)
	if len(candidates) == 0 {
		return ""
	}
	first := candidates[0]
	return strings.TrimSpace(strings.TrimPrefix(first.Text, first.Marker))
}

// Candidates returns every marker-prefixed fragment found in the checkbox
// span, in reading order, with exact duplicates removed. Fragments that do
// not start with a known marker are plain label text and are discarded.
func Candidates(text, startTag, endTag string, boundary *regexp.Regexp) []Candidate {
	span := Span(text, startTag, endTag)
	if span == NotFound {
		return nil
	}

	var out []Candidate
	seen := make(map[string]bool)
	for _, line := range strings.Split(span, "\n") {
		if dateLine.MatchString(strings.TrimSpace(line)) {
			continue
		}
		for _, segment := range splitBeforeMarkers(line, boundary) {
			segment = strings.TrimSpace(segment)
			if segment == "" || seen[segment] {
				continue
			}
			marker := classify(segment)
			if marker == "" {
				continue
			}
			seen[segment] = true
			out = append(out, Candidate{Text: segment, Marker: marker})
		}
	}
	return out
}

// splitBeforeMarkers cuts line at the start of the boundary expression's
// first capture group, so each marker token begins a new segment. The
// whitespace consumed by the match stays attached to the previous segment
// and is removed when segments are trimmed.
func splitBeforeMarkers(line string, boundary *regexp.Regexp) []string {
	matches := boundary.FindAllStringSubmatchIndex(line, -1)
	if len(matches) == 0 {
		return []string{line}
	}

	var segments []string
	prev := 0
	for _, m := range matches {
		cut := m[0]
		if len(m) >= 4 && m[2] >= 0 {
			cut = m[2]
		}
		if cut > prev {
			segments = append(segments, line[prev:cut])
		}
		prev = cut
	}
	segments = append(segments, line[prev:])
	return segments
}

// classify returns the marker prefix a candidate starts with, or an empty
// string when it matches none of the known markers.
func classify(candidate string) string {
	for _, prefix := range markerPrefixes {
		if strings.HasPrefix(candidate, prefix) {
			return prefix
		}
	}
	return ""
}
