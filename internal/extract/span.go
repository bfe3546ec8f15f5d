// Package extract provides the text extraction primitives used to recover
// named fields from OCR output of scanned correction-request forms. All
// functions are pure: they never mutate their input and never fail on
// malformed text.
package extract

import "strings"

// NotFound is the sentinel returned when an expected tag is absent from the
// scanned text. Callers use it to distinguish a failed extraction from a
// field that is legitimately empty.
const NotFound = "Not Found"

// Span returns the trimmed substring of text between the first occurrence of
// startTag and the first occurrence of endTag after it. Both tags are matched
// as literal, case-sensitive strings. If startTag is absent, Span returns
// NotFound. If endTag is absent after startTag, the span extends to the end
// of text.
func Span(text, startTag, endTag string) string {
	start := strings.Index(text, startTag)
	if start == -1 {
		return NotFound
	}
	start += len(startTag)

	end := strings.Index(text[start:], endTag)
	if end == -1 {
		return strings.TrimSpace(text[start:])
	}
	return strings.TrimSpace(text[start : start+end])
}
