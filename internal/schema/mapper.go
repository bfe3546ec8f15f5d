package schema

import (
	"sort"
	"time"

	"github.com/tradeops/formscan/internal/extract"
)

// requestDateLayout stamps the record with the processing date. The legacy
// system formatted this with a five-digit year placeholder; that was a
// formatting defect, corrected here to a standard four-digit year.
const requestDateLayout = "01/02/2006"

// Mapper runs the schema rules for a form type against raw OCR text and
// assembles the extracted record. It holds no mutable state and is safe for
// concurrent use.
type Mapper struct {
	rules map[string][]FieldRule
	now   func() time.Time
}

// NewMapper creates a mapper over the default rule table.
func NewMapper() *Mapper {
	return &Mapper{
		rules: getDefaultRules(),
		now:   time.Now,
	}
}

// Map extracts all declared fields from ocrText for the given form-type
// code. Unknown codes yield a record with every field at the not-found
// sentinel; the request date is always stamped with the current date.
func (m *Mapper) Map(ocrText, formType string) Fields {
	fields := NewFields()
	fields.RequestDate = m.now().Format(requestDateLayout)

	for _, rule := range m.rules[formType] {
		fields.set(rule.Field, applyRule(rule, ocrText))
	}
	return fields
}

// KnownTypes returns the supported form-type codes in sorted order.
func (m *Mapper) KnownTypes() []string {
	types := make([]string, 0, len(m.rules))
	for code := range m.rules {
		types = append(types, code)
	}
	sort.Strings(types)
	return types
}

// Supports reports whether a rule set exists for the form-type code.
func (m *Mapper) Supports(formType string) bool {
	_, ok := m.rules[formType]
	return ok
}

// applyRule dispatches a single rule to its extraction primitive.
func applyRule(rule FieldRule, text string) string {
	switch rule.Strategy {
	case StrategyConstant:
		return rule.Constant
	case StrategyTagSpan:
		return extract.Span(text, rule.StartTag, rule.EndTag)
	case StrategyCheckbox:
		return extract.Resolve(text, rule.StartTag, rule.EndTag, rule.Boundary)
	case StrategyRegex:
		span := extract.Span(text, rule.SourceStart, rule.SourceEnd)
		value := extract.FindLast(span, rule.Pattern, rule.TrimPrefix)
		if rule.Placeholder != "" && value == rule.Placeholder {
			// The marked option was the free-text one; the real answer
			// follows it inside the same span.
			value = extract.Span(span, rule.FallbackStart, rule.FallbackEnd)
		}
		return value
	}
	return extract.NotFound
}
