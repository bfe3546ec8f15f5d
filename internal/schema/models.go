// Package schema declares the per-form-type extraction rules and the mapper
// that turns raw OCR text into a structured field record. Rule sets are data,
// not code paths: supporting a new form layout means adding a schema entry.
package schema

import (
	"regexp"

	"github.com/tradeops/formscan/internal/extract"
)

// Strategy selects which extraction primitive a rule uses.
type Strategy string

const (
	// StrategyTagSpan extracts the literal span between two tags.
	StrategyTagSpan Strategy = "tag_span"
	// StrategyCheckbox resolves which of several marked options was selected.
	StrategyCheckbox Strategy = "checkbox"
	// StrategyRegex keeps the last regex match within a tag-delimited span.
	StrategyRegex Strategy = "regex"
	// StrategyConstant writes a fixed value.
	StrategyConstant Strategy = "constant"
)

// Field names an output slot in the extracted record.
type Field string

const (
	FieldCUSIP               Field = "cusip"
	FieldSecurityDescription Field = "securityDescription"
	FieldTradeDate           Field = "tradeDate"
	FieldSettlementDate      Field = "settlementDate"
	FieldQuantity            Field = "quantity"
	FieldPrice               Field = "price"
	FieldRequestType         Field = "requestType"
	FieldOriginOfError       Field = "originOfError"
	FieldReasonForCorrection Field = "reasonForCorrection"
	FieldOrderType           Field = "orderType"
)

// FieldRule binds one output field to one extraction strategy and its
// parameters. Exactly one strategy applies per rule; unused parameters stay
// zero.
type FieldRule struct {
	Field    Field
	Strategy Strategy

	// Tag span and checkbox parameters.
	StartTag string
	EndTag   string

	// Checkbox boundary expression; its first capture group covers the
	// marker token so lines can be cut immediately before it.
	Boundary *regexp.Regexp

	// Regex extraction parameters. The pattern scans the span between
	// SourceStart and SourceEnd. When the stripped result equals
	// Placeholder, the value is re-extracted from the same span via the
	// fallback tag pair (free-text answers behind an "other" option).
	SourceStart   string
	SourceEnd     string
	Pattern       *regexp.Regexp
	TrimPrefix    *regexp.Regexp
	Placeholder   string
	FallbackStart string
	FallbackEnd   string

	// Constant value.
	Constant string
}

// Fields is the structured record extracted from one scanned form. Every
// field defaults to the extract.NotFound sentinel so callers can tell a
// failed extraction from a legitimately empty value.
type Fields struct {
	CUSIP               string `json:"cusip"`
	SecurityDescription string `json:"securityDescription"`
	TradeDate           string `json:"tradeDate"`
	SettlementDate      string `json:"settlementDate"`
	Quantity            string `json:"quantity"`
	Price               string `json:"price"`
	RequestType         string `json:"requestType"`
	OriginOfError       string `json:"originOfError"`
	ReasonForCorrection string `json:"reasonForCorrection"`
	OrderType           string `json:"orderType"`
	RequestDate         string `json:"requestDate"`
}

// NewFields returns a record with every field at the not-found sentinel.
func NewFields() Fields {
	return Fields{
		CUSIP:               extract.NotFound,
		SecurityDescription: extract.NotFound,
		TradeDate:           extract.NotFound,
		SettlementDate:      extract.NotFound,
		Quantity:            extract.NotFound,
		Price:               extract.NotFound,
		RequestType:         extract.NotFound,
		OriginOfError:       extract.NotFound,
		ReasonForCorrection: extract.NotFound,
		OrderType:           extract.NotFound,
		RequestDate:         extract.NotFound,
	}
}

// set writes a value into the named field. Unknown names are ignored;
// RequestDate is process-time metadata and is stamped by the mapper, not by
// rules.
func (f *Fields) set(field Field, value string) {
	switch field {
	case FieldCUSIP:
		f.CUSIP = value
	case FieldSecurityDescription:
		f.SecurityDescription = value
	case FieldTradeDate:
		f.TradeDate = value
	case FieldSettlementDate:
		f.SettlementDate = value
	case FieldQuantity:
		f.Quantity = value
	case FieldPrice:
		f.Price = value
	case FieldRequestType:
		f.RequestType = value
	case FieldOriginOfError:
		f.OriginOfError = value
	case FieldReasonForCorrection:
		f.ReasonForCorrection = value
	case FieldOrderType:
		f.OrderType = value
	}
}
