package schema

import "regexp"

// Form-type codes supported by the baseline rule table.
const (
	FormTypeTradeCorrection  = "01721"
	FormTypeBondCorrection   = "01848"
	FormTypeCancelCorrection = "02050"
)

// Checkbox boundary expressions. OCR renders a marked checkbox as one of a
// handful of short tokens; a line is cut immediately before each token
// (first capture group) so every option becomes its own candidate. Longer
// tokens are listed first because RE2 alternation prefers earlier branches.
var (
	reasonBoundary = regexp.MustCompile(`\s((?:OQ|wy|w|y|O) )`)
	orderBoundary  = regexp.MustCompile(`\s((?:Cf|O|Y|&) )`)

	// An origin-of-error answer appears as an ampersand-style marker glued
	// to the option word; the trailing occurrence is authoritative.
	originPattern = regexp.MustCompile(`&Y\s?\w+|&\s?\w+`)
	originTrim    = regexp.MustCompile(`^&Y\s*|^&\s*`)
)

// getDefaultRules returns the rule table for the supported form layouts,
// keyed by form-type code. The table is constructed once at startup and
// never mutated.
func getDefaultRules() map[string][]FieldRule {
	return map[string][]FieldRule{
		FormTypeTradeCorrection: {
			{Field: FieldCUSIP, Strategy: StrategyTagSpan, StartTag: "CUSIP:", EndTag: "Security Description:"},
			{Field: FieldSecurityDescription, Strategy: StrategyTagSpan, StartTag: "Security Description:", EndTag: "Trade Date:"},
			{Field: FieldTradeDate, Strategy: StrategyTagSpan, StartTag: "Trade Date:", EndTag: "Settlement Date:"},
			{Field: FieldSettlementDate, Strategy: StrategyTagSpan, StartTag: "Settlement Date:", EndTag: "Order Type:"},
			{Field: FieldQuantity, Strategy: StrategyTagSpan, StartTag: "Quantity: (shares)", EndTag: "Price:"},
			{Field: FieldPrice, Strategy: StrategyTagSpan, StartTag: "Price:", EndTag: "Commission:"},
			{Field: FieldRequestType, Strategy: StrategyConstant, Constant: "Correction"},
			{
				Field: FieldReasonForCorrection, Strategy: StrategyCheckbox,
				StartTag: "Request Date", EndTag: "Origin of Error:", Boundary: reasonBoundary,
			},
			{
				Field: FieldOriginOfError, Strategy: StrategyRegex,
				SourceStart: "Origin of Error:", SourceEnd: "Charge fee to:",
				Pattern: originPattern, TrimPrefix: originTrim,
				Placeholder: "other", FallbackStart: "other", FallbackEnd: "Charge fee to:",
			},
			{
				Field: FieldOrderType, Strategy: StrategyCheckbox,
				StartTag: "Order Type:", EndTag: "Quantity:", Boundary: orderBoundary,
			},
		},

		FormTypeBondCorrection: {
			{Field: FieldCUSIP, Strategy: StrategyTagSpan, StartTag: "CUSIP/Symbol:", EndTag: "Security Description:"},
			{Field: FieldSecurityDescription, Strategy: StrategyTagSpan, StartTag: "Security Description:", EndTag: "BondDesk"},
			{Field: FieldTradeDate, Strategy: StrategyTagSpan, StartTag: "Trade Date:", EndTag: "Settle Date:"},
			{Field: FieldSettlementDate, Strategy: StrategyTagSpan, StartTag: "Settle Date:", EndTag: "Order Type:"},
			{Field: FieldQuantity, Strategy: StrategyTagSpan, StartTag: "Quantity:", EndTag: "Price:"},
			{Field: FieldPrice, Strategy: StrategyTagSpan, StartTag: "Price:", EndTag: "Commission:"},
			{Field: FieldRequestType, Strategy: StrategyTagSpan, StartTag: "Request Type:", EndTag: "Reason for Correction"},
			{Field: FieldOriginOfError, Strategy: StrategyTagSpan, StartTag: "Origin of Error:", EndTag: "Charge Loss/Fee To:"},
			{
				Field: FieldReasonForCorrection, Strategy: StrategyCheckbox,
				StartTag: "Request Date", EndTag: "Origin of Error:", Boundary: reasonBoundary,
			},
			{
				Field: FieldOrderType, Strategy: StrategyCheckbox,
				StartTag: "Order Type:", EndTag: "Quantity:", Boundary: orderBoundary,
			},
		},

		FormTypeCancelCorrection: {
			{Field: FieldCUSIP, Strategy: StrategyTagSpan, StartTag: "CUSIP/Symbol:", EndTag: "Original Price:"},
			{Field: FieldTradeDate, Strategy: StrategyTagSpan, StartTag: "Trade Date:", EndTag: "Trade Number:"},
			{Field: FieldQuantity, Strategy: StrategyTagSpan, StartTag: "Amount:", EndTag: "Order Type:"},
			{Field: FieldPrice, Strategy: StrategyTagSpan, StartTag: "Original Price:", EndTag: "Trade Date:"},
			{Field: FieldReasonForCorrection, Strategy: StrategyConstant, Constant: "Failed to cancel order"},
			{Field: FieldRequestType, Strategy: StrategyTagSpan, StartTag: "Type of Request:", EndTag: "Origin of Error By:"},
			{Field: FieldOriginOfError, Strategy: StrategyTagSpan, StartTag: "Origin of Error By:", EndTag: "Charge Loss To:"},
			{Field: FieldOrderType, Strategy: StrategyTagSpan, StartTag: "Order Type:", EndTag: "Original To CUSIP"},
		},
	}
}
