package schema

import (
	"testing"
	"time"

	"github.com/tradeops/formscan/internal/extract"
)

func newTestMapper() *Mapper {
	return &Mapper{
		rules: getDefaultRules(),
		now: func() time.Time {
			return time.Date(2024, time.January, 15, 10, 30, 0, 0, time.UTC)
		},
	}
}

const tradeCorrectionText = `Trade Correction Request
Request Date
1/15/2024
O Misread order wy Wrong account y Duplicate entry
Origin of Error: & Branch noise &Y Trading desk Charge fee to: Branch
CUSIP: 123456789 Security Description: ACME CORP COMMON Trade Date: 01/10/2024 Settlement Date: 01/12/2024
Order Type: pad Y Sell Cf Cancel Rebill Quantity: (shares) 100 Price: 9.50 Commission: 0.00
`

func TestMapTradeCorrectionForm(t *testing.T) {
	mapper := newTestMapper()

	fields := mapper.Map(tradeCorrectionText, FormTypeTradeCorrection)

	checks := []struct {
		name     string
		got      string
		expected string
	}{
		{"cusip", fields.CUSIP, "123456789"},
		{"securityDescription", fields.SecurityDescription, "ACME CORP COMMON"},
		{"tradeDate", fields.TradeDate, "01/10/2024"},
		{"settlementDate", fields.SettlementDate, "01/12/2024"},
		{"quantity", fields.Quantity, "100"},
		{"price", fields.Price, "9.50"},
		{"requestType", fields.RequestType, "Correction"},
		{"reasonForCorrection", fields.ReasonForCorrection, "Wrong account"},
		{"originOfError", fields.OriginOfError, "Trading"},
		{"orderType", fields.OrderType, "Sell"},
		{"requestDate", fields.RequestDate, "01/15/2024"},
	}
	for _, check := range checks {
		if check.got != check.expected {
			t.Errorf("Field %s: expected %q, got %q", check.name, check.expected, check.got)
		}
	}
}

func TestMapOriginOfErrorOtherFallback(t *testing.T) {
	mapper := newTestMapper()
	text := "CUSIP: 987654321 Security Description: X\n" +
		"Origin of Error: O Branch & other Manual entry error Charge fee to: Branch\n"

	fields := mapper.Map(text, FormTypeTradeCorrection)

	if fields.OriginOfError != "Manual entry error" {
		t.Errorf("Expected free-text answer behind the other option, got %q", fields.OriginOfError)
	}
}

func TestMapBondCorrectionForm(t *testing.T) {
	mapper := newTestMapper()
	text := `Bond Correction Request
Request Type: Correction Reason for Correction
Request Date
wy Wrong yield
Origin of Error: Trading Desk Charge Loss/Fee To: Desk
CUSIP/Symbol: 912828XG8 Security Description: US TREASURY NOTE BondDesk
Trade Date: 02/01/2024 Settle Date: 02/03/2024
Order Type: x Cf Cancel Rebill Quantity: 50 Price: 99.875 Commission: 0.00
`

	fields := mapper.Map(text, FormTypeBondCorrection)

	if fields.CUSIP != "912828XG8" {
		t.Errorf("Expected CUSIP '912828XG8', got %q", fields.CUSIP)
	}
	if fields.SecurityDescription != "US TREASURY NOTE" {
		t.Errorf("Expected 'US TREASURY NOTE', got %q", fields.SecurityDescription)
	}
	if fields.SettlementDate != "02/03/2024" {
		t.Errorf("Expected settle date '02/03/2024', got %q", fields.SettlementDate)
	}
	if fields.RequestType != "Correction" {
		t.Errorf("Expected request type 'Correction', got %q", fields.RequestType)
	}
	if fields.OriginOfError != "Trading Desk" {
		t.Errorf("Expected origin 'Trading Desk', got %q", fields.OriginOfError)
	}
	if fields.ReasonForCorrection != "Wrong yield" {
		t.Errorf("Expected reason 'Wrong yield', got %q", fields.ReasonForCorrection)
	}
	if fields.OrderType != "Cancel Rebill" {
		t.Errorf("Expected order type 'Cancel Rebill', got %q", fields.OrderType)
	}
}

func TestMapCancelCorrectionForm(t *testing.T) {
	mapper := newTestMapper()
	text := `Cancel Request
Type of Request: Cancel Origin of Error By: Back Office Charge Loss To: Firm
CUSIP/Symbol: 459200101 Original Price: 142.50 Trade Date: 03/05/2024 Trade Number: 8841
Amount: 200 Order Type: Buy Original To CUSIP
`

	fields := mapper.Map(text, FormTypeCancelCorrection)

	if fields.CUSIP != "459200101" {
		t.Errorf("Expected CUSIP '459200101', got %q", fields.CUSIP)
	}
	if fields.Price != "142.50" {
		t.Errorf("Expected price '142.50', got %q", fields.Price)
	}
	if fields.TradeDate != "03/05/2024" {
		t.Errorf("Expected trade date '03/05/2024', got %q", fields.TradeDate)
	}
	if fields.Quantity != "200" {
		t.Errorf("Expected quantity '200', got %q", fields.Quantity)
	}
	if fields.RequestType != "Cancel" {
		t.Errorf("Expected request type 'Cancel', got %q", fields.RequestType)
	}
	if fields.OriginOfError != "Back Office" {
		t.Errorf("Expected origin 'Back Office', got %q", fields.OriginOfError)
	}
	if fields.ReasonForCorrection != "Failed to cancel order" {
		t.Errorf("Expected fixed cancel reason, got %q", fields.ReasonForCorrection)
	}
	if fields.OrderType != "Buy" {
		t.Errorf("Expected order type 'Buy', got %q", fields.OrderType)
	}

	// This layout declares no rules for these slots.
	if fields.SecurityDescription != extract.NotFound {
		t.Errorf("Expected %q for securityDescription, got %q", extract.NotFound, fields.SecurityDescription)
	}
	if fields.SettlementDate != extract.NotFound {
		t.Errorf("Expected %q for settlementDate, got %q", extract.NotFound, fields.SettlementDate)
	}
}

func TestMapUnknownFormType(t *testing.T) {
	mapper := newTestMapper()

	fields := mapper.Map(tradeCorrectionText, "99999")

	expected := NewFields()
	expected.RequestDate = "01/15/2024"
	if fields != expected {
		t.Errorf("Expected all fields at the sentinel with only the request date stamped, got %+v", fields)
	}
}

func TestMapStampsRequestDateEvenOnEmptyText(t *testing.T) {
	mapper := newTestMapper()

	fields := mapper.Map("", FormTypeTradeCorrection)

	if fields.RequestDate != "01/15/2024" {
		t.Errorf("Expected stamped request date, got %q", fields.RequestDate)
	}
	if fields.CUSIP != extract.NotFound {
		t.Errorf("Expected %q on empty text, got %q", extract.NotFound, fields.CUSIP)
	}
}

func TestKnownTypesSorted(t *testing.T) {
	types := NewMapper().KnownTypes()

	expected := []string{FormTypeTradeCorrection, FormTypeBondCorrection, FormTypeCancelCorrection}
	if len(types) != len(expected) {
		t.Fatalf("Expected %d form types, got %d", len(expected), len(types))
	}
	for i, code := range expected {
		if types[i] != code {
			t.Errorf("Expected types[%d] = %q, got %q", i, code, types[i])
		}
	}
}

func TestSupports(t *testing.T) {
	mapper := NewMapper()

	for _, code := range []string{FormTypeTradeCorrection, FormTypeBondCorrection, FormTypeCancelCorrection} {
		if !mapper.Supports(code) {
			t.Errorf("Expected form type %q to be supported", code)
		}
	}
	if mapper.Supports("12345") {
		t.Error("Expected unknown form type to be unsupported")
	}
}

func TestDefaultRulesWellFormed(t *testing.T) {
	for formType, rules := range getDefaultRules() {
		if len(rules) == 0 {
			t.Errorf("Form type %s has no rules", formType)
		}
		for _, rule := range rules {
			switch rule.Strategy {
			case StrategyTagSpan:
				if rule.StartTag == "" || rule.EndTag == "" {
					t.Errorf("Form %s field %s: tag span rule missing tags", formType, rule.Field)
				}
			case StrategyCheckbox:
				if rule.Boundary == nil {
					t.Errorf("Form %s field %s: checkbox rule missing boundary", formType, rule.Field)
				}
			case StrategyRegex:
				if rule.Pattern == nil || rule.TrimPrefix == nil {
					t.Errorf("Form %s field %s: regex rule missing expressions", formType, rule.Field)
				}
			case StrategyConstant:
				if rule.Constant == "" {
					t.Errorf("Form %s field %s: constant rule missing value", formType, rule.Field)
				}
			default:
				t.Errorf("Form %s field %s: unknown strategy %q", formType, rule.Field, rule.Strategy)
			}
		}
	}
}
