package schema

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestGetDefaultRules_FormTypes(t *testing.T) {
	rules := getDefaultRules()

	assert.Len(t, rules, 3)
	assert.Contains(t, rules, FormTypeTradeCorrection)
	assert.Contains(t, rules, FormTypeBondCorrection)
	assert.Contains(t, rules, FormTypeCancelCorrection)
}

func TestGetDefaultRules_FieldCoverage(t *testing.T) {
	tests := []struct {
		name           string
		formType       string
		expectedFields []Field
	}{
		{
			name:     "trade_correction_layout",
			formType: FormTypeTradeCorrection,
			expectedFields: []Field{
				FieldCUSIP, FieldSecurityDescription, FieldTradeDate,
				FieldSettlementDate, FieldQuantity, FieldPrice,
				FieldRequestType, FieldReasonForCorrection,
				FieldOriginOfError, FieldOrderType,
			},
		},
		{
			name:     "bond_correction_layout",
			formType: FormTypeBondCorrection,
			expectedFields: []Field{
				FieldCUSIP, FieldSecurityDescription, FieldTradeDate,
				FieldSettlementDate, FieldQuantity, FieldPrice,
				FieldRequestType, FieldReasonForCorrection,
				FieldOriginOfError, FieldOrderType,
			},
		},
		{
			name:     "cancel_correction_layout",
			formType: FormTypeCancelCorrection,
			expectedFields: []Field{
				FieldCUSIP, FieldTradeDate, FieldQuantity, FieldPrice,
				FieldReasonForCorrection, FieldRequestType,
				FieldOriginOfError, FieldOrderType,
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rules := getDefaultRules()[tt.formType]

			covered := make(map[Field]bool)
			for _, rule := range rules {
				assert.False(t, covered[rule.Field], "field %s declared twice", rule.Field)
				covered[rule.Field] = true
			}
			for _, field := range tt.expectedFields {
				assert.True(t, covered[field], "field %s has no rule", field)
			}
			assert.Len(t, rules, len(tt.expectedFields))
		})
	}
}

func TestGetDefaultRules_ConstantValues(t *testing.T) {
	rules := getDefaultRules()

	for _, rule := range rules[FormTypeTradeCorrection] {
		if rule.Field == FieldRequestType {
			assert.Equal(t, StrategyConstant, rule.Strategy)
			assert.Equal(t, "Correction", rule.Constant)
		}
	}
	for _, rule := range rules[FormTypeCancelCorrection] {
		if rule.Field == FieldReasonForCorrection {
			assert.Equal(t, StrategyConstant, rule.Strategy)
			assert.Equal(t, "Failed to cancel order", rule.Constant)
		}
	}
}

func TestGetDefaultRules_ReturnsFreshCopies(t *testing.T) {
	first := getDefaultRules()
	first[FormTypeTradeCorrection] = nil

	second := getDefaultRules()
	assert.NotEmpty(t, second[FormTypeTradeCorrection], "rule table must not share state between calls")
}
