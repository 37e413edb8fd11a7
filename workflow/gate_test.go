package workflow

import (
	"testing"

	"github.com/Ruzakiff/wealthtogether/models"
	"github.com/shopspring/decimal"
)

func testSettings(enabled bool) *models.ApprovalSettings {
	return &models.ApprovalSettings{
		ID:                        "settings-1",
		CoupleId:                  "couple-1",
		Enabled:                   &enabled,
		BudgetCreationThreshold:   decimal.NewFromInt(500),
		BudgetUpdateThreshold:     decimal.NewFromInt(200),
		GoalAllocationThreshold:   decimal.NewFromInt(500),
		GoalReallocationThreshold: decimal.NewFromInt(300),
		AutoRuleThreshold:         decimal.NewFromInt(300),
		ApprovalExpirationHours:   72,
	}
}

func TestRequiresApproval_DisabledGatesNothing(t *testing.T) {
	settings := testSettings(false)
	actions := []models.ApprovalActionType{
		models.ApprovalActionBudgetCreate,
		models.ApprovalActionBudgetUpdate,
		models.ApprovalActionGoalCreate,
		models.ApprovalActionGoalUpdate,
		models.ApprovalActionAllocation,
		models.ApprovalActionReallocation,
		models.ApprovalActionAutoRuleCreate,
		models.ApprovalActionAutoRuleUpdate,
		models.ApprovalActionType("something_new"),
	}
	for _, action := range actions {
		if RequiresApprovalWithSettings(settings, action, decimal.NewFromInt(1000000)) {
			t.Errorf("disabled settings must not gate %s", action)
		}
	}
}

func TestRequiresApproval_ThresholdBoundary(t *testing.T) {
	settings := testSettings(true)

	cases := []struct {
		name   string
		action models.ApprovalActionType
		amount string
		want   bool
	}{
		{"budget create below", models.ApprovalActionBudgetCreate, "499.99", false},
		{"budget create at boundary", models.ApprovalActionBudgetCreate, "500.00", true},
		{"budget create above", models.ApprovalActionBudgetCreate, "500.01", true},
		{"budget update below", models.ApprovalActionBudgetUpdate, "199.99", false},
		{"budget update at boundary", models.ApprovalActionBudgetUpdate, "200", true},
		{"allocation below", models.ApprovalActionAllocation, "499.99", false},
		{"allocation at boundary", models.ApprovalActionAllocation, "500", true},
		{"reallocation below", models.ApprovalActionReallocation, "299.99", false},
		{"reallocation at boundary", models.ApprovalActionReallocation, "300", true},
		{"auto rule zero amount", models.ApprovalActionAutoRuleCreate, "0", false},
		{"auto rule update zero amount", models.ApprovalActionAutoRuleUpdate, "0", false},
	}
	for _, tc := range cases {
		amount, err := decimal.NewFromString(tc.amount)
		if err != nil {
			t.Fatalf("%s: bad amount %q", tc.name, tc.amount)
		}
		got := RequiresApprovalWithSettings(settings, tc.action, amount)
		if got != tc.want {
			t.Errorf("%s: got %v, want %v", tc.name, got, tc.want)
		}
	}
}

func TestRequiresApproval_UnmappedActionFailsSafe(t *testing.T) {
	settings := testSettings(true)

	if !RequiresApprovalWithSettings(settings, models.ApprovalActionGoalCreate, decimal.NewFromInt(1)) {
		t.Error("goal create has no mapped threshold and must require approval")
	}
	if !RequiresApprovalWithSettings(settings, models.ApprovalActionGoalUpdate, decimal.Zero) {
		t.Error("goal update has no mapped threshold and must require approval")
	}
	if !RequiresApprovalWithSettings(settings, models.ApprovalActionType("future_action"), decimal.Zero) {
		t.Error("unknown action types must require approval")
	}
}

func TestRequiresApproval_ZeroThresholdAlwaysGates(t *testing.T) {
	settings := testSettings(true)
	settings.AutoRuleThreshold = decimal.Zero

	if !RequiresApprovalWithSettings(settings, models.ApprovalActionAutoRuleCreate, decimal.Zero) {
		t.Error("zero threshold must gate even zero-amount actions")
	}
}

func TestRequiresApproval_NilSettings(t *testing.T) {
	if RequiresApprovalWithSettings(nil, models.ApprovalActionAllocation, decimal.NewFromInt(1000)) {
		t.Error("nil settings must not gate")
	}
}
