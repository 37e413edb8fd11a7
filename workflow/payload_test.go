package workflow

import (
	"errors"
	"testing"
	"time"

	"github.com/Ruzakiff/wealthtogether/models"
	"github.com/Ruzakiff/wealthtogether/utils"
	"github.com/shopspring/decimal"
)

func TestPayload_AllocationRoundTrip(t *testing.T) {
	in := &AllocationPayload{
		UserId:    "user-1",
		GoalId:    "goal-1",
		AccountId: "account-1",
		Amount:    decimal.RequireFromString("512.34"),
	}
	raw, err := EncodeActionPayload(in)
	if err != nil {
		t.Fatalf("encode: %v", err)
	}
	decoded, err := DecodeActionPayload(models.ApprovalActionAllocation, raw)
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	out, ok := decoded.(*AllocationPayload)
	if !ok {
		t.Fatalf("decoded wrong type %T", decoded)
	}
	if out.UserId != in.UserId || out.GoalId != in.GoalId || out.AccountId != in.AccountId {
		t.Errorf("identity fields lost: %+v", out)
	}
	if !out.Amount.Equal(in.Amount) {
		t.Errorf("amount changed: got %s want %s", out.Amount, in.Amount)
	}
}

func TestPayload_BudgetCreateRoundTrip(t *testing.T) {
	start := time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)
	in := &BudgetCreatePayload{Budget: models.NewBudget{
		CoupleId:   "couple-1",
		CategoryId: "category-1",
		Amount:     decimal.NewFromInt(600),
		Period:     models.BudgetPeriodMonthly,
		StartDate:  start,
	}}
	raw, err := EncodeActionPayload(in)
	if err != nil {
		t.Fatalf("encode: %v", err)
	}
	decoded, err := DecodeActionPayload(models.ApprovalActionBudgetCreate, raw)
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	out := decoded.(*BudgetCreatePayload)
	if out.Budget.CoupleId != "couple-1" || !out.Budget.StartDate.Equal(start) {
		t.Errorf("budget fields lost: %+v", out.Budget)
	}
}

func TestPayload_UpdateChangesKeepPartiality(t *testing.T) {
	newAmount := decimal.NewFromInt(900)
	in := &BudgetUpdatePayload{
		BudgetId: "budget-1",
		Changes:  models.BudgetUpdate{Amount: &newAmount},
	}
	raw, err := EncodeActionPayload(in)
	if err != nil {
		t.Fatalf("encode: %v", err)
	}
	decoded, err := DecodeActionPayload(models.ApprovalActionBudgetUpdate, raw)
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	out := decoded.(*BudgetUpdatePayload)
	if out.Changes.Amount == nil || !out.Changes.Amount.Equal(newAmount) {
		t.Error("amount change lost in round trip")
	}
	if out.Changes.CategoryId != nil || out.Changes.Period != nil || out.Changes.StartDate != nil {
		t.Error("absent fields must stay nil after round trip")
	}
}

func TestPayload_EveryActionTypeDecodes(t *testing.T) {
	payloads := map[models.ApprovalActionType]interface{}{
		models.ApprovalActionBudgetCreate:   &BudgetCreatePayload{},
		models.ApprovalActionBudgetUpdate:   &BudgetUpdatePayload{BudgetId: "b"},
		models.ApprovalActionGoalCreate:     &GoalCreatePayload{},
		models.ApprovalActionGoalUpdate:     &GoalUpdatePayload{GoalId: "g"},
		models.ApprovalActionAllocation:     &AllocationPayload{},
		models.ApprovalActionReallocation:   &ReallocationPayload{FromGoalId: "a", ToGoalId: "b"},
		models.ApprovalActionAutoRuleCreate: &AutoRuleCreatePayload{},
		models.ApprovalActionAutoRuleUpdate: &AutoRuleUpdatePayload{RuleId: "r"},
	}
	for action, payload := range payloads {
		raw, err := EncodeActionPayload(payload)
		if err != nil {
			t.Fatalf("%s: encode: %v", action, err)
		}
		if _, err := DecodeActionPayload(action, raw); err != nil {
			t.Errorf("%s: decode: %v", action, err)
		}
	}
}

func TestPayload_UnknownActionIsBadRequest(t *testing.T) {
	_, err := DecodeActionPayload(models.ApprovalActionType("mystery"), []byte(`{}`))
	if !errors.Is(err, utils.ErrorBadRequest) {
		t.Fatalf("expected bad request, got %v", err)
	}
}
