package workflow

import (
	"testing"

	"github.com/shopspring/decimal"
)

// fakeRule is the planner-facing slice of a stored rule.
type fakeRule struct {
	id      string
	percent decimal.Decimal
}

// runPlan iterates rules the way the waterfall does, planning each amount off
// the shared total and consuming the remainder on success.
func runPlan(total decimal.Decimal, rules []fakeRule) []decimal.Decimal {
	remaining := total
	amounts := make([]decimal.Decimal, 0, len(rules))
	for _, rule := range rules {
		amount := PlanRuleAmount(total, remaining, rule.percent)
		amounts = append(amounts, amount)
		if amount.IsPositive() {
			remaining = remaining.Sub(amount)
		}
	}
	return amounts
}

func TestPlanRuleAmount_SecondRuleClamped(t *testing.T) {
	total := decimal.NewFromInt(1000)
	rules := []fakeRule{
		{id: "rule-1", percent: decimal.NewFromInt(60)},
		{id: "rule-2", percent: decimal.NewFromInt(60)},
	}

	amounts := runPlan(total, rules)

	if !amounts[0].Equal(decimal.NewFromInt(600)) {
		t.Errorf("rule 1: got %s, want 600", amounts[0])
	}
	if !amounts[1].Equal(decimal.NewFromInt(400)) {
		t.Errorf("rule 2: got %s, want clamped 400", amounts[1])
	}
}

func TestPlanRuleAmount_SumNeverExceedsTotal(t *testing.T) {
	total := decimal.RequireFromString("1234.56")
	rules := []fakeRule{
		{percent: decimal.NewFromInt(50)},
		{percent: decimal.NewFromInt(40)},
		{percent: decimal.NewFromInt(30)},
		{percent: decimal.NewFromInt(20)},
	}

	amounts := runPlan(total, rules)

	sum := decimal.Zero
	for i, amount := range amounts {
		if amount.GreaterThan(total) {
			t.Errorf("rule %d allocated %s, more than total %s", i, amount, total)
		}
		sum = sum.Add(amount)
	}
	if sum.GreaterThan(total) {
		t.Errorf("sum %s exceeds total %s", sum, total)
	}
}

func TestPlanRuleAmount_ExhaustedRemainderFailsWithoutAborting(t *testing.T) {
	total := decimal.NewFromInt(100)
	rules := []fakeRule{
		{percent: decimal.NewFromInt(100)},
		{percent: decimal.NewFromInt(50)},
		{percent: decimal.NewFromInt(10)},
	}

	amounts := runPlan(total, rules)

	if !amounts[0].Equal(decimal.NewFromInt(100)) {
		t.Errorf("rule 1: got %s, want 100", amounts[0])
	}
	if amounts[1].IsPositive() || amounts[2].IsPositive() {
		t.Errorf("exhausted rules must plan zero, got %s and %s", amounts[1], amounts[2])
	}
	if len(amounts) != 3 {
		t.Errorf("every rule must produce a result, got %d", len(amounts))
	}
}

func TestPlanRuleAmount_RoundsHalfUpToCents(t *testing.T) {
	total := decimal.RequireFromString("100.01")
	amount := PlanRuleAmount(total, total, decimal.RequireFromString("33.33"))
	// 100.01 * 0.3333 = 33.333333, rounds to 33.33
	if !amount.Equal(decimal.RequireFromString("33.33")) {
		t.Errorf("got %s, want 33.33", amount)
	}

	amount = PlanRuleAmount(decimal.RequireFromString("0.03"), decimal.NewFromInt(1), decimal.NewFromInt(50))
	// 0.015 rounds half up to 0.02
	if !amount.Equal(decimal.RequireFromString("0.02")) {
		t.Errorf("got %s, want 0.02", amount)
	}
}

func TestPlanRuleAmount_Reproducible(t *testing.T) {
	total := decimal.RequireFromString("987.65")
	rules := []fakeRule{
		{percent: decimal.RequireFromString("17.5")},
		{percent: decimal.RequireFromString("33.33")},
		{percent: decimal.RequireFromString("49.17")},
	}

	first := runPlan(total, rules)
	for run := 0; run < 50; run++ {
		again := runPlan(total, rules)
		for i := range first {
			if !first[i].Equal(again[i]) {
				t.Fatalf("run %d rule %d: %s != %s", run, i, again[i], first[i])
			}
		}
	}
}
