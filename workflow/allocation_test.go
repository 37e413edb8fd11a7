package workflow

import (
	"testing"

	"github.com/shopspring/decimal"
)

func TestDetectMilestone_Bands(t *testing.T) {
	target := decimal.NewFromInt(1000)

	cases := []struct {
		name    string
		current string
		want    string
	}{
		{"below first band", "230", ""},
		{"quarter band lower edge", "240", "quarter"},
		{"quarter band interior", "250", "quarter"},
		{"quarter band upper edge excluded", "260", ""},
		{"between bands", "400", ""},
		{"half band lower edge", "490", "half"},
		{"half band interior", "500", "half"},
		{"half band upper edge excluded", "510", ""},
		{"three quarters interior", "750", "three_quarters"},
		{"complete at 99", "990", "complete"},
		{"complete at 100", "1000", "complete"},
		{"complete past target", "1500", "complete"},
	}
	for _, tc := range cases {
		current := decimal.RequireFromString(tc.current)
		milestone := DetectMilestone(current, target)
		got := ""
		if milestone != nil {
			got = milestone.Type
		}
		if got != tc.want {
			t.Errorf("%s: got %q, want %q", tc.name, got, tc.want)
		}
	}
}

func TestDetectMilestone_Percentages(t *testing.T) {
	target := decimal.NewFromInt(400)

	if m := DetectMilestone(decimal.NewFromInt(100), target); m == nil || m.Percentage != 25 {
		t.Errorf("25%% milestone: got %+v", m)
	}
	if m := DetectMilestone(decimal.NewFromInt(200), target); m == nil || m.Percentage != 50 {
		t.Errorf("50%% milestone: got %+v", m)
	}
	if m := DetectMilestone(decimal.NewFromInt(300), target); m == nil || m.Percentage != 75 {
		t.Errorf("75%% milestone: got %+v", m)
	}
	if m := DetectMilestone(decimal.NewFromInt(400), target); m == nil || m.Percentage != 100 {
		t.Errorf("100%% milestone: got %+v", m)
	}
}

func TestDetectMilestone_ZeroOrNegativeTarget(t *testing.T) {
	if m := DetectMilestone(decimal.NewFromInt(500), decimal.Zero); m != nil {
		t.Errorf("zero target must never fire, got %+v", m)
	}
	if m := DetectMilestone(decimal.NewFromInt(500), decimal.NewFromInt(-10)); m != nil {
		t.Errorf("negative target must never fire, got %+v", m)
	}
}

func TestDetectMilestone_RefiresWithinBand(t *testing.T) {
	target := decimal.NewFromInt(1000)

	first := DetectMilestone(decimal.RequireFromString("495"), target)
	second := DetectMilestone(decimal.RequireFromString("505"), target)
	if first == nil || second == nil {
		t.Fatal("both allocations land in the half band and must fire")
	}
	if first.Type != second.Type {
		t.Errorf("band mismatch: %s vs %s", first.Type, second.Type)
	}
}
