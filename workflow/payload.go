package workflow

import (
	"encoding/json"

	"github.com/Ruzakiff/wealthtogether/models"
	"github.com/Ruzakiff/wealthtogether/utils"
	"github.com/shopspring/decimal"
)

// Action payloads carry everything needed to replay a deferred mutation when
// a partner approves it. Each action type has exactly one payload shape; the
// action type on the approval row is the tag.

type BudgetCreatePayload struct {
	Budget models.NewBudget `json:"budget"`
}

type BudgetUpdatePayload struct {
	BudgetId string              `json:"budget_id"`
	Changes  models.BudgetUpdate `json:"changes"`
}

type GoalCreatePayload struct {
	Goal models.NewFinancialGoal `json:"goal"`
}

type GoalUpdatePayload struct {
	GoalId  string                     `json:"goal_id"`
	Changes models.FinancialGoalUpdate `json:"changes"`
}

type AllocationPayload struct {
	UserId    string          `json:"user_id"`
	GoalId    string          `json:"goal_id"`
	AccountId string          `json:"account_id"`
	Amount    decimal.Decimal `json:"amount"`
}

type ReallocationPayload struct {
	UserId     string          `json:"user_id"`
	FromGoalId string          `json:"from_goal_id"`
	ToGoalId   string          `json:"to_goal_id"`
	Amount     decimal.Decimal `json:"amount"`
}

type AutoRuleCreatePayload struct {
	Rule models.NewAutoAllocationRule `json:"rule"`
}

type AutoRuleUpdatePayload struct {
	UserId  string                          `json:"user_id"`
	RuleId  string                          `json:"rule_id"`
	Changes models.AutoAllocationRuleUpdate `json:"changes"`
}

// EncodeActionPayload serializes a payload for storage on the approval row.
func EncodeActionPayload(payload interface{}) (json.RawMessage, error) {
	raw, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	return raw, nil
}

// DecodeActionPayload deserializes a stored payload back into the concrete
// shape for its action type. An unrecognized action type is a bad request;
// new action types must be wired here before they can round-trip.
func DecodeActionPayload(actionType models.ApprovalActionType, raw json.RawMessage) (interface{}, error) {
	switch actionType {
	case models.ApprovalActionBudgetCreate:
		var p BudgetCreatePayload
		if err := json.Unmarshal(raw, &p); err != nil {
			return nil, err
		}
		return &p, nil
	case models.ApprovalActionBudgetUpdate:
		var p BudgetUpdatePayload
		if err := json.Unmarshal(raw, &p); err != nil {
			return nil, err
		}
		return &p, nil
	case models.ApprovalActionGoalCreate:
		var p GoalCreatePayload
		if err := json.Unmarshal(raw, &p); err != nil {
			return nil, err
		}
		return &p, nil
	case models.ApprovalActionGoalUpdate:
		var p GoalUpdatePayload
		if err := json.Unmarshal(raw, &p); err != nil {
			return nil, err
		}
		return &p, nil
	case models.ApprovalActionAllocation:
		var p AllocationPayload
		if err := json.Unmarshal(raw, &p); err != nil {
			return nil, err
		}
		return &p, nil
	case models.ApprovalActionReallocation:
		var p ReallocationPayload
		if err := json.Unmarshal(raw, &p); err != nil {
			return nil, err
		}
		return &p, nil
	case models.ApprovalActionAutoRuleCreate:
		var p AutoRuleCreatePayload
		if err := json.Unmarshal(raw, &p); err != nil {
			return nil, err
		}
		return &p, nil
	case models.ApprovalActionAutoRuleUpdate:
		var p AutoRuleUpdatePayload
		if err := json.Unmarshal(raw, &p); err != nil {
			return nil, err
		}
		return &p, nil
	default:
		return nil, utils.ErrorBadRequest
	}
}
