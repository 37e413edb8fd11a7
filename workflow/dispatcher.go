package workflow

import (
	"encoding/json"

	"github.com/Ruzakiff/wealthtogether/models"
	"github.com/Ruzakiff/wealthtogether/utils"
	"gorm.io/gorm"
)

// Dispatch replays an approved mutation inside tx. The return value is the
// created or updated entity for the handler to surface. Every branch runs
// the same internal mutation the direct (ungated) path runs, so an approved
// action behaves exactly as if it had executed immediately.
func Dispatch(tx *gorm.DB, actionType models.ApprovalActionType, raw json.RawMessage) (interface{}, error) {

	decoded, err := DecodeActionPayload(actionType, raw)
	if err != nil {
		return nil, err
	}

	switch payload := decoded.(type) {
	case *BudgetCreatePayload:
		return models.CreateBudgetTx(tx, &payload.Budget)
	case *BudgetUpdatePayload:
		return models.UpdateBudgetTx(tx, payload.BudgetId, &payload.Changes)
	case *GoalCreatePayload:
		return models.CreateFinancialGoalTx(tx, &payload.Goal)
	case *GoalUpdatePayload:
		return models.UpdateFinancialGoalTx(tx, payload.GoalId, &payload.Changes)
	case *AllocationPayload:
		return AllocateToGoalTx(tx, payload.UserId, payload.GoalId, payload.AccountId, payload.Amount)
	case *ReallocationPayload:
		err := ReallocateTx(tx, payload.UserId, payload.FromGoalId, payload.ToGoalId, payload.Amount)
		if err != nil {
			return nil, err
		}
		return map[string]interface{}{
			"from_goal_id": payload.FromGoalId,
			"to_goal_id":   payload.ToGoalId,
			"amount":       payload.Amount,
		}, nil
	case *AutoRuleCreatePayload:
		return models.CreateAutoAllocationRuleTx(tx, &payload.Rule)
	case *AutoRuleUpdatePayload:
		return models.UpdateAutoAllocationRuleTx(tx, payload.RuleId, payload.UserId, &payload.Changes)
	default:
		return nil, utils.ErrorBadRequest
	}
}
