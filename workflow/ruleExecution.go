package workflow

import (
	"context"
	"time"

	"github.com/Ruzakiff/wealthtogether/config"
	"github.com/Ruzakiff/wealthtogether/models"
	"github.com/Ruzakiff/wealthtogether/utils"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// RuleResult reports one rule's outcome within a waterfall run. A failed rule
// never aborts the batch; the failure is recorded and iteration continues.
type RuleResult struct {
	RuleId        string          `json:"rule_id"`
	GoalId        string          `json:"goal_id"`
	Success       bool            `json:"success"`
	Amount        decimal.Decimal `json:"amount"`
	Reason        string          `json:"reason,omitempty"`
	ExecutionTime *time.Time      `json:"execution_time,omitempty"`
}

var oneHundred = decimal.NewFromInt(100)

// PlanRuleAmount computes a rule's share of the distributable total, rounded
// half-up to cents and clamped to what remains. Identical inputs always
// produce identical output; repeated runs are reproducible to the cent.
func PlanRuleAmount(total, remaining, percent decimal.Decimal) decimal.Decimal {
	amount := total.Mul(percent).Div(oneHundred).Round(2)
	if amount.GreaterThan(remaining) {
		amount = remaining
	}
	return amount
}

// ExecuteAccountRules runs every active rule on the account as a waterfall.
// With a deposit the total distributed is the deposit amount; without one it
// is the account's unallocated balance. Rules run in goal priority order,
// ties broken by rule creation order, each consuming its planned share of
// the remaining total. One aggregate audit event summarizes the batch.
func ExecuteAccountRules(ctx context.Context, userId string, accountId string, depositAmount *decimal.Decimal, manualTrigger bool) ([]*RuleResult, error) {

	account, err := models.GetBankAccount(ctx, accountId)
	if err != nil {
		return nil, err
	}
	if account.UserId != userId {
		return nil, utils.ErrorForbidden
	}

	if depositAmount != nil && !manualTrigger {
		if account.Balance.LessThan(*depositAmount) {
			return nil, utils.ErrorInsufficientFunds
		}
	}

	db := config.GetDB()
	var total decimal.Decimal
	if depositAmount != nil {
		total = *depositAmount
	} else {
		allocated, err := models.AllocatedTotal(db.WithContext(ctx), accountId)
		if err != nil {
			return nil, err
		}
		total = account.Balance.Sub(allocated)
	}

	rules, err := models.GetActiveRulesForAccount(db.WithContext(ctx), accountId)
	if err != nil {
		return nil, err
	}

	remaining := total
	results := make([]*RuleResult, 0, len(rules))
	for _, rule := range rules {
		amount := PlanRuleAmount(total, remaining, rule.Percent)
		if !amount.IsPositive() {
			results = append(results, &RuleResult{
				RuleId: rule.ID,
				GoalId: rule.GoalId,
				Amount: decimal.Zero,
				Reason: "insufficient remaining funds",
			})
			continue
		}

		executedAt := time.Now().UTC()
		err := db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
			if _, err := AllocateToGoalTx(tx, userId, rule.GoalId, accountId, amount); err != nil {
				return err
			}
			return tx.Model(&models.AutoAllocationRule{}).
				Where("id = ?", rule.ID).
				Update("LastExecuted", executedAt).Error
		})
		if err != nil {
			results = append(results, &RuleResult{
				RuleId: rule.ID,
				GoalId: rule.GoalId,
				Amount: decimal.Zero,
				Reason: err.Error(),
			})
			continue
		}

		remaining = remaining.Sub(amount)
		results = append(results, &RuleResult{
			RuleId:        rule.ID,
			GoalId:        rule.GoalId,
			Success:       true,
			Amount:        amount,
			ExecutionTime: &executedAt,
		})
	}

	successful := 0
	for _, result := range results {
		if result.Success {
			successful++
		}
	}
	metadata := models.JSONMap{
		"action":           "executed_auto_allocation_rules",
		"account_id":       accountId,
		"executed_rules":   len(results),
		"successful_rules": successful,
	}
	if depositAmount != nil {
		metadata["deposit_amount"] = depositAmount.StringFixed(2)
	}
	models.AppendLedgerEvent(ctx, &models.LedgerEvent{
		EventType: models.LedgerEventTypeSystem,
		UserId:    userId,
		Metadata:  metadata,
	})

	return results, nil
}

// ExecuteRule runs a single rule outside any waterfall. With a deposit the
// planned amount comes off the deposit; without one it comes off the
// account's unallocated balance. An unfundable plan is a failed result, not
// an error.
func ExecuteRule(ctx context.Context, ruleId string, depositAmount *decimal.Decimal) (*RuleResult, error) {

	rule, err := models.GetAutoAllocationRule(ctx, ruleId)
	if err != nil {
		return nil, err
	}
	if rule.IsActive == nil || !*rule.IsActive {
		return nil, utils.ErrorBadRequest
	}
	account, err := models.GetBankAccount(ctx, rule.SourceAccountId)
	if err != nil {
		return nil, err
	}
	if _, err := models.GetFinancialGoal(ctx, rule.GoalId); err != nil {
		return nil, err
	}

	db := config.GetDB()
	var amount decimal.Decimal
	if depositAmount != nil {
		amount = depositAmount.Mul(rule.Percent).Div(oneHundred).Round(2)
		if !amount.IsPositive() {
			return &RuleResult{RuleId: rule.ID, GoalId: rule.GoalId, Amount: decimal.Zero,
				Reason: "amount to allocate is zero or negative"}, nil
		}
		if account.Balance.LessThan(amount) {
			return &RuleResult{RuleId: rule.ID, GoalId: rule.GoalId, Amount: amount,
				Reason: "insufficient funds in account"}, nil
		}
	} else {
		allocated, err := models.AllocatedTotal(db.WithContext(ctx), rule.SourceAccountId)
		if err != nil {
			return nil, err
		}
		amount = account.Balance.Sub(allocated).Mul(rule.Percent).Div(oneHundred).Round(2)
		if !amount.IsPositive() {
			return &RuleResult{RuleId: rule.ID, GoalId: rule.GoalId, Amount: decimal.Zero,
				Reason: "amount to allocate is zero or negative"}, nil
		}
	}

	executedAt := time.Now().UTC()
	err = db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if _, err := AllocateToGoalTx(tx, rule.UserId, rule.GoalId, rule.SourceAccountId, amount); err != nil {
			return err
		}
		return tx.Model(&models.AutoAllocationRule{}).
			Where("id = ?", rule.ID).
			Update("LastExecuted", executedAt).Error
	})
	if err != nil {
		return &RuleResult{RuleId: rule.ID, GoalId: rule.GoalId, Amount: amount, Reason: err.Error()}, nil
	}

	return &RuleResult{RuleId: rule.ID, GoalId: rule.GoalId, Success: true, Amount: amount, ExecutionTime: &executedAt}, nil
}
