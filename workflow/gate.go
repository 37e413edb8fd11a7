package workflow

import (
	"context"

	"github.com/Ruzakiff/wealthtogether/config"
	"github.com/Ruzakiff/wealthtogether/models"
	"github.com/Ruzakiff/wealthtogether/utils"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

type GateStatus string

const (
	GateStatusCompleted       GateStatus = "completed"
	GateStatusPendingApproval GateStatus = "pending_approval"
)

// GateOutcome is what every gated mutation returns. Callers discriminate on
// Status: completed carries the mutation result, pending_approval carries the
// approval id and no result.
type GateOutcome struct {
	Status     GateStatus  `json:"status"`
	ApprovalId string      `json:"approval_id,omitempty"`
	Result     interface{} `json:"result,omitempty"`
}

// RequiresApprovalWithSettings is the pure threshold policy. Disabled
// settings gate nothing. An action type without a mapped threshold requires
// approval; new action types must be mapped here before they are exempt.
func RequiresApprovalWithSettings(settings *models.ApprovalSettings, actionType models.ApprovalActionType, amount decimal.Decimal) bool {

	if settings == nil || settings.Enabled == nil || !*settings.Enabled {
		return false
	}

	switch actionType {
	case models.ApprovalActionBudgetCreate:
		return amount.GreaterThanOrEqual(settings.BudgetCreationThreshold)
	case models.ApprovalActionBudgetUpdate:
		return amount.GreaterThanOrEqual(settings.BudgetUpdateThreshold)
	case models.ApprovalActionAllocation:
		return amount.GreaterThanOrEqual(settings.GoalAllocationThreshold)
	case models.ApprovalActionReallocation:
		return amount.GreaterThanOrEqual(settings.GoalReallocationThreshold)
	case models.ApprovalActionAutoRuleCreate, models.ApprovalActionAutoRuleUpdate:
		return amount.GreaterThanOrEqual(settings.AutoRuleThreshold)
	}
	return true
}

// CheckApprovalRequired resolves the couple's settings and applies the
// threshold policy.
func CheckApprovalRequired(ctx context.Context, coupleId string, actionType models.ApprovalActionType, amount decimal.Decimal) (bool, error) {
	settings, err := models.GetOrCreateApprovalSettings(ctx, coupleId)
	if err != nil {
		return false, err
	}
	return RequiresApprovalWithSettings(settings, actionType, amount), nil
}

// defer creates the pending approval for a mutation that crossed its
// threshold and wraps it in a pending outcome.
func deferForApproval(ctx context.Context, coupleId string, userId string, actionType models.ApprovalActionType, payload interface{}) (*GateOutcome, error) {
	raw, err := EncodeActionPayload(payload)
	if err != nil {
		return nil, err
	}
	approval, err := models.CreatePendingApproval(ctx, &models.NewPendingApproval{
		CoupleId:    coupleId,
		InitiatedBy: userId,
		ActionType:  actionType,
		Payload:     raw,
	})
	if err != nil {
		return nil, err
	}
	return &GateOutcome{Status: GateStatusPendingApproval, ApprovalId: approval.ID}, nil
}

func requireMembership(ctx context.Context, coupleId string, userId string) error {
	member, err := models.IsCoupleMember(ctx, coupleId, userId)
	if err != nil {
		return err
	}
	if !member {
		return utils.ErrorForbidden
	}
	return nil
}

// GatedCreateBudget creates a budget, deferring for partner approval when the
// amount crosses the couple's budget creation threshold. Validation precedes
// the threshold check so a bad request never leaves a pending approval
// behind.
func GatedCreateBudget(ctx context.Context, userId string, input *models.NewBudget) (*GateOutcome, error) {

	if err := requireMembership(ctx, input.CoupleId, userId); err != nil {
		return nil, err
	}
	if err := utils.ValidateResourceId[models.Category](ctx, input.CategoryId); err != nil {
		return nil, err
	}
	if !input.Amount.IsPositive() {
		return nil, utils.ErrorBadRequest
	}

	required, err := CheckApprovalRequired(ctx, input.CoupleId, models.ApprovalActionBudgetCreate, input.Amount)
	if err != nil {
		return nil, err
	}
	if required {
		return deferForApproval(ctx, input.CoupleId, userId, models.ApprovalActionBudgetCreate, &BudgetCreatePayload{Budget: *input})
	}

	var budget *models.Budget
	err = config.GetDB().WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		budget, err = models.CreateBudgetTx(tx, input)
		return err
	})
	if err != nil {
		return nil, err
	}
	return &GateOutcome{Status: GateStatusCompleted, Result: budget}, nil
}

// GatedUpdateBudget updates a budget; the gating amount is the absolute
// change in the budgeted amount, zero when the amount is untouched.
func GatedUpdateBudget(ctx context.Context, userId string, budgetId string, changes *models.BudgetUpdate) (*GateOutcome, error) {

	budget, err := models.GetBudget(ctx, budgetId)
	if err != nil {
		return nil, err
	}
	if err := requireMembership(ctx, budget.CoupleId, userId); err != nil {
		return nil, err
	}
	if changes.Amount != nil && !changes.Amount.IsPositive() {
		return nil, utils.ErrorBadRequest
	}

	delta := decimal.Zero
	if changes.Amount != nil {
		delta = changes.Amount.Sub(budget.Amount).Abs()
	}
	required, err := CheckApprovalRequired(ctx, budget.CoupleId, models.ApprovalActionBudgetUpdate, delta)
	if err != nil {
		return nil, err
	}
	if required {
		return deferForApproval(ctx, budget.CoupleId, userId, models.ApprovalActionBudgetUpdate,
			&BudgetUpdatePayload{BudgetId: budgetId, Changes: *changes})
	}

	var updated *models.Budget
	err = config.GetDB().WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		updated, err = models.UpdateBudgetTx(tx, budgetId, changes)
		return err
	})
	if err != nil {
		return nil, err
	}
	return &GateOutcome{Status: GateStatusCompleted, Result: updated}, nil
}

// GatedCreateGoal creates a financial goal. Goal creation has no mapped
// threshold, so it defers for approval whenever approvals are enabled.
func GatedCreateGoal(ctx context.Context, userId string, input *models.NewFinancialGoal) (*GateOutcome, error) {

	if err := requireMembership(ctx, input.CoupleId, userId); err != nil {
		return nil, err
	}
	if !input.TargetAmount.IsPositive() {
		return nil, utils.ErrorBadRequest
	}

	required, err := CheckApprovalRequired(ctx, input.CoupleId, models.ApprovalActionGoalCreate, input.TargetAmount)
	if err != nil {
		return nil, err
	}
	if required {
		return deferForApproval(ctx, input.CoupleId, userId, models.ApprovalActionGoalCreate, &GoalCreatePayload{Goal: *input})
	}

	var goal *models.FinancialGoal
	err = config.GetDB().WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		goal, err = models.CreateFinancialGoalTx(tx, input)
		return err
	})
	if err != nil {
		return nil, err
	}
	return &GateOutcome{Status: GateStatusCompleted, Result: goal}, nil
}

// GatedUpdateGoal updates a goal; like creation it has no mapped threshold.
// The gating amount is the absolute change in target.
func GatedUpdateGoal(ctx context.Context, userId string, goalId string, changes *models.FinancialGoalUpdate) (*GateOutcome, error) {

	goal, err := models.GetFinancialGoal(ctx, goalId)
	if err != nil {
		return nil, err
	}
	if err := requireMembership(ctx, goal.CoupleId, userId); err != nil {
		return nil, err
	}
	if changes.TargetAmount != nil && !changes.TargetAmount.IsPositive() {
		return nil, utils.ErrorBadRequest
	}

	delta := decimal.Zero
	if changes.TargetAmount != nil {
		delta = changes.TargetAmount.Sub(goal.TargetAmount).Abs()
	}
	required, err := CheckApprovalRequired(ctx, goal.CoupleId, models.ApprovalActionGoalUpdate, delta)
	if err != nil {
		return nil, err
	}
	if required {
		return deferForApproval(ctx, goal.CoupleId, userId, models.ApprovalActionGoalUpdate,
			&GoalUpdatePayload{GoalId: goalId, Changes: *changes})
	}

	var updated *models.FinancialGoal
	err = config.GetDB().WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		updated, err = models.UpdateFinancialGoalTx(tx, goalId, changes)
		return err
	})
	if err != nil {
		return nil, err
	}
	return &GateOutcome{Status: GateStatusCompleted, Result: updated}, nil
}

// GatedAllocate earmarks account funds for a goal. Referential and balance
// checks run before the threshold check so an unfundable allocation fails
// fast instead of producing an approval the partner cannot usefully grant.
func GatedAllocate(ctx context.Context, userId string, goalId string, accountId string, amount decimal.Decimal) (*GateOutcome, error) {

	if !amount.IsPositive() {
		return nil, utils.ErrorBadRequest
	}
	goal, err := models.GetFinancialGoal(ctx, goalId)
	if err != nil {
		return nil, err
	}
	if err := requireMembership(ctx, goal.CoupleId, userId); err != nil {
		return nil, err
	}
	account, err := models.GetBankAccount(ctx, accountId)
	if err != nil {
		return nil, err
	}
	if account.UserId != userId {
		return nil, utils.ErrorForbidden
	}

	allocated, err := models.AllocatedTotal(config.GetDB().WithContext(ctx), accountId)
	if err != nil {
		return nil, err
	}
	if amount.GreaterThan(account.Balance.Sub(allocated)) {
		return nil, utils.ErrorInsufficientFunds
	}

	required, err := CheckApprovalRequired(ctx, goal.CoupleId, models.ApprovalActionAllocation, amount)
	if err != nil {
		return nil, err
	}
	if required {
		return deferForApproval(ctx, goal.CoupleId, userId, models.ApprovalActionAllocation,
			&AllocationPayload{UserId: userId, GoalId: goalId, AccountId: accountId, Amount: amount})
	}

	var updated *models.FinancialGoal
	err = config.GetDB().WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		updated, err = AllocateToGoalTx(tx, userId, goalId, accountId, amount)
		return err
	})
	if err != nil {
		return nil, err
	}
	return &GateOutcome{Status: GateStatusCompleted, Result: updated}, nil
}

// GatedReallocate moves earmarked funds between two goals of the couple.
func GatedReallocate(ctx context.Context, userId string, fromGoalId string, toGoalId string, amount decimal.Decimal) (*GateOutcome, error) {

	if !amount.IsPositive() || fromGoalId == toGoalId {
		return nil, utils.ErrorBadRequest
	}
	source, err := models.GetFinancialGoal(ctx, fromGoalId)
	if err != nil {
		return nil, err
	}
	dest, err := models.GetFinancialGoal(ctx, toGoalId)
	if err != nil {
		return nil, err
	}
	if source.CoupleId != dest.CoupleId {
		return nil, utils.ErrorForbidden
	}
	if err := requireMembership(ctx, source.CoupleId, userId); err != nil {
		return nil, err
	}
	if source.CurrentAllocation.LessThan(amount) {
		return nil, utils.ErrorInsufficientFunds
	}

	required, err := CheckApprovalRequired(ctx, source.CoupleId, models.ApprovalActionReallocation, amount)
	if err != nil {
		return nil, err
	}
	if required {
		return deferForApproval(ctx, source.CoupleId, userId, models.ApprovalActionReallocation,
			&ReallocationPayload{UserId: userId, FromGoalId: fromGoalId, ToGoalId: toGoalId, Amount: amount})
	}

	err = config.GetDB().WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return ReallocateTx(tx, userId, fromGoalId, toGoalId, amount)
	})
	if err != nil {
		return nil, err
	}
	return &GateOutcome{Status: GateStatusCompleted, Result: map[string]interface{}{
		"from_goal_id": fromGoalId,
		"to_goal_id":   toGoalId,
		"amount":       amount,
	}}, nil
}

// GatedCreateAutoRule creates an auto-allocation rule. Rule changes carry no
// monetary amount; the policy sees zero and gates on the configured auto-rule
// threshold alone.
func GatedCreateAutoRule(ctx context.Context, input *models.NewAutoAllocationRule) (*GateOutcome, error) {

	account, err := models.GetBankAccount(ctx, input.SourceAccountId)
	if err != nil {
		return nil, err
	}
	if account.UserId != input.UserId {
		return nil, utils.ErrorForbidden
	}
	goal, err := models.GetFinancialGoal(ctx, input.GoalId)
	if err != nil {
		return nil, err
	}
	if err := requireMembership(ctx, goal.CoupleId, input.UserId); err != nil {
		return nil, err
	}

	required, err := CheckApprovalRequired(ctx, goal.CoupleId, models.ApprovalActionAutoRuleCreate, decimal.Zero)
	if err != nil {
		return nil, err
	}
	if required {
		return deferForApproval(ctx, goal.CoupleId, input.UserId, models.ApprovalActionAutoRuleCreate, &AutoRuleCreatePayload{Rule: *input})
	}

	var rule *models.AutoAllocationRule
	err = config.GetDB().WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		rule, err = models.CreateAutoAllocationRuleTx(tx, input)
		return err
	})
	if err != nil {
		return nil, err
	}
	return &GateOutcome{Status: GateStatusCompleted, Result: rule}, nil
}

// GatedUpdateAutoRule updates an auto-allocation rule.
func GatedUpdateAutoRule(ctx context.Context, userId string, ruleId string, changes *models.AutoAllocationRuleUpdate) (*GateOutcome, error) {

	rule, err := models.GetAutoAllocationRule(ctx, ruleId)
	if err != nil {
		return nil, err
	}
	account, err := models.GetBankAccount(ctx, rule.SourceAccountId)
	if err != nil {
		return nil, err
	}
	if account.UserId != userId {
		return nil, utils.ErrorForbidden
	}
	goal, err := models.GetFinancialGoal(ctx, rule.GoalId)
	if err != nil {
		return nil, err
	}

	required, err := CheckApprovalRequired(ctx, goal.CoupleId, models.ApprovalActionAutoRuleUpdate, decimal.Zero)
	if err != nil {
		return nil, err
	}
	if required {
		return deferForApproval(ctx, goal.CoupleId, userId, models.ApprovalActionAutoRuleUpdate,
			&AutoRuleUpdatePayload{UserId: userId, RuleId: ruleId, Changes: *changes})
	}

	var updated *models.AutoAllocationRule
	err = config.GetDB().WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		updated, err = models.UpdateAutoAllocationRuleTx(tx, ruleId, userId, changes)
		return err
	})
	if err != nil {
		return nil, err
	}
	return &GateOutcome{Status: GateStatusCompleted, Result: updated}, nil
}
