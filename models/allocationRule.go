package models

import (
	"context"
	"errors"
	"time"

	"github.com/Ruzakiff/wealthtogether/config"
	"github.com/Ruzakiff/wealthtogether/utils"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// AutoAllocationRule is owned by the user who created it; only that user (or
// the approval-replay path acting on their behalf) may mutate or delete it.
type AutoAllocationRule struct {
	ID              string          `gorm:"primaryKey;size:36" json:"id"`
	UserId          string          `gorm:"size:36;index;not null" json:"user_id"`
	SourceAccountId string          `gorm:"size:36;index;not null" json:"source_account_id"`
	GoalId          string          `gorm:"size:36;index;not null" json:"goal_id"`
	Percent         decimal.Decimal `gorm:"type:decimal(5,2);not null" json:"percent"`
	Trigger         RuleTrigger     `gorm:"type:enum('deposit','schedule');default:'deposit';size:10" json:"trigger"`
	IsActive        *bool           `gorm:"not null;default:true" json:"is_active"`
	LastExecuted    *time.Time      `json:"last_executed"`
	CreatedAt       time.Time       `gorm:"autoCreateTime" json:"created_at"`
}

type NewAutoAllocationRule struct {
	UserId          string          `json:"user_id" binding:"required"`
	SourceAccountId string          `json:"source_account_id" binding:"required"`
	GoalId          string          `json:"goal_id" binding:"required"`
	Percent         decimal.Decimal `json:"percent" binding:"required"`
	Trigger         RuleTrigger     `json:"trigger"`
}

type AutoAllocationRuleUpdate struct {
	Percent  *decimal.Decimal `json:"percent"`
	Trigger  *RuleTrigger     `json:"trigger"`
	IsActive *bool            `json:"is_active"`
}

// AutoAllocationRuleDetail is the list shape with related entity names
// resolved for display.
type AutoAllocationRuleDetail struct {
	AutoAllocationRule
	SourceAccountName string `json:"source_account_name"`
	GoalName          string `json:"goal_name"`
}

func validateRulePercent(percent decimal.Decimal) error {
	if percent.LessThanOrEqual(decimal.Zero) || percent.GreaterThan(decimal.NewFromInt(100)) {
		return errors.New("percent must be between 0 and 100")
	}
	return nil
}

// CreateAutoAllocationRuleTx persists a rule inside tx after ownership checks.
func CreateAutoAllocationRuleTx(tx *gorm.DB, input *NewAutoAllocationRule) (*AutoAllocationRule, error) {

	var account BankAccount
	if err := tx.Where("id = ?", input.SourceAccountId).First(&account).Error; err != nil {
		return nil, utils.ErrorRecordNotFound
	}
	if account.UserId != input.UserId {
		return nil, utils.ErrorForbidden
	}

	var count int64
	if err := tx.Model(&FinancialGoal{}).Where("id = ?", input.GoalId).Count(&count).Error; err != nil {
		return nil, err
	}
	if count <= 0 {
		return nil, utils.ErrorRecordNotFound
	}

	if err := validateRulePercent(input.Percent); err != nil {
		return nil, err
	}

	trigger := input.Trigger
	if trigger == "" {
		trigger = RuleTriggerDeposit
	}

	rule := AutoAllocationRule{
		ID:              uuid.NewString(),
		UserId:          input.UserId,
		SourceAccountId: input.SourceAccountId,
		GoalId:          input.GoalId,
		Percent:         input.Percent,
		Trigger:         trigger,
		IsActive:        utils.NewTrue(),
	}

	if err := tx.Create(&rule).Error; err != nil {
		return nil, err
	}
	return &rule, nil
}

// UpdateAutoAllocationRuleTx applies a partial update inside tx. Only the
// owning user may touch the rule.
func UpdateAutoAllocationRuleTx(tx *gorm.DB, ruleId string, userId string, input *AutoAllocationRuleUpdate) (*AutoAllocationRule, error) {

	var rule AutoAllocationRule
	if err := tx.Where("id = ?", ruleId).First(&rule).Error; err != nil {
		return nil, utils.ErrorRecordNotFound
	}
	if rule.UserId != userId {
		return nil, utils.ErrorForbidden
	}

	updates := map[string]interface{}{}
	if input.Percent != nil {
		if err := validateRulePercent(*input.Percent); err != nil {
			return nil, err
		}
		updates["Percent"] = *input.Percent
	}
	if input.Trigger != nil {
		updates["Trigger"] = *input.Trigger
	}
	if input.IsActive != nil {
		updates["IsActive"] = *input.IsActive
	}

	if len(updates) > 0 {
		if err := tx.Model(&rule).Updates(updates).Error; err != nil {
			return nil, err
		}
	}
	return &rule, nil
}

func GetAutoAllocationRule(ctx context.Context, id string) (*AutoAllocationRule, error) {
	return utils.FetchModel[AutoAllocationRule](ctx, id)
}

func GetRulesByUser(ctx context.Context, userId string) ([]*AutoAllocationRuleDetail, error) {

	db := config.GetDB()
	var rules []*AutoAllocationRule
	if err := db.WithContext(ctx).Where("user_id = ?", userId).Find(&rules).Error; err != nil {
		return nil, err
	}

	details := make([]*AutoAllocationRuleDetail, 0, len(rules))
	for _, rule := range rules {
		detail := &AutoAllocationRuleDetail{AutoAllocationRule: *rule}
		var account BankAccount
		if err := db.WithContext(ctx).Where("id = ?", rule.SourceAccountId).First(&account).Error; err == nil {
			detail.SourceAccountName = account.Name
		}
		var goal FinancialGoal
		if err := db.WithContext(ctx).Where("id = ?", rule.GoalId).First(&goal).Error; err == nil {
			detail.GoalName = goal.Name
		}
		details = append(details, detail)
	}
	return details, nil
}

func DeleteAutoAllocationRule(ctx context.Context, ruleId string, userId string) error {

	rule, err := utils.FetchModel[AutoAllocationRule](ctx, ruleId)
	if err != nil {
		return err
	}
	if rule.UserId != userId {
		return utils.ErrorForbidden
	}

	db := config.GetDB()
	return db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Delete(rule).Error; err != nil {
			return err
		}
		return AppendLedgerEventTx(tx, &LedgerEvent{
			EventType: LedgerEventTypeSystem,
			UserId:    userId,
			Metadata: JSONMap{
				"action":  "auto_allocation_rule_deleted",
				"rule_id": ruleId,
			},
		})
	})
}

// GetActiveRulesForAccount returns active rules ordered by destination goal
// priority, ties broken by rule creation order. Used by the waterfall
// allocator; ordering here is the only ordering guarantee the engine makes.
func GetActiveRulesForAccount(tx *gorm.DB, accountId string) ([]*AutoAllocationRule, error) {

	var rules []*AutoAllocationRule
	err := tx.
		Joins("JOIN financial_goals ON financial_goals.id = auto_allocation_rules.goal_id").
		Where("auto_allocation_rules.source_account_id = ? AND auto_allocation_rules.is_active = ?", accountId, true).
		Order("financial_goals.priority, auto_allocation_rules.created_at, auto_allocation_rules.id").
		Find(&rules).Error
	if err != nil {
		return nil, err
	}
	return rules, nil
}
