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

type FinancialGoal struct {
	ID                string          `gorm:"primaryKey;size:36" json:"id"`
	CoupleId          string          `gorm:"size:36;index;not null" json:"couple_id"`
	Name              string          `gorm:"size:100;not null" json:"name"`
	TargetAmount      decimal.Decimal `gorm:"type:decimal(20,2);not null" json:"target_amount"`
	Type              GoalType        `gorm:"type:enum('emergency','vacation','long_term','short_term','custom');default:'custom';size:20" json:"type"`
	CurrentAllocation decimal.Decimal `gorm:"type:decimal(20,2);default:0" json:"current_allocation"`
	Priority          int             `gorm:"not null;default:1" json:"priority"`
	Notes             string          `gorm:"type:text" json:"notes"`
	Deadline          *time.Time      `json:"deadline"`
	CreatedAt         time.Time       `gorm:"autoCreateTime" json:"created_at"`
}

// AllocationMap records how much of an account's balance is earmarked for a
// goal. One row per goal+account pair; repeat allocations accumulate.
type AllocationMap struct {
	ID              string          `gorm:"primaryKey;size:36" json:"id"`
	GoalId          string          `gorm:"size:36;index:idx_goal_account,unique;not null" json:"goal_id"`
	AccountId       string          `gorm:"size:36;index:idx_goal_account,unique;not null" json:"account_id"`
	AllocatedAmount decimal.Decimal `gorm:"type:decimal(20,2);default:0" json:"allocated_amount"`
}

type NewFinancialGoal struct {
	CoupleId     string          `json:"couple_id" binding:"required"`
	Name         string          `json:"name" binding:"required"`
	TargetAmount decimal.Decimal `json:"target_amount" binding:"required"`
	Type         GoalType        `json:"type"`
	Priority     int             `json:"priority"`
	Notes        string          `json:"notes"`
	Deadline     *time.Time      `json:"deadline"`
}

type FinancialGoalUpdate struct {
	Name         *string          `json:"name"`
	TargetAmount *decimal.Decimal `json:"target_amount"`
	Type         *GoalType        `json:"type"`
	Priority     *int             `json:"priority"`
	Notes        *string          `json:"notes"`
	Deadline     *time.Time       `json:"deadline"`
}

// CreateFinancialGoalTx persists a goal inside tx. The allocation always
// starts at zero; funds arrive only through allocation mutations.
func CreateFinancialGoalTx(tx *gorm.DB, input *NewFinancialGoal) (*FinancialGoal, error) {

	var count int64
	if err := tx.Model(&Couple{}).Where("id = ?", input.CoupleId).Count(&count).Error; err != nil {
		return nil, err
	}
	if count <= 0 {
		return nil, utils.ErrorRecordNotFound
	}

	if input.TargetAmount.LessThanOrEqual(decimal.Zero) {
		return nil, errors.New("target amount must be positive")
	}

	goalType := input.Type
	if goalType == "" {
		goalType = GoalTypeCustom
	}
	priority := input.Priority
	if priority <= 0 {
		priority = 1
	}

	goal := FinancialGoal{
		ID:                uuid.NewString(),
		CoupleId:          input.CoupleId,
		Name:              input.Name,
		TargetAmount:      input.TargetAmount,
		Type:              goalType,
		CurrentAllocation: decimal.Zero,
		Priority:          priority,
		Notes:             input.Notes,
		Deadline:          input.Deadline,
	}

	if err := tx.Create(&goal).Error; err != nil {
		return nil, err
	}
	return &goal, nil
}

// UpdateFinancialGoalTx applies a partial update inside tx.
func UpdateFinancialGoalTx(tx *gorm.DB, goalId string, input *FinancialGoalUpdate) (*FinancialGoal, error) {

	var goal FinancialGoal
	if err := tx.Where("id = ?", goalId).First(&goal).Error; err != nil {
		return nil, utils.ErrorRecordNotFound
	}

	updates := map[string]interface{}{}
	if input.Name != nil {
		updates["Name"] = *input.Name
	}
	if input.TargetAmount != nil {
		if input.TargetAmount.LessThanOrEqual(decimal.Zero) {
			return nil, errors.New("target amount must be positive")
		}
		updates["TargetAmount"] = *input.TargetAmount
	}
	if input.Type != nil {
		updates["Type"] = *input.Type
	}
	if input.Priority != nil {
		updates["Priority"] = *input.Priority
	}
	if input.Notes != nil {
		updates["Notes"] = *input.Notes
	}
	if input.Deadline != nil {
		updates["Deadline"] = *input.Deadline
	}

	if len(updates) > 0 {
		if err := tx.Model(&goal).Updates(updates).Error; err != nil {
			return nil, err
		}
	}
	return &goal, nil
}

func GetFinancialGoal(ctx context.Context, id string) (*FinancialGoal, error) {
	return utils.FetchModel[FinancialGoal](ctx, id)
}

func GetGoalsByCouple(ctx context.Context, coupleId string) ([]*FinancialGoal, error) {

	if err := utils.ValidateResourceId[Couple](ctx, coupleId); err != nil {
		return nil, err
	}

	db := config.GetDB()
	var goals []*FinancialGoal
	err := db.WithContext(ctx).
		Where("couple_id = ?", coupleId).
		Order("priority, created_at").
		Find(&goals).Error
	if err != nil {
		return nil, err
	}
	return goals, nil
}
