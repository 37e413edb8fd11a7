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

type Budget struct {
	ID         string          `gorm:"primaryKey;size:36" json:"id"`
	CoupleId   string          `gorm:"size:36;index;not null" json:"couple_id"`
	CategoryId string          `gorm:"size:36;index;not null" json:"category_id"`
	Amount     decimal.Decimal `gorm:"type:decimal(20,2);not null" json:"amount"`
	Period     BudgetPeriod    `gorm:"type:enum('monthly','weekly','yearly');default:'monthly';size:10" json:"period"`
	StartDate  time.Time       `gorm:"type:date;not null" json:"start_date"`
	CreatedAt  time.Time       `gorm:"autoCreateTime" json:"created_at"`
}

type NewBudget struct {
	CoupleId   string          `json:"couple_id" binding:"required"`
	CategoryId string          `json:"category_id" binding:"required"`
	Amount     decimal.Decimal `json:"amount" binding:"required"`
	Period     BudgetPeriod    `json:"period"`
	StartDate  time.Time       `json:"start_date" binding:"required"`
}

type BudgetUpdate struct {
	CategoryId *string          `json:"category_id"`
	Amount     *decimal.Decimal `json:"amount"`
	Period     *BudgetPeriod    `json:"period"`
	StartDate  *time.Time       `json:"start_date"`
}

type BudgetSpending struct {
	BudgetId          string          `json:"budget_id"`
	CategoryId        string          `json:"category_id"`
	CategoryName      string          `json:"category_name"`
	Amount            decimal.Decimal `json:"amount"`
	TotalSpent        decimal.Decimal `json:"total_spent"`
	Remaining         decimal.Decimal `json:"remaining"`
	PercentUsed       decimal.Decimal `json:"percent_used"`
	TransactionsCount int             `json:"transactions_count"`
	Period            BudgetPeriod    `json:"period"`
	Month             int             `json:"month"`
	Year              int             `json:"year"`
}

// CreateBudgetTx persists a budget inside tx.
func CreateBudgetTx(tx *gorm.DB, input *NewBudget) (*Budget, error) {

	var count int64
	if err := tx.Model(&Couple{}).Where("id = ?", input.CoupleId).Count(&count).Error; err != nil {
		return nil, err
	}
	if count <= 0 {
		return nil, utils.ErrorRecordNotFound
	}
	if err := tx.Model(&Category{}).Where("id = ?", input.CategoryId).Count(&count).Error; err != nil {
		return nil, err
	}
	if count <= 0 {
		return nil, utils.ErrorRecordNotFound
	}

	if input.Amount.LessThanOrEqual(decimal.Zero) {
		return nil, errors.New("budget amount must be positive")
	}

	period := input.Period
	if period == "" {
		period = BudgetPeriodMonthly
	}

	budget := Budget{
		ID:         uuid.NewString(),
		CoupleId:   input.CoupleId,
		CategoryId: input.CategoryId,
		Amount:     input.Amount,
		Period:     period,
		StartDate:  input.StartDate,
	}

	if err := tx.Create(&budget).Error; err != nil {
		return nil, err
	}
	return &budget, nil
}

// UpdateBudgetTx applies a partial update inside tx.
func UpdateBudgetTx(tx *gorm.DB, budgetId string, input *BudgetUpdate) (*Budget, error) {

	var budget Budget
	if err := tx.Where("id = ?", budgetId).First(&budget).Error; err != nil {
		return nil, utils.ErrorRecordNotFound
	}

	updates := map[string]interface{}{}
	if input.CategoryId != nil {
		var count int64
		if err := tx.Model(&Category{}).Where("id = ?", *input.CategoryId).Count(&count).Error; err != nil {
			return nil, err
		}
		if count <= 0 {
			return nil, utils.ErrorRecordNotFound
		}
		updates["CategoryId"] = *input.CategoryId
	}
	if input.Amount != nil {
		if input.Amount.LessThanOrEqual(decimal.Zero) {
			return nil, errors.New("budget amount must be positive")
		}
		updates["Amount"] = *input.Amount
	}
	if input.Period != nil {
		updates["Period"] = *input.Period
	}
	if input.StartDate != nil {
		updates["StartDate"] = *input.StartDate
	}

	if len(updates) > 0 {
		if err := tx.Model(&budget).Updates(updates).Error; err != nil {
			return nil, err
		}
	}
	return &budget, nil
}

func GetBudget(ctx context.Context, id string) (*Budget, error) {
	return utils.FetchModel[Budget](ctx, id)
}

func GetBudgetsByCouple(ctx context.Context, coupleId string) ([]*Budget, error) {

	if err := utils.ValidateResourceId[Couple](ctx, coupleId); err != nil {
		return nil, err
	}
	return utils.FetchModelsWhere[Budget](ctx, "couple_id = ?", coupleId)
}

func DeleteBudget(ctx context.Context, id string) error {

	budget, err := utils.FetchModel[Budget](ctx, id)
	if err != nil {
		return err
	}

	db := config.GetDB()
	return db.WithContext(ctx).Delete(budget).Error
}

// GetBudgetSpending reports transactions against a budget's category for one
// month. Month/year default to the current month when zero.
func GetBudgetSpending(ctx context.Context, budgetId string, month int, year int) (*BudgetSpending, error) {

	budget, err := utils.FetchModel[Budget](ctx, budgetId)
	if err != nil {
		return nil, err
	}
	category, err := utils.FetchModel[Category](ctx, budget.CategoryId)
	if err != nil {
		return nil, err
	}

	now := time.Now()
	if month <= 0 {
		month = int(now.Month())
	}
	if year <= 0 {
		year = now.Year()
	}

	db := config.GetDB()
	var txns []*Transaction
	err = db.WithContext(ctx).
		Where("category_id = ? AND MONTH(date) = ? AND YEAR(date) = ?", budget.CategoryId, month, year).
		Find(&txns).Error
	if err != nil {
		return nil, err
	}

	totalSpent := decimal.Zero
	for _, txn := range txns {
		totalSpent = totalSpent.Add(txn.Amount)
	}

	percentUsed := decimal.Zero
	if budget.Amount.GreaterThan(decimal.Zero) {
		percentUsed = totalSpent.Div(budget.Amount).Mul(decimal.NewFromInt(100)).Round(2)
	}

	return &BudgetSpending{
		BudgetId:          budget.ID,
		CategoryId:        budget.CategoryId,
		CategoryName:      category.Name,
		Amount:            budget.Amount,
		TotalSpent:        totalSpent,
		Remaining:         budget.Amount.Sub(totalSpent),
		PercentUsed:       percentUsed,
		TransactionsCount: len(txns),
		Period:            budget.Period,
		Month:             month,
		Year:              year,
	}, nil
}

// GetAllBudgetsSpending reports spending for every budget of a couple.
// A broken budget (e.g. deleted category) is skipped, not fatal.
func GetAllBudgetsSpending(ctx context.Context, coupleId string, month int, year int) ([]*BudgetSpending, error) {

	budgets, err := GetBudgetsByCouple(ctx, coupleId)
	if err != nil {
		return nil, err
	}

	logger := config.GetLogger()
	results := make([]*BudgetSpending, 0, len(budgets))
	for _, budget := range budgets {
		spending, err := GetBudgetSpending(ctx, budget.ID, month, year)
		if err != nil {
			config.LogError(logger, "budget.go", "GetAllBudgetsSpending", "GetBudgetSpending", budget.ID, err)
			continue
		}
		results = append(results, spending)
	}
	return results, nil
}
