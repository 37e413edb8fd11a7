package models

import (
	"context"
	"time"

	"github.com/Ruzakiff/wealthtogether/config"
	"github.com/Ruzakiff/wealthtogether/utils"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

type BankAccount struct {
	ID              string          `gorm:"primaryKey;size:36" json:"id"`
	UserId          string          `gorm:"size:36;index;not null" json:"user_id"`
	Name            string          `gorm:"size:100;not null" json:"name"`
	Balance         decimal.Decimal `gorm:"type:decimal(20,2);default:0" json:"balance"`
	InstitutionName string          `gorm:"size:100" json:"institution_name"`
	IsManual        *bool           `gorm:"not null;default:false" json:"is_manual"`
	CreatedAt       time.Time       `gorm:"autoCreateTime" json:"created_at"`
}

type NewBankAccount struct {
	UserId          string          `json:"user_id" binding:"required"`
	Name            string          `json:"name" binding:"required"`
	Balance         decimal.Decimal `json:"balance"`
	InstitutionName string          `json:"institution_name"`
	IsManual        bool            `json:"is_manual"`
}

func CreateBankAccount(ctx context.Context, input *NewBankAccount) (*BankAccount, error) {

	if err := utils.ValidateResourceId[User](ctx, input.UserId); err != nil {
		return nil, err
	}

	account := BankAccount{
		ID:              uuid.NewString(),
		UserId:          input.UserId,
		Name:            input.Name,
		Balance:         input.Balance,
		InstitutionName: input.InstitutionName,
		IsManual:        &input.IsManual,
	}

	db := config.GetDB()
	if err := db.WithContext(ctx).Create(&account).Error; err != nil {
		return nil, err
	}
	return &account, nil
}

func GetBankAccount(ctx context.Context, id string) (*BankAccount, error) {
	return utils.FetchModel[BankAccount](ctx, id)
}

func GetUserAccounts(ctx context.Context, userId string) ([]*BankAccount, error) {

	if err := utils.ValidateResourceId[User](ctx, userId); err != nil {
		return nil, err
	}
	return utils.FetchModelsWhere[BankAccount](ctx, "user_id = ?", userId)
}

func GetCoupleAccounts(ctx context.Context, coupleId string) ([]*BankAccount, error) {

	couple, err := GetCouple(ctx, coupleId)
	if err != nil {
		return nil, err
	}
	return utils.FetchModelsWhere[BankAccount](ctx, "user_id = ? OR user_id = ?", couple.Partner1Id, couple.Partner2Id)
}

// AllocatedTotal sums every AllocationMap row against the account within tx.
// The account's spendable total is balance minus this sum.
func AllocatedTotal(tx *gorm.DB, accountId string) (decimal.Decimal, error) {

	var total decimal.NullDecimal
	err := tx.Model(&AllocationMap{}).
		Where("account_id = ?", accountId).
		Select("SUM(allocated_amount)").
		Scan(&total).Error
	if err != nil {
		return decimal.Zero, err
	}
	if !total.Valid {
		return decimal.Zero, nil
	}
	return total.Decimal, nil
}
