package models

import (
	"context"
	"time"

	"github.com/Ruzakiff/wealthtogether/config"
	"github.com/Ruzakiff/wealthtogether/utils"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type Transaction struct {
	ID           string          `gorm:"primaryKey;size:36" json:"id"`
	AccountId    string          `gorm:"size:36;index;not null" json:"account_id"`
	Amount       decimal.Decimal `gorm:"type:decimal(20,2);not null" json:"amount"`
	Description  string          `gorm:"size:255;not null" json:"description"`
	MerchantName string          `gorm:"size:100" json:"merchant_name"`
	Date         time.Time       `gorm:"type:date;index;not null" json:"date"`
	CategoryId   *string         `gorm:"size:36;index" json:"category_id"`
	IsPending    *bool           `gorm:"not null;default:false" json:"is_pending"`
	CreatedAt    time.Time       `gorm:"autoCreateTime" json:"created_at"`
}

type NewTransaction struct {
	AccountId    string          `json:"account_id" binding:"required"`
	Amount       decimal.Decimal `json:"amount" binding:"required"`
	Description  string          `json:"description" binding:"required"`
	MerchantName string          `json:"merchant_name"`
	Date         time.Time       `json:"date" binding:"required"`
	CategoryId   *string         `json:"category_id"`
	IsPending    bool            `json:"is_pending"`
}

func CreateTransaction(ctx context.Context, input *NewTransaction) (*Transaction, error) {

	if err := utils.ValidateResourceId[BankAccount](ctx, input.AccountId); err != nil {
		return nil, err
	}
	if input.CategoryId != nil {
		if err := utils.ValidateResourceId[Category](ctx, *input.CategoryId); err != nil {
			return nil, err
		}
	}

	txn := Transaction{
		ID:           uuid.NewString(),
		AccountId:    input.AccountId,
		Amount:       input.Amount,
		Description:  input.Description,
		MerchantName: input.MerchantName,
		Date:         input.Date,
		CategoryId:   input.CategoryId,
		IsPending:    &input.IsPending,
	}

	db := config.GetDB()
	if err := db.WithContext(ctx).Create(&txn).Error; err != nil {
		return nil, err
	}
	return &txn, nil
}

func GetAccountTransactions(ctx context.Context, accountId string, limit int, offset int) ([]*Transaction, error) {

	if err := utils.ValidateResourceId[BankAccount](ctx, accountId); err != nil {
		return nil, err
	}
	if limit <= 0 {
		limit = 100
	}

	db := config.GetDB()
	var txns []*Transaction
	err := db.WithContext(ctx).
		Where("account_id = ?", accountId).
		Order("date DESC, created_at DESC").
		Offset(offset).Limit(limit).
		Find(&txns).Error
	if err != nil {
		return nil, err
	}
	return txns, nil
}
