// seed-dev provisions a demo couple with accounts, goals and an allocation
// rule so the API is usable immediately after a fresh migration.
//
// Usage (from the repository root):
//
//	DB_USER=... DB_PASSWORD=... DB_HOST=... DB_PORT=... DB_NAME=... go run ./cmd/seed-dev
package main

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/Ruzakiff/wealthtogether/config"
	"github.com/Ruzakiff/wealthtogether/models"
)

const demoPassword = "wealthtogether-dev"

func main() {
	ctx := context.Background()
	config.ConnectDatabaseWithRetry()
	db := config.GetDB()
	if db == nil {
		fmt.Fprintln(os.Stderr, "database not initialized (config.GetDB returned nil). Set DB_* env vars.")
		os.Exit(1)
	}
	if err := models.MigrateModels(db); err != nil {
		fmt.Fprintf(os.Stderr, "migration failed: %v\n", err)
		os.Exit(1)
	}

	alex := ensureUser(ctx, db, "alex@example.com", "Alex")
	jordan := ensureUser(ctx, db, "jordan@example.com", "Jordan")

	couples, err := models.GetCouplesByUser(ctx, alex.ID)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to list couples: %v\n", err)
		os.Exit(1)
	}
	var couple *models.Couple
	for _, c := range couples {
		if c.HasMember(jordan.ID) {
			couple = c
			break
		}
	}
	if couple == nil {
		couple, err = models.CreateCouple(ctx, &models.NewCouple{
			Partner1Id: alex.ID,
			Partner2Id: jordan.ID,
		})
		if err != nil {
			fmt.Fprintf(os.Stderr, "failed to create couple: %v\n", err)
			os.Exit(1)
		}
	}

	checking := ensureAccount(ctx, db, alex.ID, "Joint Checking", decimal.NewFromInt(5000))
	ensureAccount(ctx, db, jordan.ID, "Jordan Savings", decimal.NewFromInt(12000))

	groceries := ensureCategory(ctx, db, "Groceries")
	ensureCategory(ctx, db, "Travel")

	emergency := ensureGoal(ctx, db, couple.ID, "Emergency Fund", models.GoalTypeEmergency, 1, decimal.NewFromInt(10000))
	ensureGoal(ctx, db, couple.ID, "Japan Trip", models.GoalTypeVacation, 2, decimal.NewFromInt(4000))

	ensureBudget(ctx, db, couple.ID, groceries.ID, decimal.NewFromInt(450))
	ensureRule(ctx, db, alex.ID, checking.ID, emergency.ID, decimal.NewFromInt(20))

	if _, err := models.GetOrCreateApprovalSettings(ctx, couple.ID); err != nil {
		fmt.Fprintf(os.Stderr, "failed to create approval settings: %v\n", err)
		os.Exit(1)
	}

	fmt.Printf("seeded couple %s (%s + %s); password for both users: %s\n",
		couple.ID, alex.Email, jordan.Email, demoPassword)
}

func ensureUser(ctx context.Context, db *gorm.DB, email string, name string) *models.User {
	var existing models.User
	err := db.WithContext(ctx).Where("email = ?", email).First(&existing).Error
	if err == nil {
		return &existing
	}
	if err != gorm.ErrRecordNotFound {
		fmt.Fprintf(os.Stderr, "failed to lookup user %s: %v\n", email, err)
		os.Exit(1)
	}
	user, err := models.CreateUser(ctx, &models.NewUser{
		Email:       email,
		DisplayName: name,
		Password:    demoPassword,
	})
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to create user %s: %v\n", email, err)
		os.Exit(1)
	}
	return user
}

func ensureAccount(ctx context.Context, db *gorm.DB, userId string, name string, balance decimal.Decimal) *models.BankAccount {
	var existing models.BankAccount
	err := db.WithContext(ctx).Where("user_id = ? AND name = ?", userId, name).First(&existing).Error
	if err == nil {
		return &existing
	}
	account, err := models.CreateBankAccount(ctx, &models.NewBankAccount{
		UserId:  userId,
		Name:    name,
		Balance: balance,
	})
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to create account %s: %v\n", name, err)
		os.Exit(1)
	}
	return account
}

func ensureCategory(ctx context.Context, db *gorm.DB, name string) *models.Category {
	var existing models.Category
	err := db.WithContext(ctx).Where("name = ?", name).First(&existing).Error
	if err == nil {
		return &existing
	}
	category, err := models.CreateCategory(ctx, &models.NewCategory{Name: name})
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to create category %s: %v\n", name, err)
		os.Exit(1)
	}
	return category
}

func ensureGoal(ctx context.Context, db *gorm.DB, coupleId string, name string, goalType models.GoalType, priority int, target decimal.Decimal) *models.FinancialGoal {
	var existing models.FinancialGoal
	err := db.WithContext(ctx).Where("couple_id = ? AND name = ?", coupleId, name).First(&existing).Error
	if err == nil {
		return &existing
	}
	var goal *models.FinancialGoal
	err = db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var txErr error
		goal, txErr = models.CreateFinancialGoalTx(tx, &models.NewFinancialGoal{
			CoupleId:     coupleId,
			Name:         name,
			TargetAmount: target,
			Type:         goalType,
			Priority:     priority,
		})
		return txErr
	})
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to create goal %s: %v\n", name, err)
		os.Exit(1)
	}
	return goal
}

func ensureBudget(ctx context.Context, db *gorm.DB, coupleId string, categoryId string, amount decimal.Decimal) {
	var count int64
	if err := db.WithContext(ctx).Model(&models.Budget{}).
		Where("couple_id = ? AND category_id = ?", coupleId, categoryId).Count(&count).Error; err == nil && count > 0 {
		return
	}
	err := db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		_, txErr := models.CreateBudgetTx(tx, &models.NewBudget{
			CoupleId:   coupleId,
			CategoryId: categoryId,
			Amount:     amount,
			Period:     models.BudgetPeriodMonthly,
			StartDate:  time.Now().UTC(),
		})
		return txErr
	})
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to create budget: %v\n", err)
		os.Exit(1)
	}
}

func ensureRule(ctx context.Context, db *gorm.DB, userId string, accountId string, goalId string, percent decimal.Decimal) {
	var count int64
	if err := db.WithContext(ctx).Model(&models.AutoAllocationRule{}).
		Where("source_account_id = ? AND goal_id = ?", accountId, goalId).Count(&count).Error; err == nil && count > 0 {
		return
	}
	err := db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		_, txErr := models.CreateAutoAllocationRuleTx(tx, &models.NewAutoAllocationRule{
			UserId:          userId,
			SourceAccountId: accountId,
			GoalId:          goalId,
			Percent:         percent,
			Trigger:         models.RuleTriggerDeposit,
		})
		return txErr
	})
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to create rule: %v\n", err)
		os.Exit(1)
	}
}
