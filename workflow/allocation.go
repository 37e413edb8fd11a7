package workflow

import (
	"github.com/Ruzakiff/wealthtogether/models"
	"github.com/Ruzakiff/wealthtogether/utils"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// Milestone marks a goal crossing one of the quarter boundaries. Bands are
// widened a percentage point below each mark so decimal rounding on the
// funded ratio still lands inside one.
type Milestone struct {
	Type       string `json:"type"`
	Percentage int    `json:"percentage"`
}

// DetectMilestone reports the milestone a goal's funded percentage falls
// into, or nil when it is outside every band. Repeat allocations landing in
// the same band re-fire; callers treat re-fires as acceptable.
func DetectMilestone(current, target decimal.Decimal) *Milestone {
	if !target.IsPositive() {
		return nil
	}
	percent := current.Div(target).Mul(decimal.NewFromInt(100))
	switch {
	case percent.GreaterThanOrEqual(decimal.NewFromInt(99)):
		return &Milestone{Type: "complete", Percentage: 100}
	case percent.GreaterThanOrEqual(decimal.NewFromInt(74)) && percent.LessThan(decimal.NewFromInt(76)):
		return &Milestone{Type: "three_quarters", Percentage: 75}
	case percent.GreaterThanOrEqual(decimal.NewFromInt(49)) && percent.LessThan(decimal.NewFromInt(51)):
		return &Milestone{Type: "half", Percentage: 50}
	case percent.GreaterThanOrEqual(decimal.NewFromInt(24)) && percent.LessThan(decimal.NewFromInt(26)):
		return &Milestone{Type: "quarter", Percentage: 25}
	default:
		return nil
	}
}

// AllocateToGoalTx moves amount from an account's unallocated balance onto a
// goal, inside the caller's transaction. The available balance is the account
// balance minus everything already earmarked across all goals; allocations
// never move real money between accounts.
func AllocateToGoalTx(tx *gorm.DB, userId string, goalId string, accountId string, amount decimal.Decimal) (*models.FinancialGoal, error) {

	if !amount.IsPositive() {
		return nil, utils.ErrorBadRequest
	}

	var goal models.FinancialGoal
	if err := tx.Where("id = ?", goalId).First(&goal).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, utils.ErrorRecordNotFound
		}
		return nil, err
	}
	var account models.BankAccount
	if err := tx.Where("id = ?", accountId).First(&account).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, utils.ErrorRecordNotFound
		}
		return nil, err
	}
	if account.UserId != userId {
		return nil, utils.ErrorForbidden
	}

	allocated, err := models.AllocatedTotal(tx, accountId)
	if err != nil {
		return nil, err
	}
	available := account.Balance.Sub(allocated)
	if amount.GreaterThan(available) {
		return nil, utils.ErrorInsufficientFunds
	}

	eventMetadata := models.JSONMap{"goal_name": goal.Name}
	var mapping models.AllocationMap
	err = tx.Where("goal_id = ? AND account_id = ?", goalId, accountId).First(&mapping).Error
	if err == gorm.ErrRecordNotFound {
		mapping = models.AllocationMap{
			ID:              uuid.NewString(),
			GoalId:          goalId,
			AccountId:       accountId,
			AllocatedAmount: amount,
		}
		if err := tx.Create(&mapping).Error; err != nil {
			return nil, err
		}
		eventMetadata["initial_allocation"] = true
	} else if err != nil {
		return nil, err
	} else {
		eventMetadata["previous_allocation"] = mapping.AllocatedAmount.StringFixed(2)
		newAmount := mapping.AllocatedAmount.Add(amount)
		if err := tx.Model(&mapping).Update("AllocatedAmount", newAmount).Error; err != nil {
			return nil, err
		}
	}

	newAllocation := goal.CurrentAllocation.Add(amount)
	if err := tx.Model(&goal).Update("CurrentAllocation", newAllocation).Error; err != nil {
		return nil, err
	}
	goal.CurrentAllocation = newAllocation

	err = models.AppendLedgerEventTx(tx, &models.LedgerEvent{
		EventType:       models.LedgerEventTypeAllocation,
		Amount:          amount,
		SourceAccountId: &accountId,
		DestGoalId:      &goalId,
		UserId:          userId,
		Metadata:        eventMetadata,
	})
	if err != nil {
		return nil, err
	}

	if milestone := DetectMilestone(newAllocation, goal.TargetAmount); milestone != nil {
		err = models.AppendLedgerEventTx(tx, &models.LedgerEvent{
			EventType:  models.LedgerEventTypeSystem,
			DestGoalId: &goalId,
			UserId:     userId,
			Metadata: models.JSONMap{
				"action":         "goal_milestone",
				"milestone_type": milestone.Type,
				"percentage":     milestone.Percentage,
				"is_milestone":   true,
				"goal_name":      goal.Name,
			},
		})
		if err != nil {
			return nil, err
		}
	}

	return &goal, nil
}

// ReallocateTx moves already-earmarked funds between two goals of the same
// couple, inside the caller's transaction. The per-account mappings follow
// the move so each goal's mapping sum stays equal to its current allocation.
// Exactly one ledger event records the move.
func ReallocateTx(tx *gorm.DB, userId string, fromGoalId string, toGoalId string, amount decimal.Decimal) error {

	if !amount.IsPositive() || fromGoalId == toGoalId {
		return utils.ErrorBadRequest
	}

	var source, dest models.FinancialGoal
	if err := tx.Where("id = ?", fromGoalId).First(&source).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return utils.ErrorRecordNotFound
		}
		return err
	}
	if err := tx.Where("id = ?", toGoalId).First(&dest).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return utils.ErrorRecordNotFound
		}
		return err
	}
	if source.CoupleId != dest.CoupleId {
		return utils.ErrorForbidden
	}
	if source.CurrentAllocation.LessThan(amount) {
		return utils.ErrorInsufficientFunds
	}

	var sourceMaps []*models.AllocationMap
	err := tx.Where("goal_id = ?", fromGoalId).Order("allocated_amount DESC, id").Find(&sourceMaps).Error
	if err != nil {
		return err
	}

	remaining := amount
	for _, sourceMap := range sourceMaps {
		if !remaining.IsPositive() {
			break
		}
		moved := decimal.Min(sourceMap.AllocatedAmount, remaining)
		if !moved.IsPositive() {
			continue
		}
		if err := tx.Model(sourceMap).Update("AllocatedAmount", sourceMap.AllocatedAmount.Sub(moved)).Error; err != nil {
			return err
		}

		var destMap models.AllocationMap
		err := tx.Where("goal_id = ? AND account_id = ?", toGoalId, sourceMap.AccountId).First(&destMap).Error
		if err == gorm.ErrRecordNotFound {
			destMap = models.AllocationMap{
				ID:              uuid.NewString(),
				GoalId:          toGoalId,
				AccountId:       sourceMap.AccountId,
				AllocatedAmount: moved,
			}
			if err := tx.Create(&destMap).Error; err != nil {
				return err
			}
		} else if err != nil {
			return err
		} else {
			if err := tx.Model(&destMap).Update("AllocatedAmount", destMap.AllocatedAmount.Add(moved)).Error; err != nil {
				return err
			}
		}
		remaining = remaining.Sub(moved)
	}
	if remaining.IsPositive() {
		return utils.ErrorInsufficientFunds
	}

	if err := tx.Model(&source).Update("CurrentAllocation", source.CurrentAllocation.Sub(amount)).Error; err != nil {
		return err
	}
	if err := tx.Model(&dest).Update("CurrentAllocation", dest.CurrentAllocation.Add(amount)).Error; err != nil {
		return err
	}

	return models.AppendLedgerEventTx(tx, &models.LedgerEvent{
		EventType:  models.LedgerEventTypeReallocation,
		Amount:     amount,
		DestGoalId: &toGoalId,
		UserId:     userId,
		Metadata: models.JSONMap{
			"source_goal_id":   fromGoalId,
			"source_goal_name": source.Name,
			"dest_goal_name":   dest.Name,
		},
	})
}
