package models

import (
	"fmt"

	"github.com/Ruzakiff/wealthtogether/utils"
)

type ApprovalActionType string

const (
	ApprovalActionBudgetCreate   ApprovalActionType = "budget_create"
	ApprovalActionBudgetUpdate   ApprovalActionType = "budget_update"
	ApprovalActionGoalCreate     ApprovalActionType = "goal_create"
	ApprovalActionGoalUpdate     ApprovalActionType = "goal_update"
	ApprovalActionAllocation     ApprovalActionType = "allocation"
	ApprovalActionReallocation   ApprovalActionType = "reallocation"
	ApprovalActionAutoRuleCreate ApprovalActionType = "auto_rule_create"
	ApprovalActionAutoRuleUpdate ApprovalActionType = "auto_rule_update"
)

func ParseApprovalActionType(s string) (ApprovalActionType, error) {
	switch ApprovalActionType(s) {
	case ApprovalActionBudgetCreate, ApprovalActionBudgetUpdate,
		ApprovalActionGoalCreate, ApprovalActionGoalUpdate,
		ApprovalActionAllocation, ApprovalActionReallocation,
		ApprovalActionAutoRuleCreate, ApprovalActionAutoRuleUpdate:
		return ApprovalActionType(s), nil
	}
	return "", fmt.Errorf("%w: invalid approval action type %q", utils.ErrorBadRequest, s)
}

type ApprovalStatus string

const (
	ApprovalStatusPending  ApprovalStatus = "pending"
	ApprovalStatusApproved ApprovalStatus = "approved"
	ApprovalStatusRejected ApprovalStatus = "rejected"
	ApprovalStatusExpired  ApprovalStatus = "expired"
	ApprovalStatusCanceled ApprovalStatus = "canceled"
)

// IsTerminal reports whether no further status transition is permitted.
func (s ApprovalStatus) IsTerminal() bool {
	switch s {
	case ApprovalStatusApproved, ApprovalStatusRejected, ApprovalStatusExpired, ApprovalStatusCanceled:
		return true
	}
	return false
}

func ParseApprovalStatus(s string) (ApprovalStatus, error) {
	switch ApprovalStatus(s) {
	case ApprovalStatusPending, ApprovalStatusApproved, ApprovalStatusRejected,
		ApprovalStatusExpired, ApprovalStatusCanceled:
		return ApprovalStatus(s), nil
	}
	return "", fmt.Errorf("%w: invalid approval status %q", utils.ErrorBadRequest, s)
}

type GoalType string

const (
	GoalTypeEmergency GoalType = "emergency"
	GoalTypeVacation  GoalType = "vacation"
	GoalTypeLongTerm  GoalType = "long_term"
	GoalTypeShortTerm GoalType = "short_term"
	GoalTypeCustom    GoalType = "custom"
)

type LedgerEventType string

const (
	LedgerEventTypeAllocation   LedgerEventType = "allocation"
	LedgerEventTypeReallocation LedgerEventType = "reallocation"
	LedgerEventTypeAdjustment   LedgerEventType = "adjustment"
	LedgerEventTypeDeposit      LedgerEventType = "deposit"
	LedgerEventTypeWithdrawal   LedgerEventType = "withdrawal"
	LedgerEventTypeSystem       LedgerEventType = "system"
)

type RuleTrigger string

const (
	RuleTriggerDeposit  RuleTrigger = "deposit"
	RuleTriggerSchedule RuleTrigger = "schedule"
)

type BudgetPeriod string

const (
	BudgetPeriodMonthly BudgetPeriod = "monthly"
	BudgetPeriodWeekly  BudgetPeriod = "weekly"
	BudgetPeriodYearly  BudgetPeriod = "yearly"
)
