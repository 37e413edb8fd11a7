package models

import "gorm.io/gorm"

// MigrateModels runs the schema migration for every table in dependency
// order. Called once at startup.
func MigrateModels(db *gorm.DB) error {
	return db.AutoMigrate(
		&User{},
		&Couple{},
		&BankAccount{},
		&Category{},
		&Transaction{},
		&Budget{},
		&FinancialGoal{},
		&AllocationMap{},
		&AutoAllocationRule{},
		&LedgerEvent{},
		&ApprovalSettings{},
		&PendingApproval{},
	)
}
