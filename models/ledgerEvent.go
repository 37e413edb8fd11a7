package models

import (
	"context"
	"database/sql/driver"
	"encoding/json"
	"errors"
	"time"

	"github.com/Ruzakiff/wealthtogether/config"
	"github.com/Ruzakiff/wealthtogether/utils"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// JSONMap stores unstructured event metadata as a JSON column.
type JSONMap map[string]interface{}

func (m JSONMap) Value() (driver.Value, error) {
	if m == nil {
		return nil, nil
	}
	return json.Marshal(m)
}

func (m *JSONMap) Scan(value interface{}) error {
	if value == nil {
		*m = nil
		return nil
	}
	var b []byte
	switch v := value.(type) {
	case []byte:
		b = v
	case string:
		b = []byte(v)
	default:
		return errors.New("unsupported type for JSONMap")
	}
	return json.Unmarshal(b, m)
}

// LedgerEvent is the append-only audit record. The engine only ever inserts;
// rows are never updated or deleted.
type LedgerEvent struct {
	ID              string          `gorm:"primaryKey;size:36" json:"id"`
	EventType       LedgerEventType `gorm:"type:enum('allocation','reallocation','adjustment','deposit','withdrawal','system');index;not null" json:"event_type"`
	Amount          decimal.Decimal `gorm:"type:decimal(20,2);default:0" json:"amount"`
	SourceAccountId *string         `gorm:"size:36;index" json:"source_account_id"`
	DestGoalId      *string         `gorm:"size:36;index" json:"dest_goal_id"`
	UserId          string          `gorm:"size:36;index;not null" json:"user_id"`
	Timestamp       time.Time       `gorm:"autoCreateTime;index" json:"timestamp"`
	Metadata        JSONMap         `gorm:"type:json" json:"event_metadata"`
}

// AppendLedgerEventTx inserts an audit event inside tx. Assigns the id; the
// caller fills everything else.
func AppendLedgerEventTx(tx *gorm.DB, event *LedgerEvent) error {
	if event.ID == "" {
		event.ID = uuid.NewString()
	}
	return tx.Create(event).Error
}

// AppendLedgerEvent inserts an audit event outside any caller transaction.
// Failures are logged and swallowed: audit writes must never fail the
// primary mutation. Use AppendLedgerEventTx when atomicity with the mutation
// is required.
func AppendLedgerEvent(ctx context.Context, event *LedgerEvent) {
	db := config.GetDB()
	if event.ID == "" {
		event.ID = uuid.NewString()
	}
	if err := db.WithContext(ctx).Create(event).Error; err != nil {
		config.LogError(config.GetLogger(), "ledgerEvent.go", "AppendLedgerEvent", "Create", event.EventType, err)
	}
}

func ledgerEventQuery(ctx context.Context, limit int, offset int) *gorm.DB {
	if limit <= 0 {
		limit = 100
	}
	db := config.GetDB()
	return db.WithContext(ctx).Order("timestamp DESC").Offset(offset).Limit(limit)
}

func GetUserLedgerEvents(ctx context.Context, userId string, limit int, offset int) ([]*LedgerEvent, error) {

	if err := utils.ValidateResourceId[User](ctx, userId); err != nil {
		return nil, err
	}

	var events []*LedgerEvent
	err := ledgerEventQuery(ctx, limit, offset).Where("user_id = ?", userId).Find(&events).Error
	if err != nil {
		return nil, err
	}
	return events, nil
}

func GetCoupleLedgerEvents(ctx context.Context, coupleId string, limit int, offset int) ([]*LedgerEvent, error) {

	couple, err := GetCouple(ctx, coupleId)
	if err != nil {
		return nil, err
	}

	var events []*LedgerEvent
	err = ledgerEventQuery(ctx, limit, offset).
		Where("user_id = ? OR user_id = ?", couple.Partner1Id, couple.Partner2Id).
		Find(&events).Error
	if err != nil {
		return nil, err
	}
	return events, nil
}

func GetAccountLedgerEvents(ctx context.Context, accountId string, limit int, offset int) ([]*LedgerEvent, error) {

	if err := utils.ValidateResourceId[BankAccount](ctx, accountId); err != nil {
		return nil, err
	}

	var events []*LedgerEvent
	err := ledgerEventQuery(ctx, limit, offset).Where("source_account_id = ?", accountId).Find(&events).Error
	if err != nil {
		return nil, err
	}
	return events, nil
}

func GetGoalLedgerEvents(ctx context.Context, goalId string, limit int, offset int) ([]*LedgerEvent, error) {

	if err := utils.ValidateResourceId[FinancialGoal](ctx, goalId); err != nil {
		return nil, err
	}

	var events []*LedgerEvent
	err := ledgerEventQuery(ctx, limit, offset).Where("dest_goal_id = ?", goalId).Find(&events).Error
	if err != nil {
		return nil, err
	}
	return events, nil
}
