package models

import (
	"context"
	"encoding/json"
	"time"

	"github.com/Ruzakiff/wealthtogether/config"
	"github.com/Ruzakiff/wealthtogether/utils"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

const approvalSettingsCachePrefix = "ApprovalSettings:"

// ApprovalSettings holds the per-couple thresholds that decide when a
// mutation needs partner consent. Exactly one row per couple, created lazily
// with defaults on first read.
type ApprovalSettings struct {
	ID                        string          `gorm:"primaryKey;size:36" json:"id"`
	CoupleId                  string          `gorm:"size:36;uniqueIndex;not null" json:"couple_id"`
	Enabled                   *bool           `gorm:"not null;default:true" json:"enabled"`
	BudgetCreationThreshold   decimal.Decimal `gorm:"type:decimal(20,2);default:500" json:"budget_creation_threshold"`
	BudgetUpdateThreshold     decimal.Decimal `gorm:"type:decimal(20,2);default:200" json:"budget_update_threshold"`
	GoalAllocationThreshold   decimal.Decimal `gorm:"type:decimal(20,2);default:500" json:"goal_allocation_threshold"`
	GoalReallocationThreshold decimal.Decimal `gorm:"type:decimal(20,2);default:300" json:"goal_reallocation_threshold"`
	AutoRuleThreshold         decimal.Decimal `gorm:"type:decimal(20,2);default:300" json:"auto_rule_threshold"`
	ApprovalExpirationHours   int             `gorm:"not null;default:72" json:"approval_expiration_hours"`
	NotifyOnCreate            *bool           `gorm:"not null;default:true" json:"notify_on_create"`
	NotifyOnResolve           *bool           `gorm:"not null;default:true" json:"notify_on_resolve"`
	CreatedAt                 time.Time       `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt                 time.Time       `gorm:"autoUpdateTime" json:"updated_at"`
}

type ApprovalSettingsUpdate struct {
	Enabled                   *bool            `json:"enabled"`
	BudgetCreationThreshold   *decimal.Decimal `json:"budget_creation_threshold"`
	BudgetUpdateThreshold     *decimal.Decimal `json:"budget_update_threshold"`
	GoalAllocationThreshold   *decimal.Decimal `json:"goal_allocation_threshold"`
	GoalReallocationThreshold *decimal.Decimal `json:"goal_reallocation_threshold"`
	AutoRuleThreshold         *decimal.Decimal `json:"auto_rule_threshold"`
	ApprovalExpirationHours   *int             `json:"approval_expiration_hours"`
	NotifyOnCreate            *bool            `json:"notify_on_create"`
	NotifyOnResolve           *bool            `json:"notify_on_resolve"`
}

func defaultApprovalSettings(coupleId string) *ApprovalSettings {
	return &ApprovalSettings{
		ID:                        uuid.NewString(),
		CoupleId:                  coupleId,
		Enabled:                   utils.NewTrue(),
		BudgetCreationThreshold:   decimal.NewFromInt(500),
		BudgetUpdateThreshold:     decimal.NewFromInt(200),
		GoalAllocationThreshold:   decimal.NewFromInt(500),
		GoalReallocationThreshold: decimal.NewFromInt(300),
		AutoRuleThreshold:         decimal.NewFromInt(300),
		ApprovalExpirationHours:   72,
		NotifyOnCreate:            utils.NewTrue(),
		NotifyOnResolve:           utils.NewTrue(),
	}
}

// GetOrCreateApprovalSettings loads the couple's settings, creating defaults
// on first access. The insert uses ON CONFLICT DO NOTHING on the couple_id
// unique index so concurrent first reads converge on one row. Reads go
// through redis when available.
func GetOrCreateApprovalSettings(ctx context.Context, coupleId string) (*ApprovalSettings, error) {

	var cached ApprovalSettings
	exists, err := config.GetRedisObject(approvalSettingsCachePrefix+coupleId, &cached)
	if err != nil {
		return nil, err
	}
	if exists {
		return &cached, nil
	}

	if err := utils.ValidateResourceId[Couple](ctx, coupleId); err != nil {
		return nil, err
	}

	db := config.GetDB()
	var settings ApprovalSettings
	err = db.WithContext(ctx).Where("couple_id = ?", coupleId).First(&settings).Error
	if err != nil {
		if err != gorm.ErrRecordNotFound {
			return nil, err
		}
		fresh := defaultApprovalSettings(coupleId)
		err = db.WithContext(ctx).
			Clauses(clause.OnConflict{Columns: []clause.Column{{Name: "couple_id"}}, DoNothing: true}).
			Create(fresh).Error
		if err != nil {
			return nil, err
		}
		// re-read: a concurrent creator may have won the upsert
		if err := db.WithContext(ctx).Where("couple_id = ?", coupleId).First(&settings).Error; err != nil {
			return nil, err
		}
	}

	if err := config.SetRedisObject(approvalSettingsCachePrefix+coupleId, &settings, 0); err != nil {
		config.LogError(config.GetLogger(), "approval.go", "GetOrCreateApprovalSettings", "SetRedisObject", coupleId, err)
	}
	return &settings, nil
}

// UpdateApprovalSettings applies a partial update; only provided fields
// change. Invalidates the cache entry.
func UpdateApprovalSettings(ctx context.Context, coupleId string, input *ApprovalSettingsUpdate) (*ApprovalSettings, error) {

	settings, err := GetOrCreateApprovalSettings(ctx, coupleId)
	if err != nil {
		return nil, err
	}

	updates := map[string]interface{}{}
	if input.Enabled != nil {
		updates["Enabled"] = *input.Enabled
	}
	if input.BudgetCreationThreshold != nil {
		updates["BudgetCreationThreshold"] = *input.BudgetCreationThreshold
	}
	if input.BudgetUpdateThreshold != nil {
		updates["BudgetUpdateThreshold"] = *input.BudgetUpdateThreshold
	}
	if input.GoalAllocationThreshold != nil {
		updates["GoalAllocationThreshold"] = *input.GoalAllocationThreshold
	}
	if input.GoalReallocationThreshold != nil {
		updates["GoalReallocationThreshold"] = *input.GoalReallocationThreshold
	}
	if input.AutoRuleThreshold != nil {
		updates["AutoRuleThreshold"] = *input.AutoRuleThreshold
	}
	if input.ApprovalExpirationHours != nil {
		updates["ApprovalExpirationHours"] = *input.ApprovalExpirationHours
	}
	if input.NotifyOnCreate != nil {
		updates["NotifyOnCreate"] = *input.NotifyOnCreate
	}
	if input.NotifyOnResolve != nil {
		updates["NotifyOnResolve"] = *input.NotifyOnResolve
	}

	db := config.GetDB()
	updates["UpdatedAt"] = time.Now().UTC()
	if err := db.WithContext(ctx).Model(settings).Updates(updates).Error; err != nil {
		return nil, err
	}

	if err := config.DeleteRedisKey(approvalSettingsCachePrefix + coupleId); err != nil {
		config.LogError(config.GetLogger(), "approval.go", "UpdateApprovalSettings", "DeleteRedisKey", coupleId, err)
	}

	return utils.FetchModel[ApprovalSettings](ctx, settings.ID)
}

// PendingApproval is a deferred mutation awaiting a partner's consent. The
// payload carries everything the dispatcher needs to replay it.
type PendingApproval struct {
	ID             string             `gorm:"primaryKey;size:36" json:"id"`
	CoupleId       string             `gorm:"size:36;index;not null" json:"couple_id"`
	InitiatedBy    string             `gorm:"size:36;index;not null" json:"initiated_by"`
	ActionType     ApprovalActionType `gorm:"type:enum('budget_create','budget_update','goal_create','goal_update','allocation','reallocation','auto_rule_create','auto_rule_update');index;not null" json:"action_type"`
	Payload        json.RawMessage    `gorm:"type:json" json:"payload"`
	Status         ApprovalStatus     `gorm:"type:enum('pending','approved','rejected','expired','canceled');default:'pending';index;not null" json:"status"`
	CreatedAt      time.Time          `gorm:"autoCreateTime;index" json:"created_at"`
	ExpiresAt      time.Time          `gorm:"index;not null" json:"expires_at"`
	ResolvedAt     *time.Time         `json:"resolved_at"`
	ResolvedBy     *string            `gorm:"size:36" json:"resolved_by"`
	ResolutionNote *string            `gorm:"type:text" json:"resolution_note"`
}

type NewPendingApproval struct {
	CoupleId    string             `json:"couple_id" binding:"required"`
	InitiatedBy string             `json:"initiated_by" binding:"required"`
	ActionType  ApprovalActionType `json:"action_type" binding:"required"`
	Payload     json.RawMessage    `json:"payload" binding:"required"`
	ExpiresAt   *time.Time         `json:"expires_at"`
}

type ApprovalFilter struct {
	CoupleId      string              `form:"couple_id"`
	Status        *ApprovalStatus     `form:"status"`
	ActionType    *ApprovalActionType `form:"action_type"`
	InitiatedBy   string              `form:"initiated_by"`
	CreatedAfter  *time.Time          `form:"created_after"`
	CreatedBefore *time.Time          `form:"created_before"`
}

// CreatePendingApproval records a deferred mutation. Initiator must exist and
// be a member of the couple. The approval row and its "approval_requested"
// audit event commit in one transaction.
func CreatePendingApproval(ctx context.Context, input *NewPendingApproval) (*PendingApproval, error) {

	couple, err := GetCouple(ctx, input.CoupleId)
	if err != nil {
		return nil, err
	}
	if err := utils.ValidateResourceId[User](ctx, input.InitiatedBy); err != nil {
		return nil, err
	}
	if !couple.HasMember(input.InitiatedBy) {
		return nil, utils.ErrorForbidden
	}

	expiresAt := time.Now().UTC()
	if input.ExpiresAt != nil {
		expiresAt = *input.ExpiresAt
	} else {
		settings, err := GetOrCreateApprovalSettings(ctx, input.CoupleId)
		if err != nil {
			return nil, err
		}
		hours := settings.ApprovalExpirationHours
		if hours <= 0 {
			hours = 72
		}
		expiresAt = expiresAt.Add(time.Duration(hours) * time.Hour)
	}

	approval := PendingApproval{
		ID:          uuid.NewString(),
		CoupleId:    input.CoupleId,
		InitiatedBy: input.InitiatedBy,
		ActionType:  input.ActionType,
		Payload:     input.Payload,
		Status:      ApprovalStatusPending,
		ExpiresAt:   expiresAt,
	}

	db := config.GetDB()
	err = db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(&approval).Error; err != nil {
			return err
		}
		return AppendLedgerEventTx(tx, &LedgerEvent{
			EventType: LedgerEventTypeSystem,
			UserId:    input.InitiatedBy,
			Metadata: JSONMap{
				"action":      "approval_requested",
				"approval_id": approval.ID,
				"action_type": string(input.ActionType),
				"summary":     "Approval requested for " + string(input.ActionType),
			},
		})
	})
	if err != nil {
		return nil, err
	}
	return &approval, nil
}

func GetPendingApproval(ctx context.Context, id string) (*PendingApproval, error) {
	return utils.FetchModel[PendingApproval](ctx, id)
}

// ListPendingApprovals filters the approval ledger; newest first.
func ListPendingApprovals(ctx context.Context, filter *ApprovalFilter) ([]*PendingApproval, error) {

	db := config.GetDB()
	query := db.WithContext(ctx).Model(&PendingApproval{})

	if filter != nil {
		if filter.CoupleId != "" {
			query = query.Where("couple_id = ?", filter.CoupleId)
		}
		if filter.Status != nil {
			query = query.Where("status = ?", *filter.Status)
		}
		if filter.ActionType != nil {
			query = query.Where("action_type = ?", *filter.ActionType)
		}
		if filter.InitiatedBy != "" {
			query = query.Where("initiated_by = ?", filter.InitiatedBy)
		}
		if filter.CreatedAfter != nil {
			query = query.Where("created_at >= ?", *filter.CreatedAfter)
		}
		if filter.CreatedBefore != nil {
			query = query.Where("created_at <= ?", *filter.CreatedBefore)
		}
	}

	var approvals []*PendingApproval
	if err := query.Order("created_at DESC").Find(&approvals).Error; err != nil {
		return nil, err
	}
	return approvals, nil
}
