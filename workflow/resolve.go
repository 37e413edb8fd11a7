package workflow

import (
	"context"
	"strings"
	"time"

	"github.com/Ruzakiff/wealthtogether/config"
	"github.com/Ruzakiff/wealthtogether/models"
	"github.com/Ruzakiff/wealthtogether/utils"
	"gorm.io/gorm"
)

type ApprovalResolution struct {
	Status         models.ApprovalStatus `json:"status" binding:"required"`
	ResolvedBy     string                `json:"resolved_by" binding:"required"`
	ResolutionNote *string               `json:"resolution_note"`
}

// ExecutionResult reports what happened when an approved action was replayed.
// A failed replay leaves the approval resolved; the error travels here
// instead of unwinding the resolution.
type ExecutionResult struct {
	Result interface{} `json:"result,omitempty"`
	Error  string      `json:"error,omitempty"`
}

// validateResolution applies every resolution guard that does not need the
// database: target status sanity, terminal-state conflict, expiry, couple
// membership, the self-approval ban, and the initiator-only rule for
// cancellation.
func validateResolution(approval *models.PendingApproval, couple *models.Couple, resolution *ApprovalResolution, now time.Time) error {
	switch resolution.Status {
	case models.ApprovalStatusApproved, models.ApprovalStatusRejected, models.ApprovalStatusCanceled:
	default:
		return utils.ErrorBadRequest
	}
	if approval.Status != models.ApprovalStatusPending {
		return utils.ErrorConflict
	}
	if now.After(approval.ExpiresAt) {
		return utils.ErrorExpired
	}
	if !couple.HasMember(resolution.ResolvedBy) {
		return utils.ErrorForbidden
	}
	if resolution.Status == models.ApprovalStatusCanceled {
		if resolution.ResolvedBy != approval.InitiatedBy {
			return utils.ErrorForbidden
		}
	} else if resolution.ResolvedBy == approval.InitiatedBy {
		return utils.ErrorForbidden
	}
	return nil
}

// ResolveApproval transitions a pending approval to approved, rejected or
// canceled. The status transition uses a compare-and-swap on the pending
// status so concurrent resolvers cannot both win; the loser observes a
// conflict. An approved action is then replayed in a second transaction
// whose failure does not revert the resolution.
func ResolveApproval(ctx context.Context, approvalId string, resolution *ApprovalResolution) (*models.PendingApproval, *ExecutionResult, error) {

	approval, err := models.GetPendingApproval(ctx, approvalId)
	if err != nil {
		return nil, nil, err
	}
	couple, err := models.GetCouple(ctx, approval.CoupleId)
	if err != nil {
		return nil, nil, err
	}

	db := config.GetDB()
	now := time.Now().UTC()

	if err := validateResolution(approval, couple, resolution, now); err != nil {
		if err == utils.ErrorExpired {
			// the flip to expired persists even though this call fails
			flipErr := db.WithContext(ctx).Model(&models.PendingApproval{}).
				Where("id = ? AND status = ?", approvalId, models.ApprovalStatusPending).
				Updates(map[string]interface{}{"Status": models.ApprovalStatusExpired, "ResolvedAt": now}).Error
			if flipErr != nil {
				return nil, nil, flipErr
			}
		}
		return nil, nil, err
	}

	err = db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		result := tx.Model(&models.PendingApproval{}).
			Where("id = ? AND status = ?", approvalId, models.ApprovalStatusPending).
			Updates(map[string]interface{}{
				"Status":         resolution.Status,
				"ResolvedAt":     now,
				"ResolvedBy":     resolution.ResolvedBy,
				"ResolutionNote": resolution.ResolutionNote,
			})
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return utils.ErrorConflict
		}
		status := string(resolution.Status)
		return models.AppendLedgerEventTx(tx, &models.LedgerEvent{
			EventType: models.LedgerEventTypeSystem,
			UserId:    resolution.ResolvedBy,
			Metadata: models.JSONMap{
				"action":      "approval_" + status,
				"approval_id": approvalId,
				"action_type": string(approval.ActionType),
				"summary":     strings.ToUpper(status[:1]) + status[1:] + " " + string(approval.ActionType),
			},
		})
	})
	if err != nil {
		return nil, nil, err
	}

	approval.Status = resolution.Status
	approval.ResolvedAt = &now
	approval.ResolvedBy = &resolution.ResolvedBy
	approval.ResolutionNote = resolution.ResolutionNote

	if resolution.Status != models.ApprovalStatusApproved {
		return approval, nil, nil
	}

	execution := &ExecutionResult{}
	err = db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		result, err := Dispatch(tx, approval.ActionType, approval.Payload)
		if err != nil {
			return err
		}
		execution.Result = result
		return nil
	})
	if err != nil {
		config.LogError(config.GetLogger(), "resolve.go", "ResolveApproval", "Dispatch", approval.ActionType, err)
		execution.Error = err.Error()
	}
	return approval, execution, nil
}
