package handlers

import (
	"net/http"
	"time"

	"github.com/Ruzakiff/wealthtogether/models"
	"github.com/Ruzakiff/wealthtogether/workflow"
	"github.com/gin-gonic/gin"
)

func CreateApproval(c *gin.Context) {
	var input models.NewPendingApproval
	if err := c.ShouldBindJSON(&input); err != nil {
		respondError(c, err)
		return
	}
	approval, err := models.CreatePendingApproval(c.Request.Context(), &input)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, approval)
}

func GetApproval(c *gin.Context) {
	approval, err := models.GetPendingApproval(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, approval)
}

func ListApprovals(c *gin.Context) {
	filter := models.ApprovalFilter{
		CoupleId:    c.Query("couple_id"),
		InitiatedBy: c.Query("initiated_by"),
	}
	if raw := c.Query("status"); raw != "" {
		status, err := models.ParseApprovalStatus(raw)
		if err != nil {
			respondError(c, err)
			return
		}
		filter.Status = &status
	}
	if raw := c.Query("action_type"); raw != "" {
		actionType, err := models.ParseApprovalActionType(raw)
		if err != nil {
			respondError(c, err)
			return
		}
		filter.ActionType = &actionType
	}
	if raw := c.Query("created_after"); raw != "" {
		t, err := time.Parse(time.RFC3339, raw)
		if err != nil {
			respondError(c, err)
			return
		}
		filter.CreatedAfter = &t
	}
	if raw := c.Query("created_before"); raw != "" {
		t, err := time.Parse(time.RFC3339, raw)
		if err != nil {
			respondError(c, err)
			return
		}
		filter.CreatedBefore = &t
	}

	approvals, err := models.ListPendingApprovals(c.Request.Context(), &filter)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, approvals)
}

// ResolveApproval approves, rejects or cancels a pending approval. The
// response carries the resolved approval and, for approved actions, the
// replay's execution result.
func ResolveApproval(c *gin.Context) {
	var resolution workflow.ApprovalResolution
	if err := c.ShouldBindJSON(&resolution); err != nil {
		respondError(c, err)
		return
	}
	if resolution.ResolvedBy == "" {
		resolution.ResolvedBy = currentUserId(c)
	}
	approval, execution, err := workflow.ResolveApproval(c.Request.Context(), c.Param("id"), &resolution)
	if err != nil {
		respondError(c, err)
		return
	}
	response := gin.H{"approval": approval}
	if execution != nil {
		response["execution_result"] = execution
	}
	c.JSON(http.StatusOK, response)
}

func GetApprovalSettings(c *gin.Context) {
	settings, err := models.GetOrCreateApprovalSettings(c.Request.Context(), c.Param("coupleId"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, settings)
}

func UpdateApprovalSettings(c *gin.Context) {
	var input models.ApprovalSettingsUpdate
	if err := c.ShouldBindJSON(&input); err != nil {
		respondError(c, err)
		return
	}
	settings, err := models.UpdateApprovalSettings(c.Request.Context(), c.Param("coupleId"), &input)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, settings)
}
