package handlers

import (
	"net/http"

	"github.com/Ruzakiff/wealthtogether/models"
	"github.com/Ruzakiff/wealthtogether/workflow"
	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
)

type allocationRequest struct {
	GoalId    string          `json:"goal_id" binding:"required"`
	AccountId string          `json:"account_id" binding:"required"`
	Amount    decimal.Decimal `json:"amount" binding:"required"`
}

type reallocationRequest struct {
	FromGoalId string          `json:"from_goal_id" binding:"required"`
	ToGoalId   string          `json:"to_goal_id" binding:"required"`
	Amount     decimal.Decimal `json:"amount" binding:"required"`
}

func CreateGoal(c *gin.Context) {
	var input models.NewFinancialGoal
	if err := c.ShouldBindJSON(&input); err != nil {
		respondError(c, err)
		return
	}
	outcome, err := workflow.GatedCreateGoal(c.Request.Context(), currentUserId(c), &input)
	if err != nil {
		respondError(c, err)
		return
	}
	respondGate(c, outcome, http.StatusCreated)
}

func UpdateGoal(c *gin.Context) {
	var changes models.FinancialGoalUpdate
	if err := c.ShouldBindJSON(&changes); err != nil {
		respondError(c, err)
		return
	}
	outcome, err := workflow.GatedUpdateGoal(c.Request.Context(), currentUserId(c), c.Param("id"), &changes)
	if err != nil {
		respondError(c, err)
		return
	}
	respondGate(c, outcome, http.StatusOK)
}

func GetGoal(c *gin.Context) {
	goal, err := models.GetFinancialGoal(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, goal)
}

func GetGoalsByCouple(c *gin.Context) {
	goals, err := models.GetGoalsByCouple(c.Request.Context(), c.Param("coupleId"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, goals)
}

func AllocateToGoal(c *gin.Context) {
	var input allocationRequest
	if err := c.ShouldBindJSON(&input); err != nil {
		respondError(c, err)
		return
	}
	outcome, err := workflow.GatedAllocate(c.Request.Context(), currentUserId(c), input.GoalId, input.AccountId, input.Amount)
	if err != nil {
		respondError(c, err)
		return
	}
	respondGate(c, outcome, http.StatusOK)
}

func ReallocateBetweenGoals(c *gin.Context) {
	var input reallocationRequest
	if err := c.ShouldBindJSON(&input); err != nil {
		respondError(c, err)
		return
	}
	outcome, err := workflow.GatedReallocate(c.Request.Context(), currentUserId(c), input.FromGoalId, input.ToGoalId, input.Amount)
	if err != nil {
		respondError(c, err)
		return
	}
	respondGate(c, outcome, http.StatusOK)
}
