package handlers

import (
	"net/http"
	"time"

	"github.com/Ruzakiff/wealthtogether/models"
	"github.com/Ruzakiff/wealthtogether/workflow"
	"github.com/gin-gonic/gin"
)

// respondGate serializes a gated mutation outcome. A deferred mutation
// answers 202 with the approval id so callers can poll; an executed one
// answers with the mutated entity.
func respondGate(c *gin.Context, outcome *workflow.GateOutcome, completedStatus int) {
	if outcome.Status == workflow.GateStatusPendingApproval {
		c.JSON(http.StatusAccepted, outcome)
		return
	}
	c.JSON(completedStatus, outcome.Result)
}

func CreateBudget(c *gin.Context) {
	var input models.NewBudget
	if err := c.ShouldBindJSON(&input); err != nil {
		respondError(c, err)
		return
	}
	outcome, err := workflow.GatedCreateBudget(c.Request.Context(), currentUserId(c), &input)
	if err != nil {
		respondError(c, err)
		return
	}
	respondGate(c, outcome, http.StatusCreated)
}

func UpdateBudget(c *gin.Context) {
	var changes models.BudgetUpdate
	if err := c.ShouldBindJSON(&changes); err != nil {
		respondError(c, err)
		return
	}
	outcome, err := workflow.GatedUpdateBudget(c.Request.Context(), currentUserId(c), c.Param("id"), &changes)
	if err != nil {
		respondError(c, err)
		return
	}
	respondGate(c, outcome, http.StatusOK)
}

func GetBudget(c *gin.Context) {
	budget, err := models.GetBudget(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, budget)
}

func GetBudgetsByCouple(c *gin.Context) {
	budgets, err := models.GetBudgetsByCouple(c.Request.Context(), c.Param("coupleId"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, budgets)
}

func DeleteBudget(c *gin.Context) {
	if err := models.DeleteBudget(c.Request.Context(), c.Param("id")); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "budget deleted"})
}

func GetBudgetSpending(c *gin.Context) {
	now := time.Now().UTC()
	spending, err := models.GetBudgetSpending(c.Request.Context(), c.Param("id"),
		queryInt(c, "month", int(now.Month())), queryInt(c, "year", now.Year()))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, spending)
}

func GetCoupleBudgetSpending(c *gin.Context) {
	now := time.Now().UTC()
	spending, err := models.GetAllBudgetsSpending(c.Request.Context(), c.Param("coupleId"),
		queryInt(c, "month", int(now.Month())), queryInt(c, "year", now.Year()))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, spending)
}
