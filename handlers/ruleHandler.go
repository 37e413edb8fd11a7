package handlers

import (
	"net/http"

	"github.com/Ruzakiff/wealthtogether/models"
	"github.com/Ruzakiff/wealthtogether/workflow"
	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
)

type executeRulesRequest struct {
	AccountId     string           `json:"account_id" binding:"required"`
	DepositAmount *decimal.Decimal `json:"deposit_amount"`
	ManualTrigger bool             `json:"manual_trigger"`
}

type executeRuleRequest struct {
	DepositAmount *decimal.Decimal `json:"deposit_amount"`
}

func CreateAutoRule(c *gin.Context) {
	var input models.NewAutoAllocationRule
	if err := c.ShouldBindJSON(&input); err != nil {
		respondError(c, err)
		return
	}
	input.UserId = currentUserId(c)
	outcome, err := workflow.GatedCreateAutoRule(c.Request.Context(), &input)
	if err != nil {
		respondError(c, err)
		return
	}
	respondGate(c, outcome, http.StatusCreated)
}

func UpdateAutoRule(c *gin.Context) {
	var changes models.AutoAllocationRuleUpdate
	if err := c.ShouldBindJSON(&changes); err != nil {
		respondError(c, err)
		return
	}
	outcome, err := workflow.GatedUpdateAutoRule(c.Request.Context(), currentUserId(c), c.Param("id"), &changes)
	if err != nil {
		respondError(c, err)
		return
	}
	respondGate(c, outcome, http.StatusOK)
}

func GetAutoRule(c *gin.Context) {
	rule, err := models.GetAutoAllocationRule(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, rule)
}

func ListUserRules(c *gin.Context) {
	rules, err := models.GetRulesByUser(c.Request.Context(), c.Param("userId"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, rules)
}

func DeleteAutoRule(c *gin.Context) {
	if err := models.DeleteAutoAllocationRule(c.Request.Context(), c.Param("id"), currentUserId(c)); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "rule deleted"})
}

// ExecuteRule runs one rule immediately.
func ExecuteRule(c *gin.Context) {
	var input executeRuleRequest
	if err := c.ShouldBindJSON(&input); err != nil && err.Error() != "EOF" {
		respondError(c, err)
		return
	}
	result, err := workflow.ExecuteRule(c.Request.Context(), c.Param("id"), input.DepositAmount)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

// ExecuteAccountRules runs every active rule on an account as one waterfall.
func ExecuteAccountRules(c *gin.Context) {
	var input executeRulesRequest
	if err := c.ShouldBindJSON(&input); err != nil {
		respondError(c, err)
		return
	}
	results, err := workflow.ExecuteAccountRules(c.Request.Context(), currentUserId(c),
		input.AccountId, input.DepositAmount, input.ManualTrigger)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"results": results})
}
