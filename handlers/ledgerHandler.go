package handlers

import (
	"net/http"

	"github.com/Ruzakiff/wealthtogether/models"
	"github.com/gin-gonic/gin"
)

func GetUserLedgerEvents(c *gin.Context) {
	events, err := models.GetUserLedgerEvents(c.Request.Context(), c.Param("userId"),
		queryInt(c, "limit", 100), queryInt(c, "offset", 0))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, events)
}

func GetCoupleLedgerEvents(c *gin.Context) {
	events, err := models.GetCoupleLedgerEvents(c.Request.Context(), c.Param("coupleId"),
		queryInt(c, "limit", 100), queryInt(c, "offset", 0))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, events)
}

func GetAccountLedgerEvents(c *gin.Context) {
	events, err := models.GetAccountLedgerEvents(c.Request.Context(), c.Param("accountId"),
		queryInt(c, "limit", 100), queryInt(c, "offset", 0))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, events)
}

func GetGoalLedgerEvents(c *gin.Context) {
	events, err := models.GetGoalLedgerEvents(c.Request.Context(), c.Param("goalId"),
		queryInt(c, "limit", 100), queryInt(c, "offset", 0))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, events)
}
