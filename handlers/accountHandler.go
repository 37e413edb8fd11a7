package handlers

import (
	"net/http"

	"github.com/Ruzakiff/wealthtogether/models"
	"github.com/gin-gonic/gin"
)

func CreateBankAccount(c *gin.Context) {
	var input models.NewBankAccount
	if err := c.ShouldBindJSON(&input); err != nil {
		respondError(c, err)
		return
	}
	account, err := models.CreateBankAccount(c.Request.Context(), &input)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, account)
}

func GetBankAccount(c *gin.Context) {
	account, err := models.GetBankAccount(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, account)
}

func GetUserAccounts(c *gin.Context) {
	accounts, err := models.GetUserAccounts(c.Request.Context(), c.Param("userId"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, accounts)
}

func GetCoupleAccounts(c *gin.Context) {
	accounts, err := models.GetCoupleAccounts(c.Request.Context(), c.Param("coupleId"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, accounts)
}

func GetAccountTransactions(c *gin.Context) {
	transactions, err := models.GetAccountTransactions(c.Request.Context(), c.Param("id"),
		queryInt(c, "limit", 100), queryInt(c, "offset", 0))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, transactions)
}

func CreateTransaction(c *gin.Context) {
	var input models.NewTransaction
	if err := c.ShouldBindJSON(&input); err != nil {
		respondError(c, err)
		return
	}
	transaction, err := models.CreateTransaction(c.Request.Context(), &input)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, transaction)
}
