package handlers

import (
	"net/http"

	"github.com/Ruzakiff/wealthtogether/models"
	"github.com/gin-gonic/gin"
)

func CreateCouple(c *gin.Context) {
	var input models.NewCouple
	if err := c.ShouldBindJSON(&input); err != nil {
		respondError(c, err)
		return
	}
	couple, err := models.CreateCouple(c.Request.Context(), &input)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, couple)
}

func GetCouple(c *gin.Context) {
	couple, err := models.GetCouple(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, couple)
}

func GetCouplesByUser(c *gin.Context) {
	couples, err := models.GetCouplesByUser(c.Request.Context(), c.Param("userId"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, couples)
}
