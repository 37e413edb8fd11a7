package handlers

import (
	"net/http"

	"github.com/Ruzakiff/wealthtogether/models"
	"github.com/gin-gonic/gin"
)

func CreateCategory(c *gin.Context) {
	var input models.NewCategory
	if err := c.ShouldBindJSON(&input); err != nil {
		respondError(c, err)
		return
	}
	category, err := models.CreateCategory(c.Request.Context(), &input)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, category)
}

func ListCategories(c *gin.Context) {
	ctx := c.Request.Context()
	if c.Query("top_level") == "true" {
		categories, err := models.GetTopLevelCategories(ctx)
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, categories)
		return
	}
	categories, err := models.GetAllCategories(ctx)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, categories)
}

func GetCategory(c *gin.Context) {
	category, err := models.GetCategory(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, category)
}

func GetSubcategories(c *gin.Context) {
	categories, err := models.GetSubcategories(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, categories)
}
