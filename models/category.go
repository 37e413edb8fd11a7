package models

import (
	"context"
	"time"

	"github.com/Ruzakiff/wealthtogether/config"
	"github.com/Ruzakiff/wealthtogether/utils"
	"github.com/google/uuid"
)

// Category rows form a tree through ParentCategoryId back-references; child
// listing is a query on the parent id, never a loaded pointer graph.
type Category struct {
	ID               string    `gorm:"primaryKey;size:36" json:"id"`
	Name             string    `gorm:"size:100;not null" json:"name"`
	ParentCategoryId *string   `gorm:"size:36;index" json:"parent_category_id"`
	Icon             string    `gorm:"size:50" json:"icon"`
	CreatedAt        time.Time `gorm:"autoCreateTime" json:"created_at"`
}

type NewCategory struct {
	Name             string  `json:"name" binding:"required"`
	ParentCategoryId *string `json:"parent_category_id"`
	Icon             string  `json:"icon"`
}

func CreateCategory(ctx context.Context, input *NewCategory) (*Category, error) {

	if input.ParentCategoryId != nil {
		if err := utils.ValidateResourceId[Category](ctx, *input.ParentCategoryId); err != nil {
			return nil, err
		}
	}

	category := Category{
		ID:               uuid.NewString(),
		Name:             input.Name,
		ParentCategoryId: input.ParentCategoryId,
		Icon:             input.Icon,
	}

	db := config.GetDB()
	if err := db.WithContext(ctx).Create(&category).Error; err != nil {
		return nil, err
	}
	return &category, nil
}

func GetCategory(ctx context.Context, id string) (*Category, error) {
	return utils.FetchModel[Category](ctx, id)
}

func GetAllCategories(ctx context.Context) ([]*Category, error) {

	db := config.GetDB()
	var categories []*Category
	if err := db.WithContext(ctx).Order("name").Find(&categories).Error; err != nil {
		return nil, err
	}
	return categories, nil
}

func GetTopLevelCategories(ctx context.Context) ([]*Category, error) {
	return utils.FetchModelsWhere[Category](ctx, "parent_category_id IS NULL")
}

func GetSubcategories(ctx context.Context, parentId string) ([]*Category, error) {

	if err := utils.ValidateResourceId[Category](ctx, parentId); err != nil {
		return nil, err
	}
	return utils.FetchModelsWhere[Category](ctx, "parent_category_id = ?", parentId)
}
