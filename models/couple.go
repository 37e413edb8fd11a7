package models

import (
	"context"
	"errors"
	"time"

	"github.com/Ruzakiff/wealthtogether/config"
	"github.com/Ruzakiff/wealthtogether/utils"
	"github.com/google/uuid"
)

type Couple struct {
	ID         string    `gorm:"primaryKey;size:36" json:"id"`
	Partner1Id string    `gorm:"size:36;index;not null" json:"partner_1_id"`
	Partner2Id string    `gorm:"size:36;index;not null" json:"partner_2_id"`
	CreatedAt  time.Time `gorm:"autoCreateTime" json:"created_at"`
}

type NewCouple struct {
	Partner1Id string `json:"partner_1_id" binding:"required"`
	Partner2Id string `json:"partner_2_id" binding:"required"`
}

// HasMember reports whether userId is one of the two partners.
func (c *Couple) HasMember(userId string) bool {
	return userId == c.Partner1Id || userId == c.Partner2Id
}

func CreateCouple(ctx context.Context, input *NewCouple) (*Couple, error) {

	if input.Partner1Id == input.Partner2Id {
		return nil, errors.New("partners must be two different users")
	}
	if err := utils.ValidateResourceId[User](ctx, input.Partner1Id); err != nil {
		return nil, err
	}
	if err := utils.ValidateResourceId[User](ctx, input.Partner2Id); err != nil {
		return nil, err
	}

	// reject duplicate pairs in either order
	count, err := utils.ResourceCountWhere[Couple](ctx,
		"(partner_1_id = ? AND partner_2_id = ?) OR (partner_1_id = ? AND partner_2_id = ?)",
		input.Partner1Id, input.Partner2Id, input.Partner2Id, input.Partner1Id)
	if err != nil {
		return nil, err
	}
	if count > 0 {
		return nil, errors.New("a couple relationship already exists with these partners")
	}

	couple := Couple{
		ID:         uuid.NewString(),
		Partner1Id: input.Partner1Id,
		Partner2Id: input.Partner2Id,
	}

	db := config.GetDB()
	if err := db.WithContext(ctx).Create(&couple).Error; err != nil {
		return nil, err
	}
	return &couple, nil
}

func GetCouple(ctx context.Context, id string) (*Couple, error) {
	return utils.FetchModel[Couple](ctx, id)
}

func GetCouplesByUser(ctx context.Context, userId string) ([]*Couple, error) {
	return utils.FetchModelsWhere[Couple](ctx, "partner_1_id = ? OR partner_2_id = ?", userId, userId)
}

// IsCoupleMember is the membership check the approval engine consumes.
func IsCoupleMember(ctx context.Context, coupleId string, userId string) (bool, error) {
	couple, err := GetCouple(ctx, coupleId)
	if err != nil {
		return false, err
	}
	return couple.HasMember(userId), nil
}
