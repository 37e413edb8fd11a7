package models

import (
	"context"
	"errors"
	"time"

	"github.com/Ruzakiff/wealthtogether/config"
	"github.com/Ruzakiff/wealthtogether/utils"
	"github.com/google/uuid"
)

type User struct {
	ID           string    `gorm:"primaryKey;size:36" json:"id"`
	Email        string    `gorm:"uniqueIndex;size:255;not null" json:"email"`
	DisplayName  string    `gorm:"size:100" json:"display_name"`
	PasswordHash string    `gorm:"size:100" json:"-"`
	CreatedAt    time.Time `gorm:"autoCreateTime" json:"created_at"`
}

type NewUser struct {
	Email       string `json:"email" binding:"required,email"`
	DisplayName string `json:"display_name"`
	Password    string `json:"password" binding:"required,min=8"`
}

type UserLogin struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

func CreateUser(ctx context.Context, input *NewUser) (*User, error) {

	count, err := utils.ResourceCountWhere[User](ctx, "email = ?", input.Email)
	if err != nil {
		return nil, err
	}
	if count > 0 {
		return nil, errors.New("email already registered")
	}

	hash, err := utils.HashPassword(input.Password)
	if err != nil {
		return nil, err
	}

	user := User{
		ID:           uuid.NewString(),
		Email:        input.Email,
		DisplayName:  input.DisplayName,
		PasswordHash: string(hash),
	}

	db := config.GetDB()
	if err := db.WithContext(ctx).Create(&user).Error; err != nil {
		return nil, err
	}
	return &user, nil
}

// AuthenticateUser checks credentials and issues a JWT.
func AuthenticateUser(ctx context.Context, input *UserLogin) (*User, string, error) {

	db := config.GetDB()
	var user User
	if err := db.WithContext(ctx).Where("email = ?", input.Email).First(&user).Error; err != nil {
		return nil, "", utils.ErrorRecordNotFound
	}
	if err := utils.ComparePassword(user.PasswordHash, input.Password); err != nil {
		return nil, "", utils.ErrorForbidden
	}
	token, err := utils.JwtGenerate(user.ID, user.Email)
	if err != nil {
		return nil, "", err
	}
	return &user, token, nil
}

func GetUser(ctx context.Context, id string) (*User, error) {
	return utils.FetchModel[User](ctx, id)
}

func GetAllUsers(ctx context.Context) ([]*User, error) {

	db := config.GetDB()
	var users []*User
	if err := db.WithContext(ctx).Order("created_at").Find(&users).Error; err != nil {
		return nil, err
	}
	return users, nil
}
