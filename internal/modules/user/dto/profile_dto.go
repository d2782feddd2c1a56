package dto

import (
	"anoa.com/learnhub/internal/entity"
)

type UpdateProfileInput struct {
	FullName *string `json:"full_name" form:"full_name" binding:"omitempty,max=100"`
	Bio      *string `json:"bio" form:"bio"`
	Headline *string `json:"headline" form:"headline" binding:"omitempty,max=150"`
	Password *string `json:"password" form:"password" binding:"omitempty,min=8"`
}

type ProfileResponse struct {
	User    *entity.User    `json:"user"`
	Role    string          `json:"role"`
	Profile *entity.Profile `json:"profile"`
}
