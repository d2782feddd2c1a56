package dto

import (
	"anoa.com/learnhub/internal/entity"
	commonDto "anoa.com/learnhub/pkg/dto"
)

type CreateUserInput struct {
	Username string  `json:"username" form:"username" binding:"required,min=3,max=50"`
	Email    string  `json:"email" form:"email" binding:"required,email"`
	Password string  `json:"password" form:"password" binding:"required,min=8"`
	Role     string  `json:"role" form:"role" binding:"required,oneof=admin instructor assessor student"`
	FullName string  `json:"full_name" form:"full_name" binding:"required,max=100"`
	Headline *string `json:"headline" form:"headline"`
	Bio      *string `json:"bio" form:"bio"`
}

type UpdateAdminUserInput struct {
	Username string  `json:"username" form:"username" binding:"omitempty,min=3,max=50"`
	Email    string  `json:"email" form:"email" binding:"omitempty,email"`
	Password string  `json:"password" form:"password" binding:"omitempty,min=8"`
	Role     string  `json:"role" form:"role" binding:"omitempty,oneof=admin instructor assessor student"`
	FullName string  `json:"full_name" form:"full_name" binding:"omitempty,max=100"`
	IsActive *bool   `json:"is_active" form:"is_active"`
	Headline *string `json:"headline" form:"headline"`
	Bio      *string `json:"bio" form:"bio"`
}

type UserListQuery struct {
	Role   string `form:"role" binding:"omitempty,oneof=admin instructor assessor student"`
	Search string `form:"search"`
	commonDto.PageQuery
}

type AdminUserResponse struct {
	User    *entity.User    `json:"user"`
	Role    *entity.Role    `json:"role"`
	Profile *entity.Profile `json:"profile"`
}
