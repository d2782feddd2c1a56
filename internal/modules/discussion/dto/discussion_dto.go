package dto

import (
	commonDto "anoa.com/learnhub/pkg/dto"
)

type CreateThreadInput struct {
	Title    string  `json:"title" binding:"required,min=3,max=200"`
	Body     string  `json:"body" binding:"required,max=20000"`
	LessonID *string `json:"lesson_id" binding:"omitempty,uuid"`
}

type CreateReplyInput struct {
	Body string `json:"body" binding:"required,max=20000"`
}

type ThreadQuery struct {
	LessonID string `form:"lesson_id" binding:"omitempty,uuid"`
	commonDto.PageQuery
}

type PinResponse struct {
	ID       string `json:"id"`
	IsPinned bool   `json:"is_pinned"`
}
