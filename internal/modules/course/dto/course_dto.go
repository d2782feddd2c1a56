package dto

import (
	"anoa.com/learnhub/internal/entity"
	commonDto "anoa.com/learnhub/pkg/dto"
	"github.com/google/uuid"
)

type CreateCourseInput struct {
	Title       string `json:"title" binding:"required,min=3,max=200"`
	Description string `json:"description"`
	Level       string `json:"level" binding:"omitempty,oneof=beginner intermediate advanced"`
	Price       int64  `json:"price" binding:"min=0"`
	Currency    string `json:"currency" binding:"omitempty,len=3"`
}

type UpdateCourseInput struct {
	Title       *string `json:"title" binding:"omitempty,min=3,max=200"`
	Slug        *string `json:"slug" binding:"omitempty,min=3,max=220,slug"`
	Description *string `json:"description"`
	Level       *string `json:"level" binding:"omitempty,oneof=beginner intermediate advanced"`
	Price       *int64  `json:"price" binding:"omitempty,min=0"`
	Currency    *string `json:"currency" binding:"omitempty,len=3"`
}

type CourseListQuery struct {
	Search string `form:"search"`
	Level  string `form:"level" binding:"omitempty,oneof=beginner intermediate advanced"`
	Status string `form:"status" binding:"omitempty,oneof=draft published archived"`
	Mine   bool   `form:"mine"`
	commonDto.PageQuery
}

type SearchQuery struct {
	Q     string `form:"q"`
	Level string `form:"level" binding:"omitempty,oneof=beginner intermediate advanced"`
	commonDto.PageQuery
}

type AssignAssessorsInput struct {
	AssessorIDs []uuid.UUID `json:"assessor_ids" binding:"required"`
}

type LessonOutline struct {
	ID              uuid.UUID `json:"id"`
	Title           string    `json:"title"`
	Type            string    `json:"type"`
	Position        int       `json:"position"`
	DurationMinutes int       `json:"duration_minutes"`
	IsPreview       bool      `json:"is_preview"`
}

type CourseDetail struct {
	*entity.Course
	Lessons     []LessonOutline `json:"lessons"`
	LessonCount int             `json:"lesson_count"`
	AssessorIDs []uuid.UUID     `json:"assessor_ids,omitempty"`
}
