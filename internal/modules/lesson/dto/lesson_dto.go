package dto

import (
	"encoding/json"

	"github.com/google/uuid"
)

type CreateLessonInput struct {
	Title           string          `json:"title" binding:"required,min=1,max=200"`
	Type            string          `json:"type" binding:"required,lessontype"`
	Content         json.RawMessage `json:"content" binding:"required"`
	Position        *int            `json:"position" binding:"omitempty,min=1"`
	DurationMinutes int             `json:"duration_minutes" binding:"min=0"`
	IsPreview       bool            `json:"is_preview"`
}

// UpdateLessonInput changes the payload only together with its type.
type UpdateLessonInput struct {
	Title           *string         `json:"title" binding:"omitempty,min=1,max=200"`
	Type            *string         `json:"type" binding:"omitempty,lessontype"`
	Content         json.RawMessage `json:"content"`
	DurationMinutes *int            `json:"duration_minutes" binding:"omitempty,min=0"`
	IsPreview       *bool           `json:"is_preview"`
}

type ReorderInput struct {
	LessonIDs []uuid.UUID `json:"lesson_ids" binding:"required,min=1"`
}
