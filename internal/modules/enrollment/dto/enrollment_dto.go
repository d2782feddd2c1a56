package dto

import (
	"anoa.com/learnhub/internal/entity"
	"github.com/google/uuid"
)

// ProgressResponse is returned after a lesson completion attempt.
type ProgressResponse struct {
	Enrollment       *entity.Enrollment `json:"enrollment"`
	LessonID         uuid.UUID          `json:"lesson_id"`
	AlreadyCompleted bool               `json:"already_completed"`
	CourseCompleted  bool               `json:"course_completed"`
}

type MyEnrollment struct {
	entity.Enrollment
	CompletedLessonIDs []uuid.UUID `json:"completed_lesson_ids"`
}
