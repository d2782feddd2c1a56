package entity

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

type QuizAttempt struct {
	ID            uuid.UUID      `gorm:"type:uuid;primaryKey" json:"id"`
	UserID        uuid.UUID      `gorm:"type:uuid;not null;index:idx_attempts_user_lesson" json:"user_id"`
	LessonID      uuid.UUID      `gorm:"type:uuid;not null;index:idx_attempts_user_lesson" json:"lesson_id"`
	Answers       datatypes.JSON `json:"answers"`
	Score         int            `gorm:"not null" json:"score"`
	MaxScore      int            `gorm:"not null" json:"max_score"`
	Percentage    int            `gorm:"not null" json:"percentage"`
	Passed        bool           `gorm:"not null" json:"passed"`
	AttemptNumber int            `gorm:"not null" json:"attempt_number"`
	CreatedAt     time.Time      `gorm:"autoCreateTime" json:"created_at"`
}

func (q *QuizAttempt) BeforeCreate(tx *gorm.DB) error {
	if q.ID == uuid.Nil {
		q.ID = uuid.New()
	}
	return nil
}
