package entity

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

const (
	EnrollmentActive    = "active"
	EnrollmentCompleted = "completed"
	EnrollmentCancelled = "cancelled"
)

type Enrollment struct {
	ID               uuid.UUID  `gorm:"type:uuid;primaryKey" json:"id"`
	UserID           uuid.UUID  `gorm:"type:uuid;not null;uniqueIndex:idx_enrollments_user_course" json:"user_id"`
	CourseID         uuid.UUID  `gorm:"type:uuid;not null;uniqueIndex:idx_enrollments_user_course;index" json:"course_id"`
	User             *User      `gorm:"foreignKey:UserID;constraint:OnDelete:CASCADE" json:"user,omitempty"`
	Course           *Course    `gorm:"foreignKey:CourseID;constraint:OnDelete:CASCADE" json:"course,omitempty"`
	Status           string     `gorm:"size:20;not null;default:active" json:"status"`
	Progress         int        `gorm:"not null;default:0" json:"progress"`
	CompletedLessons int        `gorm:"not null;default:0" json:"completed_lessons"`
	TotalLessons     int        `gorm:"not null;default:0" json:"total_lessons"`
	EnrolledAt       time.Time  `gorm:"autoCreateTime" json:"enrolled_at"`
	CompletedAt      *time.Time `json:"completed_at,omitempty"`
}

func (e *Enrollment) BeforeCreate(tx *gorm.DB) error {
	if e.ID == uuid.Nil {
		e.ID = uuid.New()
	}
	return nil
}

type LessonCompletion struct {
	ID           uuid.UUID   `gorm:"type:uuid;primaryKey" json:"id"`
	EnrollmentID uuid.UUID   `gorm:"type:uuid;not null;uniqueIndex:idx_completions_enrollment_lesson" json:"enrollment_id"`
	LessonID     uuid.UUID   `gorm:"type:uuid;not null;uniqueIndex:idx_completions_enrollment_lesson" json:"lesson_id"`
	Enrollment   *Enrollment `gorm:"foreignKey:EnrollmentID;constraint:OnDelete:CASCADE" json:"-"`
	Lesson       *Lesson     `gorm:"foreignKey:LessonID;constraint:OnDelete:CASCADE" json:"-"`
	CompletedAt  time.Time   `gorm:"autoCreateTime" json:"completed_at"`
}

func (l *LessonCompletion) BeforeCreate(tx *gorm.DB) error {
	if l.ID == uuid.Nil {
		l.ID = uuid.New()
	}
	return nil
}
