package entity

import (
	"time"

	"github.com/google/uuid"
)

type Attachment struct {
	ID        uint       `gorm:"primaryKey" json:"id"`
	UserID    uuid.UUID  `gorm:"type:uuid;index" json:"user_id"`
	LessonID  *uuid.UUID `gorm:"type:uuid;index" json:"lesson_id,omitempty"`
	Lesson    *Lesson    `gorm:"foreignKey:LessonID;constraint:OnDelete:SET NULL" json:"-"`
	FileURL   string     `gorm:"type:text;not null" json:"file_url"`
	FileName  string     `gorm:"size:255" json:"file_name"`
	FileType  string     `gorm:"size:50" json:"file_type"`
	CreatedAt time.Time  `gorm:"autoCreateTime" json:"created_at"`
}
