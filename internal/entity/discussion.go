package entity

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type DiscussionThread struct {
	ID        uuid.UUID         `gorm:"type:uuid;primaryKey" json:"id"`
	CourseID  uuid.UUID         `gorm:"type:uuid;not null;index" json:"course_id"`
	LessonID  *uuid.UUID        `gorm:"type:uuid" json:"lesson_id,omitempty"`
	UserID    uuid.UUID         `gorm:"type:uuid;not null" json:"user_id"`
	Course    *Course           `gorm:"foreignKey:CourseID;constraint:OnDelete:CASCADE" json:"-"`
	Lesson    *Lesson           `gorm:"foreignKey:LessonID;constraint:OnDelete:SET NULL" json:"-"`
	User      *User             `gorm:"foreignKey:UserID;constraint:OnDelete:CASCADE" json:"user,omitempty"`
	Title     string            `gorm:"size:200;not null" json:"title"`
	Body      string            `gorm:"type:text;not null" json:"body"`
	IsPinned  bool              `gorm:"not null;default:false" json:"is_pinned"`
	CreatedAt time.Time         `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt time.Time         `gorm:"autoUpdateTime" json:"updated_at"`
	Replies   []DiscussionReply `gorm:"foreignKey:ThreadID;constraint:OnDelete:CASCADE" json:"replies,omitempty"`
}

func (t *DiscussionThread) BeforeCreate(tx *gorm.DB) error {
	if t.ID == uuid.Nil {
		t.ID = uuid.New()
	}
	return nil
}

type DiscussionReply struct {
	ID        uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	ThreadID  uuid.UUID `gorm:"type:uuid;not null;index" json:"thread_id"`
	UserID    uuid.UUID `gorm:"type:uuid;not null" json:"user_id"`
	User      *User     `gorm:"foreignKey:UserID;constraint:OnDelete:CASCADE" json:"user,omitempty"`
	Body      string    `gorm:"type:text;not null" json:"body"`
	CreatedAt time.Time `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt time.Time `gorm:"autoUpdateTime" json:"updated_at"`
}

func (r *DiscussionReply) BeforeCreate(tx *gorm.DB) error {
	if r.ID == uuid.Nil {
		r.ID = uuid.New()
	}
	return nil
}
