package entity

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

const (
	CourseStatusDraft     = "draft"
	CourseStatusPublished = "published"
	CourseStatusArchived  = "archived"
)

const (
	LevelBeginner     = "beginner"
	LevelIntermediate = "intermediate"
	LevelAdvanced     = "advanced"
)

type Course struct {
	ID           uuid.UUID  `gorm:"type:uuid;primaryKey" json:"id"`
	InstructorID uuid.UUID  `gorm:"type:uuid;not null;index" json:"instructor_id"`
	Instructor   *User      `gorm:"foreignKey:InstructorID;constraint:OnDelete:CASCADE" json:"instructor,omitempty"`
	Title        string     `gorm:"size:200;not null" json:"title"`
	Slug         string     `gorm:"size:220;uniqueIndex;not null" json:"slug"`
	Description  string     `gorm:"type:text" json:"description"`
	ThumbnailURL *string    `gorm:"type:text" json:"thumbnail_url,omitempty"`
	Level        string     `gorm:"size:20;not null;default:beginner" json:"level"`
	Price        int64      `gorm:"not null;default:0" json:"price"`
	Currency     string     `gorm:"size:3;not null;default:USD" json:"currency"`
	Status       string     `gorm:"size:20;not null;default:draft;index" json:"status"`
	Views        int        `gorm:"not null;default:0" json:"views"`
	PublishedAt  *time.Time `json:"published_at,omitempty"`
	CreatedAt    time.Time  `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt    time.Time  `gorm:"autoUpdateTime" json:"updated_at"`
	Lessons      []Lesson   `gorm:"constraint:OnDelete:CASCADE" json:"lessons,omitempty"`
}

func (c *Course) BeforeCreate(tx *gorm.DB) error {
	if c.ID == uuid.Nil {
		c.ID = uuid.New()
	}
	return nil
}

func (c *Course) IsFree() bool {
	return c.Price <= 0
}

type CourseAssessor struct {
	CourseID   uuid.UUID `gorm:"type:uuid;primaryKey" json:"course_id"`
	AssessorID uuid.UUID `gorm:"type:uuid;primaryKey" json:"assessor_id"`
	Course     *Course   `gorm:"foreignKey:CourseID;constraint:OnDelete:CASCADE" json:"-"`
	Assessor   *User     `gorm:"foreignKey:AssessorID;constraint:OnDelete:CASCADE" json:"-"`
}
