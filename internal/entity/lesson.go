package entity

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

const (
	LessonTypeText  = "text"
	LessonTypeVideo = "video"
	LessonTypeQuiz  = "quiz"
	LessonTypeFile  = "file"
)

type Lesson struct {
	ID              uuid.UUID      `gorm:"type:uuid;primaryKey" json:"id"`
	CourseID        uuid.UUID      `gorm:"type:uuid;not null;uniqueIndex:idx_lessons_course_position" json:"course_id"`
	Title           string         `gorm:"size:200;not null" json:"title"`
	Type            string         `gorm:"size:20;not null" json:"type"`
	Position        int            `gorm:"not null;uniqueIndex:idx_lessons_course_position" json:"position"`
	Content         datatypes.JSON `json:"content"`
	DurationMinutes int            `gorm:"not null;default:0" json:"duration_minutes"`
	IsPreview       bool           `gorm:"not null;default:false" json:"is_preview"`
	CreatedAt       time.Time      `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt       time.Time      `gorm:"autoUpdateTime" json:"updated_at"`
}

func (l *Lesson) BeforeCreate(tx *gorm.DB) error {
	if l.ID == uuid.Nil {
		l.ID = uuid.New()
	}
	return nil
}

type TextContent struct {
	Body string `json:"body"`
}

type VideoContent struct {
	URL             string `json:"url"`
	Provider        string `json:"provider,omitempty"`
	DurationSeconds int    `json:"duration_seconds,omitempty"`
}

type FileContent struct {
	FileURL  string `json:"file_url"`
	FileName string `json:"file_name,omitempty"`
	MimeType string `json:"mime_type,omitempty"`
}

type QuizContent struct {
	PassingScore int            `json:"passing_score"`
	Questions    []QuizQuestion `json:"questions"`
}

type QuizQuestion struct {
	ID            string   `json:"id"`
	Prompt        string   `json:"prompt"`
	Options       []string `json:"options"`
	AnswerIndexes []int    `json:"answer_indexes,omitempty"`
}
