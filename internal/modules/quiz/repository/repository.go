package repository

import (
	"context"

	"anoa.com/learnhub/internal/entity"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

type QuizRepository interface {
	// CreateAttempt numbers the attempt inside the write transaction.
	CreateAttempt(ctx context.Context, attempt *entity.QuizAttempt) error
	ListAttempts(ctx context.Context, userID, lessonID uuid.UUID) ([]entity.QuizAttempt, error)
}

type quizRepository struct {
	db *gorm.DB
}

func NewQuizRepository(db *gorm.DB) QuizRepository {
	return &quizRepository{db: db}
}

func (r *quizRepository) CreateAttempt(ctx context.Context, attempt *entity.QuizAttempt) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var last int
		err := tx.Model(&entity.QuizAttempt{}).
			Where("user_id = ? AND lesson_id = ?", attempt.UserID, attempt.LessonID).
			Select("COALESCE(MAX(attempt_number), 0)").
			Row().
			Scan(&last)
		if err != nil {
			return err
		}
		attempt.AttemptNumber = last + 1
		return tx.Create(attempt).Error
	})
}

func (r *quizRepository) ListAttempts(ctx context.Context, userID, lessonID uuid.UUID) ([]entity.QuizAttempt, error) {
	var attempts []entity.QuizAttempt
	err := r.db.WithContext(ctx).
		Where("user_id = ? AND lesson_id = ?", userID, lessonID).
		Order("attempt_number DESC").
		Find(&attempts).Error
	return attempts, err
}
