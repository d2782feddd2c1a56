package repository

import (
	"context"

	"anoa.com/learnhub/internal/entity"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

type LessonRepository interface {
	Create(ctx context.Context, lesson *entity.Lesson) error
	FindByID(ctx context.Context, id uuid.UUID) (*entity.Lesson, error)
	Update(ctx context.Context, lesson *entity.Lesson) error
	Delete(ctx context.Context, id uuid.UUID) error
	ListByCourse(ctx context.Context, courseID uuid.UUID) ([]entity.Lesson, error)
	MaxPosition(ctx context.Context, courseID uuid.UUID) (int, error)
	PositionTaken(ctx context.Context, courseID uuid.UUID, position int) (bool, error)
	// Reorder assigns positions 1..n following ids.
	Reorder(ctx context.Context, courseID uuid.UUID, ids []uuid.UUID) error
}

type lessonRepository struct {
	db *gorm.DB
}

func NewLessonRepository(db *gorm.DB) LessonRepository {
	return &lessonRepository{db: db}
}

func (r *lessonRepository) Create(ctx context.Context, lesson *entity.Lesson) error {
	return r.db.WithContext(ctx).Create(lesson).Error
}

func (r *lessonRepository) FindByID(ctx context.Context, id uuid.UUID) (*entity.Lesson, error) {
	var lesson entity.Lesson
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&lesson).Error; err != nil {
		return nil, err
	}
	return &lesson, nil
}

func (r *lessonRepository) Update(ctx context.Context, lesson *entity.Lesson) error {
	return r.db.WithContext(ctx).Save(lesson).Error
}

func (r *lessonRepository) Delete(ctx context.Context, id uuid.UUID) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("lesson_id = ?", id).Delete(&entity.LessonCompletion{}).Error; err != nil {
			return err
		}
		if err := tx.Where("lesson_id = ?", id).Delete(&entity.QuizAttempt{}).Error; err != nil {
			return err
		}
		if err := tx.Model(&entity.DiscussionThread{}).Where("lesson_id = ?", id).Update("lesson_id", nil).Error; err != nil {
			return err
		}
		return tx.Delete(&entity.Lesson{}, "id = ?", id).Error
	})
}

func (r *lessonRepository) ListByCourse(ctx context.Context, courseID uuid.UUID) ([]entity.Lesson, error) {
	var lessons []entity.Lesson
	err := r.db.WithContext(ctx).
		Where("course_id = ?", courseID).
		Order("position ASC").
		Find(&lessons).Error
	return lessons, err
}

func (r *lessonRepository) MaxPosition(ctx context.Context, courseID uuid.UUID) (int, error) {
	var max int
	err := r.db.WithContext(ctx).Model(&entity.Lesson{}).
		Where("course_id = ?", courseID).
		Select("COALESCE(MAX(position), 0)").
		Row().
		Scan(&max)
	return max, err
}

func (r *lessonRepository) PositionTaken(ctx context.Context, courseID uuid.UUID, position int) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&entity.Lesson{}).
		Where("course_id = ? AND position = ?", courseID, position).
		Count(&count).Error
	return count > 0, err
}

func (r *lessonRepository) Reorder(ctx context.Context, courseID uuid.UUID, ids []uuid.UUID) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		// negative slots first: (course_id, position) is unique
		for i, id := range ids {
			if err := tx.Model(&entity.Lesson{}).
				Where("id = ? AND course_id = ?", id, courseID).
				UpdateColumn("position", -(i + 1)).Error; err != nil {
				return err
			}
		}
		for i, id := range ids {
			if err := tx.Model(&entity.Lesson{}).
				Where("id = ? AND course_id = ?", id, courseID).
				UpdateColumn("position", i+1).Error; err != nil {
				return err
			}
		}
		return nil
	})
}
