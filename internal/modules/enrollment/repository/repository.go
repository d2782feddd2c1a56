package repository

import (
	"context"

	"anoa.com/learnhub/internal/entity"
	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// CourseEnrollmentStats aggregates enrollments of one course.
type CourseEnrollmentStats struct {
	CourseID        uuid.UUID `json:"course_id"`
	Enrollments     int64     `json:"enrollments"`
	AverageProgress float64   `json:"average_progress"`
}

type EnrollmentRepository interface {
	Create(ctx context.Context, enrollment *entity.Enrollment) error
	FindByID(ctx context.Context, id uuid.UUID) (*entity.Enrollment, error)
	FindByUserAndCourse(ctx context.Context, userID, courseID uuid.UUID) (*entity.Enrollment, error)
	Update(ctx context.Context, enrollment *entity.Enrollment) error
	ListByUser(ctx context.Context, userID uuid.UUID) ([]entity.Enrollment, error)
	ListByCourse(ctx context.Context, courseID uuid.UUID, limit, offset int) ([]entity.Enrollment, int64, error)

	// AddCompletion reports false when the lesson was already completed.
	AddCompletion(ctx context.Context, enrollmentID, lessonID uuid.UUID) (bool, error)
	CountCompletions(ctx context.Context, enrollmentID uuid.UUID) (int64, error)
	CompletedLessonIDs(ctx context.Context, enrollmentID uuid.UUID) ([]uuid.UUID, error)

	CountByStatus(ctx context.Context) (map[string]int64, error)
	StatsByCourse(ctx context.Context, courseIDs []uuid.UUID) ([]CourseEnrollmentStats, error)
}

type enrollmentRepository struct {
	db *gorm.DB
}

func NewEnrollmentRepository(db *gorm.DB) EnrollmentRepository {
	return &enrollmentRepository{db: db}
}

func (r *enrollmentRepository) Create(ctx context.Context, enrollment *entity.Enrollment) error {
	return r.db.WithContext(ctx).Omit("User", "Course").Create(enrollment).Error
}

func (r *enrollmentRepository) FindByID(ctx context.Context, id uuid.UUID) (*entity.Enrollment, error) {
	var enrollment entity.Enrollment
	if err := r.db.WithContext(ctx).Preload("Course").Where("id = ?", id).First(&enrollment).Error; err != nil {
		return nil, err
	}
	return &enrollment, nil
}

func (r *enrollmentRepository) FindByUserAndCourse(ctx context.Context, userID, courseID uuid.UUID) (*entity.Enrollment, error) {
	var enrollment entity.Enrollment
	err := r.db.WithContext(ctx).
		Where("user_id = ? AND course_id = ?", userID, courseID).
		First(&enrollment).Error
	if err != nil {
		return nil, err
	}
	return &enrollment, nil
}

func (r *enrollmentRepository) Update(ctx context.Context, enrollment *entity.Enrollment) error {
	return r.db.WithContext(ctx).Omit("User", "Course").Save(enrollment).Error
}

func (r *enrollmentRepository) ListByUser(ctx context.Context, userID uuid.UUID) ([]entity.Enrollment, error) {
	var enrollments []entity.Enrollment
	err := r.db.WithContext(ctx).
		Preload("Course").
		Where("user_id = ?", userID).
		Order("enrolled_at DESC").
		Find(&enrollments).Error
	return enrollments, err
}

func (r *enrollmentRepository) ListByCourse(ctx context.Context, courseID uuid.UUID, limit, offset int) ([]entity.Enrollment, int64, error) {
	var enrollments []entity.Enrollment
	var total int64

	query := r.db.WithContext(ctx).Model(&entity.Enrollment{}).Where("course_id = ?", courseID)
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	err := query.
		Preload("User", func(db *gorm.DB) *gorm.DB {
			return db.Select("id", "username", "email", "avatar_url")
		}).
		Order("enrolled_at DESC").
		Limit(limit).
		Offset(offset).
		Find(&enrollments).Error
	return enrollments, total, err
}

func (r *enrollmentRepository) AddCompletion(ctx context.Context, enrollmentID, lessonID uuid.UUID) (bool, error) {
	completion := &entity.LessonCompletion{EnrollmentID: enrollmentID, LessonID: lessonID}
	res := r.db.WithContext(ctx).
		Omit("Enrollment", "Lesson").
		Clauses(clause.OnConflict{DoNothing: true}).
		Create(completion)
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected > 0, nil
}

func (r *enrollmentRepository) CountCompletions(ctx context.Context, enrollmentID uuid.UUID) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&entity.LessonCompletion{}).
		Joins("JOIN lessons ON lessons.id = lesson_completions.lesson_id").
		Where("lesson_completions.enrollment_id = ?", enrollmentID).
		Count(&count).Error
	return count, err
}

func (r *enrollmentRepository) CompletedLessonIDs(ctx context.Context, enrollmentID uuid.UUID) ([]uuid.UUID, error) {
	var ids []uuid.UUID
	err := r.db.WithContext(ctx).Model(&entity.LessonCompletion{}).
		Where("enrollment_id = ?", enrollmentID).
		Pluck("lesson_id", &ids).Error
	return ids, err
}

func (r *enrollmentRepository) CountByStatus(ctx context.Context) (map[string]int64, error) {
	var rows []struct {
		Status string
		Count  int64
	}
	err := r.db.WithContext(ctx).Model(&entity.Enrollment{}).
		Select("status, COUNT(*) AS count").
		Group("status").
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}

	out := make(map[string]int64, len(rows))
	for _, row := range rows {
		out[row.Status] = row.Count
	}
	return out, nil
}

func (r *enrollmentRepository) StatsByCourse(ctx context.Context, courseIDs []uuid.UUID) ([]CourseEnrollmentStats, error) {
	var stats []CourseEnrollmentStats
	if len(courseIDs) == 0 {
		return stats, nil
	}
	err := r.db.WithContext(ctx).Model(&entity.Enrollment{}).
		Select("course_id, COUNT(*) AS enrollments, AVG(progress) AS average_progress").
		Where("course_id IN ? AND status <> ?", courseIDs, entity.EnrollmentCancelled).
		Group("course_id").
		Scan(&stats).Error
	return stats, err
}
