package repository

import (
	"context"
	"strings"

	"anoa.com/learnhub/internal/entity"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

type CourseFilter struct {
	Search       string
	Level        string
	Statuses     []string
	InstructorID *uuid.UUID
	Limit        int
	Offset       int
}

type CourseRepository interface {
	Create(ctx context.Context, course *entity.Course) error
	FindByID(ctx context.Context, id uuid.UUID) (*entity.Course, error)
	FindBySlug(ctx context.Context, slug string) (*entity.Course, error)
	FindByIDs(ctx context.Context, ids []uuid.UUID) ([]entity.Course, error)
	SlugExists(ctx context.Context, slug string) (bool, error)
	Update(ctx context.Context, course *entity.Course) error
	Delete(ctx context.Context, id uuid.UUID) error
	List(ctx context.Context, filter CourseFilter) ([]entity.Course, int64, error)
	ListLessonOutline(ctx context.Context, courseID uuid.UUID) ([]entity.Lesson, error)
	CountLessons(ctx context.Context, courseID uuid.UUID) (int64, error)
	AddViews(ctx context.Context, id uuid.UUID, n int) error
	CountByStatus(ctx context.Context) (map[string]int64, error)

	ReplaceAssessors(ctx context.Context, courseID uuid.UUID, assessorIDs []uuid.UUID) error
	ListAssessorIDs(ctx context.Context, courseID uuid.UUID) ([]uuid.UUID, error)
	IsAssessor(ctx context.Context, courseID, userID uuid.UUID) (bool, error)
	CourseIDsForAssessor(ctx context.Context, assessorID uuid.UUID) ([]uuid.UUID, error)
}

type courseRepository struct {
	db *gorm.DB
}

func NewCourseRepository(db *gorm.DB) CourseRepository {
	return &courseRepository{db: db}
}

func instructorSubset(db *gorm.DB) *gorm.DB {
	return db.Select("id", "username", "avatar_url")
}

func (r *courseRepository) Create(ctx context.Context, course *entity.Course) error {
	return r.db.WithContext(ctx).Omit("Instructor", "Lessons").Create(course).Error
}

func (r *courseRepository) FindByID(ctx context.Context, id uuid.UUID) (*entity.Course, error) {
	var course entity.Course
	err := r.db.WithContext(ctx).
		Preload("Instructor", instructorSubset).
		Where("id = ?", id).
		First(&course).Error
	if err != nil {
		return nil, err
	}
	return &course, nil
}

func (r *courseRepository) FindBySlug(ctx context.Context, slug string) (*entity.Course, error) {
	var course entity.Course
	err := r.db.WithContext(ctx).
		Preload("Instructor", instructorSubset).
		Where("slug = ?", slug).
		First(&course).Error
	if err != nil {
		return nil, err
	}
	return &course, nil
}

func (r *courseRepository) FindByIDs(ctx context.Context, ids []uuid.UUID) ([]entity.Course, error) {
	var courses []entity.Course
	if len(ids) == 0 {
		return courses, nil
	}
	err := r.db.WithContext(ctx).
		Preload("Instructor", instructorSubset).
		Where("id IN ?", ids).
		Find(&courses).Error
	return courses, err
}

func (r *courseRepository) SlugExists(ctx context.Context, slug string) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&entity.Course{}).Where("slug = ?", slug).Count(&count).Error
	return count > 0, err
}

func (r *courseRepository) Update(ctx context.Context, course *entity.Course) error {
	return r.db.WithContext(ctx).Omit("Instructor", "Lessons").Save(course).Error
}

func (r *courseRepository) Delete(ctx context.Context, id uuid.UUID) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("course_id = ?", id).Delete(&entity.CourseAssessor{}).Error; err != nil {
			return err
		}
		if err := tx.Where("course_id = ?", id).Delete(&entity.Lesson{}).Error; err != nil {
			return err
		}
		return tx.Delete(&entity.Course{}, "id = ?", id).Error
	})
}

func (r *courseRepository) List(ctx context.Context, filter CourseFilter) ([]entity.Course, int64, error) {
	var courses []entity.Course
	var total int64

	query := r.db.WithContext(ctx).Model(&entity.Course{})
	if len(filter.Statuses) > 0 {
		query = query.Where("status IN ?", filter.Statuses)
	}
	if filter.Level != "" {
		query = query.Where("level = ?", filter.Level)
	}
	if filter.InstructorID != nil {
		query = query.Where("instructor_id = ?", *filter.InstructorID)
	}
	if filter.Search != "" {
		like := "%" + strings.ToLower(filter.Search) + "%"
		query = query.Where("(LOWER(title) LIKE ? OR LOWER(description) LIKE ?)", like, like)
	}

	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	err := query.
		Preload("Instructor", instructorSubset).
		Order("created_at DESC").
		Limit(filter.Limit).
		Offset(filter.Offset).
		Find(&courses).Error
	return courses, total, err
}

func (r *courseRepository) CountByStatus(ctx context.Context) (map[string]int64, error) {
	var rows []struct {
		Status string
		Count  int64
	}
	err := r.db.WithContext(ctx).Model(&entity.Course{}).
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

func (r *courseRepository) ListLessonOutline(ctx context.Context, courseID uuid.UUID) ([]entity.Lesson, error) {
	var lessons []entity.Lesson
	err := r.db.WithContext(ctx).
		Select("id", "course_id", "title", "type", "position", "duration_minutes", "is_preview").
		Where("course_id = ?", courseID).
		Order("position ASC").
		Find(&lessons).Error
	return lessons, err
}

func (r *courseRepository) CountLessons(ctx context.Context, courseID uuid.UUID) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&entity.Lesson{}).Where("course_id = ?", courseID).Count(&count).Error
	return count, err
}

func (r *courseRepository) AddViews(ctx context.Context, id uuid.UUID, n int) error {
	return r.db.WithContext(ctx).Model(&entity.Course{}).
		Where("id = ?", id).
		UpdateColumn("views", gorm.Expr("views + ?", n)).Error
}

func (r *courseRepository) ReplaceAssessors(ctx context.Context, courseID uuid.UUID, assessorIDs []uuid.UUID) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("course_id = ?", courseID).Delete(&entity.CourseAssessor{}).Error; err != nil {
			return err
		}
		if len(assessorIDs) == 0 {
			return nil
		}

		rows := make([]entity.CourseAssessor, 0, len(assessorIDs))
		for _, id := range assessorIDs {
			rows = append(rows, entity.CourseAssessor{CourseID: courseID, AssessorID: id})
		}
		return tx.Omit("Course", "Assessor").Create(&rows).Error
	})
}

func (r *courseRepository) ListAssessorIDs(ctx context.Context, courseID uuid.UUID) ([]uuid.UUID, error) {
	var ids []uuid.UUID
	err := r.db.WithContext(ctx).Model(&entity.CourseAssessor{}).
		Where("course_id = ?", courseID).
		Pluck("assessor_id", &ids).Error
	return ids, err
}

func (r *courseRepository) IsAssessor(ctx context.Context, courseID, userID uuid.UUID) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&entity.CourseAssessor{}).
		Where("course_id = ? AND assessor_id = ?", courseID, userID).
		Count(&count).Error
	return count > 0, err
}

func (r *courseRepository) CourseIDsForAssessor(ctx context.Context, assessorID uuid.UUID) ([]uuid.UUID, error) {
	var ids []uuid.UUID
	err := r.db.WithContext(ctx).Model(&entity.CourseAssessor{}).
		Where("assessor_id = ?", assessorID).
		Pluck("course_id", &ids).Error
	return ids, err
}
