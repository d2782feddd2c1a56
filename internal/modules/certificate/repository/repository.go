package repository

import (
	"context"

	"anoa.com/learnhub/internal/entity"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

type CertificateFilter struct {
	Status string
	// CourseIDs restricts results when non-nil; an empty slice matches nothing.
	CourseIDs []uuid.UUID
	Limit     int
	Offset    int
}

type CertificateRepository interface {
	Create(ctx context.Context, certificate *entity.Certificate) error
	FindByID(ctx context.Context, id uuid.UUID) (*entity.Certificate, error)
	FindByUserAndCourse(ctx context.Context, userID, courseID uuid.UUID) (*entity.Certificate, error)
	FindByNumber(ctx context.Context, number string) (*entity.Certificate, error)
	Update(ctx context.Context, certificate *entity.Certificate) error
	// Decide writes a review outcome only while the row is still pending.
	Decide(ctx context.Context, certificate *entity.Certificate) (bool, error)
	ListByUser(ctx context.Context, userID uuid.UUID) ([]entity.Certificate, error)
	List(ctx context.Context, filter CertificateFilter) ([]entity.Certificate, int64, error)
	CountByStatus(ctx context.Context, courseIDs []uuid.UUID) (map[string]int64, error)
}

type certificateRepository struct {
	db *gorm.DB
}

func NewCertificateRepository(db *gorm.DB) CertificateRepository {
	return &certificateRepository{db: db}
}

func studentSubset(db *gorm.DB) *gorm.DB {
	return db.Select("id", "username", "email", "avatar_url")
}

func courseSubset(db *gorm.DB) *gorm.DB {
	return db.Select("id", "title", "slug", "instructor_id")
}

func (r *certificateRepository) Create(ctx context.Context, certificate *entity.Certificate) error {
	return r.db.WithContext(ctx).Omit("User", "Course").Create(certificate).Error
}

func (r *certificateRepository) FindByID(ctx context.Context, id uuid.UUID) (*entity.Certificate, error) {
	var certificate entity.Certificate
	err := r.db.WithContext(ctx).
		Preload("Course", courseSubset).
		Where("id = ?", id).
		First(&certificate).Error
	if err != nil {
		return nil, err
	}
	return &certificate, nil
}

func (r *certificateRepository) FindByUserAndCourse(ctx context.Context, userID, courseID uuid.UUID) (*entity.Certificate, error) {
	var certificate entity.Certificate
	err := r.db.WithContext(ctx).
		Where("user_id = ? AND course_id = ?", userID, courseID).
		First(&certificate).Error
	if err != nil {
		return nil, err
	}
	return &certificate, nil
}

func (r *certificateRepository) FindByNumber(ctx context.Context, number string) (*entity.Certificate, error) {
	var certificate entity.Certificate
	err := r.db.WithContext(ctx).
		Preload("User.Profile").
		Preload("Course", courseSubset).
		Where("number = ?", number).
		First(&certificate).Error
	if err != nil {
		return nil, err
	}
	return &certificate, nil
}

func (r *certificateRepository) Update(ctx context.Context, certificate *entity.Certificate) error {
	return r.db.WithContext(ctx).Omit("User", "Course").Save(certificate).Error
}

func (r *certificateRepository) Decide(ctx context.Context, certificate *entity.Certificate) (bool, error) {
	result := r.db.WithContext(ctx).
		Model(&entity.Certificate{}).
		Where("id = ? AND status = ?", certificate.ID, entity.CertificatePending).
		Updates(map[string]any{
			"status":           certificate.Status,
			"number":           certificate.Number,
			"issued_at":        certificate.IssuedAt,
			"assessor_id":      certificate.AssessorID,
			"rejection_reason": certificate.RejectionReason,
		})
	if result.Error != nil {
		return false, result.Error
	}
	return result.RowsAffected == 1, nil
}

func (r *certificateRepository) ListByUser(ctx context.Context, userID uuid.UUID) ([]entity.Certificate, error) {
	var certificates []entity.Certificate
	err := r.db.WithContext(ctx).
		Preload("Course", courseSubset).
		Where("user_id = ?", userID).
		Order("requested_at DESC").
		Find(&certificates).Error
	return certificates, err
}

func (r *certificateRepository) List(ctx context.Context, filter CertificateFilter) ([]entity.Certificate, int64, error) {
	var certificates []entity.Certificate
	var total int64

	if filter.CourseIDs != nil && len(filter.CourseIDs) == 0 {
		return certificates, 0, nil
	}

	query := r.db.WithContext(ctx).Model(&entity.Certificate{})
	if filter.Status != "" {
		query = query.Where("status = ?", filter.Status)
	}
	if filter.CourseIDs != nil {
		query = query.Where("course_id IN ?", filter.CourseIDs)
	}

	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	err := query.
		Preload("User", studentSubset).
		Preload("Course", courseSubset).
		Order("requested_at ASC").
		Limit(filter.Limit).
		Offset(filter.Offset).
		Find(&certificates).Error
	return certificates, total, err
}

func (r *certificateRepository) CountByStatus(ctx context.Context, courseIDs []uuid.UUID) (map[string]int64, error) {
	out := map[string]int64{}
	if courseIDs != nil && len(courseIDs) == 0 {
		return out, nil
	}

	var rows []struct {
		Status string
		Count  int64
	}
	query := r.db.WithContext(ctx).Model(&entity.Certificate{}).Select("status, COUNT(*) AS count")
	if courseIDs != nil {
		query = query.Where("course_id IN ?", courseIDs)
	}
	if err := query.Group("status").Scan(&rows).Error; err != nil {
		return nil, err
	}

	for _, row := range rows {
		out[row.Status] = row.Count
	}
	return out, nil
}
