package repository

import (
	"context"
	"time"

	"anoa.com/learnhub/internal/entity"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

type AttachmentRepository interface {
	Create(ctx context.Context, attachment *entity.Attachment) error
	// LinkToLesson claims the caller's unlinked upload with the given URL for a lesson.
	LinkToLesson(ctx context.Context, userID uuid.UUID, fileURL string, lessonID uuid.UUID) (int64, error)
	// UnlinkLesson releases every attachment of the lesson except the one at keepURL.
	UnlinkLesson(ctx context.Context, lessonID uuid.UUID, keepURL string) (int64, error)
	FindOrphans(ctx context.Context, cutoff time.Time) ([]entity.Attachment, error)
	Delete(ctx context.Context, id uint) error
}

type attachmentRepository struct {
	db *gorm.DB
}

func NewAttachmentRepository(db *gorm.DB) AttachmentRepository {
	return &attachmentRepository{db: db}
}

func (r *attachmentRepository) Create(ctx context.Context, attachment *entity.Attachment) error {
	return r.db.WithContext(ctx).Create(attachment).Error
}

func (r *attachmentRepository) LinkToLesson(ctx context.Context, userID uuid.UUID, fileURL string, lessonID uuid.UUID) (int64, error) {
	// Only the uploader's attachments, and only those not linked elsewhere.
	res := r.db.WithContext(ctx).Model(&entity.Attachment{}).
		Where("user_id = ? AND file_url = ?", userID, fileURL).
		Where("lesson_id IS NULL OR lesson_id = ?", lessonID).
		Update("lesson_id", lessonID)
	return res.RowsAffected, res.Error
}

func (r *attachmentRepository) UnlinkLesson(ctx context.Context, lessonID uuid.UUID, keepURL string) (int64, error) {
	query := r.db.WithContext(ctx).Model(&entity.Attachment{}).Where("lesson_id = ?", lessonID)
	if keepURL != "" {
		query = query.Where("file_url <> ?", keepURL)
	}
	res := query.Update("lesson_id", nil)
	return res.RowsAffected, res.Error
}

func (r *attachmentRepository) FindOrphans(ctx context.Context, cutoff time.Time) ([]entity.Attachment, error) {
	var attachments []entity.Attachment
	err := r.db.WithContext(ctx).
		Where("lesson_id IS NULL AND created_at < ?", cutoff).
		Find(&attachments).Error
	return attachments, err
}

func (r *attachmentRepository) Delete(ctx context.Context, id uint) error {
	return r.db.WithContext(ctx).Delete(&entity.Attachment{}, id).Error
}
