package repository

import (
	"context"

	"anoa.com/learnhub/internal/entity"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

type ThreadFilter struct {
	CourseID uuid.UUID
	LessonID *uuid.UUID
	Limit    int
	Offset   int
}

type DiscussionRepository interface {
	CreateThread(ctx context.Context, thread *entity.DiscussionThread) error
	FindThreadByID(ctx context.Context, id uuid.UUID) (*entity.DiscussionThread, error)
	// FindThreadWithReplies loads the thread and its replies oldest first.
	FindThreadWithReplies(ctx context.Context, id uuid.UUID) (*entity.DiscussionThread, error)
	ListThreads(ctx context.Context, filter ThreadFilter) ([]entity.DiscussionThread, int64, error)
	SetPinned(ctx context.Context, id uuid.UUID, pinned bool) error
	DeleteThread(ctx context.Context, id uuid.UUID) error

	CreateReply(ctx context.Context, reply *entity.DiscussionReply) error
	FindReplyByID(ctx context.Context, id uuid.UUID) (*entity.DiscussionReply, error)
	DeleteReply(ctx context.Context, id uuid.UUID) error
}

type discussionRepository struct {
	db *gorm.DB
}

func NewDiscussionRepository(db *gorm.DB) DiscussionRepository {
	return &discussionRepository{db: db}
}

func authorSubset(db *gorm.DB) *gorm.DB {
	return db.Select("id", "username", "avatar_url")
}

func (r *discussionRepository) CreateThread(ctx context.Context, thread *entity.DiscussionThread) error {
	return r.db.WithContext(ctx).Omit("Course", "Lesson", "User", "Replies").Create(thread).Error
}

func (r *discussionRepository) FindThreadByID(ctx context.Context, id uuid.UUID) (*entity.DiscussionThread, error) {
	var thread entity.DiscussionThread
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&thread).Error; err != nil {
		return nil, err
	}
	return &thread, nil
}

func (r *discussionRepository) FindThreadWithReplies(ctx context.Context, id uuid.UUID) (*entity.DiscussionThread, error) {
	var thread entity.DiscussionThread
	err := r.db.WithContext(ctx).
		Preload("User", authorSubset).
		Preload("Replies", func(db *gorm.DB) *gorm.DB {
			return db.Order("created_at ASC")
		}).
		Preload("Replies.User", authorSubset).
		Where("id = ?", id).
		First(&thread).Error
	if err != nil {
		return nil, err
	}
	return &thread, nil
}

func (r *discussionRepository) ListThreads(ctx context.Context, filter ThreadFilter) ([]entity.DiscussionThread, int64, error) {
	var threads []entity.DiscussionThread
	var total int64

	query := r.db.WithContext(ctx).Model(&entity.DiscussionThread{}).Where("course_id = ?", filter.CourseID)
	if filter.LessonID != nil {
		query = query.Where("lesson_id = ?", *filter.LessonID)
	}

	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	err := query.
		Preload("User", authorSubset).
		Order("is_pinned DESC").
		Order("created_at DESC").
		Limit(filter.Limit).
		Offset(filter.Offset).
		Find(&threads).Error
	return threads, total, err
}

func (r *discussionRepository) SetPinned(ctx context.Context, id uuid.UUID, pinned bool) error {
	return r.db.WithContext(ctx).Model(&entity.DiscussionThread{}).
		Where("id = ?", id).
		Update("is_pinned", pinned).Error
}

// DeleteThread removes replies explicitly so drivers without enforced foreign keys stay clean.
func (r *discussionRepository) DeleteThread(ctx context.Context, id uuid.UUID) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("thread_id = ?", id).Delete(&entity.DiscussionReply{}).Error; err != nil {
			return err
		}
		return tx.Where("id = ?", id).Delete(&entity.DiscussionThread{}).Error
	})
}

func (r *discussionRepository) CreateReply(ctx context.Context, reply *entity.DiscussionReply) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Omit("User").Create(reply).Error; err != nil {
			return err
		}
		return tx.Model(&entity.DiscussionThread{}).Where("id = ?", reply.ThreadID).
			UpdateColumn("updated_at", reply.CreatedAt).Error
	})
}

func (r *discussionRepository) FindReplyByID(ctx context.Context, id uuid.UUID) (*entity.DiscussionReply, error) {
	var reply entity.DiscussionReply
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&reply).Error; err != nil {
		return nil, err
	}
	return &reply, nil
}

func (r *discussionRepository) DeleteReply(ctx context.Context, id uuid.UUID) error {
	return r.db.WithContext(ctx).Where("id = ?", id).Delete(&entity.DiscussionReply{}).Error
}
