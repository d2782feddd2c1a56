package service

import (
	"context"
	"log"

	"anoa.com/learnhub/internal/entity"
	"anoa.com/learnhub/internal/modules/activity/dto"
	"anoa.com/learnhub/internal/modules/activity/repository"
	commonDto "anoa.com/learnhub/pkg/dto"
)

// Action names recorded in the activity log.
const (
	ActionUserCreated          = "user.created"
	ActionUserUpdated          = "user.updated"
	ActionUserDeleted          = "user.deleted"
	ActionCourseCreated        = "course.created"
	ActionCourseUpdated        = "course.updated"
	ActionCourseDeleted        = "course.deleted"
	ActionCoursePublished      = "course.published"
	ActionCourseArchived       = "course.archived"
	ActionAssessorsAssigned    = "course.assessors_assigned"
	ActionLessonCreated        = "lesson.created"
	ActionLessonUpdated        = "lesson.updated"
	ActionLessonDeleted        = "lesson.deleted"
	ActionLessonsReordered     = "lesson.reordered"
	ActionEnrolled             = "enrollment.created"
	ActionEnrollmentCancelled  = "enrollment.cancelled"
	ActionCertificateRequested = "certificate.requested"
	ActionCertificateApproved  = "certificate.approved"
	ActionCertificateRejected  = "certificate.rejected"
	ActionPaymentSucceeded     = "payment.succeeded"
	ActionThreadDeleted        = "discussion.thread_deleted"
	ActionReplyDeleted         = "discussion.reply_deleted"
	ActionThreadPinned         = "discussion.thread_pinned"
	ActionAttachmentUploaded   = "attachment.uploaded"
)

type ActivityService interface {
	// Record never fails the caller; write errors are logged.
	Record(ctx context.Context, actor commonDto.Actor, action, entityType, entityID string, metadata map[string]any)
	List(ctx context.Context, filter dto.ActivityFilter) (*commonDto.Paginated[entity.ActivityLog], error)
}

type activityService struct {
	repo repository.ActivityRepository
}

func NewActivityService(repo repository.ActivityRepository) ActivityService {
	return &activityService{repo: repo}
}

func (s *activityService) Record(ctx context.Context, actor commonDto.Actor, action, entityType, entityID string, metadata map[string]any) {
	entry := &entity.ActivityLog{
		ActorID:    actor.ID,
		ActorRole:  actor.Role,
		Action:     action,
		EntityType: entityType,
		EntityID:   entityID,
		Metadata:   metadata,
	}
	if err := s.repo.Create(ctx, entry); err != nil {
		log.Printf("[activity] failed to record %s on %s/%s: %v", action, entityType, entityID, err)
	}
}

func (s *activityService) List(ctx context.Context, filter dto.ActivityFilter) (*commonDto.Paginated[entity.ActivityLog], error) {
	filter.Normalize()

	logs, total, err := s.repo.List(ctx, filter)
	if err != nil {
		return nil, err
	}

	return &commonDto.Paginated[entity.ActivityLog]{
		Data: logs,
		Meta: commonDto.NewPaginationMeta(filter.PageQuery, total),
	}, nil
}
