package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"anoa.com/learnhub/internal/entity"
	activity "anoa.com/learnhub/internal/modules/activity/service"
	courseRepo "anoa.com/learnhub/internal/modules/course/repository"
	courseService "anoa.com/learnhub/internal/modules/course/service"
	"anoa.com/learnhub/internal/modules/discussion/dto"
	"anoa.com/learnhub/internal/modules/discussion/repository"
	enrollmentRepo "anoa.com/learnhub/internal/modules/enrollment/repository"
	lessonRepo "anoa.com/learnhub/internal/modules/lesson/repository"
	notification "anoa.com/learnhub/internal/modules/notification/service"
	"anoa.com/learnhub/pkg/apperror"
	commonDto "anoa.com/learnhub/pkg/dto"
	"anoa.com/learnhub/pkg/ratelimiter"
	"github.com/google/uuid"
	"github.com/microcosm-cc/bluemonday"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

const rateLimitAction = "discussion"

// RateLimits are the cooldowns applied to thread and reply creation.
type RateLimits struct {
	Global     time.Duration
	Discussion time.Duration
}

type DiscussionService interface {
	CreateThread(ctx context.Context, actor commonDto.Actor, courseID uuid.UUID, input dto.CreateThreadInput) (*entity.DiscussionThread, error)
	ListThreads(ctx context.Context, actor commonDto.Actor, courseID uuid.UUID, query dto.ThreadQuery) (*commonDto.Paginated[entity.DiscussionThread], error)
	GetThread(ctx context.Context, actor commonDto.Actor, id uuid.UUID) (*entity.DiscussionThread, error)
	Reply(ctx context.Context, actor commonDto.Actor, threadID uuid.UUID, input dto.CreateReplyInput) (*entity.DiscussionReply, error)
	DeleteThread(ctx context.Context, actor commonDto.Actor, id uuid.UUID) error
	DeleteReply(ctx context.Context, actor commonDto.Actor, id uuid.UUID) error
	TogglePin(ctx context.Context, actor commonDto.Actor, id uuid.UUID) (*dto.PinResponse, error)
}

type discussionService struct {
	repo          repository.DiscussionRepository
	courses       courseRepo.CourseRepository
	lessons       lessonRepo.LessonRepository
	enrollments   enrollmentRepo.EnrollmentRepository
	notifications notification.NotificationService
	activity      activity.ActivityService
	redisClient   *redis.Client
	limits        RateLimits
	titlePolicy   *bluemonday.Policy
	bodyPolicy    *bluemonday.Policy
}

func NewDiscussionService(
	repo repository.DiscussionRepository,
	courses courseRepo.CourseRepository,
	lessons lessonRepo.LessonRepository,
	enrollments enrollmentRepo.EnrollmentRepository,
	notifications notification.NotificationService,
	activity activity.ActivityService,
	redisClient *redis.Client,
	limits RateLimits,
) DiscussionService {
	return &discussionService{
		repo:          repo,
		courses:       courses,
		lessons:       lessons,
		enrollments:   enrollments,
		notifications: notifications,
		activity:      activity,
		redisClient:   redisClient,
		limits:        limits,
		titlePolicy:   bluemonday.StrictPolicy(),
		bodyPolicy:    bluemonday.UGCPolicy(),
	}
}

func (s *discussionService) CreateThread(ctx context.Context, actor commonDto.Actor, courseID uuid.UUID, input dto.CreateThreadInput) (*entity.DiscussionThread, error) {
	course, err := s.loadAccessibleCourse(ctx, actor, courseID)
	if err != nil {
		return nil, err
	}

	title := strings.TrimSpace(s.titlePolicy.Sanitize(input.Title))
	body := strings.TrimSpace(s.bodyPolicy.Sanitize(input.Body))
	if title == "" || body == "" {
		return nil, fmt.Errorf("title and body must not be empty: %w", apperror.ErrInvalidInput)
	}

	thread := &entity.DiscussionThread{
		CourseID: course.ID,
		UserID:   actor.ID,
		Title:    title,
		Body:     body,
	}

	if input.LessonID != nil {
		lessonID, err := uuid.Parse(*input.LessonID)
		if err != nil {
			return nil, fmt.Errorf("invalid lesson id: %w", apperror.ErrBadRequest)
		}
		lesson, err := s.lessons.FindByID(ctx, lessonID)
		if err != nil || lesson.CourseID != course.ID {
			return nil, fmt.Errorf("lesson does not belong to this course: %w", apperror.ErrBadRequest)
		}
		thread.LessonID = &lesson.ID
	}

	rollback, err := ratelimiter.Guard(ctx, s.redisClient, actor.ID, rateLimitAction, s.limits.Global, s.limits.Discussion)
	if err != nil {
		return nil, err
	}

	if err := s.repo.CreateThread(ctx, thread); err != nil {
		rollback()
		return nil, err
	}
	return thread, nil
}

func (s *discussionService) ListThreads(ctx context.Context, actor commonDto.Actor, courseID uuid.UUID, query dto.ThreadQuery) (*commonDto.Paginated[entity.DiscussionThread], error) {
	if _, err := s.loadAccessibleCourse(ctx, actor, courseID); err != nil {
		return nil, err
	}

	query.Normalize()
	filter := repository.ThreadFilter{
		CourseID: courseID,
		Limit:    query.Limit,
		Offset:   query.Offset(),
	}
	if query.LessonID != "" {
		lessonID, err := uuid.Parse(query.LessonID)
		if err != nil {
			return nil, fmt.Errorf("invalid lesson id: %w", apperror.ErrBadRequest)
		}
		filter.LessonID = &lessonID
	}

	threads, total, err := s.repo.ListThreads(ctx, filter)
	if err != nil {
		return nil, err
	}

	return &commonDto.Paginated[entity.DiscussionThread]{
		Data: threads,
		Meta: commonDto.NewPaginationMeta(query.PageQuery, total),
	}, nil
}

func (s *discussionService) GetThread(ctx context.Context, actor commonDto.Actor, id uuid.UUID) (*entity.DiscussionThread, error) {
	thread, err := s.repo.FindThreadWithReplies(ctx, id)
	if err != nil {
		return nil, notFound(err)
	}
	if _, err := s.loadAccessibleCourse(ctx, actor, thread.CourseID); err != nil {
		return nil, err
	}
	return thread, nil
}

func (s *discussionService) Reply(ctx context.Context, actor commonDto.Actor, threadID uuid.UUID, input dto.CreateReplyInput) (*entity.DiscussionReply, error) {
	thread, err := s.repo.FindThreadByID(ctx, threadID)
	if err != nil {
		return nil, notFound(err)
	}
	if _, err := s.loadAccessibleCourse(ctx, actor, thread.CourseID); err != nil {
		return nil, err
	}

	body := strings.TrimSpace(s.bodyPolicy.Sanitize(input.Body))
	if body == "" {
		return nil, fmt.Errorf("reply must not be empty: %w", apperror.ErrInvalidInput)
	}

	rollback, err := ratelimiter.Guard(ctx, s.redisClient, actor.ID, rateLimitAction, s.limits.Global, s.limits.Discussion)
	if err != nil {
		return nil, err
	}

	reply := &entity.DiscussionReply{
		ThreadID: thread.ID,
		UserID:   actor.ID,
		Body:     body,
	}
	if err := s.repo.CreateReply(ctx, reply); err != nil {
		rollback()
		return nil, err
	}

	if thread.UserID != actor.ID {
		s.notifications.Notify(ctx, &entity.Notification{
			UserID:     thread.UserID,
			ActorID:    actor.ID,
			EntityID:   thread.ID,
			EntityType: "discussion_thread",
			Type:       entity.NotifThreadReply,
			Message:    fmt.Sprintf("New reply on \"%s\"", thread.Title),
		})
	}
	return reply, nil
}

func (s *discussionService) DeleteThread(ctx context.Context, actor commonDto.Actor, id uuid.UUID) error {
	thread, err := s.repo.FindThreadByID(ctx, id)
	if err != nil {
		return notFound(err)
	}
	if err := s.requireAuthorOrManager(ctx, actor, thread.UserID, thread.CourseID); err != nil {
		return err
	}

	if err := s.repo.DeleteThread(ctx, thread.ID); err != nil {
		return err
	}
	s.activity.Record(ctx, actor, activity.ActionThreadDeleted, "discussion_thread", thread.ID.String(), map[string]any{
		"course_id": thread.CourseID.String(),
	})
	return nil
}

func (s *discussionService) DeleteReply(ctx context.Context, actor commonDto.Actor, id uuid.UUID) error {
	reply, err := s.repo.FindReplyByID(ctx, id)
	if err != nil {
		return notFound(err)
	}
	thread, err := s.repo.FindThreadByID(ctx, reply.ThreadID)
	if err != nil {
		return notFound(err)
	}
	if err := s.requireAuthorOrManager(ctx, actor, reply.UserID, thread.CourseID); err != nil {
		return err
	}

	if err := s.repo.DeleteReply(ctx, reply.ID); err != nil {
		return err
	}
	s.activity.Record(ctx, actor, activity.ActionReplyDeleted, "discussion_reply", reply.ID.String(), map[string]any{
		"thread_id": thread.ID.String(),
	})
	return nil
}

func (s *discussionService) TogglePin(ctx context.Context, actor commonDto.Actor, id uuid.UUID) (*dto.PinResponse, error) {
	thread, err := s.repo.FindThreadByID(ctx, id)
	if err != nil {
		return nil, notFound(err)
	}
	if _, err := courseService.LoadManagedCourse(ctx, s.courses, actor, thread.CourseID); err != nil {
		return nil, err
	}

	pinned := !thread.IsPinned
	if err := s.repo.SetPinned(ctx, thread.ID, pinned); err != nil {
		return nil, err
	}
	s.activity.Record(ctx, actor, activity.ActionThreadPinned, "discussion_thread", thread.ID.String(), map[string]any{
		"pinned": pinned,
	})
	return &dto.PinResponse{ID: thread.ID.String(), IsPinned: pinned}, nil
}

// loadAccessibleCourse loads the course and requires content access.
func (s *discussionService) loadAccessibleCourse(ctx context.Context, actor commonDto.Actor, courseID uuid.UUID) (*entity.Course, error) {
	course, err := courseService.LoadCourse(ctx, s.courses, courseID)
	if err != nil {
		return nil, err
	}
	ok, err := courseService.HasContentAccess(ctx, s.courses, s.enrollments, actor, course)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, fmt.Errorf("enroll in the course to join its discussions: %w", apperror.ErrForbidden)
	}
	return course, nil
}

func (s *discussionService) requireAuthorOrManager(ctx context.Context, actor commonDto.Actor, authorID, courseID uuid.UUID) error {
	if actor.ID == authorID || actor.Is(entity.RoleAdmin) {
		return nil
	}
	course, err := courseService.LoadCourse(ctx, s.courses, courseID)
	if err != nil {
		return err
	}
	if !courseService.CanManage(actor, course) {
		return fmt.Errorf("you cannot delete this: %w", apperror.ErrForbidden)
	}
	return nil
}

func notFound(err error) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return fmt.Errorf("discussion not found: %w", apperror.ErrNotFound)
	}
	return err
}
