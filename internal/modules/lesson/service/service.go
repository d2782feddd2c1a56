package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"

	"anoa.com/learnhub/internal/entity"
	activity "anoa.com/learnhub/internal/modules/activity/service"
	attachmentRepo "anoa.com/learnhub/internal/modules/attachment/repository"
	courseRepo "anoa.com/learnhub/internal/modules/course/repository"
	courseService "anoa.com/learnhub/internal/modules/course/service"
	enrollmentRepo "anoa.com/learnhub/internal/modules/enrollment/repository"
	"anoa.com/learnhub/internal/modules/lesson/dto"
	"anoa.com/learnhub/internal/modules/lesson/repository"
	"anoa.com/learnhub/pkg/apperror"
	commonDto "anoa.com/learnhub/pkg/dto"
	"github.com/google/uuid"
	"github.com/microcosm-cc/bluemonday"
	"gorm.io/gorm"
)

type LessonService interface {
	Create(ctx context.Context, actor commonDto.Actor, courseID uuid.UUID, input dto.CreateLessonInput) (*entity.Lesson, error)
	ListByCourse(ctx context.Context, actor commonDto.Actor, courseID uuid.UUID) ([]entity.Lesson, error)
	Get(ctx context.Context, actor commonDto.Actor, id uuid.UUID) (*entity.Lesson, error)
	Update(ctx context.Context, actor commonDto.Actor, id uuid.UUID, input dto.UpdateLessonInput) (*entity.Lesson, error)
	Delete(ctx context.Context, actor commonDto.Actor, id uuid.UUID) error
	Reorder(ctx context.Context, actor commonDto.Actor, courseID uuid.UUID, ids []uuid.UUID) ([]entity.Lesson, error)
}

type lessonService struct {
	repo        repository.LessonRepository
	courses     courseRepo.CourseRepository
	enrollments enrollmentRepo.EnrollmentRepository
	attachments attachmentRepo.AttachmentRepository
	activity    activity.ActivityService
	policy      *bluemonday.Policy
}

func NewLessonService(
	repo repository.LessonRepository,
	courses courseRepo.CourseRepository,
	enrollments enrollmentRepo.EnrollmentRepository,
	attachments attachmentRepo.AttachmentRepository,
	activity activity.ActivityService,
) LessonService {
	return &lessonService{
		repo:        repo,
		courses:     courses,
		enrollments: enrollments,
		attachments: attachments,
		activity:    activity,
		policy:      bluemonday.UGCPolicy(),
	}
}

func (s *lessonService) loadLesson(ctx context.Context, id uuid.UUID) (*entity.Lesson, error) {
	lesson, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("lesson not found: %w", apperror.ErrNotFound)
		}
		return nil, err
	}
	return lesson, nil
}

func (s *lessonService) Create(ctx context.Context, actor commonDto.Actor, courseID uuid.UUID, input dto.CreateLessonInput) (*entity.Lesson, error) {
	course, err := courseService.LoadManagedCourse(ctx, s.courses, actor, courseID)
	if err != nil {
		return nil, err
	}

	content, err := NormalizeContent(input.Type, input.Content, s.policy)
	if err != nil {
		return nil, err
	}

	var position int
	if input.Position != nil {
		position = *input.Position
		taken, err := s.repo.PositionTaken(ctx, course.ID, position)
		if err != nil {
			return nil, err
		}
		if taken {
			return nil, fmt.Errorf("position %d is already used: %w", position, apperror.ErrConflict)
		}
	} else {
		max, err := s.repo.MaxPosition(ctx, course.ID)
		if err != nil {
			return nil, err
		}
		position = max + 1
	}

	lesson := &entity.Lesson{
		CourseID:        course.ID,
		Title:           input.Title,
		Type:            input.Type,
		Position:        position,
		Content:         content,
		DurationMinutes: input.DurationMinutes,
		IsPreview:       input.IsPreview,
	}
	if err := s.repo.Create(ctx, lesson); err != nil {
		return nil, err
	}
	s.syncAttachment(ctx, actor, lesson)

	s.activity.Record(ctx, actor, activity.ActionLessonCreated, "lesson", lesson.ID.String(), map[string]any{
		"course_id": course.ID.String(),
		"type":      lesson.Type,
	})
	return lesson, nil
}

// ListByCourse returns lessons without their payloads.
func (s *lessonService) ListByCourse(ctx context.Context, actor commonDto.Actor, courseID uuid.UUID) ([]entity.Lesson, error) {
	course, err := courseService.LoadCourse(ctx, s.courses, courseID)
	if err != nil {
		return nil, err
	}

	if course.Status != entity.CourseStatusPublished {
		staff, err := courseService.IsStaff(ctx, s.courses, actor, course)
		if err != nil {
			return nil, err
		}
		if !staff {
			return nil, fmt.Errorf("course not found: %w", apperror.ErrNotFound)
		}
	}

	lessons, err := s.repo.ListByCourse(ctx, courseID)
	if err != nil {
		return nil, err
	}
	for i := range lessons {
		lessons[i].Content = nil
	}
	return lessons, nil
}

func (s *lessonService) Get(ctx context.Context, actor commonDto.Actor, id uuid.UUID) (*entity.Lesson, error) {
	lesson, err := s.loadLesson(ctx, id)
	if err != nil {
		return nil, err
	}

	course, err := courseService.LoadCourse(ctx, s.courses, lesson.CourseID)
	if err != nil {
		return nil, err
	}

	staff, err := courseService.IsStaff(ctx, s.courses, actor, course)
	if err != nil {
		return nil, err
	}
	if staff {
		return lesson, nil
	}

	if course.Status != entity.CourseStatusPublished {
		return nil, fmt.Errorf("lesson not found: %w", apperror.ErrNotFound)
	}

	if !lesson.IsPreview {
		if actor.ID == uuid.Nil {
			return nil, fmt.Errorf("sign in to view this lesson: %w", apperror.ErrUnauthorized)
		}
		ok, err := courseService.HasContentAccess(ctx, s.courses, s.enrollments, actor, course)
		if err != nil {
			return nil, err
		}
		if !ok {
			return nil, fmt.Errorf("enroll in the course to view this lesson: %w", apperror.ErrForbidden)
		}
	}

	lesson.Content = StripAnswers(lesson.Type, lesson.Content)
	return lesson, nil
}

func (s *lessonService) Update(ctx context.Context, actor commonDto.Actor, id uuid.UUID, input dto.UpdateLessonInput) (*entity.Lesson, error) {
	lesson, err := s.loadLesson(ctx, id)
	if err != nil {
		return nil, err
	}
	if _, err := courseService.LoadManagedCourse(ctx, s.courses, actor, lesson.CourseID); err != nil {
		return nil, err
	}

	lessonType := lesson.Type
	if input.Type != nil {
		lessonType = *input.Type
	}

	switch {
	case len(input.Content) > 0:
		content, err := NormalizeContent(lessonType, input.Content, s.policy)
		if err != nil {
			return nil, err
		}
		lesson.Content = content
	case lessonType != lesson.Type:
		return nil, fmt.Errorf("changing the lesson type requires new content: %w", apperror.ErrInvalidInput)
	}
	lesson.Type = lessonType

	if input.Title != nil {
		lesson.Title = *input.Title
	}
	if input.DurationMinutes != nil {
		lesson.DurationMinutes = *input.DurationMinutes
	}
	if input.IsPreview != nil {
		lesson.IsPreview = *input.IsPreview
	}

	if err := s.repo.Update(ctx, lesson); err != nil {
		return nil, err
	}
	s.syncAttachment(ctx, actor, lesson)

	s.activity.Record(ctx, actor, activity.ActionLessonUpdated, "lesson", lesson.ID.String(), map[string]any{
		"course_id": lesson.CourseID.String(),
	})
	return lesson, nil
}

func (s *lessonService) Delete(ctx context.Context, actor commonDto.Actor, id uuid.UUID) error {
	lesson, err := s.loadLesson(ctx, id)
	if err != nil {
		return err
	}
	if _, err := courseService.LoadManagedCourse(ctx, s.courses, actor, lesson.CourseID); err != nil {
		return err
	}

	if s.attachments != nil {
		if _, err := s.attachments.UnlinkLesson(ctx, id, ""); err != nil {
			return err
		}
	}
	if err := s.repo.Delete(ctx, id); err != nil {
		return err
	}

	s.activity.Record(ctx, actor, activity.ActionLessonDeleted, "lesson", id.String(), map[string]any{
		"course_id": lesson.CourseID.String(),
		"title":     lesson.Title,
	})
	return nil
}

func (s *lessonService) Reorder(ctx context.Context, actor commonDto.Actor, courseID uuid.UUID, ids []uuid.UUID) ([]entity.Lesson, error) {
	if _, err := courseService.LoadManagedCourse(ctx, s.courses, actor, courseID); err != nil {
		return nil, err
	}

	existing, err := s.repo.ListByCourse(ctx, courseID)
	if err != nil {
		return nil, err
	}
	if len(existing) != len(ids) {
		return nil, fmt.Errorf("expected %d lesson ids, got %d: %w", len(existing), len(ids), apperror.ErrInvalidInput)
	}

	known := make(map[uuid.UUID]bool, len(existing))
	for _, l := range existing {
		known[l.ID] = false
	}
	for _, id := range ids {
		used, ok := known[id]
		if !ok {
			return nil, fmt.Errorf("lesson %s does not belong to this course: %w", id, apperror.ErrInvalidInput)
		}
		if used {
			return nil, fmt.Errorf("lesson %s is listed twice: %w", id, apperror.ErrInvalidInput)
		}
		known[id] = true
	}

	if err := s.repo.Reorder(ctx, courseID, ids); err != nil {
		return nil, err
	}

	s.activity.Record(ctx, actor, activity.ActionLessonsReordered, "course", courseID.String(), nil)
	return s.ListByCourse(ctx, actor, courseID)
}

// syncAttachment links the upload behind a file lesson so orphan cleanup keeps it,
// and releases any upload the lesson no longer points at.
func (s *lessonService) syncAttachment(ctx context.Context, actor commonDto.Actor, lesson *entity.Lesson) {
	if s.attachments == nil {
		return
	}

	var keep string
	if lesson.Type == entity.LessonTypeFile {
		var c entity.FileContent
		if err := json.Unmarshal(lesson.Content, &c); err == nil {
			keep = c.FileURL
		}
	}

	if _, err := s.attachments.UnlinkLesson(ctx, lesson.ID, keep); err != nil {
		log.Printf("[lesson] failed to release attachments of %s: %v", lesson.ID, err)
	}
	if keep == "" {
		return
	}
	if _, err := s.attachments.LinkToLesson(ctx, actor.ID, keep, lesson.ID); err != nil {
		log.Printf("[lesson] failed to link attachment %s: %v", keep, err)
	}
}
