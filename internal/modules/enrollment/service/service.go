package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"anoa.com/learnhub/internal/entity"
	activity "anoa.com/learnhub/internal/modules/activity/service"
	courseRepo "anoa.com/learnhub/internal/modules/course/repository"
	courseService "anoa.com/learnhub/internal/modules/course/service"
	"anoa.com/learnhub/internal/modules/enrollment/dto"
	"anoa.com/learnhub/internal/modules/enrollment/repository"
	lessonRepo "anoa.com/learnhub/internal/modules/lesson/repository"
	notification "anoa.com/learnhub/internal/modules/notification/service"
	"anoa.com/learnhub/pkg/apperror"
	commonDto "anoa.com/learnhub/pkg/dto"
	"anoa.com/learnhub/pkg/mailer"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

type EnrollmentService interface {
	Enroll(ctx context.Context, actor commonDto.Actor, courseID uuid.UUID) (*entity.Enrollment, error)
	// Grant enrolls after a confirmed payment. Repeated calls return the existing enrollment.
	Grant(ctx context.Context, userID, courseID uuid.UUID) (*entity.Enrollment, bool, error)
	ListMine(ctx context.Context, actor commonDto.Actor) ([]dto.MyEnrollment, error)
	ListByCourse(ctx context.Context, actor commonDto.Actor, courseID uuid.UUID, query commonDto.PageQuery) (*commonDto.Paginated[entity.Enrollment], error)
	CompleteLesson(ctx context.Context, actor commonDto.Actor, lessonID uuid.UUID) (*dto.ProgressResponse, error)
	// RecordCompletion marks any lesson type complete; quiz grading calls it after a pass.
	RecordCompletion(ctx context.Context, userID uuid.UUID, lesson *entity.Lesson) (*dto.ProgressResponse, error)
	Cancel(ctx context.Context, actor commonDto.Actor, enrollmentID uuid.UUID) error
}

type enrollmentService struct {
	repo          repository.EnrollmentRepository
	courses       courseRepo.CourseRepository
	lessons       lessonRepo.LessonRepository
	notifications notification.NotificationService
	mail          *notification.UserMailer
	activity      activity.ActivityService
}

func NewEnrollmentService(
	repo repository.EnrollmentRepository,
	courses courseRepo.CourseRepository,
	lessons lessonRepo.LessonRepository,
	notifications notification.NotificationService,
	mail *notification.UserMailer,
	activity activity.ActivityService,
) EnrollmentService {
	return &enrollmentService{
		repo:          repo,
		courses:       courses,
		lessons:       lessons,
		notifications: notifications,
		mail:          mail,
		activity:      activity,
	}
}

func (s *enrollmentService) findExisting(ctx context.Context, userID, courseID uuid.UUID) (*entity.Enrollment, error) {
	enrollment, err := s.repo.FindByUserAndCourse(ctx, userID, courseID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return enrollment, nil
}

func (s *enrollmentService) Enroll(ctx context.Context, actor commonDto.Actor, courseID uuid.UUID) (*entity.Enrollment, error) {
	if !actor.Is(entity.RoleStudent) {
		return nil, fmt.Errorf("only students can enroll: %w", apperror.ErrForbidden)
	}

	course, err := courseService.LoadCourse(ctx, s.courses, courseID)
	if err != nil {
		return nil, err
	}
	if course.Status != entity.CourseStatusPublished {
		return nil, fmt.Errorf("course not found: %w", apperror.ErrNotFound)
	}

	existing, err := s.findExisting(ctx, actor.ID, courseID)
	if err != nil {
		return nil, err
	}
	if existing != nil && existing.Status != entity.EnrollmentCancelled {
		return nil, fmt.Errorf("already enrolled in this course: %w", apperror.ErrConflict)
	}

	if !course.IsFree() {
		return nil, fmt.Errorf("this course costs %d %s, create a payment intent at /api/courses/%s/payment-intents: %w",
			course.Price, course.Currency, course.ID, apperror.ErrPaymentRequired)
	}

	enrollment, err := s.activate(ctx, actor.ID, course, existing)
	if err != nil {
		return nil, err
	}

	s.activity.Record(ctx, actor, activity.ActionEnrolled, "course", course.ID.String(), map[string]any{
		"enrollment_id": enrollment.ID.String(),
	})
	return enrollment, nil
}

func (s *enrollmentService) Grant(ctx context.Context, userID, courseID uuid.UUID) (*entity.Enrollment, bool, error) {
	course, err := courseService.LoadCourse(ctx, s.courses, courseID)
	if err != nil {
		return nil, false, err
	}

	existing, err := s.findExisting(ctx, userID, courseID)
	if err != nil {
		return nil, false, err
	}
	if existing != nil && existing.Status != entity.EnrollmentCancelled {
		return existing, false, nil
	}

	enrollment, err := s.activate(ctx, userID, course, existing)
	if err != nil {
		return nil, false, err
	}

	s.activity.Record(ctx, commonDto.Actor{ID: userID, Role: entity.RoleStudent}, activity.ActionEnrolled, "course", course.ID.String(), map[string]any{
		"enrollment_id": enrollment.ID.String(),
		"paid":          true,
	})
	return enrollment, true, nil
}

// activate creates the enrollment, or revives a cancelled one with its recorded completions.
func (s *enrollmentService) activate(ctx context.Context, userID uuid.UUID, course *entity.Course, existing *entity.Enrollment) (*entity.Enrollment, error) {
	total, err := s.courses.CountLessons(ctx, course.ID)
	if err != nil {
		return nil, err
	}

	enrollment := existing
	if enrollment == nil {
		enrollment = &entity.Enrollment{
			UserID:       userID,
			CourseID:     course.ID,
			Status:       entity.EnrollmentActive,
			TotalLessons: int(total),
		}
		if err := s.repo.Create(ctx, enrollment); err != nil {
			return nil, err
		}
	} else {
		if _, err := s.recompute(ctx, enrollment, int(total)); err != nil {
			return nil, err
		}
		enrollment.Status = entity.EnrollmentActive
		if enrollment.Progress == 100 {
			enrollment.Status = entity.EnrollmentCompleted
		}
		if err := s.repo.Update(ctx, enrollment); err != nil {
			return nil, err
		}
	}

	s.notifications.Notify(ctx, &entity.Notification{
		UserID:     userID,
		ActorID:    userID,
		EntityID:   course.ID,
		EntityType: "course",
		Type:       entity.NotifEnrolled,
		Message:    fmt.Sprintf("You are enrolled in %s", course.Title),
	})
	s.mail.Send(ctx, userID, func(fullName string) (string, string) {
		return mailer.EnrollmentEmail(fullName, course.Title)
	})

	return enrollment, nil
}

// recompute refreshes the counters and reports whether the course just reached 100%.
func (s *enrollmentService) recompute(ctx context.Context, enrollment *entity.Enrollment, total int) (bool, error) {
	completed, err := s.repo.CountCompletions(ctx, enrollment.ID)
	if err != nil {
		return false, err
	}

	enrollment.TotalLessons = total
	enrollment.CompletedLessons = int(completed)
	enrollment.Progress = Progress(int(completed), total)

	if enrollment.Progress == 100 && enrollment.CompletedAt == nil {
		now := time.Now()
		enrollment.CompletedAt = &now
		return true, nil
	}
	return false, nil
}

func (s *enrollmentService) ListMine(ctx context.Context, actor commonDto.Actor) ([]dto.MyEnrollment, error) {
	enrollments, err := s.repo.ListByUser(ctx, actor.ID)
	if err != nil {
		return nil, err
	}

	out := make([]dto.MyEnrollment, 0, len(enrollments))
	for _, e := range enrollments {
		ids, err := s.repo.CompletedLessonIDs(ctx, e.ID)
		if err != nil {
			return nil, err
		}
		out = append(out, dto.MyEnrollment{Enrollment: e, CompletedLessonIDs: ids})
	}
	return out, nil
}

func (s *enrollmentService) ListByCourse(ctx context.Context, actor commonDto.Actor, courseID uuid.UUID, query commonDto.PageQuery) (*commonDto.Paginated[entity.Enrollment], error) {
	if _, err := courseService.LoadManagedCourse(ctx, s.courses, actor, courseID); err != nil {
		return nil, err
	}

	query.Normalize()
	enrollments, total, err := s.repo.ListByCourse(ctx, courseID, query.Limit, query.Offset())
	if err != nil {
		return nil, err
	}

	return &commonDto.Paginated[entity.Enrollment]{
		Data: enrollments,
		Meta: commonDto.NewPaginationMeta(query, total),
	}, nil
}

func (s *enrollmentService) CompleteLesson(ctx context.Context, actor commonDto.Actor, lessonID uuid.UUID) (*dto.ProgressResponse, error) {
	lesson, err := s.lessons.FindByID(ctx, lessonID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("lesson not found: %w", apperror.ErrNotFound)
		}
		return nil, err
	}
	if lesson.Type == entity.LessonTypeQuiz {
		return nil, fmt.Errorf("quiz lessons are completed by passing the quiz: %w", apperror.ErrBadRequest)
	}

	return s.RecordCompletion(ctx, actor.ID, lesson)
}

func (s *enrollmentService) RecordCompletion(ctx context.Context, userID uuid.UUID, lesson *entity.Lesson) (*dto.ProgressResponse, error) {
	enrollment, err := s.findExisting(ctx, userID, lesson.CourseID)
	if err != nil {
		return nil, err
	}
	if enrollment == nil || enrollment.Status == entity.EnrollmentCancelled {
		return nil, fmt.Errorf("not enrolled in this course: %w", apperror.ErrForbidden)
	}

	created, err := s.repo.AddCompletion(ctx, enrollment.ID, lesson.ID)
	if err != nil {
		return nil, err
	}
	if !created {
		return &dto.ProgressResponse{Enrollment: enrollment, LessonID: lesson.ID, AlreadyCompleted: true}, nil
	}

	total, err := s.courses.CountLessons(ctx, lesson.CourseID)
	if err != nil {
		return nil, err
	}

	justCompleted, err := s.recompute(ctx, enrollment, int(total))
	if err != nil {
		return nil, err
	}
	if justCompleted {
		enrollment.Status = entity.EnrollmentCompleted
	}
	if err := s.repo.Update(ctx, enrollment); err != nil {
		return nil, err
	}

	s.notifications.Notify(ctx, &entity.Notification{
		UserID:     userID,
		ActorID:    userID,
		EntityID:   lesson.ID,
		EntityType: "lesson",
		Type:       entity.NotifLessonCompleted,
		Message:    fmt.Sprintf("Completed %q, progress %d%%", lesson.Title, enrollment.Progress),
	})
	if justCompleted {
		s.notifications.Notify(ctx, &entity.Notification{
			UserID:     userID,
			ActorID:    userID,
			EntityID:   lesson.CourseID,
			EntityType: "course",
			Type:       entity.NotifCourseCompleted,
			Message:    "Course completed, you can now request your certificate",
		})
	}

	return &dto.ProgressResponse{
		Enrollment:      enrollment,
		LessonID:        lesson.ID,
		CourseCompleted: justCompleted,
	}, nil
}

func (s *enrollmentService) Cancel(ctx context.Context, actor commonDto.Actor, enrollmentID uuid.UUID) error {
	enrollment, err := s.repo.FindByID(ctx, enrollmentID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return fmt.Errorf("enrollment not found: %w", apperror.ErrNotFound)
		}
		return err
	}

	if enrollment.UserID != actor.ID && !actor.Is(entity.RoleAdmin) {
		return fmt.Errorf("enrollment not found: %w", apperror.ErrNotFound)
	}
	if enrollment.Status == entity.EnrollmentCancelled {
		return fmt.Errorf("enrollment is already cancelled: %w", apperror.ErrConflict)
	}

	enrollment.Status = entity.EnrollmentCancelled
	enrollment.Course = nil
	if err := s.repo.Update(ctx, enrollment); err != nil {
		return err
	}

	s.activity.Record(ctx, actor, activity.ActionEnrollmentCancelled, "enrollment", enrollment.ID.String(), map[string]any{
		"course_id": enrollment.CourseID.String(),
	})
	return nil
}
