package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"anoa.com/learnhub/internal/entity"
	activity "anoa.com/learnhub/internal/modules/activity/service"
	"anoa.com/learnhub/internal/modules/certificate/dto"
	"anoa.com/learnhub/internal/modules/certificate/repository"
	courseRepo "anoa.com/learnhub/internal/modules/course/repository"
	courseService "anoa.com/learnhub/internal/modules/course/service"
	enrollmentRepo "anoa.com/learnhub/internal/modules/enrollment/repository"
	notification "anoa.com/learnhub/internal/modules/notification/service"
	"anoa.com/learnhub/pkg/apperror"
	commonDto "anoa.com/learnhub/pkg/dto"
	"anoa.com/learnhub/pkg/mailer"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

type CertificateService interface {
	Request(ctx context.Context, actor commonDto.Actor, courseID uuid.UUID) (*entity.Certificate, error)
	ListMine(ctx context.Context, actor commonDto.Actor) ([]entity.Certificate, error)
	ListForReview(ctx context.Context, actor commonDto.Actor, query dto.ReviewQuery) (*commonDto.Paginated[entity.Certificate], error)
	Approve(ctx context.Context, actor commonDto.Actor, id uuid.UUID) (*entity.Certificate, error)
	Reject(ctx context.Context, actor commonDto.Actor, id uuid.UUID, reason string) (*entity.Certificate, error)
	Verify(ctx context.Context, number string) (*dto.VerificationResponse, error)
}

type certificateService struct {
	repo          repository.CertificateRepository
	courses       courseRepo.CourseRepository
	enrollments   enrollmentRepo.EnrollmentRepository
	notifications notification.NotificationService
	mail          *notification.UserMailer
	activity      activity.ActivityService
	now           func() time.Time
}

func NewCertificateService(
	repo repository.CertificateRepository,
	courses courseRepo.CourseRepository,
	enrollments enrollmentRepo.EnrollmentRepository,
	notifications notification.NotificationService,
	mail *notification.UserMailer,
	activity activity.ActivityService,
) CertificateService {
	return &certificateService{
		repo:          repo,
		courses:       courses,
		enrollments:   enrollments,
		notifications: notifications,
		mail:          mail,
		activity:      activity,
		now:           time.Now,
	}
}

// NewNumber formats LH-<YYYYMMDD>-<8 hex>.
func NewNumber(at time.Time) string {
	suffix := strings.ReplaceAll(uuid.NewString(), "-", "")[:8]
	return fmt.Sprintf("LH-%s-%s", at.Format("20060102"), strings.ToUpper(suffix))
}

func (s *certificateService) load(ctx context.Context, id uuid.UUID) (*entity.Certificate, error) {
	certificate, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("certificate not found: %w", apperror.ErrNotFound)
		}
		return nil, err
	}
	return certificate, nil
}

func (s *certificateService) Request(ctx context.Context, actor commonDto.Actor, courseID uuid.UUID) (*entity.Certificate, error) {
	course, err := courseService.LoadCourse(ctx, s.courses, courseID)
	if err != nil {
		return nil, err
	}

	enrollment, err := s.enrollments.FindByUserAndCourse(ctx, actor.ID, courseID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("not enrolled in this course: %w", apperror.ErrForbidden)
		}
		return nil, err
	}
	if enrollment.Status != entity.EnrollmentCompleted {
		return nil, fmt.Errorf("complete every lesson before requesting a certificate: %w", apperror.ErrBadRequest)
	}

	certificate, err := s.repo.FindByUserAndCourse(ctx, actor.ID, courseID)
	switch {
	case err == nil:
		if certificate.Status != entity.CertificateRejected {
			return nil, fmt.Errorf("a %s certificate already exists for this course: %w", certificate.Status, apperror.ErrConflict)
		}
		certificate.Status = entity.CertificatePending
		certificate.RejectionReason = nil
		certificate.AssessorID = nil
		certificate.EnrollmentID = enrollment.ID
		certificate.RequestedAt = s.now()
		if err := s.repo.Update(ctx, certificate); err != nil {
			return nil, err
		}
	case errors.Is(err, gorm.ErrRecordNotFound):
		certificate = &entity.Certificate{
			UserID:       actor.ID,
			CourseID:     courseID,
			EnrollmentID: enrollment.ID,
			Status:       entity.CertificatePending,
			RequestedAt:  s.now(),
		}
		if err := s.repo.Create(ctx, certificate); err != nil {
			return nil, err
		}
	default:
		return nil, err
	}

	assessors, err := s.courses.ListAssessorIDs(ctx, courseID)
	if err != nil {
		return nil, err
	}
	for _, assessorID := range assessors {
		s.notifications.Notify(ctx, &entity.Notification{
			UserID:     assessorID,
			ActorID:    actor.ID,
			EntityID:   certificate.ID,
			EntityType: "certificate",
			Type:       entity.NotifCertificateRequest,
			Message:    fmt.Sprintf("New certificate request for %s", course.Title),
		})
	}

	s.activity.Record(ctx, actor, activity.ActionCertificateRequested, "certificate", certificate.ID.String(), map[string]any{
		"course_id": courseID.String(),
	})
	return certificate, nil
}

func (s *certificateService) ListMine(ctx context.Context, actor commonDto.Actor) ([]entity.Certificate, error) {
	return s.repo.ListByUser(ctx, actor.ID)
}

func (s *certificateService) ListForReview(ctx context.Context, actor commonDto.Actor, query dto.ReviewQuery) (*commonDto.Paginated[entity.Certificate], error) {
	query.Normalize()

	filter := repository.CertificateFilter{
		Status: query.Status,
		Limit:  query.Limit,
		Offset: query.Offset(),
	}
	if !actor.Is(entity.RoleAdmin) {
		ids, err := s.courses.CourseIDsForAssessor(ctx, actor.ID)
		if err != nil {
			return nil, err
		}
		if ids == nil {
			ids = []uuid.UUID{}
		}
		filter.CourseIDs = ids
	}

	certificates, total, err := s.repo.List(ctx, filter)
	if err != nil {
		return nil, err
	}

	return &commonDto.Paginated[entity.Certificate]{
		Data: certificates,
		Meta: commonDto.NewPaginationMeta(query.PageQuery, total),
	}, nil
}

// loadForReview loads a pending certificate the actor is allowed to decide on.
func (s *certificateService) loadForReview(ctx context.Context, actor commonDto.Actor, id uuid.UUID) (*entity.Certificate, error) {
	certificate, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}

	if !actor.Is(entity.RoleAdmin) {
		assigned, err := s.courses.IsAssessor(ctx, certificate.CourseID, actor.ID)
		if err != nil {
			return nil, err
		}
		if !assigned {
			return nil, fmt.Errorf("you are not an assessor of this course: %w", apperror.ErrForbidden)
		}
	}

	if certificate.Status != entity.CertificatePending {
		return nil, fmt.Errorf("certificate is already %s: %w", certificate.Status, apperror.ErrConflict)
	}
	return certificate, nil
}

// decide persists the outcome unless another reviewer got there first.
func (s *certificateService) decide(ctx context.Context, certificate *entity.Certificate) error {
	applied, err := s.repo.Decide(ctx, certificate)
	if err != nil {
		return err
	}
	if !applied {
		return fmt.Errorf("certificate was already reviewed: %w", apperror.ErrConflict)
	}
	return nil
}

func courseTitle(c *entity.Certificate) string {
	if c.Course != nil {
		return c.Course.Title
	}
	return "your course"
}

func (s *certificateService) Approve(ctx context.Context, actor commonDto.Actor, id uuid.UUID) (*entity.Certificate, error) {
	certificate, err := s.loadForReview(ctx, actor, id)
	if err != nil {
		return nil, err
	}

	issuedAt := s.now()
	number := NewNumber(issuedAt)
	certificate.Status = entity.CertificateApproved
	certificate.Number = &number
	certificate.IssuedAt = &issuedAt
	certificate.AssessorID = &actor.ID
	certificate.RejectionReason = nil

	if err := s.decide(ctx, certificate); err != nil {
		return nil, err
	}

	title := courseTitle(certificate)
	s.notifications.Notify(ctx, &entity.Notification{
		UserID:     certificate.UserID,
		ActorID:    actor.ID,
		EntityID:   certificate.ID,
		EntityType: "certificate",
		Type:       entity.NotifCertificateApproved,
		Message:    fmt.Sprintf("Your certificate for %s was approved: %s", title, number),
	})
	s.mail.Send(ctx, certificate.UserID, func(fullName string) (string, string) {
		return mailer.CertificateApprovedEmail(fullName, title, number)
	})

	s.activity.Record(ctx, actor, activity.ActionCertificateApproved, "certificate", certificate.ID.String(), map[string]any{
		"number": number,
	})
	return certificate, nil
}

func (s *certificateService) Reject(ctx context.Context, actor commonDto.Actor, id uuid.UUID, reason string) (*entity.Certificate, error) {
	reason = strings.TrimSpace(reason)
	if reason == "" {
		return nil, fmt.Errorf("a rejection reason is required: %w", apperror.ErrInvalidInput)
	}

	certificate, err := s.loadForReview(ctx, actor, id)
	if err != nil {
		return nil, err
	}

	certificate.Status = entity.CertificateRejected
	certificate.RejectionReason = &reason
	certificate.AssessorID = &actor.ID

	if err := s.decide(ctx, certificate); err != nil {
		return nil, err
	}

	title := courseTitle(certificate)
	s.notifications.Notify(ctx, &entity.Notification{
		UserID:     certificate.UserID,
		ActorID:    actor.ID,
		EntityID:   certificate.ID,
		EntityType: "certificate",
		Type:       entity.NotifCertificateRejected,
		Message:    fmt.Sprintf("Your certificate request for %s was rejected", title),
	})
	s.mail.Send(ctx, certificate.UserID, func(fullName string) (string, string) {
		return mailer.CertificateRejectedEmail(fullName, title, reason)
	})

	s.activity.Record(ctx, actor, activity.ActionCertificateRejected, "certificate", certificate.ID.String(), map[string]any{
		"reason": reason,
	})
	return certificate, nil
}

func (s *certificateService) Verify(ctx context.Context, number string) (*dto.VerificationResponse, error) {
	certificate, err := s.repo.FindByNumber(ctx, strings.ToUpper(strings.TrimSpace(number)))
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("certificate not found: %w", apperror.ErrNotFound)
		}
		return nil, err
	}
	if certificate.Status != entity.CertificateApproved || certificate.IssuedAt == nil {
		return nil, fmt.Errorf("certificate not found: %w", apperror.ErrNotFound)
	}

	res := &dto.VerificationResponse{
		Number:      *certificate.Number,
		Valid:       true,
		CourseTitle: courseTitle(certificate),
		IssuedAt:    *certificate.IssuedAt,
	}
	if certificate.User != nil {
		res.StudentName = certificate.User.Username
		if certificate.User.Profile != nil && certificate.User.Profile.FullName != "" {
			res.StudentName = certificate.User.Profile.FullName
		}
	}
	return res, nil
}
