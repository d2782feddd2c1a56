package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"time"

	"anoa.com/learnhub/internal/entity"
	activity "anoa.com/learnhub/internal/modules/activity/service"
	courseRepo "anoa.com/learnhub/internal/modules/course/repository"
	courseService "anoa.com/learnhub/internal/modules/course/service"
	enrollmentRepo "anoa.com/learnhub/internal/modules/enrollment/repository"
	enrollmentService "anoa.com/learnhub/internal/modules/enrollment/service"
	notification "anoa.com/learnhub/internal/modules/notification/service"
	"anoa.com/learnhub/internal/modules/payment/dto"
	"anoa.com/learnhub/internal/modules/payment/repository"
	"anoa.com/learnhub/pkg/apperror"
	commonDto "anoa.com/learnhub/pkg/dto"
	"github.com/gin-gonic/gin/binding"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

type PaymentService interface {
	CreateIntent(ctx context.Context, actor commonDto.Actor, courseID uuid.UUID) (*entity.PaymentIntent, error)
	HandleWebhook(ctx context.Context, body []byte, signature string) (*dto.WebhookResult, error)
	ListMine(ctx context.Context, actor commonDto.Actor) ([]entity.PaymentIntent, error)
	ExpireStale(ctx context.Context) (int64, error)
}

type paymentService struct {
	repo          repository.PaymentRepository
	courses       courseRepo.CourseRepository
	enrollmentsDB enrollmentRepo.EnrollmentRepository
	enrollments   enrollmentService.EnrollmentService
	notifications notification.NotificationService
	activity      activity.ActivityService
	secret        string
	ttl           time.Duration
}

func NewPaymentService(
	repo repository.PaymentRepository,
	courses courseRepo.CourseRepository,
	enrollmentsDB enrollmentRepo.EnrollmentRepository,
	enrollments enrollmentService.EnrollmentService,
	notifications notification.NotificationService,
	activity activity.ActivityService,
	secret string,
	ttl time.Duration,
) PaymentService {
	return &paymentService{
		repo:          repo,
		courses:       courses,
		enrollmentsDB: enrollmentsDB,
		enrollments:   enrollments,
		notifications: notifications,
		activity:      activity,
		secret:        secret,
		ttl:           ttl,
	}
}

func (s *paymentService) CreateIntent(ctx context.Context, actor commonDto.Actor, courseID uuid.UUID) (*entity.PaymentIntent, error) {
	if !actor.Is(entity.RoleStudent) {
		return nil, fmt.Errorf("only students can buy courses: %w", apperror.ErrForbidden)
	}

	course, err := courseService.LoadCourse(ctx, s.courses, courseID)
	if err != nil {
		return nil, err
	}
	if course.Status != entity.CourseStatusPublished {
		return nil, fmt.Errorf("course not found: %w", apperror.ErrNotFound)
	}
	if course.IsFree() {
		return nil, fmt.Errorf("course is free, enroll directly: %w", apperror.ErrBadRequest)
	}

	enrollment, err := s.enrollmentsDB.FindByUserAndCourse(ctx, actor.ID, courseID)
	if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}
	if enrollment != nil && enrollment.Status != entity.EnrollmentCancelled {
		return nil, fmt.Errorf("already enrolled in this course: %w", apperror.ErrConflict)
	}

	if pending, err := s.repo.FindPending(ctx, actor.ID, courseID); err == nil {
		return pending, nil
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}

	intent := &entity.PaymentIntent{
		UserID:      actor.ID,
		CourseID:    courseID,
		Amount:      course.Price,
		Currency:    course.Currency,
		Status:      entity.PaymentPending,
		ProviderRef: "pi_" + uuid.NewString(),
	}
	if err := s.repo.Create(ctx, intent); err != nil {
		return nil, err
	}
	return intent, nil
}

func (s *paymentService) HandleWebhook(ctx context.Context, body []byte, signature string) (*dto.WebhookResult, error) {
	if s.secret == "" {
		return nil, fmt.Errorf("payment webhook is not configured: %w", apperror.ErrServiceUnavailable)
	}
	if !VerifySignature(s.secret, body, signature) {
		return nil, fmt.Errorf("invalid webhook signature: %w", apperror.ErrUnauthorized)
	}

	var event dto.WebhookEvent
	if err := json.Unmarshal(body, &event); err != nil {
		return nil, fmt.Errorf("malformed webhook body: %w", apperror.ErrInvalidInput)
	}
	if err := binding.Validator.ValidateStruct(event); err != nil {
		return nil, err
	}

	intent, err := s.repo.FindByProviderRef(ctx, event.ProviderRef)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("payment intent not found: %w", apperror.ErrNotFound)
		}
		return nil, err
	}

	// An expired intent can still be paid at the provider; the charge wins over the expiry.
	lateSuccess := intent.Status == entity.PaymentCancelled && event.Status == entity.PaymentSucceeded
	if lateSuccess {
		log.Printf("[payment] intent %s succeeded after it was cancelled", intent.ProviderRef)
	}

	if intent.Status != entity.PaymentPending && !lateSuccess {
		if intent.Status != event.Status {
			return nil, fmt.Errorf("payment intent is already %s: %w", intent.Status, apperror.ErrConflict)
		}
		result := &dto.WebhookResult{Intent: intent, Duplicate: true}
		if intent.Status == entity.PaymentSucceeded {
			result.Enrollment, _, err = s.enrollments.Grant(ctx, intent.UserID, intent.CourseID)
			if err != nil {
				return nil, err
			}
		}
		return result, nil
	}

	intent.Status = event.Status
	if err := s.repo.Update(ctx, intent); err != nil {
		return nil, err
	}

	result := &dto.WebhookResult{Intent: intent}
	if intent.Status != entity.PaymentSucceeded {
		log.Printf("[payment] intent %s marked %s", intent.ProviderRef, intent.Status)
		return result, nil
	}

	result.Enrollment, _, err = s.enrollments.Grant(ctx, intent.UserID, intent.CourseID)
	if err != nil {
		return nil, err
	}

	s.notifications.Notify(ctx, &entity.Notification{
		UserID:     intent.UserID,
		ActorID:    intent.UserID,
		EntityID:   intent.ID,
		EntityType: "payment",
		Type:       entity.NotifPaymentSucceeded,
		Message:    fmt.Sprintf("Payment of %d %s received", intent.Amount, intent.Currency),
	})
	s.activity.Record(ctx, commonDto.Actor{ID: intent.UserID, Role: entity.RoleStudent}, activity.ActionPaymentSucceeded, "payment", intent.ID.String(), map[string]any{
		"provider_ref": intent.ProviderRef,
		"amount":       intent.Amount,
		"currency":     intent.Currency,
	})
	return result, nil
}

func (s *paymentService) ListMine(ctx context.Context, actor commonDto.Actor) ([]entity.PaymentIntent, error) {
	return s.repo.ListByUser(ctx, actor.ID)
}

func (s *paymentService) ExpireStale(ctx context.Context) (int64, error) {
	ttl := s.ttl
	if ttl <= 0 {
		ttl = 24 * time.Hour
	}
	return s.repo.ExpirePending(ctx, time.Now().Add(-ttl))
}
