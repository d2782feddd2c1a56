package service

import (
	"context"
	"fmt"
	"math"

	"anoa.com/learnhub/internal/entity"
	certificateRepo "anoa.com/learnhub/internal/modules/certificate/repository"
	courseRepo "anoa.com/learnhub/internal/modules/course/repository"
	"anoa.com/learnhub/internal/modules/dashboard/dto"
	enrollmentRepo "anoa.com/learnhub/internal/modules/enrollment/repository"
	paymentRepo "anoa.com/learnhub/internal/modules/payment/repository"
	userRepo "anoa.com/learnhub/internal/modules/user/repository"
	"anoa.com/learnhub/pkg/apperror"
	commonDto "anoa.com/learnhub/pkg/dto"
	"github.com/google/uuid"
)

// maxDashboardCourses bounds the instructor course list.
const maxDashboardCourses = 100

type DashboardService interface {
	Get(ctx context.Context, actor commonDto.Actor) (*dto.Dashboard, error)
}

type dashboardService struct {
	users        userRepo.UserRepository
	courses      courseRepo.CourseRepository
	enrollments  enrollmentRepo.EnrollmentRepository
	certificates certificateRepo.CertificateRepository
	payments     paymentRepo.PaymentRepository
}

func NewDashboardService(
	users userRepo.UserRepository,
	courses courseRepo.CourseRepository,
	enrollments enrollmentRepo.EnrollmentRepository,
	certificates certificateRepo.CertificateRepository,
	payments paymentRepo.PaymentRepository,
) DashboardService {
	return &dashboardService{
		users:        users,
		courses:      courses,
		enrollments:  enrollments,
		certificates: certificates,
		payments:     payments,
	}
}

func (s *dashboardService) Get(ctx context.Context, actor commonDto.Actor) (*dto.Dashboard, error) {
	out := &dto.Dashboard{Role: actor.Role}
	var err error

	switch actor.Role {
	case entity.RoleAdmin:
		out.Admin, err = s.admin(ctx)
	case entity.RoleInstructor:
		out.Instructor, err = s.instructor(ctx, actor.ID)
	case entity.RoleAssessor:
		out.Assessor, err = s.assessor(ctx, actor.ID)
	case entity.RoleStudent:
		out.Student, err = s.student(ctx, actor.ID)
	default:
		return nil, fmt.Errorf("unknown role %q: %w", actor.Role, apperror.ErrForbidden)
	}
	if err != nil {
		return nil, err
	}
	return out, nil
}

func (s *dashboardService) admin(ctx context.Context) (*dto.AdminSummary, error) {
	users, err := s.users.CountByRole(ctx)
	if err != nil {
		return nil, err
	}
	courses, err := s.courses.CountByStatus(ctx)
	if err != nil {
		return nil, err
	}
	enrollments, err := s.enrollments.CountByStatus(ctx)
	if err != nil {
		return nil, err
	}
	certificates, err := s.certificates.CountByStatus(ctx, nil)
	if err != nil {
		return nil, err
	}
	revenue, err := s.payments.RevenueByCurrency(ctx)
	if err != nil {
		return nil, err
	}

	return &dto.AdminSummary{
		UsersByRole:         users,
		CoursesByStatus:     courses,
		EnrollmentsByStatus: enrollments,
		PendingCertificates: certificates[entity.CertificatePending],
		RevenueByCurrency:   revenue,
	}, nil
}

func (s *dashboardService) instructor(ctx context.Context, instructorID uuid.UUID) (*dto.InstructorSummary, error) {
	courses, _, err := s.courses.List(ctx, courseRepo.CourseFilter{
		InstructorID: &instructorID,
		Limit:        maxDashboardCourses,
	})
	if err != nil {
		return nil, err
	}

	ids := make([]uuid.UUID, len(courses))
	for i, c := range courses {
		ids[i] = c.ID
	}
	stats, err := s.enrollments.StatsByCourse(ctx, ids)
	if err != nil {
		return nil, err
	}
	byCourse := make(map[uuid.UUID]enrollmentRepo.CourseEnrollmentStats, len(stats))
	for _, st := range stats {
		byCourse[st.CourseID] = st
	}

	summary := &dto.InstructorSummary{Courses: make([]dto.CourseStats, 0, len(courses))}
	for _, c := range courses {
		st := byCourse[c.ID]
		summary.Courses = append(summary.Courses, dto.CourseStats{
			ID:              c.ID,
			Title:           c.Title,
			Slug:            c.Slug,
			Status:          c.Status,
			Enrollments:     st.Enrollments,
			AverageProgress: math.Round(st.AverageProgress*10) / 10,
		})
		summary.TotalEnrollments += st.Enrollments
	}
	return summary, nil
}

func (s *dashboardService) assessor(ctx context.Context, assessorID uuid.UUID) (*dto.AssessorSummary, error) {
	ids, err := s.courses.CourseIDsForAssessor(ctx, assessorID)
	if err != nil {
		return nil, err
	}
	if ids == nil {
		ids = []uuid.UUID{}
	}

	courses, err := s.courses.FindByIDs(ctx, ids)
	if err != nil {
		return nil, err
	}
	counts, err := s.certificates.CountByStatus(ctx, ids)
	if err != nil {
		return nil, err
	}

	summary := &dto.AssessorSummary{
		Courses:             make([]dto.CourseBrief, 0, len(courses)),
		PendingCertificates: counts[entity.CertificatePending],
	}
	for _, c := range courses {
		summary.Courses = append(summary.Courses, dto.CourseBrief{ID: c.ID, Title: c.Title, Slug: c.Slug})
	}
	return summary, nil
}

func (s *dashboardService) student(ctx context.Context, studentID uuid.UUID) (*dto.StudentSummary, error) {
	enrollments, err := s.enrollments.ListByUser(ctx, studentID)
	if err != nil {
		return nil, err
	}
	certificates, err := s.certificates.ListByUser(ctx, studentID)
	if err != nil {
		return nil, err
	}

	summary := &dto.StudentSummary{
		Enrollments:  make([]dto.EnrollmentProgress, 0, len(enrollments)),
		Certificates: certificates,
	}
	for _, e := range enrollments {
		if e.Status == entity.EnrollmentCancelled {
			continue
		}
		item := dto.EnrollmentProgress{
			CourseID: e.CourseID,
			Status:   e.Status,
			Progress: e.Progress,
		}
		if e.Course != nil {
			item.CourseTitle = e.Course.Title
			item.CourseSlug = e.Course.Slug
		}
		summary.Enrollments = append(summary.Enrollments, item)
	}
	return summary, nil
}
