package dto

import (
	"anoa.com/learnhub/internal/entity"
	"github.com/google/uuid"
)

// Dashboard carries exactly one role-specific section.
type Dashboard struct {
	Role       string             `json:"role"`
	Admin      *AdminSummary      `json:"admin,omitempty"`
	Instructor *InstructorSummary `json:"instructor,omitempty"`
	Assessor   *AssessorSummary   `json:"assessor,omitempty"`
	Student    *StudentSummary    `json:"student,omitempty"`
}

type AdminSummary struct {
	UsersByRole         map[string]int64 `json:"users_by_role"`
	CoursesByStatus     map[string]int64 `json:"courses_by_status"`
	EnrollmentsByStatus map[string]int64 `json:"enrollments_by_status"`
	PendingCertificates int64            `json:"pending_certificates"`
	RevenueByCurrency   map[string]int64 `json:"revenue_by_currency"`
}

type CourseStats struct {
	ID              uuid.UUID `json:"id"`
	Title           string    `json:"title"`
	Slug            string    `json:"slug"`
	Status          string    `json:"status"`
	Enrollments     int64     `json:"enrollments"`
	AverageProgress float64   `json:"average_progress"`
}

type InstructorSummary struct {
	Courses          []CourseStats `json:"courses"`
	TotalEnrollments int64         `json:"total_enrollments"`
}

type CourseBrief struct {
	ID    uuid.UUID `json:"id"`
	Title string    `json:"title"`
	Slug  string    `json:"slug"`
}

type AssessorSummary struct {
	Courses             []CourseBrief `json:"courses"`
	PendingCertificates int64         `json:"pending_certificates"`
}

type EnrollmentProgress struct {
	CourseID    uuid.UUID `json:"course_id"`
	CourseTitle string    `json:"course_title"`
	CourseSlug  string    `json:"course_slug"`
	Status      string    `json:"status"`
	Progress    int       `json:"progress"`
}

type StudentSummary struct {
	Enrollments  []EnrollmentProgress `json:"enrollments"`
	Certificates []entity.Certificate `json:"certificates"`
}
