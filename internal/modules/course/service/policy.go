package service

import (
	"context"
	"errors"
	"fmt"

	"anoa.com/learnhub/internal/entity"
	"anoa.com/learnhub/internal/modules/course/repository"
	"anoa.com/learnhub/pkg/apperror"
	commonDto "anoa.com/learnhub/pkg/dto"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// CanManage reports whether actor may edit the course: its instructor or an admin.
func CanManage(actor commonDto.Actor, course *entity.Course) bool {
	if actor.Is(entity.RoleAdmin) {
		return true
	}
	return actor.Is(entity.RoleInstructor) && course.InstructorID == actor.ID
}

// LoadCourse maps a missing row to apperror.ErrNotFound.
func LoadCourse(ctx context.Context, repo repository.CourseRepository, id uuid.UUID) (*entity.Course, error) {
	course, err := repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("course not found: %w", apperror.ErrNotFound)
		}
		return nil, err
	}
	return course, nil
}

// LoadManagedCourse loads the course and requires CanManage.
func LoadManagedCourse(ctx context.Context, repo repository.CourseRepository, actor commonDto.Actor, id uuid.UUID) (*entity.Course, error) {
	course, err := LoadCourse(ctx, repo, id)
	if err != nil {
		return nil, err
	}
	if !CanManage(actor, course) {
		return nil, fmt.Errorf("only the course instructor or an admin can do this: %w", apperror.ErrForbidden)
	}
	return course, nil
}

// IsStaff reports whether actor manages the course or is one of its assessors.
func IsStaff(ctx context.Context, repo repository.CourseRepository, actor commonDto.Actor, course *entity.Course) (bool, error) {
	if CanManage(actor, course) {
		return true, nil
	}
	if actor.Is(entity.RoleAssessor) {
		return repo.IsAssessor(ctx, course.ID, actor.ID)
	}
	return false, nil
}
