package service

import (
	"context"
	"errors"

	"anoa.com/learnhub/internal/entity"
	"anoa.com/learnhub/internal/modules/course/repository"
	enrollmentRepo "anoa.com/learnhub/internal/modules/enrollment/repository"
	commonDto "anoa.com/learnhub/pkg/dto"
	"gorm.io/gorm"
)

// HasContentAccess reports whether actor may read course content and join its discussions:
// course staff, or a student with a non-cancelled enrollment.
func HasContentAccess(ctx context.Context, courses repository.CourseRepository, enrollments enrollmentRepo.EnrollmentRepository, actor commonDto.Actor, course *entity.Course) (bool, error) {
	staff, err := IsStaff(ctx, courses, actor, course)
	if err != nil || staff {
		return staff, err
	}

	enrollment, err := enrollments.FindByUserAndCourse(ctx, actor.ID, course.ID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return false, nil
		}
		return false, err
	}
	return enrollment.Status != entity.EnrollmentCancelled, nil
}
