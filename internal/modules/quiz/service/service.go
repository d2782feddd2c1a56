package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"anoa.com/learnhub/internal/entity"
	courseRepo "anoa.com/learnhub/internal/modules/course/repository"
	courseService "anoa.com/learnhub/internal/modules/course/service"
	enrollmentRepo "anoa.com/learnhub/internal/modules/enrollment/repository"
	enrollmentService "anoa.com/learnhub/internal/modules/enrollment/service"
	lessonRepo "anoa.com/learnhub/internal/modules/lesson/repository"
	lessonService "anoa.com/learnhub/internal/modules/lesson/service"
	"anoa.com/learnhub/internal/modules/quiz/dto"
	"anoa.com/learnhub/internal/modules/quiz/generator"
	"anoa.com/learnhub/internal/modules/quiz/repository"
	"anoa.com/learnhub/pkg/apperror"
	commonDto "anoa.com/learnhub/pkg/dto"
	"anoa.com/learnhub/pkg/mailer"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

const (
	defaultGeneratedQuestions = 5
	defaultPassingScore       = 70
)

type QuizService interface {
	Submit(ctx context.Context, actor commonDto.Actor, lessonID uuid.UUID, answers [][]int) (*dto.AttemptResult, error)
	ListAttempts(ctx context.Context, actor commonDto.Actor, lessonID uuid.UUID) ([]entity.QuizAttempt, error)
	// Generate returns a draft payload; nothing is stored.
	Generate(ctx context.Context, actor commonDto.Actor, lessonID uuid.UUID, input dto.GenerateQuizInput) (*entity.QuizContent, error)
}

type quizService struct {
	repo        repository.QuizRepository
	lessons     lessonRepo.LessonRepository
	courses     courseRepo.CourseRepository
	enrollments enrollmentRepo.EnrollmentRepository
	progress    enrollmentService.EnrollmentService
	generator   generator.QuizGenerator
}

// NewQuizService accepts a nil generator; Generate then reports the service as unavailable.
func NewQuizService(
	repo repository.QuizRepository,
	lessons lessonRepo.LessonRepository,
	courses courseRepo.CourseRepository,
	enrollments enrollmentRepo.EnrollmentRepository,
	progress enrollmentService.EnrollmentService,
	gen generator.QuizGenerator,
) QuizService {
	return &quizService{
		repo:        repo,
		lessons:     lessons,
		courses:     courses,
		enrollments: enrollments,
		progress:    progress,
		generator:   gen,
	}
}

func (s *quizService) loadLesson(ctx context.Context, id uuid.UUID) (*entity.Lesson, error) {
	lesson, err := s.lessons.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("lesson not found: %w", apperror.ErrNotFound)
		}
		return nil, err
	}
	return lesson, nil
}

func (s *quizService) requireEnrollment(ctx context.Context, userID, courseID uuid.UUID) error {
	enrollment, err := s.enrollments.FindByUserAndCourse(ctx, userID, courseID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return fmt.Errorf("not enrolled in this course: %w", apperror.ErrForbidden)
		}
		return err
	}
	if enrollment.Status == entity.EnrollmentCancelled {
		return fmt.Errorf("not enrolled in this course: %w", apperror.ErrForbidden)
	}
	return nil
}

func (s *quizService) Submit(ctx context.Context, actor commonDto.Actor, lessonID uuid.UUID, answers [][]int) (*dto.AttemptResult, error) {
	lesson, err := s.loadLesson(ctx, lessonID)
	if err != nil {
		return nil, err
	}
	if lesson.Type != entity.LessonTypeQuiz {
		return nil, fmt.Errorf("lesson is not a quiz: %w", apperror.ErrBadRequest)
	}
	if err := s.requireEnrollment(ctx, actor.ID, lesson.CourseID); err != nil {
		return nil, err
	}

	quiz, err := lessonService.ParseQuiz(lesson.Content)
	if err != nil {
		return nil, err
	}

	grade, err := Score(quiz, answers)
	if err != nil {
		return nil, err
	}

	raw, err := json.Marshal(answers)
	if err != nil {
		return nil, err
	}

	attempt := &entity.QuizAttempt{
		UserID:     actor.ID,
		LessonID:   lesson.ID,
		Answers:    raw,
		Score:      grade.Score,
		MaxScore:   grade.MaxScore,
		Percentage: grade.Percentage,
		Passed:     grade.Passed,
	}
	if err := s.repo.CreateAttempt(ctx, attempt); err != nil {
		return nil, err
	}

	result := &dto.AttemptResult{Attempt: attempt}
	if grade.Passed {
		result.Progress, err = s.progress.RecordCompletion(ctx, actor.ID, lesson)
		if err != nil {
			return nil, err
		}
	}
	return result, nil
}

func (s *quizService) ListAttempts(ctx context.Context, actor commonDto.Actor, lessonID uuid.UUID) ([]entity.QuizAttempt, error) {
	lesson, err := s.loadLesson(ctx, lessonID)
	if err != nil {
		return nil, err
	}
	if lesson.Type != entity.LessonTypeQuiz {
		return nil, fmt.Errorf("lesson is not a quiz: %w", apperror.ErrBadRequest)
	}
	return s.repo.ListAttempts(ctx, actor.ID, lesson.ID)
}

func (s *quizService) Generate(ctx context.Context, actor commonDto.Actor, lessonID uuid.UUID, input dto.GenerateQuizInput) (*entity.QuizContent, error) {
	lesson, err := s.loadLesson(ctx, lessonID)
	if err != nil {
		return nil, err
	}
	if _, err := courseService.LoadManagedCourse(ctx, s.courses, actor, lesson.CourseID); err != nil {
		return nil, err
	}
	if s.generator == nil {
		return nil, fmt.Errorf("quiz generation is not configured: %w", apperror.ErrServiceUnavailable)
	}
	if lesson.Type != entity.LessonTypeText {
		return nil, fmt.Errorf("quizzes can only be generated from text lessons: %w", apperror.ErrBadRequest)
	}

	var text entity.TextContent
	if err := json.Unmarshal(lesson.Content, &text); err != nil {
		return nil, fmt.Errorf("stored text payload is corrupt: %w", err)
	}

	count := input.Questions
	if count == 0 {
		count = defaultGeneratedQuestions
	}
	passing := input.PassingScore
	if passing == 0 {
		passing = defaultPassingScore
	}

	questions, err := s.generator.Generate(ctx, lesson.Title, mailer.StripTags(text.Body), count)
	if err != nil {
		return nil, fmt.Errorf("quiz generation failed: %v: %w", err, apperror.ErrServiceUnavailable)
	}

	return &entity.QuizContent{PassingScore: passing, Questions: questions}, nil
}
