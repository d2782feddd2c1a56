package service

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"
	"time"

	"anoa.com/learnhub/internal/entity"
	activity "anoa.com/learnhub/internal/modules/activity/service"
	"anoa.com/learnhub/internal/modules/course/dto"
	"anoa.com/learnhub/internal/modules/course/repository"
	userRepo "anoa.com/learnhub/internal/modules/user/repository"
	"anoa.com/learnhub/internal/search"
	"anoa.com/learnhub/pkg/apperror"
	commonDto "anoa.com/learnhub/pkg/dto"
	"anoa.com/learnhub/pkg/storage"
	"github.com/google/uuid"
	"github.com/gosimple/slug"
	"gorm.io/gorm"
)

const maxSlugAttempts = 5

type CourseService interface {
	Create(ctx context.Context, actor commonDto.Actor, input dto.CreateCourseInput) (*entity.Course, error)
	List(ctx context.Context, actor commonDto.Actor, query dto.CourseListQuery) (*commonDto.Paginated[entity.Course], error)
	GetBySlug(ctx context.Context, actor commonDto.Actor, slug, viewer string) (*dto.CourseDetail, error)
	Update(ctx context.Context, actor commonDto.Actor, id uuid.UUID, input dto.UpdateCourseInput) (*entity.Course, error)
	Delete(ctx context.Context, actor commonDto.Actor, id uuid.UUID) error
	Publish(ctx context.Context, actor commonDto.Actor, id uuid.UUID) (*entity.Course, error)
	Archive(ctx context.Context, actor commonDto.Actor, id uuid.UUID) (*entity.Course, error)
	UploadThumbnail(ctx context.Context, actor commonDto.Actor, id uuid.UUID, file commonDto.UploadFile) (*entity.Course, error)
	SetAssessors(ctx context.Context, actor commonDto.Actor, id uuid.UUID, assessorIDs []uuid.UUID) ([]uuid.UUID, error)
	Search(ctx context.Context, query dto.SearchQuery) (*commonDto.Paginated[entity.Course], error)
}

type courseService struct {
	repo     repository.CourseRepository
	users    userRepo.UserRepository
	index    search.CourseIndex
	views    ViewCounter
	storage  storage.FileStorage
	activity activity.ActivityService
}

func NewCourseService(
	repo repository.CourseRepository,
	users userRepo.UserRepository,
	index search.CourseIndex,
	views ViewCounter,
	fileStorage storage.FileStorage,
	activity activity.ActivityService,
) CourseService {
	return &courseService{
		repo:     repo,
		users:    users,
		index:    index,
		views:    views,
		storage:  fileStorage,
		activity: activity,
	}
}

func (s *courseService) uniqueSlug(ctx context.Context, title string) (string, error) {
	base := slug.Make(title)
	if base == "" {
		base = "course"
	}

	candidate := base
	for i := 0; i < maxSlugAttempts; i++ {
		exists, err := s.repo.SlugExists(ctx, candidate)
		if err != nil {
			return "", err
		}
		if !exists {
			return candidate, nil
		}
		candidate = fmt.Sprintf("%s-%s", base, uuid.NewString()[:6])
	}

	return "", fmt.Errorf("could not generate a unique slug: %w", apperror.ErrConflict)
}

func (s *courseService) Create(ctx context.Context, actor commonDto.Actor, input dto.CreateCourseInput) (*entity.Course, error) {
	if !actor.Is(entity.RoleInstructor, entity.RoleAdmin) {
		return nil, fmt.Errorf("only instructors can create courses: %w", apperror.ErrForbidden)
	}

	courseSlug, err := s.uniqueSlug(ctx, input.Title)
	if err != nil {
		return nil, err
	}

	level := input.Level
	if level == "" {
		level = entity.LevelBeginner
	}
	currency := strings.ToUpper(input.Currency)
	if currency == "" {
		currency = "USD"
	}

	course := &entity.Course{
		InstructorID: actor.ID,
		Title:        strings.TrimSpace(input.Title),
		Slug:         courseSlug,
		Description:  input.Description,
		Level:        level,
		Price:        input.Price,
		Currency:     currency,
		Status:       entity.CourseStatusDraft,
	}

	if err := s.repo.Create(ctx, course); err != nil {
		return nil, err
	}

	s.activity.Record(ctx, actor, activity.ActionCourseCreated, "course", course.ID.String(), map[string]any{"title": course.Title})
	return course, nil
}

func (s *courseService) List(ctx context.Context, actor commonDto.Actor, query dto.CourseListQuery) (*commonDto.Paginated[entity.Course], error) {
	query.Normalize()

	filter := repository.CourseFilter{
		Search:   strings.TrimSpace(query.Search),
		Level:    query.Level,
		Statuses: []string{entity.CourseStatusPublished},
		Limit:    query.Limit,
		Offset:   query.Offset(),
	}

	switch {
	case actor.Is(entity.RoleAdmin):
		filter.Statuses = nil
		if query.Status != "" {
			filter.Statuses = []string{query.Status}
		}
		if query.Mine {
			filter.InstructorID = &actor.ID
		}
	case actor.Is(entity.RoleInstructor) && query.Mine:
		filter.InstructorID = &actor.ID
		filter.Statuses = nil
		if query.Status != "" {
			filter.Statuses = []string{query.Status}
		}
	}

	courses, total, err := s.repo.List(ctx, filter)
	if err != nil {
		return nil, err
	}

	return &commonDto.Paginated[entity.Course]{
		Data: courses,
		Meta: commonDto.NewPaginationMeta(query.PageQuery, total),
	}, nil
}

func (s *courseService) GetBySlug(ctx context.Context, actor commonDto.Actor, courseSlug, viewer string) (*dto.CourseDetail, error) {
	course, err := s.repo.FindBySlug(ctx, courseSlug)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("course not found: %w", apperror.ErrNotFound)
		}
		return nil, err
	}

	staff, err := IsStaff(ctx, s.repo, actor, course)
	if err != nil {
		return nil, err
	}
	if course.Status != entity.CourseStatusPublished && !staff {
		return nil, fmt.Errorf("course not found: %w", apperror.ErrNotFound)
	}

	lessons, err := s.repo.ListLessonOutline(ctx, course.ID)
	if err != nil {
		return nil, err
	}

	outline := make([]dto.LessonOutline, 0, len(lessons))
	for _, l := range lessons {
		outline = append(outline, dto.LessonOutline{
			ID:              l.ID,
			Title:           l.Title,
			Type:            l.Type,
			Position:        l.Position,
			DurationMinutes: l.DurationMinutes,
			IsPreview:       l.IsPreview,
		})
	}

	detail := &dto.CourseDetail{Course: course, Lessons: outline, LessonCount: len(outline)}
	if staff {
		detail.AssessorIDs, err = s.repo.ListAssessorIDs(ctx, course.ID)
		if err != nil {
			return nil, err
		}
	}

	if s.views != nil && course.Status == entity.CourseStatusPublished {
		if err := s.views.IncrementView(ctx, course.ID, viewer); err != nil {
			log.Printf("[course] failed to count view for %s: %v", course.ID, err)
		}
	}

	return detail, nil
}

func (s *courseService) Update(ctx context.Context, actor commonDto.Actor, id uuid.UUID, input dto.UpdateCourseInput) (*entity.Course, error) {
	course, err := LoadManagedCourse(ctx, s.repo, actor, id)
	if err != nil {
		return nil, err
	}

	changes := map[string]any{}
	if input.Title != nil {
		course.Title = strings.TrimSpace(*input.Title)
		changes["title"] = course.Title
	}
	if input.Slug != nil && *input.Slug != course.Slug {
		exists, err := s.repo.SlugExists(ctx, *input.Slug)
		if err != nil {
			return nil, err
		}
		if exists {
			return nil, fmt.Errorf("slug %q is already taken: %w", *input.Slug, apperror.ErrConflict)
		}
		course.Slug = *input.Slug
		changes["slug"] = course.Slug
	}
	if input.Description != nil {
		course.Description = *input.Description
		changes["description"] = "changed"
	}
	if input.Level != nil {
		course.Level = *input.Level
		changes["level"] = course.Level
	}
	if input.Price != nil {
		course.Price = *input.Price
		changes["price"] = course.Price
	}
	if input.Currency != nil {
		course.Currency = strings.ToUpper(*input.Currency)
		changes["currency"] = course.Currency
	}

	if err := s.repo.Update(ctx, course); err != nil {
		return nil, err
	}

	if course.Status == entity.CourseStatusPublished {
		s.reindex(course)
	}

	s.activity.Record(ctx, actor, activity.ActionCourseUpdated, "course", course.ID.String(), changes)
	return course, nil
}

func (s *courseService) Delete(ctx context.Context, actor commonDto.Actor, id uuid.UUID) error {
	course, err := LoadManagedCourse(ctx, s.repo, actor, id)
	if err != nil {
		return err
	}

	if err := s.repo.Delete(ctx, id); err != nil {
		return err
	}

	s.unindex(course.ID)
	if course.ThumbnailURL != nil && s.storage != nil {
		if err := s.storage.Delete(ctx, *course.ThumbnailURL); err != nil {
			log.Printf("[course] failed to delete thumbnail %s: %v", *course.ThumbnailURL, err)
		}
	}

	s.activity.Record(ctx, actor, activity.ActionCourseDeleted, "course", id.String(), map[string]any{"title": course.Title})
	return nil
}

func (s *courseService) Publish(ctx context.Context, actor commonDto.Actor, id uuid.UUID) (*entity.Course, error) {
	course, err := LoadManagedCourse(ctx, s.repo, actor, id)
	if err != nil {
		return nil, err
	}

	if course.Status == entity.CourseStatusPublished {
		return course, nil
	}

	count, err := s.repo.CountLessons(ctx, id)
	if err != nil {
		return nil, err
	}
	if count == 0 {
		return nil, fmt.Errorf("a course needs at least one lesson before publishing: %w", apperror.ErrBadRequest)
	}

	now := time.Now()
	course.Status = entity.CourseStatusPublished
	if course.PublishedAt == nil {
		course.PublishedAt = &now
	}

	if err := s.repo.Update(ctx, course); err != nil {
		return nil, err
	}

	s.reindex(course)
	s.activity.Record(ctx, actor, activity.ActionCoursePublished, "course", course.ID.String(), nil)
	return course, nil
}

func (s *courseService) Archive(ctx context.Context, actor commonDto.Actor, id uuid.UUID) (*entity.Course, error) {
	course, err := LoadManagedCourse(ctx, s.repo, actor, id)
	if err != nil {
		return nil, err
	}

	if course.Status == entity.CourseStatusArchived {
		return course, nil
	}

	course.Status = entity.CourseStatusArchived
	if err := s.repo.Update(ctx, course); err != nil {
		return nil, err
	}

	s.unindex(course.ID)
	s.activity.Record(ctx, actor, activity.ActionCourseArchived, "course", course.ID.String(), nil)
	return course, nil
}

func (s *courseService) UploadThumbnail(ctx context.Context, actor commonDto.Actor, id uuid.UUID, file commonDto.UploadFile) (*entity.Course, error) {
	course, err := LoadManagedCourse(ctx, s.repo, actor, id)
	if err != nil {
		return nil, err
	}
	if s.storage == nil {
		return nil, fmt.Errorf("file storage is not configured: %w", apperror.ErrServiceUnavailable)
	}

	url, err := s.storage.Upload(ctx, file.Reader, "thumbnails", file.FileName)
	if err != nil {
		return nil, err
	}

	old := course.ThumbnailURL
	course.ThumbnailURL = &url
	if err := s.repo.Update(ctx, course); err != nil {
		return nil, err
	}

	if old != nil {
		if err := s.storage.Delete(ctx, *old); err != nil {
			log.Printf("[course] failed to delete old thumbnail %s: %v", *old, err)
		}
	}
	if course.Status == entity.CourseStatusPublished {
		s.reindex(course)
	}
	return course, nil
}

func (s *courseService) SetAssessors(ctx context.Context, actor commonDto.Actor, id uuid.UUID, assessorIDs []uuid.UUID) ([]uuid.UUID, error) {
	if !actor.Is(entity.RoleAdmin) {
		return nil, fmt.Errorf("only admins can assign assessors: %w", apperror.ErrForbidden)
	}
	if _, err := LoadCourse(ctx, s.repo, id); err != nil {
		return nil, err
	}

	unique := make([]uuid.UUID, 0, len(assessorIDs))
	seen := make(map[uuid.UUID]struct{}, len(assessorIDs))
	for _, aid := range assessorIDs {
		if _, dup := seen[aid]; dup {
			continue
		}
		seen[aid] = struct{}{}
		unique = append(unique, aid)
	}

	users, err := s.users.FindByIDs(ctx, unique)
	if err != nil {
		return nil, err
	}
	if len(users) != len(unique) {
		return nil, fmt.Errorf("some assessors do not exist: %w", apperror.ErrBadRequest)
	}
	for _, u := range users {
		if u.RoleName() != entity.RoleAssessor {
			return nil, fmt.Errorf("user %s is not an assessor: %w", u.Username, apperror.ErrBadRequest)
		}
	}

	if err := s.repo.ReplaceAssessors(ctx, id, unique); err != nil {
		return nil, err
	}

	ids := make([]string, 0, len(unique))
	for _, aid := range unique {
		ids = append(ids, aid.String())
	}
	s.activity.Record(ctx, actor, activity.ActionAssessorsAssigned, "course", id.String(), map[string]any{"assessor_ids": ids})
	return unique, nil
}

func (s *courseService) Search(ctx context.Context, query dto.SearchQuery) (*commonDto.Paginated[entity.Course], error) {
	query.Normalize()
	q := strings.TrimSpace(query.Q)

	if s.index == nil {
		courses, total, err := s.repo.List(ctx, repository.CourseFilter{
			Search:   q,
			Level:    query.Level,
			Statuses: []string{entity.CourseStatusPublished},
			Limit:    query.Limit,
			Offset:   query.Offset(),
		})
		if err != nil {
			return nil, err
		}
		return &commonDto.Paginated[entity.Course]{Data: courses, Meta: commonDto.NewPaginationMeta(query.PageQuery, total)}, nil
	}

	ids, total, err := s.index.SearchCourseIDs(ctx, q, query.Level, query.Limit, query.Offset())
	if err != nil {
		return nil, fmt.Errorf("%v: %w", err, apperror.ErrServiceUnavailable)
	}

	parsed := make([]uuid.UUID, 0, len(ids))
	for _, id := range ids {
		if u, err := uuid.Parse(id); err == nil {
			parsed = append(parsed, u)
		}
	}

	found, err := s.repo.FindByIDs(ctx, parsed)
	if err != nil {
		return nil, err
	}

	byID := make(map[uuid.UUID]entity.Course, len(found))
	for _, c := range found {
		byID[c.ID] = c
	}
	ordered := make([]entity.Course, 0, len(found))
	for _, id := range parsed {
		if c, ok := byID[id]; ok && c.Status == entity.CourseStatusPublished {
			ordered = append(ordered, c)
		}
	}

	return &commonDto.Paginated[entity.Course]{Data: ordered, Meta: commonDto.NewPaginationMeta(query.PageQuery, total)}, nil
}

func (s *courseService) reindex(course *entity.Course) {
	if s.index == nil {
		return
	}
	if err := s.index.IndexCourse(course); err != nil {
		log.Printf("[course] failed to index %s: %v", course.ID, err)
	}
}

func (s *courseService) unindex(id uuid.UUID) {
	if s.index == nil {
		return
	}
	if err := s.index.DeleteCourse(id.String()); err != nil {
		log.Printf("[course] failed to remove %s from index: %v", id, err)
	}
}
