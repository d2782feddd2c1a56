package service

import (
	"context"
	"fmt"
	"log"
	"strconv"
	"time"

	"anoa.com/learnhub/internal/modules/course/repository"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

const pendingViewsKey = "pending:course_views"

// ViewCounter buffers course views in redis and flushes them to the database.
type ViewCounter interface {
	IncrementView(ctx context.Context, courseID uuid.UUID, viewer string) error
	SyncViews(ctx context.Context) (int, error)
}

type viewCounter struct {
	redisClient *redis.Client
	repo        repository.CourseRepository
}

func NewViewCounter(redisClient *redis.Client, repo repository.CourseRepository) ViewCounter {
	return &viewCounter{
		redisClient: redisClient,
		repo:        repo,
	}
}

func viewKey(courseID string) string {
	return fmt.Sprintf("course:views:%s", courseID)
}

// IncrementView counts one view per viewer per hour. Without redis it is a no-op.
func (s *viewCounter) IncrementView(ctx context.Context, courseID uuid.UUID, viewer string) error {
	if s.redisClient == nil {
		return nil
	}

	viewerKey := fmt.Sprintf("course:viewer:%s:%s", courseID, viewer)
	fresh, err := s.redisClient.SetNX(ctx, viewerKey, "viewed", time.Hour).Result()
	if err != nil {
		return fmt.Errorf("failed to check viewer: %w", err)
	}
	if !fresh {
		return nil
	}

	pipe := s.redisClient.TxPipeline()
	pipe.Incr(ctx, viewKey(courseID.String()))
	pipe.SAdd(ctx, pendingViewsKey, courseID.String())
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("failed to increment view: %w", err)
	}

	return nil
}

// SyncViews moves buffered counts into courses.views and returns how many courses were touched.
func (s *viewCounter) SyncViews(ctx context.Context) (int, error) {
	if s.redisClient == nil {
		return 0, nil
	}

	courseIDs, err := s.redisClient.SMembers(ctx, pendingViewsKey).Result()
	if err != nil {
		return 0, fmt.Errorf("failed to read pending course views: %w", err)
	}

	synced := 0
	for _, idStr := range courseIDs {
		courseID, err := uuid.Parse(idStr)
		if err != nil {
			log.Printf("[views] invalid course id %q: %v", idStr, err)
			s.redisClient.SRem(ctx, pendingViewsKey, idStr)
			continue
		}

		// remove from the pending set first so a concurrent view re-adds it
		s.redisClient.SRem(ctx, pendingViewsKey, idStr)
		countStr, err := s.redisClient.GetDel(ctx, viewKey(idStr)).Result()
		if err != nil && err != redis.Nil {
			log.Printf("[views] failed to read count for %s: %v", idStr, err)
			s.redisClient.SAdd(ctx, pendingViewsKey, idStr)
			continue
		}

		count, _ := strconv.Atoi(countStr)
		if count <= 0 {
			continue
		}

		if err := s.repo.AddViews(ctx, courseID, count); err != nil {
			log.Printf("[views] failed to persist %d views for %s: %v", count, idStr, err)
			s.redisClient.IncrBy(ctx, viewKey(idStr), int64(count))
			s.redisClient.SAdd(ctx, pendingViewsKey, idStr)
			continue
		}
		synced++
	}

	return synced, nil
}
