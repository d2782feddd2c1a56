// Package search keeps the course catalog index in Meilisearch.
package search

import (
	"context"
	"encoding/json"
	"fmt"
	"html"
	"log"
	"strings"

	"anoa.com/learnhub/internal/entity"
	"github.com/meilisearch/meilisearch-go"
	"github.com/microcosm-cc/bluemonday"
)

const coursesIndex = "courses"

// CourseIndex is the full-text catalog of published courses.
type CourseIndex interface {
	IndexCourse(course *entity.Course) error
	DeleteCourse(id string) error
	// SearchCourseIDs returns matching course ids in relevance order and the estimated total.
	SearchCourseIDs(ctx context.Context, query, level string, limit, offset int) ([]string, int64, error)
}

type meiliCourseIndex struct {
	client    meilisearch.ServiceManager
	sanitizer *bluemonday.Policy
}

func NewMeiliCourseIndex(client meilisearch.ServiceManager) CourseIndex {
	s := &meiliCourseIndex{
		client:    client,
		sanitizer: bluemonday.StrictPolicy(),
	}
	s.initIndex()
	return s
}

func (s *meiliCourseIndex) initIndex() {
	filterable := []any{"level", "instructor_id"}
	if _, err := s.client.Index(coursesIndex).UpdateFilterableAttributes(&filterable); err != nil {
		log.Printf("Failed to update courses filterable attributes: %v", err)
	}

	sortable := []string{"published_at", "views", "price"}
	if _, err := s.client.Index(coursesIndex).UpdateSortableAttributes(&sortable); err != nil {
		log.Printf("Failed to update courses sortable attributes: %v", err)
	}

	log.Println("Meilisearch courses index initialized")
}

type courseDoc struct {
	ID           string `json:"id"`
	Title        string `json:"title"`
	Description  string `json:"description"`
	Slug         string `json:"slug"`
	Level        string `json:"level"`
	Price        int64  `json:"price"`
	Currency     string `json:"currency"`
	InstructorID string `json:"instructor_id"`
	Instructor   string `json:"instructor"`
	Views        int    `json:"views"`
	PublishedAt  int64  `json:"published_at"`
}

// CleanText flattens HTML into single-spaced plain text for indexing.
func CleanText(policy *bluemonday.Policy, content string) string {
	content = strings.ReplaceAll(content, "</p>", " ")
	content = strings.ReplaceAll(content, "<br>", " ")
	content = strings.ReplaceAll(content, "</div>", " ")

	cleanText := html.UnescapeString(policy.Sanitize(content))
	return strings.Join(strings.Fields(cleanText), " ")
}

func newCourseDoc(policy *bluemonday.Policy, course *entity.Course) courseDoc {
	doc := courseDoc{
		ID:           course.ID.String(),
		Title:        course.Title,
		Description:  CleanText(policy, course.Description),
		Slug:         course.Slug,
		Level:        course.Level,
		Price:        course.Price,
		Currency:     course.Currency,
		InstructorID: course.InstructorID.String(),
		Views:        course.Views,
	}
	if course.Instructor != nil {
		doc.Instructor = course.Instructor.Username
	}
	if course.PublishedAt != nil {
		doc.PublishedAt = course.PublishedAt.Unix()
	}
	return doc
}

func (s *meiliCourseIndex) IndexCourse(course *entity.Course) error {
	doc := newCourseDoc(s.sanitizer, course)

	task, err := s.client.Index(coursesIndex).AddDocuments([]courseDoc{doc}, strPtr("id"))
	if err != nil {
		return fmt.Errorf("failed to index course %s: %w", doc.ID, err)
	}
	log.Printf("Indexed course %s (task %d)", doc.ID, task.TaskUID)
	return nil
}

func (s *meiliCourseIndex) DeleteCourse(id string) error {
	_, err := s.client.Index(coursesIndex).DeleteDocument(id)
	return err
}

func (s *meiliCourseIndex) SearchCourseIDs(ctx context.Context, query, level string, limit, offset int) ([]string, int64, error) {
	req := &meilisearch.SearchRequest{
		Limit:                int64(limit),
		Offset:               int64(offset),
		AttributesToRetrieve: []string{"id"},
	}
	if level != "" {
		req.Filter = fmt.Sprintf("level = %q", level)
	}

	resp, err := s.client.Index(coursesIndex).SearchWithContext(ctx, query, req)
	if err != nil {
		return nil, 0, fmt.Errorf("meilisearch query failed: %w", err)
	}

	raw, err := json.Marshal(resp.Hits)
	if err != nil {
		return nil, 0, err
	}
	var hits []struct {
		ID string `json:"id"`
	}
	if err := json.Unmarshal(raw, &hits); err != nil {
		return nil, 0, err
	}

	ids := make([]string, 0, len(hits))
	for _, h := range hits {
		ids = append(ids, h.ID)
	}
	return ids, resp.EstimatedTotalHits, nil
}

func strPtr(s string) *string {
	return &s
}
