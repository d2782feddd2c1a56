package service

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/url"
	"strings"

	"anoa.com/learnhub/internal/entity"
	"anoa.com/learnhub/pkg/apperror"
	"github.com/microcosm-cc/bluemonday"
	"gorm.io/datatypes"
)

func invalid(format string, args ...any) error {
	return fmt.Errorf("%s: %w", fmt.Sprintf(format, args...), apperror.ErrInvalidInput)
}

func decodeStrict(raw []byte, v any) error {
	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.DisallowUnknownFields()
	return dec.Decode(v)
}

func validURL(s string) bool {
	u, err := url.Parse(s)
	if err != nil {
		return false
	}
	return (u.Scheme == "http" || u.Scheme == "https") && u.Host != ""
}

// NormalizeContent validates a lesson payload against its type and returns the canonical JSON.
// Text bodies are passed through the given sanitizer.
func NormalizeContent(lessonType string, raw []byte, policy *bluemonday.Policy) (datatypes.JSON, error) {
	if len(bytes.TrimSpace(raw)) == 0 || bytes.Equal(bytes.TrimSpace(raw), []byte("null")) {
		return nil, invalid("content is required")
	}

	var normalized any
	switch lessonType {
	case entity.LessonTypeText:
		var c entity.TextContent
		if err := decodeStrict(raw, &c); err != nil {
			return nil, invalid("text content must be {\"body\": string}")
		}
		c.Body = strings.TrimSpace(policy.Sanitize(c.Body))
		if c.Body == "" {
			return nil, invalid("text body is empty")
		}
		normalized = c

	case entity.LessonTypeVideo:
		var c entity.VideoContent
		if err := decodeStrict(raw, &c); err != nil {
			return nil, invalid("video content must be {\"url\": string}")
		}
		if !validURL(c.URL) {
			return nil, invalid("video url must be an absolute http(s) url")
		}
		if c.DurationSeconds < 0 {
			return nil, invalid("video duration cannot be negative")
		}
		normalized = c

	case entity.LessonTypeFile:
		var c entity.FileContent
		if err := decodeStrict(raw, &c); err != nil {
			return nil, invalid("file content must be {\"file_url\": string}")
		}
		if c.FileURL == "" || (!validURL(c.FileURL) && !strings.HasPrefix(c.FileURL, "/uploads/")) {
			return nil, invalid("file_url must be an uploaded file or absolute url")
		}
		normalized = c

	case entity.LessonTypeQuiz:
		var c entity.QuizContent
		if err := decodeStrict(raw, &c); err != nil {
			return nil, invalid("quiz content must be {\"passing_score\": int, \"questions\": [...]}")
		}
		if err := validateQuiz(&c); err != nil {
			return nil, err
		}
		normalized = c

	default:
		return nil, invalid("unknown lesson type %q", lessonType)
	}

	out, err := json.Marshal(normalized)
	if err != nil {
		return nil, err
	}
	return datatypes.JSON(out), nil
}

func validateQuiz(c *entity.QuizContent) error {
	if c.PassingScore < 0 || c.PassingScore > 100 {
		return invalid("passing_score must be between 0 and 100")
	}
	if len(c.Questions) == 0 {
		return invalid("quiz needs at least one question")
	}

	ids := make(map[string]struct{}, len(c.Questions))
	for i := range c.Questions {
		q := &c.Questions[i]
		if q.ID == "" {
			q.ID = fmt.Sprintf("q%d", i+1)
		}
		if _, dup := ids[q.ID]; dup {
			return invalid("duplicate question id %q", q.ID)
		}
		ids[q.ID] = struct{}{}

		if strings.TrimSpace(q.Prompt) == "" {
			return invalid("question %s has no prompt", q.ID)
		}
		if len(q.Options) < 2 {
			return invalid("question %s needs at least two options", q.ID)
		}
		if len(q.AnswerIndexes) == 0 {
			return invalid("question %s has no answer", q.ID)
		}
		seen := make(map[int]struct{}, len(q.AnswerIndexes))
		for _, idx := range q.AnswerIndexes {
			if idx < 0 || idx >= len(q.Options) {
				return invalid("question %s answer %d is out of range", q.ID, idx)
			}
			if _, dup := seen[idx]; dup {
				return invalid("question %s repeats answer %d", q.ID, idx)
			}
			seen[idx] = struct{}{}
		}
	}
	return nil
}

// StripAnswers removes answer keys from a quiz payload. Other payloads are returned unchanged.
func StripAnswers(lessonType string, content datatypes.JSON) datatypes.JSON {
	if lessonType != entity.LessonTypeQuiz {
		return content
	}

	// an unreadable quiz may still carry its answer keys, so nothing of it is returned
	var quiz entity.QuizContent
	if err := json.Unmarshal(content, &quiz); err != nil {
		return datatypes.JSON(`{}`)
	}
	for i := range quiz.Questions {
		quiz.Questions[i].AnswerIndexes = nil
	}

	out, err := json.Marshal(quiz)
	if err != nil {
		return datatypes.JSON(`{}`)
	}
	return datatypes.JSON(out)
}

// ParseQuiz decodes a stored quiz payload.
func ParseQuiz(content datatypes.JSON) (*entity.QuizContent, error) {
	var quiz entity.QuizContent
	if err := json.Unmarshal(content, &quiz); err != nil {
		return nil, fmt.Errorf("stored quiz payload is corrupt: %w", err)
	}
	return &quiz, nil
}
