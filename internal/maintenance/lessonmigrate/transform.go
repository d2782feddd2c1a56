package lessonmigrate

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"path"
	"strings"

	"anoa.com/learnhub/internal/entity"
	lessonService "anoa.com/learnhub/internal/modules/lesson/service"
	"github.com/microcosm-cc/bluemonday"
	"gorm.io/datatypes"
)

// Type names used by lessons created before the typed payload schema.
var typeAliases = map[string]string{
	"article":  entity.LessonTypeText,
	"mcq":      entity.LessonTypeQuiz,
	"document": entity.LessonTypeFile,
}

const maxUnwrapDepth = 3

// Result is the outcome of transforming one lesson row.
type Result struct {
	Type    string
	Content datatypes.JSON
	Changed bool
}

func canonicalType(t string) (string, error) {
	t = strings.ToLower(strings.TrimSpace(t))
	if alias, ok := typeAliases[t]; ok {
		return alias, nil
	}
	switch t {
	case entity.LessonTypeText, entity.LessonTypeVideo, entity.LessonTypeQuiz, entity.LessonTypeFile:
		return t, nil
	}
	return "", fmt.Errorf("unknown lesson type %q", t)
}

// Transform converts a stored lesson into the typed payload schema.
// Rows that already validate under their current type come back with Changed=false.
func Transform(lessonType string, content []byte, policy *bluemonday.Policy) (*Result, error) {
	newType, err := canonicalType(lessonType)
	if err != nil {
		return nil, err
	}

	if newType == lessonType {
		if _, err := lessonService.NormalizeContent(newType, content, policy); err == nil {
			return &Result{Type: lessonType, Content: datatypes.JSON(content), Changed: false}, nil
		}
	}

	payload, err := unwrap(newType, content, 0)
	if err != nil {
		return nil, err
	}

	normalized, err := lessonService.NormalizeContent(newType, payload, policy)
	if err != nil {
		return nil, err
	}
	return &Result{Type: newType, Content: normalized, Changed: true}, nil
}

func unwrap(lessonType string, raw []byte, depth int) ([]byte, error) {
	if depth > maxUnwrapDepth {
		return nil, errors.New("content nested too deeply")
	}

	trimmed := bytes.TrimSpace(raw)
	if len(trimmed) == 0 || bytes.Equal(trimmed, []byte("null")) {
		return nil, errors.New("content is empty")
	}

	// plain text that never went through a JSON encoder
	if !json.Valid(trimmed) {
		return fromString(lessonType, string(trimmed), depth)
	}

	switch trimmed[0] {
	case '"':
		var s string
		if err := json.Unmarshal(trimmed, &s); err != nil {
			return nil, err
		}
		return fromString(lessonType, s, depth)

	case '{':
		var fields map[string]json.RawMessage
		if err := json.Unmarshal(trimmed, &fields); err != nil {
			return nil, err
		}
		if inner, ok := fields["content"]; ok {
			return unwrap(lessonType, inner, depth+1)
		}
		return trimmed, nil
	}

	return nil, fmt.Errorf("unsupported content shape %q", string(trimmed[:1]))
}

func fromString(lessonType, s string, depth int) ([]byte, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil, errors.New("content is empty")
	}

	switch lessonType {
	case entity.LessonTypeText:
		return json.Marshal(entity.TextContent{Body: s})
	case entity.LessonTypeVideo:
		return json.Marshal(entity.VideoContent{URL: s})
	case entity.LessonTypeFile:
		return json.Marshal(entity.FileContent{FileURL: s, FileName: path.Base(s)})
	case entity.LessonTypeQuiz:
		// a quiz stored as an encoded JSON document
		if json.Valid([]byte(s)) && strings.HasPrefix(s, "{") {
			return unwrap(lessonType, []byte(s), depth+1)
		}
		return nil, errors.New("quiz content cannot be plain text")
	}
	return nil, fmt.Errorf("unknown lesson type %q", lessonType)
}
