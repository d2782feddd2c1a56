package lessonmigrate_test

import (
	"encoding/json"
	"testing"

	"anoa.com/learnhub/internal/entity"
	"anoa.com/learnhub/internal/maintenance/lessonmigrate"
	"github.com/microcosm-cc/bluemonday"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTransformLegacyPayloads(t *testing.T) {
	policy := bluemonday.UGCPolicy()

	tests := []struct {
		name     string
		typ      string
		content  string
		wantType string
		wantJSON string
	}{
		{
			name:     "article string becomes text body",
			typ:      "article",
			content:  `"<p>Intro</p>"`,
			wantType: entity.LessonTypeText,
			wantJSON: `{"body":"<p>Intro</p>"}`,
		},
		{
			name:     "wrapped text",
			typ:      "text",
			content:  `{"content":"Hello"}`,
			wantType: entity.LessonTypeText,
			wantJSON: `{"body":"Hello"}`,
		},
		{
			name:     "unencoded plain text",
			typ:      "article",
			content:  `Just words`,
			wantType: entity.LessonTypeText,
			wantJSON: `{"body":"Just words"}`,
		},
		{
			name:     "video url string",
			typ:      "video",
			content:  `"https://youtu.be/abc"`,
			wantType: entity.LessonTypeVideo,
			wantJSON: `{"url":"https://youtu.be/abc"}`,
		},
		{
			name:     "wrapped document",
			typ:      "document",
			content:  `{"content":"/uploads/notes.pdf"}`,
			wantType: entity.LessonTypeFile,
			wantJSON: `{"file_url":"/uploads/notes.pdf","file_name":"notes.pdf"}`,
		},
		{
			name:     "wrapped mcq",
			typ:      "mcq",
			content:  `{"content":{"passing_score":50,"questions":[{"prompt":"2+2","options":["3","4"],"answer_indexes":[1]}]}}`,
			wantType: entity.LessonTypeQuiz,
			wantJSON: `{"passing_score":50,"questions":[{"id":"q1","prompt":"2+2","options":["3","4"],"answer_indexes":[1]}]}`,
		},
		{
			name:     "quiz encoded as string",
			typ:      "quiz",
			content:  `"{\"passing_score\":0,\"questions\":[{\"id\":\"a\",\"prompt\":\"?\",\"options\":[\"x\",\"y\"],\"answer_indexes\":[0]}]}"`,
			wantType: entity.LessonTypeQuiz,
			wantJSON: `{"passing_score":0,"questions":[{"id":"a","prompt":"?","options":["x","y"],"answer_indexes":[0]}]}`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res, err := lessonmigrate.Transform(tt.typ, []byte(tt.content), policy)
			require.NoError(t, err)
			assert.True(t, res.Changed)
			assert.Equal(t, tt.wantType, res.Type)
			assert.JSONEq(t, tt.wantJSON, string(res.Content))
		})
	}
}

func TestTransformSkipsCanonicalRows(t *testing.T) {
	content := []byte(`{"body":"<p>Already fine</p>"}`)

	res, err := lessonmigrate.Transform("text", content, bluemonday.UGCPolicy())
	require.NoError(t, err)

	assert.False(t, res.Changed)
	assert.Equal(t, "text", res.Type)
	assert.Equal(t, string(content), string(res.Content))
}

func TestTransformUppercaseTypeIsRewritten(t *testing.T) {
	res, err := lessonmigrate.Transform("Text", []byte(`{"body":"hi"}`), bluemonday.UGCPolicy())
	require.NoError(t, err)

	assert.True(t, res.Changed)
	assert.Equal(t, entity.LessonTypeText, res.Type)
}

func TestTransformRejects(t *testing.T) {
	tests := []struct {
		name    string
		typ     string
		content string
	}{
		{"unknown type", "podcast", `"x"`},
		{"quiz as plain text", "mcq", `"what is 2+2"`},
		{"number payload", "text", `123`},
		{"empty payload", "article", `""`},
		{"null payload", "text", `null`},
		{"bad video url", "video", `"not a url"`},
		{"nested too deep", "text", `{"content":{"content":{"content":{"content":{"content":"x"}}}}}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := lessonmigrate.Transform(tt.typ, []byte(tt.content), bluemonday.UGCPolicy())
			assert.Error(t, err)
		})
	}
}

func TestTransformOutputIsValidJSON(t *testing.T) {
	res, err := lessonmigrate.Transform("article", []byte(`"<script>x</script><b>bold</b>"`), bluemonday.UGCPolicy())
	require.NoError(t, err)

	var body entity.TextContent
	require.NoError(t, json.Unmarshal(res.Content, &body))
	assert.Equal(t, "<b>bold</b>", body.Body)
}
