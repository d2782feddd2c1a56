package generator

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseQuestions(t *testing.T) {
	raw := "```json\n" + `[
		{"prompt":"What is a goroutine?","options":["thread","lightweight thread","process"],"answer_indexes":[1]},
		{"prompt":"","options":["a","b"],"answer_indexes":[0]},
		{"prompt":"Out of range","options":["a","b"],"answer_indexes":[5]},
		{"prompt":"Channels are","options":["typed","untyped"],"answer_indexes":[0]}
	]` + "\n```"

	questions, err := ParseQuestions(raw)
	require.NoError(t, err)
	require.Len(t, questions, 2)
	assert.Equal(t, "q1", questions[0].ID)
	assert.Equal(t, "q2", questions[1].ID)
	assert.Equal(t, "Channels are", questions[1].Prompt)
}

func TestParseQuestionsWrapped(t *testing.T) {
	questions, err := ParseQuestions(`{"questions":[{"prompt":"p","options":["a","b"],"answer_indexes":[0,1]}]}`)
	require.NoError(t, err)
	assert.Len(t, questions, 1)

	_, err = ParseQuestions(`[]`)
	assert.Error(t, err)

	_, err = ParseQuestions(`not json`)
	assert.Error(t, err)
}

func TestBuildPrompt(t *testing.T) {
	prompt := BuildPrompt("Generics", "Type parameters...", 4)
	assert.Contains(t, prompt, `"Generics"`)
	assert.Contains(t, prompt, "exactly 4 questions")
	assert.Contains(t, prompt, "Type parameters...")
}
