package generator

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"anoa.com/learnhub/internal/entity"
	"github.com/google/generative-ai-go/genai"
	"google.golang.org/api/option"
)

// QuizGenerator drafts quiz questions from lesson text.
type QuizGenerator interface {
	Generate(ctx context.Context, title, material string, questions int) ([]entity.QuizQuestion, error)
	Close()
}

// GeminiGenerator asks Gemini for JSON output matching entity.QuizQuestion.
type GeminiGenerator struct {
	client *genai.Client
	model  *genai.GenerativeModel
}

func NewGeminiGenerator(ctx context.Context, apiKey, modelName string) (*GeminiGenerator, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("GEMINI_API_KEY is not set")
	}

	client, err := genai.NewClient(ctx, option.WithAPIKey(apiKey))
	if err != nil {
		return nil, err
	}

	if modelName == "" {
		modelName = "gemini-2.5-flash"
	}

	model := client.GenerativeModel(modelName)
	model.SetTemperature(0.4)
	model.ResponseMIMEType = "application/json"

	return &GeminiGenerator{
		client: client,
		model:  model,
	}, nil
}

func (g *GeminiGenerator) Generate(ctx context.Context, title, material string, questions int) ([]entity.QuizQuestion, error) {
	resp, err := g.model.GenerateContent(ctx, genai.Text(BuildPrompt(title, material, questions)))
	if err != nil {
		return nil, err
	}

	if len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil {
		return nil, fmt.Errorf("no response from LLM")
	}

	for _, part := range resp.Candidates[0].Content.Parts {
		if txt, ok := part.(genai.Text); ok {
			return ParseQuestions(string(txt))
		}
	}

	return nil, fmt.Errorf("no text content in response")
}

func (g *GeminiGenerator) Close() {
	g.client.Close()
}

// BuildPrompt renders the instruction sent to the model.
func BuildPrompt(title, material string, questions int) string {
	var b strings.Builder
	fmt.Fprintf(&b, "You write multiple choice quizzes for an online course lesson titled %q.\n", title)
	fmt.Fprintf(&b, "Write exactly %d questions that test understanding of the material below.\n", questions)
	b.WriteString("Each question has 3 to 5 options and one or more correct options.\n")
	b.WriteString(`Respond with a JSON array only, each item shaped as {"prompt": string, "options": [string], "answer_indexes": [int]} with zero-based indexes.`)
	b.WriteString("\n\nMaterial:\n")
	b.WriteString(material)
	return b.String()
}

// ParseQuestions accepts either a bare array or an object with a "questions" array,
// drops items that cannot be answered, and assigns sequential ids.
func ParseQuestions(raw string) ([]entity.QuizQuestion, error) {
	raw = strings.TrimSpace(raw)
	raw = strings.TrimPrefix(raw, "```json")
	raw = strings.TrimPrefix(raw, "```")
	raw = strings.TrimSuffix(raw, "```")
	raw = strings.TrimSpace(raw)

	var items []entity.QuizQuestion
	if strings.HasPrefix(raw, "{") {
		var wrapped struct {
			Questions []entity.QuizQuestion `json:"questions"`
		}
		if err := json.Unmarshal([]byte(raw), &wrapped); err != nil {
			return nil, fmt.Errorf("failed to parse JSON: %w", err)
		}
		items = wrapped.Questions
	} else if err := json.Unmarshal([]byte(raw), &items); err != nil {
		return nil, fmt.Errorf("failed to parse JSON: %w", err)
	}

	out := make([]entity.QuizQuestion, 0, len(items))
	for _, q := range items {
		if strings.TrimSpace(q.Prompt) == "" || len(q.Options) < 2 || len(q.AnswerIndexes) == 0 {
			continue
		}
		valid := true
		for _, idx := range q.AnswerIndexes {
			if idx < 0 || idx >= len(q.Options) {
				valid = false
				break
			}
		}
		if !valid {
			continue
		}
		q.ID = fmt.Sprintf("q%d", len(out)+1)
		out = append(out, q)
	}

	if len(out) == 0 {
		return nil, fmt.Errorf("model returned no usable questions")
	}
	return out, nil
}
