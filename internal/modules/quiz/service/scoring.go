package service

import (
	"fmt"
	"sort"

	"anoa.com/learnhub/internal/entity"
	"anoa.com/learnhub/pkg/apperror"
)

// Grade is the outcome of scoring one submission.
type Grade struct {
	Score      int
	MaxScore   int
	Percentage int
	Passed     bool
}

// Score awards a point for every question whose selected set equals its answer set.
// Order and duplicates inside a selection do not matter.
func Score(quiz *entity.QuizContent, answers [][]int) (Grade, error) {
	if len(answers) != len(quiz.Questions) {
		return Grade{}, fmt.Errorf("expected %d answers, got %d: %w", len(quiz.Questions), len(answers), apperror.ErrInvalidInput)
	}

	grade := Grade{MaxScore: len(quiz.Questions)}
	for i, q := range quiz.Questions {
		for _, idx := range answers[i] {
			if idx < 0 || idx >= len(q.Options) {
				return Grade{}, fmt.Errorf("answer %d for question %s is out of range: %w", idx, q.ID, apperror.ErrInvalidInput)
			}
		}
		if sameSet(answers[i], q.AnswerIndexes) {
			grade.Score++
		}
	}

	if grade.MaxScore > 0 {
		grade.Percentage = grade.Score * 100 / grade.MaxScore
	}
	grade.Passed = grade.Percentage >= quiz.PassingScore
	return grade, nil
}

func uniqueSorted(values []int) []int {
	out := make([]int, 0, len(values))
	seen := make(map[int]struct{}, len(values))
	for _, v := range values {
		if _, ok := seen[v]; ok {
			continue
		}
		seen[v] = struct{}{}
		out = append(out, v)
	}
	sort.Ints(out)
	return out
}

func sameSet(a, b []int) bool {
	x, y := uniqueSorted(a), uniqueSorted(b)
	if len(x) != len(y) {
		return false
	}
	for i := range x {
		if x[i] != y[i] {
			return false
		}
	}
	return true
}
