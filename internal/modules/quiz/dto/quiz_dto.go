package dto

import (
	"anoa.com/learnhub/internal/entity"
	enrollmentDto "anoa.com/learnhub/internal/modules/enrollment/dto"
)

// SubmitAttemptInput holds one slice of selected option indexes per question, in question order.
type SubmitAttemptInput struct {
	Answers [][]int `json:"answers" binding:"required"`
}

type AttemptResult struct {
	Attempt  *entity.QuizAttempt             `json:"attempt"`
	Progress *enrollmentDto.ProgressResponse `json:"progress,omitempty"`
}

type GenerateQuizInput struct {
	Questions    int `json:"questions" binding:"omitempty,min=1,max=20"`
	PassingScore int `json:"passing_score" binding:"omitempty,min=1,max=100"`
}
