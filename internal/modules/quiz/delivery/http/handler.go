package handler

import (
	"net/http"

	"anoa.com/learnhub/internal/modules/quiz/dto"
	quizService "anoa.com/learnhub/internal/modules/quiz/service"
	"anoa.com/learnhub/pkg/response"
	"github.com/gin-gonic/gin"
)

type QuizHandler struct {
	quizService quizService.QuizService
}

func NewQuizHandler(quizService quizService.QuizService) *QuizHandler {
	return &QuizHandler{quizService: quizService}
}

func (h *QuizHandler) Submit(c *gin.Context) {
	actor, err := response.GetActor(c)
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	lessonID, ok := response.ParamUUID(c, "id")
	if !ok {
		return
	}

	var input dto.SubmitAttemptInput
	if err := c.ShouldBindJSON(&input); err != nil {
		response.ResponseError(c, err)
		return
	}

	res, err := h.quizService.Submit(c.Request.Context(), actor, lessonID, input.Answers)
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	c.JSON(http.StatusCreated, res)
}

func (h *QuizHandler) ListAttempts(c *gin.Context) {
	actor, err := response.GetActor(c)
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	lessonID, ok := response.ParamUUID(c, "id")
	if !ok {
		return
	}

	attempts, err := h.quizService.ListAttempts(c.Request.Context(), actor, lessonID)
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": attempts})
}

func (h *QuizHandler) Generate(c *gin.Context) {
	actor, err := response.GetActor(c)
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	lessonID, ok := response.ParamUUID(c, "id")
	if !ok {
		return
	}

	var input dto.GenerateQuizInput
	if c.Request.ContentLength > 0 {
		if err := c.ShouldBindJSON(&input); err != nil {
			response.ResponseError(c, err)
			return
		}
	}

	draft, err := h.quizService.Generate(c.Request.Context(), actor, lessonID, input)
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"draft": draft})
}
