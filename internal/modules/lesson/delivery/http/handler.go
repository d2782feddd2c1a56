package handler

import (
	"net/http"

	"anoa.com/learnhub/internal/modules/lesson/dto"
	lessonService "anoa.com/learnhub/internal/modules/lesson/service"
	"anoa.com/learnhub/pkg/response"
	"github.com/gin-gonic/gin"
)

type LessonHandler struct {
	lessonService lessonService.LessonService
}

func NewLessonHandler(lessonService lessonService.LessonService) *LessonHandler {
	return &LessonHandler{lessonService: lessonService}
}

func (h *LessonHandler) Create(c *gin.Context) {
	actor, err := response.GetActor(c)
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	courseID, ok := response.ParamUUID(c, "id")
	if !ok {
		return
	}

	var input dto.CreateLessonInput
	if err := c.ShouldBindJSON(&input); err != nil {
		response.ResponseError(c, err)
		return
	}

	lesson, err := h.lessonService.Create(c.Request.Context(), actor, courseID, input)
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	c.JSON(http.StatusCreated, lesson)
}

func (h *LessonHandler) ListByCourse(c *gin.Context) {
	actor, _ := response.GetActor(c)

	courseID, ok := response.ParamUUID(c, "id")
	if !ok {
		return
	}

	lessons, err := h.lessonService.ListByCourse(c.Request.Context(), actor, courseID)
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": lessons})
}

func (h *LessonHandler) Get(c *gin.Context) {
	actor, _ := response.GetActor(c)

	id, ok := response.ParamUUID(c, "id")
	if !ok {
		return
	}

	lesson, err := h.lessonService.Get(c.Request.Context(), actor, id)
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	c.JSON(http.StatusOK, lesson)
}

func (h *LessonHandler) Update(c *gin.Context) {
	actor, err := response.GetActor(c)
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	id, ok := response.ParamUUID(c, "id")
	if !ok {
		return
	}

	var input dto.UpdateLessonInput
	if err := c.ShouldBindJSON(&input); err != nil {
		response.ResponseError(c, err)
		return
	}

	lesson, err := h.lessonService.Update(c.Request.Context(), actor, id, input)
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	c.JSON(http.StatusOK, lesson)
}

func (h *LessonHandler) Delete(c *gin.Context) {
	actor, err := response.GetActor(c)
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	id, ok := response.ParamUUID(c, "id")
	if !ok {
		return
	}

	if err := h.lessonService.Delete(c.Request.Context(), actor, id); err != nil {
		response.ResponseError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "lesson deleted successfully"})
}

func (h *LessonHandler) Reorder(c *gin.Context) {
	actor, err := response.GetActor(c)
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	courseID, ok := response.ParamUUID(c, "id")
	if !ok {
		return
	}

	var input dto.ReorderInput
	if err := c.ShouldBindJSON(&input); err != nil {
		response.ResponseError(c, err)
		return
	}

	lessons, err := h.lessonService.Reorder(c.Request.Context(), actor, courseID, input.LessonIDs)
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": lessons})
}
