package handler

import (
	"net/http"

	"anoa.com/learnhub/internal/modules/discussion/dto"
	discussionService "anoa.com/learnhub/internal/modules/discussion/service"
	"anoa.com/learnhub/pkg/response"
	"github.com/gin-gonic/gin"
)

type DiscussionHandler struct {
	discussionService discussionService.DiscussionService
}

func NewDiscussionHandler(discussionService discussionService.DiscussionService) *DiscussionHandler {
	return &DiscussionHandler{discussionService: discussionService}
}

func (h *DiscussionHandler) CreateThread(c *gin.Context) {
	actor, err := response.GetActor(c)
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	courseID, ok := response.ParamUUID(c, "id")
	if !ok {
		return
	}

	var input dto.CreateThreadInput
	if err := c.ShouldBindJSON(&input); err != nil {
		response.ResponseError(c, err)
		return
	}

	thread, err := h.discussionService.CreateThread(c.Request.Context(), actor, courseID, input)
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	c.JSON(http.StatusCreated, thread)
}

func (h *DiscussionHandler) ListThreads(c *gin.Context) {
	actor, err := response.GetActor(c)
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	courseID, ok := response.ParamUUID(c, "id")
	if !ok {
		return
	}

	var query dto.ThreadQuery
	if err := c.ShouldBindQuery(&query); err != nil {
		response.ResponseError(c, err)
		return
	}

	res, err := h.discussionService.ListThreads(c.Request.Context(), actor, courseID, query)
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	c.JSON(http.StatusOK, res)
}

func (h *DiscussionHandler) GetThread(c *gin.Context) {
	actor, err := response.GetActor(c)
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	id, ok := response.ParamUUID(c, "id")
	if !ok {
		return
	}

	thread, err := h.discussionService.GetThread(c.Request.Context(), actor, id)
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	c.JSON(http.StatusOK, thread)
}

func (h *DiscussionHandler) Reply(c *gin.Context) {
	actor, err := response.GetActor(c)
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	threadID, ok := response.ParamUUID(c, "id")
	if !ok {
		return
	}

	var input dto.CreateReplyInput
	if err := c.ShouldBindJSON(&input); err != nil {
		response.ResponseError(c, err)
		return
	}

	reply, err := h.discussionService.Reply(c.Request.Context(), actor, threadID, input)
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	c.JSON(http.StatusCreated, reply)
}

func (h *DiscussionHandler) DeleteThread(c *gin.Context) {
	actor, err := response.GetActor(c)
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	id, ok := response.ParamUUID(c, "id")
	if !ok {
		return
	}

	if err := h.discussionService.DeleteThread(c.Request.Context(), actor, id); err != nil {
		response.ResponseError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "thread deleted"})
}

func (h *DiscussionHandler) DeleteReply(c *gin.Context) {
	actor, err := response.GetActor(c)
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	id, ok := response.ParamUUID(c, "id")
	if !ok {
		return
	}

	if err := h.discussionService.DeleteReply(c.Request.Context(), actor, id); err != nil {
		response.ResponseError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "reply deleted"})
}

func (h *DiscussionHandler) TogglePin(c *gin.Context) {
	actor, err := response.GetActor(c)
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	id, ok := response.ParamUUID(c, "id")
	if !ok {
		return
	}

	res, err := h.discussionService.TogglePin(c.Request.Context(), actor, id)
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	c.JSON(http.StatusOK, res)
}
