package handler

import (
	"net/http"

	"anoa.com/learnhub/internal/modules/certificate/dto"
	certificateService "anoa.com/learnhub/internal/modules/certificate/service"
	"anoa.com/learnhub/pkg/response"
	"github.com/gin-gonic/gin"
)

type CertificateHandler struct {
	certificateService certificateService.CertificateService
}

func NewCertificateHandler(certificateService certificateService.CertificateService) *CertificateHandler {
	return &CertificateHandler{certificateService: certificateService}
}

func (h *CertificateHandler) Request(c *gin.Context) {
	actor, err := response.GetActor(c)
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	courseID, ok := response.ParamUUID(c, "id")
	if !ok {
		return
	}

	certificate, err := h.certificateService.Request(c.Request.Context(), actor, courseID)
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	c.JSON(http.StatusCreated, certificate)
}

func (h *CertificateHandler) ListMine(c *gin.Context) {
	actor, err := response.GetActor(c)
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	certificates, err := h.certificateService.ListMine(c.Request.Context(), actor)
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": certificates})
}

func (h *CertificateHandler) ListForReview(c *gin.Context) {
	actor, err := response.GetActor(c)
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	var query dto.ReviewQuery
	if err := c.ShouldBindQuery(&query); err != nil {
		response.ResponseError(c, err)
		return
	}

	res, err := h.certificateService.ListForReview(c.Request.Context(), actor, query)
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	c.JSON(http.StatusOK, res)
}

func (h *CertificateHandler) Approve(c *gin.Context) {
	actor, err := response.GetActor(c)
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	id, ok := response.ParamUUID(c, "id")
	if !ok {
		return
	}

	certificate, err := h.certificateService.Approve(c.Request.Context(), actor, id)
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	c.JSON(http.StatusOK, certificate)
}

func (h *CertificateHandler) Reject(c *gin.Context) {
	actor, err := response.GetActor(c)
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	id, ok := response.ParamUUID(c, "id")
	if !ok {
		return
	}

	var input dto.RejectInput
	if err := c.ShouldBindJSON(&input); err != nil {
		response.ResponseError(c, err)
		return
	}

	certificate, err := h.certificateService.Reject(c.Request.Context(), actor, id, input.Reason)
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	c.JSON(http.StatusOK, certificate)
}

func (h *CertificateHandler) Verify(c *gin.Context) {
	res, err := h.certificateService.Verify(c.Request.Context(), c.Param("number"))
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	c.JSON(http.StatusOK, res)
}
