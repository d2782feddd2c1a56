package handler

import (
	"net/http"

	paymentService "anoa.com/learnhub/internal/modules/payment/service"
	"anoa.com/learnhub/pkg/response"
	"github.com/gin-gonic/gin"
)

const signatureHeader = "X-Signature"

type PaymentHandler struct {
	paymentService paymentService.PaymentService
}

func NewPaymentHandler(paymentService paymentService.PaymentService) *PaymentHandler {
	return &PaymentHandler{paymentService: paymentService}
}

func (h *PaymentHandler) CreateIntent(c *gin.Context) {
	actor, err := response.GetActor(c)
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	courseID, ok := response.ParamUUID(c, "id")
	if !ok {
		return
	}

	intent, err := h.paymentService.CreateIntent(c.Request.Context(), actor, courseID)
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	c.JSON(http.StatusCreated, intent)
}

// Webhook verifies the signature over the raw body before decoding it.
func (h *PaymentHandler) Webhook(c *gin.Context) {
	body, err := c.GetRawData()
	if err != nil {
		response.BadRequest(c, "failed to read body")
		return
	}

	res, err := h.paymentService.HandleWebhook(c.Request.Context(), body, c.GetHeader(signatureHeader))
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	c.JSON(http.StatusOK, res)
}

func (h *PaymentHandler) ListMine(c *gin.Context) {
	actor, err := response.GetActor(c)
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	intents, err := h.paymentService.ListMine(c.Request.Context(), actor)
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": intents})
}
