package handler

import (
	"net/http"
	"strconv"

	"ajebo-payments/internal/commons/response"
	"ajebo-payments/internal/entity"
	"ajebo-payments/internal/params"
	"ajebo-payments/internal/usecase"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	"github.com/sirupsen/logrus"
)

type PaymentHandler interface {
	Initiate(c *gin.Context)
	Verify(c *gin.Context)
	PaystackWebhook(c *gin.Context)
	MonnifyWebhook(c *gin.Context)
	ListTransactions(c *gin.Context)
}

type PaymentHandlerImpl struct {
	usecase   usecase.PaymentUsecase
	logger    *logrus.Logger
	validator *validator.Validate
}

func NewPaymentHandler(usecase usecase.PaymentUsecase, logger *logrus.Logger, validator *validator.Validate) PaymentHandler {
	return &PaymentHandlerImpl{
		usecase:   usecase,
		logger:    logger,
		validator: validator,
	}
}

func (h *PaymentHandlerImpl) Initiate(c *gin.Context) {
	var req params.InitiatePaymentRequest

	if err := c.ShouldBindJSON(&req); err != nil {
		h.logger.WithError(err).Error("Invalid payment initiation payload")
		c.JSON(http.StatusBadRequest, gin.H{
			"status":  false,
			"message": "Invalid request payload",
		})
		return
	}

	if err := h.validator.Struct(&req); err != nil {
		details := make(map[string]string)
		for _, err := range err.(validator.ValidationErrors) {
			details[err.Field()] = getValidationErrorMessage(err)
		}

		c.JSON(http.StatusBadRequest, gin.H{
			"status":  false,
			"message": "Validation failed",
			"errors":  details,
		})
		return
	}

	initResp, custErr := h.usecase.InitiatePayment(c.Request.Context(), &req)
	if custErr != nil {
		c.AbortWithStatusJSON(custErr.StatusCode, custErr)
		return
	}

	resp := response.CreatedSuccessWithPayload(initResp)
	c.JSON(resp.StatusCode, resp)
}

func (h *PaymentHandlerImpl) Verify(c *gin.Context) {
	gatewayName := c.Param("gateway")
	reference := c.Param("reference")

	statusResp, custErr := h.usecase.VerifyPayment(c.Request.Context(), gatewayName, reference)
	if custErr != nil {
		c.AbortWithStatusJSON(custErr.StatusCode, custErr)
		return
	}

	resp := response.GeneralSuccessCustomMessageAndPayload("Payment verified", statusResp)
	c.JSON(resp.StatusCode, resp)
}

func (h *PaymentHandlerImpl) PaystackWebhook(c *gin.Context) {
	h.handleWebhook(c, "paystack", c.GetHeader("x-paystack-signature"))
}

func (h *PaymentHandlerImpl) MonnifyWebhook(c *gin.Context) {
	h.handleWebhook(c, "monnify", c.GetHeader("monnify-signature"))
}

// handleWebhook reads the raw body before any parsing so the signature is
// computed over the exact bytes the gateway sent.
func (h *PaymentHandlerImpl) handleWebhook(c *gin.Context, gatewayName, signature string) {
	rawBody, err := c.GetRawData()
	if err != nil {
		h.logger.WithError(err).WithField("gateway", gatewayName).Error("Failed to read webhook body")
		c.JSON(http.StatusBadRequest, gin.H{
			"status":  false,
			"message": "Unreadable request body",
		})
		return
	}

	ack, custErr := h.usecase.HandleWebhook(c.Request.Context(), gatewayName, rawBody, signature)
	if custErr != nil {
		c.AbortWithStatusJSON(custErr.StatusCode, custErr)
		return
	}

	// Always 200 once processed, including signature rejections, so the
	// gateway does not keep retrying.
	c.JSON(http.StatusOK, ack)
}

func (h *PaymentHandlerImpl) ListTransactions(c *gin.Context) {
	limit, err := strconv.Atoi(c.DefaultQuery("limit", "50"))
	if err != nil || limit <= 0 {
		limit = 50
	}
	if limit > 500 {
		limit = 500
	}

	status := entity.PaymentStatus(c.Query("status"))

	listResp, custErr := h.usecase.ListTransactions(c.Request.Context(), limit, status)
	if custErr != nil {
		c.AbortWithStatusJSON(custErr.StatusCode, custErr)
		return
	}

	resp := response.GeneralSuccessCustomMessageAndPayload("Transactions retrieved successfully", listResp)
	c.JSON(resp.StatusCode, resp)
}
