package handler

import (
	"net/http"

	"ajebo-payments/internal/commons/response"
	"ajebo-payments/internal/params"
	"ajebo-payments/internal/usecase"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

type RuleHandler interface {
	Create(c *gin.Context)
	List(c *gin.Context)
	SetActive(c *gin.Context)
	Run(c *gin.Context)
}

type RuleHandlerImpl struct {
	usecase   usecase.RuleUsecase
	logger    *logrus.Logger
	validator *validator.Validate
}

func NewRuleHandler(usecase usecase.RuleUsecase, logger *logrus.Logger, validator *validator.Validate) RuleHandler {
	return &RuleHandlerImpl{
		usecase:   usecase,
		logger:    logger,
		validator: validator,
	}
}

func (h *RuleHandlerImpl) Create(c *gin.Context) {
	var req params.CreateRuleRequest

	if err := c.ShouldBindJSON(&req); err != nil {
		h.logger.WithError(err).Error("Invalid rule payload")
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

	rule, custErr := h.usecase.CreateRule(c.Request.Context(), &req, operatorLabel(c))
	if custErr != nil {
		c.AbortWithStatusJSON(custErr.StatusCode, custErr)
		return
	}

	resp := response.CreatedSuccessWithPayload(rule)
	c.JSON(resp.StatusCode, resp)
}

func (h *RuleHandlerImpl) List(c *gin.Context) {
	userID := c.Query("userId")

	rules, custErr := h.usecase.ListRules(c.Request.Context(), userID)
	if custErr != nil {
		c.AbortWithStatusJSON(custErr.StatusCode, custErr)
		return
	}

	resp := response.GeneralSuccessCustomMessageAndPayload("Rules retrieved successfully", rules)
	c.JSON(resp.StatusCode, resp)
}

func (h *RuleHandlerImpl) SetActive(c *gin.Context) {
	ruleID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"status":  false,
			"message": "Invalid rule ID",
		})
		return
	}

	var req params.SetRuleActiveRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"status":  false,
			"message": "Invalid request payload",
		})
		return
	}

	if err := h.validator.Struct(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"status":  false,
			"message": "Validation failed",
		})
		return
	}

	rule, custErr := h.usecase.SetRuleActive(c.Request.Context(), ruleID, *req.Active)
	if custErr != nil {
		c.AbortWithStatusJSON(custErr.StatusCode, custErr)
		return
	}

	resp := response.GeneralSuccessCustomMessageAndPayload("Rule updated successfully", rule)
	c.JSON(resp.StatusCode, resp)
}

func (h *RuleHandlerImpl) Run(c *gin.Context) {
	report, custErr := h.usecase.RunDueRules(c.Request.Context())
	if custErr != nil {
		c.AbortWithStatusJSON(custErr.StatusCode, custErr)
		return
	}

	resp := response.GeneralSuccessCustomMessageAndPayload("Scheduler pass completed", report)
	c.JSON(resp.StatusCode, resp)
}
