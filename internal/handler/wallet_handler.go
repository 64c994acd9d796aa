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
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

type WalletHandler interface {
	Search(c *gin.Context)
	GetBalance(c *gin.Context)
	GetLedger(c *gin.Context)
	Adjust(c *gin.Context)
}

type WalletHandlerImpl struct {
	usecase   usecase.LedgerUsecase
	logger    *logrus.Logger
	validator *validator.Validate
}

func NewWalletHandler(usecase usecase.LedgerUsecase, logger *logrus.Logger, validator *validator.Validate) WalletHandler {
	return &WalletHandlerImpl{
		usecase:   usecase,
		logger:    logger,
		validator: validator,
	}
}

func (h *WalletHandlerImpl) Search(c *gin.Context) {
	query := c.Query("q")

	wallets, custErr := h.usecase.SearchWallets(c.Request.Context(), query)
	if custErr != nil {
		c.AbortWithStatusJSON(custErr.StatusCode, custErr)
		return
	}

	resp := response.GeneralSuccessCustomMessageAndPayload("Wallets retrieved successfully", wallets)
	c.JSON(resp.StatusCode, resp)
}

func (h *WalletHandlerImpl) GetBalance(c *gin.Context) {
	userID := c.Param("userId")

	wallet, custErr := h.usecase.GetBalance(c.Request.Context(), userID)
	if custErr != nil {
		c.AbortWithStatusJSON(custErr.StatusCode, custErr)
		return
	}

	resp := response.GeneralSuccessCustomMessageAndPayload("Balance retrieved successfully", wallet)
	c.JSON(resp.StatusCode, resp)
}

func (h *WalletHandlerImpl) GetLedger(c *gin.Context) {
	userID := c.Param("userId")

	limit, err := strconv.Atoi(c.DefaultQuery("limit", "20"))
	if err != nil || limit <= 0 {
		limit = 20
	}
	if limit > 200 {
		limit = 200
	}

	history, custErr := h.usecase.ListLedger(c.Request.Context(), userID, limit)
	if custErr != nil {
		c.AbortWithStatusJSON(custErr.StatusCode, custErr)
		return
	}

	resp := response.GeneralSuccessCustomMessageAndPayload("Ledger retrieved successfully", history)
	c.JSON(resp.StatusCode, resp)
}

// Adjust applies a manual credit or debit entered by an operator. The
// reference is minted here so every adjustment is its own ledger entry.
func (h *WalletHandlerImpl) Adjust(c *gin.Context) {
	var req params.AdjustmentRequest

	if err := c.ShouldBindJSON(&req); err != nil {
		h.logger.WithError(err).Error("Invalid adjustment payload")
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

	reference := "adj_" + newReference()
	createdBy := operatorLabel(c)

	var wallet *params.WalletResponse
	var custErr *response.CustomError

	if req.Type == string(entity.LedgerEntryTypeDebit) {
		wallet, custErr = h.usecase.Debit(c.Request.Context(), &params.DebitRequest{
			UserID:      req.UserID,
			Amount:      req.Amount,
			Reference:   reference,
			Source:      entity.LedgerSourceAdmin,
			Description: req.Description,
			CreatedBy:   createdBy,
		})
	} else {
		wallet, custErr = h.usecase.Credit(c.Request.Context(), &params.CreditRequest{
			UserID:      req.UserID,
			Email:       req.Email,
			Name:        req.Name,
			Amount:      req.Amount,
			Reference:   reference,
			Source:      entity.LedgerSourceAdmin,
			Description: req.Description,
			CreatedBy:   createdBy,
		})
	}

	if custErr != nil {
		c.AbortWithStatusJSON(custErr.StatusCode, custErr)
		return
	}

	resp := response.GeneralSuccessCustomMessageAndPayload("Adjustment applied successfully", wallet)
	c.JSON(resp.StatusCode, resp)
}

func newReference() string {
	return uuid.NewString()
}

// operatorLabel resolves the acting operator from the auth middleware for
// the ledger's created_by field.
func operatorLabel(c *gin.Context) string {
	if operatorID, exists := c.Get("operator_id"); exists {
		if id, ok := operatorID.(uuid.UUID); ok {
			return "admin:" + id.String()
		}
	}
	return "admin"
}
