package params

import (
	"ajebo-payments/internal/entity"
	"time"

	"github.com/google/uuid"
)

type InitiatePaymentResponse struct {
	Reference        string `json:"reference"`
	Gateway          string `json:"gateway"`
	PaymentURL       string `json:"payment_url"`
	GatewayReference string `json:"gateway_reference,omitempty"`
	Amount           int64  `json:"amount"`
}

type PaymentStatusResponse struct {
	Reference        string               `json:"reference"`
	Gateway          string               `json:"gateway"`
	Status           entity.PaymentStatus `json:"status"`
	Amount           int64                `json:"amount"`
	GatewayReference string               `json:"gateway_reference,omitempty"`
	WalletCredited   bool                 `json:"wallet_credited"`
}

type TransactionResponse struct {
	ID               uuid.UUID            `json:"id"`
	Reference        string               `json:"reference"`
	Gateway          string               `json:"gateway"`
	Category         string               `json:"category,omitempty"`
	Amount           int64                `json:"amount"`
	Status           entity.PaymentStatus `json:"status"`
	Email            string               `json:"email"`
	Name             string               `json:"name,omitempty"`
	GatewayReference string               `json:"gateway_reference,omitempty"`
	CreatedAt        time.Time            `json:"created_at"`
	UpdatedAt        time.Time            `json:"updated_at"`
}

func NewTransactionResponse(t *entity.PaymentTransaction) *TransactionResponse {
	return &TransactionResponse{
		ID:               t.ID,
		Reference:        t.Reference,
		Gateway:          t.Gateway,
		Category:         t.Category,
		Amount:           t.Amount,
		Status:           t.Status,
		Email:            t.Email,
		Name:             t.Name,
		GatewayReference: t.GatewayReference,
		CreatedAt:        t.CreatedAt,
		UpdatedAt:        t.UpdatedAt,
	}
}

type TransactionListResponse struct {
	Transactions []*TransactionResponse `json:"transactions"`
	Limit        int                    `json:"limit"`
}

// WebhookAck is always returned to the gateway with HTTP 200 so it does not
// retry indefinitely; Accepted is false when the signature was rejected.
type WebhookAck struct {
	Accepted  bool   `json:"accepted"`
	Reference string `json:"reference,omitempty"`
	Message   string `json:"message,omitempty"`
}
