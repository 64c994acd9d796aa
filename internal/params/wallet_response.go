package params

import (
	"ajebo-payments/internal/entity"
	"time"

	"github.com/google/uuid"
)

type WalletResponse struct {
	ID        uuid.UUID `json:"id"`
	UserID    string    `json:"user_id"`
	Email     string    `json:"email"`
	Name      string    `json:"name"`
	Balance   int64     `json:"balance"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func NewWalletResponse(w *entity.Wallet) *WalletResponse {
	return &WalletResponse{
		ID:        w.ID,
		UserID:    w.UserID,
		Email:     w.Email,
		Name:      w.Name,
		Balance:   w.Balance,
		CreatedAt: w.CreatedAt,
		UpdatedAt: w.UpdatedAt,
	}
}

type LedgerEntryResponse struct {
	ID           uuid.UUID                `json:"id"`
	Reference    string                   `json:"reference"`
	UserID       string                   `json:"user_id"`
	Type         entity.LedgerEntryType   `json:"type"`
	Source       string                   `json:"source"`
	Amount       int64                    `json:"amount"`
	Status       entity.LedgerEntryStatus `json:"status"`
	Description  string                   `json:"description,omitempty"`
	BalanceAfter int64                    `json:"balance_after"`
	CreatedBy    string                   `json:"created_by,omitempty"`
	CreatedAt    time.Time                `json:"created_at"`
}

type LedgerHistoryResponse struct {
	UserID  string                 `json:"user_id"`
	Entries []*LedgerEntryResponse `json:"entries"`
	Limit   int                    `json:"limit"`
}
