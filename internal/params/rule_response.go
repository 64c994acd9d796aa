package params

import (
	"ajebo-payments/internal/entity"
	"time"

	"github.com/google/uuid"
)

type RuleResponse struct {
	ID          uuid.UUID           `json:"id"`
	UserID      string              `json:"user_id"`
	Email       string              `json:"email"`
	Name        string              `json:"name"`
	Amount      int64               `json:"amount"`
	Schedule    entity.RuleSchedule `json:"schedule"`
	Description string              `json:"description,omitempty"`
	Active      bool                `json:"active"`
	NextRunAt   time.Time           `json:"next_run_at"`
	CreatedBy   string              `json:"created_by,omitempty"`
	CreatedAt   time.Time           `json:"created_at"`
	UpdatedAt   time.Time           `json:"updated_at"`
}

func NewRuleResponse(r *entity.WalletRule) *RuleResponse {
	return &RuleResponse{
		ID:          r.ID,
		UserID:      r.UserID,
		Email:       r.Email,
		Name:        r.Name,
		Amount:      r.Amount,
		Schedule:    r.Schedule,
		Description: r.Description,
		Active:      r.Active,
		NextRunAt:   r.NextRunAt,
		CreatedBy:   r.CreatedBy,
		CreatedAt:   r.CreatedAt,
		UpdatedAt:   r.UpdatedAt,
	}
}

// RuleRunOutcome reports one rule from a scheduler pass. Failed rules keep
// their next_run_at so the next pass retries them.
type RuleRunOutcome struct {
	RuleID    uuid.UUID `json:"rule_id"`
	Reference string    `json:"reference"`
	Credited  bool      `json:"credited"`
	Error     string    `json:"error,omitempty"`
	NextRunAt time.Time `json:"next_run_at"`
}

type RuleRunReport struct {
	RanAt    time.Time         `json:"ran_at"`
	Due      int               `json:"due"`
	Outcomes []*RuleRunOutcome `json:"outcomes"`
}
