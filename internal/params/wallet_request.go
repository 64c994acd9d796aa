package params

type EnsureWalletRequest struct {
	UserID string `json:"user_id" validate:"required,max=64"`
	Email  string `json:"email" validate:"required,email"`
	Name   string `json:"name" validate:"required,max=255"`
}

type CreditRequest struct {
	UserID      string `json:"user_id" validate:"required,max=64"`
	Email       string `json:"email" validate:"omitempty,email"`
	Name        string `json:"name" validate:"max=255"`
	Amount      int64  `json:"amount" validate:"required,gt=0"`
	Reference   string `json:"reference" validate:"required,max=128"`
	Source      string `json:"source" validate:"required,max=32"`
	Description string `json:"description,omitempty" validate:"max=500"`
	Metadata    string `json:"metadata,omitempty"`
	CreatedBy   string `json:"created_by,omitempty" validate:"max=64"`
}

type DebitRequest struct {
	UserID      string `json:"user_id" validate:"required,max=64"`
	Amount      int64  `json:"amount" validate:"required,gt=0"`
	Reference   string `json:"reference" validate:"required,max=128"`
	Source      string `json:"source" validate:"required,max=32"`
	Description string `json:"description,omitempty" validate:"max=500"`
	Metadata    string `json:"metadata,omitempty"`
	CreatedBy   string `json:"created_by,omitempty" validate:"max=64"`
}

// AdjustmentRequest is the admin entry point; it forwards to credit or debit
// with created_by set to the authenticated operator.
type AdjustmentRequest struct {
	UserID      string `json:"user_id" validate:"required,max=64"`
	Email       string `json:"email" validate:"omitempty,email"`
	Name        string `json:"name" validate:"max=255"`
	Amount      int64  `json:"amount" validate:"required,gt=0"`
	Type        string `json:"type" validate:"required,oneof=credit debit"`
	Description string `json:"description,omitempty" validate:"max=500"`
}
