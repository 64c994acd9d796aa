package params

type InitiatePaymentRequest struct {
	Gateway     string `json:"gateway" validate:"required,oneof=paystack monnify"`
	Category    string `json:"category" validate:"required,max=64"`
	Amount      int64  `json:"amount" validate:"required,gt=0"`
	Email       string `json:"email" validate:"required,email"`
	Name        string `json:"name" validate:"max=255"`
	Phone       string `json:"phone,omitempty" validate:"max=32"`
	Reference   string `json:"reference,omitempty" validate:"max=128"`
	CallbackURL string `json:"callback_url,omitempty" validate:"omitempty,url"`

	// WalletTopup marks the payment as a wallet funding for UserID; on
	// confirmation the amount is credited to that wallet.
	WalletTopup bool   `json:"wallet_topup,omitempty"`
	UserID      string `json:"user_id,omitempty" validate:"required_if=WalletTopup true,max=64"`
}
