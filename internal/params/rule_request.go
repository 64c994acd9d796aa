package params

type CreateRuleRequest struct {
	UserID      string `json:"user_id" validate:"required,max=64"`
	Email       string `json:"email" validate:"required,email"`
	Name        string `json:"name" validate:"required,max=255"`
	Amount      int64  `json:"amount" validate:"required,gt=0"`
	Schedule    string `json:"schedule" validate:"required,oneof=daily weekly monthly"`
	Description string `json:"description,omitempty" validate:"max=500"`
}

type SetRuleActiveRequest struct {
	Active *bool `json:"active" validate:"required"`
}
