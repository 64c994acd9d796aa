package params

import "github.com/google/uuid"

type AuthResponse struct {
	OperatorID uuid.UUID `json:"operator_id"`
	Name       string    `json:"name"`
	Email      string    `json:"email"`
	Token      string    `json:"token"`
}
