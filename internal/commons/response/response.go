package response

import "net/http"

// CustomError is the error envelope usecases return to handlers. StatusCode
// maps straight onto the HTTP response.
type CustomError struct {
	StatusCode int         `json:"status_code"`
	Status     bool        `json:"status"`
	Message    string      `json:"message"`
	Errors     interface{} `json:"errors,omitempty"`
}

func (e *CustomError) Error() string {
	return e.Message
}

type Success struct {
	StatusCode int         `json:"status_code"`
	Status     bool        `json:"status"`
	Message    string      `json:"message"`
	Payload    interface{} `json:"payload,omitempty"`
}

func newError(code int, message string) *CustomError {
	return &CustomError{
		StatusCode: code,
		Status:     false,
		Message:    message,
	}
}

func BadRequestError(message string) *CustomError {
	return newError(http.StatusBadRequest, message)
}

func UnauthorizedError(message string) *CustomError {
	return newError(http.StatusUnauthorized, message)
}

func NotFoundError(message string) *CustomError {
	return newError(http.StatusNotFound, message)
}

func UnprocessableEntityError(message string) *CustomError {
	return newError(http.StatusUnprocessableEntity, message)
}

// RepositoryError covers failed storage round trips.
func RepositoryError(message string) *CustomError {
	return newError(http.StatusInternalServerError, message)
}

func GeneralError(message string) *CustomError {
	return newError(http.StatusInternalServerError, message)
}

// GatewayError covers failed or timed-out calls to a payment gateway. The
// underlying payment stays pending and the caller should retry verification.
func GatewayError(message string) *CustomError {
	return newError(http.StatusBadGateway, message)
}

func GeneralSuccess(message string) *Success {
	return &Success{
		StatusCode: http.StatusOK,
		Status:     true,
		Message:    message,
	}
}

func GeneralSuccessCustomMessageAndPayload(message string, payload interface{}) *Success {
	return &Success{
		StatusCode: http.StatusOK,
		Status:     true,
		Message:    message,
		Payload:    payload,
	}
}

func CreatedSuccessWithPayload(payload interface{}) *Success {
	return &Success{
		StatusCode: http.StatusCreated,
		Status:     true,
		Message:    "Created successfully",
		Payload:    payload,
	}
}
