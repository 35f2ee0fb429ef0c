package utils

import "github.com/gofiber/fiber/v2"

// ErrorKind is the machine-readable classification attached to every failed
// response. Clients branch on it; the message is for display only.
type ErrorKind string

const (
	// KindInvalidInput marks malformed or missing request fields.
	KindInvalidInput ErrorKind = "invalid_input"
	// KindUnauthenticated marks a missing, expired or invalid token.
	KindUnauthenticated ErrorKind = "unauthenticated"
	// KindForbidden marks a valid identity with insufficient role or ownership.
	KindForbidden ErrorKind = "forbidden"
	// KindNotFound marks a referenced entity that does not exist.
	KindNotFound ErrorKind = "not_found"
	// KindConflict marks a uniqueness violation such as a duplicate submission.
	KindConflict ErrorKind = "conflict"
	// KindUnavailable marks a storage or downstream failure; internal detail
	// is logged server-side and never surfaced.
	KindUnavailable ErrorKind = "unavailable"
)

// APIError is the structured error object returned to clients.
type APIError struct {
	Kind    ErrorKind `json:"kind"`
	Message string    `json:"message"`
}

// APIResponse describes the common structure for API responses.
type APIResponse struct {
	Success bool        `json:"success"`
	Data    interface{} `json:"data,omitempty"`
	Message string      `json:"message,omitempty"`
	Error   *APIError   `json:"error,omitempty"`
}

// SendSuccess sends a successful JSON response with a message.
func SendSuccess(c *fiber.Ctx, message string, data interface{}) error {
	return SendSuccessWithStatus(c, fiber.StatusOK, message, data)
}

// SendSuccessWithStatus sends a success payload using the provided HTTP status code.
func SendSuccessWithStatus(c *fiber.Ctx, status int, message string, data interface{}) error {
	if message == "" {
		message = "success"
	}
	if status == 0 {
		status = fiber.StatusOK
	}

	return c.Status(status).JSON(APIResponse{
		Success: true,
		Data:    data,
		Message: message,
	})
}

// SendError sends an error JSON response with the given status code and kind.
func SendError(c *fiber.Ctx, status int, kind ErrorKind, message string) error {
	if message == "" {
		message = "error"
	}

	return c.Status(status).JSON(APIResponse{
		Success: false,
		Error: &APIError{
			Kind:    kind,
			Message: message,
		},
	})
}
