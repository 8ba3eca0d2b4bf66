package invoicing

import (
	"errors"

	"github.com/maintledger/backend/internal/domain/shared"
)

// genericFailureMessage hides storage and infrastructure errors from callers
const genericFailureMessage = "The operation could not be completed"

// Result is the outcome envelope handed to callers outside the HTTP layer,
// such as the command line tool.
type Result struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
	Code    string `json:"code,omitempty"`
	Data    any    `json:"data,omitempty"`
}

// OK wraps a successful outcome
func OK(message string, data any) Result {
	return Result{Success: true, Message: message, Data: data}
}

// ResultFromError converts an error to a failed Result. Domain errors keep
// their code and message; anything else becomes a generic failure.
func ResultFromError(err error) Result {
	if err == nil {
		return Result{Success: true}
	}
	var domainErr *shared.DomainError
	if errors.As(err, &domainErr) {
		return Result{Success: false, Message: domainErr.Message, Code: domainErr.Code}
	}
	return Result{Success: false, Message: genericFailureMessage, Code: "INTERNAL_ERROR"}
}
