package dto

import (
	"net/http"
	"strings"
)

// Error codes produced by the HTTP layer itself. Domain errors keep the code
// they were created with so that HTTP and command line callers see the same
// value.
const (
	ErrCodeInternal       = "INTERNAL_ERROR"
	ErrCodeBadRequest     = "BAD_REQUEST"
	ErrCodeValidation     = "VALIDATION_ERROR"
	ErrCodeInvalidJSON    = "INVALID_JSON"
	ErrCodeUnauthorized   = "UNAUTHORIZED"
	ErrCodeForbidden      = "FORBIDDEN"
	ErrCodeTokenExpired   = "TOKEN_EXPIRED"
	ErrCodeTokenInvalid   = "INVALID_TOKEN"
	ErrCodeNotFound       = "NOT_FOUND"
	ErrCodeRouteNotFound  = "ROUTE_NOT_FOUND"
	ErrCodeDuplicate      = "DUPLICATE_REQUEST"
	ErrCodeRequestTooBig  = "REQUEST_TOO_LARGE"
	ErrCodeRateLimited    = "RATE_LIMITED"
	ErrCodeServiceFailure = "SERVICE_UNAVAILABLE"
)

// ErrorCodeHTTPStatus maps error codes to HTTP status codes
var ErrorCodeHTTPStatus = map[string]int{
	ErrCodeInternal:       http.StatusInternalServerError,
	ErrCodeServiceFailure: http.StatusServiceUnavailable,

	// Input
	ErrCodeBadRequest:  http.StatusBadRequest,
	ErrCodeValidation:  http.StatusBadRequest,
	ErrCodeInvalidJSON: http.StatusBadRequest,
	"INVALID_INPUT":    http.StatusBadRequest,
	"INVALID_AMOUNT":   http.StatusBadRequest,

	// Auth
	ErrCodeUnauthorized: http.StatusUnauthorized,
	ErrCodeTokenExpired: http.StatusUnauthorized,
	ErrCodeTokenInvalid: http.StatusUnauthorized,
	ErrCodeForbidden:    http.StatusForbidden,

	// Resources
	ErrCodeNotFound:        http.StatusNotFound,
	ErrCodeRouteNotFound:   http.StatusNotFound,
	"ALREADY_EXISTS":       http.StatusConflict,
	"CONCURRENCY_CONFLICT": http.StatusConflict,
	ErrCodeDuplicate:       http.StatusConflict,
	ErrCodeRequestTooBig:   http.StatusRequestEntityTooLarge,
	ErrCodeRateLimited:     http.StatusTooManyRequests,

	// Invoicing rules
	"EMPTY_BUDGET":            http.StatusUnprocessableEntity,
	"NO_INVOICEABLE_ITEMS":    http.StatusUnprocessableEntity,
	"AMOUNT_EXCEEDS_BALANCE":  http.StatusUnprocessableEntity,
	"TOTAL_MISMATCH":          http.StatusUnprocessableEntity,
	"INVOICE_ALREADY_PAID":    http.StatusUnprocessableEntity,
	"ALREADY_INVOICED":        http.StatusConflict,
	"HAS_PAYMENTS":            http.StatusConflict,
	"NO_ADJUSTMENTS":          http.StatusUnprocessableEntity,
	"NO_PENDING_ADJUSTMENTS":  http.StatusUnprocessableEntity,
	"ADJUSTMENT_NOT_APPROVED": http.StatusConflict,
	"ADJUSTMENT_ALREADY_PAID": http.StatusConflict,
	"INVALID_STATE":           http.StatusConflict,

	// Works and settlement
	"BUDGET_WITHOUT_TASK":      http.StatusUnprocessableEntity,
	"UNKNOWN_WORKER":           http.StatusUnprocessableEntity,
	"UNSUPPORTED_RECEIPT_TYPE": http.StatusUnsupportedMediaType,
	"RECEIPT_NOT_UPLOADED":     http.StatusUnprocessableEntity,
	"RECEIPT_STORAGE_DISABLED": http.StatusServiceUnavailable,
}

// GetHTTPStatus returns the HTTP status code for an error code.
// Unlisted INVALID_* codes are input errors; any other unlisted code is a
// business rule violation. An empty code is an internal error.
func GetHTTPStatus(code string) int {
	if status, ok := ErrorCodeHTTPStatus[code]; ok {
		return status
	}
	switch {
	case code == "":
		return http.StatusInternalServerError
	case strings.HasPrefix(code, "INVALID_"):
		return http.StatusBadRequest
	default:
		return http.StatusUnprocessableEntity
	}
}
