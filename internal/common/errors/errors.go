// Package errors provides standardized error handling for the search and loyalty
// job workers and their BPMN error mapping.
package errors

import (
	"fmt"
	"strings"
	"time"
)

// ==========================
// 1. Standard Error Types
// ==========================

// ErrorCode represents standardized internal error codes.
type ErrorCode string

const (
	// Infrastructure
	ErrCodeStorageUnavailable ErrorCode = "STORAGE_UNAVAILABLE"
	ErrCodeCatalogUnavailable ErrorCode = "CATALOG_UNAVAILABLE"
	ErrCodeNotificationFailed ErrorCode = "NOTIFICATION_SEND_FAILED"

	// Input
	ErrCodeInvalidInput       ErrorCode = "INVALID_INPUT"
	ErrCodeInvalidSearchQuery ErrorCode = "INVALID_SEARCH_QUERY"
	ErrCodeInvalidAlias       ErrorCode = "INVALID_LOCATION_ALIAS"
	ErrCodeInvalidBooking     ErrorCode = "INVALID_BOOKING"

	// Loyalty business rules
	ErrCodeInsufficientPoints ErrorCode = "INSUFFICIENT_POINTS"
	ErrCodeInvalidAmount      ErrorCode = "INVALID_POINTS_AMOUNT"
	ErrCodeBadgeNotFound      ErrorCode = "BADGE_NOT_FOUND"
	ErrCodeBadgeAlreadyEarned ErrorCode = "BADGE_ALREADY_EARNED"
	ErrCodeBookingRewarded    ErrorCode = "BOOKING_ALREADY_REWARDED"
	ErrCodeReferralNotFound   ErrorCode = "REFERRAL_NOT_FOUND"
	ErrCodeReferralExists     ErrorCode = "REFERRAL_ALREADY_EXISTS"

	ErrCodeInternal ErrorCode = "INTERNAL_ERROR"
)

// StandardError represents a structured application error.
type StandardError struct {
	Code      ErrorCode              `json:"code"`
	Message   string                 `json:"message"`
	Details   string                 `json:"details,omitempty"`
	Retryable bool                   `json:"retryable"`
	Metadata  map[string]interface{} `json:"metadata,omitempty"`
	Timestamp time.Time              `json:"timestamp"`
}

func (e *StandardError) Error() string {
	return fmt.Sprintf("StandardError[%s]: %s", e.Code, e.Message)
}

// ==========================
// 2. BPMN Error Integration
// ==========================

// BPMNError represents an error that can be thrown to the workflow engine.
type BPMNError struct {
	Code           string                 `json:"code"`
	Message        string                 `json:"message"`
	Details        string                 `json:"details,omitempty"`
	Retryable      bool                   `json:"retryable"`
	Retries        int                    `json:"retries"`
	ErrorVariables map[string]interface{} `json:"errorVariables,omitempty"`
}

func (e *BPMNError) Error() string {
	return fmt.Sprintf("BPMNError[%s]: %s", e.Code, e.Message)
}

// ToErrorVariables returns a map suitable for job fail variables.
func (e *BPMNError) ToErrorVariables() map[string]interface{} {
	vars := map[string]interface{}{
		"errorCode":    e.Code,
		"errorMessage": e.Message,
		"errorDetails": e.Details,
		"retryable":    e.Retryable,
	}
	for k, v := range e.ErrorVariables {
		vars[k] = v
	}
	return vars
}

// ==========================
// 3. Error Constructors
// ==========================

func newError(code ErrorCode, message, details string, retryable bool) *StandardError {
	return &StandardError{
		Code:      code,
		Message:   message,
		Details:   details,
		Retryable: retryable,
		Timestamp: time.Now().UTC(),
	}
}

// NewStorageUnavailableError creates a retryable key-value store error.
func NewStorageUnavailableError(op string, err error) *StandardError {
	return newError(ErrCodeStorageUnavailable, "Storage backend unavailable",
		fmt.Sprintf("op: %s, error: %v", op, err), true)
}

// NewCatalogUnavailableError creates a retryable product catalog error.
func NewCatalogUnavailableError(source string, err error) *StandardError {
	return newError(ErrCodeCatalogUnavailable, "Product catalog unavailable",
		fmt.Sprintf("source: %s, error: %v", source, err), true)
}

// NewNotificationFailedError creates a retryable notification error.
func NewNotificationFailedError(channel string, err error) *StandardError {
	return newError(ErrCodeNotificationFailed, "Notification delivery failed",
		fmt.Sprintf("channel: %s, error: %v", channel, err), true)
}

// NewInvalidInputError creates a non-retryable input error.
func NewInvalidInputError(details string) *StandardError {
	return newError(ErrCodeInvalidInput, "Invalid job input", details, false)
}

// NewInvalidSearchQueryError creates a non-retryable search input error.
func NewInvalidSearchQueryError(details string) *StandardError {
	return newError(ErrCodeInvalidSearchQuery, "Invalid search query", details, false)
}

// NewInvalidAliasError creates a non-retryable alias error.
func NewInvalidAliasError(details string) *StandardError {
	return newError(ErrCodeInvalidAlias, "Invalid location alias", details, false)
}

// NewInvalidBookingError creates a non-retryable booking payload error.
func NewInvalidBookingError(details string) *StandardError {
	return newError(ErrCodeInvalidBooking, "Missing required booking fields", details, false)
}

// NewBusinessRuleError maps a loyalty rule violation to its error code.
func NewBusinessRuleError(code ErrorCode, message string) *StandardError {
	return newError(code, message, "", false)
}

// NewInternalError wraps an unexpected error.
func NewInternalError(err error) *StandardError {
	return newError(ErrCodeInternal, "Unexpected error", err.Error(), false)
}

// ==========================
// 4. BPMN mapping
// ==========================

// BPMNErrorMapping maps internal codes to the error codes modelled in the processes.
var BPMNErrorMapping = map[ErrorCode]string{
	ErrCodeStorageUnavailable: "STORAGE_ERROR",
	ErrCodeCatalogUnavailable: "CATALOG_ERROR",
	ErrCodeNotificationFailed: "NOTIFICATION_ERROR",
	ErrCodeInvalidInput:       "VALIDATION_ERROR",
	ErrCodeInvalidSearchQuery: "VALIDATION_ERROR",
	ErrCodeInvalidAlias:       "VALIDATION_ERROR",
	ErrCodeInvalidBooking:     "VALIDATION_ERROR",
	ErrCodeInsufficientPoints: "LOYALTY_RULE_ERROR",
	ErrCodeInvalidAmount:      "LOYALTY_RULE_ERROR",
	ErrCodeBadgeNotFound:      "LOYALTY_RULE_ERROR",
	ErrCodeBadgeAlreadyEarned: "LOYALTY_RULE_ERROR",
	ErrCodeBookingRewarded:    "LOYALTY_RULE_ERROR",
	ErrCodeReferralNotFound:   "LOYALTY_RULE_ERROR",
	ErrCodeReferralExists:     "LOYALTY_RULE_ERROR",
	ErrCodeInternal:           "INTERNAL_ERROR",
}

// GetRetryCount returns how many times a job failing with code should be retried.
func GetRetryCount(code ErrorCode) int {
	switch code {
	case ErrCodeStorageUnavailable, ErrCodeCatalogUnavailable:
		return 3
	case ErrCodeNotificationFailed:
		return 2
	default:
		return 0
	}
}

// ConvertToBPMNError converts a StandardError into the engine-facing representation.
func ConvertToBPMNError(stdErr *StandardError) *BPMNError {
	code, ok := BPMNErrorMapping[stdErr.Code]
	if !ok {
		code = string(stdErr.Code)
	}

	vars := map[string]interface{}{
		"internalErrorCode": string(stdErr.Code),
		"timestamp":         stdErr.Timestamp.Format(time.RFC3339),
	}
	for k, v := range stdErr.Metadata {
		vars[k] = v
	}

	return &BPMNError{
		Code:           code,
		Message:        stdErr.Message,
		Details:        stdErr.Details,
		Retryable:      stdErr.Retryable,
		Retries:        GetRetryCount(stdErr.Code),
		ErrorVariables: vars,
	}
}

// IsRetryableErrorCode reports whether jobs failing with code should be retried.
func IsRetryableErrorCode(code ErrorCode) bool {
	return GetRetryCount(code) > 0
}

// GetErrorCategory groups codes for logging and dashboards.
func GetErrorCategory(code ErrorCode) string {
	switch {
	case code == ErrCodeStorageUnavailable || code == ErrCodeCatalogUnavailable:
		return "infrastructure"
	case code == ErrCodeNotificationFailed:
		return "integration"
	case strings.HasPrefix(string(code), "INVALID_"):
		return "validation"
	case code == ErrCodeInternal:
		return "internal"
	default:
		return "business_rule"
	}
}
