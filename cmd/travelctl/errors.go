package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strings"

	"travel-workers/internal/loyalty"
	"travel-workers/internal/query"
)

const (
	ExitSuccess = 0
	// ExitRejected is returned when a loyalty rule refuses the operation.
	ExitRejected    = 1
	ExitInvalidArgs = 2
	// ExitUpstream is returned when storage or the catalog is unreachable.
	ExitUpstream = 3
	ExitInternal = 4
)

type cliError struct {
	Code        string
	Message     string
	Suggestions []string
	ExitCode    int
}

func (e *cliError) Error() string {
	if e == nil {
		return ""
	}
	return e.Message
}

func invalidArgsError(message string, suggestions ...string) error {
	return &cliError{Code: "INVALID_ARGS", Message: message, Suggestions: suggestions, ExitCode: ExitInvalidArgs}
}

func upstreamError(action string, err error) error {
	return &cliError{
		Code:        "UPSTREAM_ERROR",
		Message:     fmt.Sprintf("%s: %v", action, err),
		Suggestions: []string{"Check the storage settings in configs/config.yaml and retry."},
		ExitCode:    ExitUpstream,
	}
}

// ledgerError classifies an error returned by a loyalty operation.
func ledgerError(action string, err error) error {
	switch {
	case errors.Is(err, loyalty.ErrStorageUnavailable):
		return upstreamError(action, err)
	case errors.Is(err, loyalty.ErrMissingUserID),
		errors.Is(err, loyalty.ErrMissingReferee),
		errors.Is(err, loyalty.ErrMissingBookingFields):
		return invalidArgsError(err.Error())
	case loyalty.IsBusinessRule(err):
		return &cliError{
			Code:     string(loyalty.ToStandardError(err).Code),
			Message:  err.Error(),
			ExitCode: ExitRejected,
		}
	default:
		return err
	}
}

func aliasError(err error) error {
	switch {
	case errors.Is(err, query.ErrInvalidAlias):
		return invalidArgsError(err.Error(), "travelctl aliases add umhlanga --city Umhlanga")
	case errors.Is(err, query.ErrStorageWrite):
		return upstreamError("saving aliases", err)
	default:
		return err
	}
}

func classifyCLIError(err error) *cliError {
	var typed *cliError
	if errors.As(err, &typed) {
		return typed
	}
	msg := err.Error()
	if strings.HasPrefix(msg, "unknown command") ||
		strings.HasPrefix(msg, "unknown flag") ||
		strings.HasPrefix(msg, "unknown shorthand flag") ||
		strings.Contains(msg, "arg(s)") ||
		strings.Contains(msg, "invalid argument") {
		return &cliError{Code: "INVALID_ARGS", Message: msg, ExitCode: ExitInvalidArgs}
	}
	return &cliError{Code: "INTERNAL_ERROR", Message: msg, ExitCode: ExitInternal}
}

func formatCLIErrorText(err *cliError) string {
	lines := []string{fmt.Sprintf("error[%s]: %s", strings.ToLower(err.Code), err.Message)}
	if len(err.Suggestions) > 0 {
		lines = append(lines, "suggestions:")
		for _, s := range err.Suggestions {
			lines = append(lines, "  "+s)
		}
	}
	return strings.Join(lines, "\n")
}

func printCLIErrorJSON(w io.Writer, err *cliError) error {
	return json.NewEncoder(w).Encode(map[string]interface{}{
		"error": map[string]interface{}{
			"code":        err.Code,
			"message":     err.Message,
			"suggestions": err.Suggestions,
			"exitCode":    err.ExitCode,
		},
	})
}
