package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
)

var (
	ErrService       = errors.New("service error")
	ErrValidation    = errors.New("validation error")
	ErrConfiguration = errors.New("configuration error")
	ErrTimeout       = errors.New("timeout")
	ErrCancelled     = errors.New("cancelled")
)

// Wrap builds an error message that includes step context while tagging it
// with the provided marker for later classification. The marker should be one
// of the exported sentinel errors above.
func Wrap(marker error, step, operation, message string, err error) error {
	detail := buildDetail(step, operation, message)
	if marker == nil {
		marker = ErrService
	}
	if err != nil {
		return fmt.Errorf("%w: %s: %w", marker, detail, err)
	}
	return fmt.Errorf("%w: %s", marker, detail)
}

// ErrorDetails carries the user-facing pieces of a wrapped service error.
type ErrorDetails struct {
	Kind    string
	Message string
	Cause   error
}

// Details extracts presentation fields from a wrapped service error.
func Details(err error) ErrorDetails {
	if err == nil {
		return ErrorDetails{}
	}
	details := ErrorDetails{Kind: "service", Cause: err, Message: err.Error()}
	switch {
	case errors.Is(err, ErrValidation):
		details.Kind = "validation"
	case errors.Is(err, ErrConfiguration):
		details.Kind = "configuration"
	case errors.Is(err, ErrTimeout):
		details.Kind = "timeout"
	case errors.Is(err, ErrCancelled):
		details.Kind = "cancelled"
	}
	for _, sentinel := range []error{ErrService, ErrValidation, ErrConfiguration, ErrTimeout, ErrCancelled} {
		prefix := sentinel.Error() + ": "
		if strings.HasPrefix(details.Message, prefix) {
			details.Message = strings.TrimPrefix(details.Message, prefix)
			break
		}
	}
	return details
}

// IsCancelled reports whether err represents a cooperative stop, either via
// the sentinel or an underlying context cancellation.
func IsCancelled(err error) bool {
	if err == nil {
		return false
	}
	return errors.Is(err, ErrCancelled) || errors.Is(err, context.Canceled)
}

func buildDetail(step, operation, message string) string {
	parts := make([]string, 0, 3)
	if step = strings.TrimSpace(step); step != "" {
		parts = append(parts, step)
	}
	if operation = strings.TrimSpace(operation); operation != "" {
		parts = append(parts, operation)
	}
	if message = strings.TrimSpace(message); message != "" {
		parts = append(parts, message)
	}
	if len(parts) == 0 {
		return "service failure"
	}
	return strings.Join(parts, ": ")
}
