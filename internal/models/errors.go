package models

import (
	"errors"
	"fmt"
)

// Error kinds surfaced by the analysis core. Callers match them with errors.Is.
var (
	ErrMalformedSeries        = errors.New("malformed series")
	ErrInsufficientHistory    = errors.New("insufficient history")
	ErrQuotaExceeded          = errors.New("daily quota exceeded")
	ErrUpstreamUnavailable    = errors.New("upstream unavailable")
	ErrInvalidDecisionPayload = errors.New("invalid decision payload")
	ErrInvalidInput           = errors.New("invalid input")
)

// MalformedSeriesError names the raw array that failed alignment.
type MalformedSeriesError struct {
	Field  string
	Reason string
}

func (e *MalformedSeriesError) Error() string {
	return fmt.Sprintf("malformed series: %s: %s", e.Field, e.Reason)
}

// Is reports ErrMalformedSeries so callers need not know the concrete type.
func (e *MalformedSeriesError) Is(target error) bool {
	return target == ErrMalformedSeries
}

// InsufficientHistoryError carries how many bars were needed and available.
type InsufficientHistoryError struct {
	What string
	Need int
	Have int
}

func (e *InsufficientHistoryError) Error() string {
	return fmt.Sprintf("insufficient history for %s: need %d points, got %d", e.What, e.Need, e.Have)
}

func (e *InsufficientHistoryError) Is(target error) bool {
	return target == ErrInsufficientHistory
}

// IsUpstreamFailure reports whether err should be presented to callers as a
// collaborator failure. Invalid decisions are treated like unavailability.
func IsUpstreamFailure(err error) bool {
	return errors.Is(err, ErrUpstreamUnavailable) || errors.Is(err, ErrInvalidDecisionPayload)
}
