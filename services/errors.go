package services

import (
	"errors"
	"fmt"
)

var (
	// AI gateway
	ErrEmptyResponse     = errors.New("empty response from AI service")
	ErrMalformedResponse = errors.New("malformed response from AI service")

	// session / quiz lifecycle
	ErrInvalidTransition = errors.New("invalid quiz transition")
	ErrBusy              = errors.New("an analysis is already in progress")
	ErrStaleResponse     = errors.New("response discarded: session moved on")
	ErrSessionClosed     = errors.New("session closed")
	ErrRateLimited       = errors.New("too many AI requests, slow down")

	// input validation
	ErrInvalidImage  = errors.New("invalid image payload")
	ErrEmptyQuery    = errors.New("search query is empty")
	ErrUnknownOption = errors.New("unknown quiz option")

	// market
	ErrInsufficientBalance = errors.New("insufficient balance")
	ErrItemNotFound        = errors.New("market item not found")
)

// GatewayHTTPError is a non-2xx answer from the AI service.
type GatewayHTTPError struct {
	StatusCode int
	Body       string
}

func (e *GatewayHTTPError) Error() string {
	return fmt.Sprintf("ai service http %d: %s", e.StatusCode, e.Body)
}

// transitionError keeps ErrInvalidTransition matchable while naming the states involved.
func transitionError(action string, from QuizState) error {
	return fmt.Errorf("%w: cannot %s while %s", ErrInvalidTransition, action, from)
}
