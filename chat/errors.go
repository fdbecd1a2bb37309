package chat

import (
	"errors"
	"fmt"

	"github.com/slack-go/slack"
)

// ValidationError reports malformed or missing caller input.
type ValidationError struct {
	Message string
}

func (e *ValidationError) Error() string {
	return e.Message
}

var (
	ErrEmptyText      = &ValidationError{Message: "Message text cannot be empty"}
	ErrMissingChannel = &ValidationError{Message: "Channel is required"}
	ErrPastSchedule   = &ValidationError{Message: "Scheduled time must be in the future"}
	ErrScheduleTooFar = &ValidationError{Message: "Scheduled time cannot be more than 120 days in the future"}
	ErrMissingRange   = &ValidationError{Message: "Either ts or oldest/latest is required"}
	ErrMissingTS      = &ValidationError{Message: "Message timestamp (ts) is required"}
)

// ErrNotFound is returned when a history query matches no messages.
var ErrNotFound = errors.New("no messages found")

// RemoteError wraps a failed call to the chat API. Code holds the error
// string the API declared, when it declared one.
type RemoteError struct {
	Op   string
	Code string
	Err  error
}

func (e *RemoteError) Error() string {
	if e.Code != "" {
		return fmt.Sprintf("%s: %s", e.Op, e.Code)
	}
	return fmt.Sprintf("%s: %v", e.Op, e.Err)
}

func (e *RemoteError) Unwrap() error {
	return e.Err
}

// authCodes are API error codes that mean the token itself is unusable.
var authCodes = map[string]bool{
	"invalid_auth":     true,
	"not_authed":       true,
	"token_revoked":    true,
	"token_expired":    true,
	"account_inactive": true,
}

// IsAuthFailure reports whether the API rejected the credential.
func (e *RemoteError) IsAuthFailure() bool {
	return authCodes[e.Code]
}

func remoteError(op string, err error) error {
	re := &RemoteError{Op: op, Err: err}
	var se slack.SlackErrorResponse
	if errors.As(err, &se) {
		re.Code = se.Err
	}
	return re
}
