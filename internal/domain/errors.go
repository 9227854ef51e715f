package domain

import (
	"errors"
	"fmt"
)

// Sentinel errors used throughout the application.
// Handlers translate these to HTTP status codes via a single mapError function.
var (
	ErrNotFound      = errors.New("not found")
	ErrInvalidToken  = errors.New("token must not be empty")
	ErrInvalidUserID = errors.New("user_id must not be empty")
)

// FailureReason classifies a push delivery failure. The dispatcher branches
// on this typed value instead of substring-matching provider error text.
type FailureReason string

const (
	ReasonUnregistered    FailureReason = "unregistered"
	ReasonInvalidArgument FailureReason = "invalid_argument"
	ReasonTransient       FailureReason = "transient"
	ReasonUnknown         FailureReason = "unknown"
)

// DeactivatesToken reports whether a failure with this reason should flip
// the device token to inactive. Only terminal per-token rejections qualify;
// transient provider failures must leave healthy tokens registered.
func (r FailureReason) DeactivatesToken() bool {
	return r == ReasonUnregistered || r == ReasonInvalidArgument
}

// DeliveryError is a failed push send for a single device token.
// It is contained at per-token scope and never aborts sibling sends.
type DeliveryError struct {
	Reason     FailureReason
	StatusCode int
	Body       string
}

func (e *DeliveryError) Error() string {
	return fmt.Sprintf("push send failed (%s): status %d: %s", e.Reason, e.StatusCode, e.Body)
}

// CredentialError is a rejected OAuth2 token exchange. It is fatal for the
// whole invocation: without a bearer token nothing can be delivered.
type CredentialError struct {
	StatusCode int
	Body       string
}

func (e *CredentialError) Error() string {
	return fmt.Sprintf("token exchange rejected: status %d: %s", e.StatusCode, e.Body)
}
