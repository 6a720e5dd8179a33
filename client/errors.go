package client

import "fmt"

// The gateway client maps every failure into one of the typed errors
// below and never retries on its own; retry policy belongs to the caller.

// AuthError means no valid credential could be obtained or the backend
// refused the one presented. The user must re-authenticate.
type AuthError struct {
	Err error
}

func (e *AuthError) Error() string {
	return fmt.Sprintf("authentication required: %v", e.Err)
}

func (e *AuthError) Unwrap() error { return e.Err }

// NetworkError is a transport failure: timeout, DNS, connection refused.
// Always recoverable by manual retry.
type NetworkError struct {
	Err error
}

func (e *NetworkError) Error() string {
	return fmt.Sprintf("network error: %v", e.Err)
}

func (e *NetworkError) Unwrap() error { return e.Err }

// ServerError is a non-2xx backend response not covered by a more
// specific error. The backend's message is passed through for display.
type ServerError struct {
	Status  int
	Message string
}

func (e *ServerError) Error() string {
	if e.Message != "" {
		return fmt.Sprintf("server error (%d): %s", e.Status, e.Message)
	}
	return fmt.Sprintf("server error (%d)", e.Status)
}

// NotFoundError means the referenced email no longer exists. Non-fatal
// for delete, fatal for get.
type NotFoundError struct {
	ID string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("email %s not found", e.ID)
}

// DeliveryError means the mail-transport provider rejected the message:
// invalid recipient, quota, provider auth. No sent record was created.
type DeliveryError struct {
	Reason string
}

func (e *DeliveryError) Error() string {
	return fmt.Sprintf("delivery failed: %s", e.Reason)
}
