package client

import (
	"errors"
	"fmt"

	apperrors "sweethomes/pkg/errors"
)

var ErrInvalidRequest = errors.New("invalid backend request")

// RemoteError means the backend answered, parsed, and said no.
type RemoteError struct {
	Action  string
	Message string
}

func (e *RemoteError) Error() string {
	return fmt.Sprintf("backend rejected %s: %s", e.Action, e.Message)
}

// TransportError means no usable answer came back: network failure, timeout,
// or a body that is not an envelope.
type TransportError struct {
	Action string
	Err    error
}

func (e *TransportError) Error() string {
	return fmt.Sprintf("backend %s failed: %v", e.Action, e.Err)
}

func (e *TransportError) Unwrap() error {
	return e.Err
}

func IsTransport(err error) bool {
	var transportErr *TransportError
	return errors.As(err, &transportErr)
}

// ToAppError maps backend failures onto the HTTP error taxonomy. Errors that
// are already AppErrors, or unrelated to the backend, pass through.
func ToAppError(err error) error {
	if err == nil {
		return nil
	}

	var remoteErr *RemoteError
	if errors.As(err, &remoteErr) {
		return apperrors.Remote(remoteErr.Message, err)
	}

	var transportErr *TransportError
	if errors.As(err, &transportErr) {
		return apperrors.Transport(err)
	}

	if errors.Is(err, ErrInvalidRequest) {
		appErr := apperrors.InvalidInput(err.Error())
		appErr.Err = err
		return appErr
	}

	return err
}

// FailureMessage is the text shown to a user for a failed backend call.
func FailureMessage(err error) string {
	var appErr *apperrors.AppError
	if errors.As(ToAppError(err), &appErr) {
		return appErr.Message
	}
	return err.Error()
}
