package errors

import "errors"

var (
	ErrNotFound = errors.New("session not found")

	ErrInvalidID = errors.New("session id is required")

	ErrCredentialsRequired = errors.New("please enter username and password")
)
