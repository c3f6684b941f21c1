package errors

import "errors"

var (
	ErrNegativePrice = errors.New("price must be a non-negative number")

	ErrRoomRequired = errors.New("room type is required")
)
