package errors

import "errors"

var (
	ErrNotFound = errors.New("booking not found")

	ErrInvalidID = errors.New("booking id is required")

	ErrInvalidDateRange = errors.New("departure date must be after arrival date")

	ErrSubmissionInFlight = errors.New("an identical booking is already being submitted")

	ErrNoSelection = errors.New("no bookings selected")
)
