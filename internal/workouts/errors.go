package workouts

import "errors"

var (
	ErrInputOutOfRange = errors.New("input out of range")
	ErrStorageCorrupt  = errors.New("workout storage corrupt")
	ErrInvalidDate     = errors.New("invalid date")
)
