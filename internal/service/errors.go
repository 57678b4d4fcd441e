package service

import "errors"

var (
	ErrUnknownPhobia = errors.New("phobia not found")
	ErrUnknownLevel  = errors.New("level not found")
	ErrUnknownStep   = errors.New("step not found")
	ErrInvalidRating = errors.New("anxiety rating must be between 1 and 10")
)
