package domain

import "errors"

// common domain errors that cross entity boundaries.
var (
	ErrNotFound      = errors.New("entity not found")
	ErrAlreadyExists = errors.New("entity already exists")
	ErrInvalidInput  = errors.New("invalid input")
	ErrInvalidDayKey = errors.New("invalid day key, expected YYYY-MM-DD")
	ErrInvalidWindow = errors.New("invalid date window")
)
