package repository

import "errors"

// Sentinel kinds for store errors.
var (
	ErrNotFound      = errors.New("record not found")
	ErrInvalidRange  = errors.New("invalid date range")
	ErrUnknownDriver = errors.New("unknown store driver")
	ErrMissingDSN    = errors.New("store dsn is required")
)
