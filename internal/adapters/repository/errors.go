package repository

import "errors"

// Sentinel kinds for store errors.
var (
	ErrNotFound      = errors.New("usuario not found")
	ErrDuplicateID   = errors.New("usuario id already exists")
	ErrUnknownDriver = errors.New("unknown store driver")
)
