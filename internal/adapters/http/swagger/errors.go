package swagger

import "errors"

// Error constants.
var (
	ErrServe           = errors.New("swagger serve failed")
	ErrInvalidDocument = errors.New("invalid openapi document")
)
