package smoke

import "errors"

var (
	// ErrInvalidConfig is returned when Run receives an unusable Config.
	ErrInvalidConfig = errors.New("invalid smoke config")
	// ErrUnexpectedStatus is returned when the service answers with a status the contract does not allow.
	ErrUnexpectedStatus = errors.New("unexpected status")
	// ErrContract is returned when a response body does not match the documented shape.
	ErrContract = errors.New("contract mismatch")
)
