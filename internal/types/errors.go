package types

import "errors"

// Sentinel errors shared across services and handlers. Handlers translate
// these to HTTP status codes; everything unrecognized becomes a 500.
var (
	ErrValidation      = errors.New("invalid or missing input")
	ErrUnauthenticated = errors.New("authentication required or invalid credentials")
	ErrForbidden       = errors.New("action forbidden")
	ErrNotFound        = errors.New("requested item not found")
	ErrConflict        = errors.New("item already exists or conflict")
	ErrInternal        = errors.New("internal error")
)
