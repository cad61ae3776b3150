package shared

import "errors"

// Error kinds surfaced by the core services. Callers match them with
// errors.Is; the HTTP layer translates each kind into a stable status and
// body. ErrorNotFound is deliberately returned for entities owned by another
// tenant so existence never leaks across the isolation boundary.
var (
	// common errors
	ErrorNotFound     = errors.New("not found")
	ErrorInvalidInput = errors.New("invalid input")
	ErrorConflict     = errors.New("already exists")

	// auth-specific errors
	ErrorAuthenticationRequired = errors.New("authentication required")
	ErrorForbidden              = errors.New("forbidden")
	ErrorInvalidCredentials     = errors.New("invalid credentials")
	ErrorDuplicateUser          = errors.New("email already registered")
)
