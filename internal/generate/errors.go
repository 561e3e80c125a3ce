package generate

import "errors"

// Pipeline error classes. Handlers map these onto HTTP status codes;
// internal detail stays in the server log.
var (
	// ErrInvalidRequest is a malformed or out-of-range generation
	// request, rejected before any model call.
	ErrInvalidRequest = errors.New("invalid generation request")

	// ErrQuotaExceeded is returned when the principal is out of
	// generation quota for the current window.
	ErrQuotaExceeded = errors.New("generation quota exceeded")

	// ErrModelTransport is a timeout or transport failure calling the
	// model. Never retried: retrying a hung call wastes the time budget.
	ErrModelTransport = errors.New("model call failed")

	// ErrModelOutput means both the first response and the retry failed
	// JSON parsing or schema validation.
	ErrModelOutput = errors.New("model produced invalid output")

	// ErrPersistence is a workout or exercise-link insert failure. Any
	// partially-inserted workout has been rolled back by the time this
	// is returned.
	ErrPersistence = errors.New("failed to persist workout")
)
