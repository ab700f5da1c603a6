package models

import "errors"

// Domain specific errors. Handlers map these to HTTP statuses in one place;
// services wrap them with fmt.Errorf and %w to add context.
var (
	ErrNotFound            = errors.New("requested item not found")
	ErrConflict            = errors.New("item already exists or conflict")
	ErrUnauthenticated     = errors.New("authentication required or invalid credentials")
	ErrForbidden           = errors.New("action forbidden")
	ErrBadRequest          = errors.New("bad request")
	ErrValidation          = errors.New("validation failed")
	ErrUpstreamUnavailable = errors.New("upstream provider unavailable")
	ErrGenerationFailed    = errors.New("itinerary generation failed")
	ErrUnknownCategory     = errors.New("no mapping for category")
	ErrMissingLocation     = errors.New("no location available for request")
)
