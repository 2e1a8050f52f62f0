package forecast

import "errors"

var (
	// ErrNoValidModels is returned when a request names no resolvable model.
	ErrNoValidModels = errors.New("no valid models")

	// ErrUpstream marks a network failure, timeout or non-success response
	// from the weather provider.
	ErrUpstream = errors.New("upstream weather provider error")

	// ErrMalformedResponse marks a provider payload missing the expected
	// hourly fields. Reported to users the same way as ErrUpstream.
	ErrMalformedResponse = errors.New("malformed provider response")
)
