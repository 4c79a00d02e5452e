package gammaapi

import (
	"errors"
	"fmt"
)

// ErrInvalidParams is returned for list parameters outside the accepted ranges
var ErrInvalidParams = errors.New("gammaapi: invalid parameters")

// ErrMalformedField marks an embedded JSON-string field that is not a JSON array
var ErrMalformedField = errors.New("gammaapi: malformed embedded field")

// UpstreamError is a non-2xx response from the Gamma API.
type UpstreamError struct {
	Endpoint   string
	StatusCode int
	Body       string
}

func (e *UpstreamError) Error() string {
	if e.Body == "" {
		return fmt.Sprintf("gamma api %s: unexpected status %d", e.Endpoint, e.StatusCode)
	}
	return fmt.Sprintf("gamma api %s: unexpected status %d: %s", e.Endpoint, e.StatusCode, e.Body)
}

// NotFoundError is a well-formed but empty answer to a single-entity lookup.
type NotFoundError struct {
	Kind string // market, event
	Key  string // id=..., slug=...
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s not found (%s)", e.Kind, e.Key)
}

// DecodeError covers bodies that fail to parse or fail schema validation.
type DecodeError struct {
	Endpoint string
	Err      error
}

func (e *DecodeError) Error() string {
	return fmt.Sprintf("gamma api %s: decode response: %v", e.Endpoint, e.Err)
}

func (e *DecodeError) Unwrap() error {
	return e.Err
}

// IsNotFound reports whether err carries a NotFoundError
func IsNotFound(err error) bool {
	var nf *NotFoundError
	return errors.As(err, &nf)
}

// IsUpstream reports whether err carries an UpstreamError or DecodeError,
// i.e. the upstream answered but could not be used.
func IsUpstream(err error) bool {
	var ue *UpstreamError
	var de *DecodeError
	return errors.As(err, &ue) || errors.As(err, &de)
}

func isStatus(err error, code int) bool {
	var ue *UpstreamError
	return errors.As(err, &ue) && ue.StatusCode == code
}
