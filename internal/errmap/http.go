// Package errmap translates converter errors into transport error responses.
package errmap

import (
	"errors"
	"net/http"

	"github.com/aelexs/timeconverter/internal/domain"
	"github.com/aelexs/timeconverter/pkg/timeconv"
)

// HTTPError represents an HTTP error response.
type HTTPError struct {
	StatusCode int    `json:"-"`
	Code       string `json:"code"`
	Message    string `json:"message"`
}

func (e HTTPError) Error() string {
	return e.Message
}

// httpMapping defines an error to HTTP status/code mapping.
type httpMapping struct {
	err        error
	statusCode int
	code       string
}

// httpMappings maps converter errors to HTTP status codes and error codes.
// Order matters: first match wins (via errors.Is).
var httpMappings = []httpMapping{
	// Aborting input errors
	{domain.ErrMissingInput, http.StatusBadRequest, "MISSING_INPUT"},
	{timeconv.ErrEmptyInput, http.StatusBadRequest, "EMPTY_INPUT"},
	{timeconv.ErrNotNumeric, http.StatusBadRequest, "NOT_NUMERIC"},

	// Validation errors
	{domain.ErrInvalidInput, http.StatusBadRequest, "INVALID_ARGUMENT"},
	{domain.ErrInvalidLocation, http.StatusBadRequest, "INVALID_ARGUMENT"},
	{timeconv.ErrInvalidOffset, http.StatusBadRequest, "INVALID_OFFSET"},

	// Value outside a representation's range
	{timeconv.ErrInvalidDate, http.StatusUnprocessableEntity, "INVALID_DATE"},

	// Availability
	{domain.ErrUnavailable, http.StatusServiceUnavailable, "UNAVAILABLE"},
}

// ToHTTPError converts an error to an HTTP error.
func ToHTTPError(err error) HTTPError {
	if err == nil {
		return HTTPError{StatusCode: http.StatusOK}
	}
	for _, m := range httpMappings {
		if errors.Is(err, m.err) {
			return HTTPError{StatusCode: m.statusCode, Code: m.code, Message: err.Error()}
		}
	}
	// Never expose internal error details to clients
	return HTTPError{StatusCode: http.StatusInternalServerError, Code: "INTERNAL", Message: "internal error"}
}
