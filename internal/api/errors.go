package api

import (
	"errors"
	"fmt"
	"net/http"
)

// APIError is a non-2xx backend response, carrying the server-provided
// message so call sites can surface it directly.
type APIError struct {
	Status  int
	Message string
}

func (e *APIError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("api: unexpected status %d", e.Status)
	}
	return fmt.Sprintf("api: %s (status %d)", e.Message, e.Status)
}

// IsStatus reports whether err is an APIError with the given status code
func IsStatus(err error, status int) bool {
	var apiErr *APIError
	return errors.As(err, &apiErr) && apiErr.Status == status
}

// IsUnauthorized reports whether err is a 401 response
func IsUnauthorized(err error) bool {
	return IsStatus(err, http.StatusUnauthorized)
}

// IsForbidden reports whether err is a 403 response
func IsForbidden(err error) bool {
	return IsStatus(err, http.StatusForbidden)
}

// IsNotFound reports whether err is a 404 response
func IsNotFound(err error) bool {
	return IsStatus(err, http.StatusNotFound)
}

// Message extracts the server-provided message from err, falling back to
// err.Error() for transport failures.
func Message(err error) string {
	var apiErr *APIError
	if errors.As(err, &apiErr) && apiErr.Message != "" {
		return apiErr.Message
	}
	if err != nil {
		return err.Error()
	}
	return ""
}
