package services

import (
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"
)

var (
	// ErrEmptyResult is returned when the language service yields no usable keywords.
	ErrEmptyResult = errors.New("no se pudieron generar términos de búsqueda")
	// ErrNotConfigured is returned when a service is called without credentials.
	ErrNotConfigured = errors.New("service not configured")
	// ErrInvalidMediaType is returned when an unsupported media type is provided.
	ErrInvalidMediaType = errors.New("invalid media type")
)

// TransportError is any failed call to an external API: a non-success
// status or a network failure. 4xx and 5xx are not distinguished.
type TransportError struct {
	Service    string
	StatusCode int
	Status     string
	Err        error
}

func (e *TransportError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("error fetching from %s: %v", e.Service, e.Err)
	}
	return fmt.Sprintf("error fetching from %s: %s", e.Service, e.Status)
}

func (e *TransportError) Unwrap() error {
	return e.Err
}

func statusError(service string, resp *http.Response) *TransportError {
	status := http.StatusText(resp.StatusCode)
	if status == "" {
		status = strings.TrimSpace(strings.TrimPrefix(resp.Status, fmt.Sprint(resp.StatusCode)))
	}
	return &TransportError{Service: service, StatusCode: resp.StatusCode, Status: status}
}

// networkError strips the request URL (which carries the API key) from err.
func networkError(service string, err error) *TransportError {
	var urlErr *url.Error
	if errors.As(err, &urlErr) {
		err = urlErr.Err
	}
	return &TransportError{Service: service, Err: err}
}
