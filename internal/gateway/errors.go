// ABOUTME: Error taxonomy for identity-backend responses
// ABOUTME: Shared by the auth gateway and the authenticated requester

package gateway

import (
	"errors"
	"fmt"
)

// ErrEmptyResponse is returned when the backend answers with no body at all.
var ErrEmptyResponse = errors.New("backend returned an empty response")

// InvalidResponseError is returned when the backend body is present but is
// not JSON. The HTTP status is carried for diagnostics.
type InvalidResponseError struct {
	Status int
}

func (e *InvalidResponseError) Error() string {
	return fmt.Sprintf("backend returned a non-JSON response (status %d)", e.Status)
}

// RequestRejectedError is returned when the backend answers with a JSON body
// and a non-2xx status. Message carries the backend's "message" field when
// present, else a generic description.
type RequestRejectedError struct {
	Status  int
	Message string
}

func (e *RequestRejectedError) Error() string {
	return fmt.Sprintf("request rejected (status %d): %s", e.Status, e.Message)
}
