// ABOUTME: Error taxonomy for endpoint calls: transport, serialization, deserialization, HTTP status
// ABOUTME: Each type carries enough context to print a useful diagnostic and unwraps to its cause

package matrix

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"maunium.net/go/mautrix"
)

// ErrMissingAccessToken is returned when an AuthenticatedChannel is built
// without a credential.
var ErrMissingAccessToken = errors.New("matrix: access token is required")

// maxErrorBody bounds how much of a response body is echoed in error strings.
const maxErrorBody = 512

// TransportError means the request was never answered: DNS, connection,
// TLS or body read failures.
type TransportError struct {
	Endpoint string
	Method   string
	URL      string
	Err      error
}

func (e *TransportError) Error() string {
	return fmt.Sprintf("matrix: %s: %s %s: %v", e.Endpoint, e.Method, e.URL, e.Err)
}

func (e *TransportError) Unwrap() error { return e.Err }

// SerializationError means the request value could not be turned into an
// HTTP request. This is a programming or input error, never a server one.
type SerializationError struct {
	Endpoint string
	Field    string
	Err      error
}

func (e *SerializationError) Error() string {
	if e.Field == "" {
		return fmt.Sprintf("matrix: %s: encoding request: %v", e.Endpoint, e.Err)
	}
	return fmt.Sprintf("matrix: %s: encoding field %s: %v", e.Endpoint, e.Field, e.Err)
}

func (e *SerializationError) Unwrap() error { return e.Err }

// DeserializationError means a success response body did not match the
// endpoint's response type. Body holds the raw bytes for diagnosis.
type DeserializationError struct {
	Endpoint   string
	StatusCode int
	Body       []byte
	Err        error
}

func (e *DeserializationError) Error() string {
	return fmt.Sprintf("matrix: %s: decoding %d response: %v (body: %s)",
		e.Endpoint, e.StatusCode, e.Err, truncateBody(e.Body))
}

func (e *DeserializationError) Unwrap() error { return e.Err }

// HTTPError means the server answered with a status the endpoint does not
// expect. Response is the complete response; Matrix is set when the body is
// a standard Matrix error object.
type HTTPError struct {
	Endpoint string
	Response *Response
	Matrix   *mautrix.RespError
}

func newHTTPError(endpoint string, resp *Response) *HTTPError {
	httpErr := &HTTPError{Endpoint: endpoint, Response: resp}

	var respErr mautrix.RespError
	if json.Unmarshal(resp.Body, &respErr) == nil && respErr.ErrCode != "" {
		httpErr.Matrix = &respErr
	}
	return httpErr
}

// StatusCode returns the HTTP status of the offending response.
func (e *HTTPError) StatusCode() int {
	return e.Response.StatusCode
}

// ErrCode returns the Matrix errcode (e.g. "M_FORBIDDEN"), or "" when the
// body was not a Matrix error.
func (e *HTTPError) ErrCode() string {
	if e.Matrix == nil {
		return ""
	}
	return e.Matrix.ErrCode
}

func (e *HTTPError) Error() string {
	status := e.Response.StatusCode
	if e.Matrix != nil {
		return fmt.Sprintf("matrix: %s: %d %s: %s", e.Endpoint, status, e.Matrix.ErrCode, e.Matrix.Err)
	}
	return fmt.Sprintf("matrix: %s: unexpected status %d %s: %s",
		e.Endpoint, status, http.StatusText(status), truncateBody(e.Response.Body))
}

// IsStatus reports whether err is an *HTTPError with the given status.
func IsStatus(err error, status int) bool {
	var httpErr *HTTPError
	if errors.As(err, &httpErr) {
		return httpErr.StatusCode() == status
	}
	return false
}

func truncateBody(body []byte) string {
	if len(body) <= maxErrorBody {
		return string(body)
	}
	return string(body[:maxErrorBody]) + "..."
}
