// ABOUTME: Declarative endpoint descriptor pairing one request type with one response type
// ABOUTME: Encode builds the protocol request from struct tags, Decode checks status and parses JSON

package matrix

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"reflect"
	"slices"
	"strings"
)

// Request is the protocol-level form of an encoded endpoint request. Path is
// already escaped and relative; the Channel supplies scheme and authority.
type Request struct {
	Method string
	Path   string
	Query  url.Values
	Header http.Header
	Body   []byte
}

// Response is a fully read protocol-level response.
type Response struct {
	StatusCode int
	Header     http.Header
	Body       []byte
}

// Endpoint describes one API operation. A is Public or Bearer; Req and Resp
// are fixed by the declaration and cannot be mixed with another endpoint's.
type Endpoint[A Access, Req, Resp any] struct {
	// Name identifies the endpoint in logs and errors.
	Name   string
	Method string
	// Path is the route template, with {param} placeholders filled from
	// fields tagged path:"param".
	Path string
	// Success lists the accepted statuses. Empty means 200 only.
	Success []int
}

// RequiresAuth reports whether the endpoint must carry an access token.
func (e *Endpoint[A, Req, Resp]) RequiresAuth() bool {
	var access A
	return access.requiresAuth()
}

// Route returns "METHOD /path/{template}".
func (e *Endpoint[A, Req, Resp]) Route() string {
	return e.Method + " " + e.Path
}

// Encode turns req into a protocol request. It has no side effects.
func (e *Endpoint[A, Req, Resp]) Encode(req Req) (*Request, error) {
	if v, ok := any(req).(interface{ Validate() error }); ok {
		if err := v.Validate(); err != nil {
			return nil, &SerializationError{Endpoint: e.Name, Err: err}
		}
	}

	params, err := extractParams(req)
	if err != nil {
		err.Endpoint = e.Name
		return nil, err
	}

	path, err := expandPath(e.Path, params.path)
	if err != nil {
		err.Endpoint = e.Name
		return nil, err
	}

	encoded := &Request{
		Method: e.Method,
		Path:   path,
		Query:  params.query,
		Header: make(http.Header),
	}

	if hasBody(e.Method) {
		body, err := json.Marshal(req)
		if err != nil {
			return nil, &SerializationError{Endpoint: e.Name, Err: err}
		}
		encoded.Body = body
		encoded.Header.Set("Content-Type", "application/json")
	}
	encoded.Header.Set("Accept", "application/json")

	return encoded, nil
}

// Decode maps a protocol response to the endpoint's response type. A status
// outside Success yields *HTTPError; an unparseable success body yields
// *DeserializationError.
func (e *Endpoint[A, Req, Resp]) Decode(resp *Response) (*Resp, error) {
	if !e.accepts(resp.StatusCode) {
		return nil, newHTTPError(e.Name, resp)
	}

	var out Resp
	if len(bytes.TrimSpace(resp.Body)) == 0 && isEmptyStruct(reflect.TypeFor[Resp]()) {
		return &out, nil
	}
	if err := json.Unmarshal(resp.Body, &out); err != nil {
		return nil, &DeserializationError{
			Endpoint:   e.Name,
			StatusCode: resp.StatusCode,
			Body:       resp.Body,
			Err:        err,
		}
	}
	return &out, nil
}

func (e *Endpoint[A, Req, Resp]) accepts(status int) bool {
	if len(e.Success) == 0 {
		return status == http.StatusOK
	}
	return slices.Contains(e.Success, status)
}

// isEmptyStruct reports whether t carries no data, as for endpoints whose
// only result is the status code.
func isEmptyStruct(t reflect.Type) bool {
	return t.Kind() == reflect.Struct && t.NumField() == 0
}

func hasBody(method string) bool {
	switch method {
	case http.MethodGet, http.MethodHead, http.MethodDelete:
		return false
	default:
		return true
	}
}

// expandPath substitutes every {name} segment of template with the escaped
// path parameter of the same name.
func expandPath(template string, values map[string]string) (string, *SerializationError) {
	var b strings.Builder
	rest := template
	for {
		open := strings.IndexByte(rest, '{')
		if open < 0 {
			b.WriteString(rest)
			return b.String(), nil
		}
		end := strings.IndexByte(rest[open:], '}')
		if end < 0 {
			return "", &SerializationError{Err: fmt.Errorf("unterminated parameter in path %q", template)}
		}
		name := rest[open+1 : open+end]
		value, ok := values[name]
		if !ok || value == "" {
			return "", &SerializationError{Field: name, Err: fmt.Errorf("path parameter is empty")}
		}
		b.WriteString(rest[:open])
		b.WriteString(url.PathEscape(value))
		rest = rest[open+end+1:]
	}
}
