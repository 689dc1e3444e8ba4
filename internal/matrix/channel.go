// ABOUTME: Channel and AuthenticatedChannel drive endpoint descriptors through a Transport
// ABOUTME: The access marker decides whether the bearer token is attached to a request

package matrix

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"
)

// maxResponseBytes caps how much of a response body is read.
const maxResponseBytes = 8 << 20

// Transport performs the actual network exchange. *http.Client satisfies it.
type Transport interface {
	Do(req *http.Request) (*http.Response, error)
}

// Channel is an anonymous connection to one server. It never holds a
// credential and is immutable after construction.
type Channel struct {
	transport Transport
	baseURL   *url.URL
	logger    *slog.Logger
}

// NewChannel creates an anonymous channel to baseURL, which must be an
// absolute http(s) URL. A nil logger uses slog.Default().
func NewChannel(transport Transport, baseURL string, logger *slog.Logger) (*Channel, error) {
	if transport == nil {
		return nil, errors.New("matrix: transport is required")
	}
	u, err := ParseBaseURL(baseURL)
	if err != nil {
		return nil, err
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Channel{
		transport: transport,
		baseURL:   u,
		logger:    logger.With("base_url", u.String()),
	}, nil
}

// BaseURL returns a copy of the channel's base URL.
func (c *Channel) BaseURL() *url.URL {
	u := *c.baseURL
	return &u
}

// Authenticate returns an authenticated channel to the same server.
func (c *Channel) Authenticate(accessToken string) (*AuthenticatedChannel, error) {
	if accessToken == "" {
		return nil, ErrMissingAccessToken
	}
	return &AuthenticatedChannel{Channel: *c, accessToken: accessToken}, nil
}

// AuthenticatedChannel is a Channel that carries an access token.
type AuthenticatedChannel struct {
	Channel
	accessToken string
}

// NewAuthenticatedChannel creates a channel that attaches accessToken to
// every endpoint marked Bearer. An empty token is rejected.
func NewAuthenticatedChannel(transport Transport, baseURL, accessToken string, logger *slog.Logger) (*AuthenticatedChannel, error) {
	ch, err := NewChannel(transport, baseURL, logger)
	if err != nil {
		return nil, err
	}
	return ch.Authenticate(accessToken)
}

// ParseBaseURL parses raw and requires an absolute http or https URL.
func ParseBaseURL(raw string) (*url.URL, error) {
	u, err := url.Parse(strings.TrimSpace(raw))
	if err != nil {
		return nil, fmt.Errorf("matrix: invalid base URL %q: %w", raw, err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return nil, fmt.Errorf("matrix: invalid base URL %q: scheme must be http or https", raw)
	}
	if u.Host == "" {
		return nil, fmt.Errorf("matrix: invalid base URL %q: missing host", raw)
	}
	u.Path = strings.TrimRight(u.Path, "/")
	u.RawPath = ""
	u.RawQuery = ""
	u.Fragment = ""
	return u, nil
}

// Call sends a public endpoint through an anonymous channel.
func Call[Req, Resp any](ctx context.Context, ch *Channel, ep *Endpoint[Public, Req, Resp], req Req) (*Resp, error) {
	resp, _, err := roundTrip(ctx, ch, ep, req, "")
	return resp, err
}

// CallAuthenticated sends any endpoint through an authenticated channel. The
// token is attached only when the endpoint is marked Bearer, so public
// endpoints on third-party servers never see it.
func CallAuthenticated[A Access, Req, Resp any](ctx context.Context, ch *AuthenticatedChannel, ep *Endpoint[A, Req, Resp], req Req) (*Resp, error) {
	resp, _, err := CallAuthenticatedStatus(ctx, ch, ep, req)
	return resp, err
}

// CallAuthenticatedStatus is CallAuthenticated that also returns the success
// status, for endpoints that accept more than one.
func CallAuthenticatedStatus[A Access, Req, Resp any](ctx context.Context, ch *AuthenticatedChannel, ep *Endpoint[A, Req, Resp], req Req) (*Resp, int, error) {
	token := ""
	if ep.RequiresAuth() {
		token = ch.accessToken
	}
	return roundTrip(ctx, &ch.Channel, ep, req, token)
}

func roundTrip[A Access, Req, Resp any](ctx context.Context, ch *Channel, ep *Endpoint[A, Req, Resp], req Req, token string) (*Resp, int, error) {
	encoded, err := ep.Encode(req)
	if err != nil {
		return nil, 0, err
	}

	if token != "" {
		encoded.Header.Set("Authorization", "Bearer "+token)
	}

	target := ch.resolve(encoded)
	httpReq, err := http.NewRequestWithContext(ctx, encoded.Method, target, bodyReader(encoded.Body))
	if err != nil {
		return nil, 0, &SerializationError{Endpoint: ep.Name, Err: err}
	}
	httpReq.Header = encoded.Header

	start := time.Now()
	httpResp, err := ch.transport.Do(httpReq)
	if err != nil {
		return nil, 0, &TransportError{Endpoint: ep.Name, Method: encoded.Method, URL: target, Err: err}
	}
	defer httpResp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(httpResp.Body, maxResponseBytes+1))
	if err != nil {
		return nil, 0, &TransportError{Endpoint: ep.Name, Method: encoded.Method, URL: target, Err: fmt.Errorf("reading response body: %w", err)}
	}
	if len(body) > maxResponseBytes {
		return nil, 0, &TransportError{Endpoint: ep.Name, Method: encoded.Method, URL: target, Err: fmt.Errorf("response body exceeds %d bytes", maxResponseBytes)}
	}

	ch.logger.Debug("endpoint call",
		"endpoint", ep.Name,
		"method", encoded.Method,
		"path", encoded.Path,
		"status", httpResp.StatusCode,
		"authenticated", token != "",
		"duration", time.Since(start),
	)

	out, err := ep.Decode(&Response{
		StatusCode: httpResp.StatusCode,
		Header:     httpResp.Header,
		Body:       body,
	})
	if err != nil {
		return nil, httpResp.StatusCode, err
	}
	return out, httpResp.StatusCode, nil
}

// resolve keeps the encoded path and query but takes scheme, authority and
// any path prefix from the channel's base URL.
func (c *Channel) resolve(req *Request) string {
	target := c.baseURL.Scheme + "://" + c.baseURL.Host + c.baseURL.EscapedPath() + req.Path
	if len(req.Query) > 0 {
		target += "?" + req.Query.Encode()
	}
	return target
}

func bodyReader(body []byte) io.Reader {
	if body == nil {
		return nil
	}
	return bytes.NewReader(body)
}
