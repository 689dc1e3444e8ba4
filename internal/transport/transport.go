// ABOUTME: Concrete HTTP transport for matrix channels: net/http client plus a logging round-tripper
// ABOUTME: Sets the User-Agent, applies the request timeout and never logs credentials

package transport

import (
	"log/slog"
	"net/http"
	"net/url"
	"time"
)

// DefaultUserAgent is sent when Options.UserAgent is empty.
const DefaultUserAgent = "synadminctl"

// DefaultTimeout bounds a single request when Options.Timeout is zero.
const DefaultTimeout = 30 * time.Second

const redacted = "<redacted>"

// Options configures New.
type Options struct {
	Timeout   time.Duration
	UserAgent string
	Logger    *slog.Logger
	// Base is the underlying round-tripper. Nil means http.DefaultTransport.
	Base http.RoundTripper
}

// New returns an *http.Client, which satisfies matrix.Transport.
func New(opts Options) *http.Client {
	if opts.Timeout <= 0 {
		opts.Timeout = DefaultTimeout
	}
	if opts.UserAgent == "" {
		opts.UserAgent = DefaultUserAgent
	}
	if opts.Logger == nil {
		opts.Logger = slog.Default()
	}
	if opts.Base == nil {
		opts.Base = http.DefaultTransport
	}

	return &http.Client{
		Timeout: opts.Timeout,
		Transport: &loggingRoundTripper{
			next:      opts.Base,
			userAgent: opts.UserAgent,
			logger:    opts.Logger,
		},
		// Redirects would replay the Authorization header to another URL.
		CheckRedirect: func(*http.Request, []*http.Request) error {
			return http.ErrUseLastResponse
		},
	}
}

type loggingRoundTripper struct {
	next      http.RoundTripper
	userAgent string
	logger    *slog.Logger
}

func (t *loggingRoundTripper) RoundTrip(req *http.Request) (*http.Response, error) {
	if req.Header.Get("User-Agent") == "" {
		req = req.Clone(req.Context())
		req.Header.Set("User-Agent", t.userAgent)
	}

	start := time.Now()
	resp, err := t.next.RoundTrip(req)
	attrs := []any{
		"method", req.Method,
		"url", RedactURL(req.URL),
		"headers", RedactHeaders(req.Header),
		"duration", time.Since(start),
	}
	if err != nil {
		t.logger.Debug("http request failed", append(attrs, "error", err)...)
		return nil, err
	}
	t.logger.Debug("http request", append(attrs, "status", resp.StatusCode)...)
	return resp, nil
}

// RedactHeaders flattens h for logging with credentials masked.
func RedactHeaders(h http.Header) map[string]string {
	out := make(map[string]string, len(h))
	for name, values := range h {
		if len(values) == 0 {
			continue
		}
		switch http.CanonicalHeaderKey(name) {
		case "Authorization", "Cookie", "Set-Cookie":
			out[name] = redacted
		default:
			out[name] = values[0]
		}
	}
	return out
}

// RedactURL masks an access_token query parameter.
func RedactURL(u *url.URL) string {
	if u == nil {
		return ""
	}
	q := u.Query()
	if !q.Has("access_token") {
		return u.String()
	}
	q.Set("access_token", redacted)
	clean := *u
	clean.RawQuery = q.Encode()
	return clean.String()
}
