// Package transport builds the two HTTP clients the service clients run on:
// a public client for unauthenticated calls (login, register, browse) and an
// authorized client that attaches the current bearer token to every request
// and escalates 401/403 responses through a single hook. Call sites never
// touch credentials themselves.
package transport

import (
	"net/http"
	"time"

	"github.com/google/uuid"
)

const requestIDHeader = "X-Request-Id"

// TokenSource yields the current bearer token. An empty string means no
// credential is held and the request goes out unauthenticated.
type TokenSource interface {
	Token() string
}

// AuthFailureHook runs when an authorized request comes back 401 or 403.
// The session manager uses it to force logout exactly once.
type AuthFailureHook func()

// NewPublic returns the client for unauthenticated endpoints.
func NewPublic(timeout time.Duration) *http.Client {
	if timeout == 0 {
		timeout = 10 * time.Second
	}
	return &http.Client{
		Timeout:   timeout,
		Transport: &requestIDTransport{base: http.DefaultTransport},
	}
}

// NewAuthorized returns the client for protected endpoints. Every request
// carries the token from source; every 401/403 response fires hook before
// the response reaches the caller.
func NewAuthorized(timeout time.Duration, source TokenSource, hook AuthFailureHook) *http.Client {
	if timeout == 0 {
		timeout = 10 * time.Second
	}
	return &http.Client{
		Timeout: timeout,
		Transport: &authTransport{
			base:   &requestIDTransport{base: http.DefaultTransport},
			source: source,
			hook:   hook,
		},
	}
}

// requestIDTransport tags outbound requests for server-side correlation.
type requestIDTransport struct {
	base http.RoundTripper
}

func (t *requestIDTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	clone := req.Clone(req.Context())
	if clone.Header.Get(requestIDHeader) == "" {
		clone.Header.Set(requestIDHeader, uuid.NewString())
	}
	return t.base.RoundTrip(clone)
}

type authTransport struct {
	base   http.RoundTripper
	source TokenSource
	hook   AuthFailureHook
}

func (t *authTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	clone := req.Clone(req.Context())
	if token := t.source.Token(); token != "" {
		clone.Header.Set("Authorization", "Bearer "+token)
	}
	resp, err := t.base.RoundTrip(clone)
	if err != nil {
		return nil, err
	}
	if resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden {
		if t.hook != nil {
			t.hook()
		}
	}
	return resp, nil
}
