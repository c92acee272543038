package ownhttp

import (
	"net/http"
	"time"

	"golang.org/x/time/rate"
)

// New returns a new http.Client with the AddHeaderTransport (setting the User-Agent header)
func New() *http.Client {
	return &http.Client{Transport: NewAddHeaderTransport(nil)}
}

// NewThrottled returns a http.Client that sets the User-Agent header and
// never issues requests faster than the given limiter allows. Used for
// identity provider endpoints, which rate limit aggressively.
func NewThrottled(limiter *rate.Limiter) *http.Client {
	return &http.Client{
		Timeout: 30 * time.Second,
		Transport: &throttleTransport{
			next:    NewAddHeaderTransport(nil),
			limiter: limiter,
		},
	}
}

// throttleTransport holds each request until the limiter hands out a
// token. Waiting honors the request context, cancellation still works
// while queued.
type throttleTransport struct {
	next    http.RoundTripper
	limiter *rate.Limiter
}

func (t *throttleTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	if err := t.limiter.Wait(req.Context()); err != nil {
		return nil, err
	}
	return t.next.RoundTrip(req)
}
