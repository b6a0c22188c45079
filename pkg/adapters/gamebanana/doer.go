package gamebanana

import (
	"fmt"
	"net/http"

	"golang.org/x/time/rate"
)

// Doer sends HTTP requests. *http.Client satisfies it.
type Doer interface {
	Do(request *http.Request) (*http.Response, error)
}

// RateLimitedDoer waits on a token bucket before every request
type RateLimitedDoer struct {
	client  Doer
	limiter *rate.Limiter
}

// NewRateLimitedDoer wraps client with limiter
func NewRateLimitedDoer(client Doer, limiter *rate.Limiter) *RateLimitedDoer {
	return &RateLimitedDoer{
		client:  client,
		limiter: limiter,
	}
}

// Do blocks until the limiter allows the request or its context ends
func (d *RateLimitedDoer) Do(request *http.Request) (*http.Response, error) {
	if err := d.limiter.Wait(request.Context()); err != nil {
		return nil, fmt.Errorf("rate limit wait: %w", err)
	}
	return d.client.Do(request)
}
