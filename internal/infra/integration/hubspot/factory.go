package hubspot

import (
	"context"
	"net/http"

	"github.com/sony/gobreaker"

	"github.com/brightforge/agency-leads/internal/usecase"
)

type TokenSource interface {
	AccessToken(ctx context.Context) (string, error)
}

// invalidator is implemented by token sources that cache, so a 401 from
// the CRM drops the stale token before the next call.
type invalidator interface {
	Invalidate()
}

// ClientFactory hands out a Client bound to whatever token the source
// currently holds. Clients are cheap; the http.Client is shared.
type ClientFactory struct {
	tokens     TokenSource
	baseURL    string
	httpClient *http.Client
	breaker    *gobreaker.CircuitBreaker
}

func NewClientFactory(tokens TokenSource, baseURL string, httpClient *http.Client) *ClientFactory {
	return &ClientFactory{
		tokens:     tokens,
		baseURL:    baseURL,
		httpClient: httpClient,
		breaker:    NewBreaker(nil),
	}
}

// WithBreaker replaces the default breaker, typically to observe state changes.
func (f *ClientFactory) WithBreaker(cb *gobreaker.CircuitBreaker) *ClientFactory {
	f.breaker = cb
	return f
}

func (f *ClientFactory) Client(ctx context.Context) (usecase.CRMClient, error) {
	token, err := f.tokens.AccessToken(ctx)
	if err != nil {
		return nil, err
	}
	client := NewClient(f.baseURL, token, f.httpClient).WithBreaker(f.breaker)
	if inv, ok := f.tokens.(invalidator); ok {
		client.onUnauthorized = inv.Invalidate
	}
	return client, nil
}
