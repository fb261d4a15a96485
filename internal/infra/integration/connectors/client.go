package connectors

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"

	"github.com/brightforge/agency-leads/internal/infra/metrics"
)

const (
	identityHeader = "X_REPLIT_TOKEN"
	connectorName  = "hubspot"

	defaultExchangeTimeout = 15 * time.Second
)

// Identity carries the two environment secrets that can authenticate this
// process against the connector host. ReplIdentity wins when both are set.
type Identity struct {
	ReplIdentity   string
	WebReplRenewal string
}

func (i Identity) header() (string, bool) {
	switch {
	case i.ReplIdentity != "":
		return "repl " + i.ReplIdentity, true
	case i.WebReplRenewal != "":
		return "depl " + i.WebReplRenewal, true
	default:
		return "", false
	}
}

func (i Identity) Configured() bool {
	_, ok := i.header()
	return ok
}

// Provider exchanges the process identity for a HubSpot access token and
// keeps it in a TokenCache until it expires.
type Provider struct {
	endpoint   string
	identity   Identity
	httpClient *http.Client
	cache      *TokenCache
	logger     *zap.Logger
	refresh    singleflight.Group
}

// NewProvider builds a provider for the given connector host. The host may
// carry an explicit scheme; https is assumed otherwise.
func NewProvider(hostname string, identity Identity, cache *TokenCache, httpClient *http.Client, logger *zap.Logger) *Provider {
	if httpClient == nil {
		httpClient = http.DefaultClient
	}
	if cache == nil {
		cache = NewTokenCache(nil)
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Provider{
		endpoint:   connectionEndpoint(hostname),
		identity:   identity,
		httpClient: httpClient,
		cache:      cache,
		logger:     logger,
	}
}

func connectionEndpoint(hostname string) string {
	base := strings.TrimRight(hostname, "/")
	if !strings.HasPrefix(base, "http://") && !strings.HasPrefix(base, "https://") {
		base = "https://" + base
	}
	q := url.Values{}
	q.Set("include_secrets", "true")
	q.Set("connector_names", connectorName)
	return base + "/api/v2/connection?" + q.Encode()
}

// AccessToken returns a cached token while it is valid and otherwise
// performs a single exchange. Concurrent misses share one exchange, which
// runs detached from any one caller so a cancelled request only fails
// itself.
func (p *Provider) AccessToken(ctx context.Context) (string, error) {
	if token, ok := p.cache.Get(); ok {
		return token, nil
	}

	header, ok := p.identity.header()
	if !ok {
		return "", &CredentialError{Reason: "no identity secret configured"}
	}

	flight := p.refresh.DoChan(connectorName, func() (interface{}, error) {
		if token, ok := p.cache.Get(); ok {
			return token, nil
		}
		exchangeCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), p.exchangeTimeout())
		defer cancel()
		return p.exchange(exchangeCtx, header)
	})

	select {
	case <-ctx.Done():
		return "", &CredentialError{Reason: "token exchange abandoned", Err: ctx.Err()}
	case res := <-flight:
		if res.Err != nil {
			return "", res.Err
		}
		if res.Shared {
			p.logger.Debug("crm token refresh shared with concurrent caller")
		}
		return res.Val.(string), nil
	}
}

func (p *Provider) exchangeTimeout() time.Duration {
	if p.httpClient.Timeout > 0 {
		return p.httpClient.Timeout
	}
	return defaultExchangeTimeout
}

func (p *Provider) exchange(ctx context.Context, header string) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, p.endpoint, nil)
	if err != nil {
		return "", &CredentialError{Reason: "build token request", Err: err}
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set(identityHeader, header)

	resp, err := p.httpClient.Do(req)
	if err != nil {
		metrics.RecordTokenRefresh("error")
		return "", &CredentialError{Reason: "token exchange unreachable", Err: err}
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		metrics.RecordTokenRefresh("error")
		return "", &CredentialError{Reason: "read token response", Err: err}
	}

	if resp.StatusCode != http.StatusOK {
		metrics.RecordTokenRefresh("error")
		return "", &CredentialError{
			Reason: "token exchange rejected",
			Err:    fmt.Errorf("status %d: %s", resp.StatusCode, string(body)),
		}
	}

	var payload connectionResponse
	if err := json.Unmarshal(body, &payload); err != nil {
		metrics.RecordTokenRefresh("error")
		return "", &CredentialError{Reason: "decode token response", Err: err}
	}

	if len(payload.Items) == 0 || payload.Items[0].Settings.token() == "" {
		metrics.RecordTokenRefresh("error")
		return "", &CredentialError{Reason: "connector returned no access token"}
	}

	settings := payload.Items[0].Settings
	cred := Credential{
		AccessToken: settings.token(),
		ExpiresAt:   settings.expiry(),
	}
	p.cache.Set(cred)
	metrics.RecordTokenRefresh("ok")

	p.logger.Info("crm access token refreshed", zap.Time("expires_at", cred.ExpiresAt))
	return cred.AccessToken, nil
}

// Invalidate forgets the cached token, e.g. after the CRM rejected it.
func (p *Provider) Invalidate() {
	p.cache.Invalidate()
}

// StaticTokenSource serves a fixed private-app token.
type StaticTokenSource string

func (s StaticTokenSource) AccessToken(context.Context) (string, error) {
	if s == "" {
		return "", &CredentialError{Reason: "empty static access token"}
	}
	return string(s), nil
}
