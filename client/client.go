// Package client is the exchange facade: it builds, prices, and signs orders
// locally, then submits and manages them over the exchange's HTTP API. Book
// snapshots are inputs; fetching them stays with the caller.
package client

import (
	"context"
	"net/http"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/pkg/errors"

	"github.com/betbot/goclob/orders"
	"github.com/betbot/goclob/pkg/ratelimit"
	"github.com/betbot/goclob/signing"
	"github.com/betbot/goclob/types"
)

// DefaultHost is the production exchange API.
const DefaultHost = "https://clob.polymarket.com"

// Options configure a client. Zero values fall back to the production host
// and Polygon. Signer may be nil for a client that only reads public data;
// Creds may be nil until DeriveAPIKey supplies them.
type Options struct {
	Host   string
	Chain  types.Chain
	Signer signing.Signer
	Creds  *types.APICredentials
	// Salt overrides the order salt source, for reproducible orders.
	Salt orders.SaltFunc
}

// Client talks to one exchange deployment on behalf of one account.
// All methods are safe for concurrent use.
type Client struct {
	http    *resty.Client
	host    string
	chain   types.Chain
	signer  signing.Signer
	builder *orders.Builder
	creds   *types.APICredentials
	limits  *ratelimit.Registry

	mu      sync.RWMutex
	negRisk map[string]bool
}

// New builds a client. Requests are paced against the exchange's published
// endpoint budgets and retry up to three times on transport errors, rate
// limiting, and server errors, honoring Retry-After on 429s.
func New(opts Options) *Client {
	host := strings.TrimSuffix(opts.Host, "/")
	if host == "" {
		host = DefaultHost
	}
	chain := opts.Chain
	if chain == 0 {
		chain = types.ChainPolygon
	}

	httpClient := resty.New().
		SetBaseURL(host).
		SetTimeout(30 * time.Second).
		SetRetryCount(3).
		SetRetryWaitTime(1 * time.Second).
		SetRetryMaxWaitTime(10 * time.Second).
		AddRetryCondition(func(resp *resty.Response, err error) bool {
			if err != nil {
				return true
			}
			return resp.StatusCode() == http.StatusTooManyRequests ||
				resp.StatusCode() >= http.StatusInternalServerError
		}).
		SetRetryAfter(func(_ *resty.Client, resp *resty.Response) (time.Duration, error) {
			if resp != nil && resp.StatusCode() == http.StatusTooManyRequests {
				if header := resp.Header().Get("Retry-After"); header != "" {
					if seconds, err := strconv.Atoi(header); err == nil {
						return time.Duration(seconds) * time.Second, nil
					}
				}
				return 10 * time.Second, nil
			}
			return 0, nil
		}).
		SetHeader("Accept", "application/json").
		SetHeader("User-Agent", "goclob")

	c := &Client{
		http:    httpClient,
		host:    host,
		chain:   chain,
		signer:  opts.Signer,
		creds:   opts.Creds,
		limits:  ratelimit.NewRegistry(),
		negRisk: make(map[string]bool),
	}
	if opts.Signer != nil {
		c.builder = orders.NewBuilder(opts.Signer, opts.Salt)
	}
	return c
}

// Host returns the API base URL the client was built with.
func (c *Client) Host() string { return c.host }

// Chain returns the deployment the client signs for.
func (c *Client) Chain() types.Chain { return c.chain }

// SetCredentials attaches API credentials, typically after DeriveAPIKey.
func (c *Client) SetCredentials(creds *types.APICredentials) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.creds = creds
}

func (c *Client) credentials() *types.APICredentials {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.creds
}

// RegisterToken records which exchange variant a token trades on. Order
// signatures route to the registered variant, and market-wide cancellations
// are validated against it.
func (c *Client) RegisterToken(tokenID string, negRisk bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.negRisk[tokenID] = negRisk
}

// TokenNegRisk reports the registered variant for a token and whether the
// token is registered at all.
func (c *Client) TokenNegRisk(tokenID string) (negRisk, registered bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	negRisk, registered = c.negRisk[tokenID]
	return negRisk, registered
}

func (c *Client) requireSigner() error {
	if c.signer == nil {
		return types.ErrMissingSigner
	}
	return nil
}

// ServerTime fetches the exchange's Unix timestamp. Signed headers carry the
// local clock, and the exchange rejects them when the skew grows too large;
// comparing against this catches a drifting clock before orders start failing.
func (c *Client) ServerTime(ctx context.Context) (int64, error) {
	resp, err := c.http.R().
		SetContext(ctx).
		Get(EndpointTime)
	if err != nil {
		return 0, errors.Wrap(err, "GET "+EndpointTime)
	}
	if resp.IsError() {
		return 0, errors.Errorf("GET %s: status %d: %s", EndpointTime, resp.StatusCode(), resp.String())
	}
	ts, err := strconv.ParseInt(strings.TrimSpace(resp.String()), 10, 64)
	if err != nil {
		return 0, errors.Wrap(err, "unexpected time payload")
	}
	return ts, nil
}
