package client

import (
	"context"
	"net/http"

	"github.com/pkg/errors"

	"github.com/betbot/goclob/signing"
	"github.com/betbot/goclob/types"
)

// DeriveAPIKey recovers the API credentials previously created for the
// signing account. Nonce selects among multiple key sets; 0 is the default.
func (c *Client) DeriveAPIKey(ctx context.Context, nonce int64) (*types.APICredentials, error) {
	return c.apiKeyRequest(ctx, http.MethodGet, EndpointDeriveAPIKey, nonce)
}

// CreateAPIKey registers a new API key set for the signing account.
func (c *Client) CreateAPIKey(ctx context.Context, nonce int64) (*types.APICredentials, error) {
	return c.apiKeyRequest(ctx, http.MethodPost, EndpointCreateAPIKey, nonce)
}

// CreateOrDeriveAPIKey tries a fresh key first and falls back to deriving
// the existing one, which is what a returning account usually needs.
func (c *Client) CreateOrDeriveAPIKey(ctx context.Context, nonce int64) (*types.APICredentials, error) {
	creds, err := c.CreateAPIKey(ctx, nonce)
	if err == nil {
		return creds, nil
	}
	return c.DeriveAPIKey(ctx, nonce)
}

// apiKeyRequest performs one L1-authenticated credential request and
// validates the returned credential shape.
func (c *Client) apiKeyRequest(ctx context.Context, method, path string, nonce int64) (*types.APICredentials, error) {
	if err := c.requireSigner(); err != nil {
		return nil, err
	}
	if err := c.limits.Wait(ctx, method, path); err != nil {
		return nil, err
	}
	headers, err := signing.CreateL1Headers(c.signer, c.chain, nonce)
	if err != nil {
		return nil, err
	}

	var creds types.APICredentials
	resp, err := c.http.R().
		SetContext(ctx).
		SetHeaders(l1HeaderMap(headers)).
		SetResult(&creds).
		Execute(method, path)
	if err != nil {
		return nil, errors.Wrapf(err, "%s %s", method, path)
	}
	if resp.IsError() {
		return nil, errors.Errorf("%s %s: status %d: %s", method, path, resp.StatusCode(), resp.String())
	}
	if err := creds.Validate(); err != nil {
		return nil, errors.Wrap(err, "exchange returned malformed credentials")
	}
	return &creds, nil
}

func l1HeaderMap(h *types.L1Headers) map[string]string {
	return map[string]string{
		"POLY_ADDRESS":   h.Address,
		"POLY_SIGNATURE": h.Signature,
		"POLY_TIMESTAMP": h.Timestamp,
		"POLY_NONCE":     h.Nonce,
	}
}

func l2HeaderMap(h *types.L2Headers) map[string]string {
	return map[string]string{
		"POLY_ADDRESS":    h.Address,
		"POLY_SIGNATURE":  h.Signature,
		"POLY_TIMESTAMP":  h.Timestamp,
		"POLY_API_KEY":    h.APIKey,
		"POLY_PASSPHRASE": h.Passphrase,
	}
}
