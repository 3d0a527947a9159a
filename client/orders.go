package client

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/pkg/errors"

	"github.com/betbot/goclob/orders"
	"github.com/betbot/goclob/signing"
	"github.com/betbot/goclob/types"
)

// CreateOrder builds, prices, and signs an order in one call. The signature
// is routed to the exchange variant registered for the token; unregistered
// tokens sign against the plain exchange.
func (c *Client) CreateOrder(strategy types.Strategy, input orders.OrderInput) (*types.SignedOrder, error) {
	if err := c.requireSigner(); err != nil {
		return nil, err
	}
	order, err := c.builder.BuildOrder(strategy, input)
	if err != nil {
		return nil, err
	}
	negRisk, _ := c.TokenNegRisk(input.TokenID)
	return signing.SignOrder(c.signer, order, c.chain, signing.TypedDataOptions{NegRisk: negRisk})
}

// PlaceOrder submits a signed order under the given time-in-force.
func (c *Client) PlaceOrder(ctx context.Context, order *types.SignedOrder, orderType types.OrderType) (*types.OrderResponse, error) {
	if order == nil {
		return nil, errors.New("nil order")
	}
	creds := c.credentials()
	if err := creds.Validate(); err != nil {
		return nil, err
	}

	payload := types.PostOrderRequest{
		Order:     order,
		Owner:     creds.Key,
		OrderType: orderType,
	}
	var out types.OrderResponse
	if err := c.doL2(ctx, http.MethodPost, EndpointPostOrder, nil, payload, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// CreateAndPlaceOrder runs the full pipeline: build, sign, submit.
func (c *Client) CreateAndPlaceOrder(ctx context.Context, strategy types.Strategy, input orders.OrderInput, orderType types.OrderType) (*types.OrderResponse, error) {
	signed, err := c.CreateOrder(strategy, input)
	if err != nil {
		return nil, err
	}
	return c.PlaceOrder(ctx, signed, orderType)
}

// CancelOrder cancels a single resting order by id.
func (c *Client) CancelOrder(ctx context.Context, orderID string) (*types.CancelResponse, error) {
	body := map[string]string{"orderID": orderID}
	var out types.CancelResponse
	if err := c.doL2(ctx, http.MethodDelete, EndpointCancelOrder, nil, body, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// CancelOrders cancels a batch of resting orders by id.
func (c *Client) CancelOrders(ctx context.Context, orderIDs []string) (*types.CancelResponse, error) {
	var out types.CancelResponse
	if err := c.doL2(ctx, http.MethodDelete, EndpointCancelOrders, nil, orderIDs, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// CancelAll cancels every resting order the account owns.
func (c *Client) CancelAll(ctx context.Context) (*types.CancelResponse, error) {
	var out types.CancelResponse
	if err := c.doL2(ctx, http.MethodDelete, EndpointCancelAll, nil, nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// CancelMarketOrders cancels every resting order on one token. The token
// must be registered against the variant the call names; a missing or
// conflicting registration fails with ErrInvalidMultiOutcomeConfig before
// anything is sent.
func (c *Client) CancelMarketOrders(ctx context.Context, tokenID string, negRisk bool) (*types.CancelResponse, error) {
	registered, ok := c.TokenNegRisk(tokenID)
	if !ok {
		return nil, errors.Wrapf(types.ErrInvalidMultiOutcomeConfig,
			"token %s is not registered", tokenID)
	}
	if registered != negRisk {
		return nil, errors.Wrapf(types.ErrInvalidMultiOutcomeConfig,
			"token %s is registered with negRisk=%t", tokenID, registered)
	}

	body := map[string]string{"asset_id": tokenID}
	var out types.CancelResponse
	if err := c.doL2(ctx, http.MethodDelete, EndpointCancelMarketOrders, nil, body, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// GetOpenOrders lists the account's resting orders, walking every cursor
// page. An empty market lists all markets.
func (c *Client) GetOpenOrders(ctx context.Context, market string) ([]types.OpenOrder, error) {
	var all []types.OpenOrder
	cursor := ""
	for {
		params := map[string]string{}
		if market != "" {
			params["market"] = market
		}
		if cursor != "" {
			params["next_cursor"] = cursor
		}

		var page types.OpenOrdersResponse
		if err := c.doL2(ctx, http.MethodGet, EndpointOpenOrders, params, nil, &page); err != nil {
			return nil, err
		}
		all = append(all, page.Data...)

		if page.NextCursor == "" || page.NextCursor == endCursor || page.NextCursor == cursor {
			return all, nil
		}
		cursor = page.NextCursor
	}
}

// doL2 sends one authenticated request. The HMAC covers method, path, and
// the exact body bytes sent; query parameters stay outside the signature.
// Rate-limit pacing runs before the headers are signed so the signed
// timestamp stays fresh.
func (c *Client) doL2(ctx context.Context, method, path string, params map[string]string, body, out any) error {
	if err := c.requireSigner(); err != nil {
		return err
	}
	creds := c.credentials()
	if err := creds.Validate(); err != nil {
		return err
	}
	if err := c.limits.Wait(ctx, method, path); err != nil {
		return err
	}

	bodyStr := ""
	if body != nil {
		raw, err := json.Marshal(body)
		if err != nil {
			return errors.Wrap(err, "encode request body")
		}
		bodyStr = string(raw)
	}

	headers, err := signing.CreateL2Headers(c.signer.Address(), creds, types.RequestArgs{
		Method: method,
		Path:   path,
		Body:   bodyStr,
	})
	if err != nil {
		return err
	}

	req := c.http.R().
		SetContext(ctx).
		SetHeaders(l2HeaderMap(headers))
	if len(params) > 0 {
		req.SetQueryParams(params)
	}
	if bodyStr != "" {
		req.SetHeader("Content-Type", "application/json").SetBody(bodyStr)
	}
	if out != nil {
		req.SetResult(out)
	}

	resp, err := req.Execute(method, path)
	if err != nil {
		return errors.Wrapf(err, "%s %s", method, path)
	}
	if resp.IsError() {
		return errors.Errorf("%s %s: status %d: %s", method, path, resp.StatusCode(), resp.String())
	}
	return nil
}
