package bithumb

import (
	"context"
	"fmt"
	"net/url"
	"strconv"
)

const (
	orderChancePath = "/v1/orders/chance"
	ordersPath      = "/v1/orders"
	orderPath       = "/v1/order"
)

// GetOrderChance fetches the current fee rates, market constraints and
// account balances for the market. Balances change with every fill, so
// the snapshot must be re-fetched before each sizing decision.
func (c *Client) GetOrderChance(ctx context.Context, market string) (*OrderChance, error) {
	if market == "" {
		return nil, fmt.Errorf("bithumb: market is required")
	}
	params := url.Values{}
	params.Set("market", market)

	var chance OrderChance
	if err := c.get(ctx, orderChancePath, params, &chance); err != nil {
		return nil, err
	}
	if chance.Market.ID == "" {
		return nil, fmt.Errorf("%w: order chance missing market node", ErrMalformedResponse)
	}
	return &chance, nil
}

// PlaceOrder submits a new order and returns the exchange's view of it.
func (c *Client) PlaceOrder(ctx context.Context, req OrderRequest) (*Order, error) {
	params := url.Values{}
	params.Set("market", req.Market)
	params.Set("side", req.Side)
	params.Set("volume", strconv.FormatFloat(req.Volume, 'f', -1, 64))
	params.Set("price", strconv.FormatFloat(req.Price, 'f', -1, 64))
	params.Set("ord_type", req.OrdType)

	var order Order
	if err := c.post(ctx, ordersPath, params, &order); err != nil {
		return nil, err
	}
	if order.UUID == "" {
		return nil, fmt.Errorf("%w: order response missing uuid", ErrMalformedResponse)
	}
	return &order, nil
}

// ListOrders returns orders for the market in the given lifecycle state.
func (c *Client) ListOrders(ctx context.Context, market, state string, page, limit int) ([]Order, error) {
	if market == "" {
		return nil, fmt.Errorf("bithumb: market is required")
	}
	if page <= 0 {
		page = 1
	}
	if limit <= 0 {
		limit = 10
	}
	params := url.Values{}
	params.Set("market", market)
	params.Set("state", state)
	params.Set("page", strconv.Itoa(page))
	params.Set("limit", strconv.Itoa(limit))

	var orders []Order
	if err := c.get(ctx, ordersPath, params, &orders); err != nil {
		return nil, err
	}
	return orders, nil
}

// CancelOrder cancels the order identified by uuid.
func (c *Client) CancelOrder(ctx context.Context, uuid string) (*Order, error) {
	if uuid == "" {
		return nil, fmt.Errorf("bithumb: order uuid is required")
	}
	params := url.Values{}
	params.Set("uuid", uuid)

	var order Order
	if err := c.delete(ctx, orderPath, params, &order); err != nil {
		return nil, err
	}
	return &order, nil
}
