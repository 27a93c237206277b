package bithumb

import (
	"context"
	"fmt"
	"net/url"
	"strconv"
)

const candlesPath = "/v1/candles/minutes/1"

// GetCandles fetches the count most recent one-minute candles for the
// market and returns them oldest first; every downstream computation
// assumes chronological order. A partially malformed response fails the
// whole call, no partial results.
func (c *Client) GetCandles(ctx context.Context, market string, count int) ([]Candle, error) {
	if market == "" {
		return nil, fmt.Errorf("bithumb: market is required")
	}
	if count <= 0 {
		return nil, fmt.Errorf("bithumb: candle count must be positive")
	}

	params := url.Values{}
	params.Set("market", market)
	params.Set("count", strconv.Itoa(count))

	var candles []Candle
	if err := c.get(ctx, candlesPath, params, &candles); err != nil {
		return nil, err
	}

	for i, candle := range candles {
		if candle.Market == "" || candle.TradePrice <= 0 {
			return nil, fmt.Errorf("%w: candle %d missing market or trade price", ErrMalformedResponse, i)
		}
	}

	// Exchange order is newest first.
	for i, j := 0, len(candles)-1; i < j; i, j = i+1, j-1 {
		candles[i], candles[j] = candles[j], candles[i]
	}
	return candles, nil
}

// ClosingPrices extracts the chronological closing price series used as
// indicator input.
func ClosingPrices(candles []Candle) []float64 {
	prices := make([]float64, len(candles))
	for i, candle := range candles {
		prices[i] = candle.TradePrice
	}
	return prices
}
