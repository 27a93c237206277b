package bithumb

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"
)

// Number decodes a JSON value that the exchange serialises either as a
// bare number or as a numeric string (balances and fees arrive quoted).
type Number float64

func (n *Number) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) == 0 || string(data) == "null" {
		*n = 0
		return nil
	}
	if data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		if s == "" {
			*n = 0
			return nil
		}
		v, err := strconv.ParseFloat(s, 64)
		if err != nil {
			return fmt.Errorf("bithumb: numeric string %q: %w", s, err)
		}
		*n = Number(v)
		return nil
	}
	var v float64
	if err := json.Unmarshal(data, &v); err != nil {
		return err
	}
	*n = Number(v)
	return nil
}

// Float64 returns the underlying value.
func (n Number) Float64() float64 { return float64(n) }

// Candle is one fixed-interval OHLCV bar as returned by the candles
// endpoint. The exchange lists newest first; GetCandles reverses.
type Candle struct {
	Market               string  `json:"market"`
	CandleDateTimeUTC    string  `json:"candle_date_time_utc"`
	CandleDateTimeKST    string  `json:"candle_date_time_kst"`
	OpeningPrice         float64 `json:"opening_price"`
	HighPrice            float64 `json:"high_price"`
	LowPrice             float64 `json:"low_price"`
	TradePrice           float64 `json:"trade_price"`
	Timestamp            int64   `json:"timestamp"`
	CandleAccTradePrice  float64 `json:"candle_acc_trade_price"`
	CandleAccTradeVolume float64 `json:"candle_acc_trade_volume"`
	Unit                 int     `json:"unit"`
}

// Account is one side's balance snapshot inside an order chance.
type Account struct {
	Currency            string `json:"currency"`
	Balance             Number `json:"balance"`
	Locked              Number `json:"locked"`
	AvgBuyPrice         Number `json:"avg_buy_price"`
	AvgBuyPriceModified bool   `json:"avg_buy_price_modified"`
	UnitCurrency        string `json:"unit_currency"`
}

// OrderConstraint carries per-side market limits.
type OrderConstraint struct {
	Currency  string `json:"currency"`
	PriceUnit Number `json:"price_unit"`
	MinTotal  Number `json:"min_total"`
}

// MarketInfo describes the market's order rules inside an order chance.
type MarketInfo struct {
	ID         string          `json:"id"`
	Name       string          `json:"name"`
	OrderTypes []string        `json:"order_types"`
	AskTypes   []string        `json:"ask_types"`
	BidTypes   []string        `json:"bid_types"`
	OrderSides []string        `json:"order_sides"`
	Bid        OrderConstraint `json:"bid"`
	Ask        OrderConstraint `json:"ask"`
	MaxTotal   Number          `json:"max_total"`
	State      string          `json:"state"`
}

// OrderChance is the exchange-reported snapshot of fees, balances and
// constraints for one market. It is fetched fresh before every sizing
// decision and never cached.
type OrderChance struct {
	BidFee      Number     `json:"bid_fee"`
	AskFee      Number     `json:"ask_fee"`
	MakerBidFee Number     `json:"maker_bid_fee"`
	MakerAskFee Number     `json:"maker_ask_fee"`
	Market      MarketInfo `json:"market"`
	BidAccount  Account    `json:"bid_account"`
	AskAccount  Account    `json:"ask_account"`
}

// Order is the exchange's view of a submitted order.
type Order struct {
	UUID            string `json:"uuid"`
	Side            string `json:"side"`
	OrdType         string `json:"ord_type"`
	Price           Number `json:"price"`
	State           string `json:"state"`
	Market          string `json:"market"`
	CreatedAt       string `json:"created_at"`
	Volume          Number `json:"volume"`
	RemainingVolume Number `json:"remaining_volume"`
	ReservedFee     Number `json:"reserved_fee"`
	RemainingFee    Number `json:"remaining_fee"`
	PaidFee         Number `json:"paid_fee"`
	Locked          Number `json:"locked"`
	ExecutedVolume  Number `json:"executed_volume"`
	TradesCount     int    `json:"trades_count"`
}

// OrderRequest is the payload for order creation.
type OrderRequest struct {
	Market  string
	Side    string
	Volume  float64
	Price   float64
	OrdType string
}

// Order sides and states used by the trading pipeline.
const (
	SideBid = "bid"
	SideAsk = "ask"

	OrdTypeLimit = "limit"

	StateWait = "wait"
	StateDone = "done"
)
