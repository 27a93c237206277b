package backtest

// portfolio tracks a long-only spot position with simple fees. Shorts do
// not exist on the simulated market, matching KRW spot trading.
type portfolio struct {
	cash       float64 // quote currency
	holding    float64 // base units
	avgCost    float64 // average price of the current holding
	realized   float64
	unrealized float64
	feeBps     float64
}

// buy spends quote currency on base units at the execution price.
// Returns the fee charged and whether the order was affordable.
func (p *portfolio) buy(execPx, qty float64) (fee float64, ok bool) {
	if qty <= 0 || execPx <= 0 {
		return 0, false
	}
	cost := execPx * qty
	fee = p.fee(execPx, qty)
	if cost+fee > p.cash {
		return 0, false
	}

	total := p.holding + qty
	if p.holding == 0 {
		p.avgCost = execPx
	} else {
		p.avgCost = (p.avgCost*p.holding + execPx*qty) / total
	}
	p.holding = total
	p.cash -= cost + fee
	return fee, true
}

// sell converts base units back to quote currency and realizes PnL
// against the average cost.
func (p *portfolio) sell(execPx, qty float64) (realized, fee float64, ok bool) {
	if qty <= 0 || execPx <= 0 || qty > p.holding {
		return 0, 0, false
	}
	fee = p.fee(execPx, qty)
	realized = (execPx - p.avgCost) * qty

	p.cash += execPx*qty - fee
	p.holding -= qty
	p.realized += realized
	if p.holding == 0 {
		p.avgCost = 0
	}
	return realized, fee, true
}

func (p *portfolio) equity(lastPx float64) float64 {
	p.unrealized = (lastPx - p.avgCost) * p.holding
	return p.cash + p.holding*lastPx
}

func (p *portfolio) fee(px, qty float64) float64 {
	if p.feeBps == 0 {
		return 0
	}
	return px * qty * (p.feeBps / 10000.0)
}
