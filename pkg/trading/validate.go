package trading

import (
	"fmt"
	"strings"

	"coinpilot/pkg/exchange/bithumb"
)

var knownOrdTypes = map[string]bool{
	bithumb.OrdTypeLimit: true,
	"price":              true,
	"market":             true,
}

// validateOrder applies fail-fast parameter checks before anything is
// submitted. Any violation is a classified validation error, no partial
// submission.
func validateOrder(req bithumb.OrderRequest) error {
	if strings.TrimSpace(req.Market) == "" {
		return fmt.Errorf("%w: market is required", ErrInvalidParameters)
	}
	if req.Side != bithumb.SideBid && req.Side != bithumb.SideAsk {
		return fmt.Errorf("%w: side %q", ErrInvalidParameters, req.Side)
	}
	if req.Volume <= 0 {
		return fmt.Errorf("%w: volume %v", ErrInvalidParameters, req.Volume)
	}
	if req.Price <= 0 {
		return fmt.Errorf("%w: price %v", ErrInvalidParameters, req.Price)
	}
	if !knownOrdTypes[req.OrdType] {
		return fmt.Errorf("%w: order type %q", ErrInvalidParameters, req.OrdType)
	}
	return nil
}
