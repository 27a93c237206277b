package trading

import "errors"

var (
	// ErrInvalidParameters flags a locally rejected order: bad market,
	// side, volume, price or type. Never retried.
	ErrInvalidParameters = errors.New("trading: invalid order parameters")

	// ErrInsufficientData indicates the candle series is too short to
	// analyze. The next scheduled run will try again.
	ErrInsufficientData = errors.New("trading: not enough data points for analysis")

	// ErrOrderExecutionFailed indicates the exchange rejected a submitted
	// order. It aborts only that single order attempt; the failure reason
	// is persisted on the signal record.
	ErrOrderExecutionFailed = errors.New("trading: order execution failed")

	// ErrPipelineFailed is the single classified outcome for an
	// invocation that died before producing a result.
	ErrPipelineFailed = errors.New("trading: pipeline failed")
)
