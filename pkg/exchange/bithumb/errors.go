package bithumb

import "errors"

var (
	// ErrUpstream indicates the exchange could not be reached or answered
	// with a non-2xx status. The invocation aborts; the next scheduled run
	// retries naturally.
	ErrUpstream = errors.New("bithumb: upstream unavailable")

	// ErrMalformedResponse indicates a 2xx response whose body could not
	// be decoded into the expected shape. Kept distinct from ErrUpstream
	// so callers can tell "exchange is down" from "exchange changed its
	// contract".
	ErrMalformedResponse = errors.New("bithumb: malformed response")
)
