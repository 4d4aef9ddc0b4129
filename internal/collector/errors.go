package collector

import (
	"errors"
	"fmt"
)

// ErrRateLimitBudget marks a call site that exhausted its retry budget on
// rate-limit rejections. Unlike isolated per-source failures it must reach
// the orchestrating caller, which decides whether to abort the run.
var ErrRateLimitBudget = errors.New("rate limit retry budget exhausted")

// RateLimitError is a single 429-class rejection, carrying whatever quota
// hints the upstream attached to it.
type RateLimitError struct {
	Remaining    float64
	ResetSeconds float64
}

func (e *RateLimitError) Error() string {
	return fmt.Sprintf("rate limited (remaining %.0f, reset in %.0fs)", e.Remaining, e.ResetSeconds)
}

// ServerError is a 5xx-class upstream failure, retried up to budget.
type ServerError struct {
	StatusCode int
}

func (e *ServerError) Error() string {
	return fmt.Sprintf("upstream server error: status %d", e.StatusCode)
}
