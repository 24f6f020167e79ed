// Package reliability classifies transient versus terminal realtime
// transport failures.
package reliability

import "time"

// IsRetryableCloseCode classifies websocket close codes from the relay
// backend. Normal closure and policy violations are terminal.
func IsRetryableCloseCode(code int) bool {
	switch code {
	case 1011, 1012, 1013, 1014: // internal error, restart, try again later, bad gateway
		return true
	default:
		return false
	}
}

// IsRetryableRealtimeCode classifies upstream realtime error codes.
func IsRetryableRealtimeCode(code string) bool {
	switch code {
	case "rate_limited", "resource_exhausted", "queue_overflow", "unavailable":
		return true
	default:
		return false
	}
}

// ExponentialBackoff computes a deterministic capped backoff duration.
func ExponentialBackoff(attempt int, base, cap time.Duration) time.Duration {
	if attempt <= 0 {
		return base
	}
	d := base
	for i := 0; i < attempt; i++ {
		d *= 2
		if d >= cap {
			return cap
		}
	}
	return d
}
