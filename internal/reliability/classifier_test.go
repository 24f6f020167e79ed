package reliability

import (
	"testing"
	"time"
)

func TestIsRetryableCloseCode(t *testing.T) {
	cases := []struct {
		code int
		want bool
	}{
		{1000, false},
		{1008, false},
		{1011, true},
		{1013, true},
	}
	for _, tc := range cases {
		got := IsRetryableCloseCode(tc.code)
		if got != tc.want {
			t.Fatalf("IsRetryableCloseCode(%d) = %v, want %v", tc.code, got, tc.want)
		}
	}
}

func TestIsRetryableRealtimeCode(t *testing.T) {
	cases := []struct {
		code string
		want bool
	}{
		{"rate_limited", true},
		{"unavailable", true},
		{"invalid_argument", false},
		{"", false},
	}
	for _, tc := range cases {
		got := IsRetryableRealtimeCode(tc.code)
		if got != tc.want {
			t.Fatalf("IsRetryableRealtimeCode(%q) = %v, want %v", tc.code, got, tc.want)
		}
	}
}

func TestExponentialBackoffCap(t *testing.T) {
	base := 100 * time.Millisecond
	capDur := 700 * time.Millisecond
	if got := ExponentialBackoff(0, base, capDur); got != base {
		t.Fatalf("attempt 0 = %v, want %v", got, base)
	}
	if got := ExponentialBackoff(10, base, capDur); got != capDur {
		t.Fatalf("attempt 10 = %v, want %v", got, capDur)
	}
}
