package middleware

import (
	"testing"
	"time"
)

func TestRateLimiterFixedWindow(t *testing.T) {
	rl := &rateLimiter{limit: 2, window: time.Minute, clients: make(map[string]*rateBucket)}
	now := time.Now()

	if !rl.allow("ip:1.2.3.4", now) || !rl.allow("ip:1.2.3.4", now) {
		t.Fatal("requests within the limit must pass")
	}
	if rl.allow("ip:1.2.3.4", now) {
		t.Fatal("request over the limit must be blocked")
	}
	if !rl.allow("ip:5.6.7.8", now) {
		t.Fatal("other actors must not share a bucket")
	}
	if !rl.allow("ip:1.2.3.4", now.Add(2*time.Minute)) {
		t.Fatal("window expiry must reset the bucket")
	}
}
