package middleware

import (
	"errors"
	"testing"
	"time"
)

func TestGetLimiterNameByPath(t *testing.T) {
	cases := []struct {
		path string
		want string
	}{
		{"/steam/api/data/v1/dashboard", "dashboard"},
		{"/steam/api/data/v1/reviews", "reviews"},
		{"/steam/api/data/v1/recommend", "recommend"},
		{"/steam/api/data/v1/recommend/rebuild", "recommend"},
		{"/health", "default"},
	}
	for _, c := range cases {
		if got := getLimiterNameByPath(c.path); got != c.want {
			t.Errorf("getLimiterNameByPath(%q) = %q, want %q", c.path, got, c.want)
		}
	}
}

func TestTokenBucketLimiter(t *testing.T) {
	l := NewTokenBucketLimiter(1, 2)

	if !l.Allow() || !l.Allow() {
		t.Fatal("burst of 2 should be allowed")
	}
	if l.Allow() {
		t.Error("third immediate request should be blocked")
	}
}

func TestCircuitBreakerTrip(t *testing.T) {
	cb := NewCircuitBreaker("test", &CircuitBreakerConfig{
		MaxRequests:      2,
		Interval:         time.Minute,
		Timeout:          time.Minute,
		FailureThreshold: 0.5,
		MinRequestCount:  5,
		SuccessThreshold: 2,
	})

	fail := errors.New("backend down")
	for i := 0; i < 5; i++ {
		cb.Call(func() error { return fail })
	}

	if cb.GetState() != StateOpen {
		t.Fatalf("state = %v, want open after failure burst", cb.GetState())
	}
	if err := cb.Call(func() error { return nil }); err != ErrCircuitBreakerOpen {
		t.Errorf("open breaker should reject calls, got %v", err)
	}
}

func TestCircuitBreakerRecovery(t *testing.T) {
	cb := NewCircuitBreaker("test", &CircuitBreakerConfig{
		MaxRequests:      5,
		Interval:         time.Minute,
		Timeout:          time.Millisecond,
		FailureThreshold: 0.5,
		MinRequestCount:  2,
		SuccessThreshold: 2,
	})

	fail := errors.New("backend down")
	cb.Call(func() error { return fail })
	cb.Call(func() error { return fail })
	if cb.GetState() != StateOpen {
		t.Fatalf("state = %v, want open", cb.GetState())
	}

	// 超时后进入半开，连续成功恢复
	time.Sleep(5 * time.Millisecond)
	cb.Call(func() error { return nil })
	if cb.GetState() != StateHalfOpen {
		t.Fatalf("state = %v, want half-open", cb.GetState())
	}
	cb.Call(func() error { return nil })
	if cb.GetState() != StateClosed {
		t.Errorf("state = %v, want closed after recovery", cb.GetState())
	}
}

func TestCircuitBreakerBelowMinRequests(t *testing.T) {
	cb := NewCircuitBreaker("test", DefaultCircuitBreakerConfig())

	// 请求数低于阈值时不熔断
	cb.Call(func() error { return errors.New("x") })
	cb.Call(func() error { return errors.New("x") })

	if cb.GetState() != StateClosed {
		t.Errorf("state = %v, want closed below min request count", cb.GetState())
	}
}
