package circuitbreaker

import (
	"errors"
	"testing"
	"time"
)

var errDown = errors.New("rabbitmq connection refused")

func newTestBreaker(timeout time.Duration) *CircuitBreaker {
	return NewCircuitBreaker("order-events", Config{
		MaxRequests: 3,
		Interval:    10 * time.Second,
		Timeout:     timeout,
		ReadyToTrip: func(counts Counts) bool {
			return counts.ConsecutiveFailures >= 5
		},
	})
}

// TestClosedState 测试关闭状态下请求正常通过
func TestClosedState(t *testing.T) {
	cb := newTestBreaker(30 * time.Second)

	for i := 0; i < 10; i++ {
		if err := cb.Execute(func() error { return nil }); err != nil {
			t.Fatalf("期望成功，实际失败: %v", err)
		}
	}

	if cb.State() != StateClosed {
		t.Errorf("期望状态为CLOSED，实际%s", cb.State())
	}
	if counts := cb.Counts(); counts.TotalSuccesses != 10 {
		t.Errorf("期望成功10次，实际%d次", counts.TotalSuccesses)
	}
}

// TestTripOnConsecutiveFailures 测试连续失败触发熔断
func TestTripOnConsecutiveFailures(t *testing.T) {
	cb := newTestBreaker(30 * time.Second)

	// 连续失败5次触发熔断
	for i := 0; i < 5; i++ {
		_ = cb.Execute(func() error { return errDown })
	}

	if cb.State() != StateOpen {
		t.Fatalf("期望状态为OPEN，实际%s", cb.State())
	}

	// 熔断打开后快速失败，不再调用下游
	called := false
	err := cb.Execute(func() error {
		called = true
		return nil
	})
	if err != ErrOpenState {
		t.Errorf("期望返回ErrOpenState，实际%v", err)
	}
	if called {
		t.Error("熔断器打开时不应该调用实际函数")
	}
}

// TestSuccessResetsConsecutiveFailures 测试成功会打断连续失败计数
func TestSuccessResetsConsecutiveFailures(t *testing.T) {
	cb := newTestBreaker(30 * time.Second)

	for i := 0; i < 4; i++ {
		_ = cb.Execute(func() error { return errDown })
	}
	_ = cb.Execute(func() error { return nil })
	for i := 0; i < 4; i++ {
		_ = cb.Execute(func() error { return errDown })
	}

	if cb.State() != StateClosed {
		t.Errorf("未达到连续失败阈值，期望保持CLOSED，实际%s", cb.State())
	}
}

// TestHalfOpenRecovery 测试超时后半开探测与恢复
func TestHalfOpenRecovery(t *testing.T) {
	cb := newTestBreaker(50 * time.Millisecond)

	for i := 0; i < 5; i++ {
		_ = cb.Execute(func() error { return errDown })
	}
	if cb.State() != StateOpen {
		t.Fatalf("期望状态为OPEN，实际%s", cb.State())
	}

	// 等待超时进入半开
	time.Sleep(60 * time.Millisecond)
	if cb.State() != StateHalfOpen {
		t.Fatalf("超时后期望状态为HALF_OPEN，实际%s", cb.State())
	}

	// 半开状态下探测成功即恢复关闭
	if err := cb.Execute(func() error { return nil }); err != nil {
		t.Fatalf("半开探测请求应该放行: %v", err)
	}
	if cb.State() != StateClosed {
		t.Errorf("探测成功后期望恢复CLOSED，实际%s", cb.State())
	}
}

// TestHalfOpenFailureReopens 测试半开探测失败重新打开
func TestHalfOpenFailureReopens(t *testing.T) {
	cb := newTestBreaker(50 * time.Millisecond)

	for i := 0; i < 5; i++ {
		_ = cb.Execute(func() error { return errDown })
	}
	time.Sleep(60 * time.Millisecond)

	_ = cb.Execute(func() error { return errDown })

	if cb.State() != StateOpen {
		t.Errorf("半开探测失败后期望重新OPEN，实际%s", cb.State())
	}
}

// TestStateChangeCallback 测试状态变化回调
func TestStateChangeCallback(t *testing.T) {
	cb := newTestBreaker(30 * time.Second)

	type change struct{ from, to State }
	var changes []change
	cb.SetStateChangeCallback(func(name string, from State, to State) {
		if name != "order-events" {
			t.Errorf("回调名称错误: %s", name)
		}
		changes = append(changes, change{from, to})
	})

	for i := 0; i < 5; i++ {
		_ = cb.Execute(func() error { return errDown })
	}

	if len(changes) != 1 {
		t.Fatalf("期望1次状态变化，实际%d次", len(changes))
	}
	if changes[0].from != StateClosed || changes[0].to != StateOpen {
		t.Errorf("期望CLOSED→OPEN，实际%s→%s", changes[0].from, changes[0].to)
	}
}
