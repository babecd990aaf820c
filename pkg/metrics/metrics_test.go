package metrics

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	dto "github.com/prometheus/client_model/go"
)

// TestInitMetrics 测试指标初始化
func TestInitMetrics(t *testing.T) {
	InitMetrics()

	if HTTPRequestsTotal == nil {
		t.Error("HTTPRequestsTotal未初始化")
	}
	if OrdersCreatedTotal == nil {
		t.Error("OrdersCreatedTotal未初始化")
	}
	if OrderRetriesTotal == nil {
		t.Error("OrderRetriesTotal未初始化")
	}
	if CircuitBreakerState == nil {
		t.Error("CircuitBreakerState未初始化")
	}
	if MessagesDroppedTotal == nil {
		t.Error("MessagesDroppedTotal未初始化")
	}
}

// TestInitMetricsIdempotent 测试重复初始化不会panic
// promauto重复注册同名指标会panic,InitMetrics必须幂等
func TestInitMetricsIdempotent(t *testing.T) {
	InitMetrics()
	InitMetrics()
	InitMetrics()
}

// TestCounterVec 测试带标签的计数器
func TestCounterVec(t *testing.T) {
	InitMetrics()

	labels := map[string]string{
		"exchange":    "bookshop.events",
		"routing_key": "order.created",
	}
	before := getCounterVecValue(t, MessagesPublishedTotal, labels)

	IncCounterVec(MessagesPublishedTotal, labels)
	IncCounterVec(MessagesPublishedTotal, labels)

	after := getCounterVecValue(t, MessagesPublishedTotal, labels)
	if after-before != 2 {
		t.Errorf("计数器应该递增2，实际递增%f", after-before)
	}
}

// TestGaugeVec 测试熔断器状态指标
func TestGaugeVec(t *testing.T) {
	InitMetrics()

	labels := map[string]string{"name": "order-events"}
	SetGaugeVec(CircuitBreakerState, labels, 1)

	var m dto.Metric
	if err := CircuitBreakerState.With(labels).Write(&m); err != nil {
		t.Fatalf("读取指标失败: %v", err)
	}
	if m.GetGauge().GetValue() != 1 {
		t.Errorf("期望Gauge值为1，实际%f", m.GetGauge().GetValue())
	}
}

// getCounterVecValue 读取CounterVec当前值
func getCounterVecValue(t *testing.T, counter *prometheus.CounterVec, labels map[string]string) float64 {
	t.Helper()
	var m dto.Metric
	if err := counter.With(labels).Write(&m); err != nil {
		t.Fatalf("读取指标失败: %v", err)
	}
	return m.GetCounter().GetValue()
}
