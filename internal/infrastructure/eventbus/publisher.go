// Package eventbus 负责把领域事件发布到RabbitMQ
//
// 设计说明:
// 1. 事件发布是尽力而为:发布失败记日志、丢事件,绝不让下单主流程失败
// 2. 用熔断器保护:MQ不可用时快速失败,不让每次下单都等连接超时
// 3. MQ关闭时(配置mq.enabled=false)退化为只写日志
package eventbus

import (
	"context"
	"errors"
	"log"
	"time"

	"github.com/xiebiao/bookshop/internal/domain/order"
	"github.com/xiebiao/bookshop/pkg/circuitbreaker"
	"github.com/xiebiao/bookshop/pkg/metrics"
	"github.com/xiebiao/bookshop/pkg/mq"
)

// RoutingKeyOrderCreated 订单创建事件的路由键
const RoutingKeyOrderCreated = "order.created"

// OrderEventPublisher 订单事件发布者
type OrderEventPublisher struct {
	publisher *mq.Publisher // nil表示MQ关闭,只写日志
	breaker   *circuitbreaker.CircuitBreaker
	exchange  string
}

// NewOrderEventPublisher 创建订单事件发布者
// publisher为nil时所有事件只写日志(本地开发不起RabbitMQ也能跑)
func NewOrderEventPublisher(publisher *mq.Publisher, exchange string) *OrderEventPublisher {
	cb := circuitbreaker.NewCircuitBreaker("order-events", circuitbreaker.Config{
		MaxRequests: 3,
		Interval:    10 * time.Second,
		Timeout:     30 * time.Second,
		ReadyToTrip: func(counts circuitbreaker.Counts) bool {
			return counts.ConsecutiveFailures >= 5
		},
	})

	// 状态变化时记日志+更新监控指标
	cb.SetStateChangeCallback(func(name string, from, to circuitbreaker.State) {
		log.Printf("⚡ 熔断器状态变化: name=%s, %s → %s", name, from, to)
		if metrics.CircuitBreakerState != nil {
			metrics.SetGaugeVec(metrics.CircuitBreakerState,
				map[string]string{"name": name}, float64(to))
		}
	})

	return &OrderEventPublisher{
		publisher: publisher,
		breaker:   cb,
		exchange:  exchange,
	}
}

// PublishOrderCreated 发布订单创建事件
// 必须在下单事务提交之后调用;失败只记日志,不向上传播
func (p *OrderEventPublisher) PublishOrderCreated(ctx context.Context, event order.OrderCreatedEvent) {
	if p.publisher == nil {
		log.Printf("📋 [MQ关闭] 订单创建事件: OrderNo=%s, UserID=%d, Total=%d",
			event.OrderNo, event.UserID, event.Total)
		return
	}

	labels := map[string]string{
		"exchange":    p.exchange,
		"routing_key": RoutingKeyOrderCreated,
	}

	err := p.breaker.Execute(func() error {
		return p.publisher.Publish(ctx, RoutingKeyOrderCreated, event)
	})

	if err != nil {
		if errors.Is(err, circuitbreaker.ErrOpenState) {
			log.Printf("⚡ 事件发布被熔断,丢弃: OrderNo=%s", event.OrderNo)
		} else {
			log.Printf("❌ 事件发布失败,丢弃: OrderNo=%s, err=%v", event.OrderNo, err)
		}
		if metrics.MessagesDroppedTotal != nil {
			metrics.IncCounterVec(metrics.MessagesDroppedTotal, labels)
		}
		return
	}

	if metrics.MessagesPublishedTotal != nil {
		metrics.IncCounterVec(metrics.MessagesPublishedTotal, labels)
	}
}
