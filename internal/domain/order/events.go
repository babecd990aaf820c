package order

import (
	"time"
)

// OrderCreatedEvent 订单创建领域事件
// 设计说明:
// 1. 在下单事务提交成功后发布(事务内不发,避免回滚后事件已出去)
// 2. 消费方是通知类服务(邮件、推送),与下单主流程解耦
// 3. 金额单位为分,与订单实体一致
type OrderCreatedEvent struct {
	OrderNo   string             `json:"order_no"`
	UserID    uint               `json:"user_id"`
	Total     int64              `json:"total"`
	Items     []OrderCreatedItem `json:"items"`
	CreatedAt time.Time          `json:"created_at"`
}

// OrderCreatedItem 事件中的订单行
type OrderCreatedItem struct {
	BookID   uint  `json:"book_id"`
	Quantity int   `json:"quantity"`
	Price    int64 `json:"price"`
}

// NewOrderCreatedEvent 从订单实体构造事件
func NewOrderCreatedEvent(o *Order) OrderCreatedEvent {
	items := make([]OrderCreatedItem, len(o.Items))
	for i, it := range o.Items {
		items[i] = OrderCreatedItem{
			BookID:   it.BookID,
			Quantity: it.Quantity,
			Price:    it.Price,
		}
	}
	return OrderCreatedEvent{
		OrderNo:   o.OrderNo,
		UserID:    o.UserID,
		Total:     o.Total,
		Items:     items,
		CreatedAt: o.CreatedAt,
	}
}
