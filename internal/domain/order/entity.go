package order

import (
	"time"
)

// OrderStatus 订单状态
// 设计说明:
// 1. 使用int类型而非string(节省存储空间,便于索引)
// 2. 状态流转是线性的:处理中→配送中→已完成,
//    唯一的分支是处理中→已取消;终态不可再流转
type OrderStatus int

const (
	OrderStatusProcessing OrderStatus = 1 // 处理中(下单成功的初始状态)
	OrderStatusDelivering OrderStatus = 2 // 配送中
	OrderStatusCompleted  OrderStatus = 3 // 已完成(终态)
	OrderStatusCancelled  OrderStatus = 4 // 已取消(终态,只能从处理中进入)
)

// String 实现Stringer接口(方便日志输出)
func (s OrderStatus) String() string {
	switch s {
	case OrderStatusProcessing:
		return "处理中"
	case OrderStatusDelivering:
		return "配送中"
	case OrderStatusCompleted:
		return "已完成"
	case OrderStatusCancelled:
		return "已取消"
	default:
		return "未知状态"
	}
}

// Order 订单实体(聚合根)
// 设计说明:
// 1. Order是聚合根,OrderItem是子实体
// 2. 核心字段(明细、总金额、收货信息)创建后不可变,
//    只有Status和DeliveryDate允许更新
// 3. Total冗余存储下单时的金额(防止改价后历史订单金额变化)
type Order struct {
	ID           uint
	OrderNo      string      // 订单号(业务主键,全局唯一)
	UserID       uint        // 买家用户ID
	AddressID    uint        // 收货信息ID(下单时引用)
	Total        int64       // 订单总金额(分),冗余字段
	Status       OrderStatus // 订单状态
	DeliveryDate *time.Time  // 预计送达日期(可为空,可更新)
	Items        []OrderItem // 订单明细(聚合内的子实体)
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// OrderItem 订单明细项
// 设计说明:
// 1. 不是独立聚合根,必须通过Order访问
// 2. {BookID, Quantity, Price}是一条完整的明细记录
// 3. Price记录下单时的单价(分),历史订单永远按它展示,不回查现价
type OrderItem struct {
	ID       uint
	OrderID  uint  // 所属订单ID
	BookID   uint  // 图书ID
	Quantity int   // 购买数量
	Price    int64 // 下单时的单价(分)
}

// Subtotal 明细小计(分)
func (i OrderItem) Subtotal() int64 {
	return i.Price * int64(i.Quantity)
}

// NewOrder 创建新订单(工厂方法)
// 初始状态为Processing(处理中)
func NewOrder(orderNo string, userID, addressID uint, items []OrderItem, total int64) *Order {
	now := time.Now()
	return &Order{
		OrderNo:   orderNo,
		UserID:    userID,
		AddressID: addressID,
		Total:     total,
		Status:    OrderStatusProcessing,
		Items:     items,
		CreatedAt: now,
		UpdatedAt: now,
	}
}

// CanTransitionTo 检查是否可以转换到目标状态
// 状态机设计,防止非法状态跳转(如已完成→处理中)
func (o *Order) CanTransitionTo(target OrderStatus) bool {
	transitions := map[OrderStatus][]OrderStatus{
		OrderStatusProcessing: {OrderStatusDelivering, OrderStatusCancelled},
		OrderStatusDelivering: {OrderStatusCompleted},
		OrderStatusCompleted:  {}, // 终态
		OrderStatusCancelled:  {}, // 终态
	}

	allowed, exists := transitions[o.Status]
	if !exists {
		return false
	}

	for _, t := range allowed {
		if t == target {
			return true
		}
	}
	return false
}

// TransitionTo 状态转换
// 先校验业务规则,转换成功更新UpdatedAt(审计追踪)
func (o *Order) TransitionTo(target OrderStatus) error {
	if !o.CanTransitionTo(target) {
		return ErrInvalidStatusTransition
	}
	o.Status = target
	o.UpdatedAt = time.Now()
	return nil
}

// Deliver 开始配送(领域行为)
func (o *Order) Deliver() error {
	return o.TransitionTo(OrderStatusDelivering)
}

// Complete 完成订单(领域行为)
func (o *Order) Complete() error {
	return o.TransitionTo(OrderStatusCompleted)
}

// Cancel 取消订单(领域行为)
// 只能从处理中取消;取消后库存回补由应用层在同一事务内完成
func (o *Order) Cancel() error {
	return o.TransitionTo(OrderStatusCancelled)
}

// SetDeliveryDate 设置预计送达日期
func (o *Order) SetDeliveryDate(date time.Time) {
	o.DeliveryDate = &date
	o.UpdatedAt = time.Now()
}

// CalculateTotal 计算订单总金额
// 根据明细实时计算,用于创建订单时的一致性校验
func (o *Order) CalculateTotal() int64 {
	var total int64
	for _, item := range o.Items {
		total += item.Subtotal()
	}
	return total
}

// IsOwnedBy 检查订单是否属于指定用户
func (o *Order) IsOwnedBy(userID uint) bool {
	return o.UserID == userID
}
