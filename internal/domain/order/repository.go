package order

import (
	"context"
)

// Repository 订单仓储接口(依赖倒置原则)
// 设计说明:
// 1. 由domain层定义接口,infrastructure层实现
// 2. 支持事务操作(通过context传递事务):
//    Create必须与库存扣减、购物车清空在同一事务中执行
type Repository interface {
	// Create 创建订单(包含订单明细)
	Create(ctx context.Context, order *Order) error

	// FindByID 根据ID查找订单(包含订单明细)
	FindByID(ctx context.Context, id uint) (*Order, error)

	// FindByOrderNo 根据订单号查找订单
	FindByOrderNo(ctx context.Context, orderNo string) (*Order, error)

	// UpdateStatus 更新订单状态和送达日期(不更新明细)
	// 带条件写入(CAS):只有数据库中的状态仍等于from时才生效,
	// 防止并发请求基于过期读各自通过内存校验后互相覆盖状态。
	// 状态已被并发修改时返回ErrInvalidStatusTransition
	UpdateStatus(ctx context.Context, order *Order, from OrderStatus) error

	// ListByUserID 查询用户的订单列表(分页,按创建时间倒序)
	ListByUserID(ctx context.Context, userID uint, page, pageSize int) ([]*Order, int64, error)
}
