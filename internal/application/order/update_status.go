package order

import (
	"context"

	"github.com/xiebiao/bookshop/internal/domain/order"
)

// UpdateStatusUseCase 订单状态流转用例(发货/完成)
// 设计说明:
// 1. 合法流转:处理中→配送中→已完成;终态(已完成/已取消)不可再变
// 2. 流转规则在领域实体上(CanTransitionTo),用例只负责编排
// 3. 写入用条件更新(UpdateStatus带旧状态比对),单条语句天然原子,
//    并发请求基于过期读发起的流转会被拦截,不需要额外开事务
type UpdateStatusUseCase struct {
	orderRepo order.Repository
}

// NewUpdateStatusUseCase 创建状态流转用例
func NewUpdateStatusUseCase(orderRepo order.Repository) *UpdateStatusUseCase {
	return &UpdateStatusUseCase{orderRepo: orderRepo}
}

// Deliver 发货(处理中 → 配送中)
func (uc *UpdateStatusUseCase) Deliver(ctx context.Context, orderNo string) (*PlaceOrderResponse, error) {
	return uc.transition(ctx, orderNo, func(o *order.Order) error {
		return o.Deliver()
	})
}

// Complete 完成(配送中 → 已完成)
func (uc *UpdateStatusUseCase) Complete(ctx context.Context, orderNo string) (*PlaceOrderResponse, error) {
	return uc.transition(ctx, orderNo, func(o *order.Order) error {
		return o.Complete()
	})
}

func (uc *UpdateStatusUseCase) transition(ctx context.Context, orderNo string, fn func(*order.Order) error) (*PlaceOrderResponse, error) {
	o, err := uc.orderRepo.FindByOrderNo(ctx, orderNo)
	if err != nil {
		return nil, err
	}

	from := o.Status
	if err := fn(o); err != nil {
		return nil, err
	}

	if err := uc.orderRepo.UpdateStatus(ctx, o, from); err != nil {
		return nil, err
	}

	return &PlaceOrderResponse{
		OrderID:   o.ID,
		OrderNo:   o.OrderNo,
		Total:     o.Total,
		TotalYuan: formatPrice(o.Total),
		Status:    o.Status.String(),
		CreatedAt: o.CreatedAt.Format("2006-01-02 15:04:05"),
	}, nil
}
