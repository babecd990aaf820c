package checkout

import (
	"context"

	"github.com/xiebiao/bookshop/internal/domain/checkout"
)

// CancelUseCase 取消结账用例
// 取消只丢弃结账状态:购物车、库存、收货档案都不动
type CancelUseCase struct {
	store checkout.Store
}

// NewCancelUseCase 创建取消结账用例
func NewCancelUseCase(store checkout.Store) *CancelUseCase {
	return &CancelUseCase{store: store}
}

// Execute 执行取消结账
func (uc *CancelUseCase) Execute(ctx context.Context, userID uint) error {
	return uc.store.Clear(ctx, userID)
}
