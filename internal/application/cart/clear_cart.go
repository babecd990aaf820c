package cart

import (
	"context"

	"github.com/xiebiao/bookshop/internal/domain/cart"
)

// ClearCartUseCase 清空购物车用例
type ClearCartUseCase struct {
	cartRepo cart.Repository
}

// NewClearCartUseCase 创建清空购物车用例
func NewClearCartUseCase(cartRepo cart.Repository) *ClearCartUseCase {
	return &ClearCartUseCase{cartRepo: cartRepo}
}

// ClearCartResponse 清空购物车响应DTO
// Cleared=false表示购物车本来就是空的(调用方据此给不同提示)
type ClearCartResponse struct {
	Cleared bool `json:"cleared"`
}

// Execute 执行清空购物车
func (uc *ClearCartUseCase) Execute(ctx context.Context, userID uint) (*ClearCartResponse, error) {
	c, err := uc.cartRepo.GetByUserID(ctx, userID)
	if err != nil {
		return nil, err
	}

	cleared, err := uc.cartRepo.Clear(ctx, c.ID)
	if err != nil {
		return nil, err
	}

	return &ClearCartResponse{Cleared: cleared}, nil
}

// RemoveItemUseCase 移除购物车行用例
type RemoveItemUseCase struct {
	cartRepo cart.Repository
}

// NewRemoveItemUseCase 创建移除购物车行用例
func NewRemoveItemUseCase(cartRepo cart.Repository) *RemoveItemUseCase {
	return &RemoveItemUseCase{cartRepo: cartRepo}
}

// Execute 执行移除(整行删除,不是数量-1)
func (uc *RemoveItemUseCase) Execute(ctx context.Context, userID, bookID uint) error {
	c, err := uc.cartRepo.GetByUserID(ctx, userID)
	if err != nil {
		return err
	}

	return uc.cartRepo.RemoveItem(ctx, c.ID, bookID)
}
