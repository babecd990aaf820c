package cart

import (
	"context"

	"github.com/xiebiao/bookshop/internal/domain/book"
	"github.com/xiebiao/bookshop/internal/domain/cart"
)

// AddItemUseCase 加入购物车用例
// 设计说明:
// 1. 价格锁定发生在这里:读图书当前生效价(促销价),写进购物车行
//    此后图书改价/促销变化都不影响已加入的行
// 2. 重复加入同一图书只递增数量,锁定价保持第一次的值
// 3. 加入不预占库存:缺货的书也能加(下单时才真正核对库存)
type AddItemUseCase struct {
	cartRepo    cart.Repository
	bookService book.Service
}

// NewAddItemUseCase 创建加入购物车用例
func NewAddItemUseCase(cartRepo cart.Repository, bookService book.Service) *AddItemUseCase {
	return &AddItemUseCase{cartRepo: cartRepo, bookService: bookService}
}

// AddItemRequest 加入购物车请求DTO
type AddItemRequest struct {
	UserID uint
	BookID uint
}

// AddItemResponse 加入购物车响应DTO
type AddItemResponse struct {
	BookID      uint   `json:"book_id"`
	Title       string `json:"title"`
	LockedPrice int64  `json:"locked_price"` // 锁定单价(分)
	Quantity    int    `json:"quantity"`     // 加入后的行数量
	TotalItems  int    `json:"total_items"`  // 购物车总件数
}

// Execute 执行加入购物车
func (uc *AddItemUseCase) Execute(ctx context.Context, req AddItemRequest) (*AddItemResponse, error) {
	// 1. 读图书当前生效价(图书不存在直接失败)
	info, err := uc.bookService.GetPriceInfo(ctx, req.BookID)
	if err != nil {
		return nil, err
	}

	// 2. 拿购物车(首次加入时惰性创建)
	c, err := uc.cartRepo.GetByUserID(ctx, req.UserID)
	if err != nil {
		return nil, err
	}

	// 3. upsert购物车行:已存在则数量+1且锁定价不变
	if err := uc.cartRepo.UpsertItem(ctx, c.ID, req.BookID, info.EffectivePrice); err != nil {
		return nil, err
	}

	// 4. 回读购物车构建响应
	c, err = uc.cartRepo.GetByUserID(ctx, req.UserID)
	if err != nil {
		return nil, err
	}

	resp := &AddItemResponse{
		BookID:     req.BookID,
		Title:      info.Title,
		TotalItems: c.TotalQuantity(),
	}
	if item, ok := c.FindItem(req.BookID); ok {
		resp.LockedPrice = item.Price
		resp.Quantity = item.Quantity
	}

	return resp, nil
}
