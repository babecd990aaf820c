package cart

import (
	"context"
	"fmt"

	"github.com/xiebiao/bookshop/internal/domain/book"
	"github.com/xiebiao/bookshop/internal/domain/cart"
)

// GetCartUseCase 查看购物车用例
type GetCartUseCase struct {
	cartRepo cart.Repository
	bookRepo book.Repository
}

// NewGetCartUseCase 创建查看购物车用例
func NewGetCartUseCase(cartRepo cart.Repository, bookRepo book.Repository) *GetCartUseCase {
	return &GetCartUseCase{cartRepo: cartRepo, bookRepo: bookRepo}
}

// CartItemView 购物车行视图
type CartItemView struct {
	BookID       uint   `json:"book_id"`
	Title        string `json:"title"`
	Quantity     int    `json:"quantity"`
	Price        int64  `json:"price"`      // 锁定单价(分)
	PriceYuan    string `json:"price_yuan"` // 锁定单价(元)
	Subtotal     int64  `json:"subtotal"`
	SubtotalYuan string `json:"subtotal_yuan"`
}

// CartView 购物车视图
type CartView struct {
	Items         []CartItemView `json:"items"`
	TotalQuantity int            `json:"total_quantity"`
	Total         int64          `json:"total"`
	TotalYuan     string         `json:"total_yuan"`
	IsEmpty       bool           `json:"is_empty"`
}

// Execute 执行查看购物车
// 总金额 = Σ(锁定单价 × 数量),与行小计精确一致
func (uc *GetCartUseCase) Execute(ctx context.Context, userID uint) (*CartView, error) {
	c, err := uc.cartRepo.GetByUserID(ctx, userID)
	if err != nil {
		return nil, err
	}

	items := make([]CartItemView, len(c.Items))
	for i, item := range c.Items {
		title := "已下架图书"
		if b, err := uc.bookRepo.FindByID(ctx, item.BookID); err == nil {
			title = b.Title
		}

		items[i] = CartItemView{
			BookID:       item.BookID,
			Title:        title,
			Quantity:     item.Quantity,
			Price:        item.Price,
			PriceYuan:    formatPrice(item.Price),
			Subtotal:     item.Subtotal(),
			SubtotalYuan: formatPrice(item.Subtotal()),
		}
	}

	return &CartView{
		Items:         items,
		TotalQuantity: c.TotalQuantity(),
		Total:         c.TotalPrice(),
		TotalYuan:     formatPrice(c.TotalPrice()),
		IsEmpty:       c.IsEmpty(),
	}, nil
}

// formatPrice 格式化价格(分→元)
func formatPrice(priceFen int64) string {
	yuan := float64(priceFen) / 100.0
	return fmt.Sprintf("%.2f", yuan)
}
