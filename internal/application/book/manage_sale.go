package book

import (
	"context"

	"github.com/xiebiao/bookshop/internal/domain/book"
)

// ManageSaleUseCase 促销管理用例(开启/结束促销、调价)
// 设计说明:
// 1. 只有发布者本人可以操作自己的书(领域服务校验)
// 2. 促销/调价只影响之后的加购:已加入购物车的行和历史订单
//    都按各自锁定的价格,不受影响
type ManageSaleUseCase struct {
	bookService book.Service
}

// NewManageSaleUseCase 创建促销管理用例
func NewManageSaleUseCase(bookService book.Service) *ManageSaleUseCase {
	return &ManageSaleUseCase{bookService: bookService}
}

// SaleInfoResponse 促销操作响应DTO
type SaleInfoResponse struct {
	BookID         uint    `json:"book_id"`
	Title          string  `json:"title"`
	Price          int64   `json:"price"` // 原价(分)
	OnSale         bool    `json:"on_sale"`
	SaleRate       float64 `json:"sale_rate,omitempty"`
	EffectivePrice int64   `json:"effective_price"` // 当前生效价(分)
}

// StartSale 开启促销
// rate是降价比例(0,1):0.4表示降价40%,生效价=round(原价×0.6)
func (uc *ManageSaleUseCase) StartSale(ctx context.Context, bookID, userID uint, rate float64) (*SaleInfoResponse, error) {
	if err := uc.bookService.StartSale(ctx, bookID, userID, rate); err != nil {
		return nil, err
	}
	return uc.saleInfo(ctx, bookID)
}

// StopSale 结束促销
func (uc *ManageSaleUseCase) StopSale(ctx context.Context, bookID, userID uint) (*SaleInfoResponse, error) {
	if err := uc.bookService.StopSale(ctx, bookID, userID); err != nil {
		return nil, err
	}
	return uc.saleInfo(ctx, bookID)
}

// UpdatePrice 调整原价
func (uc *ManageSaleUseCase) UpdatePrice(ctx context.Context, bookID, userID uint, newPrice int64) (*SaleInfoResponse, error) {
	if err := uc.bookService.UpdateBookPrice(ctx, bookID, userID, newPrice); err != nil {
		return nil, err
	}
	return uc.saleInfo(ctx, bookID)
}

func (uc *ManageSaleUseCase) saleInfo(ctx context.Context, bookID uint) (*SaleInfoResponse, error) {
	b, err := uc.bookService.GetBookByID(ctx, bookID)
	if err != nil {
		return nil, err
	}
	return &SaleInfoResponse{
		BookID:         b.ID,
		Title:          b.Title,
		Price:          b.Price,
		OnSale:         b.OnSale,
		SaleRate:       b.SaleRate,
		EffectivePrice: b.EffectivePrice(),
	}, nil
}
