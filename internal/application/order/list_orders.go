package order

import (
	"context"

	"github.com/xiebiao/bookshop/internal/domain/book"
	"github.com/xiebiao/bookshop/internal/domain/order"
	apperrors "github.com/xiebiao/bookshop/pkg/errors"
)

// ListOrdersUseCase 订单列表用例
// 设计说明:
// 1. 按创建时间倒序分页
// 2. 明细金额永远按下单时的价格快照展示,
//    图书后来改价或促销都不影响历史订单
type ListOrdersUseCase struct {
	orderRepo order.Repository
	bookRepo  book.Repository
}

// NewListOrdersUseCase 创建订单列表用例
func NewListOrdersUseCase(orderRepo order.Repository, bookRepo book.Repository) *ListOrdersUseCase {
	return &ListOrdersUseCase{orderRepo: orderRepo, bookRepo: bookRepo}
}

// ListOrdersRequest 订单列表请求DTO
type ListOrdersRequest struct {
	UserID   uint
	Page     int
	PageSize int
}

// OrderItemView 订单明细视图
type OrderItemView struct {
	BookID       uint   `json:"book_id"`
	Title        string `json:"title"`
	Quantity     int    `json:"quantity"`
	Price        int64  `json:"price"`      // 下单时单价(分)
	PriceYuan    string `json:"price_yuan"` // 下单时单价(元)
	Subtotal     int64  `json:"subtotal"`
	SubtotalYuan string `json:"subtotal_yuan"`
}

// OrderView 订单视图
type OrderView struct {
	OrderID      uint            `json:"order_id"`
	OrderNo      string          `json:"order_no"`
	Total        int64           `json:"total"`
	TotalYuan    string          `json:"total_yuan"`
	Status       string          `json:"status"`
	DeliveryDate string          `json:"delivery_date,omitempty"`
	Items        []OrderItemView `json:"items"`
	CreatedAt    string          `json:"created_at"`
}

// ListOrdersResponse 订单列表响应DTO
type ListOrdersResponse struct {
	Orders []OrderView `json:"orders"`
	Total  int64       `json:"total"`
}

// Execute 执行订单列表查询
func (uc *ListOrdersUseCase) Execute(ctx context.Context, req ListOrdersRequest) (*ListOrdersResponse, error) {
	if req.Page < 1 {
		req.Page = 1
	}
	if req.PageSize < 1 || req.PageSize > 100 {
		req.PageSize = 10
	}

	orders, total, err := uc.orderRepo.ListByUserID(ctx, req.UserID, req.Page, req.PageSize)
	if err != nil {
		return nil, err
	}

	views := make([]OrderView, len(orders))
	for i, o := range orders {
		views[i] = uc.toView(ctx, o)
	}

	return &ListOrdersResponse{Orders: views, Total: total}, nil
}

// toView 订单实体 → 视图
func (uc *ListOrdersUseCase) toView(ctx context.Context, o *order.Order) OrderView {
	items := make([]OrderItemView, len(o.Items))
	for i, it := range o.Items {
		// 书名是展示信息,按需查;图书已下架时给占位标题
		title := "已下架图书"
		if b, err := uc.bookRepo.FindByID(ctx, it.BookID); err == nil {
			title = b.Title
		}

		items[i] = OrderItemView{
			BookID:       it.BookID,
			Title:        title,
			Quantity:     it.Quantity,
			Price:        it.Price,
			PriceYuan:    formatPrice(it.Price),
			Subtotal:     it.Subtotal(),
			SubtotalYuan: formatPrice(it.Subtotal()),
		}
	}

	view := OrderView{
		OrderID:   o.ID,
		OrderNo:   o.OrderNo,
		Total:     o.Total,
		TotalYuan: formatPrice(o.Total),
		Status:    o.Status.String(),
		Items:     items,
		CreatedAt: o.CreatedAt.Format("2006-01-02 15:04:05"),
	}
	if o.DeliveryDate != nil {
		view.DeliveryDate = o.DeliveryDate.Format("2006-01-02")
	}
	return view
}

// GetOrderUseCase 订单详情用例
type GetOrderUseCase struct {
	orderRepo order.Repository
	bookRepo  book.Repository
}

// NewGetOrderUseCase 创建订单详情用例
func NewGetOrderUseCase(orderRepo order.Repository, bookRepo book.Repository) *GetOrderUseCase {
	return &GetOrderUseCase{orderRepo: orderRepo, bookRepo: bookRepo}
}

// Execute 按订单号查询订单详情(只能查自己的订单)
func (uc *GetOrderUseCase) Execute(ctx context.Context, userID uint, orderNo string) (*OrderView, error) {
	o, err := uc.orderRepo.FindByOrderNo(ctx, orderNo)
	if err != nil {
		return nil, err
	}

	if !o.IsOwnedBy(userID) {
		// 不暴露他人订单的存在
		return nil, apperrors.ErrOrderNotFound
	}

	list := &ListOrdersUseCase{orderRepo: uc.orderRepo, bookRepo: uc.bookRepo}
	view := list.toView(ctx, o)
	return &view, nil
}
