package checkout

import (
	"context"

	"github.com/xiebiao/bookshop/internal/domain/address"
	"github.com/xiebiao/bookshop/internal/domain/book"
	"github.com/xiebiao/bookshop/internal/domain/cart"
	"github.com/xiebiao/bookshop/internal/domain/checkout"
	apperrors "github.com/xiebiao/bookshop/pkg/errors"
)

// SummaryUseCase 结账摘要用例
// 设计说明:
// 1. 首次进入结账时用收货档案预填累积map(档案只是预填提示,
//    下单门槛仍由必填字段校验把关)
// 2. 摘要里做一次非锁定的库存预检:提前告诉用户哪些行有问题
//    (权威核对仍在下单事务的锁内做,这里只是提示)
// 3. CanConfirm = 购物车非空 且 必填字段齐全
type SummaryUseCase struct {
	store       checkout.Store
	cartRepo    cart.Repository
	addressRepo address.Repository
	bookService book.Service
}

// NewSummaryUseCase 创建结账摘要用例
func NewSummaryUseCase(
	store checkout.Store,
	cartRepo cart.Repository,
	addressRepo address.Repository,
	bookService book.Service,
) *SummaryUseCase {
	return &SummaryUseCase{
		store:       store,
		cartRepo:    cartRepo,
		addressRepo: addressRepo,
		bookService: bookService,
	}
}

// FieldView 摘要中的字段视图
// Editing标记当前正在编辑的字段,渲染层据此隐藏该字段自身的编辑入口
type FieldView struct {
	Field    string `json:"field"`
	Label    string `json:"label"`
	Value    string `json:"value"`
	Optional bool   `json:"optional"`
	Editing  bool   `json:"editing"`
}

// SummaryResponse 结账摘要响应DTO
type SummaryResponse struct {
	Fields        []FieldView `json:"fields"`         // 按固定顺序展示的全部字段
	MissingFields []string    `json:"missing_fields"` // 尚未填写的必填字段
	Total         int64       `json:"total"`          // 购物车总金额(分)
	TotalQuantity int         `json:"total_quantity"`
	StockProblems []string    `json:"stock_problems"` // 库存预检问题(提示性)
	CanConfirm    bool        `json:"can_confirm"`
}

// Execute 执行结账摘要
func (uc *SummaryUseCase) Execute(ctx context.Context, userID uint) (*SummaryResponse, error) {
	// 1. 购物车必须非空才能进入结账
	c, err := uc.cartRepo.GetByUserID(ctx, userID)
	if err != nil {
		return nil, err
	}
	if c.IsEmpty() {
		return nil, apperrors.ErrEmptyCart
	}

	// 2. 读累积数据;为空时用收货档案预填
	data, err := uc.store.GetData(ctx, userID)
	if err != nil {
		return nil, err
	}
	if len(data) == 0 {
		data, err = uc.prefill(ctx, userID)
		if err != nil {
			return nil, err
		}
	}

	// 3. 字段视图(固定展示顺序),标记正在编辑的字段
	editingField, hasEditing, err := uc.store.GetEditingField(ctx, userID)
	if err != nil {
		return nil, err
	}

	fields := make([]FieldView, len(checkout.FieldOrder))
	for i, f := range checkout.FieldOrder {
		fields[i] = FieldView{
			Field:    string(f),
			Label:    f.Label(),
			Value:    data[f],
			Optional: f.IsOptional(),
			Editing:  hasEditing && f == editingField,
		}
	}

	missing := checkout.MissingFields(data)
	missingNames := make([]string, len(missing))
	for i, f := range missing {
		missingNames[i] = string(f)
	}

	// 4. 库存预检(非锁定,只做提示)
	items := make([]book.RequestItem, len(c.Items))
	for i, item := range c.Items {
		items[i] = book.RequestItem{BookID: item.BookID, Quantity: item.Quantity}
	}
	ok, problems, err := uc.bookService.CheckAvailability(ctx, items)
	if err != nil {
		return nil, err
	}

	return &SummaryResponse{
		Fields:        fields,
		MissingFields: missingNames,
		Total:         c.TotalPrice(),
		TotalQuantity: c.TotalQuantity(),
		StockProblems: problems,
		CanConfirm:    ok && checkout.IsComplete(data),
	}, nil
}

// prefill 用收货档案预填累积map
// 没有档案时返回空map(用户从零开始填)
func (uc *SummaryUseCase) prefill(ctx context.Context, userID uint) (map[checkout.Field]string, error) {
	addr, err := uc.addressRepo.FindByUserID(ctx, userID)
	if err != nil {
		if apperrors.IsCode(err, apperrors.ErrCodeAddressNotFound) {
			return map[checkout.Field]string{}, nil
		}
		return nil, err
	}

	seed := map[checkout.Field]string{
		checkout.FieldName:          addr.Name,
		checkout.FieldEmail:         addr.Email,
		checkout.FieldPhone:         addr.Phone,
		checkout.FieldCity:          addr.City,
		checkout.FieldStreet:        addr.Street,
		checkout.FieldHouse:         addr.House,
		checkout.FieldApartment:     addr.Apartment,
		checkout.FieldPaymentMethod: addr.PaymentMethod,
		checkout.FieldComment:       addr.Comment,
	}

	data := make(map[checkout.Field]string)
	for f, v := range seed {
		if v == "" {
			continue
		}
		if err := uc.store.SaveValue(ctx, userID, f, v); err != nil {
			return nil, err
		}
		data[f] = v
	}
	// 送达日期不预填:上次的日期大概率已经过期

	return data, nil
}
