package book

import (
	"time"

	"github.com/shopspring/decimal"
)

// Book 图书实体(聚合根)
// DDD设计说明:
// 1. Book是图书聚合的根实体,包含图书的核心属性和促销信息
// 2. 价格使用int64存储"分"为单位(避免浮点数精度问题)
// 3. OnSale/SaleRate是促销字段,由促销管理修改;库存只由订单流程扣减
// 4. 购物车不直接修改Book,只读取当前价格(加入时锁定)
type Book struct {
	ID          uint
	ISBN        string  // ISBN号(国际标准书号)
	Title       string  // 书名
	Author      string  // 作者
	Publisher   string  // 出版社
	Price       int64   // 原价(单位:分,1元=100分)
	Stock       int     // 库存数量
	OnSale      bool    // 是否促销中
	SaleRate    float64 // 折扣比例[0,1),0.4表示降价40%
	CoverURL    string  // 封面图片URL
	Description string  // 图书描述
	PublisherID uint    // 发布者用户ID(关联User表)
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// NewBook 创建新图书(工厂方法)
// isbn需调用方先验证格式,price单位为分且必须>0
func NewBook(isbn, title, author, publisher string, price int64, stock int, coverURL, description string, publisherID uint) *Book {
	now := time.Now()
	return &Book{
		ISBN:        isbn,
		Title:       title,
		Author:      author,
		Publisher:   publisher,
		Price:       price,
		Stock:       stock,
		CoverURL:    coverURL,
		Description: description,
		PublisherID: publisherID,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
}

// EffectivePrice 当前生效单价(分)
// 业务规则:
// 1. 促销中时 = round(原价 × (1 − 折扣比例)),四舍五入到分
// 2. 使用decimal计算,避免float64的精度陷阱(如 59.00 × 0.6 = 35.400000000000006)
// 3. 购物车加入商品时调用本方法锁定价格,此后促销变化不影响已加入的行
func (b *Book) EffectivePrice() int64 {
	if !b.OnSale || b.SaleRate <= 0 {
		return b.Price
	}
	factor := decimal.NewFromInt(1).Sub(decimal.NewFromFloat(b.SaleRate))
	return decimal.NewFromInt(b.Price).Mul(factor).Round(0).IntPart()
}

// StartSale 开启促销(领域行为)
// 业务规则:折扣比例必须在(0,1)区间
func (b *Book) StartSale(rate float64) error {
	if rate <= 0 || rate >= 1 {
		return ErrInvalidSaleRate
	}
	b.OnSale = true
	b.SaleRate = rate
	b.UpdatedAt = time.Now()
	return nil
}

// StopSale 结束促销(领域行为)
func (b *Book) StopSale() {
	b.OnSale = false
	b.SaleRate = 0
	b.UpdatedAt = time.Now()
}

// UpdatePrice 更新价格(领域行为)
// 业务规则:价格必须>0;不影响已锁定价格的购物车行和历史订单
func (b *Book) UpdatePrice(newPrice int64) error {
	if newPrice <= 0 {
		return ErrInvalidPrice
	}
	b.Price = newPrice
	b.UpdatedAt = time.Now()
	return nil
}

// UpdateStock 更新库存(领域行为)
// 业务规则:库存不能为负数
func (b *Book) UpdateStock(newStock int) error {
	if newStock < 0 {
		return ErrInvalidStock
	}
	b.Stock = newStock
	b.UpdatedAt = time.Now()
	return nil
}

// DecrStock 扣减库存(用于订单创建)
// 业务规则:扣减后库存不能为负数
func (b *Book) DecrStock(quantity int) error {
	if quantity <= 0 {
		return ErrInvalidQuantity
	}
	if b.Stock < quantity {
		return ErrInsufficientStock
	}
	b.Stock -= quantity
	b.UpdatedAt = time.Now()
	return nil
}

// IncrStock 增加库存(用于订单取消、补货)
func (b *Book) IncrStock(quantity int) error {
	if quantity <= 0 {
		return ErrInvalidQuantity
	}
	b.Stock += quantity
	b.UpdatedAt = time.Now()
	return nil
}

// UpdateInfo 更新图书基本信息
func (b *Book) UpdateInfo(title, author, publisher, description string) {
	if title != "" {
		b.Title = title
	}
	if author != "" {
		b.Author = author
	}
	if publisher != "" {
		b.Publisher = publisher
	}
	if description != "" {
		b.Description = description
	}
	b.UpdatedAt = time.Now()
}

// IsOwnedBy 检查图书是否由指定用户发布
func (b *Book) IsOwnedBy(userID uint) bool {
	return b.PublisherID == userID
}

// PriceInfo 价格信息快照(供购物车读取)
// 购物车加入商品时读取一次,EffectivePrice即锁定价格
type PriceInfo struct {
	BookID         uint
	Title          string
	BasePrice      int64   // 原价(分)
	OnSale         bool    // 是否促销中
	SaleRate       float64 // 折扣比例
	EffectivePrice int64   // 生效单价(分)
	Stock          int     // 当前库存
}
