package cart

import (
	"time"
)

// Cart 购物车实体(聚合根)
// DDD设计说明:
// 1. 每个用户一个购物车,首次加入商品时惰性创建,清空后实体仍保留
// 2. CartItem是聚合内的子实体,必须通过Cart访问
// 3. 同一图书在购物车内最多一行:重复加入只递增数量,不新建行
type Cart struct {
	ID        uint
	UserID    uint       // 所属用户ID(一人一车)
	Items     []CartItem // 购物车行(聚合内的子实体)
	CreatedAt time.Time
	UpdatedAt time.Time
}

// CartItem 购物车行
// 设计说明:
// 1. Price是"加入时锁定的单价"(分):加入时按当时的促销价计算,
//    此后图书改价或促销变化都不影响已存在的行
// 2. 重复加入同一图书只递增Quantity,锁定价保持不变
type CartItem struct {
	ID       uint
	CartID   uint  // 所属购物车ID
	BookID   uint  // 图书ID
	Quantity int   // 数量(>=1)
	Price    int64 // 加入时锁定的单价(分)
}

// Subtotal 行小计(分)
func (i CartItem) Subtotal() int64 {
	return i.Price * int64(i.Quantity)
}

// NewCart 创建新购物车(工厂方法)
func NewCart(userID uint) *Cart {
	now := time.Now()
	return &Cart{
		UserID:    userID,
		Items:     nil,
		CreatedAt: now,
		UpdatedAt: now,
	}
}

// TotalPrice 购物车总金额(分)
// 不变式:总金额 == Σ(锁定单价 × 数量),精确相等
func (c *Cart) TotalPrice() int64 {
	var total int64
	for _, item := range c.Items {
		total += item.Subtotal()
	}
	return total
}

// TotalQuantity 购物车商品总件数
func (c *Cart) TotalQuantity() int {
	var n int
	for _, item := range c.Items {
		n += item.Quantity
	}
	return n
}

// IsEmpty 购物车是否为空
func (c *Cart) IsEmpty() bool {
	return len(c.Items) == 0
}

// FindItem 按图书ID查找购物车行
func (c *Cart) FindItem(bookID uint) (*CartItem, bool) {
	for i := range c.Items {
		if c.Items[i].BookID == bookID {
			return &c.Items[i], true
		}
	}
	return nil, false
}
