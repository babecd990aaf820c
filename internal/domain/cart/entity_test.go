package cart

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

// TestCartTotals 测试购物车金额计算
// 不变式:总金额 == Σ(锁定单价 × 数量)
func TestCartTotals(t *testing.T) {
	c := &Cart{
		UserID: 1,
		Items: []CartItem{
			{BookID: 1, Quantity: 2, Price: 50000}, // 500.00元 × 2
			{BookID: 2, Quantity: 1, Price: 30000}, // 300.00元 × 1
		},
	}

	assert.Equal(t, int64(130000), c.TotalPrice(), "总金额应该是1300.00元")
	assert.Equal(t, 3, c.TotalQuantity())
	assert.False(t, c.IsEmpty())

	item, ok := c.FindItem(2)
	assert.True(t, ok)
	assert.Equal(t, int64(30000), item.Subtotal())

	_, ok = c.FindItem(999)
	assert.False(t, ok)
}

// TestEmptyCart 测试空购物车
func TestEmptyCart(t *testing.T) {
	c := NewCart(1)

	assert.True(t, c.IsEmpty())
	assert.Equal(t, int64(0), c.TotalPrice())
	assert.Equal(t, 0, c.TotalQuantity())
}
