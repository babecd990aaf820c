package book

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// TestEffectivePrice 测试生效价计算
// 价格用int64分存储,促销计算走decimal,重点验证四舍五入
func TestEffectivePrice(t *testing.T) {
	t.Run("未促销时等于原价", func(t *testing.T) {
		b := &Book{Price: 5900}
		assert.Equal(t, int64(5900), b.EffectivePrice())
	})

	t.Run("促销中按比例降价", func(t *testing.T) {
		// 59.00元降价40% → 35.40元
		b := &Book{Price: 5900, OnSale: true, SaleRate: 0.4}
		assert.Equal(t, int64(3540), b.EffectivePrice(), "59.00×0.6应该精确等于35.40元")
	})

	t.Run("不能整除时四舍五入到分", func(t *testing.T) {
		// 99.99元降价33% → 66.9933元 → 66.99元
		b := &Book{Price: 9999, OnSale: true, SaleRate: 0.33}
		assert.Equal(t, int64(6699), b.EffectivePrice())

		// 0.01元降价50% → 0.005元 → 四舍五入到0.01元
		b = &Book{Price: 1, OnSale: true, SaleRate: 0.5}
		assert.Equal(t, int64(1), b.EffectivePrice())
	})

	t.Run("促销标志在但比例为0时按原价", func(t *testing.T) {
		b := &Book{Price: 5900, OnSale: true, SaleRate: 0}
		assert.Equal(t, int64(5900), b.EffectivePrice())
	})
}

// TestStartSale 测试开启促销的比例校验
func TestStartSale(t *testing.T) {
	b := &Book{Price: 5900}

	t.Run("合法比例", func(t *testing.T) {
		err := b.StartSale(0.4)
		require.NoError(t, err)
		assert.True(t, b.OnSale)
		assert.Equal(t, 0.4, b.SaleRate)
	})

	t.Run("比例必须在0到1之间", func(t *testing.T) {
		for _, rate := range []float64{0, 1, -0.1, 1.5} {
			err := b.StartSale(rate)
			assert.ErrorIs(t, err, ErrInvalidSaleRate, "rate=%v应该被拒绝", rate)
		}
	})

	t.Run("结束促销恢复原价", func(t *testing.T) {
		require.NoError(t, b.StartSale(0.4))
		b.StopSale()
		assert.False(t, b.OnSale)
		assert.Equal(t, int64(5900), b.EffectivePrice())
	})
}

// TestStockOperations 测试库存增减
func TestStockOperations(t *testing.T) {
	t.Run("扣减不能超过库存", func(t *testing.T) {
		b := &Book{Stock: 10}
		require.NoError(t, b.DecrStock(3))
		assert.Equal(t, 7, b.Stock)

		err := b.DecrStock(8)
		assert.ErrorIs(t, err, ErrInsufficientStock)
		assert.Equal(t, 7, b.Stock, "扣减失败时库存不变")
	})

	t.Run("扣减数量必须为正", func(t *testing.T) {
		b := &Book{Stock: 10}
		assert.ErrorIs(t, b.DecrStock(0), ErrInvalidQuantity)
		assert.ErrorIs(t, b.DecrStock(-1), ErrInvalidQuantity)
	})

	t.Run("回补库存", func(t *testing.T) {
		b := &Book{Stock: 7}
		require.NoError(t, b.IncrStock(3))
		assert.Equal(t, 10, b.Stock)
	})
}

// TestUpdatePrice 测试改价不影响促销比例
func TestUpdatePrice(t *testing.T) {
	b := &Book{Price: 5900, OnSale: true, SaleRate: 0.4}

	require.NoError(t, b.UpdatePrice(10000))

	// 促销中改原价,生效价按新原价重算
	assert.Equal(t, int64(10000), b.Price)
	assert.Equal(t, int64(6000), b.EffectivePrice(), "100.00×0.6=60.00元")

	assert.ErrorIs(t, b.UpdatePrice(0), ErrInvalidPrice)
	assert.ErrorIs(t, b.UpdatePrice(-100), ErrInvalidPrice)
}
