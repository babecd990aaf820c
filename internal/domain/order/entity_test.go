package order

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// TestStatusTransitions 测试订单状态机
// 线性流转:处理中→配送中→已完成;唯一分支:处理中→已取消
func TestStatusTransitions(t *testing.T) {
	t.Run("正常流转", func(t *testing.T) {
		o := NewOrder("BS123", 1, 1, nil, 0)
		assert.Equal(t, OrderStatusProcessing, o.Status)

		require.NoError(t, o.Deliver())
		assert.Equal(t, OrderStatusDelivering, o.Status)

		require.NoError(t, o.Complete())
		assert.Equal(t, OrderStatusCompleted, o.Status)
	})

	t.Run("处理中可以取消", func(t *testing.T) {
		o := NewOrder("BS124", 1, 1, nil, 0)
		require.NoError(t, o.Cancel())
		assert.Equal(t, OrderStatusCancelled, o.Status)
	})

	t.Run("配送中不能取消", func(t *testing.T) {
		o := NewOrder("BS125", 1, 1, nil, 0)
		require.NoError(t, o.Deliver())

		err := o.Cancel()
		assert.ErrorIs(t, err, ErrInvalidStatusTransition)
		assert.Equal(t, OrderStatusDelivering, o.Status, "非法转换后状态不变")
	})

	t.Run("终态不能再流转", func(t *testing.T) {
		completed := NewOrder("BS126", 1, 1, nil, 0)
		require.NoError(t, completed.Deliver())
		require.NoError(t, completed.Complete())
		assert.Error(t, completed.Deliver())
		assert.Error(t, completed.Cancel())

		cancelled := NewOrder("BS127", 1, 1, nil, 0)
		require.NoError(t, cancelled.Cancel())
		assert.Error(t, cancelled.Deliver())
		assert.Error(t, cancelled.Complete())
	})

	t.Run("不能跳过配送直接完成", func(t *testing.T) {
		o := NewOrder("BS128", 1, 1, nil, 0)
		assert.ErrorIs(t, o.Complete(), ErrInvalidStatusTransition)
	})
}

// TestOrderTotal 测试订单金额计算
func TestOrderTotal(t *testing.T) {
	items := []OrderItem{
		{BookID: 1, Quantity: 2, Price: 50000},
		{BookID: 2, Quantity: 1, Price: 18000}, // 300元打了40%折后入车的锁定价
	}
	o := NewOrder("BS129", 1, 1, items, 118000)

	assert.Equal(t, int64(118000), o.CalculateTotal(), "明细合计应该与Total一致")
	assert.Equal(t, int64(100000), items[0].Subtotal())
}

// TestIsOwnedBy 测试订单归属判断
func TestIsOwnedBy(t *testing.T) {
	o := NewOrder("BS130", 42, 1, nil, 0)
	assert.True(t, o.IsOwnedBy(42))
	assert.False(t, o.IsOwnedBy(7))
}
