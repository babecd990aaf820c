package cart

import (
	"context"
)

// Repository 购物车仓储接口(依赖倒置原则)
// 设计说明:
// 1. 由domain层定义接口,infrastructure层实现
// 2. 事务通过context传递:订单提交管线在同一事务内读购物车、扣库存、清空购物车
// 3. "购物车不存在"对调用方不可见:GetByUserID会惰性创建
type Repository interface {
	// GetByUserID 获取用户的购物车(不存在则创建)
	// 返回的Items按行ID稳定排序(枚举顺序可复现)
	GetByUserID(ctx context.Context, userID uint) (*Cart, error)

	// UpsertItem 加入一件商品(原子操作)
	// 已存在(cart,book)行时:数量+1,锁定价不变
	// 不存在时:新建行,数量1,单价为lockedPrice
	UpsertItem(ctx context.Context, cartID, bookID uint, lockedPrice int64) error

	// RemoveItem 删除一行商品
	RemoveItem(ctx context.Context, cartID, bookID uint) error

	// Clear 清空购物车的所有行
	// 返回是否真的删除了行(空车清空返回false,该语义是可观测的)
	Clear(ctx context.Context, cartID uint) (bool, error)
}
