package checkout

import (
	"context"
)

// Store 结账状态存储接口(依赖倒置原则)
// 设计说明:
// 1. 结账是一个可随机跳转编辑的引导流程,机器状态 = 累积的字段map + 当前正在编辑的字段
// 2. 状态按用户隔离,由infrastructure层用Redis实现(带TTL,放弃的结账自动过期)
// 3. 取消结账 = Clear,对购物车和库存没有任何副作用
type Store interface {
	// SetEditingField 记录当前正在编辑的字段(进入字段输入状态)
	SetEditingField(ctx context.Context, userID uint, field Field) error

	// GetEditingField 读取当前正在编辑的字段
	// 不在编辑状态时返回("", false, nil)
	GetEditingField(ctx context.Context, userID uint) (Field, bool, error)

	// ClearEditingField 退出字段输入状态(回到摘要视图)
	ClearEditingField(ctx context.Context, userID uint) error

	// SaveValue 把值写入累积数据map
	SaveValue(ctx context.Context, userID uint, field Field, value string) error

	// GetData 读取全部累积数据
	GetData(ctx context.Context, userID uint) (map[Field]string, error)

	// Clear 丢弃全部结账状态(确认成功或用户返回主菜单时调用)
	Clear(ctx context.Context, userID uint) error
}
