package address

import (
	"context"
)

// Repository 收货信息仓储接口
// 设计说明:
// 1. 一人一份档案:FindByUserID按用户查,Save按user_id幂等落库
// 2. 订单确认时结账流程把累积的字段一次性Save,再把ID交给下单管线
type Repository interface {
	// FindByID 根据ID查找收货信息
	FindByID(ctx context.Context, id uint) (*Address, error)

	// FindByUserID 查找用户的收货信息(不存在返回ErrAddressNotFound)
	FindByUserID(ctx context.Context, userID uint) (*Address, error)

	// Save 保存收货信息(不存在则创建,存在则整体更新)
	// 保存前调用方应先Refresh()重算IsComplete
	Save(ctx context.Context, addr *Address) error
}
