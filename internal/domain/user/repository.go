package user

import (
	"context"
)

// Repository 用户仓储接口
// 接口定义在domain层（依赖倒置原则），具体实现在infrastructure层
type Repository interface {
	// Create 创建用户
	// 邮箱已存在时返回errors.ErrEmailDuplicate
	Create(ctx context.Context, user *User) error

	// FindByID 根据ID查找用户
	FindByID(ctx context.Context, id uint) (*User, error)

	// FindByEmail 根据邮箱查找用户
	FindByEmail(ctx context.Context, email string) (*User, error)

	// Update 更新用户信息
	Update(ctx context.Context, user *User) error

	// UpdateBalance 调整账户余额(原子操作)
	// delta为正数表示充值,负数表示扣款
	// 余额不足时返回errors.ErrInsufficientBalance
	UpdateBalance(ctx context.Context, id uint, delta int64) error

	// Delete 删除用户（软删除）
	Delete(ctx context.Context, id uint) error
}
