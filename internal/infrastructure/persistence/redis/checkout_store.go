package redis

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/xiebiao/bookshop/internal/domain/checkout"
	apperrors "github.com/xiebiao/bookshop/pkg/errors"
)

// checkoutTTL 结账状态的存活时间
// 用户放弃的结账(既不确认也不取消)到期自动清理
const checkoutTTL = 24 * time.Hour

// CheckoutStore 结账状态存储(Redis实现)
// 设计说明：
// 1. 结账状态 = 累积字段Hash + 当前编辑字段String,两个Key按用户隔离
// 2. Key设计：checkout:data:{user_id}、checkout:field:{user_id}
// 3. 每次写操作都刷新TTL:活跃的结账不会中途过期
type CheckoutStore struct {
	client *redis.Client
}

// NewCheckoutStore 创建结账状态存储
func NewCheckoutStore(client *redis.Client) checkout.Store {
	return &CheckoutStore{client: client}
}

func dataKey(userID uint) string {
	return fmt.Sprintf("checkout:data:%d", userID)
}

func fieldKey(userID uint) string {
	return fmt.Sprintf("checkout:field:%d", userID)
}

// SetEditingField 记录当前正在编辑的字段
func (s *CheckoutStore) SetEditingField(ctx context.Context, userID uint, field checkout.Field) error {
	if err := s.client.Set(ctx, fieldKey(userID), string(field), checkoutTTL).Err(); err != nil {
		return apperrors.Wrap(err, "记录编辑字段失败")
	}
	return nil
}

// GetEditingField 读取当前正在编辑的字段
// 不在编辑状态时返回("", false, nil)
func (s *CheckoutStore) GetEditingField(ctx context.Context, userID uint) (checkout.Field, bool, error) {
	val, err := s.client.Get(ctx, fieldKey(userID)).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return "", false, nil
		}
		return "", false, apperrors.Wrap(err, "读取编辑字段失败")
	}
	return checkout.Field(val), true, nil
}

// ClearEditingField 退出字段输入状态
func (s *CheckoutStore) ClearEditingField(ctx context.Context, userID uint) error {
	if err := s.client.Del(ctx, fieldKey(userID)).Err(); err != nil {
		return apperrors.Wrap(err, "清除编辑字段失败")
	}
	return nil
}

// SaveValue 把值写入累积数据Hash
func (s *CheckoutStore) SaveValue(ctx context.Context, userID uint, field checkout.Field, value string) error {
	key := dataKey(userID)

	if err := s.client.HSet(ctx, key, string(field), value).Err(); err != nil {
		return apperrors.Wrap(err, "保存结账字段失败")
	}
	// 写入后刷新TTL
	if err := s.client.Expire(ctx, key, checkoutTTL).Err(); err != nil {
		return apperrors.Wrap(err, "刷新结账状态TTL失败")
	}

	return nil
}

// GetData 读取全部累积数据
// 结账未开始时返回空map(不是错误)
func (s *CheckoutStore) GetData(ctx context.Context, userID uint) (map[checkout.Field]string, error) {
	result, err := s.client.HGetAll(ctx, dataKey(userID)).Result()
	if err != nil {
		return nil, apperrors.Wrap(err, "读取结账数据失败")
	}

	data := make(map[checkout.Field]string, len(result))
	for k, v := range result {
		data[checkout.Field(k)] = v
	}
	return data, nil
}

// Clear 丢弃全部结账状态
// 取消结账或下单成功后调用;对购物车和库存没有任何副作用
func (s *CheckoutStore) Clear(ctx context.Context, userID uint) error {
	if err := s.client.Del(ctx, dataKey(userID), fieldKey(userID)).Err(); err != nil {
		return apperrors.Wrap(err, "清除结账状态失败")
	}
	return nil
}
