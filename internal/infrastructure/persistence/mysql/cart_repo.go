package mysql

import (
	"context"
	"errors"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/xiebiao/bookshop/internal/domain/cart"
	apperrors "github.com/xiebiao/bookshop/pkg/errors"
)

// cartRepository 购物车仓储实现(MySQL)
// 设计说明:
// 1. 一人一车:GetByUserID查不到时惰性创建空车
// 2. UpsertItem依赖(cart_id, book_id)唯一索引+ON DUPLICATE KEY UPDATE,
//    并发重复加入也只会落一行
// 3. 所有写操作通过getDB参与事务(订单提交管线在事务内清空购物车)
type cartRepository struct {
	db *gorm.DB
}

// NewCartRepository 创建购物车仓储
func NewCartRepository(db *gorm.DB) cart.Repository {
	return &cartRepository{db: db}
}

// GetByUserID 获取用户的购物车(不存在则创建)
func (r *cartRepository) GetByUserID(ctx context.Context, userID uint) (*cart.Cart, error) {
	db := getDB(ctx, r.db)

	var model CartModel
	err := db.Preload("Items", func(db *gorm.DB) *gorm.DB {
		return db.Order("cart_items.id ASC") // 行顺序稳定,枚举可复现
	}).Where("user_id = ?", userID).First(&model).Error

	if err != nil {
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.Wrap(err, "查询购物车失败")
		}
		// 惰性创建空车
		// 并发首次加入时可能撞user_id唯一索引,撞了就再查一次
		model = CartModel{UserID: userID}
		if err := db.Create(&model).Error; err != nil {
			if isDuplicateError(err) {
				return r.GetByUserID(ctx, userID)
			}
			return nil, apperrors.Wrap(err, "创建购物车失败")
		}
	}

	return toCartEntity(&model), nil
}

// UpsertItem 加入一件商品(原子操作)
// INSERT ... ON DUPLICATE KEY UPDATE quantity = quantity + 1
// 已存在的行只递增数量,price列不在更新集合中,锁定价保持不变
func (r *cartRepository) UpsertItem(ctx context.Context, cartID, bookID uint, lockedPrice int64) error {
	db := getDB(ctx, r.db)

	item := CartItemModel{
		CartID:   cartID,
		BookID:   bookID,
		Quantity: 1,
		Price:    lockedPrice,
	}

	err := db.Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "cart_id"}, {Name: "book_id"}},
		DoUpdates: clause.Assignments(map[string]interface{}{
			"quantity": gorm.Expr("quantity + 1"),
		}),
	}).Create(&item).Error

	if err != nil {
		return apperrors.Wrap(err, "加入购物车失败")
	}

	return nil
}

// RemoveItem 删除一行商品
func (r *cartRepository) RemoveItem(ctx context.Context, cartID, bookID uint) error {
	db := getDB(ctx, r.db)

	result := db.Where("cart_id = ? AND book_id = ?", cartID, bookID).
		Delete(&CartItemModel{})

	if result.Error != nil {
		return apperrors.Wrap(result.Error, "删除购物车行失败")
	}

	if result.RowsAffected == 0 {
		return cart.ErrItemNotFound
	}

	return nil
}

// Clear 清空购物车的所有行
// 返回是否真的删除了行:空车清空返回false,调用方据此提示"购物车本来就是空的"
func (r *cartRepository) Clear(ctx context.Context, cartID uint) (bool, error) {
	db := getDB(ctx, r.db)

	result := db.Where("cart_id = ?", cartID).Delete(&CartItemModel{})
	if result.Error != nil {
		return false, apperrors.Wrap(result.Error, "清空购物车失败")
	}

	return result.RowsAffected > 0, nil
}

// =========================================
// 辅助函数:模型转换
// =========================================

// toCartEntity GORM模型 → 领域实体
func toCartEntity(model *CartModel) *cart.Cart {
	items := make([]cart.CartItem, len(model.Items))
	for i, im := range model.Items {
		items[i] = cart.CartItem{
			ID:       im.ID,
			CartID:   im.CartID,
			BookID:   im.BookID,
			Quantity: im.Quantity,
			Price:    im.Price,
		}
	}

	return &cart.Cart{
		ID:        model.ID,
		UserID:    model.UserID,
		Items:     items,
		CreatedAt: model.CreatedAt,
		UpdatedAt: model.UpdatedAt,
	}
}
