package mysql

import (
	"context"
	"errors"

	"gorm.io/gorm"

	"github.com/xiebiao/bookshop/internal/domain/order"
	apperrors "github.com/xiebiao/bookshop/pkg/errors"
)

// orderRepository 订单仓储实现(MySQL)
// 设计说明:
// 1. 订单与明细一起写入(GORM关联自动插入Items)
// 2. Create必须通过getDB参与下单事务:与锁库存、扣库存、清购物车同生共死
// 3. 明细行的price是下单时的价格快照,写入后不再变化
type orderRepository struct {
	db *gorm.DB
}

// NewOrderRepository 创建订单仓储
func NewOrderRepository(db *gorm.DB) order.Repository {
	return &orderRepository{db: db}
}

// Create 创建订单(包含订单明细)
func (r *orderRepository) Create(ctx context.Context, o *order.Order) error {
	db := getDB(ctx, r.db)

	model := toOrderModel(o)

	// Create会级联插入Items(外键OrderID自动回填)
	if err := db.Create(model).Error; err != nil {
		if isDuplicateError(err) {
			// 订单号撞了,概率极低,调用方重试会生成新号
			return apperrors.New(apperrors.ErrCodeDuplicateEntry, "订单号冲突")
		}
		return apperrors.Wrap(err, "创建订单失败")
	}

	// 回填自增ID
	o.ID = model.ID
	o.CreatedAt = model.CreatedAt
	o.UpdatedAt = model.UpdatedAt
	for i := range model.Items {
		o.Items[i].ID = model.Items[i].ID
		o.Items[i].OrderID = model.Items[i].OrderID
	}

	return nil
}

// FindByID 根据ID查找订单(包含订单明细)
func (r *orderRepository) FindByID(ctx context.Context, id uint) (*order.Order, error) {
	db := getDB(ctx, r.db)

	var model OrderModel
	err := db.Preload("Items").First(&model, id).Error

	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, order.ErrOrderNotFound
		}
		return nil, apperrors.Wrap(err, "查询订单失败")
	}

	return toOrderEntity(&model), nil
}

// FindByOrderNo 根据订单号查找订单
func (r *orderRepository) FindByOrderNo(ctx context.Context, orderNo string) (*order.Order, error) {
	db := getDB(ctx, r.db)

	var model OrderModel
	err := db.Preload("Items").Where("order_no = ?", orderNo).First(&model).Error

	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, order.ErrOrderNotFound
		}
		return nil, apperrors.Wrap(err, "查询订单失败")
	}

	return toOrderEntity(&model), nil
}

// UpdateStatus 更新订单状态(条件写入)
// 明细是不可变的价格快照,只有状态和送达日期可变。
// WHERE带上旧状态做比对:普通读(快照读)不加锁,两个并发请求
// 可能都读到同一个旧状态并各自通过内存校验,比对失败的那个
// 在这里被拦下,不会覆盖已进入终态的订单
func (r *orderRepository) UpdateStatus(ctx context.Context, o *order.Order, from order.OrderStatus) error {
	db := getDB(ctx, r.db)

	result := db.Model(&OrderModel{}).
		Where("id = ? AND status = ?", o.ID, int(from)).
		Updates(map[string]interface{}{
			"status":        int(o.Status),
			"delivery_date": o.DeliveryDate,
		})

	if result.Error != nil {
		return apperrors.Wrap(result.Error, "更新订单状态失败")
	}

	if result.RowsAffected == 0 {
		// 没更新到:要么订单不存在,要么状态已被并发修改
		var count int64
		if err := db.Model(&OrderModel{}).Where("id = ?", o.ID).Count(&count).Error; err != nil {
			return apperrors.Wrap(err, "查询订单失败")
		}
		if count == 0 {
			return order.ErrOrderNotFound
		}
		return order.ErrInvalidStatusTransition
	}

	return nil
}

// ListByUserID 查询用户的订单列表(分页,按创建时间倒序)
func (r *orderRepository) ListByUserID(ctx context.Context, userID uint, page, pageSize int) ([]*order.Order, int64, error) {
	var models []OrderModel
	var total int64

	query := r.db.WithContext(ctx).Model(&OrderModel{}).Where("user_id = ?", userID)

	if err := query.Count(&total).Error; err != nil {
		return nil, 0, apperrors.Wrap(err, "查询订单总数失败")
	}

	offset := (page - 1) * pageSize
	err := query.Preload("Items").
		Order("created_at DESC").
		Limit(pageSize).Offset(offset).
		Find(&models).Error

	if err != nil {
		return nil, 0, apperrors.Wrap(err, "查询订单列表失败")
	}

	orders := make([]*order.Order, len(models))
	for i := range models {
		orders[i] = toOrderEntity(&models[i])
	}

	return orders, total, nil
}

// =========================================
// 辅助函数:模型转换
// =========================================

// toOrderModel 领域实体 → GORM模型
func toOrderModel(o *order.Order) *OrderModel {
	items := make([]OrderItemModel, len(o.Items))
	for i, it := range o.Items {
		items[i] = OrderItemModel{
			BookID:   it.BookID,
			Quantity: it.Quantity,
			Price:    it.Price,
		}
	}

	return &OrderModel{
		ID:           o.ID,
		OrderNo:      o.OrderNo,
		UserID:       o.UserID,
		AddressID:    o.AddressID,
		Total:        o.Total,
		Status:       int(o.Status),
		DeliveryDate: o.DeliveryDate,
		Items:        items,
	}
}

// toOrderEntity GORM模型 → 领域实体
func toOrderEntity(model *OrderModel) *order.Order {
	items := make([]order.OrderItem, len(model.Items))
	for i, im := range model.Items {
		items[i] = order.OrderItem{
			ID:       im.ID,
			OrderID:  im.OrderID,
			BookID:   im.BookID,
			Quantity: im.Quantity,
			Price:    im.Price,
		}
	}

	return &order.Order{
		ID:           model.ID,
		OrderNo:      model.OrderNo,
		UserID:       model.UserID,
		AddressID:    model.AddressID,
		Total:        model.Total,
		Status:       order.OrderStatus(model.Status),
		DeliveryDate: model.DeliveryDate,
		Items:        items,
		CreatedAt:    model.CreatedAt,
		UpdatedAt:    model.UpdatedAt,
	}
}
