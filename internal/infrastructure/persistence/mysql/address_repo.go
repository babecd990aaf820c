package mysql

import (
	"context"
	"errors"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/xiebiao/bookshop/internal/domain/address"
	apperrors "github.com/xiebiao/bookshop/pkg/errors"
)

// addressRepository 收货信息仓储实现(MySQL)
// 一人一份档案:Save按user_id唯一索引做upsert
type addressRepository struct {
	db *gorm.DB
}

// NewAddressRepository 创建收货信息仓储
func NewAddressRepository(db *gorm.DB) address.Repository {
	return &addressRepository{db: db}
}

// FindByID 根据ID查找收货信息
func (r *addressRepository) FindByID(ctx context.Context, id uint) (*address.Address, error) {
	var model AddressModel
	err := r.db.WithContext(ctx).First(&model, id).Error

	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, address.ErrAddressNotFound
		}
		return nil, apperrors.Wrap(err, "查询收货信息失败")
	}

	return toAddressEntity(&model), nil
}

// FindByUserID 查找用户的收货信息
func (r *addressRepository) FindByUserID(ctx context.Context, userID uint) (*address.Address, error) {
	var model AddressModel
	err := r.db.WithContext(ctx).Where("user_id = ?", userID).First(&model).Error

	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, address.ErrAddressNotFound
		}
		return nil, apperrors.Wrap(err, "查询收货信息失败")
	}

	return toAddressEntity(&model), nil
}

// Save 保存收货信息(不存在则创建,存在则整体更新)
// INSERT ... ON DUPLICATE KEY UPDATE,user_id唯一索引保证一人一份
func (r *addressRepository) Save(ctx context.Context, addr *address.Address) error {
	db := getDB(ctx, r.db)

	model := &AddressModel{
		ID:            addr.ID,
		UserID:        addr.UserID,
		Name:          addr.Name,
		Email:         addr.Email,
		Phone:         addr.Phone,
		City:          addr.City,
		Street:        addr.Street,
		House:         addr.House,
		Apartment:     addr.Apartment,
		PaymentMethod: addr.PaymentMethod,
		Comment:       addr.Comment,
		IsComplete:    addr.IsComplete,
	}

	err := db.Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "user_id"}},
		DoUpdates: clause.AssignmentColumns([]string{
			"name", "email", "phone", "city", "street", "house",
			"apartment", "payment_method", "comment", "is_complete",
		}),
	}).Create(model).Error

	if err != nil {
		return apperrors.Wrap(err, "保存收货信息失败")
	}

	// upsert走UPDATE分支时model.ID是插入尝试的ID,回查拿真实ID
	if model.ID == 0 || addr.ID == 0 {
		var saved AddressModel
		if err := db.Where("user_id = ?", addr.UserID).First(&saved).Error; err != nil {
			return apperrors.Wrap(err, "回查收货信息失败")
		}
		addr.ID = saved.ID
		addr.CreatedAt = saved.CreatedAt
		addr.UpdatedAt = saved.UpdatedAt
	}

	return nil
}

// toAddressEntity GORM模型 → 领域实体
func toAddressEntity(model *AddressModel) *address.Address {
	return &address.Address{
		ID:            model.ID,
		UserID:        model.UserID,
		Name:          model.Name,
		Email:         model.Email,
		Phone:         model.Phone,
		City:          model.City,
		Street:        model.Street,
		House:         model.House,
		Apartment:     model.Apartment,
		PaymentMethod: model.PaymentMethod,
		Comment:       model.Comment,
		IsComplete:    model.IsComplete,
		CreatedAt:     model.CreatedAt,
		UpdatedAt:     model.UpdatedAt,
	}
}
