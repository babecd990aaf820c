package checkout

import (
	"context"
	"log"
	"strings"
	"time"

	apporder "github.com/xiebiao/bookshop/internal/application/order"
	"github.com/xiebiao/bookshop/internal/domain/address"
	"github.com/xiebiao/bookshop/internal/domain/checkout"
	apperrors "github.com/xiebiao/bookshop/pkg/errors"
)

// ConfirmOrderUseCase 确认下单用例(结账流程的终点)
// 设计说明:
// 1. 确认门槛:必填字段全部就位(这是唯一权威口径,
//    收货档案上的IsComplete只是展示提示)
// 2. 确认时把累积map一次性落到收货档案,再把档案ID交给下单管线
// 3. 下单成功才清结账状态;失败(如库存不足)保留全部已填数据,
//    用户调整购物车后可以直接重试,不用重填
type ConfirmOrderUseCase struct {
	store       checkout.Store
	addressRepo address.Repository
	placeOrder  *apporder.PlaceOrderUseCase
}

// NewConfirmOrderUseCase 创建确认下单用例
func NewConfirmOrderUseCase(
	store checkout.Store,
	addressRepo address.Repository,
	placeOrder *apporder.PlaceOrderUseCase,
) *ConfirmOrderUseCase {
	return &ConfirmOrderUseCase{
		store:       store,
		addressRepo: addressRepo,
		placeOrder:  placeOrder,
	}
}

// Execute 执行确认下单
func (uc *ConfirmOrderUseCase) Execute(ctx context.Context, userID uint) (*apporder.PlaceOrderResponse, error) {
	// 1. 完整性门槛
	data, err := uc.store.GetData(ctx, userID)
	if err != nil {
		return nil, err
	}

	if missing := checkout.MissingFields(data); len(missing) > 0 {
		labels := make([]string, len(missing))
		for i, f := range missing {
			labels[i] = f.Label()
		}
		return nil, apperrors.Newf(apperrors.ErrCodeCheckoutIncomplete,
			"收货信息未填写完整,还差:%s", strings.Join(labels, "、"))
	}

	// 2. 累积map → 收货档案(一人一份,upsert)
	addr, err := uc.saveAddress(ctx, userID, data)
	if err != nil {
		return nil, err
	}

	// 3. 解析送达日期(提交时已校验过格式,这里只做转换)
	var deliveryDate *time.Time
	if v := data[checkout.FieldDeliveryDate]; v != "" {
		d, err := time.ParseInLocation(checkout.DeliveryDateLayout, v, time.Local)
		if err != nil {
			return nil, apperrors.New(apperrors.ErrCodeInvalidParams, "日期格式应为YYYY-MM-DD")
		}
		deliveryDate = &d
	}

	// 4. 交给下单管线(锁库存、扣减、写订单、清购物车,单事务)
	resp, err := uc.placeOrder.Execute(ctx, apporder.PlaceOrderRequest{
		UserID:        userID,
		AddressID:     addr.ID,
		DeliveryDate:  deliveryDate,
		PaymentMethod: data[checkout.FieldPaymentMethod],
	})
	if err != nil {
		// 失败保留结账状态:库存不足时用户改购物车后直接重试
		return nil, err
	}

	// 5. 成功后清结账状态(清失败不影响已创建的订单,状态有TTL兜底)
	if err := uc.store.Clear(ctx, userID); err != nil {
		log.Printf("⚠️ 清除结账状态失败: userID=%d, err=%v", userID, err)
	}

	return resp, nil
}

// saveAddress 把累积数据落到收货档案
func (uc *ConfirmOrderUseCase) saveAddress(ctx context.Context, userID uint, data map[checkout.Field]string) (*address.Address, error) {
	addr, err := uc.addressRepo.FindByUserID(ctx, userID)
	if err != nil {
		if !apperrors.IsCode(err, apperrors.ErrCodeAddressNotFound) {
			return nil, err
		}
		addr = address.NewAddress(userID)
	}

	addr.Name = data[checkout.FieldName]
	addr.Email = data[checkout.FieldEmail]
	addr.Phone = data[checkout.FieldPhone]
	addr.City = data[checkout.FieldCity]
	addr.Street = data[checkout.FieldStreet]
	addr.House = data[checkout.FieldHouse]
	addr.Apartment = data[checkout.FieldApartment]
	addr.PaymentMethod = data[checkout.FieldPaymentMethod]
	addr.Comment = data[checkout.FieldComment]
	addr.Refresh()

	if err := uc.addressRepo.Save(ctx, addr); err != nil {
		return nil, err
	}

	return addr, nil
}
