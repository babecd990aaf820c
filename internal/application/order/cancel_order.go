package order

import (
	"context"

	"github.com/xiebiao/bookshop/internal/domain/address"
	"github.com/xiebiao/bookshop/internal/domain/book"
	"github.com/xiebiao/bookshop/internal/domain/order"
	"github.com/xiebiao/bookshop/internal/domain/user"
	apperrors "github.com/xiebiao/bookshop/pkg/errors"
)

// CancelOrderUseCase 取消订单用例
// 设计说明:
// 1. 只有"处理中"的订单可以取消(配送中/已完成/已取消都不行)
// 2. 取消与回补库存在同一事务:状态改了库存必须回来
// 3. 余额支付的订单取消时原路退回余额
type CancelOrderUseCase struct {
	orderRepo   order.Repository
	bookRepo    book.Repository
	userRepo    user.Repository
	addressRepo address.Repository
	txManager   TxManager
}

// NewCancelOrderUseCase 创建取消订单用例
func NewCancelOrderUseCase(
	orderRepo order.Repository,
	bookRepo book.Repository,
	userRepo user.Repository,
	addressRepo address.Repository,
	txManager TxManager,
) *CancelOrderUseCase {
	return &CancelOrderUseCase{
		orderRepo:   orderRepo,
		bookRepo:    bookRepo,
		userRepo:    userRepo,
		addressRepo: addressRepo,
		txManager:   txManager,
	}
}

// Execute 执行取消订单(只能取消自己的订单)
func (uc *CancelOrderUseCase) Execute(ctx context.Context, userID uint, orderNo string) error {
	return uc.txManager.Transaction(ctx, func(txCtx context.Context) error {
		o, err := uc.orderRepo.FindByOrderNo(txCtx, orderNo)
		if err != nil {
			return err
		}

		if !o.IsOwnedBy(userID) {
			return apperrors.ErrOrderNotFound
		}

		// 状态流转校验(只有处理中可取消)
		from := o.Status
		if err := o.Cancel(); err != nil {
			return err
		}

		// 条件写入:并发的另一个请求抢先改了状态,这里比对失败,
		// 整个事务回滚,库存不会被重复回补
		if err := uc.orderRepo.UpdateStatus(txCtx, o, from); err != nil {
			return err
		}

		// 回补库存
		for _, item := range o.Items {
			if err := uc.bookRepo.UpdateStock(txCtx, item.BookID, item.Quantity); err != nil {
				// 图书可能已被删除,回补失败不阻塞取消
				if apperrors.IsCode(err, apperrors.ErrCodeBookNotFound) {
					continue
				}
				return err
			}
		}

		// 余额支付的订单退回余额
		addr, err := uc.addressRepo.FindByID(txCtx, o.AddressID)
		if err == nil && addr.PaymentMethod == "balance" {
			if err := uc.userRepo.UpdateBalance(txCtx, o.UserID, o.Total); err != nil {
				return err
			}
		}

		return nil
	})
}
