package order

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"

	"github.com/xiebiao/bookshop/internal/domain/book"
	"github.com/xiebiao/bookshop/internal/domain/cart"
	"github.com/xiebiao/bookshop/internal/domain/order"
	"github.com/xiebiao/bookshop/internal/domain/user"
	"github.com/xiebiao/bookshop/internal/infrastructure/persistence/mysql"
	apperrors "github.com/xiebiao/bookshop/pkg/errors"
	"github.com/xiebiao/bookshop/pkg/metrics"
	"github.com/xiebiao/bookshop/pkg/tracing"
)

// maxRetries 事务冲突(死锁/锁等待超时)时的最大重试次数
const maxRetries = 3

// TxManager 事务管理器接口
// 生产环境由mysql.TxManager实现,测试中用内存事务替身
type TxManager interface {
	Transaction(ctx context.Context, fn func(ctx context.Context) error) error
}

// EventPublisher 订单事件发布接口
// 生产环境由eventbus.OrderEventPublisher实现(RabbitMQ+熔断器)
type EventPublisher interface {
	PublishOrderCreated(ctx context.Context, event order.OrderCreatedEvent)
}

// PlaceOrderUseCase 从购物车下单用例
// 这是整个项目最核心的用例:事务处理、悲观锁防超卖、有限重试
type PlaceOrderUseCase struct {
	orderRepo order.Repository
	bookRepo  book.Repository
	cartRepo  cart.Repository
	userRepo  user.Repository
	txManager TxManager
	events    EventPublisher
}

// NewPlaceOrderUseCase 创建下单用例
func NewPlaceOrderUseCase(
	orderRepo order.Repository,
	bookRepo book.Repository,
	cartRepo cart.Repository,
	userRepo user.Repository,
	txManager TxManager,
	events EventPublisher,
) *PlaceOrderUseCase {
	return &PlaceOrderUseCase{
		orderRepo: orderRepo,
		bookRepo:  bookRepo,
		cartRepo:  cartRepo,
		userRepo:  userRepo,
		txManager: txManager,
		events:    events,
	}
}

// PlaceOrderRequest 下单请求DTO
type PlaceOrderRequest struct {
	UserID        uint       // 买家用户ID(从JWT中提取)
	AddressID     uint       // 收货信息ID(结账流程落库后传入)
	DeliveryDate  *time.Time // 期望送达日期
	PaymentMethod string     // 支付方式(cash/card/balance)
}

// PlaceOrderResponse 下单响应DTO
type PlaceOrderResponse struct {
	OrderID   uint   `json:"order_id"`
	OrderNo   string `json:"order_no"`
	Total     int64  `json:"total"`
	TotalYuan string `json:"total_yuan"`
	Status    string `json:"status"`
	CreatedAt string `json:"created_at"`
}

// Execute 执行下单
//
// 核心问题:库存超卖
// 场景:图书库存10本,100人同时下单
// 错误实现:先查库存再判断再扣减,100个请求都能通过判断(超卖90本!)
//
// 正确实现:单事务+悲观锁
//  1. 读购物车,空车直接拒绝
//  2. 按图书ID升序SELECT FOR UPDATE锁定每本书(固定加锁顺序,降低死锁概率)
//  3. 在锁内逐行核对库存,收集所有问题行(一次性报全,不是报第一个就停)
//  4. 有问题 → 返回库存不足错误,事务回滚,购物车原样保留
//  5. 全部可满足 → 扣库存、(余额支付时)扣余额、写订单+明细、清空购物车
//  6. COMMIT释放锁
//
// 死锁或锁等待超时时整个事务重试,最多3次,仍失败返回ErrTransactionConflict。
func (uc *PlaceOrderUseCase) Execute(ctx context.Context, req PlaceOrderRequest) (*PlaceOrderResponse, error) {
	ctx, span := tracing.StartSpan(ctx, "bookshop", "PlaceOrder")
	defer span.End()
	span.SetAttributes(attribute.Int("user_id", int(req.UserID)))

	start := time.Now()

	var result *order.Order
	var err error
	for attempt := 0; attempt < maxRetries; attempt++ {
		if attempt > 0 {
			metrics.OrderRetriesTotal.Inc()
		}

		result, err = uc.placeOnce(ctx, req)
		if err == nil || !mysql.IsConflictError(err) {
			break
		}
		// 死锁让MySQL挑了牺牲者,整个事务重来
	}

	if err != nil {
		if mysql.IsConflictError(err) {
			err = apperrors.ErrTransactionConflict
		}
		metrics.OrdersFailedTotal.Inc()
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}

	metrics.OrdersCreatedTotal.Inc()
	metrics.OrderCreationDuration.Observe(time.Since(start).Seconds())
	metrics.OrderAmount.Observe(float64(result.Total))
	span.SetAttributes(attribute.String("order_no", result.OrderNo))
	span.SetStatus(codes.Ok, "订单创建成功")

	// 事务已提交,事件发布是尽力而为(失败只记日志)
	uc.events.PublishOrderCreated(ctx, order.NewOrderCreatedEvent(result))

	return &PlaceOrderResponse{
		OrderID:   result.ID,
		OrderNo:   result.OrderNo,
		Total:     result.Total,
		TotalYuan: formatPrice(result.Total),
		Status:    result.Status.String(),
		CreatedAt: result.CreatedAt.Format("2006-01-02 15:04:05"),
	}, nil
}

// placeOnce 单次下单事务
func (uc *PlaceOrderUseCase) placeOnce(ctx context.Context, req PlaceOrderRequest) (*order.Order, error) {
	var result *order.Order

	err := uc.txManager.Transaction(ctx, func(txCtx context.Context) error {
		// 步骤1:读购物车
		c, err := uc.cartRepo.GetByUserID(txCtx, req.UserID)
		if err != nil {
			return err
		}
		if c.IsEmpty() {
			return apperrors.ErrEmptyCart
		}

		// 步骤2:锁定库存(悲观锁,防止并发超卖)
		// 按图书ID升序加锁:所有并发事务用同一加锁顺序,降低死锁概率
		items := make([]cart.CartItem, len(c.Items))
		copy(items, c.Items)
		sort.Slice(items, func(i, j int) bool { return items[i].BookID < items[j].BookID })

		// 步骤3:在锁内核对库存,收集所有问题行
		var problems []string
		lockedStock := make(map[uint]int, len(items))
		for _, item := range items {
			b, err := uc.bookRepo.LockByID(txCtx, item.BookID)
			if err != nil {
				if apperrors.IsCode(err, apperrors.ErrCodeBookNotFound) {
					problems = append(problems, fmt.Sprintf("图书不存在(ID:%d)", item.BookID))
					continue
				}
				return err
			}
			if b.Stock < item.Quantity {
				problems = append(problems, fmt.Sprintf("图书《%s》库存不足,当前库存:%d,需要:%d",
					b.Title, b.Stock, item.Quantity))
				continue
			}
			lockedStock[item.BookID] = b.Stock
		}

		// 有任何问题行就整单拒绝:报全所有问题,事务回滚,购物车原样保留
		if len(problems) > 0 {
			return apperrors.Newf(apperrors.ErrCodeInsufficientStock,
				"无法下单:%s", strings.Join(problems, ";"))
		}

		// 步骤4:扣减库存
		for _, item := range items {
			if err := uc.bookRepo.UpdateStock(txCtx, item.BookID, -item.Quantity); err != nil {
				return err
			}
		}

		// 步骤5:余额支付时原子扣款
		total := c.TotalPrice()
		if req.PaymentMethod == "balance" {
			if err := uc.userRepo.UpdateBalance(txCtx, req.UserID, -total); err != nil {
				return err
			}
		}

		// 步骤6:创建订单(明细价格 = 购物车锁定价,不是当前促销价)
		orderItems := make([]order.OrderItem, len(c.Items))
		for i, item := range c.Items {
			orderItems[i] = order.OrderItem{
				BookID:   item.BookID,
				Quantity: item.Quantity,
				Price:    item.Price,
			}
		}

		newOrder := order.NewOrder(order.GenerateOrderNo(), req.UserID, req.AddressID, orderItems, total)
		if req.DeliveryDate != nil {
			newOrder.SetDeliveryDate(*req.DeliveryDate)
		}

		if err := uc.orderRepo.Create(txCtx, newOrder); err != nil {
			return err
		}

		// 步骤7:清空购物车(与订单创建同事务,要么都成要么都不成)
		if _, err := uc.cartRepo.Clear(txCtx, c.ID); err != nil {
			return err
		}

		result = newOrder
		return nil
	})

	if err != nil {
		return nil, err
	}
	return result, nil
}

// formatPrice 格式化价格(分→元)
func formatPrice(priceFen int64) string {
	yuan := float64(priceFen) / 100.0
	return fmt.Sprintf("%.2f", yuan)
}
