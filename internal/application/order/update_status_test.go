package order

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/xiebiao/bookshop/internal/domain/address"
	"github.com/xiebiao/bookshop/internal/domain/order"
)

// fixedAddressRepo 取消订单时只用来查支付方式
type fixedAddressRepo struct {
	paymentMethod string
}

func (r *fixedAddressRepo) FindByID(ctx context.Context, id uint) (*address.Address, error) {
	return &address.Address{ID: id, PaymentMethod: r.paymentMethod}, nil
}

func (r *fixedAddressRepo) FindByUserID(ctx context.Context, userID uint) (*address.Address, error) {
	panic("not used")
}

func (r *fixedAddressRepo) Save(ctx context.Context, addr *address.Address) error {
	panic("not used")
}

// staleOrderRepo 模拟并发下的过期读:
// 返回的订单停留在旧状态,而存储中的状态已被另一个请求改掉
type staleOrderRepo struct {
	memOrderRepo
	staleStatus order.OrderStatus
}

func (r *staleOrderRepo) FindByOrderNo(ctx context.Context, orderNo string) (*order.Order, error) {
	o, err := r.memOrderRepo.FindByOrderNo(ctx, orderNo)
	if err != nil {
		return nil, err
	}
	o.Status = r.staleStatus
	return o, nil
}

// placeTestOrder 下一单作为状态流转测试的起点
func placeTestOrder(t *testing.T, s *memStore, paymentMethod string) string {
	t.Helper()
	uc, _ := newTestUseCase(s)
	resp, err := uc.Execute(context.Background(),
		PlaceOrderRequest{UserID: 1, AddressID: 1, PaymentMethod: paymentMethod})
	require.NoError(t, err)
	return resp.OrderNo
}

// TestOrderStatusFlow 测试发货→完成的正常流转
func TestOrderStatusFlow(t *testing.T) {
	s := newMemStore()
	seedScenario(s)
	orderNo := placeTestOrder(t, s, "cash")
	uc := NewUpdateStatusUseCase(&memOrderRepo{s})

	resp, err := uc.Deliver(context.Background(), orderNo)
	require.NoError(t, err)
	assert.Equal(t, "配送中", resp.Status)

	resp, err = uc.Complete(context.Background(), orderNo)
	require.NoError(t, err)
	assert.Equal(t, "已完成", resp.Status)

	// 终态后不能再流转
	_, err = uc.Deliver(context.Background(), orderNo)
	assert.ErrorIs(t, err, order.ErrInvalidStatusTransition)
}

// TestCancelOrderRestocksAndRefunds 测试取消订单回补库存并退回余额
func TestCancelOrderRestocksAndRefunds(t *testing.T) {
	s := newMemStore()
	seedScenario(s)
	orderNo := placeTestOrder(t, s, "balance")
	require.Equal(t, int64(382000), s.state.users[1].Balance)
	require.Equal(t, 8, s.state.books[1].Stock)

	uc := NewCancelOrderUseCase(&memOrderRepo{s}, &memBookRepo{s}, &memUserRepo{s},
		&fixedAddressRepo{paymentMethod: "balance"}, s)
	require.NoError(t, uc.Execute(context.Background(), 1, orderNo))

	assert.Equal(t, order.OrderStatusCancelled, s.state.orders[0].Status)
	assert.Equal(t, 10, s.state.books[1].Stock, "取消后库存应该回补")
	assert.Equal(t, 5, s.state.books[2].Stock)
	assert.Equal(t, int64(500000), s.state.users[1].Balance, "余额支付的订单应该退款")
}

// TestCancelOrderStaleStatusNoDoubleRestock 测试并发取消只回补一次库存
// 两个取消请求都读到"处理中"(普通读不加锁),先写入的生效,
// 后写入的在条件更新处比对失败,整个事务回滚
func TestCancelOrderStaleStatusNoDoubleRestock(t *testing.T) {
	s := newMemStore()
	seedScenario(s)
	orderNo := placeTestOrder(t, s, "cash")
	addrRepo := &fixedAddressRepo{paymentMethod: "cash"}

	// 第一个取消正常生效
	uc := NewCancelOrderUseCase(&memOrderRepo{s}, &memBookRepo{s}, &memUserRepo{s}, addrRepo, s)
	require.NoError(t, uc.Execute(context.Background(), 1, orderNo))
	require.Equal(t, 10, s.state.books[1].Stock)

	// 第二个取消基于过期读:看到的还是"处理中"
	stale := &staleOrderRepo{memOrderRepo: memOrderRepo{s}, staleStatus: order.OrderStatusProcessing}
	ucStale := NewCancelOrderUseCase(stale, &memBookRepo{s}, &memUserRepo{s}, addrRepo, s)
	err := ucStale.Execute(context.Background(), 1, orderNo)
	assert.ErrorIs(t, err, order.ErrInvalidStatusTransition)

	// 库存不能被回补两次
	assert.Equal(t, 10, s.state.books[1].Stock, "重复取消不应该再次回补库存")
	assert.Equal(t, 5, s.state.books[2].Stock)
	assert.Equal(t, order.OrderStatusCancelled, s.state.orders[0].Status)
}

// TestDeliverStaleCancelledOrder 测试过期读不能把已取消的订单改成配送中
func TestDeliverStaleCancelledOrder(t *testing.T) {
	s := newMemStore()
	seedScenario(s)
	orderNo := placeTestOrder(t, s, "cash")

	cancelUC := NewCancelOrderUseCase(&memOrderRepo{s}, &memBookRepo{s}, &memUserRepo{s},
		&fixedAddressRepo{paymentMethod: "cash"}, s)
	require.NoError(t, cancelUC.Execute(context.Background(), 1, orderNo))

	// 运营侧的发货请求读到的还是"处理中"
	stale := &staleOrderRepo{memOrderRepo: memOrderRepo{s}, staleStatus: order.OrderStatusProcessing}
	uc := NewUpdateStatusUseCase(stale)
	_, err := uc.Deliver(context.Background(), orderNo)
	assert.ErrorIs(t, err, order.ErrInvalidStatusTransition)

	assert.Equal(t, order.OrderStatusCancelled, s.state.orders[0].Status, "终态不能被覆盖")
}
