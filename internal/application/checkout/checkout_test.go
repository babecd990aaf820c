package checkout

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apporder "github.com/xiebiao/bookshop/internal/application/order"
	"github.com/xiebiao/bookshop/internal/domain/address"
	"github.com/xiebiao/bookshop/internal/domain/book"
	"github.com/xiebiao/bookshop/internal/domain/cart"
	"github.com/xiebiao/bookshop/internal/domain/checkout"
	"github.com/xiebiao/bookshop/internal/domain/order"
	"github.com/xiebiao/bookshop/internal/domain/user"
	apperrors "github.com/xiebiao/bookshop/pkg/errors"
	"github.com/xiebiao/bookshop/pkg/metrics"
)

func init() {
	// 确认下单会走下单管线,管线内直接打点
	metrics.InitMetrics()
}

// =========================================
// 内存替身
// =========================================

// memCheckoutStore checkout.Store的内存实现(生产环境是Redis)
type memCheckoutStore struct {
	data    map[uint]map[checkout.Field]string
	editing map[uint]checkout.Field
}

func newMemCheckoutStore() *memCheckoutStore {
	return &memCheckoutStore{
		data:    make(map[uint]map[checkout.Field]string),
		editing: make(map[uint]checkout.Field),
	}
}

func (s *memCheckoutStore) SetEditingField(ctx context.Context, userID uint, field checkout.Field) error {
	s.editing[userID] = field
	return nil
}

func (s *memCheckoutStore) GetEditingField(ctx context.Context, userID uint) (checkout.Field, bool, error) {
	f, ok := s.editing[userID]
	return f, ok, nil
}

func (s *memCheckoutStore) ClearEditingField(ctx context.Context, userID uint) error {
	delete(s.editing, userID)
	return nil
}

func (s *memCheckoutStore) SaveValue(ctx context.Context, userID uint, field checkout.Field, value string) error {
	if s.data[userID] == nil {
		s.data[userID] = make(map[checkout.Field]string)
	}
	s.data[userID][field] = value
	return nil
}

func (s *memCheckoutStore) GetData(ctx context.Context, userID uint) (map[checkout.Field]string, error) {
	result := make(map[checkout.Field]string, len(s.data[userID]))
	for f, v := range s.data[userID] {
		result[f] = v
	}
	return result, nil
}

func (s *memCheckoutStore) Clear(ctx context.Context, userID uint) error {
	delete(s.data, userID)
	delete(s.editing, userID)
	return nil
}

// memAddressRepo address.Repository的内存实现
type memAddressRepo struct {
	byUser map[uint]*address.Address
	nextID uint
}

func newMemAddressRepo() *memAddressRepo {
	return &memAddressRepo{byUser: make(map[uint]*address.Address), nextID: 1}
}

func (r *memAddressRepo) FindByID(ctx context.Context, id uint) (*address.Address, error) {
	for _, a := range r.byUser {
		if a.ID == id {
			cp := *a
			return &cp, nil
		}
	}
	return nil, address.ErrAddressNotFound
}

func (r *memAddressRepo) FindByUserID(ctx context.Context, userID uint) (*address.Address, error) {
	a, ok := r.byUser[userID]
	if !ok {
		return nil, address.ErrAddressNotFound
	}
	cp := *a
	return &cp, nil
}

func (r *memAddressRepo) Save(ctx context.Context, addr *address.Address) error {
	if existing, ok := r.byUser[addr.UserID]; ok {
		addr.ID = existing.ID
	} else {
		addr.ID = r.nextID
		r.nextID++
	}
	cp := *addr
	r.byUser[addr.UserID] = &cp
	return nil
}

// memBookRepo 只实现结账和下单用到的方法
type memBookRepo struct {
	books map[uint]*book.Book
}

func (r *memBookRepo) Create(ctx context.Context, b *book.Book) error  { panic("not used") }
func (r *memBookRepo) Update(ctx context.Context, b *book.Book) error  { panic("not used") }
func (r *memBookRepo) Delete(ctx context.Context, id uint) error       { panic("not used") }
func (r *memBookRepo) FindByISBN(ctx context.Context, isbn string) (*book.Book, error) {
	panic("not used")
}
func (r *memBookRepo) List(ctx context.Context, params book.ListParams) ([]*book.Book, int64, error) {
	panic("not used")
}

func (r *memBookRepo) FindByID(ctx context.Context, id uint) (*book.Book, error) {
	b, ok := r.books[id]
	if !ok {
		return nil, book.ErrBookNotFound
	}
	cp := *b
	return &cp, nil
}

func (r *memBookRepo) LockByID(ctx context.Context, id uint) (*book.Book, error) {
	return r.FindByID(ctx, id)
}

func (r *memBookRepo) UpdateStock(ctx context.Context, id uint, delta int) error {
	b, ok := r.books[id]
	if !ok {
		return book.ErrBookNotFound
	}
	if b.Stock+delta < 0 {
		return book.ErrInsufficientStock
	}
	b.Stock += delta
	return nil
}

// memCartRepo 固定返回预置购物车
type memCartRepo struct {
	cart *cart.Cart
}

func (r *memCartRepo) GetByUserID(ctx context.Context, userID uint) (*cart.Cart, error) {
	cp := *r.cart
	cp.Items = append([]cart.CartItem(nil), r.cart.Items...)
	return &cp, nil
}

func (r *memCartRepo) UpsertItem(ctx context.Context, cartID, bookID uint, lockedPrice int64) error {
	panic("not used")
}

func (r *memCartRepo) RemoveItem(ctx context.Context, cartID, bookID uint) error {
	panic("not used")
}

func (r *memCartRepo) Clear(ctx context.Context, cartID uint) (bool, error) {
	had := len(r.cart.Items) > 0
	r.cart.Items = nil
	return had, nil
}

// memOrderRepo 记录创建的订单
type memOrderRepo struct {
	orders []*order.Order
}

func (r *memOrderRepo) Create(ctx context.Context, o *order.Order) error {
	o.ID = uint(len(r.orders) + 1)
	cp := *o
	r.orders = append(r.orders, &cp)
	return nil
}

func (r *memOrderRepo) FindByID(ctx context.Context, id uint) (*order.Order, error) {
	return nil, order.ErrOrderNotFound
}

func (r *memOrderRepo) FindByOrderNo(ctx context.Context, orderNo string) (*order.Order, error) {
	return nil, order.ErrOrderNotFound
}

func (r *memOrderRepo) UpdateStatus(ctx context.Context, o *order.Order, from order.OrderStatus) error {
	return nil
}

func (r *memOrderRepo) ListByUserID(ctx context.Context, userID uint, page, pageSize int) ([]*order.Order, int64, error) {
	return r.orders, int64(len(r.orders)), nil
}

// memUserRepo 下单管线里只有余额支付会用到
type memUserRepo struct{}

func (r *memUserRepo) Create(ctx context.Context, u *user.User) error { panic("not used") }
func (r *memUserRepo) Update(ctx context.Context, u *user.User) error { panic("not used") }
func (r *memUserRepo) Delete(ctx context.Context, id uint) error      { panic("not used") }
func (r *memUserRepo) FindByEmail(ctx context.Context, email string) (*user.User, error) {
	panic("not used")
}
func (r *memUserRepo) FindByID(ctx context.Context, id uint) (*user.User, error) {
	return &user.User{ID: id}, nil
}
func (r *memUserRepo) UpdateBalance(ctx context.Context, id uint, delta int64) error { return nil }

// passthroughTx 测试里不需要真回滚的场景直接执行
type passthroughTx struct{}

func (passthroughTx) Transaction(ctx context.Context, fn func(ctx context.Context) error) error {
	return fn(ctx)
}

// noopEvents 丢弃事件
type noopEvents struct{}

func (noopEvents) PublishOrderCreated(ctx context.Context, event order.OrderCreatedEvent) {}

// =========================================
// 测试装配
// =========================================

type checkoutFixture struct {
	store       *memCheckoutStore
	cartRepo    *memCartRepo
	bookRepo    *memBookRepo
	addressRepo *memAddressRepo
	orderRepo   *memOrderRepo

	summary *SummaryUseCase
	selectF *SelectFieldUseCase
	submit  *SubmitValueUseCase
	confirm *ConfirmOrderUseCase
	cancel  *CancelUseCase
}

func newCheckoutFixture() *checkoutFixture {
	f := &checkoutFixture{
		store: newMemCheckoutStore(),
		bookRepo: &memBookRepo{books: map[uint]*book.Book{
			1: {ID: 1, Title: "图书A", Price: 50000, Stock: 10},
		}},
		cartRepo: &memCartRepo{cart: &cart.Cart{
			ID:     1,
			UserID: 1,
			Items:  []cart.CartItem{{CartID: 1, BookID: 1, Quantity: 2, Price: 50000}},
		}},
		addressRepo: newMemAddressRepo(),
		orderRepo:   &memOrderRepo{},
	}

	bookService := book.NewService(f.bookRepo)
	placeOrder := apporder.NewPlaceOrderUseCase(
		f.orderRepo, f.bookRepo, f.cartRepo, &memUserRepo{}, passthroughTx{}, noopEvents{})

	f.summary = NewSummaryUseCase(f.store, f.cartRepo, f.addressRepo, bookService)
	f.selectF = NewSelectFieldUseCase(f.store)
	f.submit = NewSubmitValueUseCase(f.store)
	f.confirm = NewConfirmOrderUseCase(f.store, f.addressRepo, placeOrder)
	f.cancel = NewCancelUseCase(f.store)
	return f
}

// fillAll 填满全部必填字段
func fillAll(t *testing.T, f *checkoutFixture) {
	t.Helper()
	values := map[checkout.Field]string{
		checkout.FieldName:          "张三",
		checkout.FieldEmail:         "zhangsan@example.com",
		checkout.FieldPhone:         "13800000000",
		checkout.FieldCity:          "上海",
		checkout.FieldStreet:        "南京东路",
		checkout.FieldHouse:         "100号",
		checkout.FieldApartment:     "1201",
		checkout.FieldDeliveryDate:  "2030-01-01",
		checkout.FieldPaymentMethod: "cash",
	}
	for f2, v := range values {
		require.NoError(t, f.store.SaveValue(context.Background(), 1, f2, v))
	}
}

// TestSelectUnknownField 测试未知字段名直接报错
func TestSelectUnknownField(t *testing.T) {
	f := newCheckoutFixture()

	_, err := f.selectF.Execute(context.Background(), 1, "zipcode")
	assert.True(t, apperrors.IsCode(err, apperrors.ErrCodeUnknownField))

	_, editing, _ := f.store.GetEditingField(context.Background(), 1)
	assert.False(t, editing, "失败的选择不应该进入编辑状态")
}

// TestSubmitWithoutSelect 测试未选择字段时提交
func TestSubmitWithoutSelect(t *testing.T) {
	f := newCheckoutFixture()

	_, err := f.submit.Execute(context.Background(), 1, "张三")
	assert.True(t, apperrors.IsCode(err, apperrors.ErrCodeInvalidParams))
}

// TestFieldEditFlow 测试选字段→填值的基本流程
func TestFieldEditFlow(t *testing.T) {
	f := newCheckoutFixture()
	ctx := context.Background()

	// 字段可以按任意顺序编辑:先填支付方式
	resp, err := f.selectF.Execute(ctx, 1, "payment_method")
	require.NoError(t, err)
	assert.Equal(t, "支付方式", resp.Label)

	submitted, err := f.submit.Execute(ctx, 1, "card")
	require.NoError(t, err)
	assert.Equal(t, "card", submitted.Value)

	// 提交成功后退出编辑状态
	_, editing, _ := f.store.GetEditingField(ctx, 1)
	assert.False(t, editing)

	// 值会去掉首尾空白
	_, err = f.selectF.Execute(ctx, 1, "name")
	require.NoError(t, err)

	// 编辑中的字段会在摘要里被标记,其余字段不标记
	summary, err := f.summary.Execute(ctx, 1)
	require.NoError(t, err)
	for _, fv := range summary.Fields {
		assert.Equal(t, fv.Field == "name", fv.Editing, "只有正在编辑的字段才标记Editing: %s", fv.Field)
	}

	submitted, err = f.submit.Execute(ctx, 1, "  张三  ")
	require.NoError(t, err)
	assert.Equal(t, "张三", submitted.Value)

	// 提交后回到摘要视图,不再有编辑标记
	summary, err = f.summary.Execute(ctx, 1)
	require.NoError(t, err)
	for _, fv := range summary.Fields {
		assert.False(t, fv.Editing, "退出编辑后不应该有Editing标记: %s", fv.Field)
	}

	// 重新选择已填过的字段时回显当前值
	resp, err = f.selectF.Execute(ctx, 1, "name")
	require.NoError(t, err)
	assert.Equal(t, "张三", resp.Current)

	// 覆盖旧值
	_, err = f.submit.Execute(ctx, 1, "李四")
	require.NoError(t, err)
	data, _ := f.store.GetData(ctx, 1)
	assert.Equal(t, "李四", data[checkout.FieldName])
}

// TestSubmitInvalidKeepsEditing 测试校验失败时停留在当前字段
func TestSubmitInvalidKeepsEditing(t *testing.T) {
	f := newCheckoutFixture()
	ctx := context.Background()

	_, err := f.selectF.Execute(ctx, 1, "email")
	require.NoError(t, err)

	_, err = f.submit.Execute(ctx, 1, "not-an-email")
	require.Error(t, err)

	// 编辑状态保留,直接重新提交即可
	field, editing, _ := f.store.GetEditingField(ctx, 1)
	assert.True(t, editing)
	assert.Equal(t, checkout.FieldEmail, field)

	// 失败的值不应该被保存
	data, _ := f.store.GetData(ctx, 1)
	assert.Empty(t, data[checkout.FieldEmail])

	_, err = f.submit.Execute(ctx, 1, "user@example.com")
	require.NoError(t, err)
}

// TestSummaryPrefill 测试首次进入结账时用收货档案预填
func TestSummaryPrefill(t *testing.T) {
	f := newCheckoutFixture()
	ctx := context.Background()

	// 预置上一次的收货档案(含历史送达日期场景:档案根本不存日期)
	addr := address.NewAddress(1)
	addr.Name = "张三"
	addr.Phone = "13800000000"
	addr.City = "上海"
	addr.PaymentMethod = "cash"
	addr.Refresh()
	require.NoError(t, f.addressRepo.Save(ctx, addr))

	resp, err := f.summary.Execute(ctx, 1)
	require.NoError(t, err)

	byField := make(map[string]FieldView)
	for _, fv := range resp.Fields {
		byField[fv.Field] = fv
	}
	assert.Equal(t, "张三", byField["name"].Value, "档案值应该被预填")
	assert.Equal(t, "cash", byField["payment_method"].Value)
	assert.Empty(t, byField["delivery_date"].Value, "送达日期永远不预填")
	assert.False(t, byField["name"].Editing, "没有选择字段时不应该有编辑标记")

	// 预填不等于齐全:邮箱、街道等仍缺失,不能确认
	assert.False(t, resp.CanConfirm)
	assert.Contains(t, resp.MissingFields, "email")
	assert.Contains(t, resp.MissingFields, "delivery_date")

	// 金额按购物车锁定价
	assert.Equal(t, int64(100000), resp.Total)
	assert.Empty(t, resp.StockProblems)
}

// TestSummaryEmptyCart 测试空购物车不能进入结账
func TestSummaryEmptyCart(t *testing.T) {
	f := newCheckoutFixture()
	f.cartRepo.cart.Items = nil

	_, err := f.summary.Execute(context.Background(), 1)
	assert.ErrorIs(t, err, apperrors.ErrEmptyCart)
}

// TestSummaryStockProblems 测试摘要里的库存预检提示
func TestSummaryStockProblems(t *testing.T) {
	f := newCheckoutFixture()
	f.bookRepo.books[1].Stock = 1 // 购物车要2本

	fillAll(t, f)
	resp, err := f.summary.Execute(context.Background(), 1)
	require.NoError(t, err)

	require.Len(t, resp.StockProblems, 1)
	assert.Contains(t, resp.StockProblems[0], "图书A")
	assert.False(t, resp.CanConfirm, "有库存问题时不能确认")
}

// TestConfirmIncomplete 测试信息不全时确认被拒
func TestConfirmIncomplete(t *testing.T) {
	f := newCheckoutFixture()
	ctx := context.Background()

	require.NoError(t, f.store.SaveValue(ctx, 1, checkout.FieldName, "张三"))

	_, err := f.confirm.Execute(ctx, 1)
	require.Error(t, err)
	assert.True(t, apperrors.IsCode(err, apperrors.ErrCodeCheckoutIncomplete))
	assert.Contains(t, err.Error(), "联系邮箱", "错误信息应该列出缺失字段")

	assert.Empty(t, f.orderRepo.orders, "不完整时不应该创建订单")
}

// TestConfirmSuccess 测试确认下单成功
func TestConfirmSuccess(t *testing.T) {
	f := newCheckoutFixture()
	ctx := context.Background()
	fillAll(t, f)

	resp, err := f.confirm.Execute(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, int64(100000), resp.Total)
	assert.Equal(t, "1000.00", resp.TotalYuan)

	// 收货档案已落库
	addr, err := f.addressRepo.FindByUserID(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, "张三", addr.Name)
	assert.True(t, addr.IsComplete)

	// 订单引用档案ID,送达日期已解析
	require.Len(t, f.orderRepo.orders, 1)
	o := f.orderRepo.orders[0]
	assert.Equal(t, addr.ID, o.AddressID)
	require.NotNil(t, o.DeliveryDate)
	assert.Equal(t, "2030-01-01", o.DeliveryDate.Format("2006-01-02"))

	// 库存扣减、购物车清空、结账状态清空
	assert.Equal(t, 8, f.bookRepo.books[1].Stock)
	assert.Empty(t, f.cartRepo.cart.Items)
	data, _ := f.store.GetData(ctx, 1)
	assert.Empty(t, data, "成功后结账状态应该清空")
}

// TestConfirmStockFailureKeepsState 测试库存不足时保留已填数据
func TestConfirmStockFailureKeepsState(t *testing.T) {
	f := newCheckoutFixture()
	ctx := context.Background()
	fillAll(t, f)
	f.bookRepo.books[1].Stock = 1 // 购物车要2本

	_, err := f.confirm.Execute(ctx, 1)
	require.Error(t, err)
	assert.True(t, apperrors.IsCode(err, apperrors.ErrCodeInsufficientStock))

	// 已填数据原样保留,用户调整购物车后可直接重试
	data, _ := f.store.GetData(ctx, 1)
	assert.Equal(t, "张三", data[checkout.FieldName])
	assert.Len(t, f.cartRepo.cart.Items, 1, "失败时购物车不动")
	assert.Empty(t, f.orderRepo.orders)
}

// TestCancelNoSideEffects 测试放弃结账只丢弃填写进度
func TestCancelNoSideEffects(t *testing.T) {
	f := newCheckoutFixture()
	ctx := context.Background()
	fillAll(t, f)

	require.NoError(t, f.cancel.Execute(ctx, 1))

	data, _ := f.store.GetData(ctx, 1)
	assert.Empty(t, data, "结账状态应该被丢弃")

	// 购物车和库存完全不受影响
	assert.Len(t, f.cartRepo.cart.Items, 1)
	assert.Equal(t, 10, f.bookRepo.books[1].Stock)
}
