package cart

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/xiebiao/bookshop/internal/domain/book"
	"github.com/xiebiao/bookshop/internal/domain/cart"
)

// =========================================
// 内存替身:购物车仓储 + 图书仓储(供真实领域服务使用)
// =========================================

type fakeBookRepo struct {
	books map[uint]*book.Book
}

func (r *fakeBookRepo) Create(ctx context.Context, b *book.Book) error { panic("not used") }
func (r *fakeBookRepo) Update(ctx context.Context, b *book.Book) error { panic("not used") }
func (r *fakeBookRepo) Delete(ctx context.Context, id uint) error      { panic("not used") }
func (r *fakeBookRepo) FindByISBN(ctx context.Context, isbn string) (*book.Book, error) {
	panic("not used")
}
func (r *fakeBookRepo) List(ctx context.Context, params book.ListParams) ([]*book.Book, int64, error) {
	panic("not used")
}
func (r *fakeBookRepo) LockByID(ctx context.Context, id uint) (*book.Book, error) {
	panic("not used")
}
func (r *fakeBookRepo) UpdateStock(ctx context.Context, id uint, delta int) error {
	panic("not used")
}

func (r *fakeBookRepo) FindByID(ctx context.Context, id uint) (*book.Book, error) {
	b, ok := r.books[id]
	if !ok {
		return nil, book.ErrBookNotFound
	}
	cp := *b
	return &cp, nil
}

type fakeCartRepo struct {
	carts  map[uint]*cart.Cart // key: userID
	nextID uint
}

func newFakeCartRepo() *fakeCartRepo {
	return &fakeCartRepo{carts: make(map[uint]*cart.Cart), nextID: 1}
}

func (r *fakeCartRepo) GetByUserID(ctx context.Context, userID uint) (*cart.Cart, error) {
	c, ok := r.carts[userID]
	if !ok {
		c = cart.NewCart(userID)
		c.ID = r.nextID
		r.nextID++
		r.carts[userID] = c
	}
	cp := *c
	cp.Items = append([]cart.CartItem(nil), c.Items...)
	return &cp, nil
}

// UpsertItem 与生产实现同语义:已存在的行只递增数量,锁定价不变
func (r *fakeCartRepo) UpsertItem(ctx context.Context, cartID, bookID uint, lockedPrice int64) error {
	for _, c := range r.carts {
		if c.ID != cartID {
			continue
		}
		for i := range c.Items {
			if c.Items[i].BookID == bookID {
				c.Items[i].Quantity++
				return nil
			}
		}
		c.Items = append(c.Items, cart.CartItem{
			CartID: cartID, BookID: bookID, Quantity: 1, Price: lockedPrice,
		})
		return nil
	}
	return cart.ErrItemNotFound
}

func (r *fakeCartRepo) RemoveItem(ctx context.Context, cartID, bookID uint) error {
	for _, c := range r.carts {
		if c.ID != cartID {
			continue
		}
		for i := range c.Items {
			if c.Items[i].BookID == bookID {
				c.Items = append(c.Items[:i], c.Items[i+1:]...)
				return nil
			}
		}
		return cart.ErrItemNotFound
	}
	return cart.ErrItemNotFound
}

func (r *fakeCartRepo) Clear(ctx context.Context, cartID uint) (bool, error) {
	for _, c := range r.carts {
		if c.ID == cartID {
			had := len(c.Items) > 0
			c.Items = nil
			return had, nil
		}
	}
	return false, nil
}

// TestAddItemLocksPrice 测试加入购物车时锁定价格
func TestAddItemLocksPrice(t *testing.T) {
	// 图书促销中:原价300.00元,降价40% → 生效价180.00元
	bookRepo := &fakeBookRepo{books: map[uint]*book.Book{
		1: {ID: 1, Title: "促销图书", Price: 30000, OnSale: true, SaleRate: 0.4, Stock: 5},
	}}
	cartRepo := newFakeCartRepo()
	uc := NewAddItemUseCase(cartRepo, book.NewService(bookRepo))

	resp, err := uc.Execute(context.Background(), AddItemRequest{UserID: 1, BookID: 1})
	require.NoError(t, err)
	assert.Equal(t, int64(18000), resp.LockedPrice, "应该按促销价锁定")
	assert.Equal(t, 1, resp.Quantity)

	// 促销结束后再次加入:数量+1,锁定价保持180.00元
	bookRepo.books[1].StopSale()
	resp, err = uc.Execute(context.Background(), AddItemRequest{UserID: 1, BookID: 1})
	require.NoError(t, err)
	assert.Equal(t, int64(18000), resp.LockedPrice, "已有行的锁定价不随促销变化")
	assert.Equal(t, 2, resp.Quantity)
	assert.Equal(t, 2, resp.TotalItems)

	// 改价也不影响已锁定的行
	require.NoError(t, bookRepo.books[1].UpdatePrice(50000))
	resp, err = uc.Execute(context.Background(), AddItemRequest{UserID: 1, BookID: 1})
	require.NoError(t, err)
	assert.Equal(t, int64(18000), resp.LockedPrice)
	assert.Equal(t, 3, resp.Quantity)
}

// TestAddItemBookNotFound 测试加入不存在的图书
func TestAddItemBookNotFound(t *testing.T) {
	cartRepo := newFakeCartRepo()
	uc := NewAddItemUseCase(cartRepo, book.NewService(&fakeBookRepo{books: map[uint]*book.Book{}}))

	_, err := uc.Execute(context.Background(), AddItemRequest{UserID: 1, BookID: 999})
	assert.ErrorIs(t, err, book.ErrBookNotFound)
	assert.Empty(t, cartRepo.carts, "失败时不应该创建购物车")
}

// TestAddItemOutOfStock 测试缺货图书也能加入购物车
// 加入不预占库存,下单时才真正核对
func TestAddItemOutOfStock(t *testing.T) {
	bookRepo := &fakeBookRepo{books: map[uint]*book.Book{
		1: {ID: 1, Title: "缺货图书", Price: 10000, Stock: 0},
	}}
	uc := NewAddItemUseCase(newFakeCartRepo(), book.NewService(bookRepo))

	resp, err := uc.Execute(context.Background(), AddItemRequest{UserID: 1, BookID: 1})
	require.NoError(t, err, "缺货不阻止加入购物车")
	assert.Equal(t, 1, resp.Quantity)
}

// TestGetCartView 测试购物车视图金额一致性
func TestGetCartView(t *testing.T) {
	bookRepo := &fakeBookRepo{books: map[uint]*book.Book{
		1: {ID: 1, Title: "图书A", Price: 50000, Stock: 10},
	}}
	cartRepo := newFakeCartRepo()
	c, err := cartRepo.GetByUserID(context.Background(), 1)
	require.NoError(t, err)
	require.NoError(t, cartRepo.UpsertItem(context.Background(), c.ID, 1, 50000))
	require.NoError(t, cartRepo.UpsertItem(context.Background(), c.ID, 1, 50000))
	require.NoError(t, cartRepo.UpsertItem(context.Background(), c.ID, 2, 18000)) // 已下架的书

	uc := NewGetCartUseCase(cartRepo, bookRepo)
	view, err := uc.Execute(context.Background(), 1)
	require.NoError(t, err)

	assert.Equal(t, int64(118000), view.Total)
	assert.Equal(t, "1180.00", view.TotalYuan)
	assert.Equal(t, 3, view.TotalQuantity)
	require.Len(t, view.Items, 2)
	assert.Equal(t, "图书A", view.Items[0].Title)
	assert.Equal(t, "1000.00", view.Items[0].SubtotalYuan)
	assert.Equal(t, "已下架图书", view.Items[1].Title, "下架图书按占位标题展示,金额仍按锁定价")

	// 总金额与行小计精确一致
	var sum int64
	for _, item := range view.Items {
		sum += item.Subtotal
	}
	assert.Equal(t, view.Total, sum)
}

// TestClearCart 测试清空购物车的返回语义
func TestClearCart(t *testing.T) {
	cartRepo := newFakeCartRepo()
	uc := NewClearCartUseCase(cartRepo)

	// 空车清空返回cleared=false
	resp, err := uc.Execute(context.Background(), 1)
	require.NoError(t, err)
	assert.False(t, resp.Cleared)

	c, err := cartRepo.GetByUserID(context.Background(), 1)
	require.NoError(t, err)
	require.NoError(t, cartRepo.UpsertItem(context.Background(), c.ID, 1, 10000))

	resp, err = uc.Execute(context.Background(), 1)
	require.NoError(t, err)
	assert.True(t, resp.Cleared)

	view, err := cartRepo.GetByUserID(context.Background(), 1)
	require.NoError(t, err)
	assert.True(t, view.IsEmpty())
}
