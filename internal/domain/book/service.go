package book

import (
	"context"
	"errors"
	"fmt"
	"regexp"
)

// RequestItem 库存校验请求项(图书ID + 需要数量)
type RequestItem struct {
	BookID   uint
	Quantity int
}

// Service 图书领域服务接口
// 设计说明:
// 1. 领域服务封装跨实体的业务逻辑和业务规则校验
// 2. 不依赖具体的Repository实现(依赖倒置)
// 3. CheckAvailability/DecreaseStock构成库存守卫:
//    前者是纯校验(不加锁,用于展示预检),后者只允许在事务内、
//    已通过加锁校验后调用(订单提交管线负责这个约束)
type Service interface {
	// PublishBook 发布图书(上架)
	// 业务规则:
	// - ISBN格式必须合法(10位或13位数字)
	// - 价格必须在1-999999分之间
	// - 库存必须>=0
	// - ISBN不能重复
	PublishBook(ctx context.Context, isbn, title, author, publisher string, price int64, stock int, coverURL, description string, publisherID uint) (*Book, error)

	// GetBookByID 根据ID获取图书详情
	GetBookByID(ctx context.Context, id uint) (*Book, error)

	// GetPriceInfo 获取价格信息快照(购物车加入商品时调用)
	// 图书不存在时返回ErrBookNotFound
	GetPriceInfo(ctx context.Context, id uint) (*PriceInfo, error)

	// CheckAvailability 校验库存是否满足请求(纯校验,不加锁不修改)
	// 返回:是否全部可供 + 逐项问题描述(图书不存在/库存缺口)
	CheckAvailability(ctx context.Context, items []RequestItem) (bool, []string, error)

	// DecreaseStock 按请求扣减库存
	// 约束:必须在事务内调用,且同一事务内已用LockByID完成加锁校验
	DecreaseStock(ctx context.Context, items []RequestItem) error

	// StartSale 开启促销(只修改促销字段,不触碰库存)
	// 业务规则:只有发布者本人可以操作
	StartSale(ctx context.Context, id uint, userID uint, rate float64) error

	// StopSale 结束促销
	StopSale(ctx context.Context, id uint, userID uint) error

	// UpdateBookPrice 更新图书价格
	// 业务规则:只有发布者本人可以修改,且价格必须合法
	UpdateBookPrice(ctx context.Context, id uint, userID uint, newPrice int64) error

	// ListBooks 分页查询图书列表
	ListBooks(ctx context.Context, params ListParams) ([]*Book, int64, error)
}

// service 领域服务实现
type service struct {
	repo Repository
}

// NewService 创建图书领域服务
func NewService(repo Repository) Service {
	return &service{repo: repo}
}

// PublishBook 发布图书
func (s *service) PublishBook(ctx context.Context, isbn, title, author, publisher string, price int64, stock int, coverURL, description string, publisherID uint) (*Book, error) {
	// 1. ISBN格式校验
	if !isValidISBN(isbn) {
		return nil, ErrInvalidISBN
	}

	// 2. 价格范围校验(1分-9999.99元)
	if price < 1 || price > 999999 {
		return nil, ErrInvalidPrice
	}

	// 3. 库存校验
	if stock < 0 {
		return nil, ErrInvalidStock
	}

	// 4. 检查ISBN是否已存在
	existing, err := s.repo.FindByISBN(ctx, isbn)
	if err == nil && existing != nil {
		return nil, ErrISBNDuplicate
	}
	if err != nil && !errors.Is(err, ErrBookNotFound) {
		return nil, err
	}

	// 5. 创建并持久化
	b := NewBook(isbn, title, author, publisher, price, stock, coverURL, description, publisherID)
	if err := s.repo.Create(ctx, b); err != nil {
		return nil, err
	}

	return b, nil
}

// GetBookByID 根据ID获取图书
func (s *service) GetBookByID(ctx context.Context, id uint) (*Book, error) {
	return s.repo.FindByID(ctx, id)
}

// GetPriceInfo 获取价格信息快照
func (s *service) GetPriceInfo(ctx context.Context, id uint) (*PriceInfo, error) {
	b, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	return &PriceInfo{
		BookID:         b.ID,
		Title:          b.Title,
		BasePrice:      b.Price,
		OnSale:         b.OnSale,
		SaleRate:       b.SaleRate,
		EffectivePrice: b.EffectivePrice(),
		Stock:          b.Stock,
	}, nil
}

// CheckAvailability 校验库存是否满足请求
// 纯校验:不持有锁,结果可能在下一刻就过期
// 订单提交管线会在事务内用LockByID重新做权威校验
func (s *service) CheckAvailability(ctx context.Context, items []RequestItem) (bool, []string, error) {
	problems := make([]string, 0)

	for _, item := range items {
		if item.Quantity <= 0 {
			return false, nil, ErrInvalidQuantity
		}

		b, err := s.repo.FindByID(ctx, item.BookID)
		if err != nil {
			if errors.Is(err, ErrBookNotFound) {
				problems = append(problems, fmt.Sprintf("图书不存在(ID:%d)", item.BookID))
				continue
			}
			return false, nil, err
		}

		if b.Stock < item.Quantity {
			problems = append(problems, fmt.Sprintf("图书《%s》库存不足,当前库存:%d,需要:%d",
				b.Title, b.Stock, item.Quantity))
		}
	}

	return len(problems) == 0, problems, nil
}

// DecreaseStock 按请求扣减库存
// UpdateStock自带stock+delta>=0的兜底,扣减失败会让整个事务回滚
func (s *service) DecreaseStock(ctx context.Context, items []RequestItem) error {
	for _, item := range items {
		if item.Quantity <= 0 {
			return ErrInvalidQuantity
		}
		if err := s.repo.UpdateStock(ctx, item.BookID, -item.Quantity); err != nil {
			return err
		}
	}
	return nil
}

// StartSale 开启促销
func (s *service) StartSale(ctx context.Context, id uint, userID uint, rate float64) error {
	b, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return err
	}
	if !b.IsOwnedBy(userID) {
		return ErrUnauthorized
	}
	if err := b.StartSale(rate); err != nil {
		return err
	}
	return s.repo.Update(ctx, b)
}

// StopSale 结束促销
func (s *service) StopSale(ctx context.Context, id uint, userID uint) error {
	b, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return err
	}
	if !b.IsOwnedBy(userID) {
		return ErrUnauthorized
	}
	b.StopSale()
	return s.repo.Update(ctx, b)
}

// UpdateBookPrice 更新图书价格
func (s *service) UpdateBookPrice(ctx context.Context, id uint, userID uint, newPrice int64) error {
	if newPrice < 1 || newPrice > 999999 {
		return ErrInvalidPrice
	}

	b, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return err
	}
	if !b.IsOwnedBy(userID) {
		return ErrUnauthorized
	}
	if err := b.UpdatePrice(newPrice); err != nil {
		return err
	}
	return s.repo.Update(ctx, b)
}

// ListBooks 分页查询图书列表
func (s *service) ListBooks(ctx context.Context, params ListParams) ([]*Book, int64, error) {
	return s.repo.List(ctx, params)
}

// isValidISBN 校验ISBN格式
// 支持ISBN-10和ISBN-13,允许带分隔符(978-7-115-42802-8)
// 简化实现:只检查位数(生产环境应校验校验位)
func isValidISBN(isbn string) bool {
	re := regexp.MustCompile(`[^0-9]`)
	clean := re.ReplaceAllString(isbn, "")

	length := len(clean)
	return length == 10 || length == 13
}
