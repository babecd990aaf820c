package mysql

import (
	"fmt"
	"log"
	"time"

	"gorm.io/driver/mysql"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/xiebiao/bookshop/internal/infrastructure/config"
)

// NewDB 创建数据库连接
// 设计说明：
// 1. 使用GORM v2作为ORM框架
// 2. 配置连接池参数（MaxOpenConns、MaxIdleConns、ConnMaxLifetime）
// 3. 开发环境开启SQL日志，生产环境关闭
// 4. 自动迁移表结构（生产环境应使用版本化迁移脚本）
func NewDB(cfg *config.Config) (*gorm.DB, error) {
	dsn := cfg.Database.DSN()

	logLevel := logger.Silent
	if cfg.Server.Mode == "debug" {
		logLevel = logger.Info // 开发环境打印SQL
	}

	db, err := gorm.Open(mysql.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logLevel),
	})
	if err != nil {
		return nil, fmt.Errorf("连接数据库失败: %w", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("获取SQL DB失败: %w", err)
	}

	sqlDB.SetMaxOpenConns(cfg.Database.MaxOpenConns)
	sqlDB.SetMaxIdleConns(cfg.Database.MaxIdleConns)
	sqlDB.SetConnMaxLifetime(cfg.Database.ConnMaxLifetime)

	if err := sqlDB.Ping(); err != nil {
		return nil, fmt.Errorf("数据库连接测试失败: %w", err)
	}

	log.Println("✓ 数据库连接成功")

	if err := autoMigrate(db); err != nil {
		return nil, fmt.Errorf("数据库迁移失败: %w", err)
	}

	return db, nil
}

// autoMigrate 自动迁移表结构
// AutoMigrate只会创建表、添加字段，不会删除或修改现有字段
func autoMigrate(db *gorm.DB) error {
	return db.AutoMigrate(
		&UserModel{},
		&BookModel{},
		&CartModel{},
		&CartItemModel{},
		&AddressModel{},
		&OrderModel{},
		&OrderItemModel{},
	)
}

// UserModel GORM用户模型
// 设计说明：
// 1. 这是infrastructure层的数据模型，包含GORM tag
// 2. domain层的实体不依赖GORM，Repository负责两者之间的转换
type UserModel struct {
	ID        uint           `gorm:"primaryKey"`
	Email     string         `gorm:"uniqueIndex;size:100;not null;comment:邮箱"`
	Password  string         `gorm:"size:255;not null;comment:密码(bcrypt加密)"`
	Nickname  string         `gorm:"size:50;not null;comment:昵称"`
	Balance   int64          `gorm:"default:0;comment:账户余额(分)"`
	CreatedAt time.Time      `gorm:"comment:创建时间"`
	UpdatedAt time.Time      `gorm:"comment:更新时间"`
	DeletedAt gorm.DeletedAt `gorm:"index;comment:删除时间(软删除)"`
}

// TableName 指定表名
func (UserModel) TableName() string {
	return "users"
}

// BookModel GORM图书模型
// 设计说明:
// 1. 价格使用int64存储"分"为单位(避免浮点数精度问题)
// 2. ISBN有唯一索引,防止重复
// 3. 促销字段(on_sale/sale_rate)独立于库存,由促销管理维护
type BookModel struct {
	ID          uint           `gorm:"primaryKey"`
	ISBN        string         `gorm:"uniqueIndex;size:20;not null;comment:ISBN号"`
	Title       string         `gorm:"index:idx_search;size:200;not null;comment:书名"`
	Author      string         `gorm:"index:idx_search;size:100;not null;comment:作者"`
	Publisher   string         `gorm:"size:100;not null;comment:出版社"`
	Price       int64          `gorm:"index:idx_list;not null;comment:原价(分)"`
	Stock       int            `gorm:"default:0;comment:库存数量"`
	OnSale      bool           `gorm:"index;default:false;comment:是否促销中"`
	SaleRate    float64        `gorm:"default:0;comment:折扣比例(0-1)"`
	CoverURL    string         `gorm:"size:500;comment:封面图片URL"`
	Description string         `gorm:"type:text;comment:图书描述"`
	PublisherID uint           `gorm:"index;not null;comment:发布者用户ID"`
	CreatedAt   time.Time      `gorm:"index:idx_list;comment:创建时间"`
	UpdatedAt   time.Time      `gorm:"comment:更新时间"`
	DeletedAt   gorm.DeletedAt `gorm:"index;comment:删除时间(软删除)"`
}

// TableName 指定表名
func (BookModel) TableName() string {
	return "books"
}

// CartModel GORM购物车模型
// 一人一车:user_id唯一索引,首次加入商品时创建
type CartModel struct {
	ID        uint            `gorm:"primaryKey"`
	UserID    uint            `gorm:"uniqueIndex;not null;comment:所属用户ID"`
	Items     []CartItemModel `gorm:"foreignKey:CartID"` // 一对多关联
	CreatedAt time.Time       `gorm:"comment:创建时间"`
	UpdatedAt time.Time       `gorm:"comment:更新时间"`
}

// TableName 指定表名
func (CartModel) TableName() string {
	return "carts"
}

// CartItemModel GORM购物车行模型
// 设计说明:
// 1. (cart_id, book_id)唯一索引保证同一图书最多一行
// 2. price记录加入时锁定的单价(分),重复加入不变
type CartItemModel struct {
	ID       uint  `gorm:"primaryKey"`
	CartID   uint  `gorm:"uniqueIndex:idx_cart_book;not null;comment:购物车ID"`
	BookID   uint  `gorm:"uniqueIndex:idx_cart_book;not null;comment:图书ID"`
	Quantity int   `gorm:"not null;default:1;comment:数量"`
	Price    int64 `gorm:"not null;comment:加入时锁定单价(分)"`
}

// TableName 指定表名
func (CartItemModel) TableName() string {
	return "cart_items"
}

// AddressModel GORM收货信息模型
// 一人一份档案:user_id唯一索引;is_complete为派生字段(核心五项齐全)
type AddressModel struct {
	ID            uint      `gorm:"primaryKey"`
	UserID        uint      `gorm:"uniqueIndex;not null;comment:所属用户ID"`
	Name          string    `gorm:"size:50;comment:收件人姓名"`
	Email         string    `gorm:"size:100;comment:联系邮箱"`
	Phone         string    `gorm:"size:30;comment:联系电话"`
	City          string    `gorm:"size:100;comment:城市"`
	Street        string    `gorm:"size:100;comment:街道"`
	House         string    `gorm:"size:20;comment:门牌号"`
	Apartment     string    `gorm:"size:20;comment:房间号"`
	PaymentMethod string    `gorm:"size:20;comment:支付方式"`
	Comment       string    `gorm:"size:500;comment:订单备注"`
	IsComplete    bool      `gorm:"default:false;comment:核心字段是否齐全"`
	CreatedAt     time.Time `gorm:"comment:创建时间"`
	UpdatedAt     time.Time `gorm:"comment:更新时间"`
}

// TableName 指定表名
func (AddressModel) TableName() string {
	return "addresses"
}

// OrderModel GORM订单模型
// 设计说明:
// 1. 与OrderItemModel是一对多关系
// 2. OrderNo有唯一索引(业务主键)
// 3. Status使用int存储(1处理中2配送中3已完成4已取消)
type OrderModel struct {
	ID           uint             `gorm:"primaryKey"`
	OrderNo      string           `gorm:"uniqueIndex;size:32;not null;comment:订单号"`
	UserID       uint             `gorm:"index;not null;comment:买家用户ID"`
	AddressID    uint             `gorm:"not null;comment:收货信息ID"`
	Total        int64            `gorm:"not null;comment:订单总金额(分)"`
	Status       int              `gorm:"index;type:tinyint;default:1;comment:订单状态(1处理中2配送中3已完成4已取消)"`
	DeliveryDate *time.Time       `gorm:"comment:预计送达日期"`
	Items        []OrderItemModel `gorm:"foreignKey:OrderID"` // 一对多关联
	CreatedAt    time.Time        `gorm:"index;comment:创建时间"`
	UpdatedAt    time.Time        `gorm:"comment:更新时间"`
}

// TableName 指定表名
func (OrderModel) TableName() string {
	return "orders"
}

// OrderItemModel GORM订单明细模型
// price记录下单时的价格快照,历史订单永远按它展示
type OrderItemModel struct {
	ID       uint  `gorm:"primaryKey"`
	OrderID  uint  `gorm:"index;not null;comment:订单ID"`
	BookID   uint  `gorm:"index;not null;comment:图书ID"`
	Quantity int   `gorm:"not null;comment:购买数量"`
	Price    int64 `gorm:"not null;comment:下单时单价(分)"`
}

// TableName 指定表名
func (OrderItemModel) TableName() string {
	return "order_items"
}
