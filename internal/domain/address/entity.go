package address

import (
	"time"
)

// Address 收货信息实体
// 设计说明:
// 1. 每个用户一份收货档案,首次填写时创建,之后逐字段更新
// 2. 所有字段都允许为空(用户可能只填了一半)
// 3. IsComplete是派生字段:核心五项{收件人,电话,城市,街道,门牌}齐全即为true
//    注意:它只用于展示/预填提示,下单门槛由结账流程自己的必填校验把关
//    (两套完整性口径只保留一个权威,见结账流程)
type Address struct {
	ID            uint
	UserID        uint   // 所属用户ID(一人一份)
	Name          string // 收件人姓名
	Email         string // 联系邮箱
	Phone         string // 联系电话
	City          string // 城市
	Street        string // 街道
	House         string // 门牌号
	Apartment     string // 房间号
	PaymentMethod string // 支付方式(cash/card/balance)
	Comment       string // 订单备注
	IsComplete    bool   // 核心字段是否齐全(派生)
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

// NewAddress 创建空白收货档案
func NewAddress(userID uint) *Address {
	now := time.Now()
	return &Address{
		UserID:    userID,
		CreatedAt: now,
		UpdatedAt: now,
	}
}

// Refresh 重算派生的IsComplete标志
// 核心五项全部非空才算完整
func (a *Address) Refresh() {
	a.IsComplete = a.Name != "" && a.Phone != "" && a.City != "" &&
		a.Street != "" && a.House != ""
	a.UpdatedAt = time.Now()
}
