package checkout

import (
	"regexp"
	"strings"
	"time"

	apperrors "github.com/xiebiao/bookshop/pkg/errors"
)

// Field 结账信息字段(封闭集合)
// 设计说明:
// 1. 字段集合是封闭的:字段名→Field的转换经过查找表,
//    未知字段名直接返回参数错误,绝不静默忽略
// 2. 字段顺序固定(FieldOrder),摘要视图按此顺序展示
// 3. 除Comment外全部必填;Comment是唯一的可选字段
type Field string

const (
	FieldName          Field = "name"           // 收件人姓名
	FieldEmail         Field = "email"          // 联系邮箱
	FieldPhone         Field = "phone"          // 联系电话
	FieldCity          Field = "city"           // 城市
	FieldStreet        Field = "street"         // 街道
	FieldHouse         Field = "house"          // 门牌号
	FieldApartment     Field = "apartment"      // 房间号
	FieldDeliveryDate  Field = "delivery_date"  // 期望送达日期
	FieldPaymentMethod Field = "payment_method" // 支付方式
	FieldComment       Field = "comment"        // 订单备注(可选)
)

// FieldOrder 字段的展示/引导顺序
var FieldOrder = []Field{
	FieldName,
	FieldEmail,
	FieldPhone,
	FieldCity,
	FieldStreet,
	FieldHouse,
	FieldApartment,
	FieldDeliveryDate,
	FieldPaymentMethod,
	FieldComment,
}

// fieldSet 字段名查找表(封闭集合的唯一入口)
var fieldSet = func() map[string]Field {
	m := make(map[string]Field, len(FieldOrder))
	for _, f := range FieldOrder {
		m[string(f)] = f
	}
	return m
}()

// fieldLabels 字段的用户可读名称(供摘要/提示文案)
var fieldLabels = map[Field]string{
	FieldName:          "收件人姓名",
	FieldEmail:         "联系邮箱",
	FieldPhone:         "联系电话",
	FieldCity:          "城市",
	FieldStreet:        "街道",
	FieldHouse:         "门牌号",
	FieldApartment:     "房间号",
	FieldDeliveryDate:  "期望送达日期",
	FieldPaymentMethod: "支付方式",
	FieldComment:       "订单备注",
}

// ParseField 解析字段名
// 未知字段名返回ErrUnknownField(不做任何模糊匹配)
func ParseField(name string) (Field, error) {
	f, ok := fieldSet[name]
	if !ok {
		return "", apperrors.Newf(apperrors.ErrCodeUnknownField, "未知的收货信息字段: %s", name)
	}
	return f, nil
}

// Label 字段的用户可读名称
func (f Field) Label() string {
	return fieldLabels[f]
}

// IsOptional 是否为可选字段(只有备注可选)
func (f Field) IsOptional() bool {
	return f == FieldComment
}

// RequiredFields 必填字段列表(按展示顺序)
func RequiredFields() []Field {
	required := make([]Field, 0, len(FieldOrder)-1)
	for _, f := range FieldOrder {
		if !f.IsOptional() {
			required = append(required, f)
		}
	}
	return required
}

// =========================================
// 字段值校验
// =========================================

var (
	emailPattern = regexp.MustCompile(`^[a-zA-Z0-9._%+\-]+@[a-zA-Z0-9.\-]+\.[a-zA-Z]{2,}$`)
	phonePattern = regexp.MustCompile(`^\+?[0-9][0-9 \-]{5,18}[0-9]$`)
)

// PaymentMethods 支持的支付方式
var PaymentMethods = []string{"cash", "card", "balance"}

// DeliveryDateLayout 送达日期的输入格式
const DeliveryDateLayout = "2006-01-02"

// Validate 校验字段值
// 业务规则:
// - 必填字段不能为空白
// - 邮箱/电话按格式校验
// - 送达日期必须是YYYY-MM-DD且不早于今天
// - 支付方式必须在PaymentMethods内
// 校验失败返回参数错误,结账流程保持在当前字段重新提示(已填数据不丢失)
func (f Field) Validate(value string) error {
	value = strings.TrimSpace(value)

	if value == "" {
		if f.IsOptional() {
			return nil
		}
		return apperrors.Newf(apperrors.ErrCodeInvalidParams, "%s不能为空", f.Label())
	}

	switch f {
	case FieldName:
		if len([]rune(value)) > 50 {
			return apperrors.New(apperrors.ErrCodeInvalidParams, "收件人姓名不能超过50个字符")
		}
	case FieldEmail:
		if !emailPattern.MatchString(value) {
			return apperrors.New(apperrors.ErrCodeInvalidParams, "邮箱格式不正确")
		}
	case FieldPhone:
		if !phonePattern.MatchString(value) {
			return apperrors.New(apperrors.ErrCodeInvalidParams, "电话号码格式不正确")
		}
	case FieldCity, FieldStreet:
		if len([]rune(value)) > 100 {
			return apperrors.Newf(apperrors.ErrCodeInvalidParams, "%s不能超过100个字符", f.Label())
		}
	case FieldHouse, FieldApartment:
		if len([]rune(value)) > 20 {
			return apperrors.Newf(apperrors.ErrCodeInvalidParams, "%s不能超过20个字符", f.Label())
		}
	case FieldDeliveryDate:
		date, err := time.ParseInLocation(DeliveryDateLayout, value, time.Local)
		if err != nil {
			return apperrors.New(apperrors.ErrCodeInvalidParams, "日期格式应为YYYY-MM-DD")
		}
		// 与解析同用本地时区:当天任何时刻提交当天日期都有效
		now := time.Now()
		today := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.Local)
		if date.Before(today) {
			return apperrors.New(apperrors.ErrCodeInvalidParams, "送达日期不能早于今天")
		}
	case FieldPaymentMethod:
		for _, m := range PaymentMethods {
			if value == m {
				return nil
			}
		}
		return apperrors.Newf(apperrors.ErrCodeInvalidParams,
			"支付方式必须是以下之一: %s", strings.Join(PaymentMethods, "/"))
	case FieldComment:
		if len([]rune(value)) > 500 {
			return apperrors.New(apperrors.ErrCodeInvalidParams, "订单备注不能超过500个字符")
		}
	}

	return nil
}

// IsComplete 判断累积数据是否满足确认下单的条件
// 规则:所有必填字段都已填写(备注除外)
// 这是确认下单的唯一完整性口径(收货档案上的IsComplete只是展示提示)
func IsComplete(data map[Field]string) bool {
	for _, f := range RequiredFields() {
		if strings.TrimSpace(data[f]) == "" {
			return false
		}
	}
	return true
}

// MissingFields 尚未填写的必填字段(按展示顺序)
func MissingFields(data map[Field]string) []Field {
	missing := make([]Field, 0)
	for _, f := range RequiredFields() {
		if strings.TrimSpace(data[f]) == "" {
			missing = append(missing, f)
		}
	}
	return missing
}
