package checkout

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "github.com/xiebiao/bookshop/pkg/errors"
)

// TestParseField 测试字段名解析(封闭集合)
func TestParseField(t *testing.T) {
	t.Run("合法字段名", func(t *testing.T) {
		for _, f := range FieldOrder {
			parsed, err := ParseField(string(f))
			require.NoError(t, err)
			assert.Equal(t, f, parsed)
		}
	})

	t.Run("未知字段名直接报错", func(t *testing.T) {
		for _, name := range []string{"zipcode", "NAME", "name ", ""} {
			_, err := ParseField(name)
			assert.True(t, apperrors.IsCode(err, apperrors.ErrCodeUnknownField),
				"字段名%q应该返回未知字段错误", name)
		}
	})
}

// TestFieldValidate 测试字段值校验
func TestFieldValidate(t *testing.T) {
	t.Run("必填字段不能为空白", func(t *testing.T) {
		assert.Error(t, FieldName.Validate(""))
		assert.Error(t, FieldCity.Validate("   "))
	})

	t.Run("备注是唯一的可选字段", func(t *testing.T) {
		assert.NoError(t, FieldComment.Validate(""))
		assert.NoError(t, FieldComment.Validate("放门口即可"))
	})

	t.Run("邮箱格式", func(t *testing.T) {
		assert.NoError(t, FieldEmail.Validate("user@example.com"))
		assert.Error(t, FieldEmail.Validate("not-an-email"))
		assert.Error(t, FieldEmail.Validate("user@"))
	})

	t.Run("电话格式", func(t *testing.T) {
		assert.NoError(t, FieldPhone.Validate("+86 138-0000-0000"))
		assert.NoError(t, FieldPhone.Validate("13800000000"))
		assert.Error(t, FieldPhone.Validate("abc"))
		assert.Error(t, FieldPhone.Validate("12"))
	})

	t.Run("送达日期必须是未来的YYYY-MM-DD", func(t *testing.T) {
		tomorrow := time.Now().AddDate(0, 0, 1).Format(DeliveryDateLayout)
		assert.NoError(t, FieldDeliveryDate.Validate(tomorrow))

		// 当天日期全天有效,按本地时区的零点判断
		today := time.Now().Format(DeliveryDateLayout)
		assert.NoError(t, FieldDeliveryDate.Validate(today))

		assert.Error(t, FieldDeliveryDate.Validate("2020-01-01"), "过去的日期应该被拒绝")
		assert.Error(t, FieldDeliveryDate.Validate("15/09/2026"), "非标准格式应该被拒绝")
		assert.Error(t, FieldDeliveryDate.Validate("明天"))
	})

	t.Run("支付方式封闭枚举", func(t *testing.T) {
		for _, m := range PaymentMethods {
			assert.NoError(t, FieldPaymentMethod.Validate(m))
		}
		assert.Error(t, FieldPaymentMethod.Validate("bitcoin"))
	})
}

// TestIsComplete 测试完整性判定
func TestIsComplete(t *testing.T) {
	data := map[Field]string{}
	assert.False(t, IsComplete(data))

	// 逐个填写必填字段,填满前始终不完整
	values := map[Field]string{
		FieldName:          "张三",
		FieldEmail:         "zhangsan@example.com",
		FieldPhone:         "13800000000",
		FieldCity:          "上海",
		FieldStreet:        "南京东路",
		FieldHouse:         "100号",
		FieldApartment:     "1201",
		FieldDeliveryDate:  "2030-01-01",
		FieldPaymentMethod: "cash",
	}
	for _, f := range RequiredFields() {
		assert.False(t, IsComplete(data), "填写%s之前不应该完整", f)
		data[f] = values[f]
	}

	assert.True(t, IsComplete(data), "所有必填字段填写后应该完整")
	assert.Empty(t, MissingFields(data))

	// 备注不参与完整性判定
	data[FieldComment] = ""
	assert.True(t, IsComplete(data))
}

// TestMissingFields 测试缺失字段按展示顺序返回
func TestMissingFields(t *testing.T) {
	data := map[Field]string{
		FieldName:  "张三",
		FieldPhone: "13800000000",
	}

	missing := MissingFields(data)
	require.Len(t, missing, 7)
	assert.Equal(t, FieldEmail, missing[0], "缺失字段应该按展示顺序排列")
	assert.NotContains(t, missing, FieldComment, "备注永远不算缺失")
}
