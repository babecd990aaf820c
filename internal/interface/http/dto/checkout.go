package dto

// SelectFieldRequest HTTP选择结账字段请求
// field必须是封闭集合内的字段名,未知名字直接报错
type SelectFieldRequest struct {
	Field string `json:"field" binding:"required" example:"delivery_date"`
}

// SubmitValueRequest HTTP提交字段值请求
// 值允许为空串:可选字段(备注)提交空串表示清除
type SubmitValueRequest struct {
	Value string `json:"value" example:"2026-09-15"`
}
