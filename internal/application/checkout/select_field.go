package checkout

import (
	"context"

	"github.com/xiebiao/bookshop/internal/domain/checkout"
)

// SelectFieldUseCase 选择要填写的字段用例
// 结账是可随机跳转的引导流程:用户可以按任意顺序挑字段填/改
type SelectFieldUseCase struct {
	store checkout.Store
}

// NewSelectFieldUseCase 创建选择字段用例
func NewSelectFieldUseCase(store checkout.Store) *SelectFieldUseCase {
	return &SelectFieldUseCase{store: store}
}

// SelectFieldResponse 选择字段响应DTO
type SelectFieldResponse struct {
	Field    string `json:"field"`
	Label    string `json:"label"`
	Current  string `json:"current,omitempty"` // 已填过时回显当前值
	Optional bool   `json:"optional"`
}

// Execute 执行选择字段
// 字段名经过封闭集合校验:未知字段名直接报错,绝不静默忽略
func (uc *SelectFieldUseCase) Execute(ctx context.Context, userID uint, fieldName string) (*SelectFieldResponse, error) {
	field, err := checkout.ParseField(fieldName)
	if err != nil {
		return nil, err
	}

	if err := uc.store.SetEditingField(ctx, userID, field); err != nil {
		return nil, err
	}

	data, err := uc.store.GetData(ctx, userID)
	if err != nil {
		return nil, err
	}

	return &SelectFieldResponse{
		Field:    string(field),
		Label:    field.Label(),
		Current:  data[field],
		Optional: field.IsOptional(),
	}, nil
}
