package checkout

import (
	"context"
	"strings"

	"github.com/xiebiao/bookshop/internal/domain/checkout"
	apperrors "github.com/xiebiao/bookshop/pkg/errors"
)

// SubmitValueUseCase 提交字段值用例
// 设计说明:
// 1. 必须先SelectField进入编辑状态,才能提交值
// 2. 校验失败时保持编辑状态:用户重新输入,已填的其他字段不丢
// 3. 校验通过后写入累积map并退出编辑状态(回到摘要视图)
type SubmitValueUseCase struct {
	store checkout.Store
}

// NewSubmitValueUseCase 创建提交字段值用例
func NewSubmitValueUseCase(store checkout.Store) *SubmitValueUseCase {
	return &SubmitValueUseCase{store: store}
}

// SubmitValueResponse 提交字段值响应DTO
type SubmitValueResponse struct {
	Field string `json:"field"`
	Value string `json:"value"`
}

// Execute 执行提交字段值
func (uc *SubmitValueUseCase) Execute(ctx context.Context, userID uint, value string) (*SubmitValueResponse, error) {
	field, editing, err := uc.store.GetEditingField(ctx, userID)
	if err != nil {
		return nil, err
	}
	if !editing {
		return nil, apperrors.New(apperrors.ErrCodeInvalidParams, "请先选择要填写的字段")
	}

	value = strings.TrimSpace(value)

	// 校验失败直接返回,不清编辑状态:流程停在当前字段等待重新输入
	if err := field.Validate(value); err != nil {
		return nil, err
	}

	if err := uc.store.SaveValue(ctx, userID, field, value); err != nil {
		return nil, err
	}

	if err := uc.store.ClearEditingField(ctx, userID); err != nil {
		return nil, err
	}

	return &SubmitValueResponse{
		Field: string(field),
		Value: value,
	}, nil
}
