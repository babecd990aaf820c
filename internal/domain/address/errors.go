package address

import (
	apperrors "github.com/xiebiao/bookshop/pkg/errors"
)

// 收货信息领域错误定义
var (
	// ErrAddressNotFound 收货信息不存在
	ErrAddressNotFound = apperrors.ErrAddressNotFound
)
