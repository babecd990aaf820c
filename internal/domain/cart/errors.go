package cart

import (
	apperrors "github.com/xiebiao/bookshop/pkg/errors"
)

// 购物车领域错误定义
var (
	// ErrEmptyCart 购物车为空(下单前校验)
	ErrEmptyCart = apperrors.ErrEmptyCart

	// ErrItemNotFound 购物车中没有该商品
	ErrItemNotFound = apperrors.New(apperrors.ErrCodeNotFound, "购物车中没有该商品")
)
