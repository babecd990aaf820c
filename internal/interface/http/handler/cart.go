package handler

import (
	"strconv"

	"github.com/gin-gonic/gin"

	appcart "github.com/xiebiao/bookshop/internal/application/cart"
	"github.com/xiebiao/bookshop/internal/interface/http/dto"
	"github.com/xiebiao/bookshop/internal/interface/http/middleware"
	"github.com/xiebiao/bookshop/pkg/response"
)

// CartHandler 购物车HTTP处理器
type CartHandler struct {
	addItemUseCase    *appcart.AddItemUseCase
	getCartUseCase    *appcart.GetCartUseCase
	removeItemUseCase *appcart.RemoveItemUseCase
	clearCartUseCase  *appcart.ClearCartUseCase
}

// NewCartHandler 创建购物车处理器
func NewCartHandler(
	addItemUseCase *appcart.AddItemUseCase,
	getCartUseCase *appcart.GetCartUseCase,
	removeItemUseCase *appcart.RemoveItemUseCase,
	clearCartUseCase *appcart.ClearCartUseCase,
) *CartHandler {
	return &CartHandler{
		addItemUseCase:    addItemUseCase,
		getCartUseCase:    getCartUseCase,
		removeItemUseCase: removeItemUseCase,
		clearCartUseCase:  clearCartUseCase,
	}
}

// AddItem 加入购物车
// @Summary      加入购物车
// @Description  把图书加入购物车，数量+1；首次加入时按当前生效价锁定单价，之后图书调价或促销不影响已入车的行
// @Tags         购物车
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        request body dto.AddCartItemRequest true "图书ID"
// @Success      200 {object} response.Response{data=cart.AddItemResponse}
// @Failure      400 {object} response.Response "参数错误"
// @Failure      401 {object} response.Response "未登录"
// @Failure      404 {object} response.Response "图书不存在"
// @Router       /api/v1/cart/items [post]
func (h *CartHandler) AddItem(c *gin.Context) {
	var req dto.AddCartItemRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.ErrorWithCode(c, 40900, "参数错误: "+err.Error())
		return
	}

	userID := middleware.MustGetUserID(c)

	result, err := h.addItemUseCase.Execute(c.Request.Context(), appcart.AddItemRequest{
		UserID: userID,
		BookID: req.BookID,
	})
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, result)
}

// GetCart 查看购物车
// @Summary      查看购物车
// @Description  返回购物车全部行(锁定单价、小计)和总金额
// @Tags         购物车
// @Produce      json
// @Security     BearerAuth
// @Success      200 {object} response.Response{data=cart.CartView}
// @Failure      401 {object} response.Response "未登录"
// @Router       /api/v1/cart [get]
func (h *CartHandler) GetCart(c *gin.Context) {
	userID := middleware.MustGetUserID(c)

	result, err := h.getCartUseCase.Execute(c.Request.Context(), userID)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, result)
}

// RemoveItem 移除购物车行
// @Summary      移除购物车行
// @Description  从购物车中整行移除某本图书
// @Tags         购物车
// @Produce      json
// @Security     BearerAuth
// @Param        book_id path int true "图书ID"
// @Success      200 {object} response.Response
// @Failure      401 {object} response.Response "未登录"
// @Failure      404 {object} response.Response "购物车中没有这本书"
// @Router       /api/v1/cart/items/{book_id} [delete]
func (h *CartHandler) RemoveItem(c *gin.Context) {
	bookID, ok := parseUintParam(c, "book_id")
	if !ok {
		return
	}

	userID := middleware.MustGetUserID(c)

	if err := h.removeItemUseCase.Execute(c.Request.Context(), userID, bookID); err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, nil)
}

// ClearCart 清空购物车
// @Summary      清空购物车
// @Description  移除购物车全部行；cleared=false表示购物车本来就是空的
// @Tags         购物车
// @Produce      json
// @Security     BearerAuth
// @Success      200 {object} response.Response{data=cart.ClearCartResponse}
// @Failure      401 {object} response.Response "未登录"
// @Router       /api/v1/cart [delete]
func (h *CartHandler) ClearCart(c *gin.Context) {
	userID := middleware.MustGetUserID(c)

	result, err := h.clearCartUseCase.Execute(c.Request.Context(), userID)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, result)
}

// parseUintParam 解析路径中的无符号整数参数,失败时直接写响应
func parseUintParam(c *gin.Context, name string) (uint, bool) {
	id, err := strconv.ParseUint(c.Param(name), 10, 32)
	if err != nil || id == 0 {
		response.ErrorWithCode(c, 40900, "参数错误: 无效的"+name)
		return 0, false
	}
	return uint(id), true
}
