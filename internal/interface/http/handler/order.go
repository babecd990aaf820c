package handler

import (
	"github.com/gin-gonic/gin"

	apporder "github.com/xiebiao/bookshop/internal/application/order"
	"github.com/xiebiao/bookshop/internal/interface/http/dto"
	"github.com/xiebiao/bookshop/internal/interface/http/middleware"
	"github.com/xiebiao/bookshop/pkg/response"
)

// OrderHandler 订单HTTP处理器
type OrderHandler struct {
	listOrdersUseCase   *apporder.ListOrdersUseCase
	getOrderUseCase     *apporder.GetOrderUseCase
	cancelOrderUseCase  *apporder.CancelOrderUseCase
	updateStatusUseCase *apporder.UpdateStatusUseCase
}

// NewOrderHandler 创建订单处理器
func NewOrderHandler(
	listOrdersUseCase *apporder.ListOrdersUseCase,
	getOrderUseCase *apporder.GetOrderUseCase,
	cancelOrderUseCase *apporder.CancelOrderUseCase,
	updateStatusUseCase *apporder.UpdateStatusUseCase,
) *OrderHandler {
	return &OrderHandler{
		listOrdersUseCase:   listOrdersUseCase,
		getOrderUseCase:     getOrderUseCase,
		cancelOrderUseCase:  cancelOrderUseCase,
		updateStatusUseCase: updateStatusUseCase,
	}
}

// ListOrders 订单列表
// @Summary      订单列表
// @Description  分页查询当前用户的历史订单，按下单时间倒序
// @Tags         订单
// @Produce      json
// @Security     BearerAuth
// @Param        page query int false "页码(从1开始)" default(1)
// @Param        page_size query int false "每页数量" default(10)
// @Success      200 {object} response.Response{data=order.ListOrdersResponse}
// @Failure      401 {object} response.Response "未登录"
// @Router       /api/v1/orders [get]
func (h *OrderHandler) ListOrders(c *gin.Context) {
	var req dto.ListOrdersRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		response.ErrorWithCode(c, 40900, "参数错误: "+err.Error())
		return
	}

	userID := middleware.MustGetUserID(c)

	result, err := h.listOrdersUseCase.Execute(c.Request.Context(), apporder.ListOrdersRequest{
		UserID:   userID,
		Page:     req.Page,
		PageSize: req.PageSize,
	})
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, result)
}

// GetOrder 订单详情
// @Summary      订单详情
// @Description  按订单号查询订单；只能查自己的订单，别人的订单返回不存在
// @Tags         订单
// @Produce      json
// @Security     BearerAuth
// @Param        order_no path string true "订单号"
// @Success      200 {object} response.Response{data=order.OrderView}
// @Failure      401 {object} response.Response "未登录"
// @Failure      404 {object} response.Response "订单不存在"
// @Router       /api/v1/orders/{order_no} [get]
func (h *OrderHandler) GetOrder(c *gin.Context) {
	orderNo := c.Param("order_no")
	if orderNo == "" {
		response.ErrorWithCode(c, 40900, "参数错误: 缺少订单号")
		return
	}

	userID := middleware.MustGetUserID(c)

	result, err := h.getOrderUseCase.Execute(c.Request.Context(), userID, orderNo)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, result)
}

// CancelOrder 取消订单
// @Summary      取消订单
// @Description  取消处理中的订单：库存回补，余额支付的订单同时退款；已发货的订单不能取消
// @Tags         订单
// @Produce      json
// @Security     BearerAuth
// @Param        order_no path string true "订单号"
// @Success      200 {object} response.Response
// @Failure      400 {object} response.Response "当前状态不允许取消"
// @Failure      401 {object} response.Response "未登录"
// @Failure      404 {object} response.Response "订单不存在"
// @Router       /api/v1/orders/{order_no} [delete]
func (h *OrderHandler) CancelOrder(c *gin.Context) {
	orderNo := c.Param("order_no")
	if orderNo == "" {
		response.ErrorWithCode(c, 40900, "参数错误: 缺少订单号")
		return
	}

	userID := middleware.MustGetUserID(c)

	if err := h.cancelOrderUseCase.Execute(c.Request.Context(), userID, orderNo); err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, nil)
}

// DeliverOrder 订单发货
// @Summary      订单发货
// @Description  把处理中的订单标记为配送中(运营接口)
// @Tags         订单
// @Produce      json
// @Security     BearerAuth
// @Param        order_no path string true "订单号"
// @Success      200 {object} response.Response{data=order.PlaceOrderResponse}
// @Failure      400 {object} response.Response "当前状态不允许发货"
// @Failure      404 {object} response.Response "订单不存在"
// @Router       /api/v1/orders/{order_no}/deliver [post]
func (h *OrderHandler) DeliverOrder(c *gin.Context) {
	orderNo := c.Param("order_no")
	if orderNo == "" {
		response.ErrorWithCode(c, 40900, "参数错误: 缺少订单号")
		return
	}

	result, err := h.updateStatusUseCase.Deliver(c.Request.Context(), orderNo)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, result)
}

// CompleteOrder 订单完成
// @Summary      订单完成
// @Description  把配送中的订单标记为已完成(运营接口)
// @Tags         订单
// @Produce      json
// @Security     BearerAuth
// @Param        order_no path string true "订单号"
// @Success      200 {object} response.Response{data=order.PlaceOrderResponse}
// @Failure      400 {object} response.Response "当前状态不允许完成"
// @Failure      404 {object} response.Response "订单不存在"
// @Router       /api/v1/orders/{order_no}/complete [post]
func (h *OrderHandler) CompleteOrder(c *gin.Context) {
	orderNo := c.Param("order_no")
	if orderNo == "" {
		response.ErrorWithCode(c, 40900, "参数错误: 缺少订单号")
		return
	}

	result, err := h.updateStatusUseCase.Complete(c.Request.Context(), orderNo)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, result)
}
