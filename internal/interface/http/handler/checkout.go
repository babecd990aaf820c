package handler

import (
	"github.com/gin-gonic/gin"

	appcheckout "github.com/xiebiao/bookshop/internal/application/checkout"
	"github.com/xiebiao/bookshop/internal/interface/http/dto"
	"github.com/xiebiao/bookshop/internal/interface/http/middleware"
	"github.com/xiebiao/bookshop/pkg/response"
)

// CheckoutHandler 结账HTTP处理器
//
// 结账是一个多步会话:用户反复"选字段→填值"直到信息齐全,再确认下单。
// 会话进度存在Redis里(带24小时过期),确认成功后清掉。
type CheckoutHandler struct {
	summaryUseCase      *appcheckout.SummaryUseCase
	selectFieldUseCase  *appcheckout.SelectFieldUseCase
	submitValueUseCase  *appcheckout.SubmitValueUseCase
	confirmOrderUseCase *appcheckout.ConfirmOrderUseCase
	cancelUseCase       *appcheckout.CancelUseCase
}

// NewCheckoutHandler 创建结账处理器
func NewCheckoutHandler(
	summaryUseCase *appcheckout.SummaryUseCase,
	selectFieldUseCase *appcheckout.SelectFieldUseCase,
	submitValueUseCase *appcheckout.SubmitValueUseCase,
	confirmOrderUseCase *appcheckout.ConfirmOrderUseCase,
	cancelUseCase *appcheckout.CancelUseCase,
) *CheckoutHandler {
	return &CheckoutHandler{
		summaryUseCase:      summaryUseCase,
		selectFieldUseCase:  selectFieldUseCase,
		submitValueUseCase:  submitValueUseCase,
		confirmOrderUseCase: confirmOrderUseCase,
		cancelUseCase:       cancelUseCase,
	}
}

// Summary 结账摘要
// @Summary      结账摘要
// @Description  展示收货信息填写进度、购物车金额和库存预检结果；首次进入时从历史收货资料预填(送达日期除外)
// @Tags         结账
// @Produce      json
// @Security     BearerAuth
// @Success      200 {object} response.Response{data=checkout.SummaryResponse}
// @Failure      400 {object} response.Response "购物车为空"
// @Failure      401 {object} response.Response "未登录"
// @Router       /api/v1/checkout [get]
func (h *CheckoutHandler) Summary(c *gin.Context) {
	userID := middleware.MustGetUserID(c)

	result, err := h.summaryUseCase.Execute(c.Request.Context(), userID)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, result)
}

// SelectField 选择要填写的字段
// @Summary      选择要填写的字段
// @Description  进入某个收货信息字段的编辑状态；字段可以按任意顺序反复修改
// @Tags         结账
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        request body dto.SelectFieldRequest true "字段名"
// @Success      200 {object} response.Response{data=checkout.SelectFieldResponse}
// @Failure      400 {object} response.Response "未知字段名"
// @Failure      401 {object} response.Response "未登录"
// @Router       /api/v1/checkout/field [post]
func (h *CheckoutHandler) SelectField(c *gin.Context) {
	var req dto.SelectFieldRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.ErrorWithCode(c, 40900, "参数错误: "+err.Error())
		return
	}

	userID := middleware.MustGetUserID(c)

	result, err := h.selectFieldUseCase.Execute(c.Request.Context(), userID, req.Field)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, result)
}

// SubmitValue 提交字段值
// @Summary      提交字段值
// @Description  为当前编辑中的字段提交值；校验失败时保持编辑状态，可直接重新提交
// @Tags         结账
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        request body dto.SubmitValueRequest true "字段值"
// @Success      200 {object} response.Response{data=checkout.SubmitValueResponse}
// @Failure      400 {object} response.Response "未先选择字段或值不合法"
// @Failure      401 {object} response.Response "未登录"
// @Router       /api/v1/checkout/value [post]
func (h *CheckoutHandler) SubmitValue(c *gin.Context) {
	var req dto.SubmitValueRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.ErrorWithCode(c, 40900, "参数错误: "+err.Error())
		return
	}

	userID := middleware.MustGetUserID(c)

	result, err := h.submitValueUseCase.Execute(c.Request.Context(), userID, req.Value)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, result)
}

// Confirm 确认下单
// @Summary      确认下单
// @Description  必填信息齐全后确认下单：落库收货信息、锁库存创建订单、清空购物车和结账会话。库存不足时订单不会创建，购物车和已填信息原样保留
// @Tags         结账
// @Produce      json
// @Security     BearerAuth
// @Success      200 {object} response.Response{data=order.PlaceOrderResponse}
// @Failure      400 {object} response.Response "信息未填完整或购物车为空"
// @Failure      401 {object} response.Response "未登录"
// @Failure      500 {object} response.Response "库存不足"
// @Router       /api/v1/checkout/confirm [post]
func (h *CheckoutHandler) Confirm(c *gin.Context) {
	userID := middleware.MustGetUserID(c)

	result, err := h.confirmOrderUseCase.Execute(c.Request.Context(), userID)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, result)
}

// Cancel 放弃结账
// @Summary      放弃结账
// @Description  丢弃本次结账会话的填写进度；购物车和库存不受影响
// @Tags         结账
// @Produce      json
// @Security     BearerAuth
// @Success      200 {object} response.Response
// @Failure      401 {object} response.Response "未登录"
// @Router       /api/v1/checkout [delete]
func (h *CheckoutHandler) Cancel(c *gin.Context) {
	userID := middleware.MustGetUserID(c)

	if err := h.cancelUseCase.Execute(c.Request.Context(), userID); err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, nil)
}
