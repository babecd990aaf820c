package handler

import (
	"github.com/gin-gonic/gin"

	appbook "github.com/xiebiao/bookshop/internal/application/book"
	"github.com/xiebiao/bookshop/internal/interface/http/dto"
	"github.com/xiebiao/bookshop/internal/interface/http/middleware"
	"github.com/xiebiao/bookshop/pkg/response"
)

// BookHandler 图书HTTP处理器
type BookHandler struct {
	publishBookUseCase *appbook.PublishBookUseCase
	listBooksUseCase   *appbook.ListBooksUseCase
	manageSaleUseCase  *appbook.ManageSaleUseCase
}

// NewBookHandler 创建图书处理器
func NewBookHandler(
	publishBookUseCase *appbook.PublishBookUseCase,
	listBooksUseCase *appbook.ListBooksUseCase,
	manageSaleUseCase *appbook.ManageSaleUseCase,
) *BookHandler {
	return &BookHandler{
		publishBookUseCase: publishBookUseCase,
		listBooksUseCase:   listBooksUseCase,
		manageSaleUseCase:  manageSaleUseCase,
	}
}

// PublishBook 发布图书(上架)
// @Summary      发布图书
// @Description  会员发布图书商品上架
// @Tags         图书
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        request body dto.PublishBookRequest true "图书信息"
// @Success      200 {object} response.Response{data=dto.BookResponse}
// @Failure      400 {object} response.Response "参数错误"
// @Failure      401 {object} response.Response "未登录"
// @Failure      409 {object} response.Response "ISBN已存在"
// @Router       /api/v1/books [post]
func (h *BookHandler) PublishBook(c *gin.Context) {
	// 1. 参数绑定与验证
	var req dto.PublishBookRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.ErrorWithCode(c, 40900, "参数错误: "+err.Error())
		return
	}

	// 2. 获取当前登录用户ID(从认证中间件注入的Context中获取)
	userID := middleware.MustGetUserID(c)

	// 3. 调用应用层用例
	result, err := h.publishBookUseCase.Execute(c.Request.Context(), appbook.PublishBookRequest{
		ISBN:        req.ISBN,
		Title:       req.Title,
		Author:      req.Author,
		Publisher:   req.Publisher,
		Price:       req.Price,
		Stock:       req.Stock,
		CoverURL:    req.CoverURL,
		Description: req.Description,
		PublisherID: userID,
	})
	if err != nil {
		response.Error(c, err)
		return
	}

	// 4. 构建HTTP响应
	response.Success(c, &dto.BookResponse{
		ID:          result.ID,
		ISBN:        result.ISBN,
		Title:       result.Title,
		Author:      result.Author,
		Publisher:   result.Publisher,
		Price:       result.Price,
		PriceYuan:   dto.FormatPriceYuan(result.Price),
		Stock:       result.Stock,
		CoverURL:    result.CoverURL,
		Description: result.Description,
		PublisherID: result.PublisherID,
		CreatedAt:   result.CreatedAt,
		UpdatedAt:   result.CreatedAt, // 新创建时UpdatedAt等于CreatedAt
	})
}

// ListBooks 图书列表
// @Summary      图书列表
// @Description  分页浏览在售图书，支持关键词搜索、促销过滤和排序
// @Tags         图书
// @Produce      json
// @Param        page query int false "页码(从1开始)" default(1)
// @Param        page_size query int false "每页数量" default(20)
// @Param        keyword query string false "搜索关键词(标题/作者/出版社)"
// @Param        on_sale query bool false "只看促销中的图书"
// @Param        sort_by query string false "排序方式" Enums(price_asc, price_desc, created_at_desc)
// @Success      200 {object} response.Response{data=book.ListBooksResponse}
// @Failure      400 {object} response.Response "参数错误"
// @Router       /api/v1/books [get]
func (h *BookHandler) ListBooks(c *gin.Context) {
	var req dto.ListBooksRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		response.ErrorWithCode(c, 40900, "参数错误: "+err.Error())
		return
	}

	result, err := h.listBooksUseCase.Execute(c.Request.Context(), appbook.ListBooksRequest{
		Page:     req.Page,
		PageSize: req.PageSize,
		Keyword:  req.Keyword,
		OnSale:   req.OnSale,
		SortBy:   req.SortBy,
	})
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, result)
}

// StartSale 开启促销
// @Summary      开启促销
// @Description  发布者对自己的图书按比例降价，生效价=round(原价×(1-rate))
// @Tags         图书
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id path int true "图书ID"
// @Param        request body dto.StartSaleRequest true "降价比例"
// @Success      200 {object} response.Response{data=book.SaleInfoResponse}
// @Failure      400 {object} response.Response "参数错误"
// @Failure      403 {object} response.Response "不是发布者"
// @Failure      404 {object} response.Response "图书不存在"
// @Router       /api/v1/books/{id}/sale [post]
func (h *BookHandler) StartSale(c *gin.Context) {
	bookID, ok := parseUintParam(c, "id")
	if !ok {
		return
	}

	var req dto.StartSaleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.ErrorWithCode(c, 40900, "参数错误: "+err.Error())
		return
	}

	userID := middleware.MustGetUserID(c)

	result, err := h.manageSaleUseCase.StartSale(c.Request.Context(), bookID, userID, req.Rate)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, result)
}

// StopSale 结束促销
// @Summary      结束促销
// @Description  发布者结束促销，价格恢复原价
// @Tags         图书
// @Produce      json
// @Security     BearerAuth
// @Param        id path int true "图书ID"
// @Success      200 {object} response.Response{data=book.SaleInfoResponse}
// @Failure      403 {object} response.Response "不是发布者"
// @Failure      404 {object} response.Response "图书不存在"
// @Router       /api/v1/books/{id}/sale [delete]
func (h *BookHandler) StopSale(c *gin.Context) {
	bookID, ok := parseUintParam(c, "id")
	if !ok {
		return
	}

	userID := middleware.MustGetUserID(c)

	result, err := h.manageSaleUseCase.StopSale(c.Request.Context(), bookID, userID)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, result)
}

// UpdatePrice 修改原价
// @Summary      修改原价
// @Description  发布者调整图书原价，促销中按新原价重新计算生效价
// @Tags         图书
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id path int true "图书ID"
// @Param        request body dto.UpdatePriceRequest true "新价格"
// @Success      200 {object} response.Response{data=book.SaleInfoResponse}
// @Failure      400 {object} response.Response "参数错误"
// @Failure      403 {object} response.Response "不是发布者"
// @Failure      404 {object} response.Response "图书不存在"
// @Router       /api/v1/books/{id}/price [put]
func (h *BookHandler) UpdatePrice(c *gin.Context) {
	bookID, ok := parseUintParam(c, "id")
	if !ok {
		return
	}

	var req dto.UpdatePriceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.ErrorWithCode(c, 40900, "参数错误: "+err.Error())
		return
	}

	userID := middleware.MustGetUserID(c)

	result, err := h.manageSaleUseCase.UpdatePrice(c.Request.Context(), bookID, userID, req.Price)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, result)
}
