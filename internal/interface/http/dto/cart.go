package dto

// AddCartItemRequest HTTP加入购物车请求
// 没有quantity字段:加一次就是+1,重复加入递增(与导购交互一致)
type AddCartItemRequest struct {
	BookID uint `json:"book_id" binding:"required" example:"1"`
}
