package public

import (
	handlershared "github.com/dujiao-next/orderdesk/internal/http/handlers/shared"
	"github.com/dujiao-next/orderdesk/internal/http/response"

	"github.com/gin-gonic/gin"
)

// CreateOrderRequest 客户提交订单请求（multipart，含设计稿）
func (h *Handler) CreateOrderRequest(c *gin.Context) {
	form, files, err := handlershared.BindOrderForm(c)
	if err != nil {
		respondError(c, response.CodeBadRequest, "bad request", err)
		return
	}
	if err := h.CaptchaService.Verify(form.CaptchaID, form.CaptchaCode); err != nil {
		respondServiceError(c, err)
		return
	}
	draft, err := form.ToDraft(false)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	order, err := h.OrderService.CreateOrderRequest(c.Request.Context(), draft, files)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	requestLog(c).Infow("order_request_accepted", "order_id", order.ID, "files", len(files))
	response.Success(c, order)
}

// GetCustomerOrders 客户订单列表
func (h *Handler) GetCustomerOrders(c *gin.Context) {
	customerID, ok := handlershared.ParseUintParam(c, "customer_id")
	if !ok {
		return
	}
	page := handlershared.QueryInt(c, "page", 1)
	pageSize := handlershared.QueryInt(c, "page_size", 0)

	result, err := h.OrderService.GetOrdersByCustomer(c.Request.Context(), customerID, page, pageSize)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	response.SuccessWithPage(c, result.Orders, response.Pagination{
		Page:      result.Page,
		PageSize:  result.PageSize,
		Total:     result.Total,
		TotalPage: result.TotalPages,
	})
}
