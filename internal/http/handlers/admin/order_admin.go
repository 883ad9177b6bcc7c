package admin

import (
	"strings"
	"time"

	handlershared "github.com/dujiao-next/orderdesk/internal/http/handlers/shared"
	"github.com/dujiao-next/orderdesk/internal/http/response"
	"github.com/dujiao-next/orderdesk/internal/service"

	"github.com/gin-gonic/gin"
)

// UpdateOrderRequest 订单更新请求，缺省字段保持不变
type UpdateOrderRequest struct {
	Status          *string `json:"status"`
	CurrentStatus   *string `json:"current_status"`
	DeliveryDate    *string `json:"delivery_date"`
	CourierAddress  *string `json:"courier_address"`
	AdditionalNotes *string `json:"additional_notes"`
}

// AdminListOrders 订单列表，非管理员只看到自己负责的订单
func (h *Handler) AdminListOrders(c *gin.Context) {
	caller, ok := getCaller(c)
	if !ok {
		return
	}
	query := service.OrderListQuery{
		Page:       handlershared.QueryInt(c, "page", 1),
		PageSize:   handlershared.QueryInt(c, "page_size", 0),
		FilteredBy: strings.TrimSpace(c.Query("filtered_by")),
		SearchBy:   strings.TrimSpace(c.Query("search_by")),
		Search:     strings.TrimSpace(c.Query("search")),
		SortBy:     strings.TrimSpace(c.Query("sort_by")),
		SortOrder:  strings.TrimSpace(c.Query("sort_order")),
	}

	result, err := h.OrderService.GetAllOrders(c.Request.Context(), caller, query)
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

// AdminGetOrder 订单详情
func (h *Handler) AdminGetOrder(c *gin.Context) {
	caller, ok := getCaller(c)
	if !ok {
		return
	}
	id, ok := handlershared.ParseUintParam(c, "id")
	if !ok {
		return
	}
	order, err := h.OrderService.GetOrderForCaller(c.Request.Context(), caller, id)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	response.Success(c, order)
}

// AdminCreateOrder 员工录入订单（multipart，含设计稿）
func (h *Handler) AdminCreateOrder(c *gin.Context) {
	if _, ok := getCaller(c); !ok {
		return
	}
	form, files, err := handlershared.BindOrderForm(c)
	if err != nil {
		respondError(c, response.CodeBadRequest, "bad request", err)
		return
	}
	draft, err := form.ToDraft(true)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	order, err := h.OrderService.CreateOrder(c.Request.Context(), draft, files)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	response.Success(c, order)
}

// AdminUpdateOrder 更新订单状态与配送信息
func (h *Handler) AdminUpdateOrder(c *gin.Context) {
	caller, ok := getCaller(c)
	if !ok {
		return
	}
	id, ok := handlershared.ParseUintParam(c, "id")
	if !ok {
		return
	}
	var req UpdateOrderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, response.CodeBadRequest, "bad request", err)
		return
	}
	input := service.UpdateOrderInput{
		Status:          req.Status,
		CurrentStatus:   req.CurrentStatus,
		CourierAddress:  req.CourierAddress,
		AdditionalNotes: req.AdditionalNotes,
	}
	if req.DeliveryDate != nil {
		date, err := time.Parse("2006-01-02", strings.TrimSpace(*req.DeliveryDate))
		if err != nil {
			respondError(c, response.CodeBadRequest, "delivery_date invalid", nil)
			return
		}
		input.DeliveryDate = &date
	}

	order, err := h.OrderService.UpdateOrder(c.Request.Context(), caller, id, input)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	response.Success(c, order)
}

// AdminCreatePayment 员工为订单登记支付
func (h *Handler) AdminCreatePayment(c *gin.Context) {
	caller, ok := getCaller(c)
	if !ok {
		return
	}
	id, ok := handlershared.ParseUintParam(c, "id")
	if !ok {
		return
	}
	var req handlershared.PaymentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, response.CodeBadRequest, "bad request", err)
		return
	}
	if _, err := h.OrderService.GetOrderForCaller(c.Request.Context(), caller, id); err != nil {
		respondServiceError(c, err)
		return
	}

	payment, err := h.PaymentService.CreatePayment(c.Request.Context(), req.ToInput(id))
	if err != nil {
		respondServiceError(c, err)
		return
	}
	requestLog(c).Infow("staff_payment_recorded",
		"order_id", id,
		"staff_id", caller.StaffID,
		"transaction_id", payment.TransactionID,
		"method", payment.PaymentMethod,
	)
	response.Success(c, payment)
}
