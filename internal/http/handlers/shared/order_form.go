package shared

import (
	"encoding/json"
	"fmt"
	"mime/multipart"
	"strings"
	"time"

	"github.com/dujiao-next/orderdesk/internal/service"

	"github.com/gin-gonic/gin"
)

// DesignFilesField 设计稿文件表单字段
const DesignFilesField = "design_files"

const deliveryDateLayout = "2006-01-02"

// OrderForm 订单表单（multipart），items 为 JSON 数组
type OrderForm struct {
	CustomerID        *uint   `form:"customer_id"`
	CustomerName      string  `form:"customer_name"`
	CustomerEmail     string  `form:"customer_email"`
	CustomerPhone     string  `form:"customer_phone"`
	BillingAddress    string  `form:"billing_address"`
	AdditionalNotes   string  `form:"additional_notes"`
	DeliveryMethod    string  `form:"delivery_method" binding:"required"`
	PaymentMethod     string  `form:"payment_method" binding:"required"`
	CouponID          *uint   `form:"coupon_id"`
	CourierID         *uint   `form:"courier_id"`
	CourierAddress    *string `form:"courier_address"`
	Items             string  `form:"items" binding:"required"`
	CaptchaID         string  `form:"captcha_id"`
	CaptchaCode       string  `form:"captcha_code"`
	StaffID           *uint   `form:"staff_id"`
	Status            string  `form:"status"`
	CurrentStatus     string  `form:"current_status"`
	FulfillmentMethod string  `form:"fulfillment_method"`
	DeliveryDate      string  `form:"delivery_date"`
}

// BindOrderForm 解析订单表单与设计稿文件
func BindOrderForm(c *gin.Context) (*OrderForm, []*multipart.FileHeader, error) {
	var form OrderForm
	if err := c.ShouldBind(&form); err != nil {
		return nil, nil, err
	}
	var files []*multipart.FileHeader
	if multipartForm, err := c.MultipartForm(); err == nil && multipartForm != nil {
		files = multipartForm.File[DesignFilesField]
	}
	return &form, files, nil
}

// ToDraft 转换为订单草稿；staffFields 为 false 时忽略仅员工可填的字段
func (f *OrderForm) ToDraft(staffFields bool) (service.OrderDraft, error) {
	var items []service.OrderItemDraft
	if err := json.Unmarshal([]byte(f.Items), &items); err != nil {
		return service.OrderDraft{}, fmt.Errorf("%w: items: %v", service.ErrOrderInvalid, err)
	}
	draft := service.OrderDraft{
		CustomerID:      f.CustomerID,
		CustomerName:    strings.TrimSpace(f.CustomerName),
		CustomerEmail:   strings.TrimSpace(f.CustomerEmail),
		CustomerPhone:   strings.TrimSpace(f.CustomerPhone),
		BillingAddress:  strings.TrimSpace(f.BillingAddress),
		AdditionalNotes: strings.TrimSpace(f.AdditionalNotes),
		DeliveryMethod:  strings.TrimSpace(f.DeliveryMethod),
		PaymentMethod:   strings.TrimSpace(f.PaymentMethod),
		CouponID:        f.CouponID,
		CourierID:       f.CourierID,
		CourierAddress:  f.CourierAddress,
		Items:           items,
	}
	if !staffFields {
		return draft, nil
	}
	draft.StaffID = f.StaffID
	draft.Status = strings.TrimSpace(f.Status)
	draft.CurrentStatus = strings.TrimSpace(f.CurrentStatus)
	draft.FulfillmentMethod = strings.TrimSpace(f.FulfillmentMethod)
	if raw := strings.TrimSpace(f.DeliveryDate); raw != "" {
		date, err := time.Parse(deliveryDateLayout, raw)
		if err != nil {
			return service.OrderDraft{}, fmt.Errorf("%w: delivery_date: %v", service.ErrOrderInvalid, err)
		}
		draft.DeliveryDate = &date
	}
	return draft, nil
}
