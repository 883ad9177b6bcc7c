package response

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// 业务状态码，4xx/5xx 同时作为 HTTP 状态码返回
const (
	CodeOK              = 0
	CodeBadRequest      = http.StatusBadRequest
	CodeUnauthorized    = http.StatusUnauthorized
	CodeForbidden       = http.StatusForbidden
	CodeNotFound        = http.StatusNotFound
	CodeConflict        = http.StatusConflict
	CodeTooManyRequests = http.StatusTooManyRequests
	CodeInternal        = http.StatusInternalServerError
	CodeBadGateway      = http.StatusBadGateway
)

// Response 接口统一信封 {status_code, msg, data}
type Response struct {
	StatusCode int         `json:"status_code"`
	Msg        string      `json:"msg"`
	Data       interface{} `json:"data"`
	Pagination *Pagination `json:"pagination,omitempty"`
}

// Pagination 分页信息
type Pagination struct {
	Page      int   `json:"page"`
	PageSize  int   `json:"page_size"`
	Total     int64 `json:"total"`
	TotalPage int64 `json:"total_page"`
}

func Success(c *gin.Context, data interface{}) {
	c.JSON(http.StatusOK, Response{StatusCode: CodeOK, Msg: "success", Data: data})
}

// SuccessWithPage 列表响应
func SuccessWithPage(c *gin.Context, data interface{}, pagination Pagination) {
	c.JSON(http.StatusOK, Response{StatusCode: CodeOK, Msg: "success", Data: data, Pagination: &pagination})
}

// Error 失败响应，data 只携带 request_id
func Error(c *gin.Context, code int, msg string) {
	status := http.StatusOK
	if code >= 400 && code <= 599 {
		status = code
	}
	var data interface{}
	if id := c.GetString("request_id"); id != "" {
		data = gin.H{"request_id": id}
	}
	c.JSON(status, Response{StatusCode: code, Msg: msg, Data: data})
}

func NotFound(c *gin.Context, msg string) { Error(c, CodeNotFound, msg) }
func Unauthorized(c *gin.Context, msg string) { Error(c, CodeUnauthorized, msg) }
func Forbidden(c *gin.Context, msg string) { Error(c, CodeForbidden, msg) }
