package public

import "github.com/dujiao-next/orderdesk/internal/provider"

// Handler 公开接口处理器入口
// 说明：面向客户下单、支付查询以及网关回调。
type Handler struct {
	*provider.Container
}

// New 创建前台处理器
func New(c *provider.Container) *Handler {
	return &Handler{Container: c}
}
