package admin

import "github.com/dujiao-next/orderdesk/internal/provider"

// Handler 员工后台接口处理器入口
// 说明：该处理器仅用于 /admin 下的员工 API。
type Handler struct {
	*provider.Container
}

// New 创建后台处理器
func New(c *provider.Container) *Handler {
	return &Handler{Container: c}
}
