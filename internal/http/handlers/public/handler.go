package public

import "github.com/promokod-next/internal/provider"

// Handler 公开接口处理器入口
// 说明：该处理器服务于聊天端网关，不做消息渲染。
type Handler struct {
	*provider.Container
}

// New 创建公开处理器
func New(c *provider.Container) *Handler {
	return &Handler{Container: c}
}
