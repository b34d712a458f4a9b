package public

import (
	"errors"

	handlershared "github.com/promokod-next/internal/http/handlers/shared"
	"github.com/promokod-next/internal/http/response"
	"github.com/promokod-next/internal/service"

	"github.com/gin-gonic/gin"
)

// RedeemRequest 兑换请求。
// 聊天端透传用户标识与原始文本，消息渲染由聊天端负责。
type RedeemRequest struct {
	UserID    uint   `json:"user_id"`
	TgID      int64  `json:"tg_id"`
	Text      string `json:"text" binding:"required"`
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
	Lang      string `json:"lang"`
}

// Redeem 处理一次兑换尝试
func (h *Handler) Redeem(c *gin.Context) {
	var req RedeemRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, response.CodeBadRequest, "bad request", err)
		return
	}

	userID := req.UserID
	if userID == 0 {
		user, err := h.UserService.ResolveByTgID(service.ResolveInput{
			TgID:      req.TgID,
			FirstName: req.FirstName,
			LastName:  req.LastName,
			Language:  req.Lang,
		})
		if err != nil {
			switch {
			case errors.Is(err, service.ErrUserNotFound):
				respondError(c, response.CodeBadRequest, "user identity required", nil)
			case errors.Is(err, service.ErrUserBlocked):
				respondError(c, response.CodeUnauthorized, "user blocked", nil)
			default:
				respondError(c, response.CodeInternal, "user resolve failed", err)
			}
			return
		}
		userID = user.ID
	}

	result, err := h.RedemptionService.Redeem(c.Request.Context(), service.RedeemInput{
		UserID:  userID,
		RawText: req.Text,
	})
	if err != nil {
		respondError(c, response.CodeInternal, "redeem failed", err)
		return
	}

	handlershared.RequestLog(c).Infow("redeem_attempt",
		"user_id", userID, "outcome", result.Outcome, "tier", result.Tier)
	response.Success(c, result)
}
