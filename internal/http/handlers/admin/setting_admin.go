package admin

import (
	"errors"

	"github.com/promokod-next/internal/http/response"
	"github.com/promokod-next/internal/service"

	"github.com/gin-gonic/gin"
)

// GetRedemptionSetting 获取兑换策略
func (h *Handler) GetRedemptionSetting(c *gin.Context) {
	setting, err := h.SettingService.GetRedemptionSetting(c.Request.Context())
	if err != nil {
		respondError(c, response.CodeInternal, "setting fetch failed", err)
		return
	}
	response.Success(c, setting)
}

// UpdateRedemptionSettingRequest 更新兑换策略请求
type UpdateRedemptionSettingRequest struct {
	CodeLimitPerUser service.CodeLimitSetting `json:"code_limit_per_user"`
}

// UpdateRedemptionSetting 更新兑换策略
func (h *Handler) UpdateRedemptionSetting(c *gin.Context) {
	var req UpdateRedemptionSettingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, response.CodeBadRequest, "bad request", err)
		return
	}
	setting, err := h.SettingService.UpdateRedemptionSetting(c.Request.Context(), service.RedemptionSetting{
		CodeLimitPerUser: req.CodeLimitPerUser,
	})
	if err != nil {
		if errors.Is(err, service.ErrSettingInvalid) {
			respondError(c, response.CodeBadRequest, "limit value out of range", nil)
			return
		}
		respondError(c, response.CodeInternal, "setting update failed", err)
		return
	}
	response.Success(c, setting)
}
