package admin

import (
	"errors"
	"strconv"

	"github.com/promokod-next/internal/http/response"
	"github.com/promokod-next/internal/models"
	"github.com/promokod-next/internal/service"

	"github.com/gin-gonic/gin"
)

// ListGifts 获取奖品列表
func (h *Handler) ListGifts(c *gin.Context) {
	gifts, err := h.GiftService.List()
	if err != nil {
		respondError(c, response.CodeInternal, "gift list failed", err)
		return
	}
	response.Success(c, gifts)
}

// UpdateGiftRequest 更新奖品请求
type UpdateGiftRequest struct {
	Name       string      `json:"name"`
	Image      string      `json:"image"`
	Images     models.JSON `json:"images"`
	TotalCount *int        `json:"total_count"`
}

// UpdateGift 更新奖品展示信息与总量
func (h *Handler) UpdateGift(c *gin.Context) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil || id == 0 {
		respondError(c, response.CodeBadRequest, "invalid gift id", nil)
		return
	}
	var req UpdateGiftRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, response.CodeBadRequest, "bad request", err)
		return
	}

	gift, err := h.GiftService.UpdateGift(service.UpdateGiftInput{
		ID:         uint(id),
		Name:       req.Name,
		Image:      req.Image,
		ImagesJSON: req.Images,
		TotalCount: req.TotalCount,
	})
	if err != nil {
		switch {
		case errors.Is(err, service.ErrGiftNotFound):
			respondError(c, response.CodeNotFound, "gift not found", nil)
		default:
			respondError(c, response.CodeInternal, "gift update failed", err)
		}
		return
	}
	response.Success(c, gift)
}
