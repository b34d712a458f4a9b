package public

import (
	"errors"

	"github.com/promokod-next/internal/http/response"
	"github.com/promokod-next/internal/service"

	"github.com/gin-gonic/gin"
)

// CheckCode 非认领式查询兑换码及关联奖品
func (h *Handler) CheckCode(c *gin.Context) {
	value := c.Query("value")
	code, err := h.CodeAdminService.CheckCode(value)
	if err != nil {
		respondCodeLookupError(c, err)
		return
	}
	response.Success(c, gin.H{
		"value":   code.Value,
		"kind":    code.Kind,
		"is_used": code.IsUsed,
		"gift":    code.Gift,
	})
}

// CodeMonth 查询兑换码的活动月份标签
func (h *Handler) CodeMonth(c *gin.Context) {
	value := c.Query("value")
	month, err := h.CodeAdminService.CodeMonth(value)
	if err != nil {
		respondCodeLookupError(c, err)
		return
	}
	response.Success(c, gin.H{"month": month})
}

func respondCodeLookupError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, service.ErrCodeInvalidFormat):
		respondError(c, response.CodeBadRequest, "invalid code format", nil)
	case errors.Is(err, service.ErrCodeNotFound):
		respondError(c, response.CodeNotFound, "code not found", nil)
	default:
		respondError(c, response.CodeInternal, "code lookup failed", err)
	}
}
