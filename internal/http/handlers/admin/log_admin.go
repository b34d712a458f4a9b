package admin

import (
	"strconv"

	handlershared "github.com/promokod-next/internal/http/handlers/shared"
	"github.com/promokod-next/internal/http/response"
	"github.com/promokod-next/internal/repository"

	"github.com/gin-gonic/gin"
)

// ListRedemptionLogs 查询兑换尝试日志
func (h *Handler) ListRedemptionLogs(c *gin.Context) {
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	pageSize, _ := strconv.Atoi(c.DefaultQuery("page_size", "20"))
	page, pageSize = handlershared.NormalizePagination(page, pageSize)

	filter := repository.RedemptionLogListFilter{
		Page:     page,
		PageSize: pageSize,
	}
	if userID, err := strconv.ParseUint(c.Query("user_id"), 10, 64); err == nil {
		filter.UserID = uint(userID)
	}
	if codeID, err := strconv.ParseUint(c.Query("code_id"), 10, 64); err == nil {
		filter.CodeID = uint(codeID)
	}

	logs, total, err := h.RedemptionLogService.List(filter)
	if err != nil {
		respondError(c, response.CodeInternal, "log list failed", err)
		return
	}
	response.SuccessWithPage(c, logs, response.Pagination{
		Page:      page,
		PageSize:  pageSize,
		Total:     total,
		TotalPage: handlershared.TotalPages(total, pageSize),
	})
}
