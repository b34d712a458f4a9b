package admin

import (
	"strconv"
	"strings"

	handlershared "github.com/promokod-next/internal/http/handlers/shared"
	"github.com/promokod-next/internal/http/response"
	"github.com/promokod-next/internal/repository"

	"github.com/gin-gonic/gin"
)

// ListUsers 查询聊天用户列表
func (h *Handler) ListUsers(c *gin.Context) {
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	pageSize, _ := strconv.Atoi(c.DefaultQuery("page_size", "20"))
	page, pageSize = handlershared.NormalizePagination(page, pageSize)

	filter := repository.UserListFilter{
		Status:   strings.TrimSpace(c.Query("status")),
		Search:   strings.TrimSpace(c.Query("search")),
		Page:     page,
		PageSize: pageSize,
	}

	users, total, err := h.UserService.List(filter)
	if err != nil {
		respondError(c, response.CodeInternal, "user list failed", err)
		return
	}
	response.SuccessWithPage(c, users, response.Pagination{
		Page:      page,
		PageSize:  pageSize,
		Total:     total,
		TotalPage: handlershared.TotalPages(total, pageSize),
	})
}
