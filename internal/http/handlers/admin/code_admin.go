package admin

import (
	"errors"
	"strconv"
	"strings"

	handlershared "github.com/promokod-next/internal/http/handlers/shared"
	"github.com/promokod-next/internal/http/response"
	"github.com/promokod-next/internal/repository"
	"github.com/promokod-next/internal/service"

	"github.com/gin-gonic/gin"
)

// ListCodes 查询兑换码列表
func (h *Handler) ListCodes(c *gin.Context) {
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	pageSize, _ := strconv.Atoi(c.DefaultQuery("page_size", "20"))
	page, pageSize = handlershared.NormalizePagination(page, pageSize)

	filter := repository.CodeListFilter{
		Kind:     strings.TrimSpace(c.Query("kind")),
		Tier:     strings.TrimSpace(c.Query("tier")),
		Month:    strings.TrimSpace(c.Query("month")),
		Search:   strings.TrimSpace(c.Query("search")),
		Page:     page,
		PageSize: pageSize,
	}
	if used := strings.TrimSpace(c.Query("used")); used != "" {
		value := used == "1" || strings.EqualFold(used, "true")
		filter.Used = &value
	}
	if linked := strings.TrimSpace(c.Query("gift_linked")); linked != "" {
		value := linked == "1" || strings.EqualFold(linked, "true")
		filter.GiftLinked = &value
	}
	if giftID, err := strconv.ParseUint(c.Query("gift_id"), 10, 64); err == nil {
		filter.GiftID = uint(giftID)
	}
	if userID, err := strconv.ParseUint(c.Query("used_by"), 10, 64); err == nil {
		filter.UsedByID = uint(userID)
	}

	codes, total, err := h.CodeAdminService.List(filter)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrCodeInvalidFormat):
			respondError(c, response.CodeBadRequest, "invalid kind", nil)
		default:
			respondError(c, response.CodeInternal, "code list failed", err)
		}
		return
	}

	response.SuccessWithPage(c, codes, response.Pagination{
		Page:      page,
		PageSize:  pageSize,
		Total:     total,
		TotalPage: handlershared.TotalPages(total, pageSize),
	})
}

// ResetCode 按主键重置使用状态
func (h *Handler) ResetCode(c *gin.Context) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil || id == 0 {
		respondError(c, response.CodeBadRequest, "invalid code id", nil)
		return
	}
	if err := h.CodeAdminService.ResetUsageByID(uint(id)); err != nil {
		respondCodeOpError(c, err)
		return
	}
	response.Success(c, gin.H{"reset": true})
}

// ResetCodeByValueRequest 按值重置请求
type ResetCodeByValueRequest struct {
	Kind  string `json:"kind"`
	Value string `json:"value" binding:"required"`
}

// ResetCodeByValue 按值重置使用状态
func (h *Handler) ResetCodeByValue(c *gin.Context) {
	var req ResetCodeByValueRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, response.CodeBadRequest, "bad request", err)
		return
	}
	if err := h.CodeAdminService.ResetUsageByValue(strings.TrimSpace(req.Kind), req.Value); err != nil {
		respondCodeOpError(c, err)
		return
	}
	response.Success(c, gin.H{"reset": true})
}

// MarkGiftGiven 标记奖品已发放
func (h *Handler) MarkGiftGiven(c *gin.Context) {
	adminID, ok := getAdminID(c)
	if !ok {
		return
	}
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil || id == 0 {
		respondError(c, response.CodeBadRequest, "invalid code id", nil)
		return
	}
	if err := h.CodeAdminService.MarkGiftGiven(uint(id), adminID); err != nil {
		respondCodeOpError(c, err)
		return
	}
	response.Success(c, gin.H{"gift_given": true})
}

// DeleteCode 软删除单条兑换码
func (h *Handler) DeleteCode(c *gin.Context) {
	adminID, ok := getAdminID(c)
	if !ok {
		return
	}
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil || id == 0 {
		respondError(c, response.CodeBadRequest, "invalid code id", nil)
		return
	}
	if err := h.CodeAdminService.SoftDelete(uint(id), adminID); err != nil {
		respondCodeOpError(c, err)
		return
	}
	response.Success(c, gin.H{"deleted": true})
}

// ClearCodes 硬删除指定类别的全部兑换码
func (h *Handler) ClearCodes(c *gin.Context) {
	adminID, ok := getAdminID(c)
	if !ok {
		return
	}
	kind := strings.TrimSpace(c.Query("kind"))
	removed, err := h.CodeAdminService.ClearAll(kind)
	if err != nil {
		respondCodeOpError(c, err)
		return
	}
	requestLog(c).Infow("codes_cleared", "kind", kind, "removed", removed, "admin_id", adminID)
	response.Success(c, gin.H{"removed": removed})
}

func respondCodeOpError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, service.ErrCodeInvalidFormat):
		respondError(c, response.CodeBadRequest, "invalid code", nil)
	case errors.Is(err, service.ErrCodeNotFound):
		respondError(c, response.CodeNotFound, "code not found", nil)
	case errors.Is(err, service.ErrCodeAlreadyUsed):
		respondError(c, response.CodeConflict, "code already used", nil)
	default:
		respondError(c, response.CodeInternal, "code operation failed", err)
	}
}
