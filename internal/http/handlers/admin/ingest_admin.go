package admin

import (
	"errors"
	"strings"

	"github.com/promokod-next/internal/constants"
	"github.com/promokod-next/internal/http/response"
	"github.com/promokod-next/internal/service"

	"github.com/gin-gonic/gin"
)

// ImportCodesRequest JSON 导入请求。外部解析器已把表格还原为二维表，
// source 标记表格来源（manual/sheet），缺省按手工录入处理。
type ImportCodesRequest struct {
	Rows   [][]string `json:"rows" binding:"required"`
	Mode   string     `json:"mode" binding:"required"`
	Tier   string     `json:"tier"`
	Month  string     `json:"month"`
	Year   string     `json:"year"`
	Source string     `json:"source"`
}

// ImportCodes 批量导入兑换码（JSON 二维表）
func (h *Handler) ImportCodes(c *gin.Context) {
	adminID, ok := getAdminID(c)
	if !ok {
		return
	}
	var req ImportCodesRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, response.CodeBadRequest, "bad request", err)
		return
	}
	source := strings.TrimSpace(req.Source)
	if source == "" {
		source = constants.IngestSourceManual
	}
	if !constants.IsValidIngestSource(source) {
		respondError(c, response.CodeBadRequest, "invalid import source", nil)
		return
	}

	h.runIngest(c, service.IngestInput{
		Rows:    req.Rows,
		Mode:    strings.TrimSpace(req.Mode),
		Tier:    strings.TrimSpace(req.Tier),
		Month:   strings.TrimSpace(req.Month),
		Year:    strings.TrimSpace(req.Year),
		Source:  source,
		AdminID: adminID,
	})
}

// ImportCodesFile 批量导入兑换码（CSV/TXT 上传）
func (h *Handler) ImportCodesFile(c *gin.Context) {
	adminID, ok := getAdminID(c)
	if !ok {
		return
	}
	fileHeader, err := c.FormFile("file")
	if err != nil {
		respondError(c, response.CodeBadRequest, "file required", err)
		return
	}
	file, err := fileHeader.Open()
	if err != nil {
		respondError(c, response.CodeBadRequest, "file open failed", err)
		return
	}
	defer file.Close()

	rows, err := service.ParseDelimited(file)
	if err != nil {
		respondError(c, response.CodeBadRequest, "file parse failed", err)
		return
	}

	h.runIngest(c, service.IngestInput{
		Rows:    rows,
		Mode:    strings.TrimSpace(c.PostForm("mode")),
		Tier:    strings.TrimSpace(c.PostForm("tier")),
		Month:   strings.TrimSpace(c.PostForm("month")),
		Year:    strings.TrimSpace(c.PostForm("year")),
		Source:  constants.IngestSourceCSV,
		AdminID: adminID,
	})
}

func (h *Handler) runIngest(c *gin.Context, input service.IngestInput) {
	result, err := h.IngestService.Ingest(input)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrIngestModeInvalid):
			respondError(c, response.CodeBadRequest, "invalid import mode", nil)
		case errors.Is(err, service.ErrIngestTierRequired):
			respondError(c, response.CodeBadRequest, "tier required for winner import", nil)
		case errors.Is(err, service.ErrGiftTierInvalid):
			respondError(c, response.CodeBadRequest, "unknown gift tier", nil)
		case errors.Is(err, service.ErrCodeImportEmpty):
			respondError(c, response.CodeBadRequest, "no importable values", nil)
		default:
			respondError(c, response.CodeInternal, "import failed", err)
		}
		return
	}
	requestLog(c).Infow("codes_imported",
		"mode", input.Mode, "tier", input.Tier, "source", input.Source,
		"success", result.Success, "inserted", result.Inserted,
		"duplicates", result.Duplicates, "admin_id", input.AdminID)
	response.Success(c, result)
}
