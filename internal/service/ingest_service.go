package service

import (
	"encoding/csv"
	"fmt"
	"io"
	"regexp"
	"strings"
	"time"

	"github.com/promokod-next/internal/constants"
	"github.com/promokod-next/internal/logger"
	"github.com/promokod-next/internal/models"
	"github.com/promokod-next/internal/repository"
)

const (
	defaultIngestBatchSize = 5000
	minCandidateLength     = 6
	minStrippedLength      = 8
	giftPlaceholderFormat  = "/files/gift-images/placeholder_%s.jpg"
)

// 表头单元格特征：kod / code / id / № / raqam / #
var headerCellPattern = regexp.MustCompile(`(?i)^(kod|code|id|№|raqam|#)`)

// IngestService 批量导入管线。
// 上传侧只负责把表格解析为二维字符串，表格格式本身由外部解析器处理。
type IngestService struct {
	codeRepo  repository.CodeRepository
	giftRepo  repository.GiftRepository
	batchSize int
}

// NewIngestService 创建批量导入服务
func NewIngestService(codeRepo repository.CodeRepository, giftRepo repository.GiftRepository, batchSize int) *IngestService {
	if batchSize <= 0 {
		batchSize = defaultIngestBatchSize
	}
	return &IngestService{
		codeRepo:  codeRepo,
		giftRepo:  giftRepo,
		batchSize: batchSize,
	}
}

// IngestInput 批量导入输入。模式、档位与月份标签均随请求显式给出。
type IngestInput struct {
	Rows    [][]string
	Mode    string
	Tier    string
	Month   string
	Year    string
	Source  string
	AdminID uint
}

// BatchOutcome 单个写入批次结果
type BatchOutcome struct {
	Index int    `json:"index"`
	Count int    `json:"count"`
	Error string `json:"error,omitempty"`
}

// IngestResult 导入结果。
// Success 为去重后的新值数量，Inserted 为实际落库数量，
// 两者在存在失败批次时不相等。
type IngestResult struct {
	Success    int            `json:"success"`
	Inserted   int            `json:"inserted"`
	Duplicates int            `json:"duplicates"`
	TotalAfter int64          `json:"total_after"`
	Batches    []BatchOutcome `json:"batches"`
}

// Ingest 执行一次批量导入。
// 提取候选值 → 上传内去重 → 过滤库内已有值 → 按固定批次落库，
// 序号自当前最大值顺延。批次失败不打断后续批次，逐批回报。
func (s *IngestService) Ingest(input IngestInput) (*IngestResult, error) {
	if !constants.IsValidCodeKind(input.Mode) {
		return nil, ErrIngestModeInvalid
	}
	if input.Mode == constants.CodeKindWinner {
		if input.Tier == "" {
			return nil, ErrIngestTierRequired
		}
		if !constants.IsValidGiftTier(input.Tier) {
			return nil, ErrGiftTierInvalid
		}
	}
	if input.Source == "" {
		input.Source = constants.IngestSourceManual
	}

	candidates, duplicatesInUpload := extractCandidates(input.Rows)
	if len(candidates) == 0 {
		return nil, ErrCodeImportEmpty
	}

	existing, err := s.codeRepo.ListValues(input.Mode)
	if err != nil {
		return nil, ErrCodeFetchFailed
	}
	known := make(map[string]struct{}, len(existing))
	for _, value := range existing {
		known[strings.ReplaceAll(value, "-", "")] = struct{}{}
	}

	fresh := make([]string, 0, len(candidates))
	duplicates := duplicatesInUpload
	for _, stripped := range candidates {
		if _, ok := known[strippedKey(stripped)]; ok {
			duplicates++
			continue
		}
		fresh = append(fresh, stripped)
	}
	if len(fresh) == 0 {
		return &IngestResult{
			Duplicates: duplicates,
			TotalAfter: s.countAfter(input.Mode),
		}, nil
	}

	var giftID *uint
	var tier *string
	if input.Mode == constants.CodeKindWinner {
		gift, err := s.ensureGift(input.Tier)
		if err != nil {
			return nil, err
		}
		giftID = &gift.ID
		t := input.Tier
		tier = &t
	}

	maxSeq, err := s.codeRepo.MaxSeqID(input.Mode)
	if err != nil {
		return nil, ErrCodeFetchFailed
	}

	now := time.Now()
	result := &IngestResult{
		Success:    len(fresh),
		Duplicates: duplicates,
	}
	nextSeq := maxSeq + 1
	for batchIdx, start := 0, 0; start < len(fresh); batchIdx, start = batchIdx+1, start+s.batchSize {
		end := start + s.batchSize
		if end > len(fresh) {
			end = len(fresh)
		}
		chunk := fresh[start:end]
		codes := make([]models.Code, 0, len(chunk))
		for i, stripped := range chunk {
			codes = append(codes, models.Code{
				Kind:      input.Mode,
				SeqID:     nextSeq + i,
				Value:     ingestStorageForm(stripped),
				Tier:      tier,
				GiftID:    giftID,
				Month:     input.Month,
				Year:      input.Year,
				CreatedAt: now,
				UpdatedAt: now,
			})
		}
		outcome := BatchOutcome{Index: batchIdx, Count: len(codes)}
		if err := s.codeRepo.BulkInsert(codes); err != nil {
			outcome.Error = err.Error()
			logger.Warnw("ingest_batch_failed",
				"mode", input.Mode, "source", input.Source,
				"batch", batchIdx, "size", len(codes),
				"admin_id", input.AdminID, "error", err)
		} else {
			result.Inserted += len(codes)
		}
		result.Batches = append(result.Batches, outcome)
		nextSeq += len(chunk)
	}

	result.TotalAfter = s.countAfter(input.Mode)
	return result, nil
}

// extractCandidates 扁平化全部单元格并按规则筛选，返回去重后的剥离形式。
// 丢弃短于 6 个字符的值、表头样式的值，以及剥离后不足 8 个字符的值。
func extractCandidates(rows [][]string) ([]string, int) {
	seen := make(map[string]struct{})
	candidates := make([]string, 0, len(rows))
	duplicates := 0
	for _, row := range rows {
		for _, cell := range row {
			value := strings.TrimSpace(strings.TrimPrefix(cell, "\uFEFF"))
			if len([]rune(value)) < minCandidateLength {
				continue
			}
			if headerCellPattern.MatchString(value) {
				continue
			}
			stripped := stripToAlnum(value)
			if len(stripped) < minStrippedLength {
				continue
			}
			key := strippedKey(stripped)
			if _, ok := seen[key]; ok {
				duplicates++
				continue
			}
			seen[key] = struct{}{}
			candidates = append(candidates, stripped)
		}
	}
	return candidates, duplicates
}

// stripToAlnum 转大写并剔除 [A-Z0-9] 以外的字符
func stripToAlnum(value string) string {
	upper := strings.ToUpper(value)
	var b strings.Builder
	for _, r := range upper {
		if (r >= 'A' && r <= 'Z') || (r >= '0' && r <= '9') {
			b.WriteRune(r)
		}
	}
	return b.String()
}

// strippedKey 去重键：入库形式对应的前 10 个有效字符
func strippedKey(stripped string) string {
	if len(stripped) > 10 {
		return stripped[:10]
	}
	return stripped
}

// ingestStorageForm 生成入库形式：截取前 10 个有效字符并在第 6 位后补连字符
func ingestStorageForm(stripped string) string {
	if len(stripped) > 10 {
		stripped = stripped[:10]
	}
	if len(stripped) <= 6 {
		return stripped
	}
	return stripped[:6] + "-" + stripped[6:]
}

// ensureGift 确保档位奖品存在，缺失时用占位图与零计数创建
func (s *IngestService) ensureGift(tier string) (*models.Gift, error) {
	gift, err := s.giftRepo.GetByTier(tier)
	if err != nil {
		return nil, ErrGiftFetchFailed
	}
	if gift != nil {
		return gift, nil
	}
	now := time.Now()
	gift = &models.Gift{
		Name:      tier,
		Tier:      tier,
		Image:     fmt.Sprintf(giftPlaceholderFormat, tier),
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := s.giftRepo.Create(gift); err != nil {
		return nil, ErrGiftUpdateFailed
	}
	return gift, nil
}

func (s *IngestService) countAfter(kind string) int64 {
	total, err := s.codeRepo.CountByKind(kind)
	if err != nil {
		logger.Warnw("ingest_count_after_failed", "kind", kind, "error", err)
		return 0
	}
	return total
}

// ParseDelimited 解析 CSV/TXT 上传为二维表。
// 逐行读取，容忍不规整的列数；空行跳过。
func ParseDelimited(reader io.Reader) ([][]string, error) {
	csvReader := csv.NewReader(reader)
	csvReader.TrimLeadingSpace = true
	csvReader.FieldsPerRecord = -1
	var rows [][]string
	for {
		record, err := csvReader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrIngestParseFailed, err)
		}
		if len(record) == 0 {
			continue
		}
		rows = append(rows, record)
	}
	return rows, nil
}
