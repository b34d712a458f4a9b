package service

import (
	"regexp"
	"strings"
)

// CanonicalCode 规范化结果。
// StorageForm 为入库形式（AAAAAA-9999），MatchForms 为查询时需要
// 同时比对的全部等价文本形式，兼容旧归一化规则写入的历史行。
type CanonicalCode struct {
	StorageForm string
	MatchForms  []string
}

// 6 位大写字母 + 4 位数字
var strippedCodePattern = regexp.MustCompile(`^[A-Z]{6}[0-9]{4}$`)

// Canonicalize 将原始文本规范化为兑换码。
// 去除空白并转大写，剔除 [A-Z0-9] 以外的字符后校验格式；
// 超长时仅取前 10 个有效字符。格式不符返回 ErrCodeInvalidFormat。
func Canonicalize(raw string) (CanonicalCode, error) {
	trimmed := strings.ToUpper(strings.TrimSpace(raw))
	if trimmed == "" {
		return CanonicalCode{}, ErrCodeInvalidFormat
	}

	var b strings.Builder
	for _, r := range trimmed {
		if (r >= 'A' && r <= 'Z') || (r >= '0' && r <= '9') {
			b.WriteRune(r)
		}
	}
	stripped := b.String()
	if len(stripped) > 10 {
		stripped = stripped[:10]
	}
	if !strippedCodePattern.MatchString(stripped) {
		return CanonicalCode{}, ErrCodeInvalidFormat
	}

	storage := stripped[:6] + "-" + stripped[6:]
	forms := dedupeStrings([]string{
		trimmed,
		storage,
		stripped,
		strings.ReplaceAll(trimmed, "-", ""),
	})
	return CanonicalCode{
		StorageForm: storage,
		MatchForms:  forms,
	}, nil
}

// dedupeStrings 保序去重
func dedupeStrings(values []string) []string {
	seen := make(map[string]struct{}, len(values))
	out := make([]string, 0, len(values))
	for _, v := range values {
		if v == "" {
			continue
		}
		if _, ok := seen[v]; ok {
			continue
		}
		seen[v] = struct{}{}
		out = append(out, v)
	}
	return out
}
