package constants

// 兑换码类别常量（普通码 / 中奖码，逻辑上为两个独立码库）
const (
	CodeKindOrdinary = "ordinary"
	CodeKindWinner   = "winner"
)

// IsValidCodeKind 判断码类别是否合法
func IsValidCodeKind(kind string) bool {
	return kind == CodeKindOrdinary || kind == CodeKindWinner
}

// 奖品档位常量
const (
	GiftTierPremium  = "premium"
	GiftTierStandard = "standard"
	GiftTierEconomy  = "economy"
	GiftTierSymbolic = "symbolic"
)

// GiftTiers 全部合法档位（按价值从高到低）
var GiftTiers = []string{
	GiftTierPremium,
	GiftTierStandard,
	GiftTierEconomy,
	GiftTierSymbolic,
}

// IsValidGiftTier 判断档位是否合法
func IsValidGiftTier(tier string) bool {
	for _, t := range GiftTiers {
		if t == tier {
			return true
		}
	}
	return false
}

// 兑换结果常量
const (
	RedeemOutcomeLimitReached  = "limit_reached"
	RedeemOutcomeInvalidFormat = "invalid_format"
	RedeemOutcomeFake          = "fake"
	RedeemOutcomeAlreadyUsed   = "already_used"
	RedeemOutcomeRedeemed      = "redeemed"
	RedeemOutcomeWonGift       = "won_gift"
)

// 导入模式常量（普通码库 / 中奖码库）
const (
	IngestModeOrdinary = CodeKindOrdinary
	IngestModeWinner   = CodeKindWinner
)

// 导入来源常量
const (
	IngestSourceCSV    = "csv"
	IngestSourceManual = "manual"
	IngestSourceSheet  = "sheet"
)

// IsValidIngestSource 判断导入来源是否合法
func IsValidIngestSource(source string) bool {
	return source == IngestSourceCSV || source == IngestSourceManual || source == IngestSourceSheet
}

// 用户状态常量
const (
	UserStatusActive  = "active"
	UserStatusBlocked = "blocked"
)

// 用户角色常量
const (
	UserRoleUser  = "user"
	UserRoleAdmin = "admin"
)

// 系统设置键常量
const (
	SettingKeyRedemptionConfig = "redemption_config"

	SettingFieldCodeLimitPerUser = "code_limit_per_user"
	SettingFieldLimitStatus      = "status"
	SettingFieldLimitValue       = "value"
)

// 异步任务类型常量
const (
	TaskRedemptionLog = "redemption:log"
)

// 队列名称常量
const (
	QueueDefault = "default"
)
