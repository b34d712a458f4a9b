package service

import "errors"

// 服务层统一错误定义。处理器据此映射响应码。
var (
	// 兑换码
	ErrCodeInvalidFormat = errors.New("code format invalid")
	ErrCodeNotFound      = errors.New("code not found")
	ErrCodeAlreadyUsed   = errors.New("code already used")
	ErrCodeFetchFailed   = errors.New("code fetch failed")
	ErrCodeUpdateFailed  = errors.New("code update failed")
	ErrCodeImportEmpty   = errors.New("code import produced no rows")

	// 奖品
	ErrGiftNotFound     = errors.New("gift not found")
	ErrGiftTierInvalid  = errors.New("gift tier invalid")
	ErrGiftFetchFailed  = errors.New("gift fetch failed")
	ErrGiftUpdateFailed = errors.New("gift update failed")

	// 用户
	ErrUserNotFound     = errors.New("user not found")
	ErrUserBlocked      = errors.New("user blocked")
	ErrUserFetchFailed  = errors.New("user fetch failed")
	ErrUserCreateFailed = errors.New("user create failed")

	// 设置
	ErrSettingFetchFailed  = errors.New("setting fetch failed")
	ErrSettingUpdateFailed = errors.New("setting update failed")
	ErrSettingInvalid      = errors.New("setting value invalid")

	// 管理员认证
	ErrAdminNotFound      = errors.New("admin not found")
	ErrPasswordIncorrect  = errors.New("password incorrect")
	ErrTokenSignFailed    = errors.New("token sign failed")
	ErrTokenInvalid       = errors.New("token invalid")
	ErrLoginFailed        = errors.New("login failed")
	ErrLogFetchFailed     = errors.New("redemption log fetch failed")
	ErrLogCreateFailed    = errors.New("redemption log create failed")
	ErrIngestParseFailed  = errors.New("ingest payload parse failed")
	ErrIngestModeInvalid  = errors.New("ingest mode invalid")
	ErrIngestTierRequired = errors.New("ingest tier required for winner codes")
)
