package service

import (
	"strings"
	"time"

	"github.com/promokod-next/internal/constants"
	"github.com/promokod-next/internal/models"
	"github.com/promokod-next/internal/repository"
)

// UserService 聊天用户注册表。
// 注册流程由外部聊天端承担，这里只维护兑换所需的最小档案。
type UserService struct {
	userRepo repository.UserRepository
}

// NewUserService 创建用户服务
func NewUserService(userRepo repository.UserRepository) *UserService {
	return &UserService{userRepo: userRepo}
}

// ResolveInput 用户解析输入
type ResolveInput struct {
	TgID      int64
	FirstName string
	LastName  string
	Language  string
}

// ResolveByTgID 按 Telegram ID 解析用户，缺失时建立最小档案
func (s *UserService) ResolveByTgID(input ResolveInput) (*models.User, error) {
	if input.TgID == 0 {
		return nil, ErrUserNotFound
	}
	user, err := s.userRepo.GetByTgID(input.TgID)
	if err != nil {
		return nil, ErrUserFetchFailed
	}
	if user != nil {
		if user.Status == constants.UserStatusBlocked {
			return nil, ErrUserBlocked
		}
		return user, nil
	}

	now := time.Now()
	user = &models.User{
		TgID:      input.TgID,
		FirstName: strings.TrimSpace(input.FirstName),
		LastName:  strings.TrimSpace(input.LastName),
		Status:    constants.UserStatusActive,
		Role:      constants.UserRoleUser,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if lang := strings.TrimSpace(input.Language); lang != "" {
		user.Language = lang
	}
	if err := s.userRepo.Create(user); err != nil {
		return nil, ErrUserCreateFailed
	}
	return user, nil
}

// List 查询用户列表
func (s *UserService) List(filter repository.UserListFilter) ([]models.User, int64, error) {
	users, total, err := s.userRepo.List(filter)
	if err != nil {
		return nil, 0, ErrUserFetchFailed
	}
	return users, total, nil
}

// GetByID 按主键获取用户
func (s *UserService) GetByID(id uint) (*models.User, error) {
	user, err := s.userRepo.GetByID(id)
	if err != nil {
		return nil, ErrUserFetchFailed
	}
	if user == nil {
		return nil, ErrUserNotFound
	}
	return user, nil
}
