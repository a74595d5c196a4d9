package service

import (
	"errors"
	"regexp"
	"time"

	"github.com/Inmylir/realtime-chat/internal/auth"
	"github.com/Inmylir/realtime-chat/internal/config"
	"github.com/Inmylir/realtime-chat/internal/models"

	"gorm.io/gorm"
)

// 用户名 3-32 位，只允许字母数字下划线和连字符；口令 8-128 位。
var usernameRE = regexp.MustCompile(`^[A-Za-z0-9_-]{3,32}$`)

const (
	minPasswordLen = 8
	maxPasswordLen = 128
)

// UserService 封装注册与登录。
type UserService struct {
	db  *gorm.DB
	cfg config.Config
}

func NewUserService(db *gorm.DB, cfg config.Config) *UserService {
	return &UserService{db: db, cfg: cfg}
}

// ValidateRegistration 检查注册入参格式，放在所有存储访问之前。
func ValidateRegistration(username, password string) error {
	if !usernameRE.MatchString(username) {
		return ErrInvalidInput
	}
	if len(password) < minPasswordLen || len(password) > maxPasswordLen {
		return ErrInvalidInput
	}
	return nil
}

// Register 创建新用户。先查后插，users.username 的唯一索引兜底并发竞争。
func (s *UserService) Register(username, password string) (*models.User, error) {
	if err := ValidateRegistration(username, password); err != nil {
		return nil, err
	}
	var count int64
	if err := s.db.Model(&models.User{}).Where("username = ?", username).Count(&count).Error; err != nil {
		return nil, err
	}
	if count > 0 {
		return nil, ErrUsernameTaken
	}
	salt, hash, err := auth.HashPassword(password)
	if err != nil {
		return nil, err
	}
	user := models.User{Username: username, PasswordSalt: salt, PasswordHash: hash}
	if err := s.db.Create(&user).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, ErrUsernameTaken
		}
		return nil, err
	}
	return &user, nil
}

// LoginResult 登录成功后返回的令牌与身份。
type LoginResult struct {
	Token string
	User  models.User
}

// Login 校验用户名口令并签发会话令牌。
// 用户不存在和口令不符返回同一个错误，响应侧看不出区别。
func (s *UserService) Login(username, password string) (*LoginResult, error) {
	var user models.User
	if err := s.db.Where("username = ?", username).First(&user).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrInvalidCredentials
		}
		return nil, err
	}
	if !auth.VerifyPassword(password, user.PasswordSalt, user.PasswordHash) {
		return nil, ErrInvalidCredentials
	}
	ttl := time.Duration(s.cfg.SessionTTLDays) * 24 * time.Hour
	token, err := auth.SignToken(auth.Identity{ID: user.ID, Username: user.Username}, s.cfg.JWTSecret, ttl)
	if err != nil {
		return nil, err
	}
	return &LoginResult{Token: token, User: user}, nil
}
