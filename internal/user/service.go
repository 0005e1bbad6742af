package user

import (
	"errors"
	"fmt"
	"regexp"
	"strings"
	"time"

	"github.com/SlpAus/jeopardy-stats-backend/internal/platform/config"
	"github.com/SlpAus/jeopardy-stats-backend/internal/platform/database"
	"github.com/SlpAus/jeopardy-stats-backend/pkg/playtype"
	"github.com/SlpAus/jeopardy-stats-backend/pkg/token"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

const (
	// minPasswordLength 是注册和重置密码时的最小长度
	minPasswordLength = 8
	// resetTokenTTL 是密码重置令牌的有效期
	resetTokenTTL = 2 * time.Hour
)

// emailPattern 是注册邮箱的格式检查
var emailPattern = regexp.MustCompile(`\A[\w+\-.]+@[a-z\d\-.]+\.[a-z]+\z`)

// ErrInvalidCredentials 表示邮箱或密码不正确
var ErrInvalidCredentials = errors.New("invalid credentials")

// ErrInvalidResetToken 表示重置令牌不存在或已过期
var ErrInvalidResetToken = errors.New("invalid reset token")

// ValidationError 将字段名映射到错误信息列表并包装为error。
type ValidationError struct {
	Fields map[string][]string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("validation failed on %d fields", len(e.Fields))
}

func newValidationError() *ValidationError {
	return &ValidationError{Fields: make(map[string][]string)}
}

func (e *ValidationError) add(field, message string) {
	e.Fields[field] = append(e.Fields[field], message)
}

func (e *ValidationError) orNil() error {
	if len(e.Fields) == 0 {
		return nil
	}
	return e
}

// validatePassword 检查密码及其确认，错误写入verr。
func validatePassword(verr *ValidationError, password, confirmation string) {
	if len(password) < minPasswordLength {
		verr.add("password", fmt.Sprintf("is too short (minimum is %d characters)", minPasswordLength))
	}
	if password != confirmation {
		verr.add("password_confirmation", "doesn't match password")
	}
}

// Register 创建一个新账号。
// 邮箱规整为小写；密码以bcrypt哈希存储。
func Register(email, password, confirmation string) (*User, error) {
	email = strings.ToLower(strings.TrimSpace(email))

	verr := newValidationError()
	if email == "" {
		verr.add("email", "can't be blank")
	} else if !emailPattern.MatchString(email) {
		verr.add("email", "is invalid")
	}
	validatePassword(verr, password, confirmation)

	if email != "" {
		var count int64
		if err := database.DB.Model(&User{}).Where("email = ?", email).Count(&count).Error; err != nil {
			return nil, err
		}
		if count > 0 {
			verr.add("email", "has already been taken")
		}
	}

	if err := verr.orNil(); err != nil {
		return nil, err
	}

	digest, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("无法生成密码哈希: %w", err)
	}

	newUser := &User{
		Email:          email,
		PasswordDigest: string(digest),
		PlayTypes:      playtype.Regular,
	}
	if err := database.DB.Create(newUser).Error; err != nil {
		return nil, err
	}
	return newUser, nil
}

// Authenticate 校验邮箱和密码，成功时返回账号。
func Authenticate(email, password string) (*User, error) {
	email = strings.ToLower(strings.TrimSpace(email))

	var found User
	err := database.DB.Where("email = ?", email).First(&found).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrInvalidCredentials
	}
	if err != nil {
		return nil, err
	}

	if bcrypt.CompareHashAndPassword([]byte(found.PasswordDigest), []byte(password)) != nil {
		return nil, ErrInvalidCredentials
	}
	return &found, nil
}

// IssueSessionToken 为账号签发会话令牌，有效期来自配置。
func IssueSessionToken(u *User) (string, error) {
	ttl := time.Duration(config.Cfg.Auth.SessionTTLHours) * time.Hour
	return token.GenerateSessionToken(u.ID, ttl)
}

// UpdatePlayTypes 更新用户启用的比赛类型集合。
// 所有标签都必须是已知的比赛类型。
func UpdatePlayTypes(userID uint, tags []string) error {
	verr := newValidationError()
	for _, tag := range tags {
		if !playtype.IsValid(tag) {
			verr.add("play_types", fmt.Sprintf("%q is not a known play type", tag))
		}
	}
	if err := verr.orNil(); err != nil {
		return err
	}

	return database.DB.Model(&User{}).Where("id = ?", userID).
		Update("play_types", playtype.Join(tags)).Error
}

// GetByID 按主键加载账号。
func GetByID(userID uint) (*User, error) {
	var found User
	if err := database.DB.First(&found, userID).Error; err != nil {
		return nil, err
	}
	return &found, nil
}

// --- 密码重置 ---
// 邮件投递由外部协作方完成，这里只负责令牌的签发与兑现。

// IssueResetToken 为指定邮箱签发一个密码重置令牌。
// 邮箱不存在时返回空串而不报错，避免探测账号是否存在。
func IssueResetToken(email string) (string, error) {
	email = strings.ToLower(strings.TrimSpace(email))

	var found User
	err := database.DB.Where("email = ?", email).First(&found).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return "", nil
	}
	if err != nil {
		return "", err
	}

	resetToken := uuid.NewString()
	now := time.Now()
	err = database.DB.Model(&found).Updates(map[string]interface{}{
		"reset_token":   resetToken,
		"reset_sent_at": now,
	}).Error
	if err != nil {
		return "", err
	}
	return resetToken, nil
}

// ConsumeResetToken 用有效的重置令牌设置新密码，并使令牌失效。
func ConsumeResetToken(resetToken, password, confirmation string) error {
	if resetToken == "" {
		return ErrInvalidResetToken
	}

	var found User
	err := database.DB.Where("reset_token = ?", resetToken).First(&found).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return ErrInvalidResetToken
	}
	if err != nil {
		return err
	}
	if found.ResetSentAt == nil || time.Since(*found.ResetSentAt) > resetTokenTTL {
		return ErrInvalidResetToken
	}

	verr := newValidationError()
	validatePassword(verr, password, confirmation)
	if err := verr.orNil(); err != nil {
		return err
	}

	digest, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return fmt.Errorf("无法生成密码哈希: %w", err)
	}

	return database.DB.Model(&found).Updates(map[string]interface{}{
		"password_digest": string(digest),
		"reset_token":     "",
		"reset_sent_at":   nil,
	}).Error
}

// --- 示例数据模式 ---
// 示例模式把一个真实账号的统计数据开放给未登录的访客。
// 账号在启动阶段解析一次，请求期不再查询配置。

var sampleUserID uint

// ResolveSampleUser 根据配置解析示例账号并缓存其ID。
func ResolveSampleUser() error {
	if !config.Cfg.Sample.Enabled {
		return nil
	}

	email := strings.ToLower(strings.TrimSpace(config.Cfg.Sample.Email))
	var found User
	err := database.DB.Where("email = ?", email).First(&found).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		// 配置了示例模式但账号不存在时回退到最早注册的账号
		err = database.DB.Order("id asc").First(&found).Error
	}
	if err != nil {
		return fmt.Errorf("无法解析示例账号: %w", err)
	}

	sampleUserID = found.ID
	fmt.Printf("示例数据模式已启用，使用账号 #%d。\n", sampleUserID)
	return nil
}

// SampleUserID 返回示例账号的ID，未启用时为0。
func SampleUserID() uint {
	return sampleUserID
}
