package user

import (
	"time"

	"github.com/SlpAus/jeopardy-stats-backend/pkg/playtype"
)

// User 定义了账号在数据库中的持久化模型。
type User struct {
	ID        uint `gorm:"primarykey"`
	CreatedAt time.Time
	UpdatedAt time.Time

	// Email 是登录标识，存储前统一转为小写
	Email string `gorm:"uniqueIndex;not null"`

	// PasswordDigest 是bcrypt哈希后的密码
	PasswordDigest string `gorm:"not null"`

	// PlayTypes 是用户启用的比赛类型集合，逗号分隔存储
	PlayTypes string

	// 密码重置令牌及其签发时间；nil表示当前没有待处理的重置
	ResetToken  string     `gorm:"index"`
	ResetSentAt *time.Time
}

// EnabledPlayTypes 返回用户启用的比赛类型集合。
// 从未设置过的用户默认只统计常规赛。
func (u *User) EnabledPlayTypes() []string {
	types := playtype.Split(u.PlayTypes)
	if len(types) == 0 {
		return []string{playtype.Regular}
	}
	return types
}
