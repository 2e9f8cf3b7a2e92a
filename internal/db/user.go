package db

import (
	"errors"
	"strings"
	"time"

	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

const (
	RoleUser  = "user"
	RoleAdmin = "admin"
)

// User 定义了后台账号模型
// PasswordResetToken 仅保存重置令牌的 sha256 摘要
type User struct {
	ID                   uint       `gorm:"primaryKey" json:"id"`
	Name                 string     `gorm:"not null" json:"name"`
	Email                string     `gorm:"size:255;uniqueIndex;not null" json:"email"`
	Password             string     `gorm:"not null" json:"-"`
	Role                 string     `gorm:"size:20;not null;default:user" json:"role"`
	Active               bool       `gorm:"not null;default:true" json:"active"`
	PasswordChangedAt    *time.Time `json:"-"`
	PasswordResetToken   string     `gorm:"size:64;index" json:"-"`
	PasswordResetExpires *time.Time `json:"-"`
	CreatedAt            time.Time  `json:"createdAt"`
	UpdatedAt            time.Time  `json:"updatedAt"`
}

// EnsureAdmin 存在性检查：若邮箱与密码均非空且不存在对应账号，则创建一个 bcrypt 哈希的管理员。
// 返回值表示是否新建了账号。
func EnsureAdmin(conn *gorm.DB, name, email, password string) (bool, error) {
	trimmedEmail := strings.ToLower(strings.TrimSpace(email))
	trimmedPassword := strings.TrimSpace(password)
	if trimmedEmail == "" || trimmedPassword == "" {
		return false, nil
	}

	if conn == nil {
		return false, errors.New("database not initialized")
	}

	var existing User
	if err := conn.Where("email = ?", trimmedEmail).First(&existing).Error; err != nil {
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			return false, err
		}

		hashed, err := bcrypt.GenerateFromPassword([]byte(trimmedPassword), bcrypt.DefaultCost)
		if err != nil {
			return false, err
		}

		trimmedName := strings.TrimSpace(name)
		if trimmedName == "" {
			trimmedName = "Admin"
		}

		admin := User{
			Name:     trimmedName,
			Email:    trimmedEmail,
			Password: string(hashed),
			Role:     RoleAdmin,
			Active:   true,
		}
		if err := conn.Create(&admin).Error; err != nil {
			return false, err
		}
		return true, nil
	}

	return false, nil
}
