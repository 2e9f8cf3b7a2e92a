package service

import (
	"context"
	"crypto/rand"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/leadervibe/internal/db"
	"github.com/leadervibe/internal/logging"
	"github.com/leadervibe/internal/mailer"
	"github.com/leadervibe/internal/payload"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

const (
	minPasswordLength = 8
	resetTokenTTL     = 10 * time.Minute
)

// UserService 负责后台账号、登录与密码重置
type UserService struct {
	db     *gorm.DB
	tokens *TokenManager
	mail   mailer.Sender
	now    func() time.Time
}

// NewUserService 构造 UserService
func NewUserService(gdb *gorm.DB, tokens *TokenManager, mail mailer.Sender) *UserService {
	return &UserService{db: gdb, tokens: tokens, mail: mail, now: time.Now}
}

// Session 是登录或重置密码成功后返回的结果
type Session struct {
	Token     string   `json:"token"`
	ExpiresAt int64    `json:"expiresAt"`
	User      *db.User `json:"user"`
}

// Login 校验邮箱与密码，成功后签发 token
func (s *UserService) Login(ctx context.Context, email, password string) (*Session, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	if email == "" || password == "" {
		return nil, ErrMissingCredentials
	}

	var user db.User
	err := s.db.WithContext(ctx).Where("email = ? AND active = ?", email, true).First(&user).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrInvalidCredentials
		}
		return nil, fmt.Errorf("find user: %w", err)
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(password)); err != nil {
		return nil, ErrInvalidCredentials
	}

	logging.Ctx(ctx).Info().Uint("user_id", user.ID).Msg("user logged in")
	return s.issue(&user)
}

// ForgotPassword 生成一次性重置令牌并发送邮件，库中只保存令牌摘要
// 邮件发送失败时令牌会被清除
func (s *UserService) ForgotPassword(ctx context.Context, email, resetBaseURL string) error {
	email = strings.ToLower(strings.TrimSpace(email))
	if email == "" {
		return validationError("Please provide your email address")
	}

	var user db.User
	if err := s.db.WithContext(ctx).Where("email = ? AND active = ?", email, true).First(&user).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrUserEmailNotFound
		}
		return fmt.Errorf("find user: %w", err)
	}

	token, err := randomToken()
	if err != nil {
		return fmt.Errorf("generate reset token: %w", err)
	}
	expires := s.now().Add(resetTokenTTL)
	if err := s.db.WithContext(ctx).Model(&user).Updates(map[string]any{
		"password_reset_token":   hashToken(token),
		"password_reset_expires": expires,
	}).Error; err != nil {
		return fmt.Errorf("store reset token: %w", err)
	}

	resetURL := strings.TrimRight(resetBaseURL, "/") + "/" + token
	msg, err := mailer.PasswordReset(user.Email, user.Name, resetURL)
	if err == nil && s.mail != nil {
		err = s.mail.Send(ctx, msg)
	}
	if err != nil {
		if clearErr := s.clearResetToken(ctx, user.ID); clearErr != nil {
			logging.Ctx(ctx).Error().Err(clearErr).Uint("user_id", user.ID).Msg("failed to clear reset token")
		}
		return upstreamError("There was an error sending the email. Try again later!", err)
	}
	return nil
}

// ResetPassword 使用未过期的重置令牌设置新密码，成功后直接登录
func (s *UserService) ResetPassword(ctx context.Context, token, password string) (*Session, error) {
	token = strings.TrimSpace(token)
	if token == "" {
		return nil, ErrResetTokenInvalid
	}

	var user db.User
	if err := s.db.WithContext(ctx).Where("password_reset_token = ?", hashToken(token)).First(&user).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrResetTokenInvalid
		}
		return nil, fmt.Errorf("find reset token: %w", err)
	}
	if user.PasswordResetExpires == nil || !user.PasswordResetExpires.After(s.now()) {
		return nil, ErrResetTokenInvalid
	}

	hashed, err := hashPassword(password)
	if err != nil {
		return nil, err
	}
	// 提前一秒，保证随后签发的 token 不早于修改时间
	changedAt := s.now().Add(-time.Second)
	if err := s.db.WithContext(ctx).Model(&user).Updates(map[string]any{
		"password":               hashed,
		"password_changed_at":    changedAt,
		"password_reset_token":   "",
		"password_reset_expires": nil,
	}).Error; err != nil {
		return nil, fmt.Errorf("reset password: %w", err)
	}
	user.PasswordChangedAt = &changedAt
	return s.issue(&user)
}

// Authenticate 解析 bearer token 并返回对应的有效账号
func (s *UserService) Authenticate(ctx context.Context, token string) (*db.User, error) {
	userID, issuedAt, err := s.tokens.Parse(token)
	if err != nil {
		return nil, ErrTokenInvalid
	}
	user, err := s.Active(ctx, userID)
	if err != nil {
		return nil, err
	}
	if user.PasswordChangedAt != nil && issuedAt.Before(user.PasswordChangedAt.Truncate(time.Second)) {
		return nil, ErrTokenInvalid
	}
	return user, nil
}

// Active 返回仍处于启用状态的账号，会话校验也走这里
func (s *UserService) Active(ctx context.Context, id uint) (*db.User, error) {
	user, err := s.Get(ctx, id)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return nil, ErrUserInactive
		}
		return nil, err
	}
	if !user.Active {
		return nil, ErrUserInactive
	}
	return user, nil
}

// List 返回全部账号
func (s *UserService) List(ctx context.Context) ([]db.User, error) {
	var users []db.User
	if err := s.db.WithContext(ctx).Order("id asc").Find(&users).Error; err != nil {
		return nil, fmt.Errorf("list users: %w", err)
	}
	return users, nil
}

// Get 根据主键获取账号
func (s *UserService) Get(ctx context.Context, id uint) (*db.User, error) {
	var user db.User
	if err := s.db.WithContext(ctx).First(&user, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("get user: %w", err)
	}
	return &user, nil
}

// Update 管理员修改账号资料，可改 name/email/role/active，不允许改密码
func (s *UserService) Update(ctx context.Context, id uint, fields payload.Fields) (*db.User, error) {
	return s.update(ctx, id, fields, true)
}

// UpdateMe 当前账号修改自己的 name/email
func (s *UserService) UpdateMe(ctx context.Context, id uint, fields payload.Fields) (*db.User, error) {
	return s.update(ctx, id, fields, false)
}

// DeactivateMe 停用当前账号，数据保留
func (s *UserService) DeactivateMe(ctx context.Context, id uint) error {
	res := s.db.WithContext(ctx).Model(&db.User{}).Where("id = ?", id).Update("active", false)
	if res.Error != nil {
		return fmt.Errorf("deactivate user: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return ErrUserNotFound
	}
	return nil
}

// Delete 删除账号
func (s *UserService) Delete(ctx context.Context, id uint) error {
	res := s.db.WithContext(ctx).Delete(&db.User{}, id)
	if res.Error != nil {
		return fmt.Errorf("delete user: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return ErrUserNotFound
	}
	return nil
}

func (s *UserService) update(ctx context.Context, id uint, fields payload.Fields, admin bool) (*db.User, error) {
	if fields.Has("password") || fields.Has("passwordConfirm") {
		return nil, ErrPasswordUpdateDenied
	}

	user, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	updates := map[string]any{}
	if fields.Has("name") {
		name, _ := payload.StringValue(fields.Get("name"))
		if name == "" {
			return nil, validationError("Please tell us your name")
		}
		updates["name"] = name
	}
	if fields.Has("email") {
		email, _ := payload.StringValue(fields.Get("email"))
		email = strings.ToLower(email)
		if err := validate.Var(email, "required,email"); err != nil {
			return nil, validationError("Please provide a valid email")
		}
		if email != user.Email {
			var count int64
			if err := s.db.WithContext(ctx).Model(&db.User{}).Where("email = ? AND id <> ?", email, id).Count(&count).Error; err != nil {
				return nil, fmt.Errorf("check email: %w", err)
			}
			if count > 0 {
				return nil, ErrUserEmailTaken
			}
		}
		updates["email"] = email
	}
	if admin {
		if fields.Has("role") {
			role, _ := payload.StringValue(fields.Get("role"))
			if role != db.RoleUser && role != db.RoleAdmin {
				return nil, validationError("Role must be user or admin")
			}
			updates["role"] = role
		}
		if fields.Has("active") {
			active, ok := fields.Get("active").(bool)
			if !ok {
				return nil, validationError("active must be a boolean")
			}
			updates["active"] = active
		}
	}

	if len(updates) == 0 {
		return user, nil
	}
	if err := s.db.WithContext(ctx).Model(user).Updates(updates).Error; err != nil {
		return nil, fmt.Errorf("update user: %w", err)
	}
	return s.Get(ctx, id)
}

func (s *UserService) issue(user *db.User) (*Session, error) {
	token, expiresAt, err := s.tokens.Issue(user.ID)
	if err != nil {
		return nil, err
	}
	return &Session{Token: token, ExpiresAt: expiresAt.Unix(), User: user}, nil
}

func (s *UserService) clearResetToken(ctx context.Context, id uint) error {
	return s.db.WithContext(ctx).Model(&db.User{}).Where("id = ?", id).Updates(map[string]any{
		"password_reset_token":   "",
		"password_reset_expires": nil,
	}).Error
}

func hashPassword(password string) (string, error) {
	if len(password) < minPasswordLength {
		return "", ErrPasswordTooShort
	}
	hashed, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", fmt.Errorf("hash password: %w", err)
	}
	return string(hashed), nil
}

func randomToken() (string, error) {
	buf := make([]byte, 32)
	if _, err := rand.Read(buf); err != nil {
		return "", err
	}
	return hex.EncodeToString(buf), nil
}

func hashToken(token string) string {
	sum := sha256.Sum256([]byte(token))
	return hex.EncodeToString(sum[:])
}
