package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/leadervibe/internal/db"
	"github.com/leadervibe/internal/logging"
	"github.com/leadervibe/internal/mailer"
	"gorm.io/gorm"
)

// ContactInput 是联系表单提交的字段
type ContactInput struct {
	Name    string `json:"name" validate:"required"`
	Email   string `json:"email" validate:"required,email"`
	Message string `json:"message" validate:"required"`
}

// ContactService 处理联系表单留言
type ContactService struct {
	db         *gorm.DB
	mail       mailer.Sender
	adminEmail string
}

// NewContactService 构造 ContactService
func NewContactService(gdb *gorm.DB, mail mailer.Sender, adminEmail string) *ContactService {
	return &ContactService{db: gdb, mail: mail, adminEmail: strings.TrimSpace(adminEmail)}
}

// Create 保存留言并尽力发送通知邮件，邮件失败不影响结果
func (s *ContactService) Create(ctx context.Context, input ContactInput) (*db.Contact, error) {
	input = ContactInput{
		Name:    plainText(input.Name),
		Email:   strings.ToLower(strings.TrimSpace(input.Email)),
		Message: plainText(input.Message),
	}
	if err := validate.Struct(input); err != nil {
		return nil, validationError(describeValidation(err))
	}

	contact := db.Contact{Name: input.Name, Email: input.Email, Message: input.Message}
	if err := s.db.WithContext(ctx).Create(&contact).Error; err != nil {
		return nil, fmt.Errorf("create contact: %w", err)
	}

	if s.adminEmail != "" {
		msg, err := mailer.ContactAdmin(s.adminEmail, contact)
		notify(ctx, s.mail, msg, err)
	} else {
		logging.Ctx(ctx).Warn().Msg("admin email is not configured, skipping contact notification")
	}
	msg, err := mailer.ContactClient(contact)
	notify(ctx, s.mail, msg, err)

	return &contact, nil
}

// List 按创建时间倒序返回留言
func (s *ContactService) List(ctx context.Context) ([]db.Contact, error) {
	var contacts []db.Contact
	if err := s.db.WithContext(ctx).Order("created_at desc").Order("id desc").Find(&contacts).Error; err != nil {
		return nil, fmt.Errorf("list contacts: %w", err)
	}
	return contacts, nil
}

// Get 根据主键获取留言
func (s *ContactService) Get(ctx context.Context, id uint) (*db.Contact, error) {
	var contact db.Contact
	if err := s.db.WithContext(ctx).First(&contact, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrContactNotFound
		}
		return nil, fmt.Errorf("get contact: %w", err)
	}
	return &contact, nil
}

// Delete 删除留言
func (s *ContactService) Delete(ctx context.Context, id uint) error {
	res := s.db.WithContext(ctx).Delete(&db.Contact{}, id)
	if res.Error != nil {
		return fmt.Errorf("delete contact: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return ErrContactNotFound
	}
	return nil
}
