package service

import (
	"context"
	"errors"
	"fmt"
	"html"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/leadervibe/internal/db"
	"github.com/leadervibe/internal/logging"
	"github.com/leadervibe/internal/mailer"
	"github.com/microcosm-cc/bluemonday"
	"gorm.io/gorm"
)

var (
	validate    = validator.New(validator.WithRequiredStructEnabled())
	plainPolicy = bluemonday.StrictPolicy()
)

// BookingInput 是公开预约表单提交的字段
type BookingInput struct {
	OrganizationName   string `json:"organizationName" validate:"required"`
	ContactPerson      string `json:"contactPerson" validate:"required"`
	Email              string `json:"email" validate:"required,email"`
	Phone              string `json:"phone" validate:"required"`
	EventName          string `json:"eventName" validate:"required"`
	EventDates         string `json:"eventDates" validate:"required"`
	EventLocation      string `json:"eventLocation" validate:"required"`
	AudienceType       string `json:"audienceType" validate:"required"`
	AudienceSize       string `json:"audienceSize" validate:"required"`
	PreferredSpeaker   string `json:"preferredSpeaker"`
	TopicPreference    string `json:"topicPreference"`
	SessionLength      string `json:"sessionLength" validate:"required"`
	AVSetup            string `json:"avSetup"`
	RecordedOrStreamed string `json:"recordedOrStreamed"`
	HonorariumBudget   string `json:"honorariumBudget"`
	TravelSupport      string `json:"travelSupport"`
	AdditionalNotes    string `json:"additionalNotes"`
}

// BookingService 处理活动预约
type BookingService struct {
	db         *gorm.DB
	mail       mailer.Sender
	adminEmail string
}

// NewBookingService 构造 BookingService，adminEmail 为空时不发送管理员通知
func NewBookingService(gdb *gorm.DB, mail mailer.Sender, adminEmail string) *BookingService {
	return &BookingService{db: gdb, mail: mail, adminEmail: strings.TrimSpace(adminEmail)}
}

// Create 保存预约并尽力发送管理员通知与客户确认邮件
func (s *BookingService) Create(ctx context.Context, input BookingInput) (*db.Booking, error) {
	input = input.cleaned()
	if err := validate.Struct(input); err != nil {
		return nil, validationError(describeValidation(err))
	}

	booking := db.Booking{
		OrganizationName:   input.OrganizationName,
		ContactPerson:      input.ContactPerson,
		Email:              input.Email,
		Phone:              input.Phone,
		EventName:          input.EventName,
		EventDates:         input.EventDates,
		EventLocation:      input.EventLocation,
		AudienceType:       input.AudienceType,
		AudienceSize:       input.AudienceSize,
		PreferredSpeaker:   input.PreferredSpeaker,
		TopicPreference:    input.TopicPreference,
		SessionLength:      input.SessionLength,
		AVSetup:            input.AVSetup,
		RecordedOrStreamed: input.RecordedOrStreamed,
		HonorariumBudget:   input.HonorariumBudget,
		TravelSupport:      input.TravelSupport,
		AdditionalNotes:    input.AdditionalNotes,
		Status:             db.BookingStatusPending,
	}
	if err := s.db.WithContext(ctx).Create(&booking).Error; err != nil {
		return nil, fmt.Errorf("create booking: %w", err)
	}

	if s.adminEmail != "" {
		msg, err := mailer.BookingAdmin(s.adminEmail, booking)
		notify(ctx, s.mail, msg, err)
	} else {
		logging.Ctx(ctx).Warn().Msg("admin email is not configured, skipping booking notification")
	}
	msg, err := mailer.BookingClient(booking)
	notify(ctx, s.mail, msg, err)

	return &booking, nil
}

// List 按创建时间倒序返回预约
func (s *BookingService) List(ctx context.Context) ([]db.Booking, error) {
	var bookings []db.Booking
	if err := s.db.WithContext(ctx).Order("created_at desc").Order("id desc").Find(&bookings).Error; err != nil {
		return nil, fmt.Errorf("list bookings: %w", err)
	}
	return bookings, nil
}

// Get 根据主键获取预约
func (s *BookingService) Get(ctx context.Context, id uint) (*db.Booking, error) {
	var booking db.Booking
	if err := s.db.WithContext(ctx).First(&booking, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrBookingNotFound
		}
		return nil, fmt.Errorf("get booking: %w", err)
	}
	return &booking, nil
}

// UpdateStatus 修改预约状态，仅接受 pending/confirmed/declined
func (s *BookingService) UpdateStatus(ctx context.Context, id uint, status string) (*db.Booking, error) {
	status = strings.TrimSpace(status)
	switch status {
	case db.BookingStatusPending, db.BookingStatusConfirmed, db.BookingStatusDeclined:
	default:
		return nil, ErrBookingStatusInvalid
	}

	booking, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := s.db.WithContext(ctx).Model(booking).Update("status", status).Error; err != nil {
		return nil, fmt.Errorf("update booking status: %w", err)
	}
	booking.Status = status
	return booking, nil
}

// Delete 删除预约
func (s *BookingService) Delete(ctx context.Context, id uint) error {
	res := s.db.WithContext(ctx).Delete(&db.Booking{}, id)
	if res.Error != nil {
		return fmt.Errorf("delete booking: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return ErrBookingNotFound
	}
	return nil
}

func (in BookingInput) cleaned() BookingInput {
	return BookingInput{
		OrganizationName:   plainText(in.OrganizationName),
		ContactPerson:      plainText(in.ContactPerson),
		Email:              strings.ToLower(strings.TrimSpace(in.Email)),
		Phone:              plainText(in.Phone),
		EventName:          plainText(in.EventName),
		EventDates:         plainText(in.EventDates),
		EventLocation:      plainText(in.EventLocation),
		AudienceType:       plainText(in.AudienceType),
		AudienceSize:       plainText(in.AudienceSize),
		PreferredSpeaker:   plainText(in.PreferredSpeaker),
		TopicPreference:    plainText(in.TopicPreference),
		SessionLength:      plainText(in.SessionLength),
		AVSetup:            plainText(in.AVSetup),
		RecordedOrStreamed: plainText(in.RecordedOrStreamed),
		HonorariumBudget:   plainText(in.HonorariumBudget),
		TravelSupport:      plainText(in.TravelSupport),
		AdditionalNotes:    plainText(in.AdditionalNotes),
	}
}

// plainText 去掉用户输入中的 HTML 标签，保留纯文本
func plainText(v string) string {
	return strings.TrimSpace(html.UnescapeString(plainPolicy.Sanitize(v)))
}

// describeValidation 将 validator 的错误转为面向客户端的提示
func describeValidation(err error) string {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) || len(verrs) == 0 {
		return err.Error()
	}
	messages := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		switch fe.Tag() {
		case "required":
			messages = append(messages, fmt.Sprintf("%s is required", lowerFirst(fe.Field())))
		case "email":
			messages = append(messages, "Please provide a valid email")
		default:
			messages = append(messages, fmt.Sprintf("%s is invalid", lowerFirst(fe.Field())))
		}
	}
	return strings.Join(messages, "; ")
}

func lowerFirst(s string) string {
	if s == "" {
		return s
	}
	return strings.ToLower(s[:1]) + s[1:]
}
