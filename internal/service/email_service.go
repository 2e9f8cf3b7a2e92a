package service

import (
	"context"
	"strings"

	"github.com/leadervibe/internal/logging"
	"github.com/leadervibe/internal/mailer"
)

// NotificationInput is an admin-composed email. Message is markdown.
type NotificationInput struct {
	To         string `json:"to" validate:"required,email"`
	Subject    string `json:"subject" validate:"required"`
	Message    string `json:"message" validate:"required"`
	ButtonText string `json:"buttonText"`
	ButtonURL  string `json:"buttonUrl" validate:"omitempty,url"`
}

// RecipientInput addresses a templated email.
type RecipientInput struct {
	Name     string `json:"name" validate:"required"`
	Email    string `json:"email" validate:"required,email"`
	ResetURL string `json:"resetUrl" validate:"omitempty,url"`
}

// EmailService sends emails on behalf of administrators. Unlike booking and
// contact notifications, delivery failures are returned to the caller.
type EmailService struct {
	mail mailer.Sender
}

func NewEmailService(mail mailer.Sender) *EmailService {
	return &EmailService{mail: mail}
}

func (s *EmailService) SendNotification(ctx context.Context, in NotificationInput) error {
	in.To = strings.TrimSpace(in.To)
	in.Subject = strings.TrimSpace(in.Subject)
	in.ButtonText = strings.TrimSpace(in.ButtonText)
	in.ButtonURL = strings.TrimSpace(in.ButtonURL)
	if err := validate.Struct(in); err != nil {
		return validationError(describeValidation(err))
	}
	msg, err := mailer.Notification(in.To, in.Subject, in.Message, in.ButtonText, in.ButtonURL)
	if err != nil {
		return err
	}
	return s.deliver(ctx, msg)
}

func (s *EmailService) SendWelcome(ctx context.Context, in RecipientInput) error {
	in.Name = strings.TrimSpace(in.Name)
	in.Email = strings.TrimSpace(in.Email)
	if err := validate.Struct(in); err != nil {
		return validationError(describeValidation(err))
	}
	msg, err := mailer.Welcome(in.Email, in.Name)
	if err != nil {
		return err
	}
	return s.deliver(ctx, msg)
}

func (s *EmailService) SendPasswordReset(ctx context.Context, in RecipientInput) error {
	in.Name = strings.TrimSpace(in.Name)
	in.Email = strings.TrimSpace(in.Email)
	in.ResetURL = strings.TrimSpace(in.ResetURL)
	if err := validate.Struct(in); err != nil {
		return validationError(describeValidation(err))
	}
	if in.ResetURL == "" {
		return validationError("Reset URL is required")
	}
	msg, err := mailer.PasswordReset(in.Email, in.Name, in.ResetURL)
	if err != nil {
		return err
	}
	return s.deliver(ctx, msg)
}

func (s *EmailService) deliver(ctx context.Context, msg mailer.Message) error {
	if err := s.mail.Send(ctx, msg); err != nil {
		return upstreamError("Failed to send email", err)
	}
	logging.Ctx(ctx).Info().Str("template", msg.Template).Strs("to", msg.To).Msg("email sent")
	return nil
}
