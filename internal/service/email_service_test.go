package service

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/leadervibe/internal/mailer"
)

func TestEmailServiceSendsNotification(t *testing.T) {
	mail := &fakeMailer{}
	svc := NewEmailService(mail)

	err := svc.SendNotification(context.Background(), NotificationInput{
		To:      "guest@example.com",
		Subject: "Schedule update",
		Message: "**Doors** open at 9am <script>x()</script>",
	})
	if err != nil {
		t.Fatalf("send failed: %v", err)
	}
	if len(mail.sent) != 1 {
		t.Fatalf("expected one email, got %d", len(mail.sent))
	}
	msg := mail.sent[0]
	if msg.Template != mailer.TemplateNotification || !strings.Contains(msg.HTML, "<strong>Doors</strong>") {
		t.Fatalf("unexpected message: %+v", msg)
	}
	if strings.Contains(msg.HTML, "<script>") {
		t.Fatal("expected script to be sanitised")
	}
}

func TestEmailServiceValidatesAndReportsFailures(t *testing.T) {
	mail := &fakeMailer{}
	svc := NewEmailService(mail)
	ctx := context.Background()

	if err := svc.SendWelcome(ctx, RecipientInput{Name: "Ana", Email: "nope"}); !errors.Is(err, ErrValidation) {
		t.Fatalf("expected validation error, got %v", err)
	}
	if err := svc.SendPasswordReset(ctx, RecipientInput{Name: "Ana", Email: "a@example.com"}); !errors.Is(err, ErrValidation) {
		t.Fatalf("expected missing reset url to fail, got %v", err)
	}

	mail.err = errors.New("relay down")
	err := svc.SendWelcome(ctx, RecipientInput{Name: "Ana", Email: "a@example.com"})
	if !errors.Is(err, ErrUpstream) {
		t.Fatalf("expected upstream error, got %v", err)
	}
}
