// Package mailer renders and sends transactional emails.
//
// Resend is the production relay. Without an API key the Log sender is used,
// which only writes the message envelope to the log.
package mailer

import (
	"context"
	"fmt"
	"strings"

	"github.com/leadervibe/internal/logging"
	"github.com/leadervibe/internal/metrics"
	"github.com/pkg/errors"
	"github.com/resend/resend-go/v2"
)

// Message is one rendered email. Template labels metrics and logs.
type Message struct {
	Template string
	To       []string
	Subject  string
	Text     string
	HTML     string
}

// Sender delivers rendered messages.
type Sender interface {
	Send(ctx context.Context, msg Message) error
}

// Resend sends through the Resend API.
type Resend struct {
	client *resend.Client
	from   string
}

func NewResend(apiKey, from string) *Resend {
	return &Resend{
		client: resend.NewClient(strings.TrimSpace(apiKey)),
		from:   strings.TrimSpace(from),
	}
}

func (r *Resend) Send(ctx context.Context, msg Message) error {
	if err := validate(msg); err != nil {
		return err
	}

	params := &resend.SendEmailRequest{
		From:    r.from,
		To:      msg.To,
		Subject: msg.Subject,
		Html:    msg.HTML,
		Text:    msg.Text,
	}

	sent, err := r.client.Emails.SendWithContext(ctx, params)
	record(msg.Template, err)
	if err != nil {
		return errors.Wrapf(err, "failed to send %s email", templateLabel(msg.Template))
	}

	logging.Ctx(ctx).Info().
		Str("template", templateLabel(msg.Template)).
		Str("message_id", sent.Id).
		Msg("email sent")
	return nil
}

// Log writes messages to the log instead of sending them.
type Log struct{}

func (Log) Send(ctx context.Context, msg Message) error {
	if err := validate(msg); err != nil {
		return err
	}
	record(msg.Template, nil)
	logging.Ctx(ctx).Info().
		Str("template", templateLabel(msg.Template)).
		Strs("to", msg.To).
		Str("subject", msg.Subject).
		Msg("email relay not configured, message logged")
	return nil
}

// New picks Resend when an API key is configured.
func New(apiKey, from string) Sender {
	if strings.TrimSpace(apiKey) == "" {
		return Log{}
	}
	return NewResend(apiKey, from)
}

func validate(msg Message) error {
	if len(msg.To) == 0 {
		return fmt.Errorf("email %s has no recipient", templateLabel(msg.Template))
	}
	if strings.TrimSpace(msg.Subject) == "" {
		return fmt.Errorf("email %s has no subject", templateLabel(msg.Template))
	}
	return nil
}

func record(template string, err error) {
	result := "success"
	if err != nil {
		result = "error"
	}
	metrics.EmailsSent.WithLabelValues(templateLabel(template), result).Inc()
}

func templateLabel(name string) string {
	if name == "" {
		return "custom"
	}
	return name
}
