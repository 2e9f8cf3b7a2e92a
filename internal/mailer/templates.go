package mailer

import (
	"bytes"
	"fmt"
	"html/template"
	"strings"

	"github.com/leadervibe/internal/db"
	"github.com/microcosm-cc/bluemonday"
	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"
	"github.com/yuin/goldmark/renderer/html"
)

const (
	TemplateWelcome       = "welcome"
	TemplatePasswordReset = "password_reset"
	TemplateNotification  = "notification"
	TemplateBookingAdmin  = "booking_admin"
	TemplateBookingClient = "booking_client"
	TemplateContactAdmin  = "contact_admin"
	TemplateContactClient = "contact_client"

	notSpecified = "Not specified"
)

var (
	markdownEngine = goldmark.New(
		goldmark.WithExtensions(extension.GFM, extension.Linkify),
		goldmark.WithRendererOptions(html.WithHardWraps(), html.WithXHTML()),
	)
	sanitizer = bluemonday.UGCPolicy()

	layout = template.Must(template.New("layout").Parse(`<!DOCTYPE html>
<html>
<head>
  <meta charset="utf-8">
  <meta name="viewport" content="width=device-width, initial-scale=1.0">
  <title>{{.Title}}</title>
</head>
<body style="font-family: Arial, sans-serif; line-height: 1.6; color: #333; max-width: 600px; margin: 0 auto; padding: 20px;">
  <div style="background-color: #f9f9f9; border-radius: 5px; padding: 20px;">
    <h1 style="color: #333; text-align: center;">{{.Title}}</h1>
    <div style="background-color: #fff; border-radius: 5px; padding: 20px; margin-bottom: 20px;">
      {{.Content}}
    </div>
    {{if and .ButtonText .ButtonURL}}
    <div style="text-align: center; margin: 30px 0;">
      <a href="{{.ButtonURL}}" style="background-color: #4CAF50; color: white; padding: 12px 24px; text-decoration: none; border-radius: 4px; font-weight: bold; display: inline-block;">{{.ButtonText}}</a>
    </div>
    {{end}}
    {{if .Footer}}
    <div style="margin-top: 30px; padding-top: 20px; border-top: 1px solid #eee; color: #666; font-size: 12px;">{{.Footer}}</div>
    {{end}}
  </div>
</body>
</html>`))

	detailsTable = template.Must(template.New("details").Parse(`{{if .Intro}}<p>{{.Intro}}</p>{{end}}
<table style="width: 100%; border-collapse: collapse;">
{{range .Rows}}  <tr>
    <td style="padding: 10px; border-bottom: 1px solid #eee; width: 40%; font-weight: bold;">{{.Label}}</td>
    <td style="padding: 10px; border-bottom: 1px solid #eee;">{{.Value}}</td>
  </tr>
{{end}}</table>
{{if .Outro}}<p>{{.Outro}}</p>{{end}}`))
)

type layoutData struct {
	Title      string
	Content    template.HTML
	ButtonText string
	ButtonURL  string
	Footer     string
}

type detailRow struct {
	Label string
	Value string
}

type detailsData struct {
	Intro string
	Rows  []detailRow
	Outro string
}

func render(data layoutData) (string, error) {
	var buf bytes.Buffer
	if err := layout.Execute(&buf, data); err != nil {
		return "", fmt.Errorf("render email layout: %w", err)
	}
	return buf.String(), nil
}

func renderDetails(title string, details detailsData) (string, error) {
	var buf bytes.Buffer
	if err := detailsTable.Execute(&buf, details); err != nil {
		return "", fmt.Errorf("render email details: %w", err)
	}
	return render(layoutData{Title: title, Content: template.HTML(buf.String())})
}

// MarkdownToHTML converts user supplied markdown into sanitized HTML.
func MarkdownToHTML(source string) (template.HTML, error) {
	var buf bytes.Buffer
	if err := markdownEngine.Convert([]byte(source), &buf); err != nil {
		return "", err
	}
	return template.HTML(sanitizer.SanitizeBytes(buf.Bytes())), nil
}

func paragraph(text string) template.HTML {
	return template.HTML("<p>" + template.HTMLEscapeString(text) + "</p>")
}

// Welcome greets a new account holder.
func Welcome(to, name string) (Message, error) {
	content := paragraph("Hello "+name+",") +
		paragraph("Welcome aboard! Your LeaderVibe account is ready.") +
		paragraph("If you have any questions, feel free to reply to this email.")

	htmlBody, err := render(layoutData{Title: "Welcome to LeaderVibe!", Content: content})
	if err != nil {
		return Message{}, err
	}
	return Message{
		Template: TemplateWelcome,
		To:       []string{to},
		Subject:  "Welcome to LeaderVibe!",
		Text:     fmt.Sprintf("Hello %s,\n\nWelcome aboard! Your LeaderVibe account is ready.\n\nBest regards,\nThe LeaderVibe Team", name),
		HTML:     htmlBody,
	}, nil
}

// PasswordReset carries the one-time reset link.
func PasswordReset(to, name, resetURL string) (Message, error) {
	content := paragraph("Hello "+name+",") +
		paragraph("We received a request to reset your password. If you didn't make this request, you can safely ignore this email.") +
		paragraph("To reset your password, click the button below:")

	htmlBody, err := render(layoutData{
		Title:      "Reset Your Password",
		Content:    content,
		ButtonText: "Reset Password",
		ButtonURL:  resetURL,
		Footer:     "This link will expire in 10 minutes.",
	})
	if err != nil {
		return Message{}, err
	}
	return Message{
		Template: TemplatePasswordReset,
		To:       []string{to},
		Subject:  "Password Reset Request",
		Text: fmt.Sprintf("Hello %s,\n\nYou requested a password reset. Please use the following link to reset your password: %s\n\n"+
			"If you didn't request this, please ignore this email.", name, resetURL),
		HTML: htmlBody,
	}, nil
}

// Notification renders an admin-authored message. The body is markdown.
func Notification(to, subject, message, buttonText, buttonURL string) (Message, error) {
	content, err := MarkdownToHTML(message)
	if err != nil {
		return Message{}, fmt.Errorf("render notification markdown: %w", err)
	}

	htmlBody, err := render(layoutData{
		Title:      subject,
		Content:    content,
		ButtonText: buttonText,
		ButtonURL:  buttonURL,
	})
	if err != nil {
		return Message{}, err
	}
	return Message{
		Template: TemplateNotification,
		To:       []string{to},
		Subject:  subject,
		Text:     message,
		HTML:     htmlBody,
	}, nil
}

func orDefault(value, fallback string) string {
	if strings.TrimSpace(value) == "" {
		return fallback
	}
	return value
}

func bookingRows(b db.Booking) []detailRow {
	return []detailRow{
		{"Organization", b.OrganizationName},
		{"Contact Person", b.ContactPerson},
		{"Email", b.Email},
		{"Phone", b.Phone},
		{"Event Name", b.EventName},
		{"Event Dates", b.EventDates},
		{"Event Location", b.EventLocation},
		{"Audience Type", b.AudienceType},
		{"Audience Size", b.AudienceSize},
		{"Preferred Speaker", orDefault(b.PreferredSpeaker, notSpecified)},
		{"Topic Preference", orDefault(b.TopicPreference, notSpecified)},
		{"Session Length", b.SessionLength},
		{"AV Setup", orDefault(b.AVSetup, notSpecified)},
		{"Recorded/Streamed", orDefault(b.RecordedOrStreamed, notSpecified)},
		{"Honorarium Budget", orDefault(b.HonorariumBudget, notSpecified)},
		{"Travel Support", orDefault(b.TravelSupport, notSpecified)},
		{"Additional Notes", orDefault(b.AdditionalNotes, "None")},
	}
}

func rowsText(rows []detailRow) string {
	var sb strings.Builder
	for _, row := range rows {
		fmt.Fprintf(&sb, "%s: %s\n", row.Label, row.Value)
	}
	return sb.String()
}

// BookingAdmin tells the site owner about a new booking request.
func BookingAdmin(to string, b db.Booking) (Message, error) {
	subject := "New Booking Request: " + b.EventName
	rows := bookingRows(b)
	intro := fmt.Sprintf("A new booking request has been submitted for %s by %s. Please review the details below:", b.EventName, b.OrganizationName)

	htmlBody, err := renderDetails(subject, detailsData{Intro: intro, Rows: rows})
	if err != nil {
		return Message{}, err
	}
	return Message{
		Template: TemplateBookingAdmin,
		To:       []string{to},
		Subject:  subject,
		Text:     fmt.Sprintf("%s\n\nHello Admin,\n\n%s\n\n%s", subject, intro, rowsText(rows)),
		HTML:     htmlBody,
	}, nil
}

// BookingClient confirms receipt to the person who booked.
func BookingClient(b db.Booking) (Message, error) {
	subject := "We've Received Your Booking Request: " + b.EventName
	rows := []detailRow{
		{"Event Name", b.EventName},
		{"Event Dates", b.EventDates},
		{"Event Location", b.EventLocation},
		{"Session Length", b.SessionLength},
	}
	intro := fmt.Sprintf("Dear %s, thank you for your booking request for %s. We will review it and get back to you shortly.", b.ContactPerson, b.EventName)

	htmlBody, err := renderDetails(subject, detailsData{Intro: intro, Rows: rows, Outro: "Best regards, The LeaderVibe Team"})
	if err != nil {
		return Message{}, err
	}
	return Message{
		Template: TemplateBookingClient,
		To:       []string{b.Email},
		Subject:  subject,
		Text:     fmt.Sprintf("%s\n\n%s\n\n%s\nBest regards,\nThe LeaderVibe Team", subject, intro, rowsText(rows)),
		HTML:     htmlBody,
	}, nil
}

// ContactAdmin forwards a contact form message to the site owner.
func ContactAdmin(to string, c db.Contact) (Message, error) {
	subject := "New Contact Message from " + c.Name
	rows := []detailRow{
		{"Name", c.Name},
		{"Email", c.Email},
		{"Message", c.Message},
	}

	htmlBody, err := renderDetails(subject, detailsData{Intro: "A new message was sent through the contact form.", Rows: rows})
	if err != nil {
		return Message{}, err
	}
	return Message{
		Template: TemplateContactAdmin,
		To:       []string{to},
		Subject:  subject,
		Text:     fmt.Sprintf("%s\n\n%s", subject, rowsText(rows)),
		HTML:     htmlBody,
	}, nil
}

// ContactClient acknowledges a contact form message.
func ContactClient(c db.Contact) (Message, error) {
	subject := "Thanks for reaching out, " + c.Name
	intro := "We received your message and will get back to you as soon as possible. Here is a copy for your records:"
	rows := []detailRow{{"Message", c.Message}}

	htmlBody, err := renderDetails(subject, detailsData{Intro: intro, Rows: rows, Outro: "Best regards, The LeaderVibe Team"})
	if err != nil {
		return Message{}, err
	}
	return Message{
		Template: TemplateContactClient,
		To:       []string{c.Email},
		Subject:  subject,
		Text:     fmt.Sprintf("Hello %s,\n\n%s\n\n%s\nBest regards,\nThe LeaderVibe Team", c.Name, intro, c.Message),
		HTML:     htmlBody,
	}, nil
}
