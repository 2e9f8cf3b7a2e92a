package mailer

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"github.com/leadervibe/internal/db"
)

func TestNotificationSanitizesMarkdown(t *testing.T) {
	msg, err := Notification("guest@example.com", "Event update", "**Doors open at 9**\n\n<script>alert(1)</script>", "View event", "https://leadervibe.dev/events")
	if err != nil {
		t.Fatalf("render failed: %v", err)
	}

	if !strings.Contains(msg.HTML, "<strong>Doors open at 9</strong>") {
		t.Fatalf("markdown not rendered: %s", msg.HTML)
	}
	if strings.Contains(msg.HTML, "<script>") {
		t.Fatalf("script tag should be removed: %s", msg.HTML)
	}
	if !strings.Contains(msg.HTML, `href="https://leadervibe.dev/events"`) {
		t.Fatalf("button link missing: %s", msg.HTML)
	}
	if msg.Template != TemplateNotification || msg.To[0] != "guest@example.com" {
		t.Fatalf("unexpected envelope: %+v", msg)
	}
}

func TestBookingAdminEscapesUserInput(t *testing.T) {
	booking := db.Booking{
		OrganizationName: "Acme <b>Corp</b>",
		ContactPerson:    "Jane",
		Email:            "jane@acme.test",
		EventName:        "Summit",
		SessionLength:    "45 minutes",
	}

	msg, err := BookingAdmin("admin@leadervibe.dev", booking)
	if err != nil {
		t.Fatalf("render failed: %v", err)
	}
	if msg.Subject != "New Booking Request: Summit" {
		t.Fatalf("unexpected subject %q", msg.Subject)
	}
	if strings.Contains(msg.HTML, "<b>Corp</b>") {
		t.Fatalf("organization name should be escaped: %s", msg.HTML)
	}
	if !strings.Contains(msg.Text, "Preferred Speaker: Not specified") {
		t.Fatalf("expected default for optional fields: %s", msg.Text)
	}
}

func TestContactTemplatesAddressBothParties(t *testing.T) {
	contact := db.Contact{Name: "Sam", Email: "sam@example.com", Message: "Hi there"}

	admin, err := ContactAdmin("admin@leadervibe.dev", contact)
	if err != nil {
		t.Fatalf("admin template failed: %v", err)
	}
	client, err := ContactClient(contact)
	if err != nil {
		t.Fatalf("client template failed: %v", err)
	}
	if admin.To[0] != "admin@leadervibe.dev" || client.To[0] != "sam@example.com" {
		t.Fatalf("unexpected recipients: %v %v", admin.To, client.To)
	}
	if !strings.Contains(client.Text, "Hi there") {
		t.Fatalf("client copy should include the message: %s", client.Text)
	}
}

func TestLogSenderValidatesEnvelope(t *testing.T) {
	if err := (Log{}).Send(context.Background(), Message{Subject: "x"}); err == nil {
		t.Fatal("expected error for missing recipient")
	}
	if err := (Log{}).Send(context.Background(), Message{To: []string{"a@b.c"}, Subject: "x"}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if _, ok := New("", "from@leadervibe.dev").(Log); !ok {
		t.Fatal("expected log sender without api key")
	}
}

func TestResendSenderPostsEmail(t *testing.T) {
	var received map[string]any
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("Authorization") != "Bearer re_test" {
			t.Errorf("missing api key header: %q", r.Header.Get("Authorization"))
		}
		if err := json.NewDecoder(r.Body).Decode(&received); err != nil {
			t.Errorf("invalid body: %v", err)
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"id":"email_123"}`))
	}))
	defer server.Close()

	sender := NewResend("re_test", "LeaderVibe <no-reply@leadervibe.dev>")
	base, _ := url.Parse(server.URL + "/")
	sender.client.BaseURL = base

	msg, err := Welcome("new@leadervibe.dev", "Jane")
	if err != nil {
		t.Fatalf("render failed: %v", err)
	}
	if err := sender.Send(context.Background(), msg); err != nil {
		t.Fatalf("send failed: %v", err)
	}

	if received["from"] != "LeaderVibe <no-reply@leadervibe.dev>" || received["subject"] != "Welcome to LeaderVibe!" {
		t.Fatalf("unexpected payload: %v", received)
	}
}
