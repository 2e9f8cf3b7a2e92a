package service

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/leadervibe/internal/db"
	"github.com/leadervibe/internal/mailer"
)

func validBooking() BookingInput {
	return BookingInput{
		OrganizationName: "Acme Corp",
		ContactPerson:    "Sam Lee",
		Email:            "Sam@Acme.test",
		Phone:            "+1 555 0100",
		EventName:        "Leadership Summit",
		EventDates:       "2026-11-02",
		EventLocation:    "Austin, TX",
		AudienceType:     "Executives",
		AudienceSize:     "250",
		SessionLength:    "60 minutes",
		AdditionalNotes:  "<script>alert(1)</script>Need Q&A time",
	}
}

func TestBookingCreateSendsBothEmails(t *testing.T) {
	gdb := setupTestDB(t)
	mail := &fakeMailer{}
	svc := NewBookingService(gdb, mail, "admin@leadervibe.test")

	booking, err := svc.Create(context.Background(), validBooking())
	if err != nil {
		t.Fatalf("create failed: %v", err)
	}
	if booking.Status != db.BookingStatusPending {
		t.Fatalf("expected pending status, got %q", booking.Status)
	}
	if booking.Email != "sam@acme.test" {
		t.Fatalf("expected normalised email, got %q", booking.Email)
	}
	if strings.Contains(booking.AdditionalNotes, "<script>") || !strings.Contains(booking.AdditionalNotes, "Need Q&A time") {
		t.Fatalf("expected markup stripped, got %q", booking.AdditionalNotes)
	}

	templates := mail.templates()
	if len(templates) != 2 || templates[0] != mailer.TemplateBookingAdmin || templates[1] != mailer.TemplateBookingClient {
		t.Fatalf("unexpected emails: %v", templates)
	}
}

func TestBookingCreateSurvivesMailFailure(t *testing.T) {
	gdb := setupTestDB(t)
	mail := &fakeMailer{err: errors.New("relay down")}
	svc := NewBookingService(gdb, mail, "")

	if _, err := svc.Create(context.Background(), validBooking()); err != nil {
		t.Fatalf("expected mail failure to be logged only, got %v", err)
	}
	if templates := mail.templates(); len(templates) != 1 || templates[0] != mailer.TemplateBookingClient {
		t.Fatalf("expected only the client email without an admin address, got %v", templates)
	}
}

func TestBookingCreateValidates(t *testing.T) {
	gdb := setupTestDB(t)
	svc := NewBookingService(gdb, &fakeMailer{}, "")

	input := validBooking()
	input.EventName = "<b></b>"
	input.Email = "not-an-email"
	_, err := svc.Create(context.Background(), input)
	if !errors.Is(err, ErrValidation) {
		t.Fatalf("expected validation error, got %v", err)
	}
	var svcErr *Error
	if !errors.As(err, &svcErr) || !strings.Contains(svcErr.Message, "eventName is required") {
		t.Fatalf("expected field message, got %v", err)
	}
}

func TestBookingStatusAndDelete(t *testing.T) {
	gdb := setupTestDB(t)
	svc := NewBookingService(gdb, &fakeMailer{}, "")
	ctx := context.Background()

	booking, err := svc.Create(ctx, validBooking())
	if err != nil {
		t.Fatalf("create failed: %v", err)
	}

	if _, err := svc.UpdateStatus(ctx, booking.ID, "maybe"); !errors.Is(err, ErrValidation) {
		t.Fatalf("expected validation error for bad status, got %v", err)
	}
	updated, err := svc.UpdateStatus(ctx, booking.ID, db.BookingStatusConfirmed)
	if err != nil {
		t.Fatalf("update status failed: %v", err)
	}
	if updated.Status != db.BookingStatusConfirmed {
		t.Fatalf("expected confirmed, got %q", updated.Status)
	}

	if err := svc.Delete(ctx, booking.ID); err != nil {
		t.Fatalf("delete failed: %v", err)
	}
	if err := svc.Delete(ctx, booking.ID); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected not found on second delete, got %v", err)
	}
	if _, err := svc.Get(ctx, booking.ID); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected not found, got %v", err)
	}
}

func TestContactCreateAndList(t *testing.T) {
	gdb := setupTestDB(t)
	mail := &fakeMailer{}
	svc := NewContactService(gdb, mail, "admin@leadervibe.test")
	ctx := context.Background()

	if _, err := svc.Create(ctx, ContactInput{Name: "Kim", Email: "kim@example.com"}); !errors.Is(err, ErrValidation) {
		t.Fatalf("expected validation error without message, got %v", err)
	}

	contact, err := svc.Create(ctx, ContactInput{Name: "Kim", Email: "kim@example.com", Message: "<i>Hello</i> there"})
	if err != nil {
		t.Fatalf("create failed: %v", err)
	}
	if contact.Message != "Hello there" {
		t.Fatalf("expected sanitised message, got %q", contact.Message)
	}
	if templates := mail.templates(); len(templates) != 2 || templates[0] != mailer.TemplateContactAdmin {
		t.Fatalf("unexpected emails: %v", templates)
	}

	contacts, err := svc.List(ctx)
	if err != nil || len(contacts) != 1 {
		t.Fatalf("expected one contact, got %d (%v)", len(contacts), err)
	}
	if err := svc.Delete(ctx, contact.ID); err != nil {
		t.Fatalf("delete failed: %v", err)
	}
	if _, err := svc.Get(ctx, contact.ID); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected not found after delete, got %v", err)
	}
}
