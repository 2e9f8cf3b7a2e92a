package service

import (
	"context"
	"errors"
	"testing"

	"github.com/leadervibe/internal/db"
	"github.com/leadervibe/internal/payload"
	"gorm.io/datatypes"
)

func seedSpeaker(t *testing.T, svc *SpeakerService) {
	t.Helper()
	_, err := svc.Upsert(context.Background(), db.Speaker{
		SpeakerID: "alex",
		Name:      "Alex Rivera",
		Subtitle:  "Leadership",
		Fees:      datatypes.JSONSlice[string]{"Keynote: $5,000"},
		Topics:    datatypes.JSONSlice[string]{"Culture"},
		Photo:     datatypes.NewJSONType(db.Photo{Src: "https://images.local/alex.jpg", Alt: "Alex"}),
	})
	if err != nil {
		t.Fatalf("failed to seed speaker: %v", err)
	}
}

func TestSpeakerUpsertIsIdempotent(t *testing.T) {
	gdb := setupTestDB(t)
	svc := NewSpeakerService(gdb)
	seedSpeaker(t, svc)
	seedSpeaker(t, svc)

	speakers, err := svc.List(context.Background())
	if err != nil {
		t.Fatalf("list failed: %v", err)
	}
	if len(speakers) != 1 {
		t.Fatalf("expected one speaker after repeated upsert, got %d", len(speakers))
	}

	if _, err := svc.Upsert(context.Background(), db.Speaker{SpeakerID: "nophoto", Name: "No Photo"}); !errors.Is(err, ErrValidation) {
		t.Fatalf("expected validation error without photo, got %v", err)
	}
}

func TestSpeakerUpdate(t *testing.T) {
	gdb := setupTestDB(t)
	svc := NewSpeakerService(gdb)
	seedSpeaker(t, svc)

	updated, err := svc.Update(context.Background(), "alex", payload.Fields{
		"subtitle":    "Culture & Teams",
		"riderHeader": "Technical rider",
		"topics":      []any{"Culture", "Hiring"},
		"photo":       map[string]any{"alt": "Alex on stage"},
	})
	if err != nil {
		t.Fatalf("update failed: %v", err)
	}
	if updated.Subtitle != "Culture & Teams" || updated.RiderHeader != "Technical rider" {
		t.Fatalf("unexpected text fields: %+v", updated)
	}
	if got := []string(updated.Topics); len(got) != 2 || got[1] != "Hiring" {
		t.Fatalf("unexpected topics: %v", got)
	}
	if photo := updated.Photo.Data(); photo.Src != "https://images.local/alex.jpg" || photo.Alt != "Alex on stage" {
		t.Fatalf("unexpected photo: %+v", photo)
	}
	if got := []string(updated.Fees); len(got) != 1 {
		t.Fatalf("expected fees untouched, got %v", got)
	}
}

func TestSpeakerUpdateErrors(t *testing.T) {
	gdb := setupTestDB(t)
	svc := NewSpeakerService(gdb)
	seedSpeaker(t, svc)
	ctx := context.Background()

	cases := []struct {
		name     string
		id       string
		fields   payload.Fields
		category error
	}{
		{"empty", "alex", payload.Fields{}, ErrValidation},
		{"unknown speaker", "ghost", payload.Fields{"name": "x"}, ErrNotFound},
		{"fees not a list", "alex", payload.Fields{"fees": "free"}, ErrValidation},
		{"blank name", "alex", payload.Fields{"name": "  "}, ErrValidation},
		{"object as text", "alex", payload.Fields{"bio": map[string]any{"x": 1}}, ErrValidation},
		{"photo without src", "alex", payload.Fields{"photo": map[string]any{"src": ""}}, ErrValidation},
	}
	for _, tc := range cases {
		if _, err := svc.Update(ctx, tc.id, tc.fields); !errors.Is(err, tc.category) {
			t.Fatalf("%s: expected %v, got %v", tc.name, tc.category, err)
		}
	}
}

func TestSpeakerUpdateStoresTextAsSent(t *testing.T) {
	gdb := setupTestDB(t)
	svc := NewSpeakerService(gdb)
	seedSpeaker(t, svc)

	updated, err := svc.Update(context.Background(), "alex", payload.Fields{
		"subtitle":    "1e3",
		"note":        "0.50",
		"bio":         `["Keynote"]`,
		"riderHeader": "  Topics\n",
	})
	if err != nil {
		t.Fatalf("update failed: %v", err)
	}
	if updated.Subtitle != "1e3" || updated.Note != "0.50" {
		t.Fatalf("numeric-looking text was rewritten: %q %q", updated.Subtitle, updated.Note)
	}
	if updated.Bio != `["Keynote"]` {
		t.Fatalf("JSON-looking bio was rewritten: %q", updated.Bio)
	}
	if updated.RiderHeader != "  Topics\n" {
		t.Fatalf("expected rider header verbatim, got %q", updated.RiderHeader)
	}
}
