package service

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"testing"

	"github.com/leadervibe/internal/db"
	"github.com/leadervibe/internal/mailer"
	"gorm.io/gorm"
)

func setupTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	name := strings.NewReplacer("/", "_", " ", "_").Replace(t.Name())
	gdb, err := db.Open(db.Options{
		Driver: "sqlite",
		Path:   fmt.Sprintf("file:%s?mode=memory&cache=shared", name),
		Silent: true,
	})
	if err != nil {
		t.Fatalf("failed to open test db: %v", err)
	}
	t.Cleanup(func() {
		if sqlDB, err := gdb.DB(); err == nil {
			sqlDB.Close()
		}
	})
	return gdb
}

type fakeMailer struct {
	mu   sync.Mutex
	sent []mailer.Message
	err  error
}

func (f *fakeMailer) Send(_ context.Context, msg mailer.Message) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.sent = append(f.sent, msg)
	return f.err
}

func (f *fakeMailer) templates() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	names := make([]string, 0, len(f.sent))
	for _, msg := range f.sent {
		names = append(names, msg.Template)
	}
	return names
}

func pngFile(name string) UploadFile {
	return UploadFile{Filename: name, ContentType: "image/png", Data: []byte("\x89PNG" + name)}
}
