package main

import (
	"context"
	"embed"
	"errors"
	"flag"
	"fmt"
	"os"

	"github.com/goccy/go-json"
	"github.com/leadervibe/internal/config"
	"github.com/leadervibe/internal/db"
	"github.com/leadervibe/internal/imagestore"
	"github.com/leadervibe/internal/logging"
	"github.com/leadervibe/internal/service"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

//go:embed data/*.json
var seedData embed.FS

type galleryEntry struct {
	ID     string `json:"id"`
	Src    string `json:"src"`
	Alt    string `json:"alt"`
	Column string `json:"column"`
}

type profileEntry struct {
	ProfileID      string     `json:"profileId"`
	Name           string     `json:"name"`
	Title          string     `json:"title"`
	Email          string     `json:"email"`
	Bio            string     `json:"bio"`
	BookingText    string     `json:"bookingText"`
	BookingURL     string     `json:"bookingUrl"`
	Photo          db.Photo   `json:"photo"`
	Gallery        []db.Photo `json:"gallery"`
	Awards         []string   `json:"awards"`
	Certifications []string   `json:"certifications"`
}

// 初始数据生成器：演讲者、about 档案与图库，可重复执行
func main() {
	only := flag.String("only", "", "seed a single set: speakers, profiles or gallery")
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		fail("failed to load config", err)
	}
	logging.Init(logging.Config{Level: cfg.LogLevel, Format: "console"})

	if err := db.Init(db.Options{Driver: cfg.DatabaseDriver, Path: cfg.DatabasePath, URL: cfg.DatabaseURL, Silent: true}); err != nil {
		fail("数据库初始化失败", err)
	}

	ctx := context.Background()
	steps := []struct {
		name string
		run  func(context.Context, *gorm.DB) (int, error)
	}{
		{"speakers", seedSpeakers},
		{"profiles", seedProfiles},
		{"gallery", seedGallery},
	}
	for _, step := range steps {
		if *only != "" && *only != step.name {
			continue
		}
		count, err := step.run(ctx, db.DB)
		if err != nil {
			fail("seeding "+step.name, err)
		}
		logging.Info().Str("set", step.name).Int("count", count).Msg("seeded")
	}
}

func fail(msg string, err error) {
	logging.Error().Err(err).Msg(msg)
	os.Exit(1)
}

func readSeed(name string, dst any) error {
	raw, err := seedData.ReadFile("data/" + name)
	if err != nil {
		return err
	}
	if err := json.Unmarshal(raw, dst); err != nil {
		return fmt.Errorf("decode %s: %w", name, err)
	}
	return nil
}

func seedSpeakers(ctx context.Context, gdb *gorm.DB) (int, error) {
	var speakers []db.Speaker
	if err := readSeed("speakers.json", &speakers); err != nil {
		return 0, err
	}

	svc := service.NewSpeakerService(gdb)
	for _, speaker := range speakers {
		if _, err := svc.Upsert(ctx, speaker); err != nil {
			return 0, fmt.Errorf("speaker %s: %w", speaker.SpeakerID, err)
		}
	}
	return len(speakers), nil
}

// seedProfiles 只创建缺失的档案，已有档案保留后台修改过的内容
func seedProfiles(ctx context.Context, gdb *gorm.DB) (int, error) {
	var profiles []profileEntry
	if err := readSeed("profiles.json", &profiles); err != nil {
		return 0, err
	}

	// 种子数据只引用站内静态图片，不会触发上传
	svc := service.NewAboutProfileService(gdb, imagestore.NewMemory(""))
	created := 0
	for _, p := range profiles {
		_, err := svc.Create(ctx, service.ProfileInput{
			ProfileID:      p.ProfileID,
			Name:           p.Name,
			Title:          p.Title,
			Email:          p.Email,
			Bio:            p.Bio,
			BookingText:    p.BookingText,
			BookingURL:     p.BookingURL,
			Photo:          p.Photo,
			Gallery:        p.Gallery,
			Awards:         p.Awards,
			Certifications: p.Certifications,
		})
		switch {
		case err == nil:
			created++
		case errors.Is(err, service.ErrConflict):
			logging.Debug().Str("profile", p.ProfileID).Msg("profile exists, skipped")
		default:
			return created, fmt.Errorf("profile %s: %w", p.ProfileID, err)
		}
	}
	return created, nil
}

func seedGallery(ctx context.Context, gdb *gorm.DB) (int, error) {
	var entries []galleryEntry
	if err := readSeed("gallery.json", &entries); err != nil {
		return 0, err
	}

	items := make([]db.GalleryItem, 0, len(entries))
	for _, e := range entries {
		items = append(items, db.GalleryItem{
			GalleryID: e.ID,
			Src:       e.Src,
			Alt:       e.Alt,
			Column:    db.NormalizeColumn(e.Column),
			Version:   1,
		})
	}

	err := gdb.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "gallery_id"}},
		DoUpdates: clause.AssignmentColumns([]string{"src", "alt", "column", "updated_at"}),
	}).Create(&items).Error
	if err != nil {
		return 0, err
	}
	return len(items), nil
}
