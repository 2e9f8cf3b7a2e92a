package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/leadervibe/internal/db"
	"github.com/leadervibe/internal/logging"
	"github.com/leadervibe/internal/payload"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

var speakerTextFields = []struct {
	key    string
	column string
}{
	{"name", "name"},
	{"subtitle", "subtitle"},
	{"bio", "bio"},
	{"note", "note"},
	{"riderHeader", "rider_header"},
}

// SpeakerService 管理活动页演讲者
type SpeakerService struct {
	db *gorm.DB
}

// NewSpeakerService 构造 SpeakerService
func NewSpeakerService(gdb *gorm.DB) *SpeakerService {
	return &SpeakerService{db: gdb}
}

// List 按姓名升序返回演讲者
func (s *SpeakerService) List(ctx context.Context) ([]db.Speaker, error) {
	var speakers []db.Speaker
	if err := s.db.WithContext(ctx).Order("name asc").Find(&speakers).Error; err != nil {
		return nil, fmt.Errorf("list speakers: %w", err)
	}
	return speakers, nil
}

// Get 根据 speakerId 获取演讲者
func (s *SpeakerService) Get(ctx context.Context, speakerID string) (*db.Speaker, error) {
	var speaker db.Speaker
	if err := s.db.WithContext(ctx).Where("speaker_id = ?", strings.TrimSpace(speakerID)).First(&speaker).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrSpeakerNotFound
		}
		return nil, fmt.Errorf("get speaker: %w", err)
	}
	return &speaker, nil
}

// Upsert 按 speakerId 创建或整体覆盖演讲者，供初始化数据使用
func (s *SpeakerService) Upsert(ctx context.Context, speaker db.Speaker) (*db.Speaker, error) {
	speaker.SpeakerID = strings.TrimSpace(speaker.SpeakerID)
	if speaker.SpeakerID == "" || strings.TrimSpace(speaker.Name) == "" {
		return nil, validationError("Speaker id and name are required")
	}
	if strings.TrimSpace(speaker.Photo.Data().Src) == "" {
		return nil, validationError("Speaker photo is required")
	}

	existing, err := s.Get(ctx, speaker.SpeakerID)
	switch {
	case err == nil:
		speaker.ID = existing.ID
		speaker.CreatedAt = existing.CreatedAt
		if err := s.db.WithContext(ctx).Save(&speaker).Error; err != nil {
			return nil, fmt.Errorf("save speaker: %w", err)
		}
	case errors.Is(err, ErrSpeakerNotFound):
		if err := s.db.WithContext(ctx).Create(&speaker).Error; err != nil {
			return nil, fmt.Errorf("create speaker: %w", err)
		}
	default:
		return nil, err
	}
	return &speaker, nil
}

// Update 对白名单字段做部分更新
// fees/topics 需为数组，photo 为对象并与已有头像浅合并
func (s *SpeakerService) Update(ctx context.Context, speakerID string, fields payload.Fields) (*db.Speaker, error) {
	if fields.Empty() {
		return nil, ErrSpeakerEmptyUpdate
	}

	speaker, err := s.Get(ctx, speakerID)
	if err != nil {
		return nil, err
	}

	updates := map[string]any{}
	for _, field := range speakerTextFields {
		if !fields.Has(field.key) {
			continue
		}
		text, ok := payload.Text(fields.Get(field.key))
		if !ok {
			return nil, validationError(fmt.Sprintf("%s must be text", field.key))
		}
		if field.key == "name" && strings.TrimSpace(text) == "" {
			return nil, validationError("Speaker name cannot be empty")
		}
		updates[field.column] = text
	}

	for _, key := range []string{"fees", "topics"} {
		if !fields.Has(key) {
			continue
		}
		list, ok := payload.ParseArray(fields.Get(key))
		if !ok {
			return nil, validationError(fmt.Sprintf("%s must be a list", key))
		}
		updates[key] = datatypes.JSONSlice[string](payload.Strings(list))
	}

	if fields.Has("photo") {
		incoming, ok := payload.ParseObject(fields.Get("photo"))
		if !ok {
			return nil, validationError("photo must be an object")
		}
		photo := mergePhoto(speaker.Photo.Data(), incoming)
		if strings.TrimSpace(photo.Src) == "" || strings.TrimSpace(photo.Alt) == "" {
			return nil, validationError("Speaker photo requires src and alt")
		}
		updates["photo"] = datatypes.NewJSONType(photo)
	}

	if len(updates) == 0 {
		return speaker, nil
	}

	if err := s.db.WithContext(ctx).Model(speaker).Updates(updates).Error; err != nil {
		return nil, fmt.Errorf("update speaker: %w", err)
	}

	logging.Ctx(ctx).Info().Str("speaker_id", speaker.SpeakerID).Msg("speaker updated")
	return s.Get(ctx, speaker.SpeakerID)
}
