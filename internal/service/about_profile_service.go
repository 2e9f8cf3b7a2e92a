package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/leadervibe/internal/db"
	"github.com/leadervibe/internal/imagestore"
	"github.com/leadervibe/internal/logging"
	"github.com/leadervibe/internal/payload"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

const (
	GalleryModeAppend  = "append"
	GalleryModeReplace = "replace"
)

// 可直接覆盖的文本字段：请求字段名 -> 数据库列
var profileScalarFields = []struct {
	key    string
	column string
}{
	{"name", "name"},
	{"title", "title"},
	{"email", "email"},
	{"bio", "bio"},
	{"bookingText", "booking_text"},
	{"bookingUrl", "booking_url"},
}

// AboutProfileService 维护 about 页面的人物档案，负责头像与图库的上传、清理与合并
type AboutProfileService struct {
	db    *gorm.DB
	store imagestore.Store
	now   func() time.Time
}

// ProfileInput 描述创建档案时的字段
type ProfileInput struct {
	ProfileID      string
	Name           string
	Title          string
	Email          string
	Bio            string
	BookingText    string
	BookingURL     string
	Photo          db.Photo
	Gallery        []db.Photo
	Awards         []string
	Certifications []string
}

// ProfileUpdate 描述一次部分更新请求
// Fields 中的 galleryAction 为 replace 时替换图库，否则追加
type ProfileUpdate struct {
	Fields       payload.Fields
	Photo        *UploadFile
	GalleryFiles []UploadFile
}

// NewAboutProfileService 构造 AboutProfileService
func NewAboutProfileService(gdb *gorm.DB, store imagestore.Store) *AboutProfileService {
	return &AboutProfileService{db: gdb, store: store, now: time.Now}
}

// List 按姓名升序返回全部档案
func (s *AboutProfileService) List(ctx context.Context) ([]db.AboutProfile, error) {
	var profiles []db.AboutProfile
	if err := s.db.WithContext(ctx).Order("name asc").Order("id asc").Find(&profiles).Error; err != nil {
		return nil, fmt.Errorf("list about profiles: %w", err)
	}
	return profiles, nil
}

// Get 根据 profileId 获取档案
func (s *AboutProfileService) Get(ctx context.Context, profileID string) (*db.AboutProfile, error) {
	var profile db.AboutProfile
	if err := s.db.WithContext(ctx).Where("profile_id = ?", strings.TrimSpace(profileID)).First(&profile).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrProfileNotFound
		}
		return nil, fmt.Errorf("get about profile: %w", err)
	}
	return &profile, nil
}

// Create 新建档案，头像为必填项
func (s *AboutProfileService) Create(ctx context.Context, input ProfileInput) (*db.AboutProfile, error) {
	profileID := strings.TrimSpace(input.ProfileID)
	name := strings.TrimSpace(input.Name)
	if profileID == "" || name == "" {
		return nil, validationError("Profile id and name are required")
	}
	if strings.TrimSpace(input.Photo.Src) == "" {
		return nil, ErrProfilePhotoNeeded
	}

	if _, err := s.Get(ctx, profileID); err == nil {
		return nil, ErrProfileExists
	} else if !errors.Is(err, ErrProfileNotFound) {
		return nil, err
	}

	gallery := input.Gallery
	if gallery == nil {
		gallery = []db.Photo{}
	}

	profile := db.AboutProfile{
		ProfileID:      profileID,
		Name:           name,
		Title:          strings.TrimSpace(input.Title),
		Email:          strings.ToLower(strings.TrimSpace(input.Email)),
		Bio:            strings.TrimSpace(input.Bio),
		BookingText:    strings.TrimSpace(input.BookingText),
		BookingURL:     strings.TrimSpace(input.BookingURL),
		Photo:          datatypes.NewJSONType(input.Photo),
		Gallery:        datatypes.JSONSlice[db.Photo](gallery),
		Awards:         datatypes.JSONSlice[string](nonNilStrings(input.Awards)),
		Certifications: datatypes.JSONSlice[string](nonNilStrings(input.Certifications)),
	}
	if err := s.db.WithContext(ctx).Create(&profile).Error; err != nil {
		return nil, fmt.Errorf("create about profile: %w", err)
	}
	return &profile, nil
}

// Reconcile 将一次部分更新合并到档案中：
// 文本字段按出现覆盖，awards/certifications 整体替换，photo 浅合并，
// 头像与图库文件依次上传，最后以一次带版本校验的写入落库。
// 任一上传失败都会中止更新；旧图片的删除失败只记录日志。
func (s *AboutProfileService) Reconcile(ctx context.Context, profileID string, update ProfileUpdate) (*db.AboutProfile, error) {
	fields := update.Fields
	if fields == nil {
		fields = payload.Fields{}
	}
	if fields.Empty() && update.Photo == nil && len(update.GalleryFiles) == 0 {
		return nil, ErrProfileEmptyUpdate
	}

	profile, err := s.Get(ctx, profileID)
	if err != nil {
		return nil, err
	}
	profileID = profile.ProfileID

	cleanup := newAssetCleanup(ctx, s.store, "about_profile")
	defer cleanup.Wait()

	updates := map[string]any{}

	for _, field := range profileScalarFields {
		if !fields.Has(field.key) {
			continue
		}
		text, ok := payload.Text(fields.Get(field.key))
		if !ok {
			continue
		}
		if field.key == "email" {
			text = strings.ToLower(strings.TrimSpace(text))
		}
		if field.key == "name" && strings.TrimSpace(text) == "" {
			return nil, validationError("Profile name cannot be empty")
		}
		updates[field.column] = text
	}

	for _, key := range []string{"awards", "certifications"} {
		if !fields.Has(key) {
			continue
		}
		if list, ok := payload.ParseArray(fields.Get(key)); ok {
			updates[key] = datatypes.JSONSlice[string](payload.Strings(list))
		}
	}

	mode := GalleryModeAppend
	if text, _ := payload.Text(fields.Get("galleryAction")); strings.TrimSpace(text) == GalleryModeReplace {
		mode = GalleryModeReplace
	}

	var parsedGallery []db.Photo
	parsedList, hasParsedGallery := payload.ParseArray(fields.Get("gallery"))
	if mode == GalleryModeReplace && hasParsedGallery {
		parsedGallery, err = photosFromList(parsedList)
		if err != nil {
			return nil, err
		}
		updates["gallery"] = datatypes.JSONSlice[db.Photo](parsedGallery)
	}

	workingGallery := []db.Photo(profile.Gallery)
	if mode == GalleryModeReplace && hasParsedGallery {
		workingGallery = parsedGallery
	}

	photo := profile.Photo.Data()
	photoChanged := false
	stalePhoto := ""
	if incoming, ok := payload.ParseObject(fields.Get("photo")); ok {
		photo = mergePhoto(photo, incoming)
		photoChanged = true
	}

	if update.Photo != nil {
		folder, publicID := "about/"+profileID, profileID+"-photo"
		result, err := s.store.Upload(ctx, update.Photo.request(folder, publicID))
		if err != nil {
			return nil, upstreamError("Profile photo upload failed", err)
		}
		// 同一资源键的上传会原地覆盖，只有旧键不同才需要删除
		if old := profile.Photo.Data().AssetID; !sameAsset(old, folder, publicID) {
			stalePhoto = old
		}
		photo.Src = result.URL
		photo.AssetID = result.AssetID
		photoChanged = true
	}
	if photoChanged {
		if strings.TrimSpace(photo.Src) == "" {
			return nil, ErrProfilePhotoNeeded
		}
		updates["photo"] = datatypes.NewJSONType(photo)
	}

	galleryMeta, _ := payload.ParseArray(fields.Get("galleryMeta"))
	newItems := make([]db.Photo, 0, len(update.GalleryFiles))
	for index, file := range update.GalleryFiles {
		publicID := fmt.Sprintf("%s-gallery-%d-%d", profileID, s.now().UnixMilli(), index)
		result, err := s.store.Upload(ctx, file.request("about/"+profileID+"/gallery", publicID))
		if err != nil {
			for _, uploaded := range newItems {
				cleanup.Delete(uploaded.AssetID)
			}
			return nil, upstreamError("Profile gallery upload failed", err)
		}

		meta, _ := entryAt(galleryMeta, index).(map[string]any)
		alt, ok := payload.StringValue(meta["alt"])
		if !ok {
			alt = file.Filename
		}
		className, _ := payload.StringValue(meta["className"])

		newItems = append(newItems, db.Photo{
			Src:       result.URL,
			Alt:       alt,
			ClassName: className,
			AssetID:   result.AssetID,
		})
	}

	if len(newItems) > 0 {
		var gallery []db.Photo
		if mode == GalleryModeReplace {
			for _, old := range profile.Gallery {
				cleanup.Delete(old.AssetID)
			}
			cleanup.Wait()

			gallery = append(gallery, parsedGallery...)
		} else {
			gallery = append(gallery, workingGallery...)
		}
		gallery = append(gallery, newItems...)
		updates["gallery"] = datatypes.JSONSlice[db.Photo](gallery)
	}

	if len(updates) == 0 {
		return profile, nil
	}
	updates["version"] = gorm.Expr("version + 1")

	res := s.db.WithContext(ctx).Model(&db.AboutProfile{}).
		Where("profile_id = ? AND version = ?", profileID, profile.Version).
		Updates(updates)
	if res.Error != nil {
		return nil, fmt.Errorf("update about profile %s: %w", profileID, res.Error)
	}
	if res.RowsAffected == 0 {
		return nil, ErrProfileConflict
	}
	cleanup.Delete(stalePhoto)

	logging.Ctx(ctx).Info().Str("profile_id", profileID).Str("gallery_mode", mode).Msg("about profile updated")
	return s.Get(ctx, profileID)
}

// sameAsset 判断 assetID 是否就是 folder/publicID，允许存储侧附加根目录前缀
func sameAsset(assetID, folder, publicID string) bool {
	key := folder + "/" + publicID
	return assetID == key || strings.HasSuffix(assetID, "/"+key)
}

// mergePhoto 将请求中的字段浅合并到已有头像上，未知字段忽略
func mergePhoto(base db.Photo, incoming map[string]any) db.Photo {
	set := func(key string, dst *string) {
		v, ok := incoming[key]
		if !ok {
			return
		}
		if text, isText := payload.Text(v); isText {
			if key == "src" || key == "publicId" {
				text = strings.TrimSpace(text)
			}
			*dst = text
		}
	}
	set("src", &base.Src)
	set("alt", &base.Alt)
	set("className", &base.ClassName)
	set("publicId", &base.AssetID)
	return base
}

// photosFromList 把请求中的图库数组转换为图片列表，缺少 src 的条目视为无效输入
func photosFromList(list []any) ([]db.Photo, error) {
	photos := make([]db.Photo, 0, len(list))
	for i, entry := range list {
		obj, ok := entry.(map[string]any)
		if !ok {
			return nil, validationError(fmt.Sprintf("gallery[%d] must be an object", i))
		}
		photo := mergePhoto(db.Photo{}, obj)
		if strings.TrimSpace(photo.Src) == "" {
			return nil, validationError(fmt.Sprintf("gallery[%d].src is required", i))
		}
		photos = append(photos, photo)
	}
	return photos, nil
}

func nonNilStrings(values []string) []string {
	if values == nil {
		return []string{}
	}
	return values
}
