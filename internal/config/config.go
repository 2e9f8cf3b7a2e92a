package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	_ "github.com/joho/godotenv/autoload"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/structs"
	"github.com/knadh/koanf/v2"
)

// AppConfig 汇总运行服务所需的基础配置。
type AppConfig struct {
	ListenAddr     string `koanf:"listen_addr"`
	Port           string `koanf:"port" validate:"required"`
	GinMode        string `koanf:"gin_mode" validate:"oneof=debug release test"`
	DatabaseDriver string `koanf:"database_driver" validate:"oneof=sqlite postgres"`
	DatabasePath   string `koanf:"database_path"`
	DatabaseURL    string `koanf:"database_url" validate:"required_if=DatabaseDriver postgres"`

	JWTSecret     string `koanf:"jwt_secret" validate:"required,min=32"`
	JWTExpiresIn  string `koanf:"jwt_expires_in"`
	SessionSecret string `koanf:"session_secret" validate:"required,min=32"`

	// PublicBaseURL 用于生成邮件中的链接，生产环境必填
	PublicBaseURL string `koanf:"public_base_url" validate:"omitempty,url"`

	ImageStoreDriver    string `koanf:"image_store_driver" validate:"oneof=cloudinary memory"`
	CloudinaryCloudName string `koanf:"cloudinary_cloud_name"`
	CloudinaryAPIKey    string `koanf:"cloudinary_api_key"`
	CloudinaryAPISecret string `koanf:"cloudinary_api_secret"`
	CloudinaryFolder    string `koanf:"cloudinary_folder"`

	ResendAPIKey string `koanf:"resend_api_key"`
	EmailFrom    string `koanf:"email_from" validate:"required"`
	AdminEmail   string `koanf:"admin_email" validate:"omitempty,email"`

	CORSAllowedOrigins string `koanf:"cors_allowed_origins"`
	UploadMaxBytes     int64  `koanf:"upload_max_bytes" validate:"gt=0"`

	LogLevel  string `koanf:"log_level"`
	LogFormat string `koanf:"log_format" validate:"oneof=json console"`

	SuperRootUserName string `koanf:"super_root_user_name"`
	SuperRootEmail    string `koanf:"super_root_email"`
	SuperRootPassword string `koanf:"super_root_password"`

	// JWTTTL 由 JWTExpiresIn 解析得到
	JWTTTL time.Duration `koanf:"-"`
}

func defaults() AppConfig {
	return AppConfig{
		Port:             "3000",
		GinMode:          "release",
		DatabaseDriver:   "sqlite",
		DatabasePath:     "leadervibe.db",
		JWTExpiresIn:     "2160h",
		ImageStoreDriver: "cloudinary",
		CloudinaryFolder: "leadervibe",
		EmailFrom:        "LeaderVibe <no-reply@leadervibe.dev>",
		UploadMaxBytes:   5 << 20,
		LogLevel:         "info",
		LogFormat:        "json",
	}
}

// Load 从环境变量（及 .env 文件）读取应用配置，并为缺失项提供默认值。
func Load() (AppConfig, error) {
	return load(env.Provider("", ".", func(s string) string {
		return strings.ToLower(s)
	}))
}

func load(source koanf.Provider) (AppConfig, error) {
	k := koanf.New(".")
	if err := k.Load(structs.Provider(defaults(), "koanf"), nil); err != nil {
		return AppConfig{}, fmt.Errorf("load config defaults: %w", err)
	}
	if source != nil {
		if err := k.Load(source, nil); err != nil {
			return AppConfig{}, fmt.Errorf("load config from env: %w", err)
		}
	}

	var cfg AppConfig
	if err := k.Unmarshal("", &cfg); err != nil {
		return AppConfig{}, fmt.Errorf("decode config: %w", err)
	}

	cfg.normalize()

	ttl, err := time.ParseDuration(cfg.JWTExpiresIn)
	if err != nil {
		return AppConfig{}, fmt.Errorf("parse JWT_EXPIRES_IN: %w", err)
	}
	cfg.JWTTTL = ttl

	if err := validator.New(validator.WithRequiredStructEnabled()).Struct(cfg); err != nil {
		return AppConfig{}, fmt.Errorf("validate config: %w", err)
	}
	if cfg.GinMode == "release" && cfg.PublicBaseURL == "" {
		return AppConfig{}, errors.New("validate config: PUBLIC_BASE_URL is required in release mode")
	}

	return cfg, nil
}

func (c *AppConfig) normalize() {
	c.Port = strings.TrimSpace(c.Port)
	c.ListenAddr = strings.TrimSpace(c.ListenAddr)
	if c.ListenAddr == "" {
		c.ListenAddr = ":" + c.Port
	}
	c.GinMode = strings.ToLower(strings.TrimSpace(c.GinMode))
	c.DatabaseDriver = strings.ToLower(strings.TrimSpace(c.DatabaseDriver))
	c.DatabasePath = strings.TrimSpace(c.DatabasePath)
	c.DatabaseURL = strings.TrimSpace(c.DatabaseURL)
	c.ImageStoreDriver = strings.ToLower(strings.TrimSpace(c.ImageStoreDriver))
	c.CloudinaryCloudName = strings.TrimSpace(c.CloudinaryCloudName)
	c.CloudinaryAPIKey = strings.TrimSpace(c.CloudinaryAPIKey)
	c.CloudinaryAPISecret = strings.TrimSpace(c.CloudinaryAPISecret)
	c.CloudinaryFolder = strings.Trim(strings.TrimSpace(c.CloudinaryFolder), "/")
	c.AdminEmail = strings.TrimSpace(c.AdminEmail)
	c.JWTSecret = strings.TrimSpace(c.JWTSecret)
	c.SessionSecret = strings.TrimSpace(c.SessionSecret)
	c.PublicBaseURL = strings.TrimRight(strings.TrimSpace(c.PublicBaseURL), "/")
	c.LogFormat = strings.ToLower(strings.TrimSpace(c.LogFormat))
	c.JWTExpiresIn = strings.TrimSpace(c.JWTExpiresIn)
}

// AllowedOrigins 将逗号分隔的 CORS 来源拆分为列表，空值表示允许全部来源。
func (c AppConfig) AllowedOrigins() []string {
	var origins []string
	for _, origin := range strings.Split(c.CORSAllowedOrigins, ",") {
		if trimmed := strings.TrimSpace(origin); trimmed != "" {
			origins = append(origins, trimmed)
		}
	}
	return origins
}
