package db

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// DB 是一个全局的数据库连接实例
var DB *gorm.DB

// Options 描述数据库连接参数
type Options struct {
	Driver string // sqlite 或 postgres
	Path   string // sqlite 文件路径
	URL    string // postgres DSN
	Silent bool
}

// Init 初始化数据库连接并执行自动迁移。
// sqlite 路径为空时回退到默认值 leadervibe.db。
func Init(opts Options) error {
	conn, err := Open(opts)
	if err != nil {
		return err
	}
	DB = conn
	return nil
}

// Open 打开一个新的连接并迁移全部模型，不修改全局 DB。
func Open(opts Options) (*gorm.DB, error) {
	dialector, err := dialectorFor(opts)
	if err != nil {
		return nil, err
	}

	cfg := &gorm.Config{}
	if opts.Silent {
		cfg.Logger = logger.Default.LogMode(logger.Silent)
	}

	conn, err := gorm.Open(dialector, cfg)
	if err != nil {
		return nil, err
	}

	if err := Migrate(conn); err != nil {
		return nil, err
	}
	return conn, nil
}

// Migrate 为核心模型创建或更新表结构
func Migrate(conn *gorm.DB) error {
	return conn.AutoMigrate(
		&User{},
		&GalleryItem{},
		&AboutProfile{},
		&Speaker{},
		&Booking{},
		&Contact{},
	)
}

func dialectorFor(opts Options) (gorm.Dialector, error) {
	switch strings.ToLower(strings.TrimSpace(opts.Driver)) {
	case "", "sqlite":
		path := strings.TrimSpace(opts.Path)
		if path == "" {
			path = "leadervibe.db"
		}
		if !strings.HasPrefix(path, "file:") {
			if err := ensureParentDir(path); err != nil {
				return nil, err
			}
		}
		return sqlite.Open(path), nil
	case "postgres":
		dsn := strings.TrimSpace(opts.URL)
		if dsn == "" {
			return nil, errors.New("postgres driver requires a database url")
		}
		return postgres.Open(dsn), nil
	default:
		return nil, fmt.Errorf("unsupported database driver %q", opts.Driver)
	}
}

func ensureParentDir(path string) error {
	dir := filepath.Dir(path)
	if dir == "." || dir == "" {
		return nil
	}

	info, err := os.Stat(dir)
	if err == nil {
		if !info.IsDir() {
			return errors.New("database path parent is not a directory")
		}
		return nil
	}

	if os.IsNotExist(err) {
		return os.MkdirAll(dir, 0o755)
	}

	return err
}
