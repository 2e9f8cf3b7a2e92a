package main

import (
	"flag"
	"fmt"
	"os"

	"github.com/leadervibe/internal/config"
	"github.com/leadervibe/internal/db"
	"github.com/leadervibe/internal/logging"
)

// 创建后台管理员账号，默认读取 SUPER_ROOT_* 环境变量
func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintln(os.Stderr, "配置加载失败:", err)
		os.Exit(1)
	}
	logging.Init(logging.Config{Level: cfg.LogLevel, Format: "console"})

	name := flag.String("name", cfg.SuperRootUserName, "admin display name")
	email := flag.String("email", cfg.SuperRootEmail, "admin email")
	password := flag.String("password", cfg.SuperRootPassword, "admin password")
	flag.Parse()

	if *email == "" || *password == "" {
		logging.Error().Msg("email and password are required (flags or SUPER_ROOT_EMAIL / SUPER_ROOT_PASSWORD)")
		os.Exit(2)
	}

	// 初始化数据库
	if err := db.Init(db.Options{Driver: cfg.DatabaseDriver, Path: cfg.DatabasePath, URL: cfg.DatabaseURL, Silent: true}); err != nil {
		logging.Error().Err(err).Msg("数据库初始化失败")
		os.Exit(1)
	}

	created, err := db.EnsureAdmin(db.DB, *name, *email, *password)
	if err != nil {
		logging.Error().Err(err).Msg("创建管理员失败")
		os.Exit(1)
	}
	if !created {
		logging.Info().Str("email", *email).Msg("admin user already exists")
		return
	}
	logging.Info().Str("email", *email).Msg("admin user created")
}
