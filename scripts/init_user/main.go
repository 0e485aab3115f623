package main

import (
	"fmt"
	"log"

	"github.com/studycycle/internal/config"
	"github.com/studycycle/internal/db"
)

func main() {
	cfg := config.Load()

	// 初始化数据库
	if err := db.Init(db.Options{
		Driver: cfg.DatabaseDriver,
		Path:   cfg.DatabasePath,
		DSN:    cfg.DatabaseDSN,
	}); err != nil {
		log.Fatal("数据库初始化失败:", err)
	}

	username, password := cfg.SeedUserName, cfg.SeedUserPassword
	if username == "" || password == "" {
		username, password = "admin", "admin123"
	}

	created, err := db.EnsureUser(db.DB, username, password)
	if err != nil {
		log.Fatal("创建用户失败:", err)
	}
	if !created {
		fmt.Println("用户已存在，无需初始化")
		return
	}

	fmt.Println("默认用户创建成功")
	fmt.Println("用户名:", username)
}
