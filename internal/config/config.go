package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// AppConfig 汇总运行服务所需的基础配置。
type AppConfig struct {
	ListenAddr       string
	Port             string
	DatabaseDriver   string
	DatabasePath     string
	DatabaseDSN      string
	SessionSecret    string
	JWTSecret        string
	TokenTTL         time.Duration
	GinMode          string
	LogLevel         string
	LogFormat        string
	SeedUserName     string
	SeedUserPassword string
	DefaultLanguage  string
}

// Load 从 .env 与环境变量读取应用配置，并为缺失项提供安全的默认值。
// 已存在的环境变量优先于 .env 中的同名项。
func Load(envFiles ...string) AppConfig {
	if len(envFiles) == 0 {
		envFiles = []string{".env"}
	}
	for _, file := range envFiles {
		// 文件不存在时忽略
		_ = godotenv.Load(file)
	}

	v := viper.New()
	v.AutomaticEnv()

	v.SetDefault("PORT", "8080")
	v.SetDefault("DATABASE_DRIVER", "sqlite")
	v.SetDefault("DATABASE_PATH", "studycycle.db")
	v.SetDefault("SESSION_SECRET", "studycycle-dev-secret")
	v.SetDefault("JWT_SECRET", "studycycle-dev-jwt-secret")
	v.SetDefault("TOKEN_TTL", "72h")
	v.SetDefault("GIN_MODE", "release")
	v.SetDefault("LOG_LEVEL", "info")
	v.SetDefault("LOG_FORMAT", "json")
	v.SetDefault("DEFAULT_LANGUAGE", "pt")

	port := trimmed(v, "PORT")
	if port == "" {
		port = "8080"
	}
	listenAddr := trimmed(v, "LISTEN_ADDR")
	if listenAddr == "" {
		listenAddr = fmt.Sprintf(":%s", port)
	}

	ttl, err := time.ParseDuration(trimmed(v, "TOKEN_TTL"))
	if err != nil || ttl <= 0 {
		ttl = 72 * time.Hour
	}

	return AppConfig{
		ListenAddr:       listenAddr,
		Port:             port,
		DatabaseDriver:   strings.ToLower(trimmed(v, "DATABASE_DRIVER")),
		DatabasePath:     trimmed(v, "DATABASE_PATH"),
		DatabaseDSN:      trimmed(v, "DATABASE_DSN"),
		SessionSecret:    trimmed(v, "SESSION_SECRET"),
		JWTSecret:        trimmed(v, "JWT_SECRET"),
		TokenTTL:         ttl,
		GinMode:          trimmed(v, "GIN_MODE"),
		LogLevel:         trimmed(v, "LOG_LEVEL"),
		LogFormat:        trimmed(v, "LOG_FORMAT"),
		SeedUserName:     trimmed(v, "SEED_USER_NAME"),
		SeedUserPassword: trimmed(v, "SEED_USER_PASSWORD"),
		DefaultLanguage:  trimmed(v, "DEFAULT_LANGUAGE"),
	}
}

// trimmed 读取并去除首尾空白；viper 默认将空环境变量视为未设置，会回退到默认值
func trimmed(v *viper.Viper, key string) string {
	return strings.TrimSpace(v.GetString(key))
}
