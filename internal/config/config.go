package config

import (
	"errors"
	"os"
	"strconv"
	"strings"
)

// Config 汇总服务运行所需的全部配置，统一从环境变量读取。
type Config struct {
	Port           string
	DatabaseDSN    string
	JWTSecret      string
	Env            string
	SessionTTLDays int
	AllowRegister  bool
	MediaDir       string
}

func getenv(key, def string) string {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	return v
}

func getenvInt(key string, def int) int {
	n, err := strconv.Atoi(getenv(key, ""))
	if err != nil || n <= 0 {
		return def
	}
	return n
}

// Load 读取环境变量并填充默认值。
// ALLOW_REGISTER 默认关闭，必须显式设为 "true" 才开放注册。
func Load() Config {
	return Config{
		Port:           getenv("APP_PORT", "8080"),
		DatabaseDSN:    getenv("DATABASE_DSN", "host=localhost user=postgres password=postgres dbname=chat port=5432 sslmode=disable TimeZone=UTC"),
		JWTSecret:      getenv("JWT_SECRET", "dev-secret-change-me"),
		Env:            getenv("APP_ENV", "dev"),
		SessionTTLDays: getenvInt("SESSION_TTL_DAYS", 7),
		AllowRegister:  strings.EqualFold(getenv("ALLOW_REGISTER", "false"), "true"),
		MediaDir:       getenv("MEDIA_DIR", "./data/media"),
	}
}

// Validate 检查配置的基本健全性，非 dev 环境禁止使用默认密钥。
func Validate(cfg Config) error {
	if cfg.Port == "" {
		return errors.New("config: port is empty")
	}
	if cfg.DatabaseDSN == "" {
		return errors.New("config: database dsn is empty")
	}
	if cfg.JWTSecret == "" {
		return errors.New("config: jwt secret is empty")
	}
	if cfg.Env != "dev" && cfg.JWTSecret == "dev-secret-change-me" {
		return errors.New("config: default jwt secret outside dev")
	}
	if cfg.SessionTTLDays <= 0 {
		return errors.New("config: session ttl must be positive")
	}
	return nil
}
