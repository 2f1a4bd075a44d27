package config

import (
	"os"
	"strconv"

	"github.com/joho/godotenv"
	"go.uber.org/fx"
)

type Config struct {
	AccessToken         string
	Port                string
	MaxUploadSizeMB     int
	ScratchDir          string
	TargetExtension     string
	LogLevel            string
	AuditLogEnabled     bool
	AuditLogFilePath    string
	AuditLogSizeLimitMB int
}

func NewConfig() *Config {
	// A missing .env is the normal case outside local development.
	_ = godotenv.Load()

	return &Config{
		AccessToken:         getEnv("ACCESS_TOKEN", ""),
		Port:                getEnv("PORT", "8000"),
		MaxUploadSizeMB:     getEnvInt("MAX_UPLOAD_SIZE_MB", 50),
		ScratchDir:          getEnv("SCRATCH_DIR", os.TempDir()),
		TargetExtension:     getEnv("TARGET_EXTENSION", ".xml"),
		LogLevel:            getEnv("LOG_LEVEL", "info"),
		AuditLogEnabled:     getEnvBool("AUDIT_LOG_ENABLED", false),
		AuditLogFilePath:    getEnv("AUDIT_LOG_FILE_PATH", "/var/log/archive-inspector/audit.jsonl"),
		AuditLogSizeLimitMB: getEnvInt("AUDIT_LOG_SIZE_LIMIT_MB", 100),
	}
}

func (c *Config) MaxUploadSizeBytes() int64 {
	return int64(c.MaxUploadSizeMB) * 1024 * 1024
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if b, err := strconv.ParseBool(value); err == nil {
			return b
		}
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if i, err := strconv.Atoi(value); err == nil {
			return i
		}
	}
	return defaultValue
}

var Module = fx.Options(
	fx.Provide(NewConfig),
)
