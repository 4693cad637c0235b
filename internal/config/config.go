package config

import (
	"os"
	"strconv"
)

// Config wisescheduling-timeline 服务配置
type Config struct {
	// Remote 远端持久化服务（MES API）
	Remote struct {
		BaseURL        string
		TimeoutSeconds int
		RetryCount     int
	}

	// Redis 时间线快照缓存
	Redis struct {
		Enabled  bool
		Addr     string
		Password string
		DB       int
		// SnapshotTTLSeconds 快照过期时间（秒），0 表示不过期
		SnapshotTTLSeconds int
	}

	// Refresh 定时全量刷新
	Refresh struct {
		IntervalSeconds int
	}

	// AutoSave 字段级自动保存去抖
	AutoSave struct {
		QuietMillis int
	}

	Log struct {
		Level  string
		Format string
	}
}

// Load 从环境变量加载配置（带默认值）
func Load() *Config {
	cfg := &Config{}

	cfg.Remote.BaseURL = getEnv("MES_API_BASE_URL", "http://localhost:8080")
	cfg.Remote.TimeoutSeconds = parseInt(getEnv("MES_API_TIMEOUT", "15"), 15)
	cfg.Remote.RetryCount = parseInt(getEnv("MES_API_RETRY", "3"), 3)

	cfg.Redis.Enabled = getEnv("REDIS_ENABLED", "true") == "true"
	cfg.Redis.Addr = getEnv("REDIS_ADDR", "localhost:6379")
	cfg.Redis.Password = getEnv("REDIS_PASSWORD", "")
	cfg.Redis.DB = parseInt(getEnv("REDIS_DB", "0"), 0)
	cfg.Redis.SnapshotTTLSeconds = parseInt(getEnv("SNAPSHOT_TTL", "300"), 300)

	cfg.Refresh.IntervalSeconds = parseInt(getEnv("REFRESH_INTERVAL", "60"), 60)

	// 去抖静默窗口：同一目标连续编辑只发最后一次请求
	cfg.AutoSave.QuietMillis = parseInt(getEnv("AUTOSAVE_QUIET_MS", "300"), 300)

	cfg.Log.Level = getEnv("LOG_LEVEL", "info")
	cfg.Log.Format = getEnv("LOG_FORMAT", "json")

	return cfg
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func parseInt(s string, defaultValue int) int {
	if v, err := strconv.Atoi(s); err == nil {
		return v
	}
	return defaultValue
}
