package config

import (
	"os"
	"testing"
)

func TestLoad_DefaultValues(t *testing.T) {
	// 清除环境变量
	os.Clearenv()

	cfg := Load()

	// 检查默认值
	if cfg.Remote.BaseURL != "http://localhost:8080" {
		t.Errorf("Expected MES_API_BASE_URL default 'http://localhost:8080', got '%s'", cfg.Remote.BaseURL)
	}

	if cfg.Remote.TimeoutSeconds != 15 {
		t.Errorf("Expected MES_API_TIMEOUT default 15, got %d", cfg.Remote.TimeoutSeconds)
	}

	if cfg.Remote.RetryCount != 3 {
		t.Errorf("Expected MES_API_RETRY default 3, got %d", cfg.Remote.RetryCount)
	}

	if !cfg.Redis.Enabled {
		t.Error("Expected REDIS_ENABLED default true")
	}

	if cfg.Redis.Addr != "localhost:6379" {
		t.Errorf("Expected REDIS_ADDR default 'localhost:6379', got '%s'", cfg.Redis.Addr)
	}

	if cfg.Redis.SnapshotTTLSeconds != 300 {
		t.Errorf("Expected SNAPSHOT_TTL default 300, got %d", cfg.Redis.SnapshotTTLSeconds)
	}

	if cfg.Refresh.IntervalSeconds != 60 {
		t.Errorf("Expected REFRESH_INTERVAL default 60, got %d", cfg.Refresh.IntervalSeconds)
	}

	if cfg.AutoSave.QuietMillis != 300 {
		t.Errorf("Expected AUTOSAVE_QUIET_MS default 300, got %d", cfg.AutoSave.QuietMillis)
	}

	if cfg.Log.Level != "info" {
		t.Errorf("Expected LOG_LEVEL default 'info', got '%s'", cfg.Log.Level)
	}
}

func TestLoad_EnvironmentVariables(t *testing.T) {
	// 设置环境变量
	os.Setenv("MES_API_BASE_URL", "http://mes.example.local:9000")
	os.Setenv("MES_API_TIMEOUT", "30")
	os.Setenv("REDIS_ENABLED", "false")
	os.Setenv("REFRESH_INTERVAL", "10")
	os.Setenv("AUTOSAVE_QUIET_MS", "500")
	os.Setenv("LOG_LEVEL", "debug")
	defer os.Clearenv()

	cfg := Load()

	if cfg.Remote.BaseURL != "http://mes.example.local:9000" {
		t.Errorf("Expected base URL from env, got '%s'", cfg.Remote.BaseURL)
	}

	if cfg.Remote.TimeoutSeconds != 30 {
		t.Errorf("Expected timeout 30, got %d", cfg.Remote.TimeoutSeconds)
	}

	if cfg.Redis.Enabled {
		t.Error("Expected redis disabled")
	}

	if cfg.Refresh.IntervalSeconds != 10 {
		t.Errorf("Expected refresh interval 10, got %d", cfg.Refresh.IntervalSeconds)
	}

	if cfg.AutoSave.QuietMillis != 500 {
		t.Errorf("Expected quiet window 500ms, got %d", cfg.AutoSave.QuietMillis)
	}

	if cfg.Log.Level != "debug" {
		t.Errorf("Expected LOG_LEVEL 'debug', got '%s'", cfg.Log.Level)
	}
}

func TestLoad_InvalidIntFallsBack(t *testing.T) {
	os.Clearenv()
	os.Setenv("MES_API_TIMEOUT", "not-a-number")
	defer os.Clearenv()

	cfg := Load()

	if cfg.Remote.TimeoutSeconds != 15 {
		t.Errorf("Expected fallback timeout 15, got %d", cfg.Remote.TimeoutSeconds)
	}
}
