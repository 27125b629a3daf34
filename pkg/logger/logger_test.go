package logger

import (
	"testing"

	"college-schedule/backend/config"
)

func TestNewLogger(t *testing.T) {
	for _, format := range []string{"json", "console"} {
		l, err := NewLogger(&config.LogConfig{Level: "info", Format: format})
		if err != nil {
			t.Fatalf("format=%s 初始化失败: %v", format, err)
		}
		_ = l.Sync()
	}
}

func TestNewLogger_InvalidLevel(t *testing.T) {
	if _, err := NewLogger(&config.LogConfig{Level: "verbose", Format: "json"}); err == nil {
		t.Error("期望无效级别返回错误")
	}
}

func TestNewLogger_LevelCaseInsensitive(t *testing.T) {
	l, err := NewLogger(&config.LogConfig{Level: " DEBUG ", Format: "json"})
	if err != nil {
		t.Fatalf("期望大小写不敏感，实际: %v", err)
	}
	if !l.Core().Enabled(-1) {
		t.Error("期望启用 debug 级别")
	}
}
