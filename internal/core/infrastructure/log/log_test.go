package log

import (
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	logconfig "github.com/weisyn/zkhost/internal/config/log"
)

// TestFileLogJSON 测试文件输出为 JSON 且包含结构化字段
func TestFileLogJSON(t *testing.T) {
	logPath := filepath.Join(t.TempDir(), "logs", "zkhost.log")
	cfg := logconfig.New(&logconfig.LogOptions{
		Level:      DebugLevel,
		FilePath:   logPath,
		MaxSize:    1,
		MaxBackups: 1,
		MaxAge:     1,
	})

	logger, err := New(cfg)
	require.NoError(t, err)

	logger.With("module", "zkverify", "backend", "groth16").Info("验证完成")
	logger.Debug("调试日志")
	require.NoError(t, logger.Sync())

	content, err := os.ReadFile(logPath)
	require.NoError(t, err)

	lines := strings.Split(strings.TrimSpace(string(content)), "\n")
	require.Len(t, lines, 2)

	var entry map[string]interface{}
	require.NoError(t, json.Unmarshal([]byte(lines[0]), &entry))
	require.Equal(t, "验证完成", entry["message"])
	require.Equal(t, "info", entry["level"])
	require.Equal(t, "zkverify", entry["module"])
	require.Equal(t, "groth16", entry["backend"])
}

// TestLevelFilter 测试级别过滤
func TestLevelFilter(t *testing.T) {
	logPath := filepath.Join(t.TempDir(), "warn.log")
	logger, err := New(logconfig.New(&logconfig.LogOptions{Level: WarnLevel, FilePath: logPath}))
	require.NoError(t, err)

	logger.Info("不应出现")
	logger.Warnf("告警 %d", 7)
	require.NoError(t, logger.Sync())

	content, err := os.ReadFile(logPath)
	require.NoError(t, err)
	require.NotContains(t, string(content), "不应出现")
	require.Contains(t, string(content), "告警 7")
}

// TestWithOddArgs 奇数个键值参数时丢弃最后一个
func TestWithOddArgs(t *testing.T) {
	core, logs := observer.New(zapcore.DebugLevel)
	logger := NewFromZap(zap.New(core))

	logger.With("module", "hostabi", "dangling").Info("x")

	entries := logs.All()
	require.Len(t, entries, 1)
	fields := entries[0].ContextMap()
	require.Equal(t, "hostabi", fields["module"])
	require.Len(t, fields, 1)
}

// TestNewModuleLogger 测试 module 字段附加
func TestNewModuleLogger(t *testing.T) {
	require.Nil(t, NewModuleLogger(nil, "wasm"))

	core, logs := observer.New(zapcore.InfoLevel)
	logger := NewModuleLogger(NewFromZap(zap.New(core)), "workspace")
	logger.Infof("创建工作区 %s", "zkv_1")

	require.Equal(t, 1, logs.FilterField(zap.String("module", "workspace")).Len())
}

// TestGlobalLogger 测试全局日志器替换
func TestGlobalLogger(t *testing.T) {
	old := GetLogger()
	t.Cleanup(func() { SetLogger(old) })

	core, logs := observer.New(zapcore.InfoLevel)
	SetLogger(NewFromZap(zap.New(core)))
	SetLogger(nil)

	GetLogger().Info("global")
	require.Equal(t, 1, logs.Len())
}
