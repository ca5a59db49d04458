package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/weisyn/zkhost/pkg/types"
)

// TestGetZKVerify 测试验证配置的默认值与覆盖
func TestGetZKVerify(t *testing.T) {
	t.Run("未配置时使用默认值", func(t *testing.T) {
		provider := NewProvider(&types.AppConfig{})
		opts := provider.GetZKVerify()

		assert.Equal(t, []types.CurveTag{types.CurveBN254, types.CurveBLS12_377, types.CurveBLS12_381}, opts.EnabledCurves)
		assert.Equal(t, 256, opts.MaxPublicInputs)
		assert.Equal(t, "./binaries/nargo-linux", opts.Toolchain.VerifierPath)
		assert.Equal(t, []string{"verify", "--workspace"}, opts.Toolchain.VerifierArgs)
		assert.Equal(t, "rollup", opts.Toolchain.PackageName)
		assert.Empty(t, opts.Receipt.VerifyingKeyPath)
	})

	t.Run("只覆盖出现的字段", func(t *testing.T) {
		cfg := &types.AppConfig{
			ZKVerify: &types.UserZKVerifyConfig{
				EnabledCurves:   []string{"bn254", "secp256k1"},
				MaxPublicInputs: types.IntPtr(8),
				CircuitSetDir:   types.StringPtr("/var/lib/zkhost/circuits"),
				Toolchain: &types.UserToolchainConfig{
					VerifierPath: types.StringPtr("/opt/nargo"),
				},
				Receipt: &types.UserReceiptConfig{
					VerifyingKeyPath: types.StringPtr("/etc/zkhost/receipt.vk"),
				},
			},
		}
		opts := NewProvider(cfg).GetZKVerify()

		assert.Equal(t, []types.CurveTag{types.CurveBN254}, opts.EnabledCurves, "未知曲线应被忽略")
		assert.Equal(t, 8, opts.MaxPublicInputs)
		assert.Equal(t, "/var/lib/zkhost/circuits", opts.CircuitSetDir)
		assert.Equal(t, "/opt/nargo", opts.Toolchain.VerifierPath)
		assert.Equal(t, "./circuits/rollup", opts.Toolchain.CircuitDir)
		assert.Equal(t, "/etc/zkhost/receipt.vk", opts.Receipt.VerifyingKeyPath)
	})
}

// TestGetTemporary 测试工作区根目录的推导
func TestGetTemporary(t *testing.T) {
	t.Run("默认位于系统临时目录", func(t *testing.T) {
		opts := NewProvider(nil).GetTemporary()
		assert.Equal(t, filepath.Join(os.TempDir(), "zkhost-workspaces"), opts.TempPath)
		assert.Equal(t, 0700, opts.DirPerm)
	})

	t.Run("data_root 下的 temp 子目录", func(t *testing.T) {
		root := t.TempDir()
		cfg := &types.AppConfig{Storage: &types.UserStorageConfig{DataRoot: types.StringPtr(root)}}
		opts := NewProvider(cfg).GetTemporary()
		assert.Equal(t, filepath.Join(root, "temp"), opts.TempPath)
	})

	t.Run("workspace_root 优先", func(t *testing.T) {
		root := t.TempDir()
		cfg := &types.AppConfig{
			Storage: &types.UserStorageConfig{DataRoot: types.StringPtr("/ignored")},
			ZKVerify: &types.UserZKVerifyConfig{
				Toolchain: &types.UserToolchainConfig{WorkspaceRoot: types.StringPtr(root)},
			},
		}
		opts := NewProvider(cfg).GetTemporary()
		assert.Equal(t, root, opts.TempPath)
	})
}

// TestParseAppConfig 测试 JSON 配置解析
func TestParseAppConfig(t *testing.T) {
	t.Run("空内容得到空配置", func(t *testing.T) {
		cfg, err := ParseAppConfig([]byte("  "))
		require.NoError(t, err)
		require.NotNil(t, cfg)
		assert.Nil(t, cfg.ZKVerify)
	})

	t.Run("解析嵌套字段", func(t *testing.T) {
		cfg, err := ParseAppConfig([]byte(`{
			"log": {"level": "debug"},
			"zkverify": {"max_bundle_size": 1024, "toolchain": {"package_name": "vrf"}}
		}`))
		require.NoError(t, err)
		require.NotNil(t, cfg.Log)
		assert.Equal(t, "debug", *cfg.Log.Level)
		assert.Equal(t, uint32(1024), *cfg.ZKVerify.MaxBundleSize)

		opts := NewProvider(cfg).GetZKVerify()
		assert.Equal(t, "vrf", opts.Toolchain.PackageName)
		assert.Equal(t, uint32(1024), opts.MaxBundleSize)
	})

	t.Run("拒绝未知字段", func(t *testing.T) {
		_, err := ParseAppConfig([]byte(`{"zkverfy": {}}`))
		require.Error(t, err)
	})

	t.Run("从文件加载", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "zkhost.json")
		require.NoError(t, os.WriteFile(path, []byte(`{"app_name":"zkhost"}`), 0600))
		cfg, err := LoadAppConfig(path)
		require.NoError(t, err)
		assert.Equal(t, "zkhost", *cfg.AppName)
	})
}

// TestValidateAppConfig 测试启动期配置校验
func TestValidateAppConfig(t *testing.T) {
	require.NoError(t, ValidateAppConfig(nil))
	require.NoError(t, ValidateAppConfig(&types.AppConfig{}))

	err := ValidateAppConfig(&types.AppConfig{
		Log: &types.UserLogConfig{Level: types.StringPtr("verbose")},
		ZKVerify: &types.UserZKVerifyConfig{
			EnabledCurves: []string{"bn254", "bw6-761"},
			Toolchain:     &types.UserToolchainConfig{PackageName: types.StringPtr("../x")},
		},
		Metrics: &types.UserMetricsConfig{Path: types.StringPtr("metrics")},
	})
	require.Error(t, err)

	var verrs *ValidationErrors
	require.ErrorAs(t, err, &verrs)
	assert.Len(t, verrs.Errors, 4)
	assert.Contains(t, err.Error(), "log.level")
	assert.Contains(t, err.Error(), "bw6-761")
}

// TestGetMetrics 测试指标端点配置
func TestGetMetrics(t *testing.T) {
	opts := NewProvider(nil).GetMetrics()
	assert.Empty(t, opts.ListenAddr, "默认不开启")
	assert.Equal(t, "/metrics", opts.Path)

	cfg := &types.AppConfig{Metrics: &types.UserMetricsConfig{
		ListenAddr: types.StringPtr(" 127.0.0.1:9464 "),
		Path:       types.StringPtr("/zk"),
	}}
	opts = NewProvider(cfg).GetMetrics()
	assert.Equal(t, "127.0.0.1:9464", opts.ListenAddr)
	assert.Equal(t, "/zk", opts.Path)
}
