package app

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/weisyn/zkhost/internal/core/ispc/engines/wasm"
	"github.com/weisyn/zkhost/internal/core/ispc/hostabi"
	"github.com/weisyn/zkhost/internal/core/ispc/testutil"
	"github.com/weisyn/zkhost/pkg/types"
)

func testAppConfig(t *testing.T) *types.AppConfig {
	t.Helper()
	dataRoot := t.TempDir()
	level := "error"
	return &types.AppConfig{
		Log:     &types.UserLogConfig{Level: &level},
		Storage: &types.UserStorageConfig{DataRoot: &dataRoot},
	}
}

func TestStart_WiresSubsystem(t *testing.T) {
	a, err := Start(WithAppConfig(testAppConfig(t)))
	require.NoError(t, err)

	assert.Equal(t,
		[]types.BackendTag{types.BackendGroth16, types.BackendToolchain, types.BackendReceipt},
		a.Dispatcher().Backends())
	require.NotNil(t, a.Engine())
	require.NotNil(t, a.HostFunctions())

	// 宿主函数已注册到引擎：ABI 版本查询经由合约调用返回
	results, err := a.Engine().Execute(context.Background(),
		testutil.ForwarderModule(hostabi.FuncZKVerifierABIVersion, 0),
		wasm.Call{Entry: testutil.ForwarderExport})
	require.NoError(t, err)
	assert.Equal(t, []uint64{uint64(hostabi.ABIVersion())}, results)

	require.NoError(t, a.Stop())
}

func TestStart_ConfigSources(t *testing.T) {
	dataRoot := t.TempDir()
	raw := []byte(`{"log":{"level":"error"},"storage":{"data_root":"` + filepath.ToSlash(dataRoot) + `"}}`)

	a, err := Start(WithEmbeddedConfig(raw))
	require.NoError(t, err)
	require.NoError(t, a.Stop())

	path := filepath.Join(t.TempDir(), "zkhost.json")
	require.NoError(t, os.WriteFile(path, raw, 0o600))
	a, err = Start(WithConfigFile(path))
	require.NoError(t, err)
	require.NoError(t, a.Stop())
}

func TestStart_InvalidConfig(t *testing.T) {
	_, err := Start(WithEmbeddedConfig([]byte(`{"unknown_section":{}}`)))
	require.Error(t, err)

	_, err = Start(WithConfigFile(filepath.Join(t.TempDir(), "missing.json")))
	require.Error(t, err)
}

func TestOptions_Priority(t *testing.T) {
	appConfig := testAppConfig(t)
	o := newOptions(WithConfigFile("does-not-exist.json"), WithAppConfig(appConfig))
	require.NoError(t, o.resolve())
	assert.Same(t, appConfig, o.GetAppConfig())

	o = newOptions()
	require.NoError(t, o.resolve())
	assert.NotNil(t, o.GetAppConfig())
}

func TestStart_WithMetricsEndpoint(t *testing.T) {
	appConfig := testAppConfig(t)
	appConfig.Metrics = &types.UserMetricsConfig{ListenAddr: types.StringPtr("127.0.0.1:0")}

	a, err := Start(WithAppConfig(appConfig))
	require.NoError(t, err)
	require.NoError(t, a.Stop())
}
