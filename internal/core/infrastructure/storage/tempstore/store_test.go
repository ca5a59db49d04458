package temp

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"

	temporaryconfig "github.com/weisyn/zkhost/internal/config/storage/temporary"
	"github.com/weisyn/zkhost/internal/core/ispc/testutil"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	store, err := New(testutil.NewTestTempConfig(t), testutil.NewTestLogger())
	require.NoError(t, err)
	t.Cleanup(func() { _ = store.Close() })
	return store
}

// TestCreateAndRemoveTempDir 测试创建与删除
func TestCreateAndRemoveTempDir(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	dir, err := store.CreateTempDir(ctx, "zkv")
	require.NoError(t, err)
	require.True(t, strings.HasPrefix(filepath.Base(dir.Path), "zkv_"))
	require.Equal(t, store.Root(), filepath.Dir(dir.Path))
	_, err = uuid.Parse(dir.ID)
	require.NoError(t, err)

	info, err := os.Stat(dir.Path)
	require.NoError(t, err)
	require.True(t, info.IsDir())
	require.Equal(t, os.FileMode(0700), info.Mode().Perm())
	require.Equal(t, 1, store.ActiveCount())

	require.NoError(t, os.WriteFile(filepath.Join(dir.Path, "proof"), []byte{1}, 0600))
	require.NoError(t, store.RemoveTempDir(ctx, dir.ID))
	_, err = os.Stat(dir.Path)
	require.True(t, os.IsNotExist(err))
	require.Equal(t, 0, store.ActiveCount())

	// 重复删除不报错
	require.NoError(t, store.RemoveTempDir(ctx, dir.ID))
}

// TestCreateTempDirRejectsBadPrefix 前缀不能包含分隔符
func TestCreateTempDirRejectsBadPrefix(t *testing.T) {
	store := newTestStore(t)
	for _, prefix := range []string{"../x", "a/b", "a_b"} {
		_, err := store.CreateTempDir(context.Background(), prefix)
		require.Error(t, err, prefix)
	}
}

// TestConcurrentCreateUnique 并发创建的目录互不相同
func TestConcurrentCreateUnique(t *testing.T) {
	store := newTestStore(t)
	const n = 32

	var (
		wg    sync.WaitGroup
		mu    sync.Mutex
		paths = make(map[string]struct{})
	)
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			dir, err := store.CreateTempDir(context.Background(), "zkv")
			if err != nil {
				t.Error(err)
				return
			}
			mu.Lock()
			paths[dir.Path] = struct{}{}
			mu.Unlock()
		}()
	}
	wg.Wait()

	require.Len(t, paths, n)
	require.Equal(t, n, store.ActiveCount())
}

// TestMaxActive 达到上限后拒绝创建
func TestMaxActive(t *testing.T) {
	opts := testutil.NewTestTempConfig(t).GetOptions()
	opts.MaxActive = 1
	store, err := New(temporaryconfig.NewFromOptions(opts), testutil.NewTestLogger())
	require.NoError(t, err)
	defer store.Close()

	first, err := store.CreateTempDir(context.Background(), "zkv")
	require.NoError(t, err)

	_, err = store.CreateTempDir(context.Background(), "zkv")
	require.ErrorIs(t, err, ErrTooManyDirs)

	require.NoError(t, store.RemoveTempDir(context.Background(), first.ID))
	_, err = store.CreateTempDir(context.Background(), "zkv")
	require.NoError(t, err)
}

// TestSweepOnStart 启动时只回收属主已退出的目录
func TestSweepOnStart(t *testing.T) {
	if !lockSupported {
		t.Skip("平台不支持属主锁")
	}
	cfg := testutil.NewTestTempConfig(t)
	root := cfg.GetTempDir()
	require.NoError(t, os.MkdirAll(root, 0700))

	// 属主崩溃：锁文件存在但无人持有
	stale := filepath.Join(root, ownerPrefix+uuid.NewString())
	require.NoError(t, os.MkdirAll(filepath.Join(stale, "zkv_"+uuid.NewString(), "src"), 0700))
	require.NoError(t, os.WriteFile(stale+lockSuffix, nil, 0600))

	// 清理到一半：只剩目录
	orphan := filepath.Join(root, ownerPrefix+uuid.NewString())
	require.NoError(t, os.MkdirAll(orphan, 0700))

	foreign := filepath.Join(root, "keep_me")
	require.NoError(t, os.MkdirAll(foreign, 0700))

	store, err := New(cfg, testutil.NewTestLogger())
	require.NoError(t, err)
	defer store.Close()

	for _, path := range []string{stale, stale + lockSuffix, orphan} {
		_, err = os.Stat(path)
		require.True(t, os.IsNotExist(err), path)
	}
	_, err = os.Stat(foreign)
	require.NoError(t, err)
	_, err = os.Stat(store.Root())
	require.NoError(t, err)
}

// TestStoresShareRoot 共享根目录的两个存储互不删除对方的工作区
func TestStoresShareRoot(t *testing.T) {
	cfg := testutil.NewTestTempConfig(t)
	ctx := context.Background()

	first, err := New(cfg, testutil.NewTestLogger())
	require.NoError(t, err)
	defer first.Close()

	live, err := first.CreateTempDir(ctx, "noir")
	require.NoError(t, err)
	require.NoError(t, os.WriteFile(filepath.Join(live.Path, "proof"), []byte{1}, 0600))

	second, err := New(cfg, testutil.NewTestLogger())
	require.NoError(t, err)
	require.NotEqual(t, first.Root(), second.Root())

	_, err = os.Stat(filepath.Join(live.Path, "proof"))
	require.NoError(t, err, "另一个存储启动不应删除存活的工作区")

	other, err := second.CreateTempDir(ctx, "noir")
	require.NoError(t, err)
	require.NoError(t, second.Close())
	_, err = os.Stat(other.Path)
	require.True(t, os.IsNotExist(err))

	_, err = os.Stat(live.Path)
	require.NoError(t, err, "另一个存储关闭不应删除存活的工作区")
	require.NoError(t, first.RemoveTempDir(ctx, live.ID))
}

// TestCloseReleasesOwner 关闭后属主目录与锁文件都被删除
func TestCloseReleasesOwner(t *testing.T) {
	cfg := testutil.NewTestTempConfig(t)
	store, err := New(cfg, testutil.NewTestLogger())
	require.NoError(t, err)
	owner := store.Root()
	require.True(t, isOwnerName(filepath.Base(owner)))

	require.NoError(t, store.Close())
	_, err = os.Stat(owner)
	require.True(t, os.IsNotExist(err))
	_, err = os.Stat(owner + lockSuffix)
	require.True(t, os.IsNotExist(err))
	require.Empty(t, testutil.SnapshotDir(t, cfg.GetTempDir()))
}

// TestCloseRemovesActiveDirs 关闭时删除所有存活目录
func TestCloseRemovesActiveDirs(t *testing.T) {
	store, err := New(testutil.NewTestTempConfig(t), testutil.NewTestLogger())
	require.NoError(t, err)

	dir, err := store.CreateTempDir(context.Background(), "zkv")
	require.NoError(t, err)

	require.NoError(t, store.Close())
	_, err = os.Stat(dir.Path)
	require.True(t, os.IsNotExist(err))

	_, err = store.CreateTempDir(context.Background(), "zkv")
	require.ErrorIs(t, err, ErrStoreClosed)
	require.NoError(t, store.Close())
}

// TestCreateTempDirCanceled 已取消的 ctx 不创建目录
func TestCreateTempDirCanceled(t *testing.T) {
	store := newTestStore(t)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := store.CreateTempDir(ctx, "zkv")
	require.ErrorIs(t, err, context.Canceled)
	require.Empty(t, testutil.SnapshotDir(t, store.Root()))
}
