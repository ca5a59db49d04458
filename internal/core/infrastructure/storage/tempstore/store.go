// Package temp 提供基于文件系统的验证工作区存储
package temp

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	temporaryconfig "github.com/weisyn/zkhost/internal/config/storage/temporary"
	"github.com/weisyn/zkhost/pkg/interfaces/infrastructure/log"
	"github.com/weisyn/zkhost/pkg/interfaces/infrastructure/storage"
)

// 工作区目录名前缀
const managedPrefix = "zkv"

// ==================== 进程属主目录 ====================
//
// 根目录可能被多个进程共享，布局为：
//   <root>/proc_<uuid>.lock   属主锁文件，进程存活期间持有排他锁
//   <root>/proc_<uuid>/       该进程的全部工作区 <prefix>_<uuid>
// 启动清理只回收锁可以获取到的属主目录，即属主进程已退出。

const (
	ownerPrefix = "proc_"
	lockSuffix  = ".lock"
)

var (
	// ErrStoreClosed 存储已关闭
	ErrStoreClosed = errors.New("temp store closed")
	// ErrTooManyDirs 同时存在的临时目录数量达到上限
	ErrTooManyDirs = errors.New("too many active temp dirs")
)

// tempDirRecord 临时目录记录
type tempDirRecord struct {
	ID         string
	Path       string
	CreateTime time.Time
}

// Store 实现 storage.TempStore
type Store struct {
	config   *temporaryconfig.Config
	logger   log.Logger
	baseDir  string
	tempDir  string
	lockPath string
	lockFile *os.File
	mu       sync.Mutex
	dirs     map[string]*tempDirRecord
	closed   bool
}

var _ storage.TempStore = (*Store)(nil)

// New 创建工作区存储
//
// 根目录不存在时创建，并在其下建立本进程的属主目录；
// 启用 SweepOnStart 时回收属主进程已退出的遗留目录。
func New(config *temporaryconfig.Config, logger log.Logger) (*Store, error) {
	baseDir := config.GetTempDir()
	if abs, err := filepath.Abs(baseDir); err == nil {
		baseDir = abs
	}

	if err := os.MkdirAll(baseDir, config.GetDirectoryPermissions()); err != nil {
		return nil, fmt.Errorf("无法创建临时存储目录 %s: %w", baseDir, err)
	}

	store := &Store{
		config:  config,
		logger:  logger,
		baseDir: baseDir,
		dirs:    make(map[string]*tempDirRecord),
	}
	if err := store.acquireOwner(); err != nil {
		return nil, err
	}

	if config.IsSweepOnStartEnabled() {
		store.sweepLeftovers()
	}

	logger.Debugf("临时存储初始化成功，目录: %s", store.tempDir)
	return store, nil
}

// acquireOwner 创建并锁定本进程的属主锁文件，再创建属主目录
func (s *Store) acquireOwner() error {
	for i := 0; i < 3; i++ {
		name := ownerPrefix + uuid.NewString()
		lockPath := filepath.Join(s.baseDir, name+lockSuffix)

		f, err := os.OpenFile(lockPath, os.O_CREATE|os.O_EXCL|os.O_RDWR, s.config.GetFilePermissions())
		if err != nil {
			if os.IsExist(err) {
				continue
			}
			return fmt.Errorf("创建属主锁文件失败: %w", err)
		}

		locked, err := tryLockFile(f)
		if err != nil {
			_ = f.Close()
			_ = os.Remove(lockPath)
			return fmt.Errorf("锁定属主锁文件失败: %w", err)
		}
		// 加锁前可能被其他进程的启动清理回收
		if (lockSupported && !locked) || !isSameFile(f, lockPath) {
			_ = f.Close()
			continue
		}

		dir := filepath.Join(s.baseDir, name)
		if err := os.Mkdir(dir, s.config.GetDirectoryPermissions()); err != nil {
			_ = os.Remove(lockPath)
			_ = unlockFile(f)
			_ = f.Close()
			return fmt.Errorf("创建属主目录失败: %w", err)
		}

		s.tempDir = dir
		s.lockPath = lockPath
		s.lockFile = f
		return nil
	}
	return fmt.Errorf("生成唯一属主目录失败")
}

func isSameFile(f *os.File, path string) bool {
	held, err := f.Stat()
	if err != nil {
		return false
	}
	current, err := os.Stat(path)
	if err != nil {
		return false
	}
	return os.SameFile(held, current)
}

// CreateTempDir 创建唯一命名的临时目录
//
// 名称为 <prefix>_<uuid>，使用 os.Mkdir 排他创建，
// 因此并发调用之间、与其他进程之间都不会共用目录。
func (s *Store) CreateTempDir(ctx context.Context, prefix string) (*storage.TempDir, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if prefix == "" {
		prefix = managedPrefix
	}
	if strings.ContainsAny(prefix, `/\_`) {
		return nil, fmt.Errorf("非法目录前缀: %q", prefix)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return nil, ErrStoreClosed
	}
	if limit := s.config.GetMaxActive(); limit > 0 && len(s.dirs) >= limit {
		return nil, fmt.Errorf("%w: limit=%d", ErrTooManyDirs, limit)
	}

	for i := 0; i < 3; i++ {
		id, err := uuid.NewRandom()
		if err != nil {
			return nil, fmt.Errorf("生成临时目录ID失败: %w", err)
		}

		dirname := fmt.Sprintf("%s_%s", prefix, id.String())
		fullPath := filepath.Join(s.tempDir, dirname)

		if err := os.Mkdir(fullPath, s.config.GetDirectoryPermissions()); err != nil {
			if os.IsExist(err) {
				continue
			}
			return nil, fmt.Errorf("创建临时目录失败: %w", err)
		}

		s.dirs[id.String()] = &tempDirRecord{
			ID:         id.String(),
			Path:       fullPath,
			CreateTime: time.Now(),
		}

		s.logger.Debugf("创建临时目录成功: %s", dirname)
		return &storage.TempDir{ID: id.String(), Path: fullPath}, nil
	}

	return nil, fmt.Errorf("生成唯一临时目录失败")
}

// RemoveTempDir 递归删除临时目录
//
// 不检查 ctx：删除在 defer 中执行，调用方的 ctx 可能已经取消。
func (s *Store) RemoveTempDir(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	record, exists := s.dirs[id]
	if !exists {
		return nil
	}

	if err := os.RemoveAll(record.Path); err != nil && !os.IsNotExist(err) {
		s.logger.Warnf("删除临时目录失败 %s: %v", record.Path, err)
		return fmt.Errorf("删除临时目录失败: %w", err)
	}

	delete(s.dirs, id)
	s.logger.Debugf("删除临时目录成功: ID: %s, 存活: %v", id, time.Since(record.CreateTime))
	return nil
}

// ActiveCount 当前尚未删除的临时目录数量
func (s *Store) ActiveCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.dirs)
}

// Root 本进程工作区所在的属主目录
func (s *Store) Root() string {
	return s.tempDir
}

// sweepLeftovers 回收属主进程已退出的遗留目录
// 只处理 proc_<uuid> 命名的目录与锁文件，不触碰根目录下的其他内容
func (s *Store) sweepLeftovers() {
	if !lockSupported {
		s.logger.Debug("当前平台不支持属主锁，跳过遗留工作区清理")
		return
	}

	entries, err := os.ReadDir(s.baseDir)
	if err != nil {
		s.logger.Warnf("扫描临时目录失败: %v", err)
		return
	}

	own := filepath.Base(s.tempDir)
	owners := make(map[string]struct{})
	for _, entry := range entries {
		name := strings.TrimSuffix(entry.Name(), lockSuffix)
		if name == own || !isOwnerName(name) {
			continue
		}
		owners[name] = struct{}{}
	}

	removed := 0
	for name := range owners {
		reclaimed, err := s.reclaimOwner(name)
		if err != nil {
			s.logger.Warnf("清理遗留工作区失败 %s: %v", name, err)
			continue
		}
		if reclaimed {
			removed++
		}
	}

	if removed > 0 {
		s.logger.Infof("清理遗留工作区: %d 个属主目录", removed)
	}
}

// reclaimOwner 锁可获取时删除属主目录与锁文件；锁被持有说明属主仍在运行
func (s *Store) reclaimOwner(name string) (bool, error) {
	dir := filepath.Join(s.baseDir, name)
	lockPath := dir + lockSuffix

	f, err := os.OpenFile(lockPath, os.O_RDWR, 0)
	if os.IsNotExist(err) {
		// 锁文件先于目录创建、晚于目录删除，没有锁文件的目录已无属主
		return true, os.RemoveAll(dir)
	}
	if err != nil {
		return false, err
	}
	defer f.Close()

	locked, err := tryLockFile(f)
	if err != nil || !locked {
		return false, err
	}
	defer func() { _ = unlockFile(f) }()

	if err := os.RemoveAll(dir); err != nil {
		return false, err
	}
	if err := os.Remove(lockPath); err != nil && !os.IsNotExist(err) {
		return false, err
	}
	return true, nil
}

// isOwnerName 判断名称是否形如 proc_<uuid>
func isOwnerName(name string) bool {
	if !strings.HasPrefix(name, ownerPrefix) {
		return false
	}
	_, err := uuid.Parse(strings.TrimPrefix(name, ownerPrefix))
	return err == nil
}

// Close 关闭存储，删除所有仍存在的临时目录并释放属主目录
func (s *Store) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return nil
	}
	s.closed = true

	var errs []error
	for id, record := range s.dirs {
		if err := os.RemoveAll(record.Path); err != nil {
			errs = append(errs, err)
			continue
		}
		delete(s.dirs, id)
	}

	if err := os.RemoveAll(s.tempDir); err != nil {
		errs = append(errs, err)
	}
	if err := os.Remove(s.lockPath); err != nil && !os.IsNotExist(err) {
		errs = append(errs, err)
	}
	_ = unlockFile(s.lockFile)
	if err := s.lockFile.Close(); err != nil {
		errs = append(errs, err)
	}

	s.logger.Debug("临时存储已关闭")
	return errors.Join(errs...)
}
