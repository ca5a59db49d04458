// Package storage 定义验证工作区所用的临时存储接口
//
// ⏳ **临时目录 (Ephemeral Workspace)**
//
// 每次外部工具链验证调用独占一个唯一命名的临时目录，
// 调用返回前（无论成功、失败还是中止）必须删除。
package storage

import "context"

// TempDir 已创建的临时目录
type TempDir struct {
	// ID 唯一标识（uuid）
	ID string
	// Path 目录绝对路径，形如 <root>/<prefix>_<id>
	Path string
}

// TempStore 临时目录存储
type TempStore interface {
	// CreateTempDir 创建唯一命名的临时目录
	// 目录以排他方式创建，不会复用已存在的路径
	CreateTempDir(ctx context.Context, prefix string) (*TempDir, error)

	// RemoveTempDir 递归删除临时目录
	// 目录不存在时不返回错误
	RemoveTempDir(ctx context.Context, id string) error

	// ActiveCount 当前尚未删除的临时目录数量
	ActiveCount() int

	// Root 本进程工作区所在目录（共享根目录下的属主子目录）
	Root() string

	// Close 关闭存储并删除所有仍存在的临时目录
	Close() error
}
