//go:build unix

package temp

import (
	"errors"
	"os"

	"golang.org/x/sys/unix"
)

const lockSupported = true

// tryLockFile 非阻塞获取排他锁，锁被其他打开者持有时返回 false
// 进程退出（包括崩溃）时内核自动释放
func tryLockFile(f *os.File) (bool, error) {
	err := unix.Flock(int(f.Fd()), unix.LOCK_EX|unix.LOCK_NB)
	switch {
	case err == nil:
		return true, nil
	case errors.Is(err, unix.EWOULDBLOCK):
		return false, nil
	default:
		return false, err
	}
}

func unlockFile(f *os.File) error {
	return unix.Flock(int(f.Fd()), unix.LOCK_UN)
}
