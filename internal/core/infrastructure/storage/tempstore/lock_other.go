//go:build !unix

package temp

import "os"

// 无 flock 的平台不回收其他进程的属主目录
const lockSupported = false

func tryLockFile(*os.File) (bool, error) { return false, nil }

func unlockFile(*os.File) error { return nil }
