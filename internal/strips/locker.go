package strips

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/gofrs/flock"
)

// Locker 按校验和串行化 put 与 purge
type Locker interface {
	Lock(ctx context.Context, checksum string) (unlock func(), err error)
}

// FileLocker 基于 flock 的跨进程锁，按校验和前两位分片
// 不同的 fd 之间 flock 互斥，同进程内的并发调用也会被串行化
type FileLocker struct {
	dir        string
	retryDelay time.Duration
}

// NewFileLocker 创建文件锁，dir 不存在时自动创建
func NewFileLocker(dir string) (*FileLocker, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create lock dir %s: %w", dir, err)
	}
	return &FileLocker{dir: dir, retryDelay: 20 * time.Millisecond}, nil
}

func (l *FileLocker) path(checksum string) string {
	shard := checksum
	if len(shard) > 2 {
		shard = shard[:2]
	}
	return filepath.Join(l.dir, "strip-"+shard+".lock")
}

// Lock 阻塞直到获得锁或 ctx 结束
func (l *FileLocker) Lock(ctx context.Context, checksum string) (func(), error) {
	fl := flock.New(l.path(checksum))

	locked, err := fl.TryLockContext(ctx, l.retryDelay)
	if err != nil {
		return nil, fmt.Errorf("acquire %s: %w", fl.Path(), err)
	}
	if !locked {
		return nil, fmt.Errorf("acquire %s: lock not obtained", fl.Path())
	}

	return func() { _ = fl.Unlock() }, nil
}
