package storage

import (
	"context"
	"errors"
	"io"
)

// ErrObjectNotFound 存储对象不存在
var ErrObjectNotFound = errors.New("object not found")

// Provider 存储提供者接口
// 所有实现的 SaveWithContext 必须是原子的：失败时不留下可读的半截文件
type Provider interface {
	// SaveWithContext 保存文件到存储
	SaveWithContext(ctx context.Context, identifier string, file io.Reader) error

	// GetWithContext 从存储获取文件
	GetWithContext(ctx context.Context, identifier string) (io.ReadSeeker, error)

	// DeleteWithContext 从存储删除文件，不存在时返回 ErrObjectNotFound
	DeleteWithContext(ctx context.Context, identifier string) error

	// Exists 检查文件是否存在
	Exists(ctx context.Context, identifier string) (bool, error)

	// Health 检查存储健康状态
	Health(ctx context.Context) error

	// Name 返回存储名称
	Name() string
}

// Walker 可枚举全部对象的存储，clean 命令用于查找孤儿文件
type Walker interface {
	Walk(ctx context.Context, fn func(identifier string) error) error
}
