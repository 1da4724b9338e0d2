package cmd

import (
	"context"
	"fmt"
	"log"

	"github.com/anoixa/comic-tracker/config"
	"github.com/anoixa/comic-tracker/internal/app"
)

// openContainer 加载配置并初始化容器，调用方负责 Close
// withServices 为 false 时只初始化数据库层
func openContainer(withServices bool) (*app.Container, error) {
	config.InitConfig()
	container := app.NewContainer(config.Get())

	if err := container.InitDatabase(); err != nil {
		return nil, fmt.Errorf("failed to initialize database: %w", err)
	}
	if !withServices {
		return container, nil
	}
	if err := container.InitServices(); err != nil {
		_ = container.Close()
		return nil, fmt.Errorf("failed to initialize services: %w", err)
	}
	return container, nil
}

// invalidateStatus 使共享缓存（redis）中的状态报表失效，内存缓存只在服务进程内有效
func invalidateStatus(ctx context.Context, container *app.Container) {
	if err := container.Status.Invalidate(ctx); err != nil {
		log.Printf("Warning: failed to invalidate status cache: %v", err)
	}
}
