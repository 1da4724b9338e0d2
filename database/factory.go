package database

import (
	"fmt"
	"log"

	"github.com/anoixa/comic-tracker/config"
	"github.com/anoixa/comic-tracker/database/models"
)

// Factory 数据库工厂 - 负责创建和管理数据库提供者
type Factory struct {
	provider Provider
}

// NewFactory 创建新的数据库工厂
func NewFactory(cfg *config.Config) (*Factory, error) {
	log.Println("Initializing database provider...")

	provider, err := NewGormProvider(cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize database provider: %w", err)
	}

	log.Printf("Database provider '%s' initialized successfully", provider.Name())

	return &Factory{provider: provider}, nil
}

// GetProvider 获取数据库提供者
func (f *Factory) GetProvider() Provider {
	return f.provider
}

// Close 关闭数据库连接
func (f *Factory) Close() error {
	if f.provider != nil {
		return f.provider.Close()
	}
	return nil
}

// AutoMigrate 自动迁移数据库结构
func (f *Factory) AutoMigrate() error {
	if f.provider == nil {
		return fmt.Errorf("database provider not initialized")
	}

	log.Println("Running database auto migration...")
	if err := Migrate(f.provider); err != nil {
		return err
	}
	log.Println("Database auto migration completed.")
	return nil
}

// Models 按依赖顺序返回全部模型
func Models() []interface{} {
	return []interface{}{
		&models.Comic{},
		&models.Strip{},
		&models.Release{},
		&models.Collection{},
	}
}

// Migrate 按依赖顺序迁移全部模型
func Migrate(provider Provider) error {
	if err := provider.AutoMigrate(Models()...); err != nil {
		return fmt.Errorf("failed to auto migrate database: %w", err)
	}
	return nil
}
