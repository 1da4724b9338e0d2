package storage

import (
	"fmt"
	"log"
	"sort"

	"github.com/anoixa/comic-tracker/config"
)

// Factory 存储工厂 - 负责创建和管理存储提供者
// strip 记录写入时使用的存储名称，切换默认存储后旧 strip 仍可读取
type Factory struct {
	providers       map[string]Provider
	defaultProvider string
}

// NewFactory 根据配置创建存储工厂
func NewFactory(cfg *config.Config) (*Factory, error) {
	factory := &Factory{providers: make(map[string]Provider)}

	log.Println("Initializing storage providers...")

	if cfg.StorageLocalPath != "" {
		localProvider, err := NewLocalStorage(LocalConfig{
			Path:     cfg.StorageLocalPath,
			FileMode: cfg.FileMode(),
			DirMode:  cfg.DirMode(),
		})
		if err != nil {
			log.Printf("Failed to initialize local storage: %v", err)
		} else {
			factory.providers[localProvider.Name()] = localProvider
			log.Println("Successfully initialized 'local' storage provider")
		}
	}

	if cfg.MinioEndpoint != "" {
		minioProvider, err := NewMinioStorage(MinioConfig{
			Endpoint:        cfg.MinioEndpoint,
			AccessKeyID:     cfg.MinioAccessKeyID,
			SecretAccessKey: cfg.MinioSecretAccessKey,
			UseSSL:          cfg.MinioUseSSL,
			BucketName:      cfg.MinioBucketName,
		})
		if err != nil {
			log.Printf("Failed to initialize minio storage: %v", err)
		} else {
			factory.providers[minioProvider.Name()] = minioProvider
			log.Println("Successfully initialized 'minio' storage provider")
		}
	}

	if cfg.WebDAVURL != "" {
		webdavProvider, err := NewWebDAVStorage(WebDAVConfig{
			URL:      cfg.WebDAVURL,
			Username: cfg.WebDAVUsername,
			Password: cfg.WebDAVPassword,
			RootPath: cfg.WebDAVRootPath,
			Timeout:  cfg.WebDAVTimeout,
			FileMode: cfg.FileMode(),
			DirMode:  cfg.DirMode(),
		})
		if err != nil {
			log.Printf("Failed to initialize webdav storage: %v", err)
		} else {
			factory.providers[webdavProvider.Name()] = webdavProvider
			log.Printf("Successfully initialized 'webdav' storage provider at %s", webdavProvider.Location())
		}
	}

	if len(factory.providers) == 0 {
		return nil, fmt.Errorf("no storage providers were successfully initialized")
	}

	factory.defaultProvider = cfg.StorageType
	if _, ok := factory.providers[factory.defaultProvider]; !ok {
		return nil, fmt.Errorf("default storage type '%s' is not available", factory.defaultProvider)
	}
	log.Printf("Default storage provider set to: '%s'", factory.defaultProvider)

	return factory, nil
}

// NewFactoryWithProviders 使用已创建的提供者构建工厂，第一个为默认
func NewFactoryWithProviders(providers ...Provider) *Factory {
	factory := &Factory{providers: make(map[string]Provider, len(providers))}
	for i, p := range providers {
		if i == 0 {
			factory.defaultProvider = p.Name()
		}
		factory.providers[p.Name()] = p
	}
	return factory
}

// Get 获取指定名称的存储提供者
func (f *Factory) Get(name string) (Provider, error) {
	if name == "" {
		name = f.defaultProvider
	}

	provider, ok := f.providers[name]
	if !ok {
		return nil, fmt.Errorf("storage provider '%s' not found", name)
	}
	return provider, nil
}

// GetDefault 获取默认存储提供者
func (f *Factory) GetDefault() Provider {
	provider, _ := f.Get(f.defaultProvider)
	return provider
}

// GetDefaultName 获取默认存储提供者名称
func (f *Factory) GetDefaultName() string {
	return f.defaultProvider
}

// ListProviders 列出所有可用的存储提供者名称
func (f *Factory) ListProviders() []string {
	names := make([]string, 0, len(f.providers))
	for name := range f.providers {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
