package storage

import (
	"context"
	"errors"
	"testing"
	"time"
)

// TestWebDAVConfig 测试 WebDAV 配置结构
func TestWebDAVConfig(t *testing.T) {
	cfg := WebDAVConfig{
		URL:      "https://dav.example.com",
		Username: "user",
		Password: "pass",
		RootPath: "/comics",
		Timeout:  30 * time.Second,
	}

	if cfg.URL != "https://dav.example.com" {
		t.Errorf("expected URL to be https://dav.example.com, got %s", cfg.URL)
	}
	if cfg.Username != "user" {
		t.Errorf("expected Username to be user, got %s", cfg.Username)
	}
	if cfg.RootPath != "/comics" {
		t.Errorf("expected RootPath to be /comics, got %s", cfg.RootPath)
	}
}

// TestWebDAVStorageValidation 测试 WebDAV 存储配置验证
func TestWebDAVStorageValidation(t *testing.T) {
	tests := []struct {
		name    string
		cfg     WebDAVConfig
		wantErr bool
	}{
		{
			name:    "empty URL",
			cfg:     WebDAVConfig{URL: ""},
			wantErr: true,
		},
		{
			name: "valid URL only",
			cfg: WebDAVConfig{
				URL: "https://dav.example.com",
			},
			wantErr: true, // 会连接失败
		},
		{
			name: "with credentials",
			cfg: WebDAVConfig{
				URL:      "https://dav.example.com",
				Username: "user",
				Password: "pass",
			},
			wantErr: true, // 会连接失败
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewWebDAVStorage(tt.cfg)
			if (err != nil) != tt.wantErr {
				t.Errorf("NewWebDAVStorage() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

// TestWebDAVStorageFullPath 测试路径生成逻辑
func TestWebDAVStorageFullPath(t *testing.T) {
	tests := []struct {
		name        string
		rootPath    string
		storagePath string
		want        string
	}{
		{
			name:        "empty root path",
			rootPath:    "",
			storagePath: "xkcd/a/abc.png",
			want:        "/xkcd/a/abc.png",
		},
		{
			name:        "with root path",
			rootPath:    "/comics",
			storagePath: "xkcd/a/abc.png",
			want:        "/comics/xkcd/a/abc.png",
		},
		{
			name:        "root path without leading slash",
			rootPath:    "/comics",
			storagePath: "test.jpg",
			want:        "/comics/test.jpg",
		},
		{
			name:        "storage path with leading slash",
			rootPath:    "",
			storagePath: "/test.jpg",
			want:        "/test.jpg",
		},
		{
			name:        "strip path",
			rootPath:    "/uploads",
			storagePath: "lunch/f/f00d.webp",
			want:        "/uploads/lunch/f/f00d.webp",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := &WebDAVStorage{
				rootPath: tt.rootPath,
			}
			got := s.fullPath(tt.storagePath)
			if got != tt.want {
				t.Errorf("fullPath() = %v, want %v", got, tt.want)
			}
		})
	}
}

// TestWebDAVStorageContextCancellation 测试上下文取消处理
func TestWebDAVStorageContextCancellation(t *testing.T) {
	s := &WebDAVStorage{
		client:   nil, // 模拟状态，不会实际调用
		rootPath: "",
		baseURL:  "https://example.com",
	}

	ctx, cancel := context.WithCancel(context.Background())
	cancel() // 立即取消

	t.Run("SaveWithContext", func(t *testing.T) {
		err := s.SaveWithContext(ctx, "test.jpg", nil)
		if !errors.Is(err, context.Canceled) {
			t.Errorf("expected context.Canceled, got %v", err)
		}
	})

	t.Run("GetWithContext", func(t *testing.T) {
		_, err := s.GetWithContext(ctx, "test.jpg")
		if !errors.Is(err, context.Canceled) {
			t.Errorf("expected context.Canceled, got %v", err)
		}
	})

	t.Run("DeleteWithContext", func(t *testing.T) {
		err := s.DeleteWithContext(ctx, "test.jpg")
		if !errors.Is(err, context.Canceled) {
			t.Errorf("expected context.Canceled, got %v", err)
		}
	})

	t.Run("Exists", func(t *testing.T) {
		_, err := s.Exists(ctx, "test.jpg")
		if !errors.Is(err, context.Canceled) {
			t.Errorf("expected context.Canceled, got %v", err)
		}
	})

	t.Run("Health", func(t *testing.T) {
		err := s.Health(ctx)
		if !errors.Is(err, context.Canceled) {
			t.Errorf("expected context.Canceled, got %v", err)
		}
	})
}

// TestWebDAVStorageName 测试存储名称
func TestWebDAVStorageName(t *testing.T) {
	s := &WebDAVStorage{}
	if got := s.Name(); got != "webdav" {
		t.Errorf("Name() = %v, want webdav", got)
	}
}

// TestFactoryWithProviders 测试工厂默认存储和按名称查找
func TestFactoryWithProviders(t *testing.T) {
	local, err := NewLocalStorage(LocalConfig{Path: t.TempDir()})
	if err != nil {
		t.Fatalf("NewLocalStorage() error = %v", err)
	}
	dav := &WebDAVStorage{rootPath: "/comics"}

	f := NewFactoryWithProviders(local, dav)
	if f.GetDefaultName() != "local" {
		t.Errorf("GetDefaultName() = %s, want local", f.GetDefaultName())
	}
	if got, _ := f.Get(""); got != Provider(local) {
		t.Errorf("Get(\"\") should return the default provider")
	}
	if got, err := f.Get("webdav"); err != nil || got != Provider(dav) {
		t.Errorf("Get(webdav) = %v, %v", got, err)
	}
	if _, err := f.Get("s3"); err == nil {
		t.Error("expected error for unknown provider")
	}
	if names := f.ListProviders(); len(names) != 2 || names[0] != "local" || names[1] != "webdav" {
		t.Errorf("ListProviders() = %v", names)
	}
}

// TestWebDAVStoragePathVariations 测试各种路径格式
func TestWebDAVStoragePathVariations(t *testing.T) {
	s := &WebDAVStorage{
		rootPath: "/data",
		baseURL:  "https://dav.example.com",
	}

	paths := []struct {
		input string
		want  string
	}{
		{"xkcd/9/9f86d081884c7d65.png", "/data/xkcd/9/9f86d081884c7d65.png"},
		{"lunch/b/b1946ac92492d234.gif", "/data/lunch/b/b1946ac92492d234.gif"},
		{"test.png", "/data/test.png"},
	}

	for _, p := range paths {
		got := s.fullPath(p.input)
		if got != p.want {
			t.Errorf("fullPath(%s) = %s, want %s", p.input, got, p.want)
		}
	}
}

// TestNormalizeRootPath 测试根路径规范化
func TestNormalizeRootPath(t *testing.T) {
	cases := map[string]string{
		"":         "",
		"/":        "",
		"comics":   "/comics",
		"/comics/": "/comics",
		"a/b/":     "/a/b",
	}
	for in, want := range cases {
		if got := normalizeRootPath(in); got != want {
			t.Errorf("normalizeRootPath(%q) = %q, want %q", in, got, want)
		}
	}
}
