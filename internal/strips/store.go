// Package strips 内容寻址的 strip 存储：同一漫画下相同内容只保存一次
package strips

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"strconv"
	"time"

	"golang.org/x/sync/singleflight"
	"gorm.io/gorm"

	"github.com/anoixa/comic-tracker/database"
	"github.com/anoixa/comic-tracker/database/models"
	"github.com/anoixa/comic-tracker/internal/errdefs"
	"github.com/anoixa/comic-tracker/storage"
	"github.com/anoixa/comic-tracker/utils/generator"
)

// Repository Store 依赖的 strip 持久化操作
type Repository interface {
	Create(ctx context.Context, strip *models.Strip) error
	GetByID(ctx context.Context, id uint) (*models.Strip, error)
	GetByChecksum(ctx context.Context, comicID uint, checksum string) (*models.Strip, error)
	DeleteUnreferenced(ctx context.Context, id uint) (*models.Strip, error)
}

// Backends 存储后端集合，新 strip 写入默认后端
type Backends interface {
	Get(name string) (storage.Provider, error)
	GetDefault() storage.Provider
}

// Dimensions 像素尺寸
type Dimensions struct {
	Width  int
	Height int
}

// Meta strip 的附加信息
type Meta struct {
	MimeType  string
	Extension string
	Title     string
	Text      string
	Fetched   time.Time
}

// Store strip 存储
type Store struct {
	repo     Repository
	backends Backends
	locker   Locker
	group    singleflight.Group
	now      func() time.Time
}

// NewStore 创建 strip 存储
func NewStore(repo Repository, backends Backends, locker Locker) *Store {
	return &Store{
		repo:     repo,
		backends: backends,
		locker:   locker,
		now:      time.Now,
	}
}

type putResult struct {
	strip   *models.Strip
	created bool
}

// Put 保存 strip 内容；同一漫画已有相同校验和时返回已有记录，created 为 false
// 写入一旦开始就不受调用方取消影响，结果要么完整可见要么不存在
func (s *Store) Put(ctx context.Context, comic *models.Comic, data []byte, dims Dimensions, meta Meta) (*models.Strip, bool, error) {
	if comic == nil || comic.ID == 0 || comic.Slug == "" {
		return nil, false, fmt.Errorf("put strip: %w", errdefs.ErrUnknownComic)
	}
	if len(data) == 0 {
		return nil, false, fmt.Errorf("put strip: %w", errdefs.ErrInvalidImage)
	}

	checksum := Checksum(data)
	key := strconv.FormatUint(uint64(comic.ID), 10) + ":" + checksum

	// 合并进来的调用方共享结果，但只有执行写入的那个算作创建者
	leader := false
	v, err, _ := s.group.Do(key, func() (interface{}, error) {
		leader = true
		strip, created, err := s.put(context.WithoutCancel(ctx), comic, checksum, data, dims, meta)
		return putResult{strip: strip, created: created}, err
	})
	if err != nil {
		return nil, false, err
	}

	res := v.(putResult)
	return res.strip, res.created && leader, nil
}

func (s *Store) put(ctx context.Context, comic *models.Comic, checksum string, data []byte, dims Dimensions, meta Meta) (*models.Strip, bool, error) {
	unlock, err := s.locker.Lock(ctx, checksum)
	if err != nil {
		return nil, false, errdefs.NewStorageError("lock", checksum, err)
	}
	defer unlock()

	existing, err := s.repo.GetByChecksum(ctx, comic.ID, checksum)
	if err == nil {
		return existing, false, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, false, fmt.Errorf("look up strip %s: %w", checksum, err)
	}

	provider := s.backends.GetDefault()
	if provider == nil {
		return nil, false, errdefs.NewStorageError("write", checksum, errors.New("no default storage provider"))
	}
	path := generator.StripPath(comic.Slug, checksum, meta.Extension)

	// 路径由内容决定，已存在的文件内容必然相同
	existed, err := provider.Exists(ctx, path)
	if err != nil {
		return nil, false, errdefs.NewStorageError("stat", path, err)
	}
	if !existed {
		if err := provider.SaveWithContext(ctx, path, bytes.NewReader(data)); err != nil {
			return nil, false, errdefs.NewStorageError("write", path, err)
		}
	}

	fetched := meta.Fetched
	if fetched.IsZero() {
		fetched = s.now()
	}

	strip := &models.Strip{
		ComicID:     comic.ID,
		Fetched:     fetched.UTC(),
		Checksum:    checksum,
		StoragePath: path,
		Storage:     provider.Name(),
		MimeType:    meta.MimeType,
		FileSize:    int64(len(data)),
		Width:       dims.Width,
		Height:      dims.Height,
		Title:       meta.Title,
		Text:        meta.Text,
	}

	if err := s.repo.Create(ctx, strip); err != nil {
		// 其他进程抢先登记了同一内容
		if database.IsUniqueViolation(err) {
			if winner, lookupErr := s.repo.GetByChecksum(ctx, comic.ID, checksum); lookupErr == nil {
				return winner, false, nil
			}
		}
		if !existed {
			_ = provider.DeleteWithContext(ctx, path)
		}
		return nil, false, fmt.Errorf("create strip %s: %w", checksum, err)
	}

	return strip, true, nil
}

// Get 获取 strip 记录
func (s *Store) Get(ctx context.Context, id uint) (*models.Strip, error) {
	strip, err := s.repo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("strip %d: %w", id, errdefs.ErrNotFound)
		}
		return nil, err
	}
	return strip, nil
}

// Open 打开 strip 内容，调用方负责关闭实现了 io.Closer 的返回值
func (s *Store) Open(ctx context.Context, strip *models.Strip) (io.ReadSeeker, error) {
	provider, err := s.backends.Get(strip.Storage)
	if err != nil {
		return nil, errdefs.NewStorageError("read", strip.StoragePath, err)
	}

	r, err := provider.GetWithContext(ctx, strip.StoragePath)
	if err != nil {
		return nil, errdefs.NewStorageError("read", strip.StoragePath, err)
	}
	return r, nil
}

// Delete 删除 strip；仍被 release 引用时返回 ErrReferentialIntegrity，不会级联删除
func (s *Store) Delete(ctx context.Context, id uint) error {
	strip, err := s.repo.DeleteUnreferenced(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return fmt.Errorf("strip %d: %w", id, errdefs.ErrNotFound)
		}
		return err
	}
	return s.Purge(ctx, strip)
}

// Purge 删除记录已被移除的 strip 的文件
// 持锁后再次确认没有同内容的新记录，避免删掉并发 Put 刚复用的文件
func (s *Store) Purge(ctx context.Context, strip *models.Strip) error {
	ctx = context.WithoutCancel(ctx)

	unlock, err := s.locker.Lock(ctx, strip.Checksum)
	if err != nil {
		return errdefs.NewStorageError("lock", strip.Checksum, err)
	}
	defer unlock()

	if _, err := s.repo.GetByChecksum(ctx, strip.ComicID, strip.Checksum); err == nil {
		return nil
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return fmt.Errorf("look up strip %s: %w", strip.Checksum, err)
	}

	provider, err := s.backends.Get(strip.Storage)
	if err != nil {
		return errdefs.NewStorageError("delete", strip.StoragePath, err)
	}

	if err := provider.DeleteWithContext(ctx, strip.StoragePath); err != nil && !errors.Is(err, storage.ErrObjectNotFound) {
		return errdefs.NewStorageError("delete", strip.StoragePath, err)
	}
	return nil
}
