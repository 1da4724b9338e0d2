// Package collections 漫画合集服务
package collections

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"unicode/utf8"

	"gorm.io/gorm"

	"github.com/anoixa/comic-tracker/database"
	"github.com/anoixa/comic-tracker/database/models"
	"github.com/anoixa/comic-tracker/internal/errdefs"
)

// Repository 合集持久化操作
type Repository interface {
	Create(ctx context.Context, collection *models.Collection) error
	GetByID(ctx context.Context, id uint) (*models.Collection, error)
	List(ctx context.Context) ([]*models.Collection, error)
	AddComics(ctx context.Context, collectionID uint, comicIDs []uint) error
	RemoveComic(ctx context.Context, collectionID, comicID uint) error
	Delete(ctx context.Context, id uint) error
}

// ComicLookup 按 slug 解析漫画
type ComicLookup interface {
	Get(ctx context.Context, slug string) (*models.Comic, error)
}

// Service 合集服务
type Service struct {
	repo   Repository
	comics ComicLookup
}

// NewService 创建合集服务
func NewService(repo Repository, comics ComicLookup) *Service {
	return &Service{repo: repo, comics: comics}
}

// Create 创建合集，名称唯一
func (s *Service) Create(ctx context.Context, name, description string) (*models.Collection, error) {
	name = strings.TrimSpace(name)
	if name == "" || utf8.RuneCountInString(name) > 100 {
		return nil, fmt.Errorf("collection name must be 1-100 characters: %w", errdefs.ErrInvalidInput)
	}
	if utf8.RuneCountInString(description) > 255 {
		return nil, fmt.Errorf("collection description exceeds 255 characters: %w", errdefs.ErrInvalidInput)
	}

	collection := &models.Collection{Name: name, Description: description}
	if err := s.repo.Create(ctx, collection); err != nil {
		if database.IsUniqueViolation(err) {
			return nil, fmt.Errorf("collection %q: %w", name, errdefs.ErrConflict)
		}
		return nil, err
	}
	return collection, nil
}

// Get 获取合集及其漫画
func (s *Service) Get(ctx context.Context, id uint) (*models.Collection, error) {
	collection, err := s.repo.GetByID(ctx, id)
	return collection, notFound(err, id)
}

// List 列出全部合集
func (s *Service) List(ctx context.Context) ([]*models.Collection, error) {
	return s.repo.List(ctx)
}

// AddComics 把漫画加入合集，任一 slug 未登记时整体失败
func (s *Service) AddComics(ctx context.Context, id uint, slugs []string) (*models.Collection, error) {
	ids := make([]uint, 0, len(slugs))
	for _, slug := range slugs {
		comic, err := s.comics.Get(ctx, slug)
		if err != nil {
			return nil, err
		}
		ids = append(ids, comic.ID)
	}

	if err := s.repo.AddComics(ctx, id, ids); err != nil {
		return nil, notFound(err, id)
	}
	return s.Get(ctx, id)
}

// RemoveComic 从合集移除漫画
func (s *Service) RemoveComic(ctx context.Context, id uint, slug string) error {
	comic, err := s.comics.Get(ctx, slug)
	if err != nil {
		return err
	}
	return notFound(s.repo.RemoveComic(ctx, id, comic.ID), id)
}

// Delete 删除合集，成员漫画保留
func (s *Service) Delete(ctx context.Context, id uint) error {
	return notFound(s.repo.Delete(ctx, id), id)
}

func notFound(err error, id uint) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return fmt.Errorf("collection %d: %w", id, errdefs.ErrNotFound)
	}
	return err
}
