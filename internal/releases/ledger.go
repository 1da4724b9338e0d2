// Package releases 记录漫画在某日发布了哪张 strip
package releases

import (
	"context"
	"errors"
	"fmt"
	"time"

	"gorm.io/datatypes"
	"gorm.io/gorm"

	"github.com/anoixa/comic-tracker/database"
	"github.com/anoixa/comic-tracker/database/models"
	releasesrepo "github.com/anoixa/comic-tracker/database/repo/releases"
	"github.com/anoixa/comic-tracker/internal/errdefs"
	"github.com/anoixa/comic-tracker/utils"
)

// Query 区间查询条件
type Query = releasesrepo.RangeQuery

// Repository Ledger 依赖的 release 持久化操作
type Repository interface {
	Create(ctx context.Context, release *models.Release) error
	GetByID(ctx context.Context, id uint) (*models.Release, error)
	LatestFor(ctx context.Context, comicID uint) (*models.Release, error)
	FirstFor(ctx context.Context, stripID uint) (*models.Release, error)
	InRange(ctx context.Context, q releasesrepo.RangeQuery) ([]*models.Release, error)
	Delete(ctx context.Context, id uint) (*releasesrepo.DeleteResult, error)
}

// ComicLookup 校验漫画存在
type ComicLookup interface {
	GetByID(ctx context.Context, id uint) (*models.Comic, error)
}

// StripLookup 校验 strip 存在且归属正确
type StripLookup interface {
	GetByID(ctx context.Context, id uint) (*models.Strip, error)
}

// ArtifactPurger 删除已无引用的 strip 文件
type ArtifactPurger interface {
	Purge(ctx context.Context, strip *models.Strip) error
}

// Ledger release 账本
type Ledger struct {
	repo   Repository
	comics ComicLookup
	strips StripLookup
	purger ArtifactPurger
}

// NewLedger 创建账本
func NewLedger(repo Repository, comics ComicLookup, strips StripLookup, purger ArtifactPurger) *Ledger {
	return &Ledger{repo: repo, comics: comics, strips: strips, purger: purger}
}

// Record 记录一次发布；三元组已存在时返回 ErrDuplicateRelease，由调用方决定是否忽略
func (l *Ledger) Record(ctx context.Context, comicID uint, pubDate time.Time, stripID uint) (*models.Release, error) {
	if _, err := l.comics.GetByID(ctx, comicID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("comic %d: %w", comicID, errdefs.ErrUnknownComic)
		}
		return nil, fmt.Errorf("look up comic %d: %w", comicID, err)
	}

	strip, err := l.strips.GetByID(ctx, stripID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("strip %d: %w", stripID, errdefs.ErrNotFound)
		}
		return nil, fmt.Errorf("look up strip %d: %w", stripID, err)
	}
	if strip.ComicID != comicID {
		return nil, fmt.Errorf("strip %d belongs to comic %d, not %d: %w", stripID, strip.ComicID, comicID, errdefs.ErrReferentialIntegrity)
	}

	date := utils.CivilDate(pubDate)
	release := &models.Release{
		ComicID: comicID,
		PubDate: datatypes.Date(date),
		StripID: stripID,
	}

	if err := l.repo.Create(ctx, release); err != nil {
		switch {
		case database.IsUniqueViolation(err):
			return nil, fmt.Errorf("comic %d strip %d on %s: %w", comicID, stripID, date.Format(utils.DateLayout), errdefs.ErrDuplicateRelease)
		case database.IsForeignKeyViolation(err):
			return nil, fmt.Errorf("comic %d: %w", comicID, errdefs.ErrUnknownComic)
		default:
			return nil, fmt.Errorf("record release: %w", err)
		}
	}

	return release, nil
}

// Get 获取 release
func (l *Ledger) Get(ctx context.Context, id uint) (*models.Release, error) {
	release, err := l.repo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("release %d: %w", id, errdefs.ErrNotFound)
		}
		return nil, err
	}
	return release, nil
}

// LatestFor 返回漫画最近一次发布，没有记录时返回 nil
func (l *Ledger) LatestFor(ctx context.Context, comicID uint) (*models.Release, error) {
	return l.repo.LatestFor(ctx, comicID)
}

// FirstFor 返回 strip 最早的一次发布，没有记录时返回 nil
func (l *Ledger) FirstFor(ctx context.Context, stripID uint) (*models.Release, error) {
	return l.repo.FirstFor(ctx, stripID)
}

// InRange 按 (slug, pub_date) 升序返回区间内的 release
func (l *Ledger) InRange(ctx context.Context, q Query) ([]*models.Release, error) {
	if !q.From.IsZero() {
		q.From = utils.CivilDate(q.From)
	}
	if !q.To.IsZero() {
		q.To = utils.CivilDate(q.To)
	}
	if !q.From.IsZero() && !q.To.IsZero() && q.To.Before(q.From) {
		return []*models.Release{}, nil
	}
	return l.repo.InRange(ctx, q)
}

// Delete 删除 release；strip 不再被引用时一并删除记录并清理文件
// 文件清理失败时 release 已删除，返回值同时携带 release 和 StorageError
func (l *Ledger) Delete(ctx context.Context, id uint) (*models.Release, error) {
	res, err := l.repo.Delete(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("release %d: %w", id, errdefs.ErrNotFound)
		}
		return nil, err
	}

	if res.OrphanStrip != nil && l.purger != nil {
		if err := l.purger.Purge(ctx, res.OrphanStrip); err != nil {
			return res.Release, err
		}
	}
	return res.Release, nil
}
