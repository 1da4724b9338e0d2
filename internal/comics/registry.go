// Package comics 漫画登记服务：校验、slug 规范化与启停
package comics

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"time"
	"unicode/utf8"

	"gorm.io/datatypes"
	"gorm.io/gorm"

	"github.com/anoixa/comic-tracker/database"
	"github.com/anoixa/comic-tracker/database/models"
	comicsrepo "github.com/anoixa/comic-tracker/database/repo/comics"
	"github.com/anoixa/comic-tracker/internal/errdefs"
	"github.com/anoixa/comic-tracker/pkg/slug"
	"github.com/anoixa/comic-tracker/utils"
)

const (
	maxNameLength   = 100
	maxRightsLength = 100
	maxURLLength    = 255
)

// ListOptions 列表条件（从 repository 透传）
type ListOptions = comicsrepo.ListOptions

// Repository 漫画持久化操作
type Repository interface {
	Create(ctx context.Context, comic *models.Comic) error
	GetByID(ctx context.Context, id uint) (*models.Comic, error)
	GetBySlug(ctx context.Context, slug string) (*models.Comic, error)
	List(ctx context.Context, opts comicsrepo.ListOptions) ([]*models.Comic, error)
	Update(ctx context.Context, comic *models.Comic) error
	SetActive(ctx context.Context, id uint, active bool) error
	CountReleases(ctx context.Context, id uint) (int64, error)
	Delete(ctx context.Context, id uint) error
}

// Input 创建或更新漫画的字段，Slug 为空时由 Name 生成
type Input struct {
	Name      string     `json:"name" mapstructure:"name"`
	Slug      string     `json:"slug" mapstructure:"slug"`
	Language  string     `json:"language" mapstructure:"language"`
	URL       string     `json:"url" mapstructure:"url"`
	Rights    string     `json:"rights" mapstructure:"rights"`
	StartDate *time.Time `json:"start_date,omitempty" mapstructure:"start_date"`
	EndDate   *time.Time `json:"end_date,omitempty" mapstructure:"end_date"`
	Active    *bool      `json:"active,omitempty" mapstructure:"active"`
}

// Registry 漫画登记服务
type Registry struct {
	repo Repository
}

// NewRegistry 创建漫画登记服务
func NewRegistry(repo Repository) *Registry {
	return &Registry{repo: repo}
}

// Create 登记新漫画，默认启用，语言默认为英文
func (r *Registry) Create(ctx context.Context, in Input) (*models.Comic, error) {
	comic := &models.Comic{Active: true, Language: models.LanguageEnglish}
	if err := apply(comic, in); err != nil {
		return nil, err
	}

	if err := r.repo.Create(ctx, comic); err != nil {
		if database.IsUniqueViolation(err) {
			return nil, fmt.Errorf("comic %q: %w", comic.Slug, errdefs.ErrConflict)
		}
		return nil, fmt.Errorf("create comic %q: %w", comic.Slug, err)
	}
	return comic, nil
}

// Get 按 slug 查找漫画
func (r *Registry) Get(ctx context.Context, s string) (*models.Comic, error) {
	comic, err := r.repo.GetBySlug(ctx, s)
	return comic, notFound(err, s)
}

// GetByID 按 ID 查找漫画
func (r *Registry) GetByID(ctx context.Context, id uint) (*models.Comic, error) {
	comic, err := r.repo.GetByID(ctx, id)
	return comic, notFound(err, fmt.Sprintf("#%d", id))
}

// List 列出漫画
func (r *Registry) List(ctx context.Context, opts ListOptions) ([]*models.Comic, error) {
	return r.repo.List(ctx, opts)
}

// Update 更新漫画；已有 release 引用时不允许修改 slug
func (r *Registry) Update(ctx context.Context, s string, in Input) (*models.Comic, error) {
	comic, err := r.Get(ctx, s)
	if err != nil {
		return nil, err
	}

	if in.Slug == "" {
		in.Slug = comic.Slug
	}
	if in.Slug != comic.Slug {
		n, err := r.repo.CountReleases(ctx, comic.ID)
		if err != nil {
			return nil, fmt.Errorf("count releases of %q: %w", comic.Slug, err)
		}
		if n > 0 {
			return nil, fmt.Errorf("comic %q has %d release(s): %w", comic.Slug, n, errdefs.ErrSlugLocked)
		}
	}

	if err := apply(comic, in); err != nil {
		return nil, err
	}
	if err := r.repo.Update(ctx, comic); err != nil {
		if database.IsUniqueViolation(err) {
			return nil, fmt.Errorf("comic %q: %w", comic.Slug, errdefs.ErrConflict)
		}
		return nil, fmt.Errorf("update comic %q: %w", comic.Slug, err)
	}
	return comic, nil
}

// Deactivate 停用漫画，历史记录保留
func (r *Registry) Deactivate(ctx context.Context, s string) (*models.Comic, error) {
	return r.setActive(ctx, s, false)
}

// Activate 重新启用漫画
func (r *Registry) Activate(ctx context.Context, s string) (*models.Comic, error) {
	return r.setActive(ctx, s, true)
}

func (r *Registry) setActive(ctx context.Context, s string, active bool) (*models.Comic, error) {
	comic, err := r.Get(ctx, s)
	if err != nil {
		return nil, err
	}
	if err := r.repo.SetActive(ctx, comic.ID, active); err != nil {
		return nil, notFound(err, s)
	}
	comic.Active = active
	return comic, nil
}

// Delete 删除漫画，仍有 release 或 strip 时返回 ErrReferentialIntegrity
func (r *Registry) Delete(ctx context.Context, s string) error {
	comic, err := r.Get(ctx, s)
	if err != nil {
		return err
	}
	return notFound(r.repo.Delete(ctx, comic.ID), s)
}

func notFound(err error, ref string) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return fmt.Errorf("comic %s: %w", ref, errdefs.ErrUnknownComic)
	}
	return err
}

// apply 校验 in 并写入 comic
func apply(comic *models.Comic, in Input) error {
	if in.Name == "" {
		in.Name = comic.Name
	}
	if in.Name == "" {
		return invalid("name is required")
	}
	if utf8.RuneCountInString(in.Name) > maxNameLength {
		return invalid("name exceeds %d characters", maxNameLength)
	}

	s := in.Slug
	if s == "" {
		s = slug.From(in.Name)
	}
	if !slug.Valid(s) {
		return invalid("slug %q must be lowercase letters, digits and single hyphens", s)
	}

	if in.Language != "" {
		if !models.IsValidLanguage(in.Language) {
			return invalid("unsupported language %q", in.Language)
		}
		comic.Language = in.Language
	}

	if in.URL != "" {
		u, err := url.Parse(in.URL)
		if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
			return invalid("url %q must be an absolute http(s) URL", in.URL)
		}
		if len(in.URL) > maxURLLength {
			return invalid("url exceeds %d characters", maxURLLength)
		}
	}
	if utf8.RuneCountInString(in.Rights) > maxRightsLength {
		return invalid("rights exceeds %d characters", maxRightsLength)
	}
	if in.StartDate != nil && in.EndDate != nil && in.EndDate.Before(*in.StartDate) {
		return invalid("end_date is before start_date")
	}

	comic.Name = in.Name
	comic.Slug = s
	comic.URL = in.URL
	comic.Rights = in.Rights
	comic.StartDate = toDate(in.StartDate)
	comic.EndDate = toDate(in.EndDate)
	if in.Active != nil {
		comic.Active = *in.Active
	}
	return nil
}

func invalid(format string, args ...interface{}) error {
	return fmt.Errorf("%s: %w", fmt.Sprintf(format, args...), errdefs.ErrInvalidComic)
}

func toDate(t *time.Time) *datatypes.Date {
	if t == nil {
		return nil
	}
	d := datatypes.Date(utils.CivilDate(*t))
	return &d
}
