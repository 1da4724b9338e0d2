// Package ingest 抓取结果入库：存储 strip 并登记 release
package ingest

import (
	"context"
	"fmt"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/anoixa/comic-tracker/database/models"
	"github.com/anoixa/comic-tracker/internal/errdefs"
	"github.com/anoixa/comic-tracker/internal/strips"
	"github.com/anoixa/comic-tracker/utils"
	"github.com/anoixa/comic-tracker/utils/validator"
)

// DefaultMaxSize 单张 strip 默认大小上限
const DefaultMaxSize = 20 << 20

// batchConcurrency 批量入库的并发数
const batchConcurrency = 4

// ComicResolver 解析漫画
type ComicResolver interface {
	Get(ctx context.Context, slug string) (*models.Comic, error)
	GetByID(ctx context.Context, id uint) (*models.Comic, error)
}

// StripStore strip 存储
type StripStore interface {
	Put(ctx context.Context, comic *models.Comic, data []byte, dims strips.Dimensions, meta strips.Meta) (*models.Strip, bool, error)
	Delete(ctx context.Context, id uint) error
}

// Recorder 登记 release
type Recorder interface {
	Record(ctx context.Context, comicID uint, pubDate time.Time, stripID uint) (*models.Release, error)
}

// Invalidator 报表缓存失效
type Invalidator interface {
	Invalidate(ctx context.Context) error
}

// Request 一次抓取结果，ComicID 与 ComicSlug 二选一
type Request struct {
	ComicID   uint
	ComicSlug string
	PubDate   time.Time
	Data      []byte
	Title     string
	Text      string
	Fetched   time.Time
}

// Result 入库结果
type Result struct {
	Comic        *models.Comic   `json:"-"`
	Strip        *models.Strip   `json:"strip"`
	Release      *models.Release `json:"release"`
	StripCreated bool            `json:"strip_created"`
}

// BatchResult 批量入库中单项的结果
type BatchResult struct {
	Index  int     `json:"index"`
	Result *Result `json:"result,omitempty"`
	Err    error   `json:"-"`
	Error  string  `json:"error,omitempty"`
}

// Service 入库服务
type Service struct {
	comics  ComicResolver
	store   StripStore
	ledger  Recorder
	reports Invalidator
	maxSize int
}

// NewService 创建入库服务，maxSize<=0 时使用 DefaultMaxSize，reports 可为 nil
func NewService(comics ComicResolver, store StripStore, ledger Recorder, reports Invalidator, maxSize int) *Service {
	if maxSize <= 0 {
		maxSize = DefaultMaxSize
	}
	return &Service{comics: comics, store: store, ledger: ledger, reports: reports, maxSize: maxSize}
}

// Ingest 存储 strip 并登记 release
// 登记失败且 strip 是本次新建时删除该 strip，不留下无引用的文件
func (s *Service) Ingest(ctx context.Context, req Request) (*Result, error) {
	comic, err := s.resolve(ctx, req)
	if err != nil {
		return nil, err
	}
	if req.PubDate.IsZero() {
		return nil, fmt.Errorf("pub_date is required: %w", errdefs.ErrInvalidInput)
	}
	if len(req.Data) > s.maxSize {
		return nil, fmt.Errorf("strip is %d bytes, limit %d: %w", len(req.Data), s.maxSize, errdefs.ErrInvalidImage)
	}

	info, err := validator.InspectImage(req.Data)
	if err != nil {
		return nil, fmt.Errorf("%v: %w", err, errdefs.ErrInvalidImage)
	}

	strip, created, err := s.store.Put(ctx, comic, req.Data,
		strips.Dimensions{Width: info.Width, Height: info.Height},
		strips.Meta{
			MimeType:  info.MimeType,
			Extension: info.Extension,
			Title:     req.Title,
			Text:      req.Text,
			Fetched:   req.Fetched,
		})
	if err != nil {
		return nil, err
	}

	release, err := s.ledger.Record(ctx, comic.ID, req.PubDate, strip.ID)
	if err != nil {
		if created {
			if delErr := s.store.Delete(context.WithoutCancel(ctx), strip.ID); delErr != nil {
				utils.LogIfDevf("[Ingest] failed to roll back strip %d: %v", strip.ID, delErr)
			}
		}
		return nil, err
	}

	if s.reports != nil {
		if err := s.reports.Invalidate(ctx); err != nil {
			utils.LogIfDevf("[Ingest] failed to invalidate status reports: %v", err)
		}
	}

	release.Comic = *comic
	release.Strip = *strip
	return &Result{Comic: comic, Strip: strip, Release: release, StripCreated: created}, nil
}

// IngestBatch 并发入库，单项失败不影响其他项
func (s *Service) IngestBatch(ctx context.Context, reqs []Request) ([]*BatchResult, error) {
	results := make([]*BatchResult, len(reqs))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(batchConcurrency)
	for i, req := range reqs {
		i, req := i, req
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			res, err := s.Ingest(gctx, req)
			br := &BatchResult{Index: i, Result: res, Err: err}
			if err != nil {
				br.Error = err.Error()
			}
			results[i] = br
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, fmt.Errorf("batch ingest failed: %w", err)
	}
	return results, nil
}

func (s *Service) resolve(ctx context.Context, req Request) (*models.Comic, error) {
	switch {
	case req.ComicID != 0:
		return s.comics.GetByID(ctx, req.ComicID)
	case req.ComicSlug != "":
		return s.comics.Get(ctx, req.ComicSlug)
	default:
		return nil, fmt.Errorf("no comic given: %w", errdefs.ErrUnknownComic)
	}
}
