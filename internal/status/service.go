package status

import (
	"context"
	"sync/atomic"
	"time"

	"github.com/anoixa/comic-tracker/cache"
	"github.com/anoixa/comic-tracker/internal/schedule"
	"github.com/anoixa/comic-tracker/utils"
)

// Report 可序列化、可缓存的状态报表
type Report struct {
	Today       string      `json:"today"`
	Days        []string    `json:"days"`
	Comics      []ReportRow `json:"comics"`
	GeneratedAt time.Time   `json:"generated_at"`
}

// ReportRow 一个漫画的报表行
type ReportRow struct {
	ComicID  uint              `json:"comic_id"`
	Slug     string            `json:"slug"`
	Name     string            `json:"name"`
	Schedule schedule.Schedule `json:"schedule"`
	Cells    []ReportCell      `json:"cells"`
}

// ReportCell 报表单元格
type ReportCell struct {
	Date     string          `json:"date"`
	Tags     []string        `json:"tags"`
	Releases []ReportRelease `json:"releases,omitempty"`
}

// ReportRelease 单元格中的 release 摘要
type ReportRelease struct {
	ID       uint   `json:"id"`
	StripID  uint   `json:"strip_id"`
	Checksum string `json:"checksum"`
	Title    string `json:"title,omitempty"`
}

// NewReport 将时间线转换为报表
func NewReport(t *Timeline, generatedAt time.Time) *Report {
	report := &Report{
		Today:       t.Today.Format(utils.DateLayout),
		Days:        make([]string, len(t.Days)),
		Comics:      make([]ReportRow, 0, t.Len()),
		GeneratedAt: generatedAt.UTC(),
	}
	for i, d := range t.Days {
		report.Days[i] = d.Format(utils.DateLayout)
	}

	for _, row := range t.Rows() {
		r := ReportRow{
			ComicID:  row.Comic.ID,
			Slug:     row.Comic.Slug,
			Name:     row.Comic.Name,
			Schedule: row.Schedule,
			Cells:    make([]ReportCell, len(row.Cells)),
		}
		for i, cell := range row.Cells {
			c := ReportCell{
				Date: cell.Date.Format(utils.DateLayout),
				Tags: cell.Tags.Names(),
			}
			for _, rel := range cell.Releases {
				c.Releases = append(c.Releases, ReportRelease{
					ID:       rel.ID,
					StripID:  rel.StripID,
					Checksum: rel.Strip.Checksum,
					Title:    rel.Strip.Title,
				})
			}
			r.Cells[i] = c
		}
		report.Comics = append(report.Comics, r)
	}
	return report
}

// warmTimeout 后台预热单次构建的超时
const warmTimeout = 30 * time.Second

// Submitter 后台任务提交
type Submitter interface {
	Submit(task func()) bool
}

// Service 带缓存的报表服务
type Service struct {
	builder *Builder
	cache   *cache.Helper
	days    int

	warmer  Submitter
	pending atomic.Bool
}

// NewService 创建报表服务，defaultDays<=0 时使用 DefaultDays
func NewService(builder *Builder, cacheHelper *cache.Helper, defaultDays int) *Service {
	if defaultDays <= 0 {
		defaultDays = DefaultDays
	}
	return &Service{builder: builder, cache: cacheHelper, days: defaultDays}
}

// Report 返回状态报表，缓存键包含报表日期，跨天自动失效
func (s *Service) Report(ctx context.Context, days int) (*Report, error) {
	if days <= 0 {
		days = s.days
	}
	today := s.builder.Today().Format(utils.DateLayout)
	key := s.cache.StatusReportKey(ctx, days, today)

	var cached Report
	if err := s.cache.GetCachedStatusReportAt(ctx, key, &cached); err == nil {
		return &cached, nil
	} else if !cache.IsCacheMiss(err) {
		utils.LogIfDevf("[Status] cache read failed: %v", err)
	}

	timeline, err := s.builder.Build(ctx, days)
	if err != nil {
		return nil, err
	}
	report := NewReport(timeline, s.builder.now())

	if err := s.cache.CacheStatusReportAt(ctx, key, report); err != nil {
		utils.LogIfDevf("[Status] cache write failed: %v", err)
	}
	return report, nil
}

// Timeline 不经缓存直接构建时间线
func (s *Service) Timeline(ctx context.Context, days int) (*Timeline, error) {
	if days <= 0 {
		days = s.days
	}
	return s.builder.Build(ctx, days)
}

// WarmWith 失效后通过 pool 在后台重建默认窗口的报表
func (s *Service) WarmWith(pool Submitter) {
	s.warmer = pool
}

// Invalidate 使所有缓存的报表失效
func (s *Service) Invalidate(ctx context.Context) error {
	if err := s.cache.InvalidateStatusReports(ctx); err != nil {
		return err
	}
	s.warm()
	return nil
}

// warm 同一时间最多排队一个预热任务
func (s *Service) warm() {
	if s.warmer == nil || !s.cache.Enabled() || !s.pending.CompareAndSwap(false, true) {
		return
	}

	ok := s.warmer.Submit(func() {
		s.pending.Store(false)
		ctx, cancel := context.WithTimeout(context.Background(), warmTimeout)
		defer cancel()
		if _, err := s.Report(ctx, s.days); err != nil {
			utils.LogIfDevf("[Status] warm-up failed: %v", err)
		}
	})
	if !ok {
		s.pending.Store(false)
	}
}

// Today 报表时区下的今天
func (s *Service) Today() time.Time {
	return s.builder.Today()
}

// DefaultDays 未指定窗口时使用的天数
func (s *Service) DefaultDays() int {
	return s.days
}
