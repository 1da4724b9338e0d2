package status

import (
	"context"
	"fmt"
	"sort"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/anoixa/comic-tracker/database/models"
	releasesrepo "github.com/anoixa/comic-tracker/database/repo/releases"
	"github.com/anoixa/comic-tracker/internal/schedule"
	"github.com/anoixa/comic-tracker/utils"
)

// DefaultDays 默认报表回看天数
const DefaultDays = 21

// ComicLister 列出启用的漫画
type ComicLister interface {
	ListActive(ctx context.Context) ([]*models.Comic, error)
}

// ReleaseFinder 按区间查询 release
type ReleaseFinder interface {
	InRange(ctx context.Context, q releasesrepo.RangeQuery) ([]*models.Release, error)
}

// ScheduleSource 批量推断发布计划
type ScheduleSource interface {
	InferMany(ctx context.Context, comicIDs []uint, asOf time.Time, windowDays int) (map[uint]schedule.Schedule, error)
}

// Builder 时间线构建器，除读取查询外无副作用
type Builder struct {
	comics    ComicLister
	releases  ReleaseFinder
	schedules ScheduleSource
	now       func() time.Time
	location  *time.Location
}

// Option 构建器选项
type Option func(*Builder)

// WithClock 替换时钟
func WithClock(now func() time.Time) Option {
	return func(b *Builder) { b.now = now }
}

// WithLocation 以该时区判断"今天"
func WithLocation(loc *time.Location) Option {
	return func(b *Builder) {
		if loc != nil {
			b.location = loc
		}
	}
}

// NewBuilder 创建时间线构建器
func NewBuilder(comics ComicLister, releases ReleaseFinder, schedules ScheduleSource, opts ...Option) *Builder {
	b := &Builder{
		comics:    comics,
		releases:  releases,
		schedules: schedules,
		now:       time.Now,
		location:  time.Local,
	}
	for _, opt := range opts {
		opt(b)
	}
	return b
}

// Today 当前报表日期（UTC 零点）
func (b *Builder) Today() time.Time {
	return utils.CivilDate(b.now().In(b.location))
}

// Build 构建从明天倒推到 today-days 共 days+2 天的时间线，days<=0 时使用默认值
func (b *Builder) Build(ctx context.Context, days int) (*Timeline, error) {
	if days <= 0 {
		days = DefaultDays
	}

	today := b.Today()
	since := today.AddDate(0, 0, -days)

	var (
		comics   []*models.Comic
		releases []*models.Release
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		comics, err = b.comics.ListActive(gctx)
		if err != nil {
			return fmt.Errorf("list active comics: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		var err error
		releases, err = b.releases.InRange(gctx, releasesrepo.RangeQuery{From: since, ActiveOnly: true})
		if err != nil {
			return fmt.Errorf("load releases since %s: %w", since.Format(utils.DateLayout), err)
		}
		return nil
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	sort.SliceStable(comics, func(i, j int) bool { return comics[i].Slug < comics[j].Slug })

	ids := make([]uint, len(comics))
	for i, c := range comics {
		ids[i] = c.ID
	}
	schedules, err := b.schedules.InferMany(ctx, ids, today, days)
	if err != nil {
		return nil, fmt.Errorf("infer schedules: %w", err)
	}

	timeline := newTimeline(today, days)
	for _, comic := range comics {
		timeline.append(newRow(comic, schedules[comic.ID], timeline.Days))
	}

	for _, release := range releases {
		row, ok := timeline.Row(release.ComicID)
		if !ok {
			continue
		}
		i, ok := timeline.offset(release.Date())
		// 明天的单元格只表示"尚未到期"
		if !ok || i == 0 {
			continue
		}
		cell := &row.Cells[i]
		cell.Tags |= TagFetched
		cell.Releases = append(cell.Releases, release)
	}

	return timeline, nil
}

func newRow(comic *models.Comic, sched schedule.Schedule, days []time.Time) *Row {
	row := &Row{
		Comic:    comic,
		Schedule: sched,
		Cells:    make([]Cell, len(days)),
	}
	for i, date := range days {
		cell := Cell{Date: date}
		switch {
		case sched.Empty():
			cell.Tags = TagUnscheduled
		case sched.Has(date.Weekday()):
			cell.Tags = TagScheduled
		}
		row.Cells[i] = cell
	}
	return row
}
