package schedule

import (
	"context"
	"fmt"
	"time"

	releasesrepo "github.com/anoixa/comic-tracker/database/repo/releases"
	"github.com/anoixa/comic-tracker/utils"
)

// History 提供去重后的发布日期
type History interface {
	DatesSince(ctx context.Context, comicIDs []uint, since time.Time) ([]releasesrepo.ComicDate, error)
}

// Policy 推断策略
// LookbackDays 回看天数，实际回看取 max(LookbackDays, 报表窗口+2)
// MinReleases 某星期至少出现多少个不同发布日期才算计划发布日
type Policy struct {
	LookbackDays int
	MinReleases  int
}

// DefaultPolicy 任意一次历史发布即视为计划发布日
var DefaultPolicy = Policy{LookbackDays: 100, MinReleases: 1}

// Inferencer 计划推断器，只读
type Inferencer struct {
	history History
	policy  Policy
}

// NewInferencer 创建推断器，零值字段使用默认策略
func NewInferencer(history History, policy Policy) *Inferencer {
	if policy.LookbackDays <= 0 {
		policy.LookbackDays = DefaultPolicy.LookbackDays
	}
	if policy.MinReleases <= 0 {
		policy.MinReleases = DefaultPolicy.MinReleases
	}
	return &Inferencer{history: history, policy: policy}
}

// Policy 返回生效的策略
func (i *Inferencer) Policy() Policy {
	return i.policy
}

// Since 回看窗口的起始日期
func (i *Inferencer) Since(asOf time.Time, windowDays int) time.Time {
	lookback := i.policy.LookbackDays
	if windowDays+2 > lookback {
		lookback = windowDays + 2
	}
	return utils.CivilDate(asOf).AddDate(0, 0, -lookback)
}

// Infer 推断单个漫画的计划，没有历史时返回空集
func (i *Inferencer) Infer(ctx context.Context, comicID uint, asOf time.Time, windowDays int) (Schedule, error) {
	all, err := i.InferMany(ctx, []uint{comicID}, asOf, windowDays)
	if err != nil {
		return 0, err
	}
	return all[comicID], nil
}

// InferMany 一次查询推断多个漫画的计划，结果包含每个请求的 ID
func (i *Inferencer) InferMany(ctx context.Context, comicIDs []uint, asOf time.Time, windowDays int) (map[uint]Schedule, error) {
	result := make(map[uint]Schedule, len(comicIDs))
	if len(comicIDs) == 0 {
		return result, nil
	}

	rows, err := i.history.DatesSince(ctx, comicIDs, i.Since(asOf, windowDays))
	if err != nil {
		return nil, fmt.Errorf("load release history: %w", err)
	}

	dates := make(map[uint][]time.Time, len(comicIDs))
	for _, row := range rows {
		dates[row.ComicID] = append(dates[row.ComicID], row.Date())
	}

	for _, id := range comicIDs {
		result[id] = FromDates(dates[id], i.policy.MinReleases)
	}
	return result, nil
}
