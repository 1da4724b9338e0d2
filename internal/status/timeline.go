// Package status 构建按漫画、按日的发布状态时间线
package status

import (
	"time"

	"github.com/anoixa/comic-tracker/database/models"
	"github.com/anoixa/comic-tracker/internal/schedule"
	"github.com/anoixa/comic-tracker/utils"
)

// Tags 单元格标记集合
type Tags uint8

const (
	// TagUnscheduled 漫画没有可推断的发布计划
	TagUnscheduled Tags = 1 << iota
	// TagScheduled 当天在推断出的计划中
	TagScheduled
	// TagFetched 当天有 release
	TagFetched
)

// Has 判断是否包含全部给定标记
func (t Tags) Has(tag Tags) bool {
	return t&tag == tag
}

// Names 按固定顺序返回标记名
func (t Tags) Names() []string {
	names := make([]string, 0, 3)
	if t.Has(TagUnscheduled) {
		names = append(names, "unscheduled")
	}
	if t.Has(TagScheduled) {
		names = append(names, "scheduled")
	}
	if t.Has(TagFetched) {
		names = append(names, "fetched")
	}
	return names
}

// Cell 某漫画某一天的状态，同一天的多个 release 全部保留
type Cell struct {
	Date     time.Time
	Tags     Tags
	Releases []*models.Release
}

// Row 一个漫画的时间线，Cells[0] 为明天
type Row struct {
	Comic    *models.Comic
	Schedule schedule.Schedule
	Cells    []Cell
}

// Timeline 有序的行集合，按 slug 排序并可按漫画 ID 查找
type Timeline struct {
	Today time.Time
	// Days 从明天倒序到 today-N
	Days []time.Time

	rows  []*Row
	index map[uint]int
}

func newTimeline(today time.Time, days int) *Timeline {
	tomorrow := today.AddDate(0, 0, 1)
	dates := make([]time.Time, days+2)
	for i := range dates {
		dates[i] = tomorrow.AddDate(0, 0, -i)
	}
	return &Timeline{
		Today: today,
		Days:  dates,
		index: make(map[uint]int),
	}
}

func (t *Timeline) append(row *Row) {
	t.index[row.Comic.ID] = len(t.rows)
	t.rows = append(t.rows, row)
}

// Rows 按插入顺序返回全部行
func (t *Timeline) Rows() []*Row {
	return t.rows
}

// Row 按漫画 ID 查找行
func (t *Timeline) Row(comicID uint) (*Row, bool) {
	i, ok := t.index[comicID]
	if !ok {
		return nil, false
	}
	return t.rows[i], true
}

// Len 行数
func (t *Timeline) Len() int {
	return len(t.rows)
}

// offset 距明天的天数，超出单元格范围时 ok 为 false
func (t *Timeline) offset(date time.Time) (int, bool) {
	if len(t.Days) == 0 {
		return 0, false
	}
	i := utils.DaysBetween(date, t.Days[0])
	if i < 0 || i >= len(t.Days) {
		return 0, false
	}
	return i, true
}
