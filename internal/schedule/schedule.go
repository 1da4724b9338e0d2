// Package schedule 根据历史发布日期推断漫画的周发布计划
package schedule

import (
	"encoding/json"
	"strings"
	"time"
)

// Schedule 星期集合，第 d 位表示 time.Weekday(d)，周日为 0
type Schedule uint8

// FromWeekdays 由星期列表构造
func FromWeekdays(days ...time.Weekday) Schedule {
	var s Schedule
	for _, d := range days {
		s = s.Add(d)
	}
	return s
}

// Add 返回加入 d 后的集合
func (s Schedule) Add(d time.Weekday) Schedule {
	if d < time.Sunday || d > time.Saturday {
		return s
	}
	return s | 1<<uint(d)
}

// Has 判断 d 是否在集合中
func (s Schedule) Has(d time.Weekday) bool {
	return s&(1<<uint(d)) != 0
}

// Empty 空集表示无法推断计划，报表中视为 unscheduled
func (s Schedule) Empty() bool {
	return s == 0
}

// Weekdays 升序返回星期编号 0..6
func (s Schedule) Weekdays() []int {
	days := make([]int, 0, 7)
	for d := time.Sunday; d <= time.Saturday; d++ {
		if s.Has(d) {
			days = append(days, int(d))
		}
	}
	return days
}

func (s Schedule) String() string {
	if s.Empty() {
		return "-"
	}
	names := make([]string, 0, 7)
	for _, d := range s.Weekdays() {
		names = append(names, time.Weekday(d).String()[:3])
	}
	return strings.Join(names, ",")
}

// MarshalJSON 序列化为星期编号数组
func (s Schedule) MarshalJSON() ([]byte, error) {
	return json.Marshal(s.Weekdays())
}

// UnmarshalJSON 从星期编号数组还原
func (s *Schedule) UnmarshalJSON(data []byte) error {
	var days []int
	if err := json.Unmarshal(data, &days); err != nil {
		return err
	}
	*s = 0
	for _, d := range days {
		*s = s.Add(time.Weekday(d))
	}
	return nil
}

// FromDates 统计每个星期出现的不同日期数，达到 minReleases 即视为计划发布日
func FromDates(dates []time.Time, minReleases int) Schedule {
	if minReleases < 1 {
		minReleases = 1
	}

	seen := make(map[string]struct{}, len(dates))
	var counts [7]int
	for _, d := range dates {
		key := d.Format("2006-01-02")
		if _, dup := seen[key]; dup {
			continue
		}
		seen[key] = struct{}{}
		counts[d.Weekday()]++
	}

	var s Schedule
	for d, n := range counts {
		if n >= minReleases {
			s = s.Add(time.Weekday(d))
		}
	}
	return s
}
