package utils

import (
	"fmt"
	"time"
)

// DateLayout 日期格式 yyyy-mm-dd
const DateLayout = "2006-01-02"

// CivilDate 取 t 在其时区下的日历日期，返回该日期的 UTC 零点
func CivilDate(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// ParseDate 解析 yyyy-mm-dd
func ParseDate(s string) (time.Time, error) {
	t, err := time.ParseInLocation(DateLayout, s, time.UTC)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid date %q, expected %s", s, DateLayout)
	}
	return t, nil
}

// DaysBetween 两个日历日期之间相差的天数 (to - from)
func DaysBetween(from, to time.Time) int {
	return int(CivilDate(to).Sub(CivilDate(from)).Hours() / 24)
}
