package util

import "time"

const (
	DateFormat = "2006-01-02"
	TimeFormat = "2006-01-02 15:04:05"
)

// 经验来源
const (
	XpSourceAnswer = "answer"
	XpSourceAdmin  = "admin"
)

// DayKey 按指定时区返回日期字符串
func DayKey(t time.Time, loc *time.Location) string {
	return t.In(loc).Format(DateFormat)
}

// DayRange 返回 loc 时区内 day 当天的 [start, end) 区间（UTC）
func DayRange(day time.Time, loc *time.Location) (time.Time, time.Time) {
	y, m, d := day.In(loc).Date()
	start := time.Date(y, m, d, 0, 0, 0, 0, loc)
	return start.UTC(), start.AddDate(0, 0, 1).UTC()
}

// ParseDay 按指定时区解析 YYYY-MM-DD
func ParseDay(s string, loc *time.Location) (time.Time, error) {
	return time.ParseInLocation(DateFormat, s, loc)
}
