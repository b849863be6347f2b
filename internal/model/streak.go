package model

import "time"

// StartOfDay 在 loc 时区下截断到当天 00:00。
// 存储值与当前时间必须使用同一个 loc 比较，否则跨时区会漂移
func StartOfDay(t time.Time, loc *time.Location) time.Time {
	if loc == nil {
		loc = time.UTC
	}
	local := t.In(loc)
	return time.Date(local.Year(), local.Month(), local.Day(), 0, 0, 0, 0, loc)
}

// DaysBetween 返回 from 到 to 之间相差的日历天数（按 loc 截断）。
// 用日期而不是小时数计算，夏令时切换日不会少算或多算一天
func DaysBetween(from, to time.Time, loc *time.Location) int {
	a := StartOfDay(from, loc)
	b := StartOfDay(to, loc)
	ad := time.Date(a.Year(), a.Month(), a.Day(), 0, 0, 0, 0, time.UTC)
	bd := time.Date(b.Year(), b.Month(), b.Day(), 0, 0, 0, 0, time.UTC)
	return int(bd.Sub(ad).Hours() / 24)
}

// AdvanceStreak 计算一次学习行为之后的连续天数。
//   - 同一天：不变
//   - 相差 1 天：+1
//   - 相差多于 1 天：重置为 1
//
// 只有跨天时才更新 lastActiveAt。now 早于 lastActiveAt（乱序提交）视为同一天处理
func AdvanceStreak(lastActiveAt, now time.Time, currentStreak int, loc *time.Location) (int, time.Time) {
	delta := DaysBetween(lastActiveAt, now, loc)
	switch {
	case delta <= 0:
		return currentStreak, lastActiveAt
	case delta == 1:
		return currentStreak + 1, now
	default:
		return 1, now
	}
}
