/* Copyright (c) 2025 Hamed Shams <https://hamedshams.com>
 * SPDX-License-Identifier: BSD-3-Clause */
package effort

import (
    "time"

    "github.com/HamedShams/effort-pulse/internal/domain"
)

// Day truncates t to a UTC midnight. All bucket math is done on days.
func Day(t time.Time) time.Time {
    return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

func weekStart(t time.Time) time.Time {
    weekday := int(t.Weekday())
    if weekday == 0 { weekday = 7 } // Sunday
    return Day(t).AddDate(0, 0, -(weekday - 1))
}

// WeekBounds returns count consecutive Monday-Sunday weeks ending with the
// week containing anchor, most recent first.
func WeekBounds(count int, anchor time.Time) []domain.DateRange {
    out := make([]domain.DateRange, 0, count)
    for i := 0; i < count; i++ {
        start := weekStart(anchor.AddDate(0, 0, -7*i))
        out = append(out, domain.DateRange{Start: start, End: start.AddDate(0, 0, 6)})
    }
    return out
}

// MonthBounds returns the first and last calendar day of the month offset
// months from the month containing anchor. Negative offsets go back;
// offset -1 with anchor today is last month.
func MonthBounds(offset int, anchor time.Time) domain.DateRange {
    first := time.Date(anchor.Year(), anchor.Month()+time.Month(offset), 1, 0, 0, 0, 0, time.UTC)
    return domain.DateRange{Start: first, End: first.AddDate(0, 1, -1)}
}

// Workdays counts weekdays in [start, end] inclusive, excluding holidays.
func Workdays(start, end time.Time, holidays []time.Time) int {
    skip := make(map[time.Time]struct{}, len(holidays))
    for _, h := range holidays { skip[Day(h)] = struct{}{} }
    n := 0
    for d := Day(start); !d.After(Day(end)); d = d.AddDate(0, 0, 1) {
        wd := d.Weekday()
        if wd == time.Saturday || wd == time.Sunday { continue }
        if _, ok := skip[d]; ok { continue }
        n++
    }
    return n
}
