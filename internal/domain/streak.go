package domain

import "time"

// MaxStreakScan bounds the backward walk of CurrentStreak.
const MaxStreakScan = 365

// StreakWindow returns the days CurrentStreak may read when evaluated on
// today: MaxStreakScan days plus yesterday's start.
func StreakWindow(today string) DateWindow {
	return WindowEndingOn(today, MaxStreakScan+1)
}

// ConsistentWeekThreshold is the number of active days a week needs to count.
const ConsistentWeekThreshold = 4

// CalendarStats summarizes a month of logging activity.
type CalendarStats struct {
	ActiveDays      int `json:"activeDays"`
	TotalDays       int `json:"totalDays"`
	MissedDays      int `json:"missedDays"`
	CurrentStreak   int `json:"currentStreak"`
	ConsistentWeeks int `json:"consistentWeeks"`
}

// CurrentStreak counts consecutive active days ending today.
// an empty today does not break the streak yet: counting then starts
// from yesterday. the walk stops at the first absent day or after
// MaxStreakScan days.
func CurrentStreak(active ActiveDays, today string) int {
	day := today
	if !active[day] {
		day = AddDays(today, -1)
	}

	streak := 0
	for i := 0; i < MaxStreakScan; i++ {
		if !active[day] {
			break
		}
		streak++
		day = AddDays(day, -1)
	}
	return streak
}

// ConsistentWeeks counts the weeks of a month with at least
// ConsistentWeekThreshold active days. weeks break on Monday.
//
// the trailing week is tested on the last day of the month even when it
// is shorter than seven days, so a partial week can still qualify.
func ConsistentWeeks(active ActiveDays, year int, month time.Month) int {
	days := MonthWindow(year, month).Days()

	weeks := 0
	weekActive := 0
	for i, key := range days {
		t, _ := ParseDayKey(key)
		if t.Weekday() == time.Monday {
			if weekActive >= ConsistentWeekThreshold {
				weeks++
			}
			weekActive = 0
		}

		if active[key] {
			weekActive++
		}

		if i == len(days)-1 && weekActive >= ConsistentWeekThreshold {
			weeks++
		}
	}
	return weeks
}

// MissedDays counts the days of the window strictly before today without a meal.
// today itself and future days are never missed.
func MissedDays(active ActiveDays, window DateWindow, today string) int {
	missed := 0
	for _, key := range window.Days() {
		if key >= today {
			break
		}
		if !active[key] {
			missed++
		}
	}
	return missed
}

// BuildCalendarStats derives the month summary from non zero-filled buckets.
func BuildCalendarStats(buckets map[string]DayBucket, year int, month time.Month, today string) CalendarStats {
	window := MonthWindow(year, month)
	active := ActiveDaysFrom(buckets)

	return CalendarStats{
		ActiveDays:      active.CountIn(window),
		TotalDays:       window.Len(),
		MissedDays:      MissedDays(active, window, today),
		CurrentStreak:   CurrentStreak(active, today),
		ConsistentWeeks: ConsistentWeeks(active, year, month),
	}
}
