// Package streaks derives streak summaries from dated activity series.
package streaks

import (
	"sort"
	"time"

	"github.com/kitcsbs/go-tracker/internal/models"
)

// levelEstimates maps a calendar intensity level (0-4) to an estimated daily
// count. The calendar only exposes the level, so these are documented
// estimates, not exact counts: level 1 covers roughly 1-3 contributions,
// level 2 covers 4-9, level 3 covers 10-19, level 4 means 20 or more.
var levelEstimates = [5]int{0, 2, 6, 14, 25}

// EstimateCount returns the estimated daily count for a calendar intensity
// level. Out-of-range levels clamp to the nearest bucket.
func EstimateCount(level int) int {
	if level < 0 {
		level = 0
	}
	if level >= len(levelEstimates) {
		level = len(levelEstimates) - 1
	}
	return levelEstimates[level]
}

// Dedupe sorts days ascending by calendar date and collapses duplicate dates
// last-write-wins.
func Dedupe(days []models.ContributionDay) []models.ContributionDay {
	byDate := make(map[time.Time]models.ContributionDay, len(days))
	for _, d := range days {
		d.Date = truncateDay(d.Date)
		byDate[d.Date] = d
	}

	out := make([]models.ContributionDay, 0, len(byDate))
	for _, d := range byDate {
		out = append(out, d)
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].Date.Before(out[j].Date)
	})
	return out
}

// Compute derives streaks from days already deduplicated and sorted
// ascending by date. TotalContributions is left 0: per-day counts may be
// estimates, so the caller fills in the externally reported total when the
// source exposes one.
//
// The current streak scans backward from the most recent day not after
// today. A zero-count day is tolerated while no positive day has been
// counted yet and the day is within one day of today (today's activity may
// not have posted); once the streak holds any positive day, a zero-count day
// ends the scan.
func Compute(days []models.ContributionDay, today time.Time) models.StreakSummary {
	summary := models.StreakSummary{}
	if len(days) == 0 {
		return summary
	}

	today = truncateDay(today)

	for i := len(days) - 1; i >= 0; i-- {
		day := truncateDay(days[i].Date)
		if day.After(today) {
			continue
		}
		if days[i].Count > 0 {
			summary.CurrentStreak++
			continue
		}
		if summary.CurrentStreak == 0 && daysBetween(day, today) <= 1 {
			continue
		}
		break
	}

	run := 0
	for _, day := range days {
		if day.Count > 0 {
			run++
			if run > summary.LongestStreak {
				summary.LongestStreak = run
			}
		} else {
			run = 0
		}
	}

	return summary
}

func truncateDay(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

func daysBetween(from, to time.Time) int {
	return int(to.Sub(from).Hours() / 24)
}
