package streak

import "time"

func truncateDay(t time.Time) time.Time {
	y, m, d := t.UTC().Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func countByDay(completions []time.Time) map[string]int {
	counts := make(map[string]int)
	for _, t := range completions {
		counts[t.UTC().Format(DateLayout)]++
	}
	return counts
}

// BuildWindow activity of the last days days ending today, oldest first
func BuildWindow(days int, today time.Time, completions []time.Time) []*ActivityDay {
	counts := countByDay(completions)
	start := truncateDay(today).AddDate(0, 0, -(days - 1))

	window := make([]*ActivityDay, 0, days)
	for i := 0; i < days; i++ {
		key := start.AddDate(0, 0, i).Format(DateLayout)
		window = append(window, &ActivityDay{
			Date:   key,
			Count:  counts[key],
			Active: counts[key] > 0,
		})
	}
	return window
}

// CurrentStreak consecutive active days ending today, or ending yesterday while today
// has no activity yet
func CurrentStreak(today time.Time, completions []time.Time) int {
	counts := countByDay(completions)
	day := truncateDay(today)
	if counts[day.Format(DateLayout)] == 0 {
		day = day.AddDate(0, 0, -1)
	}

	streak := 0
	for streak < StreakLookback && counts[day.Format(DateLayout)] > 0 {
		streak++
		day = day.AddDate(0, 0, -1)
	}
	return streak
}
