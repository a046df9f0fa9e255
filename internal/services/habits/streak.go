package habits

import (
	"sort"
	"time"
)

// DateLayout is the calendar date format stored in completed_dates.
const DateLayout = "2006-01-02"

// addDate inserts date into a sorted, de-duplicated list and reports whether it was new.
func addDate(dates []string, date string) ([]string, bool) {
	i := sort.SearchStrings(dates, date)
	if i < len(dates) && dates[i] == date {
		return dates, false
	}
	dates = append(dates, "")
	copy(dates[i+1:], dates[i:])
	dates[i] = date
	return dates, true
}

// streaks returns the run of consecutive days ending at the latest date and the longest run.
// dates must be sorted and valid.
func streaks(dates []string) (current, longest int) {
	var prev time.Time
	run := 0
	for _, d := range dates {
		day, err := time.Parse(DateLayout, d)
		if err != nil {
			continue
		}
		if run > 0 && day.Sub(prev) == 24*time.Hour {
			run++
		} else {
			run = 1
		}
		if run > longest {
			longest = run
		}
		prev = day
	}
	return run, longest
}
