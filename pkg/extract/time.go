package extract

import (
	"regexp"
	"strconv"
	"strings"
	"time"
)

// "at 3pm", "at 15:00", "at 9:30 am"
var timePattern = regexp.MustCompile(`(?i)\bat\s+(\d{1,2})(?::(\d{2}))?\s*(am|pm)?\b`)

// TimeOfDay is the result of ExtractTime. Hours and Minutes are zero when HasTime is false.
type TimeOfDay struct {
	Hours   int
	Minutes int
	HasTime bool
}

// ExtractTime matches a single "at H[:MM][am|pm]" token.
func ExtractTime(text string) TimeOfDay {
	m := timePattern.FindStringSubmatch(text)
	if m == nil {
		return TimeOfDay{}
	}

	hours, err := strconv.Atoi(m[1])
	if err != nil {
		return TimeOfDay{}
	}
	minutes := 0
	if m[2] != "" {
		if minutes, err = strconv.Atoi(m[2]); err != nil {
			return TimeOfDay{}
		}
	}

	switch strings.ToLower(m[3]) {
	case "pm":
		if hours < 12 {
			hours += 12
		}
	case "am":
		if hours == 12 {
			hours = 0
		}
	}

	if hours > 23 || minutes > 59 {
		return TimeOfDay{}
	}

	return TimeOfDay{Hours: hours, Minutes: minutes, HasTime: true}
}

// ResolveSchedule combines ExtractDate and ExtractTime into an event slot.
//   - no date: now + 1 hour on the hour (an explicit time is applied to that day)
//   - date without time: 10:00, or the next full hour when the date is today
//   - end is always start + 1 hour
func ResolveSchedule(text string, now time.Time) (time.Time, time.Time) {
	tod := ExtractTime(text)
	date, hasDate := ExtractDate(text, now)

	var start time.Time
	switch {
	case !hasDate:
		base := now.Add(time.Hour)
		hour, minute := base.Hour(), 0
		if tod.HasTime {
			hour, minute = tod.Hours, tod.Minutes
		}
		start = time.Date(base.Year(), base.Month(), base.Day(), hour, minute, 0, 0, now.Location())
	case tod.HasTime:
		start = time.Date(date.Year(), date.Month(), date.Day(), tod.Hours, tod.Minutes, 0, 0, now.Location())
	case IsSameDay(now, date):
		start = time.Date(date.Year(), date.Month(), date.Day(), now.Hour()+1, 0, 0, 0, now.Location())
	default:
		start = time.Date(date.Year(), date.Month(), date.Day(), 10, 0, 0, 0, now.Location())
	}

	return start, start.Add(time.Hour)
}
