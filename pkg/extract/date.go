package extract

import (
	"regexp"
	"strconv"
	"strings"
	"time"
)

var (
	tomorrowPattern  = regexp.MustCompile(`(?i)\btomorrow\b`)
	todayPattern     = regexp.MustCompile(`(?i)\btoday\b`)
	nextWeekPattern  = regexp.MustCompile(`(?i)\bnext\s+week\b`)
	nextMonthPattern = regexp.MustCompile(`(?i)\bnext\s+month\b`)

	// Longer names first so the captured group is the full word.
	weekdayPattern = regexp.MustCompile(`(?i)\b(monday|mon|tuesday|tues|tue|wednesday|wed|thursday|thurs|thur|thu|friday|fri|saturday|sat|sunday|sun)\b`)

	// "the 12th", "15th", "on the 3rd"
	ordinalDayPattern = regexp.MustCompile(`(?i)\b(?:the\s+)?(\d{1,2})(?:st|nd|rd|th)\b`)
)

var weekdays = map[string]time.Weekday{
	"sunday": time.Sunday, "sun": time.Sunday,
	"monday": time.Monday, "mon": time.Monday,
	"tuesday": time.Tuesday, "tue": time.Tuesday, "tues": time.Tuesday,
	"wednesday": time.Wednesday, "wed": time.Wednesday,
	"thursday": time.Thursday, "thu": time.Thursday, "thur": time.Thursday, "thurs": time.Thursday,
	"friday": time.Friday, "fri": time.Friday,
	"saturday": time.Saturday, "sat": time.Saturday,
}

// ExtractDate resolves the first date expression in text relative to now.
// Precedence:
//  1. "tomorrow"            → now + 1 day
//  2. "today"               → now
//  3. weekday name/abbrev   → next occurrence strictly after today
//  4. ordinal day of month  → this month, or the next month holding that day once it has passed
//  5. "next week"           → now + 7 days
//  6. "next month"          → now + 1 month
//
// The returned value keeps now's clock time; callers decide the hour.
func ExtractDate(text string, now time.Time) (time.Time, bool) {
	if tomorrowPattern.MatchString(text) {
		return now.AddDate(0, 0, 1), true
	}
	if todayPattern.MatchString(text) {
		return now, true
	}

	if m := weekdayPattern.FindStringSubmatch(text); m != nil {
		target := weekdays[strings.ToLower(m[1])]
		offset := int(target) - int(now.Weekday())
		if offset <= 0 {
			offset += 7
		}
		return now.AddDate(0, 0, offset), true
	}

	if m := ordinalDayPattern.FindStringSubmatch(text); m != nil {
		day, err := strconv.Atoi(m[1])
		if err == nil {
			if date, ok := nextDayOfMonth(day, now); ok {
				return date, true
			}
		}
	}

	if nextWeekPattern.MatchString(text) {
		return now.AddDate(0, 0, 7), true
	}
	if nextMonthPattern.MatchString(text) {
		return now.AddDate(0, 1, 0), true
	}

	return time.Time{}, false
}

// nextDayOfMonth finds the first month (starting with the current one) in which
// the given day exists and has not passed yet.
func nextDayOfMonth(day int, now time.Time) (time.Time, bool) {
	if day < 1 || day > 31 {
		return time.Time{}, false
	}

	for i := 0; i < 12; i++ {
		candidate := time.Date(now.Year(), now.Month()+time.Month(i), day,
			now.Hour(), now.Minute(), now.Second(), now.Nanosecond(), now.Location())

		// time.Date normalizes Feb 30 into March; skip months without that day
		if candidate.Day() != day {
			continue
		}
		if i == 0 && day < now.Day() {
			continue
		}
		return candidate, true
	}
	return time.Time{}, false
}

// IsSameDay reports whether a and b fall on the same calendar day in a's location.
func IsSameDay(a, b time.Time) bool {
	b = b.In(a.Location())
	return a.Year() == b.Year() && a.Month() == b.Month() && a.Day() == b.Day()
}
