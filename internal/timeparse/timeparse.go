package timeparse

import (
	"regexp"
	"strconv"
	"strings"
	"time"
)

// Extractor is an injectable "text -> optional timestamp" capability.
// Callers must tolerate a nil Extractor and degrade to "no timestamp".
type Extractor func(text string, now time.Time) (time.Time, bool)

const defaultHour = 9 // bare day references resolve to 9:00 AM

var (
	isoDateTimeRe = regexp.MustCompile(`\d{4}-\d{2}-\d{2}[T ]\d{2}:\d{2}(?::\d{2})?`)
	isoDateRe     = regexp.MustCompile(`\d{4}-\d{2}-\d{2}`)
	tomorrowRe    = regexp.MustCompile(`(?i)\btomorrow\b(?:\s+(?:at\s+)?(\d{1,2})(?::(\d{2}))?\s*(am|pm)?)?`)
	todayRe       = regexp.MustCompile(`(?i)\btoday\b(?:\s+(?:at\s+)?(\d{1,2})(?::(\d{2}))?\s*(am|pm)?)?`)
	nextDowRe     = regexp.MustCompile(`(?i)\bnext\s+(sun|mon|tue|wed|thu|fri|sat)[a-z]*\b`)
	inDurRe       = regexp.MustCompile(`(?i)\bin\s+(\d+)\s*(sec(?:ond)?s?|min(?:ute)?s?|hours?|days?|weeks?)\b`)
	atTimeRe      = regexp.MustCompile(`(?i)\bat\s+(\d{1,2})(?::(\d{2}))?\s*(am|pm)?\b`)
	clockAmPmRe   = regexp.MustCompile(`(?i)\b(\d{1,2})(?::(\d{2}))?\s*(am|pm)\b`)
)

// Extract scans the whole text for the first recognizable date or time
// expression and resolves it relative to now. It is a best-effort fuzzy
// match: absolute ISO stamps win, then day words, weekdays, relative
// durations and clock times.
func Extract(text string, now time.Time) (time.Time, bool) {
	if strings.TrimSpace(text) == "" {
		return time.Time{}, false
	}

	if m := isoDateTimeRe.FindString(text); m != "" {
		for _, layout := range []string{"2006-01-02T15:04:05", "2006-01-02 15:04:05", "2006-01-02T15:04", "2006-01-02 15:04"} {
			if t, err := time.ParseInLocation(layout, m, now.Location()); err == nil {
				return t, true
			}
		}
	}

	if m := tomorrowRe.FindStringSubmatch(text); m != nil {
		day := now.AddDate(0, 0, 1)
		h, min := clockFromMatch(m[1], m[2], m[3])
		return time.Date(day.Year(), day.Month(), day.Day(), h, min, 0, 0, now.Location()), true
	}

	if m := todayRe.FindStringSubmatch(text); m != nil {
		h, min := clockFromMatch(m[1], m[2], m[3])
		return time.Date(now.Year(), now.Month(), now.Day(), h, min, 0, 0, now.Location()), true
	}

	if m := nextDowRe.FindStringSubmatch(text); m != nil {
		day := nextWeekday(now, weekdayFromPrefix(m[1]))
		return time.Date(day.Year(), day.Month(), day.Day(), defaultHour, 0, 0, 0, now.Location()), true
	}

	if m := inDurRe.FindStringSubmatch(text); m != nil {
		n, _ := strconv.Atoi(m[1])
		return now.Add(durationUnit(m[2], n)), true
	}

	if m := atTimeRe.FindStringSubmatch(text); m != nil {
		if h, min, ok := clockValue(m[1], m[2], m[3]); ok {
			t := time.Date(now.Year(), now.Month(), now.Day(), h, min, 0, 0, now.Location())
			if t.Before(now) {
				t = t.AddDate(0, 0, 1)
			}
			return t, true
		}
	}

	if m := clockAmPmRe.FindStringSubmatch(text); m != nil {
		if h, min, ok := clockValue(m[1], m[2], m[3]); ok {
			t := time.Date(now.Year(), now.Month(), now.Day(), h, min, 0, 0, now.Location())
			if t.Before(now) {
				t = t.AddDate(0, 0, 1)
			}
			return t, true
		}
	}

	if m := isoDateRe.FindString(text); m != "" {
		if t, err := time.ParseInLocation("2006-01-02", m, now.Location()); err == nil {
			return t, true
		}
	}

	return time.Time{}, false
}

// clockFromMatch resolves an optional captured clock time, falling back to
// the default morning hour when the capture is absent or out of range.
func clockFromMatch(hs, ms, ampm string) (int, int) {
	if h, min, ok := clockValue(hs, ms, ampm); ok {
		return h, min
	}
	return defaultHour, 0
}

func clockValue(hs, ms, ampm string) (int, int, bool) {
	if hs == "" {
		return 0, 0, false
	}
	h, _ := strconv.Atoi(hs)
	min := 0
	if ms != "" {
		min, _ = strconv.Atoi(ms)
	}
	switch strings.ToLower(ampm) {
	case "pm":
		if h != 12 {
			h += 12
		}
	case "am":
		if h == 12 {
			h = 0
		}
	}
	if h < 0 || h > 23 || min < 0 || min > 59 {
		return 0, 0, false
	}
	return h, min, true
}

func durationUnit(unit string, n int) time.Duration {
	switch {
	case strings.HasPrefix(strings.ToLower(unit), "sec"):
		return time.Duration(n) * time.Second
	case strings.HasPrefix(strings.ToLower(unit), "min"):
		return time.Duration(n) * time.Minute
	case strings.HasPrefix(strings.ToLower(unit), "hour"):
		return time.Duration(n) * time.Hour
	case strings.HasPrefix(strings.ToLower(unit), "day"):
		return time.Duration(n) * 24 * time.Hour
	case strings.HasPrefix(strings.ToLower(unit), "week"):
		return time.Duration(n) * 7 * 24 * time.Hour
	}
	return time.Duration(n) * time.Minute
}

func weekdayFromPrefix(s string) time.Weekday {
	switch strings.ToLower(s) {
	case "sun":
		return time.Sunday
	case "mon":
		return time.Monday
	case "tue":
		return time.Tuesday
	case "wed":
		return time.Wednesday
	case "thu":
		return time.Thursday
	case "fri":
		return time.Friday
	default:
		return time.Saturday
	}
}

// nextWeekday returns the next occurrence of target strictly after today.
func nextWeekday(now time.Time, target time.Weekday) time.Time {
	ahead := int(target) - int(now.Weekday())
	if ahead <= 0 {
		ahead += 7
	}
	return now.AddDate(0, 0, ahead)
}
