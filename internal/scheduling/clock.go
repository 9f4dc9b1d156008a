package scheduling

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

// DateLayout is the wire and display format of calendar dates.
const DateLayout = "2006-01-02"

// ParseDate parses a YYYY-MM-DD calendar date into UTC midnight.
func ParseDate(s string) (time.Time, error) {
	d, err := time.Parse(DateLayout, strings.TrimSpace(s))
	if err != nil {
		return time.Time{}, malformed("date %q: expected YYYY-MM-DD", s)
	}
	return d, nil
}

// DateOf truncates t to its calendar date at UTC midnight.
func DateOf(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

// ParseClock parses a 24h "H:M" time of day and returns it as "HH:MM", so
// "9:00" and "09:00" name the same slot.
func ParseClock(s string) (string, error) {
	parts := strings.Split(strings.TrimSpace(s), ":")
	if len(parts) != 2 {
		return "", malformed("time %q: expected HH:MM", s)
	}
	hour, err := strconv.Atoi(strings.TrimSpace(parts[0]))
	if err != nil || hour < 0 || hour > 23 {
		return "", malformed("time %q: hour out of range", s)
	}
	minute, err := strconv.Atoi(strings.TrimSpace(parts[1]))
	if err != nil || minute < 0 || minute > 59 {
		return "", malformed("time %q: minute out of range", s)
	}
	return fmt.Sprintf("%02d:%02d", hour, minute), nil
}

// clockMinutes converts a canonical "HH:MM" into minutes after midnight.
func clockMinutes(clock string) int {
	var hour, minute int
	fmt.Sscanf(clock, "%d:%d", &hour, &minute)
	return hour*60 + minute
}
