package german

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"
)

// relativeDayTerms maps a German relative-day phrase to an offset in days
// from today. Ordered longest-phrase-first so "übermorgen" is tried before
// the "morgen" substring it contains.
var relativeDayTerms = []struct {
	term string
	days int
}{
	{"in drei tagen", 3},
	{"in 3 tagen", 3},
	{"übermorgen", 2},
	{"morgen", 1},
	{"heute", 0},
}

// weekdayNames maps a German weekday name to time.Weekday (Monday=1 per
// Go's convention; the original counts Monday=0, so values here are already
// shifted to match time.Weekday).
var weekdayNames = map[string]time.Weekday{
	"montag":     time.Monday,
	"dienstag":   time.Tuesday,
	"mittwoch":   time.Wednesday,
	"donnerstag": time.Thursday,
	"freitag":    time.Friday,
	"samstag":    time.Saturday,
	"sonntag":    time.Sunday,
}

const dateLayout = "2006-01-02"

// ResolveRelativeDate resolves a German relative-date phrase ("morgen",
// "übermorgen", a weekday name, "in einer woche") to a calendar date,
// relative to now. Dates already in YYYY-MM-DD form are returned unchanged.
// Phrases it cannot resolve are returned unchanged, matching the calendar
// capability's "best effort, ask again on failure" behavior.
func ResolveRelativeDate(value string, now time.Time) string {
	if value == "" {
		return value
	}
	if _, err := time.Parse(dateLayout, value); err == nil {
		return value
	}

	lower := strings.ToLower(strings.TrimSpace(value))
	today := now.Truncate(24 * time.Hour)

	if strings.Contains(lower, "in einer woche") || strings.Contains(lower, "heute in einer woche") {
		return today.AddDate(0, 0, 7).Format(dateLayout)
	}

	for _, rel := range relativeDayTerms {
		if strings.Contains(lower, rel.term) {
			return today.AddDate(0, 0, rel.days).Format(dateLayout)
		}
	}

	for name, weekday := range weekdayNames {
		if strings.Contains(lower, name) {
			daysAhead := int(weekday - today.Weekday())
			if daysAhead <= 0 {
				daysAhead += 7
			}
			return today.AddDate(0, 0, daysAhead).Format(dateLayout)
		}
	}

	return value
}

const dateTimeLayout = "2006-01-02 15:04"

var (
	clockFragment = regexp.MustCompile(`(\d{1,2})[:.](\d{2})`)
	uhrFragment   = regexp.MustCompile(`(\d{1,2})\s*uhr`)
)

// ResolveRelativeDateTime is [ResolveRelativeDate] extended to also extract
// a clock time from value ("morgen um 10 Uhr", "14:30"), preserving it
// alongside the resolved date. Values already in "YYYY-MM-DD HH:MM" form,
// values from which no time fragment can be extracted, and values whose
// date part cannot be resolved are returned unchanged.
func ResolveRelativeDateTime(value string, now time.Time) string {
	if value == "" {
		return value
	}
	if _, err := time.Parse(dateTimeLayout, value); err == nil {
		return value
	}

	var timeStr string
	if m := clockFragment.FindStringSubmatch(value); m != nil {
		hour, _ := strconv.Atoi(m[1])
		minute, _ := strconv.Atoi(m[2])
		timeStr = fmt.Sprintf("%02d:%02d", hour, minute)
	} else if m := uhrFragment.FindStringSubmatch(strings.ToLower(value)); m != nil {
		hour, _ := strconv.Atoi(m[1])
		timeStr = fmt.Sprintf("%02d:00", hour)
	}

	datePart := ResolveRelativeDate(value, now)
	if timeStr == "" {
		return value
	}
	if _, err := time.Parse(dateLayout, datePart); err != nil {
		return value
	}
	return datePart + " " + timeStr
}
