package german

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
)

var (
	hourFragment   = regexp.MustCompile(`(\d+)\s*(?:h|std|stunden?)`)
	minuteFragment = regexp.MustCompile(`(\d+)\s*(?:m|min|minuten?)`)
	secondFragment = regexp.MustCompile(`(\d+)\s*(?:s|sec|sekunden?)\b`)
	bareDigits     = regexp.MustCompile(`^\d+$`)
)

// ParseDurationString converts a German duration expression ("5 Minuten",
// "1 Std 30 Min", a bare "45") into a whole number of seconds.
//
// A duration made of hour/minute/second fragments sums them; a bare digit
// string with no unit is interpreted as minutes, matching how the timer
// capability's duration prompt is phrased ("wie viele Minuten?").
func ParseDurationString(input string) int {
	text := strings.ToLower(strings.TrimSpace(input))
	if text == "" {
		return 0
	}
	if bareDigits.MatchString(text) {
		n, _ := strconv.Atoi(text)
		return n * 60
	}

	total := 0
	found := false
	if m := hourFragment.FindStringSubmatch(text); m != nil {
		n, _ := strconv.Atoi(m[1])
		total += n * 3600
		found = true
	}
	if m := minuteFragment.FindStringSubmatch(text); m != nil {
		n, _ := strconv.Atoi(m[1])
		total += n * 60
		found = true
	}
	if m := secondFragment.FindStringSubmatch(text); m != nil {
		n, _ := strconv.Atoi(m[1])
		total += n
		found = true
	}
	if !found {
		return 0
	}
	return total
}

// FormatSecondsToString renders a duration for speech: hours with one
// decimal place above an hour, whole minutes above a minute, otherwise
// seconds.
func FormatSecondsToString(seconds int) string {
	switch {
	case seconds >= 3600:
		return fmt.Sprintf("%.1f Stunden", float64(seconds)/3600)
	case seconds >= 60:
		return fmt.Sprintf("%d Minuten", seconds/60)
	default:
		return fmt.Sprintf("%d Sekunden", seconds)
	}
}
