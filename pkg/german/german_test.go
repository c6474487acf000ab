package german

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCanonicalizeRoundTrip(t *testing.T) {
	cases := []string{
		"Das Licht in der Küche",
		"  Schalte   DIE  Lampe an!! ",
		"",
		"Mach's dunkler",
	}
	for _, c := range cases {
		once := Canonicalize(c)
		twice := Canonicalize(once)
		assert.Equal(t, once, twice, "input=%q", c)
	}
}

func TestCanonicalizeStripsArticlesAndCase(t *testing.T) {
	assert.Equal(t, "licht küche", Canonicalize("Das Licht, Küche!"))
	assert.Equal(t, "lampe", Canonicalize("die Lampe"))
}

func TestNormalizeForCacheBucketsPercent(t *testing.T) {
	a := NormalizeForCache("Stelle das Licht auf 30%")
	b := NormalizeForCache("Stelle das Licht auf 40%")
	require.Equal(t, a, b)
	assert.Contains(t, a, "prozent")
}

func TestNormalizeForCacheBucketsTemperature(t *testing.T) {
	a := NormalizeForCache("Stelle die Heizung auf 18 Grad")
	b := NormalizeForCache("Stelle die Heizung auf 23 Grad")
	assert.Equal(t, a, b)
}

func TestNormalizeForCacheBucketsDuration(t *testing.T) {
	a := NormalizeForCache("Stelle einen Timer auf 5 Minuten")
	b := NormalizeForCache("Stelle einen Timer auf 20 Minuten")
	assert.Equal(t, a, b)
}

func TestNormalizeSpeechForTTS(t *testing.T) {
	cases := []struct{ in, want string }{
		{"Die Temperatur ist 21.5°C", "Die Temperatur ist 21,5 Grad Celsius"},
		{"Helligkeit auf 72%", "Helligkeit auf 72 Prozent"},
		{"Verbrauch 1.2kWh", "Verbrauch 1,2 Kilowattstunden"},
		{"", ""},
	}
	for _, c := range cases {
		assert.Equal(t, c.want, NormalizeSpeechForTTS(c.in), "input=%q", c.in)
	}
}

func TestParseDurationString(t *testing.T) {
	cases := []struct {
		in   string
		want int
	}{
		{"5 Minuten", 300},
		{"1 Std 30 Min", 5400},
		{"45", 2700},
		{"90 Sekunden", 90},
		{"", 0},
	}
	for _, c := range cases {
		assert.Equal(t, c.want, ParseDurationString(c.in), "input=%q", c.in)
	}
}

func TestFormatSecondsToString(t *testing.T) {
	assert.Equal(t, "5 Sekunden", FormatSecondsToString(5))
	assert.Equal(t, "5 Minuten", FormatSecondsToString(300))
	assert.Equal(t, "1.5 Stunden", FormatSecondsToString(5400))
}

func TestHasPluralCue(t *testing.T) {
	assert.True(t, HasPluralCue([]string{"schalte", "alle", "lichter"}))
	assert.False(t, HasPluralCue([]string{"schalte", "das", "licht"}))
}

func TestResolveRelativeDate(t *testing.T) {
	now := time.Date(2026, 1, 1, 9, 0, 0, 0, time.UTC) // Thursday
	assert.Equal(t, "2026-01-01", ResolveRelativeDate("heute", now))
	assert.Equal(t, "2026-01-02", ResolveRelativeDate("morgen", now))
	assert.Equal(t, "2026-01-03", ResolveRelativeDate("übermorgen", now))
	assert.Equal(t, "2026-01-05", ResolveRelativeDate("montag", now))
	assert.Equal(t, "2026-05-05", ResolveRelativeDate("2026-05-05", now))
}

func TestResolveRelativeDateTime(t *testing.T) {
	now := time.Date(2026, 1, 1, 9, 0, 0, 0, time.UTC)
	assert.Equal(t, "2026-01-02 10:00", ResolveRelativeDateTime("morgen um 10 Uhr", now))
	assert.Equal(t, "2026-01-02 14:30", ResolveRelativeDateTime("morgen 14:30", now))
}
