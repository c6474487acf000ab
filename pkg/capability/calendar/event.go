package calendar

import "fmt"

// eventData accumulates the fields a calendar event needs across however
// many turns it takes to gather them; it is round-tripped through a
// PendingData.Extra map between turns via toExtra/eventFromExtra.
type eventData struct {
	Summary       string
	Location      string
	CalendarID    string
	StartDate     string
	StartDateTime string
	DurationMin   int
}

func (e eventData) toExtra() map[string]any {
	return map[string]any{
		"summary":         e.Summary,
		"location":        e.Location,
		"calendar_id":     e.CalendarID,
		"start_date":      e.StartDate,
		"start_date_time": e.StartDateTime,
		"duration_min":    e.DurationMin,
	}
}

func eventFromExtra(extra map[string]any) eventData {
	return eventData{
		Summary:       stringField(extra, "summary"),
		Location:      stringField(extra, "location"),
		CalendarID:    stringField(extra, "calendar_id"),
		StartDate:     stringField(extra, "start_date"),
		StartDateTime: stringField(extra, "start_date_time"),
		DurationMin:   intField(extra, "duration_min"),
	}
}

// when renders the resolved date/time for the confirmation prompt.
func (e eventData) when() string {
	if e.StartDateTime != "" {
		return fmt.Sprintf("am %s", e.StartDateTime)
	}
	return fmt.Sprintf("am %s", e.StartDate)
}

func stringField(m map[string]any, key string) string {
	v, _ := m[key].(string)
	return v
}

func intField(m map[string]any, key string) int {
	v, _ := m[key].(int)
	return v
}
