// Package calendar implements the calendar-event capability: it gathers a
// summary, a date/time, and a target calendar across as many turns as
// needed, confirms with the user, then dispatches a create_event service
// call.
package calendar

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/kr0ner/multistage-assist/pkg/assist/types"
	"github.com/kr0ner/multistage-assist/pkg/capability"
	"github.com/kr0ner/multistage-assist/pkg/fuzzy"
	"github.com/kr0ner/multistage-assist/pkg/german"
	"github.com/kr0ner/multistage-assist/pkg/host"
)

const matchThreshold = 0.6

var yesWords = []string{"ja", "ok", "okay", "genau", "richtig", "stimmt", "passt"}
var noWords = []string{"nein", "abbrechen", "stop", "cancel"}

// Capability is the calendar-event creation multi-turn flow.
type Capability struct {
	registry host.Registry
	caller   host.ServiceCaller
	now      func() time.Time
}

// New returns a calendar Capability backed by registry (to enumerate
// calendar entities) and caller (to invoke calendar.create_event).
func New(registry host.Registry, caller host.ServiceCaller) *Capability {
	return &Capability{registry: registry, caller: caller, now: time.Now}
}

func (c *Capability) Name() string { return "calendar" }

func (c *Capability) Start(ctx context.Context, _ types.Utterance, intentName string, slots map[string]string) (capability.Outcome, bool, error) {
	if intentName != "HassCalendarCreate" && intentName != "HassCreateEvent" {
		return capability.Outcome{}, false, nil
	}

	event := eventData{
		Summary:    slots["summary"],
		Location:   slots["location"],
		CalendarID: slots["calendar"],
	}
	now := c.now()
	date, hasDate := slots["date"]
	clock, hasTime := slots["time"]
	switch {
	case hasDate && date != "" && hasTime && clock != "":
		event.StartDateTime = german.ResolveRelativeDateTime(date+" "+clock, now)
	case hasDate && date != "":
		event.StartDate = german.ResolveRelativeDate(date, now)
	}
	if d := slots["duration"]; d != "" {
		event.DurationMin = german.ParseDurationString(d) / 60
	}

	out, err := c.process(ctx, event)
	return out, true, err
}

func (c *Capability) Continue(ctx context.Context, u types.Utterance, pending types.PendingData) (capability.Outcome, error) {
	step, _ := pending.Get("step")
	event := eventFromExtra(pending.Extra)
	text := strings.TrimSpace(u.Text)

	switch step {
	case "ask_summary":
		event.Summary = text
		return c.process(ctx, event)

	case "ask_datetime":
		now := c.now()
		if resolved := german.ResolveRelativeDateTime(text, now); resolved != text {
			event.StartDateTime = resolved
		} else if resolved := german.ResolveRelativeDate(text, now); resolved != text {
			event.StartDate = resolved
		} else {
			return reAsk("ask_datetime", "Ich habe das Datum nicht verstanden. Bitte sag z.B. 'morgen um 10 Uhr' oder '25.12.'.", event), nil
		}
		return c.process(ctx, event)

	case "ask_calendar":
		calendars, _ := pending.Get("calendars")
		entries, _ := calendars.([]host.Entity)
		matched, ok := matchCalendar(text, entries)
		if !ok {
			return reAsk("ask_calendar", "Das habe ich nicht verstanden. Welcher Kalender?", event), nil
		}
		event.CalendarID = matched
		return c.process(ctx, event)

	case "confirm":
		lower := strings.ToLower(text)
		if containsAny(lower, yesWords) {
			return c.createEvent(ctx, event)
		}
		if containsAny(lower, noWords) {
			return capability.Done("Termin wurde nicht erstellt."), nil
		}
		return reAskConfirm(event), nil

	default:
		return capability.Outcome{}, fmt.Errorf("calendar: unknown pending step %q", step)
	}
}

// process walks the event through its required fields in order, asking
// for whichever one is still missing, confirming once everything is
// known.
func (c *Capability) process(ctx context.Context, event eventData) (capability.Outcome, error) {
	if event.Summary == "" {
		return reAsk("ask_summary", "Wie soll der Termin heißen?", event), nil
	}
	if event.StartDate == "" && event.StartDateTime == "" {
		return reAsk("ask_datetime", "Wann soll der Termin sein?", event), nil
	}
	if event.CalendarID == "" {
		entries, err := c.calendarEntities(ctx)
		if err != nil {
			return capability.Outcome{}, err
		}
		if len(entries) == 0 {
			return capability.Done("Keine Kalender gefunden. Bitte richte zuerst einen Kalender ein."), nil
		}
		if len(entries) == 1 {
			event.CalendarID = entries[0].ID
		} else {
			names := make([]string, len(entries))
			for i, e := range entries {
				names[i] = e.Name
			}
			extra := event.toExtra()
			extra["calendars"] = entries
			speech := fmt.Sprintf("In welchen Kalender? (%s)", strings.Join(names, ", "))
			extra["step"] = "ask_calendar"
			pending := types.PendingData{Type: "calendar", OriginalPrompt: speech, Extra: extra}
			return capability.Outcome{Speech: speech, Pending: &pending}, nil
		}
	}
	return reAskConfirm(event), nil
}

func (c *Capability) createEvent(ctx context.Context, event eventData) (capability.Outcome, error) {
	data := map[string]any{"entity_id": event.CalendarID, "summary": event.Summary}
	if event.Location != "" {
		data["location"] = event.Location
	}
	if event.StartDateTime != "" {
		data["start_date_time"] = event.StartDateTime
		if event.DurationMin > 0 {
			end, err := addMinutes(event.StartDateTime, event.DurationMin)
			if err == nil {
				data["end_date_time"] = end
			}
		}
	} else {
		data["start_date"] = event.StartDate
		data["end_date"] = event.StartDate
	}

	if err := c.caller.Call(ctx, "calendar", "create_event", data); err != nil {
		return capability.Outcome{}, fmt.Errorf("calendar: create_event: %w", err)
	}
	return capability.Done(fmt.Sprintf("Termin \"%s\" wurde angelegt.", event.Summary)), nil
}

func (c *Capability) calendarEntities(ctx context.Context) ([]host.Entity, error) {
	entities, err := c.registry.Entities(ctx)
	if err != nil {
		return nil, fmt.Errorf("calendar: list entities: %w", err)
	}
	var out []host.Entity
	for _, e := range entities {
		if e.Domain == "calendar" {
			out = append(out, e)
		}
	}
	return out, nil
}

func matchCalendar(query string, entries []host.Entity) (string, bool) {
	if query == "" || len(entries) == 0 {
		return "", false
	}
	names := make([]string, len(entries))
	for i, e := range entries {
		names[i] = e.Name
	}
	best, score, ok := fuzzy.BestMatch(query, names)
	if !ok || score < matchThreshold {
		return "", false
	}
	for _, e := range entries {
		if e.Name == best {
			return e.ID, true
		}
	}
	return "", false
}

func containsAny(text string, words []string) bool {
	for _, w := range words {
		if strings.Contains(text, w) {
			return true
		}
	}
	return false
}

func addMinutes(dateTime string, minutes int) (string, error) {
	t, err := time.Parse("2006-01-02 15:04", dateTime)
	if err != nil {
		return "", err
	}
	return t.Add(time.Duration(minutes) * time.Minute).Format("2006-01-02 15:04"), nil
}

func reAsk(step, speech string, event eventData) capability.Outcome {
	extra := event.toExtra()
	extra["step"] = step
	pending := types.PendingData{Type: "calendar", OriginalPrompt: speech, Extra: extra}
	return capability.Outcome{Speech: speech, Pending: &pending}
}

func reAskConfirm(event eventData) capability.Outcome {
	speech := fmt.Sprintf("Soll ich den Termin \"%s\" %s anlegen? Sag Ja oder Nein.", event.Summary, event.when())
	return reAsk("confirm", speech, event)
}
