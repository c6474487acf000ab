// Package timer implements the timer capability: it sets an Android
// "alarm" timer on a mobile-app notify target by sending the stock
// android.intent.action.SET_TIMER command through the host platform's
// notify service, asking the user for whatever of (duration, device) is
// still missing.
package timer

import (
	"context"
	"fmt"
	"strings"

	"github.com/kr0ner/multistage-assist/pkg/assist/types"
	"github.com/kr0ner/multistage-assist/pkg/capability"
	"github.com/kr0ner/multistage-assist/pkg/fuzzy"
	"github.com/kr0ner/multistage-assist/pkg/german"
	"github.com/kr0ner/multistage-assist/pkg/host"
)

// matchThreshold is the minimum Jaro-Winkler similarity a spoken device
// name needs against a notify target's display name to be accepted
// automatically, without asking the user to disambiguate.
const matchThreshold = 0.7

// Capability is the timer multi-turn flow.
type Capability struct {
	notify host.NotifyServices
}

// New returns a timer Capability backed by notify.
func New(notify host.NotifyServices) *Capability {
	return &Capability{notify: notify}
}

func (c *Capability) Name() string { return "timer" }

func (c *Capability) Start(ctx context.Context, _ types.Utterance, intentName string, slots map[string]string) (capability.Outcome, bool, error) {
	if intentName != "HassTimerSet" && intentName != "HassStartTimer" {
		return capability.Outcome{}, false, nil
	}
	outcome, err := c.process(ctx, slots["duration"], slots["name"], "")
	return outcome, true, err
}

func (c *Capability) Continue(ctx context.Context, u types.Utterance, pending types.PendingData) (capability.Outcome, error) {
	step, _ := pending.Get("step")
	switch step {
	case "ask_duration":
		seconds := german.ParseDurationString(u.Text)
		if seconds == 0 {
			return reAsk("ask_duration", "Ich habe die Zeit nicht verstanden. Bitte sag z.B. '5 Minuten'.", pending.Extra), nil
		}
		return c.finishWithDuration(ctx, seconds, stringExtra(pending, "name"), stringExtra(pending, "device_id"))

	case "ask_device":
		candidates, _ := pending.Get("candidates")
		targets, _ := candidates.([]host.NotifyTarget)
		matched, ok := c.fuzzyMatch(u.Text, targets)
		if !ok {
			return reAsk("ask_device", "Das habe ich nicht verstanden. Welches Gerät?", pending.Extra), nil
		}
		seconds := intExtra(pending, "duration")
		return c.finish(ctx, seconds, matched)

	default:
		return capability.Outcome{}, fmt.Errorf("timer: unknown pending step %q", step)
	}
}

// process resolves duration, then device, asking for whichever is still
// missing, and finally dispatches the timer once both are known.
func (c *Capability) process(ctx context.Context, durationRaw, deviceName, deviceID string) (capability.Outcome, error) {
	seconds := german.ParseDurationString(durationRaw)
	if seconds == 0 {
		extra := map[string]any{"device_id": deviceID, "name": deviceName}
		return reAsk("ask_duration", "Wie lange soll der Timer laufen?", extra), nil
	}
	return c.finishWithDuration(ctx, seconds, deviceName, deviceID)
}

// finishWithDuration resolves a device (by name, by sole candidate, or by
// asking) once a duration is already known.
func (c *Capability) finishWithDuration(ctx context.Context, seconds int, deviceName, deviceID string) (capability.Outcome, error) {
	if deviceID != "" {
		return c.finish(ctx, seconds, deviceID)
	}

	targets, err := c.notify.Targets(ctx)
	if err != nil {
		return capability.Outcome{}, fmt.Errorf("timer: list notify targets: %w", err)
	}
	if len(targets) == 0 {
		return capability.Done("Keine mobilen Geräte gefunden."), nil
	}

	if deviceName != "" {
		if matched, ok := c.fuzzyMatch(deviceName, targets); ok {
			return c.finish(ctx, seconds, matched)
		}
	}
	if len(targets) == 1 {
		return c.finish(ctx, seconds, targets[0].ServiceName)
	}

	names := make([]string, len(targets))
	for i, t := range targets {
		names[i] = t.DisplayName
	}
	extra := map[string]any{"duration": seconds, "candidates": targets, "name": deviceName}
	return reAsk("ask_device", fmt.Sprintf("Auf welchem Gerät? (%s)", strings.Join(names, ", ")), extra), nil
}

func (c *Capability) finish(ctx context.Context, seconds int, serviceName string) (capability.Outcome, error) {
	data := map[string]any{
		"message": "command_activity",
		"data": map[string]any{
			"intent_action": "android.intent.action.SET_TIMER",
			"intent_extras": fmt.Sprintf("android.intent.extra.alarm.LENGTH:%d,android.intent.extra.alarm.SKIP_UI:true", seconds),
		},
	}
	if err := c.notify.Send(ctx, serviceName, "command_activity", data); err != nil {
		return capability.Outcome{}, fmt.Errorf("timer: send notify command: %w", err)
	}

	friendly := serviceName
	if targets, err := c.notify.Targets(ctx); err == nil {
		for _, t := range targets {
			if t.ServiceName == serviceName {
				friendly = t.DisplayName
				break
			}
		}
	}
	return capability.Done(fmt.Sprintf("Timer für %s auf %s gestellt.", german.FormatSecondsToString(seconds), friendly)), nil
}

func (c *Capability) fuzzyMatch(query string, targets []host.NotifyTarget) (string, bool) {
	if query == "" || len(targets) == 0 {
		return "", false
	}
	names := make([]string, len(targets))
	for i, t := range targets {
		names[i] = t.DisplayName
	}
	best, score, ok := fuzzy.BestMatch(query, names)
	if !ok || score < matchThreshold {
		return "", false
	}
	for _, t := range targets {
		if t.DisplayName == best {
			return t.ServiceName, true
		}
	}
	return "", false
}

func reAsk(step, speech string, extra map[string]any) capability.Outcome {
	e := make(map[string]any, len(extra)+1)
	for k, v := range extra {
		e[k] = v
	}
	e["step"] = step
	return capability.Ask("timer", speech, e)
}

func stringExtra(pending types.PendingData, key string) string {
	v, _ := pending.Get(key)
	s, _ := v.(string)
	return s
}

func intExtra(pending types.PendingData, key string) int {
	v, _ := pending.Get(key)
	n, _ := v.(int)
	return n
}
