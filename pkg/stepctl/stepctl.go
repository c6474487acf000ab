package stepctl

import (
	"encoding/json"
	"math"

	"github.com/kr0ner/multistage-assist/pkg/domainconfig"
	"github.com/kr0ner/multistage-assist/pkg/host"
)

// Command is the relative-adjustment direction a step command requests.
type Command int

const (
	StepUp Command = iota
	StepDown
)

// ParseCommand maps the spoken-command strings the intent parser produces
// ("step_up", "step_down") to a Command.
func ParseCommand(s string) (Command, bool) {
	switch s {
	case "step_up":
		return StepUp, true
	case "step_down":
		return StepDown, true
	default:
		return 0, false
	}
}

// Result is the attribute/value pair a step command resolves to.
type Result struct {
	Attribute    string
	CurrentValue float64
	NewValue     float64
	StepApplied  float64
}

// Calculate resolves command against entity's current state using
// domain's step configuration. ok is false when the domain has no step
// support, a climate entity carries no usable temperature, or a step_down
// on an already-off/closed (or zero-valued) entity has nothing left to do.
// A percentage-domain entity with no current value is treated as 0, so a
// step_up sets it to the domain's off-to-on value.
func Calculate(entity host.Entity, domain string, command Command) (Result, bool) {
	cfg, ok := domainconfig.Get(domain)
	if !ok {
		return Result{}, false
	}
	switch cfg.Step.Kind {
	case domainconfig.StepAbsolute:
		return calculateClimateStep(entity, cfg.Step, command)
	case domainconfig.StepPercentage:
		return calculatePercentageStep(entity, domain, cfg.Step, command)
	default:
		return Result{}, false
	}
}

// rawAttributeKey returns the entity attribute actually carrying the
// current value. It usually matches the domain's configured Attribute
// name, except for cover, whose position lives under "current_position"
// while the domain config's Attribute ("position") names the service
// parameter it is eventually set through.
func rawAttributeKey(domain, attribute string) string {
	if domain == "cover" {
		return "current_position"
	}
	return attribute
}

func calculatePercentageStep(entity host.Entity, domain string, step domainconfig.Step, command Command) (Result, bool) {
	raw, _ := attributeFloat(entity, rawAttributeKey(domain, step.Attribute))
	currentPct := raw
	if domain == "light" {
		// Light brightness is 0-255; every other percentage domain is
		// already expressed 0-100.
		currentPct = raw / 255.0 * 100
	}
	currentPct = math.Trunc(currentPct)
	isOff := isOffState(entity.State)

	switch command {
	case StepUp:
		if isOff || currentPct == 0 {
			onValue := float64(step.OffToOn)
			return Result{Attribute: step.Attribute, CurrentValue: currentPct, NewValue: onValue, StepApplied: onValue}, true
		}
		applied := math.Max(float64(step.MinStep), math.Trunc(currentPct*float64(step.StepPercent)/100))
		newPct := math.Min(100, currentPct+applied)
		return Result{Attribute: step.Attribute, CurrentValue: currentPct, NewValue: newPct, StepApplied: applied}, true
	case StepDown:
		if isOff || currentPct == 0 {
			return Result{}, false
		}
		applied := math.Max(float64(step.MinStep), math.Trunc(currentPct*float64(step.StepPercent)/100))
		newPct := math.Max(0, currentPct-applied)
		return Result{Attribute: step.Attribute, CurrentValue: currentPct, NewValue: newPct, StepApplied: applied}, true
	default:
		return Result{}, false
	}
}

func calculateClimateStep(entity host.Entity, step domainconfig.Step, command Command) (Result, bool) {
	current, ok := attributeFloat(entity, "temperature")
	if !ok {
		current, ok = attributeFloat(entity, "current_temperature")
	}
	if !ok {
		return Result{}, false
	}

	var newTemp float64
	switch command {
	case StepUp:
		newTemp = math.Min(step.MaxTemp, current+step.StepAbsolute)
	case StepDown:
		newTemp = math.Max(step.MinTemp, current-step.StepAbsolute)
	default:
		return Result{}, false
	}
	return Result{Attribute: step.Attribute, CurrentValue: current, NewValue: newTemp, StepApplied: step.StepAbsolute}, true
}

// isOffState reports whether state means "there is nothing to step down
// from" — the entity is off, closed, or the platform lost track of it.
func isOffState(state string) bool {
	switch state {
	case "off", "closed", "unavailable":
		return true
	default:
		return false
	}
}

// attributeFloat reads a numeric entity attribute regardless of whether
// the host decoded it as a Go float/int or left it as a json.Number.
func attributeFloat(entity host.Entity, key string) (float64, bool) {
	v, ok := entity.Attributes[key]
	if !ok || v == nil {
		return 0, false
	}
	switch n := v.(type) {
	case float64:
		return n, true
	case float32:
		return float64(n), true
	case int:
		return float64(n), true
	case int64:
		return float64(n), true
	case json.Number:
		f, err := n.Float64()
		return f, err == nil
	default:
		return 0, false
	}
}
