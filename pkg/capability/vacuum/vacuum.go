// Package vacuum implements the vacuum-start capability: it resolves the
// requested scope (global, a floor, or an area) and hands it to the host
// platform's vacuum orchestration script as a single "target" variable,
// exactly as the script already expects — this capability only resolves
// the target, the host script keeps deciding which physical vacuum covers
// which room.
package vacuum

import (
	"context"
	"fmt"
	"strings"

	"github.com/kr0ner/multistage-assist/pkg/assist/types"
	"github.com/kr0ner/multistage-assist/pkg/capability"
	"github.com/kr0ner/multistage-assist/pkg/german"
	"github.com/kr0ner/multistage-assist/pkg/host"
	"github.com/kr0ner/multistage-assist/pkg/resolve"
)

// scriptEntityID is the host script this capability triggers; the script
// itself resolves "target" against whatever physical vacuums cover it.
const scriptEntityID = "script.vacuum_universal_clean"

// globalTarget is the sentinel "target" value meaning the whole home.
const globalTarget = "Alles"

// Capability is the vacuum-start single-turn flow. It never asks a
// follow-up question: a missing scope is reported back as a finished
// reply, matching the original's "I didn't understand the target" style
// rather than opening a multi-turn flow for a command this cheap to
// just repeat.
type Capability struct {
	areas  *resolve.AreaResolver
	floors *resolve.FloorResolver
	caller host.ServiceCaller
}

// New returns a vacuum Capability. areas/floors are used only to
// normalize a spoken area/floor name to its registry form before handing
// it to the host script.
func New(areas *resolve.AreaResolver, floors *resolve.FloorResolver, caller host.ServiceCaller) *Capability {
	return &Capability{areas: areas, floors: floors, caller: caller}
}

func (c *Capability) Name() string { return "vacuum" }

func (c *Capability) Start(ctx context.Context, _ types.Utterance, intentName string, slots map[string]string) (capability.Outcome, bool, error) {
	if intentName != "HassVacuumStart" {
		return capability.Outcome{}, false, nil
	}

	mode := slots["mode"]
	if mode == "" {
		mode = "vacuum"
	}

	target, err := c.resolveTarget(ctx, slots)
	if err != nil {
		return capability.Outcome{}, true, err
	}
	if target == "" {
		return capability.Done("Ich habe kein Ziel (Raum oder Etage) verstanden."), true, nil
	}

	if err := c.caller.Call(ctx, "script", "turn_on", map[string]any{
		"entity_id": scriptEntityID,
		"variables": map[string]any{"target": target, "mode": mode},
	}); err != nil {
		return capability.Outcome{}, true, fmt.Errorf("vacuum: trigger script: %w", err)
	}

	action := "saugen"
	if mode == "mop" {
		action = "wischen"
	}
	msgTarget := target
	if target == globalTarget {
		msgTarget = "das Haus"
	}
	return capability.Done(fmt.Sprintf("Alles klar, ich lasse %s %s.", msgTarget, action)), true, nil
}

// Continue is never reached: Start always finishes the flow in one turn.
func (c *Capability) Continue(_ context.Context, _ types.Utterance, pending types.PendingData) (capability.Outcome, error) {
	return capability.Outcome{}, fmt.Errorf("vacuum: unexpected continuation for step %v", pending.Extra["step"])
}

func (c *Capability) resolveTarget(ctx context.Context, slots map[string]string) (string, error) {
	if scope := slots["scope"]; strings.EqualFold(scope, "GLOBAL") {
		return globalTarget, nil
	}
	if area := slots["area"]; area != "" {
		if _, ok := german.GlobalAreaKeywords[german.Canonicalize(area)]; ok {
			return globalTarget, nil
		}
	}

	if floor := slots["floor"]; floor != "" {
		res, err := c.floors.Resolve(ctx, floor)
		if err != nil {
			return "", fmt.Errorf("vacuum: resolve floor: %w", err)
		}
		if res.Global {
			return globalTarget, nil
		}
		if res.Floor != "" {
			return res.Floor, nil
		}
		return floor, nil
	}

	if area := slots["area"]; area != "" {
		res, err := c.areas.Resolve(ctx, area)
		if err != nil {
			return "", fmt.Errorf("vacuum: resolve area: %w", err)
		}
		if res.Global {
			return globalTarget, nil
		}
		if res.Area != "" {
			return res.Area, nil
		}
		return area, nil
	}

	return "", nil
}
