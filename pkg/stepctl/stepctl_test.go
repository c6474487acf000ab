package stepctl

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kr0ner/multistage-assist/pkg/host"
)

func TestCalculateLightStepUpFromOn(t *testing.T) {
	entity := host.Entity{
		Domain:     "light",
		State:      "on",
		Attributes: map[string]any{"brightness": 100.0}, // ~39%
	}
	res, ok := Calculate(entity, "light", StepUp)
	require.True(t, ok)
	assert.Equal(t, "brightness", res.Attribute)
	assert.Equal(t, 39.0, res.CurrentValue)
	// step = max(10, 39*35/100=13) = 13
	assert.Equal(t, 13.0, res.StepApplied)
	assert.Equal(t, 52.0, res.NewValue)
}

func TestCalculateLightStepUpFromOff(t *testing.T) {
	entity := host.Entity{Domain: "light", State: "off"}
	res, ok := Calculate(entity, "light", StepUp)
	require.True(t, ok)
	assert.Equal(t, 50.0, res.NewValue) // light's off_to_on
	assert.Equal(t, 50.0, res.StepApplied)
}

func TestCalculateLightStepDownFromOffIsNoop(t *testing.T) {
	entity := host.Entity{Domain: "light", State: "off"}
	_, ok := Calculate(entity, "light", StepDown)
	assert.False(t, ok)
}

func TestCalculateLightStepDownClampsToZero(t *testing.T) {
	entity := host.Entity{
		Domain:     "light",
		State:      "on",
		Attributes: map[string]any{"brightness": 20.0}, // ~7%
	}
	res, ok := Calculate(entity, "light", StepDown)
	require.True(t, ok)
	// min_step(10) > current(7), so it clamps to 0 rather than going negative.
	assert.Equal(t, 0.0, res.NewValue)
}

func TestCalculateCoverReadsCurrentPosition(t *testing.T) {
	entity := host.Entity{
		Domain:     "cover",
		State:      "open",
		Attributes: map[string]any{"current_position": 40.0},
	}
	res, ok := Calculate(entity, "cover", StepUp)
	require.True(t, ok)
	assert.Equal(t, "position", res.Attribute)
	assert.Equal(t, 40.0, res.CurrentValue)
	// step = max(10, 40*25/100=10) = 10
	assert.Equal(t, 50.0, res.NewValue)
}

func TestCalculateFanStepUpFromOffUsesOffToOn(t *testing.T) {
	entity := host.Entity{Domain: "fan", State: "off"}
	res, ok := Calculate(entity, "fan", StepUp)
	require.True(t, ok)
	assert.Equal(t, 50.0, res.NewValue)
}

func TestCalculateClimateStepUpClampsToMax(t *testing.T) {
	entity := host.Entity{
		Domain:     "climate",
		State:      "heat",
		Attributes: map[string]any{"temperature": 27.5},
	}
	res, ok := Calculate(entity, "climate", StepUp)
	require.True(t, ok)
	assert.Equal(t, 28.0, res.NewValue)
	assert.Equal(t, 1.0, res.StepApplied)
}

func TestCalculateClimateFallsBackToCurrentTemperature(t *testing.T) {
	entity := host.Entity{
		Domain:     "climate",
		State:      "heat",
		Attributes: map[string]any{"current_temperature": 20.0},
	}
	res, ok := Calculate(entity, "climate", StepDown)
	require.True(t, ok)
	assert.Equal(t, 19.0, res.NewValue)
}

func TestCalculateClimateMissingTemperatureFails(t *testing.T) {
	entity := host.Entity{Domain: "climate", State: "heat"}
	_, ok := Calculate(entity, "climate", StepUp)
	assert.False(t, ok)
}

func TestCalculateDomainWithoutStepSupportFails(t *testing.T) {
	entity := host.Entity{Domain: "switch", State: "on"}
	_, ok := Calculate(entity, "switch", StepUp)
	assert.False(t, ok)
}

func TestCalculateUnknownDomainFails(t *testing.T) {
	entity := host.Entity{Domain: "doesnotexist", State: "on"}
	_, ok := Calculate(entity, "doesnotexist", StepUp)
	assert.False(t, ok)
}

func TestParseCommand(t *testing.T) {
	cmd, ok := ParseCommand("step_up")
	require.True(t, ok)
	assert.Equal(t, StepUp, cmd)

	cmd, ok = ParseCommand("step_down")
	require.True(t, ok)
	assert.Equal(t, StepDown, cmd)

	_, ok = ParseCommand("sideways")
	assert.False(t, ok)
}
