package domainconfig

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStepDefaultsMatchDomain(t *testing.T) {
	light, ok := Get("light")
	require.True(t, ok)
	assert.Equal(t, StepPercentage, light.Step.Kind)
	assert.Equal(t, 50, light.Step.OffToOn)

	climate, ok := Get("climate")
	require.True(t, ok)
	assert.Equal(t, StepAbsolute, climate.Step.Kind)
	assert.Equal(t, 16.0, climate.Step.MinTemp)
	assert.Equal(t, 28.0, climate.Step.MaxTemp)

	switchDomain, ok := Get("switch")
	require.True(t, ok)
	assert.Equal(t, StepNone, switchDomain.Step.Kind)
}

func TestNonRepeatableIntents(t *testing.T) {
	_, ok := NonRepeatableIntents["HassTimerSet"]
	assert.True(t, ok)
	_, ok = NonRepeatableIntents["HassTurnOn"]
	assert.False(t, ok)
}

func TestClimateBeatsSensorInDetectionOrder(t *testing.T) {
	climateIdx, sensorIdx := -1, -1
	for i, d := range DomainDetectionOrder {
		if d == "climate" {
			climateIdx = i
		}
		if d == "sensor" {
			sensorIdx = i
		}
	}
	require.NotEqual(t, -1, climateIdx)
	require.NotEqual(t, -1, sensorIdx)
	assert.Less(t, climateIdx, sensorIdx)
}

func TestAnchorTemplatesCoverCoreDomains(t *testing.T) {
	for _, d := range []string{"light", "cover", "switch", "fan", "climate"} {
		assert.NotEmpty(t, AnchorTemplates[d], "domain=%s", d)
	}
}
