package timer

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kr0ner/multistage-assist/pkg/assist/types"
	"github.com/kr0ner/multistage-assist/pkg/host"
	hostmock "github.com/kr0ner/multistage-assist/pkg/host/mock"
)

func TestStartIgnoresOtherIntents(t *testing.T) {
	c := New(&hostmock.NotifyServices{})
	_, ok, err := c.Start(context.Background(), types.Utterance{}, "HassTurnOn", map[string]string{})
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestStartMissingDurationAsks(t *testing.T) {
	c := New(&hostmock.NotifyServices{})
	out, ok, err := c.Start(context.Background(), types.Utterance{}, "HassTimerSet", map[string]string{})
	require.NoError(t, err)
	require.True(t, ok)
	require.NotNil(t, out.Pending)
	assert.Equal(t, "timer", out.Pending.Type)
}

func TestStartSingleDeviceAutoSelected(t *testing.T) {
	notify := &hostmock.NotifyServices{
		TargetsResult: []host.NotifyTarget{{ServiceName: "notify.mobile_app_pixel", DisplayName: "Pixel"}},
	}
	c := New(notify)

	out, ok, err := c.Start(context.Background(), types.Utterance{}, "HassTimerSet", map[string]string{"duration": "5 Minuten"})
	require.NoError(t, err)
	require.True(t, ok)
	assert.Nil(t, out.Pending)
	assert.Contains(t, out.Speech, "Pixel")
	assert.Contains(t, out.Speech, "5 Minuten")
	assert.Equal(t, 1, notify.CallCount("Send"))
}

func TestStartMultipleDevicesNameResolvedWithoutAsking(t *testing.T) {
	notify := &hostmock.NotifyServices{
		TargetsResult: []host.NotifyTarget{
			{ServiceName: "notify.mobile_app_pixel", DisplayName: "Pixel"},
			{ServiceName: "notify.mobile_app_kueche_tablet", DisplayName: "Kueche Tablet"},
		},
	}
	c := New(notify)

	out, ok, err := c.Start(context.Background(), types.Utterance{}, "HassTimerSet", map[string]string{
		"duration": "10 Minuten", "name": "Pixel",
	})
	require.NoError(t, err)
	require.True(t, ok)
	assert.Nil(t, out.Pending)
	assert.Contains(t, out.Speech, "Pixel")
}

func TestStartMultipleDevicesNoNameAsksDevice(t *testing.T) {
	notify := &hostmock.NotifyServices{
		TargetsResult: []host.NotifyTarget{
			{ServiceName: "notify.mobile_app_pixel", DisplayName: "Pixel"},
			{ServiceName: "notify.mobile_app_tablet", DisplayName: "Tablet"},
		},
	}
	c := New(notify)

	out, ok, err := c.Start(context.Background(), types.Utterance{}, "HassTimerSet", map[string]string{"duration": "10 Minuten"})
	require.NoError(t, err)
	require.True(t, ok)
	require.NotNil(t, out.Pending)
	step, _ := out.Pending.Get("step")
	assert.Equal(t, "ask_device", step)
}

func TestContinueAskDurationThenFinishes(t *testing.T) {
	notify := &hostmock.NotifyServices{
		TargetsResult: []host.NotifyTarget{{ServiceName: "notify.mobile_app_pixel", DisplayName: "Pixel"}},
	}
	c := New(notify)
	pending := types.PendingData{Type: "timer", Extra: map[string]any{"step": "ask_duration", "name": "", "device_id": ""}}

	out, err := c.Continue(context.Background(), types.Utterance{Text: "10 Minuten"}, pending)
	require.NoError(t, err)
	assert.Nil(t, out.Pending)
	assert.Contains(t, out.Speech, "Pixel")
}

func TestContinueAskDurationInvalidReasks(t *testing.T) {
	c := New(&hostmock.NotifyServices{})
	pending := types.PendingData{Type: "timer", Extra: map[string]any{"step": "ask_duration"}}

	out, err := c.Continue(context.Background(), types.Utterance{Text: "irgendwas"}, pending)
	require.NoError(t, err)
	require.NotNil(t, out.Pending)
}

func TestContinueAskDeviceFuzzyMatch(t *testing.T) {
	notify := &hostmock.NotifyServices{}
	c := New(notify)
	candidates := []host.NotifyTarget{
		{ServiceName: "notify.mobile_app_pixel", DisplayName: "Pixel"},
		{ServiceName: "notify.mobile_app_tablet", DisplayName: "Tablet"},
	}
	pending := types.PendingData{Type: "timer", Extra: map[string]any{
		"step": "ask_device", "duration": 600, "candidates": candidates,
	}}

	out, err := c.Continue(context.Background(), types.Utterance{Text: "Pixel"}, pending)
	require.NoError(t, err)
	assert.Nil(t, out.Pending)
	assert.Contains(t, out.Speech, "Pixel")
}
