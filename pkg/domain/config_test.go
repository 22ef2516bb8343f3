package domain_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/callweave/callweave/pkg/domain"
)

func TestCallConfigDecode(t *testing.T) {
	node := domain.Node{
		ID:   "call-1",
		Kind: domain.NodeCall,
		Config: map[string]any{
			"phoneNumber": "555-0100",
			"prompt":      "Hello, this is a reminder call.",
			"voice": map[string]any{
				"voice": "en-US-Neural2-C",
				"speed": 1.2,
			},
		},
	}

	cfg, err := node.CallConfig()
	require.NoError(t, err)
	assert.Equal(t, "555-0100", cfg.PhoneNumber)
	assert.Equal(t, "Hello, this is a reminder call.", cfg.Prompt)
	assert.Equal(t, "en-US-Neural2-C", cfg.Voice.Voice)
	assert.Equal(t, 1.2, cfg.Voice.Speed)
}

func TestMessageConfigDefaultsToSMS(t *testing.T) {
	node := domain.Node{
		ID:     "msg-1",
		Kind:   domain.NodeMessage,
		Config: map[string]any{"body": "Your appointment is tomorrow."},
	}

	cfg, err := node.MessageConfig()
	require.NoError(t, err)
	assert.Equal(t, domain.ChannelSMS, cfg.Channel)
}

func TestConditionSpecDecode(t *testing.T) {
	node := domain.Node{
		ID:   "cond-1",
		Kind: domain.NodeConditional,
		Config: map[string]any{
			"comparison": "contains",
			"source":     "last_response",
			"value":      "yes",
			"trueLabel":  "Confirmed",
			"falseLabel": "Declined",
		},
	}

	spec, err := node.ConditionSpec()
	require.NoError(t, err)
	assert.Equal(t, domain.CondContains, spec.Kind)
	assert.Equal(t, "last_response", spec.Source)
	assert.Equal(t, "yes", spec.Value)
	assert.Equal(t, "Confirmed", spec.TrueLabel)
}

func TestInputConfigWeakTyping(t *testing.T) {
	// Canvas-serialized JSON routinely carries numbers as strings.
	node := domain.Node{
		ID:   "input-1",
		Kind: domain.NodeInput,
		Config: map[string]any{
			"prompt":     "Press 1 to confirm",
			"modality":   "dtmf",
			"timeout":    "30",
			"maxRetries": "2",
		},
	}

	cfg, err := node.InputConfig()
	require.NoError(t, err)
	assert.Equal(t, domain.ModalityDTMF, cfg.Modality)
	assert.Equal(t, 30, cfg.TimeoutSeconds)
	assert.Equal(t, 2, cfg.MaxRetries)
}

func TestDelayConfigSeconds(t *testing.T) {
	tests := []struct {
		name     string
		duration float64
		unit     domain.DelayUnit
		want     int
	}{
		{"seconds", 45, domain.UnitSeconds, 45},
		{"minutes", 2, domain.UnitMinutes, 120},
		{"hours", 1, domain.UnitHours, 3600},
		{"fractional minutes", 1.5, domain.UnitMinutes, 90},
		{"unknown unit falls back to seconds", 10, domain.DelayUnit("days"), 10},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			cfg := domain.DelayConfig{Duration: tc.duration, Unit: tc.unit}
			assert.Equal(t, tc.want, cfg.Seconds())
		})
	}
}

func TestDelayConfigDefaultUnit(t *testing.T) {
	node := domain.Node{
		ID:     "delay-1",
		Kind:   domain.NodeDelay,
		Config: map[string]any{"duration": 5},
	}

	cfg, err := node.DelayConfig()
	require.NoError(t, err)
	assert.Equal(t, domain.UnitSeconds, cfg.Unit)
	assert.Equal(t, 5, cfg.Seconds())
}

func TestEmptyConfigDecodes(t *testing.T) {
	node := domain.Node{ID: "end-1", Kind: domain.NodeEnd}

	cfg, err := node.EndConfig()
	require.NoError(t, err)
	assert.Empty(t, cfg.Reason)
}
