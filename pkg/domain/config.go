package domain

import (
	"github.com/mitchellh/mapstructure"
)

// MessageChannel selects the delivery channel of a message node.
type MessageChannel string

const (
	ChannelSMS   MessageChannel = "sms"
	ChannelVoice MessageChannel = "voice"
)

// InputModality selects how an input node collects a response.
type InputModality string

const (
	ModalitySpeech InputModality = "speech"
	ModalityDTMF   InputModality = "dtmf"
	ModalityBoth   InputModality = "both"
)

// DelayUnit is the time unit of a delay node.
type DelayUnit string

const (
	UnitSeconds DelayUnit = "seconds"
	UnitMinutes DelayUnit = "minutes"
	UnitHours   DelayUnit = "hours"
)

// ConditionKind is the comparison performed by a conditional node.
type ConditionKind string

const (
	CondContains        ConditionKind = "contains"
	CondEquals          ConditionKind = "equals"
	CondDurationGreater ConditionKind = "duration_greater"
	CondDurationLess    ConditionKind = "duration_less"
	CondCustom          ConditionKind = "custom"
)

// VoiceSettings configures text-to-speech for call prompts.
type VoiceSettings struct {
	Voice string  `mapstructure:"voice" json:"voice,omitempty"`
	Speed float64 `mapstructure:"speed" json:"speed,omitempty"`
	Pitch float64 `mapstructure:"pitch" json:"pitch,omitempty"`
}

// StartConfig holds the optional defaults carried by the start node.
type StartConfig struct {
	PhoneNumber string `mapstructure:"phoneNumber"`
	Prompt      string `mapstructure:"prompt"`
}

// CallConfig configures a call node.
type CallConfig struct {
	PhoneNumber string        `mapstructure:"phoneNumber"`
	Prompt      string        `mapstructure:"prompt"`
	Voice       VoiceSettings `mapstructure:"voice"`
}

// MessageConfig configures a message node.
type MessageConfig struct {
	Body    string         `mapstructure:"body"`
	Channel MessageChannel `mapstructure:"channel"`
}

// ConditionSpec configures a conditional node. Source is a key into the
// execution data (a node ID or a semantic key such as "last_response").
type ConditionSpec struct {
	Kind       ConditionKind `mapstructure:"comparison"`
	Source     string        `mapstructure:"source"`
	Value      string        `mapstructure:"value"`
	TrueLabel  string        `mapstructure:"trueLabel"`
	FalseLabel string        `mapstructure:"falseLabel"`
}

// InputConfig configures an input node.
type InputConfig struct {
	Prompt         string        `mapstructure:"prompt"`
	Modality       InputModality `mapstructure:"modality"`
	TimeoutSeconds int           `mapstructure:"timeout"`
	MaxRetries     int           `mapstructure:"maxRetries"`
}

// DelayConfig configures a delay node.
type DelayConfig struct {
	Duration float64   `mapstructure:"duration"`
	Unit     DelayUnit `mapstructure:"unit"`
}

// Seconds converts the delay into total suspension seconds.
// Unknown units fall back to seconds.
func (d DelayConfig) Seconds() int {
	factor := 1
	switch d.Unit {
	case UnitMinutes:
		factor = 60
	case UnitHours:
		factor = 3600
	}
	return int(d.Duration * float64(factor))
}

// EndConfig configures an end node.
type EndConfig struct {
	Reason string `mapstructure:"reason"`
}

// decodeConfig maps the editor's loose config shape into a typed struct.
// WeaklyTypedInput tolerates numbers arriving as strings and vice versa,
// which happens routinely with canvas-serialized JSON.
func decodeConfig(src map[string]any, dst any) error {
	dec, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		Result:           dst,
		WeaklyTypedInput: true,
	})
	if err != nil {
		return err
	}
	return dec.Decode(src)
}

// StartConfig decodes the node's config as a start node.
func (n Node) StartConfig() (StartConfig, error) {
	var c StartConfig
	err := decodeConfig(n.Config, &c)
	return c, err
}

// CallConfig decodes the node's config as a call node.
func (n Node) CallConfig() (CallConfig, error) {
	var c CallConfig
	err := decodeConfig(n.Config, &c)
	return c, err
}

// MessageConfig decodes the node's config as a message node.
func (n Node) MessageConfig() (MessageConfig, error) {
	var c MessageConfig
	err := decodeConfig(n.Config, &c)
	if err == nil && c.Channel == "" {
		c.Channel = ChannelSMS
	}
	return c, err
}

// ConditionSpec decodes the node's config as a conditional node.
func (n Node) ConditionSpec() (ConditionSpec, error) {
	var c ConditionSpec
	err := decodeConfig(n.Config, &c)
	return c, err
}

// InputConfig decodes the node's config as an input node.
func (n Node) InputConfig() (InputConfig, error) {
	var c InputConfig
	err := decodeConfig(n.Config, &c)
	return c, err
}

// DelayConfig decodes the node's config as a delay node.
func (n Node) DelayConfig() (DelayConfig, error) {
	var c DelayConfig
	err := decodeConfig(n.Config, &c)
	if err == nil && c.Unit == "" {
		c.Unit = UnitSeconds
	}
	return c, err
}

// EndConfig decodes the node's config as an end node.
func (n Node) EndConfig() (EndConfig, error) {
	var c EndConfig
	err := decodeConfig(n.Config, &c)
	return c, err
}
