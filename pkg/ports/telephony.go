package ports

import (
	"context"
	"time"

	"github.com/callweave/callweave/pkg/domain"
)

// CallRequest asks the telephony backend to place an outbound call and
// speak a prompt. Ref is the execution ID; adapters use it to correlate
// in-flight operations for best-effort cancellation.
type CallRequest struct {
	Ref         string
	PhoneNumber string
	Prompt      string
	Voice       domain.VoiceSettings
}

// CallResult reports a completed call.
type CallResult struct {
	CallID          string
	DurationSeconds int
}

// MessageRequest asks the backend to deliver a message.
type MessageRequest struct {
	Ref         string
	PhoneNumber string
	Body        string
	Channel     domain.MessageChannel
}

// MessageResult reports a delivered message.
type MessageResult struct {
	MessageID string
}

// InputRequest asks the backend to collect a response from the callee.
type InputRequest struct {
	Ref      string
	Prompt   string
	Modality domain.InputModality
	Timeout  time.Duration
}

// InputResult carries the collected response.
type InputResult struct {
	Response string
}

// Telephony is the external collaborator performing actual calls, messages
// and input collection. Implementations must honor context cancellation and
// return domain.ErrInputTimeout (wrapped) when input collection times out,
// and domain.ErrAdapterUnavailable (wrapped) when the backend is
// unreachable.
type Telephony interface {
	PlaceCall(ctx context.Context, req CallRequest) (CallResult, error)
	SendMessage(ctx context.Context, req MessageRequest) (MessageResult, error)
	CollectInput(ctx context.Context, req InputRequest) (InputResult, error)

	// Cancel aborts any in-flight operation correlated to ref. Best-effort:
	// errors are logged, never escalated.
	Cancel(ctx context.Context, ref string) error
}
