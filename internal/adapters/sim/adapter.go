// Package sim is a deterministic, in-process telephony adapter. It stands in
// for a real provider during demos and CLI runs: calls "connect" instantly,
// messages always deliver, and input collection replays a scripted list of
// responses.
package sim

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/callweave/callweave/internal/logging"
	"github.com/callweave/callweave/pkg/domain"
	"github.com/callweave/callweave/pkg/ports"
)

// Adapter implements ports.Telephony.
type Adapter struct {
	logger  *slog.Logger
	latency time.Duration

	mu        sync.Mutex
	responses []string
	next      int
	calls     int
	messages  int
	cancelled map[string]bool
}

// Option configures the Adapter.
type Option func(*Adapter)

// WithLogger sets the logger used to narrate simulated operations.
func WithLogger(logger *slog.Logger) Option {
	return func(a *Adapter) {
		a.logger = logger
	}
}

// WithResponses scripts the replies returned by CollectInput, in order.
// The list wraps around when exhausted. An empty list means the callee
// stays silent and every collection times out.
func WithResponses(responses ...string) Option {
	return func(a *Adapter) {
		a.responses = responses
	}
}

// WithLatency adds an artificial delay to every operation.
func WithLatency(d time.Duration) Option {
	return func(a *Adapter) {
		a.latency = d
	}
}

// New creates a simulated adapter.
func New(opts ...Option) *Adapter {
	a := &Adapter{
		logger:    logging.NewNop(),
		responses: []string{"yes"},
		cancelled: make(map[string]bool),
	}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// PlaceCall pretends to dial and reports a short successful call.
func (a *Adapter) PlaceCall(ctx context.Context, req ports.CallRequest) (ports.CallResult, error) {
	if err := a.wait(ctx); err != nil {
		return ports.CallResult{}, err
	}

	a.mu.Lock()
	a.calls++
	n := a.calls
	a.mu.Unlock()

	a.logger.Info("simulated call placed",
		"to", req.PhoneNumber,
		"prompt", req.Prompt,
		"voice", req.Voice.Voice,
	)
	return ports.CallResult{
		CallID:          fmt.Sprintf("sim-call-%d", n),
		DurationSeconds: 30,
	}, nil
}

// SendMessage pretends to deliver a message.
func (a *Adapter) SendMessage(ctx context.Context, req ports.MessageRequest) (ports.MessageResult, error) {
	if err := a.wait(ctx); err != nil {
		return ports.MessageResult{}, err
	}

	a.mu.Lock()
	a.messages++
	n := a.messages
	a.mu.Unlock()

	a.logger.Info("simulated message sent",
		"to", req.PhoneNumber,
		"channel", string(req.Channel),
		"body", req.Body,
	)
	return ports.MessageResult{MessageID: fmt.Sprintf("sim-msg-%d", n)}, nil
}

// CollectInput returns the next scripted response. An empty script entry
// simulates a callee that stays silent, yielding domain.ErrInputTimeout.
func (a *Adapter) CollectInput(ctx context.Context, req ports.InputRequest) (ports.InputResult, error) {
	if err := a.wait(ctx); err != nil {
		return ports.InputResult{}, err
	}

	a.mu.Lock()
	var response string
	if len(a.responses) > 0 {
		response = a.responses[a.next%len(a.responses)]
		a.next++
	}
	a.mu.Unlock()

	if response == "" {
		a.logger.Info("simulated input timeout", "prompt", req.Prompt, "timeout", req.Timeout)
		return ports.InputResult{}, fmt.Errorf("no response within %s: %w", req.Timeout, domain.ErrInputTimeout)
	}

	a.logger.Info("simulated input collected", "prompt", req.Prompt, "response", response)
	return ports.InputResult{Response: response}, nil
}

// Cancel records the abort request.
func (a *Adapter) Cancel(ctx context.Context, ref string) error {
	a.mu.Lock()
	a.cancelled[ref] = true
	a.mu.Unlock()
	a.logger.Info("simulated cancel", "ref", ref)
	return nil
}

// Cancelled reports whether Cancel was requested for ref.
func (a *Adapter) Cancelled(ref string) bool {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.cancelled[ref]
}

func (a *Adapter) wait(ctx context.Context) error {
	if a.latency <= 0 {
		return ctx.Err()
	}
	select {
	case <-time.After(a.latency):
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
