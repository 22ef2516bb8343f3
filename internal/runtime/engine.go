// Package runtime implements the execution engine: a stateful interpreter
// that walks a validated workflow graph one node at a time, invoking the
// telephony port and the condition evaluator, and producing an auditable
// execution log.
package runtime

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	"github.com/google/uuid"

	"github.com/callweave/callweave/internal/condition"
	"github.com/callweave/callweave/internal/logging"
	"github.com/callweave/callweave/internal/validator"
	"github.com/callweave/callweave/pkg/domain"
	"github.com/callweave/callweave/pkg/ports"
)

// DefaultStepLimit bounds total node entries per execution. Cycles are
// structurally legal, so this is the guarantee that no run loops forever.
const DefaultStepLimit = 250

// DefaultCallAttempts is the attempt cap for call and message nodes.
// 1 means no retry.
const DefaultCallAttempts = 1

// Engine runs executions. One Engine is safe for concurrent use; every
// execution runs on its own goroutine with no shared mutable state beyond
// the read-only workflow definition.
type Engine struct {
	adapter      ports.Telephony
	evaluator    *condition.Evaluator
	clock        ports.Clock
	logger       *slog.Logger
	hooks        domain.LifecycleHooks
	store        ports.ExecutionStore
	stepLimit    int
	callAttempts int
	customFn     condition.CustomFunc
	newID        func() string
}

// Option configures the Engine.
type Option func(*Engine)

// WithLogger sets the structured logger.
func WithLogger(logger *slog.Logger) Option {
	return func(e *Engine) {
		e.logger = logger
	}
}

// WithLifecycleHooks registers observability callbacks.
func WithLifecycleHooks(hooks domain.LifecycleHooks) Option {
	return func(e *Engine) {
		e.hooks = hooks
	}
}

// WithClock injects a clock; tests use a fake to avoid sleeping through
// delay nodes.
func WithClock(clock ports.Clock) Option {
	return func(e *Engine) {
		e.clock = clock
	}
}

// WithStepLimit overrides the per-execution node-entry bound.
func WithStepLimit(limit int) Option {
	return func(e *Engine) {
		if limit > 0 {
			e.stepLimit = limit
		}
	}
}

// WithCallAttempts overrides the attempt cap for call and message nodes.
func WithCallAttempts(attempts int) Option {
	return func(e *Engine) {
		if attempts > 0 {
			e.callAttempts = attempts
		}
	}
}

// WithExecutionStore enables checkpointing of execution snapshots after
// every status transition.
func WithExecutionStore(store ports.ExecutionStore) Option {
	return func(e *Engine) {
		e.store = store
	}
}

// WithCustomCondition plugs a resolver for "custom" conditions into the
// evaluator.
func WithCustomCondition(fn condition.CustomFunc) Option {
	return func(e *Engine) {
		e.customFn = fn
	}
}

// WithIDGenerator overrides execution ID generation (tests).
func WithIDGenerator(fn func() string) Option {
	return func(e *Engine) {
		e.newID = fn
	}
}

// New creates an Engine bound to a telephony adapter.
func New(adapter ports.Telephony, opts ...Option) *Engine {
	e := &Engine{
		adapter:      adapter,
		clock:        ports.SystemClock(),
		logger:       logging.NewNop(),
		stepLimit:    DefaultStepLimit,
		callAttempts: DefaultCallAttempts,
		newID:        uuid.NewString,
	}
	for _, opt := range opts {
		opt(e)
	}
	e.evaluator = condition.New(
		condition.WithLogger(e.logger),
		condition.WithCustomFunc(e.customFn),
	)
	return e
}

// ExecOption configures a single run.
type ExecOption func(*runConfig)

type runConfig struct {
	initialData map[string]string
	executionID string
}

// WithInitialData seeds the execution data before the first step. The HTTP
// layer uses it to pass the callee phone number from the submission.
func WithInitialData(data map[string]string) ExecOption {
	return func(c *runConfig) {
		c.initialData = data
	}
}

// WithExecutionID pins the execution ID instead of generating one.
func WithExecutionID(id string) ExecOption {
	return func(c *runConfig) {
		c.executionID = id
	}
}

// Execute validates wf and runs it to a terminal status on the calling
// goroutine. The returned execution is always non-nil once validation has
// passed, even when err is set (adapter unreachable, cancellation).
func (e *Engine) Execute(ctx context.Context, wf *domain.Workflow, opts ...ExecOption) (*domain.Execution, error) {
	exec, err := e.prepare(wf, opts...)
	if err != nil {
		return nil, err
	}
	return e.run(ctx, wf, exec)
}

// Start validates wf and launches the execution on its own goroutine,
// returning a handle immediately. One execution's suspension never stalls
// another.
func (e *Engine) Start(ctx context.Context, wf *domain.Workflow, opts ...ExecOption) (*Handle, error) {
	exec, err := e.prepare(wf, opts...)
	if err != nil {
		return nil, err
	}

	runCtx, cancel := context.WithCancel(ctx)
	h := &Handle{
		ExecutionID: exec.ID,
		cancel:      cancel,
		done:        make(chan struct{}),
	}
	go func() {
		defer cancel()
		result, runErr := e.run(runCtx, wf, exec)
		h.mu.Lock()
		h.exec = result
		h.err = runErr
		h.mu.Unlock()
		close(h.done)
	}()
	return h, nil
}

// prepare validates the workflow and builds the pending execution.
func (e *Engine) prepare(wf *domain.Workflow, opts ...ExecOption) (*domain.Execution, error) {
	if errs := validator.Validate(wf); len(errs) > 0 {
		return nil, &domain.ValidationError{Errors: errs}
	}

	cfg := runConfig{}
	for _, opt := range opts {
		opt(&cfg)
	}
	id := cfg.executionID
	if id == "" {
		id = e.newID()
	}

	exec := domain.NewExecution(id, wf.ID, e.clock.Now())
	for k, v := range cfg.initialData {
		exec.Data[k] = v
	}
	return exec, nil
}

// Handle tracks an asynchronously started execution.
type Handle struct {
	ExecutionID string

	cancel context.CancelFunc
	done   chan struct{}

	mu   sync.Mutex
	exec *domain.Execution
	err  error
}

// Cancel requests cancellation. Idempotent; cancelling a finished execution
// is a no-op.
func (h *Handle) Cancel() {
	h.cancel()
}

// Done is closed when the execution reaches a terminal status.
func (h *Handle) Done() <-chan struct{} {
	return h.done
}

// Wait blocks until the execution terminates and returns its final state.
func (h *Handle) Wait() (*domain.Execution, error) {
	<-h.done
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.exec, h.err
}

// run drives the execution to a terminal status.
func (e *Engine) run(ctx context.Context, wf *domain.Workflow, exec *domain.Execution) (*domain.Execution, error) {
	start, ok := wf.StartNode()
	if !ok {
		// prepare validated the workflow, so this indicates misuse.
		return nil, fmt.Errorf("workflow %q has no unambiguous start node", wf.ID)
	}

	logger := e.logger.With("execution", exec.ID, "workflow", wf.ID)
	logger.Debug("execution starting", "start_node", start.ID)

	exec.Status = domain.ExecRunning
	e.checkpoint(ctx, exec)

	current := start.ID
	steps := 0
	for current != "" && !exec.Status.Terminal() {
		if ctx.Err() != nil {
			return e.cancelExec(ctx, exec), nil
		}

		steps++
		if steps > e.stepLimit {
			logger.Warn("step limit exceeded", "limit", e.stepLimit, "node", current)
			e.append(exec, current, domain.EventNodeFailed, nil,
				fmt.Sprintf("step limit of %d node entries exceeded", e.stepLimit))
			e.fail(ctx, exec, domain.ErrKindExecutionLimit)
			return exec, nil
		}

		node, found := wf.FindNode(current)
		if !found {
			return nil, fmt.Errorf("execution %s references unknown node %q", exec.ID, current)
		}

		exec.CurrentNode = node.ID
		e.enterNode(ctx, exec, node)

		next, err := e.step(ctx, wf, exec, node)
		if err != nil {
			if ctx.Err() != nil {
				return e.cancelExec(ctx, exec), nil
			}
			return exec, err
		}
		current = next
	}

	// Running off the end of a node with no outgoing edge completes the
	// execution implicitly (a start-only workflow is valid).
	if !exec.Status.Terminal() {
		e.complete(ctx, exec, "")
	}

	logger.Debug("execution finished", "status", string(exec.Status), "steps", steps)
	return exec, nil
}
