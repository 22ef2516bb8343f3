package callweave

import (
	"context"
	"log/slog"
	"sync"

	"github.com/callweave/callweave/internal/adapters/memory"
	"github.com/callweave/callweave/internal/condition"
	"github.com/callweave/callweave/internal/logging"
	"github.com/callweave/callweave/internal/runtime"
	"github.com/callweave/callweave/internal/validator"
	"github.com/callweave/callweave/pkg/domain"
	"github.com/callweave/callweave/pkg/ports"
)

// Engine is the high-level entry point for the callweave library. It wraps
// the internal runtime with workflow persistence and cancel-by-ID tracking
// of running executions.
type Engine struct {
	runtime    *runtime.Engine
	workflows  ports.WorkflowStore
	executions ports.ExecutionStore
	logger     *slog.Logger

	mu      sync.Mutex
	running map[string]*runtime.Handle
}

// Option configures the Engine.
type Option func(*config)

type config struct {
	logger      *slog.Logger
	workflows   ports.WorkflowStore
	executions  ports.ExecutionStore
	clock       ports.Clock
	hooks       []domain.LifecycleHooks
	stepLimit   int
	callRetries int
	customFn    condition.CustomFunc
}

// WithLogger sets the structured logger for the engine and its runtime.
func WithLogger(logger *slog.Logger) Option {
	return func(c *config) {
		c.logger = logger
	}
}

// WithWorkflowStore overrides the default in-memory workflow store.
func WithWorkflowStore(store ports.WorkflowStore) Option {
	return func(c *config) {
		c.workflows = store
	}
}

// WithExecutionStore overrides the default in-memory execution store.
func WithExecutionStore(store ports.ExecutionStore) Option {
	return func(c *config) {
		c.executions = store
	}
}

// WithClock injects a clock (tests).
func WithClock(clock ports.Clock) Option {
	return func(c *config) {
		c.clock = clock
	}
}

// WithLifecycleHooks registers observability hooks. May be given multiple
// times; hooks are fanned out in registration order.
func WithLifecycleHooks(hooks domain.LifecycleHooks) Option {
	return func(c *config) {
		c.hooks = append(c.hooks, hooks)
	}
}

// WithStepLimit bounds node entries per execution.
func WithStepLimit(limit int) Option {
	return func(c *config) {
		c.stepLimit = limit
	}
}

// WithCallAttempts sets the attempt cap for call and message nodes.
func WithCallAttempts(attempts int) Option {
	return func(c *config) {
		c.callRetries = attempts
	}
}

// WithCustomCondition plugs a resolver for "custom" conditions.
func WithCustomCondition(fn condition.CustomFunc) Option {
	return func(c *config) {
		c.customFn = fn
	}
}

// New creates an Engine bound to a telephony adapter.
func New(adapter ports.Telephony, opts ...Option) *Engine {
	cfg := config{
		logger: logging.NewNop(),
	}
	for _, opt := range opts {
		opt(&cfg)
	}
	if cfg.workflows == nil || cfg.executions == nil {
		store := memory.New()
		if cfg.workflows == nil {
			cfg.workflows = store
		}
		if cfg.executions == nil {
			cfg.executions = store
		}
	}

	runtimeOpts := []runtime.Option{
		runtime.WithLogger(cfg.logger),
		runtime.WithExecutionStore(cfg.executions),
		runtime.WithLifecycleHooks(fanOut(cfg.hooks)),
	}
	if cfg.clock != nil {
		runtimeOpts = append(runtimeOpts, runtime.WithClock(cfg.clock))
	}
	if cfg.stepLimit > 0 {
		runtimeOpts = append(runtimeOpts, runtime.WithStepLimit(cfg.stepLimit))
	}
	if cfg.callRetries > 0 {
		runtimeOpts = append(runtimeOpts, runtime.WithCallAttempts(cfg.callRetries))
	}
	if cfg.customFn != nil {
		runtimeOpts = append(runtimeOpts, runtime.WithCustomCondition(cfg.customFn))
	}

	return &Engine{
		runtime:    runtime.New(adapter, runtimeOpts...),
		workflows:  cfg.workflows,
		executions: cfg.executions,
		logger:     cfg.logger,
		running:    make(map[string]*runtime.Handle),
	}
}

// ExecOption configures a single run.
type ExecOption = runtime.ExecOption

// WithInitialData seeds the execution data before the first step.
func WithInitialData(data map[string]string) ExecOption {
	return runtime.WithInitialData(data)
}

// WithExecutionID pins the execution ID instead of generating one.
func WithExecutionID(id string) ExecOption {
	return runtime.WithExecutionID(id)
}

// Validate reports every structural invariant violation in wf. A nil result
// means the workflow may be executed.
func (e *Engine) Validate(wf *domain.Workflow) []domain.StructuralError {
	return validator.Validate(wf)
}

// Execute runs wf to a terminal status on the calling goroutine.
func (e *Engine) Execute(ctx context.Context, wf *domain.Workflow, opts ...runtime.ExecOption) (*domain.Execution, error) {
	return e.runtime.Execute(ctx, wf, opts...)
}

// Start launches wf asynchronously and returns the new execution's ID.
// Progress is observable through Execution; the run can be stopped with
// Cancel.
func (e *Engine) Start(ctx context.Context, wf *domain.Workflow, opts ...runtime.ExecOption) (string, error) {
	h, err := e.runtime.Start(ctx, wf, opts...)
	if err != nil {
		return "", err
	}

	e.mu.Lock()
	e.running[h.ExecutionID] = h
	e.mu.Unlock()

	go func() {
		<-h.Done()
		e.mu.Lock()
		delete(e.running, h.ExecutionID)
		e.mu.Unlock()
	}()

	return h.ExecutionID, nil
}

// Execution returns the latest persisted snapshot of an execution.
func (e *Engine) Execution(ctx context.Context, id string) (*domain.Execution, error) {
	return e.executions.GetExecution(ctx, id)
}

// Cancel requests cancellation of a running execution. Cancelling an
// execution that already reached a terminal status is a no-op; an unknown
// ID returns domain.ErrExecutionNotFound.
func (e *Engine) Cancel(ctx context.Context, id string) error {
	e.mu.Lock()
	h, ok := e.running[id]
	e.mu.Unlock()
	if ok {
		h.Cancel()
		return nil
	}

	// No live handle: the execution either finished or never existed.
	if _, err := e.executions.GetExecution(ctx, id); err != nil {
		return err
	}
	return nil
}

// SaveWorkflow persists wf after validating it.
func (e *Engine) SaveWorkflow(ctx context.Context, wf *domain.Workflow) error {
	if errs := validator.Validate(wf); len(errs) > 0 {
		return &domain.ValidationError{Errors: errs}
	}
	return e.workflows.SaveWorkflow(ctx, wf)
}

// Workflow loads a stored workflow by ID.
func (e *Engine) Workflow(ctx context.Context, id string) (*domain.Workflow, error) {
	return e.workflows.GetWorkflow(ctx, id)
}

// Workflows lists all stored workflows.
func (e *Engine) Workflows(ctx context.Context) ([]*domain.Workflow, error) {
	return e.workflows.ListWorkflows(ctx)
}

// DeleteWorkflow removes a stored workflow.
func (e *Engine) DeleteWorkflow(ctx context.Context, id string) error {
	return e.workflows.DeleteWorkflow(ctx, id)
}

// fanOut composes multiple hook sets into one.
func fanOut(all []domain.LifecycleHooks) domain.LifecycleHooks {
	if len(all) == 0 {
		return domain.LifecycleHooks{}
	}
	if len(all) == 1 {
		return all[0]
	}
	var out domain.LifecycleHooks
	out.OnNodeEnter = func(ctx context.Context, ev *domain.NodeEvent) {
		for _, h := range all {
			if h.OnNodeEnter != nil {
				h.OnNodeEnter(ctx, ev)
			}
		}
	}
	out.OnNodeComplete = func(ctx context.Context, ev *domain.NodeEvent) {
		for _, h := range all {
			if h.OnNodeComplete != nil {
				h.OnNodeComplete(ctx, ev)
			}
		}
	}
	out.OnNodeFail = func(ctx context.Context, ev *domain.NodeEvent) {
		for _, h := range all {
			if h.OnNodeFail != nil {
				h.OnNodeFail(ctx, ev)
			}
		}
	}
	out.OnAdapterCall = func(ctx context.Context, ev *domain.AdapterEvent) {
		for _, h := range all {
			if h.OnAdapterCall != nil {
				h.OnAdapterCall(ctx, ev)
			}
		}
	}
	out.OnAdapterReturn = func(ctx context.Context, ev *domain.AdapterEvent) {
		for _, h := range all {
			if h.OnAdapterReturn != nil {
				h.OnAdapterReturn(ctx, ev)
			}
		}
	}
	out.OnExecutionDone = func(ctx context.Context, exec *domain.Execution) {
		for _, h := range all {
			if h.OnExecutionDone != nil {
				h.OnExecutionDone(ctx, exec)
			}
		}
	}
	return out
}
