package runtime

import (
	"context"
	"time"

	"github.com/callweave/callweave/pkg/domain"
	"github.com/callweave/callweave/pkg/ports"
)

// append writes one entry to the execution log. The engine goroutine is the
// only writer, so append order and timestamp order agree.
func (e *Engine) append(exec *domain.Execution, nodeID string, event domain.EventType, data map[string]string, message string) {
	exec.Log = append(exec.Log, domain.LogEntry{
		Timestamp: e.clock.Now(),
		NodeID:    nodeID,
		Event:     event,
		Data:      data,
		Message:   message,
	})
}

// enterNode logs node entry and fires the hook.
func (e *Engine) enterNode(ctx context.Context, exec *domain.Execution, node domain.Node) {
	e.append(exec, node.ID, domain.EventNodeEntered, nil, "")
	if e.hooks.OnNodeEnter != nil {
		e.hooks.OnNodeEnter(ctx, e.nodeEvent(exec, node))
	}
}

// completeNode logs node completion and fires the hook.
func (e *Engine) completeNode(ctx context.Context, exec *domain.Execution, node domain.Node, data map[string]string) {
	e.append(exec, node.ID, domain.EventNodeCompleted, data, "")
	if e.hooks.OnNodeComplete != nil {
		e.hooks.OnNodeComplete(ctx, e.nodeEvent(exec, node))
	}
}

func (e *Engine) failNodeHook(ctx context.Context, exec *domain.Execution, node domain.Node) {
	if e.hooks.OnNodeFail != nil {
		e.hooks.OnNodeFail(ctx, e.nodeEvent(exec, node))
	}
}

func (e *Engine) nodeEvent(exec *domain.Execution, node domain.Node) *domain.NodeEvent {
	return &domain.NodeEvent{
		Timestamp:   e.clock.Now(),
		ExecutionID: exec.ID,
		NodeID:      node.ID,
		NodeKind:    node.Kind,
	}
}

// complete moves the execution to its completed terminal status. reason is
// the end node's termination reason, if any.
func (e *Engine) complete(ctx context.Context, exec *domain.Execution, reason string) {
	exec.Status = domain.ExecCompleted
	if reason != "" {
		exec.Data["end_reason"] = reason
	}
	e.finish(ctx, exec)
}

// fail moves the execution to its failed terminal status. The caller has
// already appended the log entry describing the failure.
func (e *Engine) fail(ctx context.Context, exec *domain.Execution, kind domain.ErrorKind) {
	exec.Status = domain.ExecFailed
	exec.ErrorKind = kind
	e.finish(ctx, exec)
}

// cancelExec moves the execution to cancelled and best-effort aborts any
// in-flight adapter operation. Idempotent: a terminal execution is returned
// unchanged.
func (e *Engine) cancelExec(ctx context.Context, exec *domain.Execution) *domain.Execution {
	if exec.Status.Terminal() {
		return exec
	}

	// The run context is already dead; detach for the remaining writes.
	bg := context.WithoutCancel(ctx)

	e.append(exec, exec.CurrentNode, domain.EventCancelled, nil, "execution cancelled")
	exec.Status = domain.ExecCancelled

	if err := e.adapter.Cancel(bg, exec.ID); err != nil {
		e.logger.Warn("adapter cancel failed", "execution", exec.ID, "err", err)
	}

	e.finish(bg, exec)
	return exec
}

// finish stamps the terminal time, checkpoints, and fires the done hook.
func (e *Engine) finish(ctx context.Context, exec *domain.Execution) {
	now := e.clock.Now()
	exec.FinishedAt = &now
	e.checkpoint(ctx, exec)
	if e.hooks.OnExecutionDone != nil {
		e.hooks.OnExecutionDone(ctx, exec)
	}
}

// checkpoint saves a snapshot to the execution store, when one is
// configured. Checkpoint failures are logged, never fatal: the in-memory
// execution remains authoritative for the running goroutine.
func (e *Engine) checkpoint(ctx context.Context, exec *domain.Execution) {
	if e.store == nil {
		return
	}
	if err := e.store.SaveExecution(context.WithoutCancel(ctx), exec.Clone()); err != nil {
		e.logger.Warn("execution checkpoint failed", "execution", exec.ID, "err", err)
	}
}

// placeCall invokes the adapter with call/return hooks and timing.
func (e *Engine) placeCall(ctx context.Context, exec *domain.Execution, node domain.Node, req ports.CallRequest) (ports.CallResult, error) {
	started := e.adapterCall(ctx, exec, node, "place_call")
	result, err := e.adapter.PlaceCall(ctx, req)
	e.adapterReturn(ctx, exec, node, "place_call", started, err)
	return result, err
}

// sendMessage invokes the adapter with call/return hooks and timing.
func (e *Engine) sendMessage(ctx context.Context, exec *domain.Execution, node domain.Node, req ports.MessageRequest) (ports.MessageResult, error) {
	started := e.adapterCall(ctx, exec, node, "send_message")
	result, err := e.adapter.SendMessage(ctx, req)
	e.adapterReturn(ctx, exec, node, "send_message", started, err)
	return result, err
}

// collectInput invokes the adapter with call/return hooks and timing.
func (e *Engine) collectInput(ctx context.Context, exec *domain.Execution, node domain.Node, req ports.InputRequest) (ports.InputResult, error) {
	started := e.adapterCall(ctx, exec, node, "collect_input")
	result, err := e.adapter.CollectInput(ctx, req)
	e.adapterReturn(ctx, exec, node, "collect_input", started, err)
	return result, err
}

func (e *Engine) adapterCall(ctx context.Context, exec *domain.Execution, node domain.Node, op string) time.Time {
	started := e.clock.Now()
	if e.hooks.OnAdapterCall != nil {
		e.hooks.OnAdapterCall(ctx, &domain.AdapterEvent{
			Timestamp:   started,
			ExecutionID: exec.ID,
			NodeID:      node.ID,
			Op:          op,
		})
	}
	return started
}

func (e *Engine) adapterReturn(ctx context.Context, exec *domain.Execution, node domain.Node, op string, started time.Time, err error) {
	if e.hooks.OnAdapterReturn == nil {
		return
	}
	e.hooks.OnAdapterReturn(ctx, &domain.AdapterEvent{
		Timestamp:   e.clock.Now(),
		ExecutionID: exec.ID,
		NodeID:      node.ID,
		Op:          op,
		Duration:    e.clock.Now().Sub(started),
		Err:         err,
	})
}
