package runtime

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/callweave/callweave/pkg/domain"
	"github.com/callweave/callweave/pkg/ports"
)

// step processes one node and returns the ID of the next node to enter, or
// "" when the walk stops (terminal status or no outgoing edge). A non-nil
// error is reserved for cancellation and adapter connectivity failures;
// logical node failures terminate via the execution status instead.
func (e *Engine) step(ctx context.Context, wf *domain.Workflow, exec *domain.Execution, node domain.Node) (string, error) {
	switch node.Kind {
	case domain.NodeStart:
		return e.stepStart(ctx, wf, exec, node)
	case domain.NodeCall:
		return e.stepCall(ctx, wf, exec, node)
	case domain.NodeMessage:
		return e.stepMessage(ctx, wf, exec, node)
	case domain.NodeConditional:
		return e.stepConditional(ctx, wf, exec, node)
	case domain.NodeInput:
		return e.stepInput(ctx, wf, exec, node)
	case domain.NodeDelay:
		return e.stepDelay(ctx, wf, exec, node)
	case domain.NodeEnd:
		return e.stepEnd(ctx, exec, node)
	default:
		return "", fmt.Errorf("node %q has unknown kind %q", node.ID, node.Kind)
	}
}

func (e *Engine) stepStart(ctx context.Context, wf *domain.Workflow, exec *domain.Execution, node domain.Node) (string, error) {
	cfg, err := node.StartConfig()
	if err != nil {
		return "", fmt.Errorf("start node %q: %w", node.ID, err)
	}
	if cfg.PhoneNumber != "" {
		exec.Data[domain.KeyPhoneNumber] = domain.NormalizePhoneNumber(cfg.PhoneNumber)
	}
	e.completeNode(ctx, exec, node, nil)
	return e.nextTarget(wf, node.ID), nil
}

func (e *Engine) stepCall(ctx context.Context, wf *domain.Workflow, exec *domain.Execution, node domain.Node) (string, error) {
	cfg, err := node.CallConfig()
	if err != nil {
		return "", fmt.Errorf("call node %q: %w", node.ID, err)
	}

	req := ports.CallRequest{
		Ref:         exec.ID,
		PhoneNumber: e.resolvePhone(cfg.PhoneNumber, exec),
		Prompt:      cfg.Prompt,
		Voice:       cfg.Voice,
	}

	var lastErr error
	for attempt := 1; attempt <= e.callAttempts; attempt++ {
		result, callErr := e.placeCall(ctx, exec, node, req)
		if callErr == nil {
			exec.Data[node.ID] = strconv.Itoa(result.DurationSeconds)
			e.completeNode(ctx, exec, node, map[string]string{
				"callId":   result.CallID,
				"duration": strconv.Itoa(result.DurationSeconds),
			})
			return e.nextTarget(wf, node.ID), nil
		}
		if abortErr := e.handleAdapterErr(ctx, exec, node, callErr, attempt); abortErr != nil {
			return "", abortErr
		}
		lastErr = callErr
	}

	e.logger.Warn("call node exhausted attempts", "execution", exec.ID, "node", node.ID, "err", lastErr)
	e.fail(ctx, exec, domain.ErrKindCallFailed)
	return "", nil
}

func (e *Engine) stepMessage(ctx context.Context, wf *domain.Workflow, exec *domain.Execution, node domain.Node) (string, error) {
	cfg, err := node.MessageConfig()
	if err != nil {
		return "", fmt.Errorf("message node %q: %w", node.ID, err)
	}

	req := ports.MessageRequest{
		Ref:         exec.ID,
		PhoneNumber: e.resolvePhone("", exec),
		Body:        cfg.Body,
		Channel:     cfg.Channel,
	}

	var lastErr error
	for attempt := 1; attempt <= e.callAttempts; attempt++ {
		result, sendErr := e.sendMessage(ctx, exec, node, req)
		if sendErr == nil {
			exec.Data[node.ID] = result.MessageID
			e.completeNode(ctx, exec, node, map[string]string{"messageId": result.MessageID})
			return e.nextTarget(wf, node.ID), nil
		}
		if abortErr := e.handleAdapterErr(ctx, exec, node, sendErr, attempt); abortErr != nil {
			return "", abortErr
		}
		lastErr = sendErr
	}

	e.logger.Warn("message node exhausted attempts", "execution", exec.ID, "node", node.ID, "err", lastErr)
	e.fail(ctx, exec, domain.ErrKindMessageFailed)
	return "", nil
}

func (e *Engine) stepConditional(ctx context.Context, wf *domain.Workflow, exec *domain.Execution, node domain.Node) (string, error) {
	spec, err := node.ConditionSpec()
	if err != nil {
		return "", fmt.Errorf("conditional node %q: %w", node.ID, err)
	}

	// The evaluator is total: this step never blocks and never fails.
	result := e.evaluator.Evaluate(ctx, spec, exec.Data)

	branch := domain.BranchFalse
	if result {
		branch = domain.BranchTrue
	}
	e.append(exec, node.ID, domain.EventConditionEvaluated, map[string]string{
		"result":     strconv.FormatBool(result),
		"comparison": string(spec.Kind),
		"source":     spec.Source,
	}, "")
	e.logger.Debug("condition evaluated", "execution", exec.ID, "node", node.ID, "result", result)

	return wf.BranchTarget(node.ID, branch), nil
}

func (e *Engine) stepInput(ctx context.Context, wf *domain.Workflow, exec *domain.Execution, node domain.Node) (string, error) {
	cfg, err := node.InputConfig()
	if err != nil {
		return "", fmt.Errorf("input node %q: %w", node.ID, err)
	}

	req := ports.InputRequest{
		Ref:      exec.ID,
		Prompt:   cfg.Prompt,
		Modality: cfg.Modality,
		Timeout:  time.Duration(cfg.TimeoutSeconds) * time.Second,
	}

	// maxRetries counts additional attempts after the first.
	attempts := cfg.MaxRetries + 1
	for attempt := 1; attempt <= attempts; attempt++ {
		result, inErr := e.collectInput(ctx, exec, node, req)
		if inErr == nil {
			exec.Data[node.ID] = result.Response
			exec.Data[domain.KeyLastResponse] = result.Response
			e.append(exec, node.ID, domain.EventUserInput, map[string]string{"response": result.Response}, "")
			e.completeNode(ctx, exec, node, nil)
			return e.nextTarget(wf, node.ID), nil
		}
		if abortErr := e.handleAdapterErr(ctx, exec, node, inErr, attempt); abortErr != nil {
			return "", abortErr
		}
	}

	e.logger.Warn("input node exhausted retries", "execution", exec.ID, "node", node.ID, "attempts", attempts)
	e.fail(ctx, exec, domain.ErrKindInputTimeout)
	return "", nil
}

func (e *Engine) stepDelay(ctx context.Context, wf *domain.Workflow, exec *domain.Execution, node domain.Node) (string, error) {
	cfg, err := node.DelayConfig()
	if err != nil {
		return "", fmt.Errorf("delay node %q: %w", node.ID, err)
	}

	seconds := cfg.Seconds()
	e.logger.Debug("suspending execution", "execution", exec.ID, "node", node.ID, "seconds", seconds)

	exec.Status = domain.ExecSuspended
	e.checkpoint(ctx, exec)

	select {
	case <-e.clock.After(time.Duration(seconds) * time.Second):
	case <-ctx.Done():
		return "", ctx.Err()
	}

	exec.Status = domain.ExecRunning
	e.checkpoint(ctx, exec)
	e.completeNode(ctx, exec, node, map[string]string{"seconds": strconv.Itoa(seconds)})
	return e.nextTarget(wf, node.ID), nil
}

func (e *Engine) stepEnd(ctx context.Context, exec *domain.Execution, node domain.Node) (string, error) {
	cfg, err := node.EndConfig()
	if err != nil {
		return "", fmt.Errorf("end node %q: %w", node.ID, err)
	}
	e.completeNode(ctx, exec, node, nil)
	e.complete(ctx, exec, cfg.Reason)
	return "", nil
}

// handleAdapterErr classifies a failed adapter operation. Cancellation and
// connectivity failures abort the run; logical failures append one
// node_failed entry and let the caller retry.
func (e *Engine) handleAdapterErr(ctx context.Context, exec *domain.Execution, node domain.Node, opErr error, attempt int) error {
	if ctx.Err() != nil {
		return ctx.Err()
	}
	if errors.Is(opErr, domain.ErrAdapterUnavailable) {
		e.append(exec, node.ID, domain.EventNodeFailed, nil, opErr.Error())
		e.failNodeHook(ctx, exec, node)
		e.fail(ctx, exec, domain.ErrKindAdapterUnavailable)
		return fmt.Errorf("execution %s at node %q: %w", exec.ID, node.ID, opErr)
	}

	e.append(exec, node.ID, domain.EventNodeFailed, map[string]string{
		"attempt": strconv.Itoa(attempt),
	}, opErr.Error())
	e.failNodeHook(ctx, exec, node)
	return nil
}

// resolvePhone prefers the node's own number, falling back to the number the
// run was started with.
func (e *Engine) resolvePhone(configured string, exec *domain.Execution) string {
	if configured != "" {
		return domain.NormalizePhoneNumber(configured)
	}
	return exec.Data[domain.KeyPhoneNumber]
}

// nextTarget returns the target of the node's single outgoing edge, or ""
// when the node is a sink.
func (e *Engine) nextTarget(wf *domain.Workflow, nodeID string) string {
	out := wf.Outgoing(nodeID)
	if len(out) == 0 {
		return ""
	}
	return out[0].Target
}
