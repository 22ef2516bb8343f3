package domain

import (
	"errors"
	"fmt"
	"strings"
)

// ErrWorkflowNotFound is returned by stores when a workflow ID is unknown.
var ErrWorkflowNotFound = errors.New("workflow not found")

// ErrExecutionNotFound is returned by stores when an execution ID is unknown.
var ErrExecutionNotFound = errors.New("execution not found")

// ErrAdapterUnavailable marks a connectivity-class failure of the telephony
// backend, as opposed to a logical node failure. Adapters wrap it so callers
// can distinguish "the workflow logic failed" from "the backend was
// unreachable".
var ErrAdapterUnavailable = errors.New("telephony adapter unavailable")

// ErrInputTimeout is returned by CollectInput when the callee did not
// respond within the node's timeout. The engine retries it per node policy.
var ErrInputTimeout = errors.New("input collection timed out")

// ErrorKind classifies why an execution reached the failed status.
type ErrorKind string

const (
	ErrKindCallFailed         ErrorKind = "call_failed"
	ErrKindMessageFailed      ErrorKind = "message_failed"
	ErrKindInputTimeout       ErrorKind = "input_timeout"
	ErrKindConditionEval      ErrorKind = "condition_evaluation_error"
	ErrKindExecutionLimit     ErrorKind = "execution_limit_exceeded"
	ErrKindAdapterUnavailable ErrorKind = "adapter_unavailable"
)

// StructuralErrorKind classifies graph invariant violations.
type StructuralErrorKind string

const (
	ErrMissingStart          StructuralErrorKind = "missing_start"
	ErrMultipleStart         StructuralErrorKind = "multiple_start"
	ErrUnreachableNode       StructuralErrorKind = "unreachable_node"
	ErrDanglingEdge          StructuralErrorKind = "dangling_edge"
	ErrCondBranchMissing     StructuralErrorKind = "conditional_branch_missing"
	ErrCondBranchDuplicate   StructuralErrorKind = "conditional_branch_duplicate"
	ErrMultipleOutgoingEdges StructuralErrorKind = "multiple_outgoing_edges"
)

// StructuralError pinpoints one invariant violation in a candidate graph.
// NodeID names the offending node; Edge is set for edge-level violations.
type StructuralError struct {
	Kind   StructuralErrorKind `json:"kind"`
	NodeID string              `json:"nodeId,omitempty"`
	Edge   *Edge               `json:"edge,omitempty"`
}

func (e StructuralError) Error() string {
	if e.Edge != nil {
		return fmt.Sprintf("%s: %s -> %s", e.Kind, e.Edge.Source, e.Edge.Target)
	}
	if e.NodeID != "" {
		return fmt.Sprintf("%s: node %q", e.Kind, e.NodeID)
	}
	return string(e.Kind)
}

// ValidationError aggregates every structural violation found in a workflow,
// so authors can fix all issues at once.
type ValidationError struct {
	Errors []StructuralError
}

func (e *ValidationError) Error() string {
	msgs := make([]string, len(e.Errors))
	for i, se := range e.Errors {
		msgs[i] = se.Error()
	}
	return fmt.Sprintf("workflow failed validation with %d error(s): %s",
		len(e.Errors), strings.Join(msgs, "; "))
}
