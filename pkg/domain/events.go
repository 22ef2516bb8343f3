package domain

import (
	"context"
	"time"
)

// EventType categorizes execution log entries.
type EventType string

const (
	EventNodeEntered        EventType = "node_entered"
	EventNodeCompleted      EventType = "node_completed"
	EventNodeFailed         EventType = "node_failed"
	EventConditionEvaluated EventType = "condition_evaluated"
	EventUserInput          EventType = "user_input"
	EventCancelled          EventType = "cancelled"
)

// LogEntry is one record of the append-only execution log. Entries are
// totally ordered by append order; timestamps are monotonically
// non-decreasing because the engine is the single writer.
type LogEntry struct {
	Timestamp time.Time         `json:"timestamp"`
	NodeID    string            `json:"nodeId,omitempty"`
	Event     EventType         `json:"event"`
	Data      map[string]string `json:"data,omitempty"`
	Message   string            `json:"message,omitempty"`
}

// NodeEvent is passed to lifecycle hooks on node transitions.
type NodeEvent struct {
	Timestamp   time.Time
	ExecutionID string
	NodeID      string
	NodeKind    NodeKind
}

// AdapterEvent is passed to lifecycle hooks around telephony operations.
type AdapterEvent struct {
	Timestamp   time.Time
	ExecutionID string
	NodeID      string
	Op          string // "place_call", "send_message", "collect_input", "cancel"
	Duration    time.Duration
	Err         error
}

// LifecycleHooks defines optional callbacks for engine observability.
// Nil fields are skipped. Hooks run synchronously on the execution
// goroutine and must be fast.
type LifecycleHooks struct {
	OnNodeEnter     func(context.Context, *NodeEvent)
	OnNodeComplete  func(context.Context, *NodeEvent)
	OnNodeFail      func(context.Context, *NodeEvent)
	OnAdapterCall   func(context.Context, *AdapterEvent)
	OnAdapterReturn func(context.Context, *AdapterEvent)
	OnExecutionDone func(context.Context, *Execution)
}
