package domain

import "time"

// ExecutionStatus is the runtime state of one traversal of a workflow.
type ExecutionStatus string

const (
	ExecPending   ExecutionStatus = "pending"
	ExecRunning   ExecutionStatus = "running"
	ExecSuspended ExecutionStatus = "suspended"
	ExecCompleted ExecutionStatus = "completed"
	ExecFailed    ExecutionStatus = "failed"
	ExecCancelled ExecutionStatus = "cancelled"
)

// Terminal reports whether the status admits no further transitions.
func (s ExecutionStatus) Terminal() bool {
	return s == ExecCompleted || s == ExecFailed || s == ExecCancelled
}

// KeyLastResponse is the well-known execution data key that always holds
// the most recent collected input, for the convenience of downstream
// conditional nodes.
const KeyLastResponse = "last_response"

// KeyPhoneNumber holds the callee number a run was started with. Call and
// start nodes without an explicit number fall back to it.
const KeyPhoneNumber = "phone_number"

// Execution is one runtime instance of a workflow traversal. It is owned
// exclusively by the engine goroutine running it; readers see snapshots
// through the execution store.
type Execution struct {
	ID          string            `json:"id"`
	WorkflowID  string            `json:"workflowId"`
	Status      ExecutionStatus   `json:"status"`
	CurrentNode string            `json:"currentNode,omitempty"`
	Data        map[string]string `json:"data,omitempty"`
	Log         []LogEntry        `json:"log"`
	ErrorKind   ErrorKind         `json:"errorKind,omitempty"`
	StartedAt   time.Time         `json:"startedAt"`
	FinishedAt  *time.Time        `json:"finishedAt,omitempty"`
}

// NewExecution creates a pending execution for the given workflow.
func NewExecution(id, workflowID string, now time.Time) *Execution {
	return &Execution{
		ID:         id,
		WorkflowID: workflowID,
		Status:     ExecPending,
		Data:       make(map[string]string),
		StartedAt:  now,
	}
}

// Clone returns a deep copy, safe to hand to readers while the engine keeps
// mutating the original.
func (e *Execution) Clone() *Execution {
	if e == nil {
		return nil
	}
	cp := *e
	cp.Data = make(map[string]string, len(e.Data))
	for k, v := range e.Data {
		cp.Data[k] = v
	}
	cp.Log = make([]LogEntry, len(e.Log))
	copy(cp.Log, e.Log)
	if e.FinishedAt != nil {
		t := *e.FinishedAt
		cp.FinishedAt = &t
	}
	return &cp
}
