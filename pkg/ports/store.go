package ports

import (
	"context"

	"github.com/callweave/callweave/pkg/domain"
)

// WorkflowStore persists authored workflows.
// Implementations return domain.ErrWorkflowNotFound for unknown IDs.
type WorkflowStore interface {
	SaveWorkflow(ctx context.Context, wf *domain.Workflow) error
	GetWorkflow(ctx context.Context, id string) (*domain.Workflow, error)
	ListWorkflows(ctx context.Context) ([]*domain.Workflow, error)
	DeleteWorkflow(ctx context.Context, id string) error
}

// ExecutionStore persists execution snapshots. The engine checkpoints after
// every status transition so readers can observe progress mid-run.
// Implementations return domain.ErrExecutionNotFound for unknown IDs.
type ExecutionStore interface {
	SaveExecution(ctx context.Context, exec *domain.Execution) error
	GetExecution(ctx context.Context, id string) (*domain.Execution, error)
}
