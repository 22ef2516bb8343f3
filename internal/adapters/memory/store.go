// Package memory provides in-process implementations of the persistence
// ports, used by the CLI, tests, and single-node deployments.
package memory

import (
	"context"
	"sync"

	"github.com/callweave/callweave/pkg/domain"
)

// Store keeps workflows and executions in maps guarded by one RWMutex.
// Values are cloned on the way in and out so callers never share memory
// with the store.
type Store struct {
	mu         sync.RWMutex
	workflows  map[string]*domain.Workflow
	executions map[string]*domain.Execution
}

// New creates an empty Store.
func New() *Store {
	return &Store{
		workflows:  make(map[string]*domain.Workflow),
		executions: make(map[string]*domain.Execution),
	}
}

// SaveWorkflow stores a copy of wf, keyed by its ID.
func (s *Store) SaveWorkflow(ctx context.Context, wf *domain.Workflow) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.workflows[wf.ID] = cloneWorkflow(wf)
	return nil
}

// GetWorkflow returns a copy of the stored workflow.
func (s *Store) GetWorkflow(ctx context.Context, id string) (*domain.Workflow, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	wf, ok := s.workflows[id]
	if !ok {
		return nil, domain.ErrWorkflowNotFound
	}
	return cloneWorkflow(wf), nil
}

// ListWorkflows returns copies of all stored workflows, in no particular
// order.
func (s *Store) ListWorkflows(ctx context.Context) ([]*domain.Workflow, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]*domain.Workflow, 0, len(s.workflows))
	for _, wf := range s.workflows {
		out = append(out, cloneWorkflow(wf))
	}
	return out, nil
}

// DeleteWorkflow removes the workflow.
func (s *Store) DeleteWorkflow(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.workflows[id]; !ok {
		return domain.ErrWorkflowNotFound
	}
	delete(s.workflows, id)
	return nil
}

// SaveExecution stores a snapshot of exec.
func (s *Store) SaveExecution(ctx context.Context, exec *domain.Execution) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.executions[exec.ID] = exec.Clone()
	return nil
}

// GetExecution returns a copy of the stored execution snapshot.
func (s *Store) GetExecution(ctx context.Context, id string) (*domain.Execution, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	exec, ok := s.executions[id]
	if !ok {
		return nil, domain.ErrExecutionNotFound
	}
	return exec.Clone(), nil
}

func cloneWorkflow(wf *domain.Workflow) *domain.Workflow {
	cp := *wf
	cp.Nodes = make([]domain.Node, len(wf.Nodes))
	copy(cp.Nodes, wf.Nodes)
	for i, n := range cp.Nodes {
		if n.Config == nil {
			continue
		}
		cfg := make(map[string]any, len(n.Config))
		for k, v := range n.Config {
			cfg[k] = v
		}
		cp.Nodes[i].Config = cfg
	}
	cp.Edges = make([]domain.Edge, len(wf.Edges))
	copy(cp.Edges, wf.Edges)
	return &cp
}
