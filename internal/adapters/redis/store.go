// Package redis implements the persistence ports on Redis, for deployments
// where multiple API instances share workflows and execution snapshots.
package redis

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	backend "github.com/redis/go-redis/v9"

	"github.com/callweave/callweave/pkg/domain"
)

// Store implements ports.WorkflowStore and ports.ExecutionStore.
type Store struct {
	client *backend.Client
	prefix string
	ttl    time.Duration
}

// Option configures the Store.
type Option func(*Store)

// WithTTL sets the expiration applied to execution snapshots. Workflows
// never expire.
func WithTTL(ttl time.Duration) Option {
	return func(s *Store) {
		s.ttl = ttl
	}
}

// WithPrefix overrides the key prefix.
func WithPrefix(prefix string) Option {
	return func(s *Store) {
		s.prefix = prefix
	}
}

// New creates a Store connected to the given address.
func New(address, password string, db int, opts ...Option) *Store {
	client := backend.NewClient(&backend.Options{
		Addr:     address,
		Password: password,
		DB:       db,
	})
	return NewFromClient(client, opts...)
}

// NewFromClient creates a Store from an existing client.
func NewFromClient(client *backend.Client, opts ...Option) *Store {
	s := &Store{
		client: client,
		prefix: "callweave:",
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *Store) workflowKey(id string) string  { return s.prefix + "workflow:" + id }
func (s *Store) executionKey(id string) string { return s.prefix + "execution:" + id }
func (s *Store) workflowIndex() string         { return s.prefix + "workflow:index" }

// SaveWorkflow persists the workflow and registers it in the index set used
// by ListWorkflows.
func (s *Store) SaveWorkflow(ctx context.Context, wf *domain.Workflow) error {
	data, err := json.Marshal(wf)
	if err != nil {
		return fmt.Errorf("failed to marshal workflow: %w", err)
	}

	pipe := s.client.Pipeline()
	pipe.Set(ctx, s.workflowKey(wf.ID), data, 0)
	pipe.SAdd(ctx, s.workflowIndex(), wf.ID)
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("failed to save workflow to redis: %w", err)
	}
	return nil
}

// GetWorkflow loads a workflow by ID.
func (s *Store) GetWorkflow(ctx context.Context, id string) (*domain.Workflow, error) {
	val, err := s.client.Get(ctx, s.workflowKey(id)).Result()
	if err != nil {
		if err == backend.Nil {
			return nil, domain.ErrWorkflowNotFound
		}
		return nil, fmt.Errorf("failed to load workflow from redis: %w", err)
	}

	var wf domain.Workflow
	if err := json.Unmarshal([]byte(val), &wf); err != nil {
		return nil, fmt.Errorf("failed to unmarshal workflow %q: %w", id, err)
	}
	return &wf, nil
}

// ListWorkflows loads every workflow registered in the index. Index entries
// whose key has vanished are skipped silently.
func (s *Store) ListWorkflows(ctx context.Context) ([]*domain.Workflow, error) {
	ids, err := s.client.SMembers(ctx, s.workflowIndex()).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to list workflow index: %w", err)
	}

	out := make([]*domain.Workflow, 0, len(ids))
	for _, id := range ids {
		wf, err := s.GetWorkflow(ctx, id)
		if err == domain.ErrWorkflowNotFound {
			continue
		}
		if err != nil {
			return nil, err
		}
		out = append(out, wf)
	}
	return out, nil
}

// DeleteWorkflow removes the workflow and its index entry.
func (s *Store) DeleteWorkflow(ctx context.Context, id string) error {
	n, err := s.client.Del(ctx, s.workflowKey(id)).Result()
	if err != nil {
		return fmt.Errorf("failed to delete workflow from redis: %w", err)
	}
	if n == 0 {
		return domain.ErrWorkflowNotFound
	}
	if err := s.client.SRem(ctx, s.workflowIndex(), id).Err(); err != nil {
		return fmt.Errorf("failed to unindex workflow: %w", err)
	}
	return nil
}

// SaveExecution persists an execution snapshot, with TTL when configured.
func (s *Store) SaveExecution(ctx context.Context, exec *domain.Execution) error {
	data, err := json.Marshal(exec)
	if err != nil {
		return fmt.Errorf("failed to marshal execution: %w", err)
	}
	if err := s.client.Set(ctx, s.executionKey(exec.ID), data, s.ttl).Err(); err != nil {
		return fmt.Errorf("failed to save execution to redis: %w", err)
	}
	return nil
}

// GetExecution loads an execution snapshot by ID.
func (s *Store) GetExecution(ctx context.Context, id string) (*domain.Execution, error) {
	val, err := s.client.Get(ctx, s.executionKey(id)).Result()
	if err != nil {
		if err == backend.Nil {
			return nil, domain.ErrExecutionNotFound
		}
		return nil, fmt.Errorf("failed to load execution from redis: %w", err)
	}

	var exec domain.Execution
	if err := json.Unmarshal([]byte(val), &exec); err != nil {
		return nil, fmt.Errorf("failed to unmarshal execution %q: %w", id, err)
	}
	return &exec, nil
}
