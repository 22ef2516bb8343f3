// Package http exposes the engine as a JSON API: workflow CRUD, execution
// submission, execution status, and cancellation.
package http

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/callweave/callweave/internal/logging"
	"github.com/callweave/callweave/internal/runtime"
	"github.com/callweave/callweave/pkg/domain"
)

// Service is the slice of the callweave engine the HTTP layer needs.
type Service interface {
	Validate(wf *domain.Workflow) []domain.StructuralError
	SaveWorkflow(ctx context.Context, wf *domain.Workflow) error
	Workflow(ctx context.Context, id string) (*domain.Workflow, error)
	Workflows(ctx context.Context) ([]*domain.Workflow, error)
	DeleteWorkflow(ctx context.Context, id string) error
	Start(ctx context.Context, wf *domain.Workflow, opts ...runtime.ExecOption) (string, error)
	Execution(ctx context.Context, id string) (*domain.Execution, error)
	Cancel(ctx context.Context, id string) error
}

// Server handles the HTTP API.
type Server struct {
	service Service
	logger  *slog.Logger
	version string
}

// Option configures the Server.
type Option func(*Server)

// WithLogger sets the request logger.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Server) {
		s.logger = logger
	}
}

// WithVersion sets the version string reported by /health.
func WithVersion(v string) Option {
	return func(s *Server) {
		s.version = v
	}
}

// NewHandler builds the chi router for the API.
func NewHandler(service Service, opts ...Option) http.Handler {
	s := &Server{
		service: service,
		logger:  logging.NewNop(),
	}
	for _, opt := range opts {
		opt(s)
	}

	r := chi.NewRouter()
	r.Get("/health", s.health)
	r.Route("/workflows", func(r chi.Router) {
		r.Post("/", s.saveWorkflow)
		r.Get("/", s.listWorkflows)
		r.Post("/execute", s.executeWorkflow)
		r.Get("/{id}", s.getWorkflow)
		r.Delete("/{id}", s.deleteWorkflow)
	})
	r.Route("/executions", func(r chi.Router) {
		r.Get("/{id}", s.getExecution)
		r.Post("/{id}/cancel", s.cancelExecution)
	})
	return r
}

// errorKind classifies API failures for callers, mirroring the engine's
// error taxonomy.
type errorKind string

const (
	errValidation errorKind = "validation"
	errSave       errorKind = "save"
	errExecute    errorKind = "execute"
	errConnection errorKind = "connection"
)

type apiError struct {
	Type    errorKind                `json:"type"`
	Message string                   `json:"message"`
	Details []domain.StructuralError `json:"details,omitempty"`
}

type errorResponse struct {
	Error apiError `json:"error"`
}

// executeRequest is the submission format: the caller sends either a stored
// workflow ID or inline workflow data, plus an optional callee number.
type executeRequest struct {
	WorkflowID   string           `json:"workflowId,omitempty"`
	WorkflowData *domain.Workflow `json:"workflowData,omitempty"`
	PhoneNumber  string           `json:"phoneNumber,omitempty"`
}

func (s *Server) health(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, http.StatusOK, map[string]any{
		"status":  "healthy",
		"version": s.version,
	})
}

func (s *Server) saveWorkflow(w http.ResponseWriter, r *http.Request) {
	var wf domain.Workflow
	if err := json.NewDecoder(r.Body).Decode(&wf); err != nil {
		s.writeError(w, http.StatusBadRequest, errValidation, "invalid workflow JSON", nil)
		return
	}

	if errs := s.service.Validate(&wf); len(errs) > 0 {
		s.writeError(w, http.StatusBadRequest, errValidation, "workflow failed validation", errs)
		return
	}

	if err := s.service.SaveWorkflow(r.Context(), &wf); err != nil {
		s.logger.Error("workflow save failed", "workflow", wf.ID, "err", err)
		s.writeError(w, http.StatusInternalServerError, errSave, "failed to save workflow", nil)
		return
	}

	s.writeJSON(w, http.StatusOK, map[string]any{
		"message":    "workflow saved",
		"workflowId": wf.ID,
	})
}

func (s *Server) listWorkflows(w http.ResponseWriter, r *http.Request) {
	wfs, err := s.service.Workflows(r.Context())
	if err != nil {
		s.logger.Error("workflow list failed", "err", err)
		s.writeError(w, http.StatusInternalServerError, errSave, "failed to list workflows", nil)
		return
	}
	s.writeJSON(w, http.StatusOK, wfs)
}

func (s *Server) getWorkflow(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	wf, err := s.service.Workflow(r.Context(), id)
	if err != nil {
		if errors.Is(err, domain.ErrWorkflowNotFound) {
			s.writeError(w, http.StatusNotFound, errSave, "workflow not found", nil)
			return
		}
		s.logger.Error("workflow load failed", "workflow", id, "err", err)
		s.writeError(w, http.StatusInternalServerError, errSave, "failed to load workflow", nil)
		return
	}
	s.writeJSON(w, http.StatusOK, wf)
}

func (s *Server) deleteWorkflow(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if err := s.service.DeleteWorkflow(r.Context(), id); err != nil {
		if errors.Is(err, domain.ErrWorkflowNotFound) {
			s.writeError(w, http.StatusNotFound, errSave, "workflow not found", nil)
			return
		}
		s.logger.Error("workflow delete failed", "workflow", id, "err", err)
		s.writeError(w, http.StatusInternalServerError, errSave, "failed to delete workflow", nil)
		return
	}
	s.writeJSON(w, http.StatusOK, map[string]any{"message": "workflow deleted", "workflowId": id})
}

func (s *Server) executeWorkflow(w http.ResponseWriter, r *http.Request) {
	var req executeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.writeError(w, http.StatusBadRequest, errValidation, "invalid request body", nil)
		return
	}

	wf := req.WorkflowData
	if wf == nil {
		if req.WorkflowID == "" {
			s.writeError(w, http.StatusBadRequest, errValidation, "workflowId or workflowData is required", nil)
			return
		}
		stored, err := s.service.Workflow(r.Context(), req.WorkflowID)
		if err != nil {
			if errors.Is(err, domain.ErrWorkflowNotFound) {
				s.writeError(w, http.StatusNotFound, errSave, "workflow not found", nil)
				return
			}
			s.logger.Error("workflow load failed", "workflow", req.WorkflowID, "err", err)
			s.writeError(w, http.StatusInternalServerError, errSave, "failed to load workflow", nil)
			return
		}
		wf = stored
	}

	var opts []runtime.ExecOption
	if req.PhoneNumber != "" {
		opts = append(opts, runtime.WithInitialData(map[string]string{
			domain.KeyPhoneNumber: domain.NormalizePhoneNumber(req.PhoneNumber),
		}))
	}

	// Start is asynchronous: the caller polls /executions/{id} for progress.
	// The run context must outlive this request.
	id, err := s.service.Start(context.WithoutCancel(r.Context()), wf, opts...)
	if err != nil {
		var vErr *domain.ValidationError
		if errors.As(err, &vErr) {
			s.writeError(w, http.StatusBadRequest, errValidation, "workflow failed validation", vErr.Errors)
			return
		}
		if errors.Is(err, domain.ErrAdapterUnavailable) {
			s.writeError(w, http.StatusBadGateway, errConnection, "telephony backend unreachable", nil)
			return
		}
		s.logger.Error("execution start failed", "workflow", wf.ID, "err", err)
		s.writeError(w, http.StatusInternalServerError, errExecute, "failed to start execution", nil)
		return
	}

	s.writeJSON(w, http.StatusAccepted, map[string]any{
		"executionId": id,
		"status":      string(domain.ExecRunning),
	})
}

func (s *Server) getExecution(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	exec, err := s.service.Execution(r.Context(), id)
	if err != nil {
		if errors.Is(err, domain.ErrExecutionNotFound) {
			s.writeError(w, http.StatusNotFound, errExecute, "execution not found", nil)
			return
		}
		s.logger.Error("execution load failed", "execution", id, "err", err)
		s.writeError(w, http.StatusInternalServerError, errExecute, "failed to load execution", nil)
		return
	}
	s.writeJSON(w, http.StatusOK, exec)
}

func (s *Server) cancelExecution(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if err := s.service.Cancel(r.Context(), id); err != nil {
		if errors.Is(err, domain.ErrExecutionNotFound) {
			s.writeError(w, http.StatusNotFound, errExecute, "execution not found", nil)
			return
		}
		s.logger.Error("execution cancel failed", "execution", id, "err", err)
		s.writeError(w, http.StatusInternalServerError, errExecute, "failed to cancel execution", nil)
		return
	}
	s.writeJSON(w, http.StatusOK, map[string]any{"message": "cancellation requested", "executionId": id})
}

func (s *Server) writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(body); err != nil {
		s.logger.Error("response encode failed", "err", err)
	}
}

func (s *Server) writeError(w http.ResponseWriter, status int, kind errorKind, message string, details []domain.StructuralError) {
	s.writeJSON(w, status, errorResponse{Error: apiError{
		Type:    kind,
		Message: message,
		Details: details,
	}})
}
