// Package mcp exposes the engine to MCP clients so that agent tooling can
// validate workflows, launch executions, and inspect their logs.
package mcp

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/callweave/callweave/internal/runtime"
	"github.com/callweave/callweave/pkg/domain"
)

// Engine is the slice of the callweave engine the MCP tools need.
type Engine interface {
	Validate(wf *domain.Workflow) []domain.StructuralError
	Workflow(ctx context.Context, id string) (*domain.Workflow, error)
	Workflows(ctx context.Context) ([]*domain.Workflow, error)
	Start(ctx context.Context, wf *domain.Workflow, opts ...runtime.ExecOption) (string, error)
	Execution(ctx context.Context, id string) (*domain.Execution, error)
	Cancel(ctx context.Context, id string) error
}

// Server wraps the engine and exposes it as an MCP server.
type Server struct {
	engine    Engine
	mcpServer *server.MCPServer
}

// NewServer creates a new MCP server instance.
func NewServer(engine Engine, version string) *Server {
	s := &Server{
		engine:    engine,
		mcpServer: server.NewMCPServer("callweave-mcp", strings.TrimSpace(version)),
	}
	s.registerTools()
	return s
}

// ServeStdio starts the server on Stdin/Stdout.
func (s *Server) ServeStdio() error {
	return server.ServeStdio(s.mcpServer)
}

func (s *Server) registerTools() {
	s.mcpServer.AddTool(mcp.NewTool("validate_workflow",
		mcp.WithDescription("Validate a call workflow definition and report structural errors."),
		mcp.WithString("workflow", mcp.Required(), mcp.Description("Workflow definition as JSON")),
	), s.handleValidate)

	s.mcpServer.AddTool(mcp.NewTool("execute_workflow",
		mcp.WithDescription("Start an asynchronous execution of a stored or inline workflow."),
		mcp.WithString("workflow_id", mcp.Description("ID of a stored workflow")),
		mcp.WithString("workflow", mcp.Description("Inline workflow definition as JSON (overrides workflow_id)")),
		mcp.WithString("phone_number", mcp.Description("Callee phone number")),
	), s.handleExecute)

	s.mcpServer.AddTool(mcp.NewTool("get_execution",
		mcp.WithDescription("Fetch the status, data, and log of an execution."),
		mcp.WithString("execution_id", mcp.Required(), mcp.Description("Execution ID")),
	), s.handleGetExecution)

	s.mcpServer.AddTool(mcp.NewTool("cancel_execution",
		mcp.WithDescription("Request cancellation of a running execution."),
		mcp.WithString("execution_id", mcp.Required(), mcp.Description("Execution ID")),
	), s.handleCancel)

	s.mcpServer.AddTool(mcp.NewTool("list_workflows",
		mcp.WithDescription("List all stored workflow definitions."),
	), s.handleList)
}

func (s *Server) handleValidate(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	raw, err := request.RequireString("workflow")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	var wf domain.Workflow
	if err := json.Unmarshal([]byte(raw), &wf); err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("invalid workflow JSON: %v", err)), nil
	}

	errs := s.engine.Validate(&wf)
	return jsonResult(map[string]any{
		"valid":  len(errs) == 0,
		"errors": errs,
	})
}

func (s *Server) handleExecute(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	var wf *domain.Workflow
	if raw := request.GetString("workflow", ""); raw != "" {
		wf = &domain.Workflow{}
		if err := json.Unmarshal([]byte(raw), wf); err != nil {
			return mcp.NewToolResultError(fmt.Sprintf("invalid workflow JSON: %v", err)), nil
		}
	} else if id := request.GetString("workflow_id", ""); id != "" {
		stored, err := s.engine.Workflow(ctx, id)
		if err != nil {
			return mcp.NewToolResultError(fmt.Sprintf("workflow load failed: %v", err)), nil
		}
		wf = stored
	} else {
		return mcp.NewToolResultError("workflow or workflow_id is required"), nil
	}

	var opts []runtime.ExecOption
	if phone := request.GetString("phone_number", ""); phone != "" {
		opts = append(opts, runtime.WithInitialData(map[string]string{
			domain.KeyPhoneNumber: domain.NormalizePhoneNumber(phone),
		}))
	}

	// The run must survive past this tool call.
	id, err := s.engine.Start(context.WithoutCancel(ctx), wf, opts...)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("execution start failed: %v", err)), nil
	}
	return jsonResult(map[string]any{"executionId": id})
}

func (s *Server) handleGetExecution(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	id, err := request.RequireString("execution_id")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	exec, err := s.engine.Execution(ctx, id)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("execution load failed: %v", err)), nil
	}
	return jsonResult(exec)
}

func (s *Server) handleCancel(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	id, err := request.RequireString("execution_id")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	if err := s.engine.Cancel(ctx, id); err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("cancel failed: %v", err)), nil
	}
	return jsonResult(map[string]any{"executionId": id, "cancelled": true})
}

func (s *Server) handleList(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	wfs, err := s.engine.Workflows(ctx)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("workflow list failed: %v", err)), nil
	}
	return jsonResult(wfs)
}

func jsonResult(v any) (*mcp.CallToolResult, error) {
	b, err := json.Marshal(v)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("marshal failed: %v", err)), nil
	}
	return mcp.NewToolResultText(string(b)), nil
}
