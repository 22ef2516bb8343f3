package http_test

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/callweave/callweave"
	httpAdapter "github.com/callweave/callweave/internal/adapters/http"
	"github.com/callweave/callweave/internal/adapters/sim"
	"github.com/callweave/callweave/pkg/domain"
)

const validWorkflowJSON = `{
	"id": "wf-1",
	"name": "Reminder",
	"nodes": [
		{"id": "start", "type": "start"},
		{"id": "call", "type": "call", "config": {"phoneNumber": "555-0100", "prompt": "Hi"}},
		{"id": "end", "type": "end"}
	],
	"edges": [
		{"source": "start", "target": "call"},
		{"source": "call", "target": "end"}
	]
}`

func newTestServer(t *testing.T) *httptest.Server {
	t.Helper()
	eng := callweave.New(sim.New())
	srv := httptest.NewServer(httpAdapter.NewHandler(eng, httpAdapter.WithVersion("test")))
	t.Cleanup(srv.Close)
	return srv
}

func decodeBody(t *testing.T, resp *http.Response, dst any) {
	t.Helper()
	defer resp.Body.Close()
	require.NoError(t, json.NewDecoder(resp.Body).Decode(dst))
}

func post(t *testing.T, url, body string) *http.Response {
	t.Helper()
	resp, err := http.Post(url, "application/json", bytes.NewBufferString(body))
	require.NoError(t, err)
	return resp
}

func TestHealth(t *testing.T) {
	srv := newTestServer(t)

	resp, err := http.Get(srv.URL + "/health")
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	var body map[string]string
	decodeBody(t, resp, &body)
	assert.Equal(t, "healthy", body["status"])
	assert.Equal(t, "test", body["version"])
}

func TestSaveAndGetWorkflow(t *testing.T) {
	srv := newTestServer(t)

	resp := post(t, srv.URL+"/workflows", validWorkflowJSON)
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	var saved map[string]string
	decodeBody(t, resp, &saved)
	assert.Equal(t, "wf-1", saved["workflowId"])

	resp, err := http.Get(srv.URL + "/workflows/wf-1")
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	var wf domain.Workflow
	decodeBody(t, resp, &wf)
	assert.Equal(t, "Reminder", wf.Name)
	assert.Len(t, wf.Nodes, 3)
}

func TestSaveWorkflowRejectsInvalid(t *testing.T) {
	srv := newTestServer(t)

	resp := post(t, srv.URL+"/workflows", `{"id": "bad", "nodes": [{"id": "end", "type": "end"}]}`)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

	var body struct {
		Error struct {
			Type    string                   `json:"type"`
			Details []domain.StructuralError `json:"details"`
		} `json:"error"`
	}
	decodeBody(t, resp, &body)
	assert.Equal(t, "validation", body.Error.Type)
	require.NotEmpty(t, body.Error.Details)
	assert.Equal(t, domain.ErrMissingStart, body.Error.Details[0].Kind)
}

func TestGetWorkflowNotFound(t *testing.T) {
	srv := newTestServer(t)

	resp, err := http.Get(srv.URL + "/workflows/missing")
	require.NoError(t, err)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestDeleteWorkflow(t *testing.T) {
	srv := newTestServer(t)

	post(t, srv.URL+"/workflows", validWorkflowJSON)

	req, err := http.NewRequest(http.MethodDelete, srv.URL+"/workflows/wf-1", nil)
	require.NoError(t, err)
	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	resp, err = http.Get(srv.URL + "/workflows/wf-1")
	require.NoError(t, err)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestExecuteStoredWorkflow(t *testing.T) {
	srv := newTestServer(t)

	post(t, srv.URL+"/workflows", validWorkflowJSON)

	resp := post(t, srv.URL+"/workflows/execute", `{"workflowId": "wf-1", "phoneNumber": "555-010-9999"}`)
	require.Equal(t, http.StatusAccepted, resp.StatusCode)

	var started map[string]string
	decodeBody(t, resp, &started)
	execID := started["executionId"]
	require.NotEmpty(t, execID)

	waitForTerminal(t, srv, execID)
}

func TestExecuteInlineWorkflow(t *testing.T) {
	srv := newTestServer(t)

	resp := post(t, srv.URL+"/workflows/execute",
		fmt.Sprintf(`{"workflowData": %s}`, validWorkflowJSON))
	require.Equal(t, http.StatusAccepted, resp.StatusCode)

	var started map[string]string
	decodeBody(t, resp, &started)

	exec := waitForTerminal(t, srv, started["executionId"])
	assert.Equal(t, domain.ExecCompleted, exec.Status)
	assert.NotEmpty(t, exec.Log)
}

func TestExecuteRejectsInvalidWorkflow(t *testing.T) {
	srv := newTestServer(t)

	resp := post(t, srv.URL+"/workflows/execute",
		`{"workflowData": {"id": "bad", "nodes": [{"id": "end", "type": "end"}]}}`)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestExecuteRequiresWorkflow(t *testing.T) {
	srv := newTestServer(t)

	resp := post(t, srv.URL+"/workflows/execute", `{"phoneNumber": "555-0100"}`)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestGetExecutionNotFound(t *testing.T) {
	srv := newTestServer(t)

	resp, err := http.Get(srv.URL + "/executions/missing")
	require.NoError(t, err)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)

	var body struct {
		Error struct {
			Type string `json:"type"`
		} `json:"error"`
	}
	decodeBody(t, resp, &body)
	assert.Equal(t, "execute", body.Error.Type)
}

func TestCancelUnknownExecution(t *testing.T) {
	srv := newTestServer(t)

	resp := post(t, srv.URL+"/executions/missing/cancel", "")
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestCancelFinishedExecutionIsNoOp(t *testing.T) {
	srv := newTestServer(t)

	resp := post(t, srv.URL+"/workflows/execute",
		fmt.Sprintf(`{"workflowData": %s}`, validWorkflowJSON))
	require.Equal(t, http.StatusAccepted, resp.StatusCode)

	var started map[string]string
	decodeBody(t, resp, &started)
	waitForTerminal(t, srv, started["executionId"])

	resp = post(t, srv.URL+"/executions/"+started["executionId"]+"/cancel", "")
	assert.Equal(t, http.StatusOK, resp.StatusCode)
}

func waitForTerminal(t *testing.T, srv *httptest.Server, execID string) *domain.Execution {
	t.Helper()
	var exec domain.Execution
	require.Eventually(t, func() bool {
		resp, err := http.Get(srv.URL + "/executions/" + execID)
		if err != nil || resp.StatusCode != http.StatusOK {
			return false
		}
		decodeBody(t, resp, &exec)
		return exec.Status.Terminal()
	}, 5*time.Second, 10*time.Millisecond)
	return &exec
}
