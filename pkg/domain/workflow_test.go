package domain_test

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/callweave/callweave/pkg/domain"
)

const sampleWorkflowJSON = `{
	"id": "wf-reminder",
	"name": "Appointment Reminder",
	"nodes": [
		{"id": "n1", "type": "start"},
		{"id": "n2", "type": "call", "config": {"prompt": "Hi"}},
		{"id": "n3", "type": "conditional", "config": {"comparison": "contains", "source": "last_response", "value": "yes"}},
		{"id": "n4", "type": "end", "config": {"reason": "confirmed"}},
		{"id": "n5", "type": "end", "config": {"reason": "declined"}}
	],
	"edges": [
		{"source": "n1", "target": "n2"},
		{"source": "n2", "target": "n3"},
		{"source": "n3", "target": "n4", "branch": "true"},
		{"source": "n3", "target": "n5", "branch": "false"}
	]
}`

func TestWorkflowJSONDecode(t *testing.T) {
	var wf domain.Workflow
	require.NoError(t, json.Unmarshal([]byte(sampleWorkflowJSON), &wf))

	assert.Equal(t, "wf-reminder", wf.ID)
	assert.Len(t, wf.Nodes, 5)
	assert.Len(t, wf.Edges, 4)

	call, ok := wf.FindNode("n2")
	require.True(t, ok)
	assert.Equal(t, domain.NodeCall, call.Kind)

	_, ok = wf.FindNode("missing")
	assert.False(t, ok)
}

func TestWorkflowJSONRoundTrip(t *testing.T) {
	var wf domain.Workflow
	require.NoError(t, json.Unmarshal([]byte(sampleWorkflowJSON), &wf))

	encoded, err := json.Marshal(&wf)
	require.NoError(t, err)

	var again domain.Workflow
	require.NoError(t, json.Unmarshal(encoded, &again))
	assert.Equal(t, wf.Nodes, again.Nodes)
	assert.Equal(t, wf.Edges, again.Edges)
	assert.Equal(t, wf.ID, again.ID)
	assert.Equal(t, wf.Name, again.Name)
}

func TestWorkflowStartNode(t *testing.T) {
	var wf domain.Workflow
	require.NoError(t, json.Unmarshal([]byte(sampleWorkflowJSON), &wf))

	start, ok := wf.StartNode()
	require.True(t, ok)
	assert.Equal(t, "n1", start.ID)

	wf.Nodes = append(wf.Nodes, domain.Node{ID: "n6", Kind: domain.NodeStart})
	_, ok = wf.StartNode()
	assert.False(t, ok, "two start nodes must be ambiguous")
}

func TestWorkflowBranchTarget(t *testing.T) {
	var wf domain.Workflow
	require.NoError(t, json.Unmarshal([]byte(sampleWorkflowJSON), &wf))

	assert.Equal(t, "n4", wf.BranchTarget("n3", domain.BranchTrue))
	assert.Equal(t, "n5", wf.BranchTarget("n3", domain.BranchFalse))
	assert.Empty(t, wf.BranchTarget("n2", domain.BranchTrue))
}

func TestExecutionClone(t *testing.T) {
	now := time.Now()
	exec := domain.NewExecution("e1", "wf1", now)
	exec.Data["k"] = "v"
	exec.Log = append(exec.Log, domain.LogEntry{Event: domain.EventNodeEntered, NodeID: "n1"})

	cp := exec.Clone()
	cp.Data["k"] = "changed"
	cp.Log = append(cp.Log, domain.LogEntry{Event: domain.EventCancelled})

	assert.Equal(t, "v", exec.Data["k"])
	assert.Len(t, exec.Log, 1)
}

func TestExecutionStatusTerminal(t *testing.T) {
	assert.False(t, domain.ExecPending.Terminal())
	assert.False(t, domain.ExecRunning.Terminal())
	assert.False(t, domain.ExecSuspended.Terminal())
	assert.True(t, domain.ExecCompleted.Terminal())
	assert.True(t, domain.ExecFailed.Terminal())
	assert.True(t, domain.ExecCancelled.Terminal())
}
