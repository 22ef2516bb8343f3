package validator_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/callweave/callweave/internal/validator"
	"github.com/callweave/callweave/pkg/domain"
)

func node(id string, kind domain.NodeKind) domain.Node {
	return domain.Node{ID: id, Kind: kind}
}

func edge(source, target string) domain.Edge {
	return domain.Edge{Source: source, Target: target}
}

func branchEdge(source, target string, branch domain.Branch) domain.Edge {
	return domain.Edge{Source: source, Target: target, Branch: branch}
}

func kinds(errs []domain.StructuralError) []domain.StructuralErrorKind {
	out := make([]domain.StructuralErrorKind, len(errs))
	for i, e := range errs {
		out[i] = e.Kind
	}
	return out
}

func TestValidateAcceptsLinearWorkflow(t *testing.T) {
	wf := &domain.Workflow{
		ID: "wf",
		Nodes: []domain.Node{
			node("start", domain.NodeStart),
			node("call", domain.NodeCall),
			node("end", domain.NodeEnd),
		},
		Edges: []domain.Edge{
			edge("start", "call"),
			edge("call", "end"),
		},
	}

	assert.Empty(t, validator.Validate(wf))
}

func TestValidateAcceptsCycles(t *testing.T) {
	// A retry loop is structurally legal; the step limit bounds it at
	// execution time.
	wf := &domain.Workflow{
		ID: "wf",
		Nodes: []domain.Node{
			node("start", domain.NodeStart),
			node("input", domain.NodeInput),
			node("check", domain.NodeConditional),
			node("end", domain.NodeEnd),
		},
		Edges: []domain.Edge{
			edge("start", "input"),
			edge("input", "check"),
			branchEdge("check", "end", domain.BranchTrue),
			branchEdge("check", "input", domain.BranchFalse),
		},
	}

	assert.Empty(t, validator.Validate(wf))
}

func TestValidateMissingStart(t *testing.T) {
	wf := &domain.Workflow{
		ID:    "wf",
		Nodes: []domain.Node{node("end", domain.NodeEnd)},
	}

	errs := validator.Validate(wf)
	assert.Contains(t, kinds(errs), domain.ErrMissingStart)
}

func TestValidateMultipleStart(t *testing.T) {
	wf := &domain.Workflow{
		ID: "wf",
		Nodes: []domain.Node{
			node("s1", domain.NodeStart),
			node("s2", domain.NodeStart),
		},
	}

	errs := validator.Validate(wf)
	require.Len(t, errs, 1)
	assert.Equal(t, domain.ErrMultipleStart, errs[0].Kind)
	assert.Equal(t, "s2", errs[0].NodeID)
}

func TestValidateDanglingEdge(t *testing.T) {
	wf := &domain.Workflow{
		ID: "wf",
		Nodes: []domain.Node{
			node("start", domain.NodeStart),
		},
		Edges: []domain.Edge{edge("start", "ghost")},
	}

	errs := validator.Validate(wf)
	require.Len(t, errs, 1)
	assert.Equal(t, domain.ErrDanglingEdge, errs[0].Kind)
	require.NotNil(t, errs[0].Edge)
	assert.Equal(t, "ghost", errs[0].Edge.Target)
}

func TestValidateUnreachableNode(t *testing.T) {
	wf := &domain.Workflow{
		ID: "wf",
		Nodes: []domain.Node{
			node("start", domain.NodeStart),
			node("end", domain.NodeEnd),
			node("orphan", domain.NodeMessage),
		},
		Edges: []domain.Edge{edge("start", "end")},
	}

	errs := validator.Validate(wf)
	require.Len(t, errs, 1)
	assert.Equal(t, domain.ErrUnreachableNode, errs[0].Kind)
	assert.Equal(t, "orphan", errs[0].NodeID)
}

func TestValidateConditionalBranches(t *testing.T) {
	base := func(edges ...domain.Edge) *domain.Workflow {
		return &domain.Workflow{
			ID: "wf",
			Nodes: []domain.Node{
				node("start", domain.NodeStart),
				node("check", domain.NodeConditional),
				node("a", domain.NodeEnd),
				node("b", domain.NodeEnd),
			},
			Edges: append([]domain.Edge{edge("start", "check")}, edges...),
		}
	}

	t.Run("missing false branch", func(t *testing.T) {
		wf := base(branchEdge("check", "a", domain.BranchTrue))
		errs := validator.Validate(wf)
		assert.Contains(t, kinds(errs), domain.ErrCondBranchMissing)
	})

	t.Run("duplicate true branch", func(t *testing.T) {
		wf := base(
			branchEdge("check", "a", domain.BranchTrue),
			branchEdge("check", "b", domain.BranchTrue),
			branchEdge("check", "b", domain.BranchFalse),
		)
		errs := validator.Validate(wf)
		assert.Contains(t, kinds(errs), domain.ErrCondBranchDuplicate)
	})

	t.Run("untagged extra edge", func(t *testing.T) {
		wf := base(
			branchEdge("check", "a", domain.BranchTrue),
			branchEdge("check", "b", domain.BranchFalse),
			edge("check", "a"),
		)
		errs := validator.Validate(wf)
		assert.Contains(t, kinds(errs), domain.ErrMultipleOutgoingEdges)
	})
}

func TestValidateEndNodeIsSink(t *testing.T) {
	wf := &domain.Workflow{
		ID: "wf",
		Nodes: []domain.Node{
			node("start", domain.NodeStart),
			node("end", domain.NodeEnd),
		},
		Edges: []domain.Edge{
			edge("start", "end"),
			edge("end", "start"),
		},
	}

	errs := validator.Validate(wf)
	require.Len(t, errs, 1)
	assert.Equal(t, domain.ErrMultipleOutgoingEdges, errs[0].Kind)
	assert.Equal(t, "end", errs[0].NodeID)
}

func TestValidateMultipleOutgoingOnLinearNode(t *testing.T) {
	wf := &domain.Workflow{
		ID: "wf",
		Nodes: []domain.Node{
			node("start", domain.NodeStart),
			node("a", domain.NodeEnd),
			node("b", domain.NodeEnd),
		},
		Edges: []domain.Edge{
			edge("start", "a"),
			edge("start", "b"),
		},
	}

	errs := validator.Validate(wf)
	require.Len(t, errs, 1)
	assert.Equal(t, domain.ErrMultipleOutgoingEdges, errs[0].Kind)
	assert.Equal(t, "start", errs[0].NodeID)
}

func TestValidateReportsAllViolationsAtOnce(t *testing.T) {
	wf := &domain.Workflow{
		ID: "wf",
		Nodes: []domain.Node{
			node("call", domain.NodeCall),
			node("orphan", domain.NodeMessage),
		},
		Edges: []domain.Edge{edge("call", "ghost")},
	}

	errs := validator.Validate(wf)
	got := kinds(errs)
	assert.Contains(t, got, domain.ErrMissingStart)
	assert.Contains(t, got, domain.ErrDanglingEdge)
}
