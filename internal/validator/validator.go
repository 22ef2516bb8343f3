// Package validator checks the structural invariants of a candidate
// workflow graph before the engine may run it.
//
// Validation never mutates its input and reports every violation at once so
// authors can fix all issues in a single pass. Cycles are structurally legal;
// the engine's step limit bounds them at execution time.
package validator

import (
	"github.com/callweave/callweave/pkg/domain"
)

// Validate returns all structural invariant violations in wf. A nil result
// means the workflow is safe to execute.
func Validate(wf *domain.Workflow) []domain.StructuralError {
	var errs []domain.StructuralError

	nodeIDs := make(map[string]domain.NodeKind, len(wf.Nodes))
	for _, n := range wf.Nodes {
		nodeIDs[n.ID] = n.Kind
	}

	// 1. Exactly one start node.
	var startID string
	startCount := 0
	for _, n := range wf.Nodes {
		if n.Kind == domain.NodeStart {
			startCount++
			if startCount == 1 {
				startID = n.ID
			} else {
				errs = append(errs, domain.StructuralError{Kind: domain.ErrMultipleStart, NodeID: n.ID})
			}
		}
	}
	if startCount == 0 {
		errs = append(errs, domain.StructuralError{Kind: domain.ErrMissingStart})
	}

	// 2. No dangling edges.
	for i := range wf.Edges {
		e := wf.Edges[i]
		if _, ok := nodeIDs[e.Source]; !ok {
			errs = append(errs, domain.StructuralError{Kind: domain.ErrDanglingEdge, Edge: &wf.Edges[i]})
			continue
		}
		if _, ok := nodeIDs[e.Target]; !ok {
			errs = append(errs, domain.StructuralError{Kind: domain.ErrDanglingEdge, Edge: &wf.Edges[i]})
		}
	}

	// 3. Outgoing edge shape per node kind.
	for _, n := range wf.Nodes {
		out := wf.Outgoing(n.ID)
		switch n.Kind {
		case domain.NodeConditional:
			errs = append(errs, checkBranches(n.ID, out)...)
		case domain.NodeEnd:
			// End nodes are sinks; any outgoing edge violates that.
			if len(out) > 0 {
				errs = append(errs, domain.StructuralError{Kind: domain.ErrMultipleOutgoingEdges, NodeID: n.ID})
			}
		default:
			if len(out) > 1 {
				errs = append(errs, domain.StructuralError{Kind: domain.ErrMultipleOutgoingEdges, NodeID: n.ID})
			}
		}
	}

	// 4. Reachability from the start node, following edges in both branch
	// directions. Skipped when there is no unambiguous start.
	if startCount == 1 {
		errs = append(errs, checkReachability(wf, startID, nodeIDs)...)
	}

	return errs
}

// checkBranches enforces exactly one true-tagged and one false-tagged
// outgoing edge on a conditional node.
func checkBranches(nodeID string, out []domain.Edge) []domain.StructuralError {
	var errs []domain.StructuralError
	counts := map[domain.Branch]int{}
	for _, e := range out {
		counts[e.Branch]++
	}
	for _, branch := range []domain.Branch{domain.BranchTrue, domain.BranchFalse} {
		switch {
		case counts[branch] == 0:
			errs = append(errs, domain.StructuralError{Kind: domain.ErrCondBranchMissing, NodeID: nodeID})
		case counts[branch] > 1:
			errs = append(errs, domain.StructuralError{Kind: domain.ErrCondBranchDuplicate, NodeID: nodeID})
		}
	}
	// Untagged or oddly-tagged extra edges on a conditional are still a
	// violation of the two-edge shape.
	if counts[""] > 0 {
		errs = append(errs, domain.StructuralError{Kind: domain.ErrMultipleOutgoingEdges, NodeID: nodeID})
	}
	return errs
}

// checkReachability crawls the graph from startID and flags every node the
// crawl never visits. Dangling targets are ignored here; rule 2 already
// reported them.
func checkReachability(wf *domain.Workflow, startID string, nodeIDs map[string]domain.NodeKind) []domain.StructuralError {
	visited := map[string]bool{}
	queue := []string{startID}
	for len(queue) > 0 {
		current := queue[0]
		queue = queue[1:]
		if visited[current] {
			continue
		}
		visited[current] = true

		for _, e := range wf.Outgoing(current) {
			if _, exists := nodeIDs[e.Target]; !exists {
				continue
			}
			if !visited[e.Target] {
				queue = append(queue, e.Target)
			}
		}
	}

	var errs []domain.StructuralError
	for _, n := range wf.Nodes {
		if !visited[n.ID] {
			errs = append(errs, domain.StructuralError{Kind: domain.ErrUnreachableNode, NodeID: n.ID})
		}
	}
	return errs
}
