package domain

// Branch tags the outgoing edges of a conditional node.
type Branch string

const (
	BranchTrue  Branch = "true"
	BranchFalse Branch = "false"
)

// Edge connects two nodes. Branch is empty for all edges except the two
// outgoing edges of a conditional node.
type Edge struct {
	Source string `json:"source" yaml:"source"`
	Target string `json:"target" yaml:"target"`
	Branch Branch `json:"branch,omitempty" yaml:"branch,omitempty"`
}

// WorkflowStatus is the authoring lifecycle state of a workflow.
type WorkflowStatus string

const (
	WorkflowDraft     WorkflowStatus = "draft"
	WorkflowPublished WorkflowStatus = "published"
	WorkflowRunning   WorkflowStatus = "running"
	WorkflowCompleted WorkflowStatus = "completed"
	WorkflowFailed    WorkflowStatus = "failed"
)

// Workflow is the authored graph. Node order is irrelevant; IDs are unique.
type Workflow struct {
	ID     string         `json:"id" yaml:"id"`
	Name   string         `json:"name" yaml:"name"`
	Nodes  []Node         `json:"nodes" yaml:"nodes"`
	Edges  []Edge         `json:"edges" yaml:"edges"`
	Status WorkflowStatus `json:"status,omitempty" yaml:"status,omitempty"`
}

// FindNode returns the node with the given ID.
func (w *Workflow) FindNode(id string) (Node, bool) {
	for _, n := range w.Nodes {
		if n.ID == id {
			return n, true
		}
	}
	return Node{}, false
}

// StartNode returns the start node, if exactly one exists.
// The validator guarantees this for any workflow the engine accepts.
func (w *Workflow) StartNode() (Node, bool) {
	var found Node
	count := 0
	for _, n := range w.Nodes {
		if n.Kind == NodeStart {
			found = n
			count++
		}
	}
	if count != 1 {
		return Node{}, false
	}
	return found, true
}

// Outgoing returns all edges leaving the given node, in declaration order.
func (w *Workflow) Outgoing(nodeID string) []Edge {
	var out []Edge
	for _, e := range w.Edges {
		if e.Source == nodeID {
			out = append(out, e)
		}
	}
	return out
}

// BranchTarget returns the target of the outgoing edge tagged with the given
// branch, or "" if no such edge exists.
func (w *Workflow) BranchTarget(nodeID string, branch Branch) string {
	for _, e := range w.Edges {
		if e.Source == nodeID && e.Branch == branch {
			return e.Target
		}
	}
	return ""
}
