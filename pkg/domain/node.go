package domain

// NodeKind discriminates the node union. The engine switches exhaustively on
// it; adding a kind is a closed-set, compile-time visible change.
type NodeKind string

const (
	// NodeStart is the unique entry point of a workflow.
	NodeStart NodeKind = "start"
	// NodeCall places an outbound call and speaks a prompt.
	NodeCall NodeKind = "call"
	// NodeMessage sends a message over SMS or a voice channel.
	NodeMessage NodeKind = "message"
	// NodeConditional evaluates a condition and branches true/false.
	NodeConditional NodeKind = "conditional"
	// NodeInput collects a response from the callee (speech or DTMF).
	NodeInput NodeKind = "input"
	// NodeDelay suspends the execution for a wall-clock interval.
	NodeDelay NodeKind = "delay"
	// NodeEnd terminates the execution.
	NodeEnd NodeKind = "end"
)

// Node is one vertex of the call-flow graph.
//
// Config carries the kind-specific fields in the loose shape the graph
// editor emits. The typed accessors on this type decode it into the
// matching config struct; the engine never reads Config directly.
type Node struct {
	ID     string         `json:"id" yaml:"id"`
	Kind   NodeKind       `json:"type" yaml:"type"`
	Label  string         `json:"label,omitempty" yaml:"label,omitempty"`
	Config map[string]any `json:"config,omitempty" yaml:"config,omitempty"`
}

// knownKinds is the closed set accepted by decoding and validation.
var knownKinds = map[NodeKind]bool{
	NodeStart:       true,
	NodeCall:        true,
	NodeMessage:     true,
	NodeConditional: true,
	NodeInput:       true,
	NodeDelay:       true,
	NodeEnd:         true,
}

// KnownKind reports whether k is one of the seven node kinds.
func KnownKind(k NodeKind) bool {
	return knownKinds[k]
}
