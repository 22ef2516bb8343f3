// Package domain contains the core value types of the call-flow graph:
// nodes, edges, workflows, executions and their audit log.
//
// Everything in this package is plain data. A Workflow is authored
// externally (typically by a visual editor) and handed to the engine as a
// value; once an execution references it, it must be treated as immutable.
package domain
