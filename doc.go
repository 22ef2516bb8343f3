/*
Package callweave is a call-workflow engine: it models automated telephony
interactions as a directed graph of typed nodes (start, call, message,
conditional, input, delay, end) and executes them against a pluggable
telephony backend, producing an auditable execution log.

A workflow is authored externally (typically by a visual editor) and handed
to the engine as a value. The engine validates its structure, then walks it
one node at a time: placing calls, sending messages, collecting input,
branching on conditions evaluated against collected data, and suspending on
delays. Cycles are legal; a per-execution step limit guarantees termination.

# Usage

	adapter := sim.New(sim.WithResponses("yes"))
	eng := callweave.New(adapter)

	var wf domain.Workflow
	// ... decode the workflow from JSON or YAML ...

	exec, err := eng.Execute(context.Background(), &wf)
	if err != nil {
		log.Fatal(err)
	}
	fmt.Println(exec.Status) // "completed"

Executions are independent: each one runs on its own goroutine with no
shared mutable state beyond the read-only workflow, so one execution's
suspension never stalls another. Use Start for asynchronous runs and Cancel
to stop one mid-flight.
*/
package callweave
