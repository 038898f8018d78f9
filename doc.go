/*
Package lattice is a graph execution runtime for LLM agents. An agent is
a directed graph of typed nodes sharing one mutable state map; the
executor walks the graph one node at a time, records an auditable diff
per step, and persists the full run log on every exit path.

It separates the portable agent document (Logic) from the host bindings
(Tools, Models) and the execution machinery (Runtime). This hexagonal
split lets the same agent run embedded in a CLI, behind an HTTP API, or
inside a larger service, with storage adapters chosen per deployment.

# Concept

Graphs are built from five node kinds: set_value writes to the state,
tool calls a host function, llm calls a completion model, router picks a
branch, and clear_error resets the reserved error key. Nodes link
directly to their successors; a nil successor terminates the run. Tool
failures never abort execution: they land in the state under last_error
and flow down the error branch, so agents handle their own recovery.

Serialized manifests carry no code. Tools and decisions are referenced
by name and resolved against the host's registry at import time, which
keeps documents safe to share and lets the manifest policy restrict
which tools a graph may bind.

# Usage

	package main

	import (
		"context"
		"fmt"
		"log"

		"github.com/aretw0/lattice"
		"github.com/aretw0/lattice/pkg/adapters/memory"
		"github.com/aretw0/lattice/pkg/graph"
	)

	func main() {
		eng := lattice.New(
			lattice.WithRunStore(memory.NewRunStore()),
		)

		greet := graph.NewSetValue("greeting", "{name}", nil)
		start := graph.NewSetValue("name", "world", greet)

		runLog, err := eng.Run(context.Background(), start, nil)
		if err != nil {
			log.Fatal(err)
		}
		fmt.Println(runLog.Summary.TotalSteps)
	}

For serialized agents, see the pkg/spec package: Export and Import
round-trip live graphs through manifests, Lint checks a document
statically, and DiffManifests compares two stored versions.
*/
package lattice
