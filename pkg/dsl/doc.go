/*
Package dsl provides a fluent builder for constructing live graphs in Go.

Nodes are declared by id and reference their successors by id, so flows
with loops or forward links read top to bottom without manual pointer
juggling. Build resolves every reference and returns the start node,
ready to hand to the engine.

Example usage:

	b := dsl.New()

	b.Node("greet").
		Set("greeting", "hello").
		Go("shout")

	b.Node("shout").
		Call("upper", upperTool, "greeting").
		Output("loud")

	start, err := b.Build()
	if err != nil {
		// handle
	}
	// ... pass start to lattice.Engine.Run(ctx, start, nil)
*/
package dsl
