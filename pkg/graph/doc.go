/*
Package graph defines the node variants of the Lattice runtime. A graph is
a web of nodes wired by direct references; executing a node mutates the
shared domain.State and yields the next node, with nil as the terminal
sentinel.

The five variants:

  - SetValueNode writes a literal or copies another state key
  - ToolNode runs an injected callable; its failures are recoverable
  - LLMNode calls the external completion service with bounded retries
  - RouterNode branches on an external decision function
  - ClearErrorNode removes the reserved error key

Graphs may share sub-nodes (diamonds) and may contain cycles; the executor's
step budget is the defense against cycles with no exit condition.
*/
package graph
