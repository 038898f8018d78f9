package spec

import (
	"errors"
	"fmt"
)

// ErrEmptyGraph is returned when a manifest has no nodes.
var ErrEmptyGraph = errors.New("graph has no nodes")

// UnresolvedReferenceError reports an edge or route that names a node id
// absent from the document.
type UnresolvedReferenceError struct {
	Source string
	Target string
}

func (e *UnresolvedReferenceError) Error() string {
	return fmt.Sprintf("unresolved node reference: %s -> %s", e.Source, e.Target)
}

// UnknownToolError reports a tool name the host registry does not carry,
// or one excluded by the manifest's policy.
type UnknownToolError struct {
	Node   string
	Tool   string
	Denied bool
}

func (e *UnknownToolError) Error() string {
	if e.Denied {
		return fmt.Sprintf("node %s: tool %q is not in the policy allow list", e.Node, e.Tool)
	}
	return fmt.Sprintf("node %s: tool %q is not registered", e.Node, e.Tool)
}
