// Package spec defines the serialized agent document: a portable,
// code-free description of a graph's topology and configuration.
//
// A Manifest round-trips through Export and Import without losing
// structure, including shared nodes and cycles, because export keys on
// node identity rather than traversal path. Documents never carry
// executable code: tool and decision functions are referenced by name
// and resolved against the host's registry at import time.
//
// Lint checks a document statically, Import reconstructs a live graph,
// and DiffManifests compares two versions structurally.
package spec
