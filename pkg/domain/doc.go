/*
Package domain contains the core value types of the Lattice runtime: the
mutable State threaded through a run, the structural StateDiff between two
snapshots, and the append-only audit records (AuditStep, RunLog) the
executor produces.

The types here are deliberately free of execution logic. Node dispatch
lives in pkg/graph and the run loop in the root lattice package.
*/
package domain
