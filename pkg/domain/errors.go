package domain

import "errors"

// ErrAgentNotFound is returned when an agent id (or version) cannot be found
// in a manifest store.
var ErrAgentNotFound = errors.New("agent not found")

// ErrRunNotFound is returned when a run id cannot be found in a run store.
var ErrRunNotFound = errors.New("run not found")
