package scheduler

import "io"

// Module is the minimum every registered component implements. The other
// interfaces below are optional callbacks a module may additionally
// implement — the scheduler type-asserts for each one rather than requiring
// a fat interface, matching the source's "record of optional callbacks"
// shape (spec.md §4.D).
type Module interface {
	Name() string
}

// Initializer runs once, in registration order, before the machine starts.
type Initializer interface {
	Init() error
}

// Resetter restores a module to its power-on state. Calling Reset twice in
// a row must be equivalent to calling it once (spec.md §8 "Reset
// idempotence").
type Resetter interface {
	Reset()
}

// Starter runs once when the run loop is about to begin.
type Starter interface {
	Start() error
}

// Runner is called once per timeslice with the nanosecond budget remaining
// after every earlier module in registration order has had a chance to
// shorten it; it returns how much of that budget it actually consumed.
type Runner interface {
	RunSlice(ns int64) int64
}

// Stopper runs once when the run loop exits.
type Stopper interface {
	Stop()
}

// Saver writes a module's state as an opaque byte blob.
type Saver interface {
	Save(w io.Writer) error
}

// Loader restores a module's state from a blob previously produced by Save.
type Loader interface {
	Load(r io.Reader) error
}
