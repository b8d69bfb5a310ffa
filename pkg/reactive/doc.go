/*
Package reactive implements the dependency-tracking engine the layout
controller is built on.

A Computation runs a function and records every Dependency it reads. When one
of those dependencies changes the computation is invalidated and queued; the
queue is drained synchronously by Runtime.Flush. Several invalidations before a
flush collapse into a single rerun, and a computation stopped before its turn
is skipped.

Signal and Memo are built on the same primitives: a Signal is a value cell
that notifies only when a write changes it (structural equality), and a Memo
caches a derived value until one of its inputs changes.

The runtime is single-threaded. Callers that share one across goroutines must
serialize access themselves.
*/
package reactive
