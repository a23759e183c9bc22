// Package weakref wraps the runtime's weak pointers and cleanups into the two
// shapes the observer registry needs: a one-shot collection hook and a table
// keyed by instance identity that prunes its own rows.
package weakref

import "runtime"

// OnCollect arranges for fn to run once, on a runtime goroutine, after p
// becomes unreachable. The returned stop cancels the hook if it has not run.
//
// fn must not reference p, otherwise p is never collected.
func OnCollect[T any](p *T, fn func()) (stop func()) {
	c := runtime.AddCleanup(p, run, fn)
	return c.Stop
}

func run(fn func()) { fn() }
